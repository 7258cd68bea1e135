package domain

// AssignmentStat is the submission count of one project bucket in one
// snapshot. Submitted + Unsubmitted always equals Total.
type AssignmentStat struct {
	Bucket      string   `json:"bucket" csv:"Project"`
	Columns     []string `json:"columns"`
	Submitted   int      `json:"submitted" csv:"Submitted"`
	Unsubmitted int      `json:"unsubmitted" csv:"Unsubmitted"`
	Total       int      `json:"total" csv:"Total"`
	Percentage  float64  `json:"percentage" csv:"Percentage"`
}

// MissingSubmissions lists the assignment columns a student has not submitted.
type MissingSubmissions struct {
	Student     string   `json:"student"`
	Name        string   `json:"name"`
	Assignments []string `json:"assignments"`
}

// TallyEntry is one label count in a roster breakdown.
type TallyEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
