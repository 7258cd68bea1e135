package domain

// MatchVia records which matcher pass paired two records.
type MatchVia string

const (
	MatchViaIdentity MatchVia = "identity"
	MatchViaEmail    MatchVia = "email"
	MatchViaName     MatchVia = "name"
)

// MatchedPair is one student present in both snapshots.
type MatchedPair struct {
	Old *StudentRecord `json:"old"`
	New *StudentRecord `json:"new"`
	Via MatchVia       `json:"via"`
}

// MatchResult is the output of joining two snapshots. Matched and NewOnly
// follow the new snapshot's row order, OldOnly the old snapshot's.
type MatchResult struct {
	Matched []MatchedPair    `json:"matched"`
	OldOnly []*StudentRecord `json:"old_only"`
	NewOnly []*StudentRecord `json:"new_only"`
}

// MatchedKeys returns the new-side keys of the matched pairs.
func (m *MatchResult) MatchedKeys() []string {
	keys := make([]string, len(m.Matched))
	for i, p := range m.Matched {
		keys[i] = p.New.Key
	}
	return keys
}
