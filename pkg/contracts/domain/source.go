package domain

import "time"

// Source is one raw export handed to the parser. Content is the decoded text
// of the whole file; the parser never touches the filesystem.
type Source struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Side    Side      `json:"side" validate:"required,oneof=old_side new_side"`
	Content string    `json:"-"`
	TakenAt time.Time `json:"taken_at"`

	// IdentityColumn overrides the side's configured join column, e.g. for
	// roster files keyed by "SIS Login ID".
	IdentityColumn string `json:"identity_column,omitempty"`
	// Anchors overrides the header anchors configured for the side.
	Anchors []string `json:"anchors,omitempty"`
}

// Label returns a short name for logs and reports.
func (s Source) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}
