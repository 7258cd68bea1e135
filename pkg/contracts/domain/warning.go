package domain

import (
	"fmt"
	"strings"
)

// WarningKind names a recoverable condition.
type WarningKind string

const (
	WarnBlankIdentity     WarningKind = "blank-identity"
	WarnExcludedStatus    WarningKind = "excluded-status"
	WarnIgnoredIdentity   WarningKind = "ignored-identity"
	WarnDuplicateIdentity WarningKind = "duplicate-identity"
	WarnMissingColumn     WarningKind = "missing-column"
	WarnInvalidNumber     WarningKind = "invalid-number"
	WarnRaggedRow         WarningKind = "ragged-row"
)

// Warning is a recoverable problem returned next to a successful result.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Path       string      `json:"path,omitempty"`
	Row        int         `json:"row,omitempty"`
	Student    string      `json:"student,omitempty"`
	Assignment string      `json:"assignment,omitempty"`
	Message    string      `json:"message"`
}

// String renders a one-line diagnostic such as
// "grades.csv:12: invalid-number: alice@x.edu / Project 1: value "abc" is not a number".
func (w Warning) String() string {
	var b strings.Builder
	if w.Path != "" {
		b.WriteString(w.Path)
		if w.Row > 0 {
			fmt.Fprintf(&b, ":%d", w.Row)
		}
		b.WriteString(": ")
	}
	b.WriteString(string(w.Kind))
	b.WriteString(": ")
	switch {
	case w.Student != "" && w.Assignment != "":
		fmt.Fprintf(&b, "%s / %s: ", w.Student, w.Assignment)
	case w.Student != "":
		fmt.Fprintf(&b, "%s: ", w.Student)
	case w.Assignment != "":
		fmt.Fprintf(&b, "%s: ", w.Assignment)
	}
	b.WriteString(w.Message)
	return b.String()
}

// CountWarnings tallies warnings per kind.
func CountWarnings(ws []Warning) map[WarningKind]int {
	counts := make(map[WarningKind]int)
	for _, w := range ws {
		counts[w.Kind]++
	}
	return counts
}
