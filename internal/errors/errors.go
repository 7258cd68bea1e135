package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Re-exported so callers only need to import this package.
var (
	Is  = stderrors.Is
	As  = stderrors.As
	New = stderrors.New
)

// Sentinels wrapped by the structural errors below.
var (
	ErrHeaderNotFound        = stderrors.New("header row not found")
	ErrIdentityColumnMissing = stderrors.New("identity column missing")
	ErrMissingConfigKey      = stderrors.New("missing configuration key")
)

// HeaderNotFoundError is returned when no line of an export contains every
// header anchor. The file cannot be processed.
type HeaderNotFoundError struct {
	Path    string
	Anchors []string
	// Missing lists anchors that occur on no line at all. When every anchor
	// occurs somewhere but never together, it holds all anchors.
	Missing []string
}

func (e *HeaderNotFoundError) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s: header row not found: no line contains %s",
		path, quoteList(e.Missing))
}

func (e *HeaderNotFoundError) Unwrap() error {
	return ErrHeaderNotFound
}

// IdentityColumnMissingError is returned when the join-key column is not in
// an export's header.
type IdentityColumnMissingError struct {
	Path   string
	Side   string
	Column string
}

func (e *IdentityColumnMissingError) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s: identity column %q (%s) not found in header", path, e.Column, e.Side)
}

func (e *IdentityColumnMissingError) Unwrap() error {
	return ErrIdentityColumnMissing
}

// IsStructural reports whether err aborts processing of a single file.
func IsStructural(err error) bool {
	return Is(err, ErrHeaderNotFound) || Is(err, ErrIdentityColumnMissing)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
