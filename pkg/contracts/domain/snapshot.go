package domain

import (
	"strings"
	"time"
)

// Snapshot is one parsed export: records in file row order, unique by key.
type Snapshot struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Side        Side      `json:"side"`
	TakenAt     time.Time `json:"taken_at"`
	Columns     []string  `json:"columns"`
	Fingerprint uint64    `json:"fingerprint"`

	records []*StudentRecord
	index   map[string]*StudentRecord
	columns map[string]struct{}
}

// NewSnapshot indexes records by key. Records must already be unique by key;
// if they are not, the first one is kept.
func NewSnapshot(src Source, columns []string, records []*StudentRecord, fingerprint uint64) *Snapshot {
	s := &Snapshot{
		Name:        src.Label(),
		Path:        src.Path,
		Side:        src.Side,
		TakenAt:     src.TakenAt,
		Columns:     columns,
		Fingerprint: fingerprint,
		records:     make([]*StudentRecord, 0, len(records)),
		index:       make(map[string]*StudentRecord, len(records)),
		columns:     make(map[string]struct{}, len(columns)),
	}
	for _, c := range columns {
		s.columns[strings.TrimSpace(c)] = struct{}{}
	}
	for _, r := range records {
		if _, exists := s.index[r.Key]; exists {
			continue
		}
		s.index[r.Key] = r
		s.records = append(s.records, r)
	}
	return s
}

// Get looks up a record by normalized identity key.
func (s *Snapshot) Get(key string) (*StudentRecord, bool) {
	r, ok := s.index[key]
	return r, ok
}

// Records returns the records in file row order.
func (s *Snapshot) Records() []*StudentRecord {
	out := make([]*StudentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Keys returns the identity keys in file row order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, len(s.records))
	for i, r := range s.records {
		keys[i] = r.Key
	}
	return keys
}

func (s *Snapshot) Len() int {
	return len(s.records)
}

// HasColumn reports whether the header contains the column.
func (s *Snapshot) HasColumn(name string) bool {
	_, ok := s.columns[strings.TrimSpace(name)]
	return ok
}
