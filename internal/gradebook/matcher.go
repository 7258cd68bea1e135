package gradebook

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"gradesync/pkg/contracts/domain"
)

// keyFunc extracts the join key a matcher pass compares on. An empty key
// never matches.
type keyFunc func(*domain.StudentRecord) string

// matchPasses run in order; each pass only sees records left unmatched by
// the previous ones.
var matchPasses = []struct {
	via domain.MatchVia
	key keyFunc
}{
	{domain.MatchViaEmail, func(r *domain.StudentRecord) string { return r.Email }},
	{domain.MatchViaName, func(r *domain.StudentRecord) string { return NameKey(r.Name) }},
}

// Match joins two snapshots. Records pair on identity key first; records
// left over pair on email and then on normalized display name, but only
// when the key is unique among the leftovers of both sides. Neither
// snapshot is modified.
func Match(prev, next *domain.Snapshot) *domain.MatchResult {
	oldRecords := prev.Records()
	newRecords := next.Records()

	pairs := make(map[*domain.StudentRecord]domain.MatchedPair, len(newRecords))
	matchedOld := make(map[*domain.StudentRecord]bool, len(oldRecords))

	for _, n := range newRecords {
		if o, ok := prev.Get(n.Key); ok {
			pairs[n] = domain.MatchedPair{Old: o, New: n, Via: domain.MatchViaIdentity}
			matchedOld[o] = true
		}
	}

	for _, pass := range matchPasses {
		oldByKey := uniqueByKey(oldRecords, pass.key, func(r *domain.StudentRecord) bool { return matchedOld[r] })
		newByKey := uniqueByKey(newRecords, pass.key, func(r *domain.StudentRecord) bool { _, ok := pairs[r]; return ok })
		for _, n := range newRecords {
			if _, done := pairs[n]; done {
				continue
			}
			k := pass.key(n)
			if k == "" || newByKey[k] != n {
				continue
			}
			if o := oldByKey[k]; o != nil {
				pairs[n] = domain.MatchedPair{Old: o, New: n, Via: pass.via}
				matchedOld[o] = true
			}
		}
	}

	res := &domain.MatchResult{}
	for _, n := range newRecords {
		if p, ok := pairs[n]; ok {
			res.Matched = append(res.Matched, p)
		} else {
			res.NewOnly = append(res.NewOnly, n)
		}
	}
	for _, o := range oldRecords {
		if !matchedOld[o] {
			res.OldOnly = append(res.OldOnly, o)
		}
	}
	return res
}

// uniqueByKey indexes the records not yet matched by key. Keys shared by
// two or more records map to nil.
func uniqueByKey(records []*domain.StudentRecord, key keyFunc, matched func(*domain.StudentRecord) bool) map[string]*domain.StudentRecord {
	index := make(map[string]*domain.StudentRecord)
	for _, r := range records {
		if matched(r) {
			continue
		}
		k := key(r)
		if k == "" {
			continue
		}
		if _, dup := index[k]; dup {
			index[k] = nil
			continue
		}
		index[k] = r
	}
	return index
}

// NameKey normalizes a display name for matching: "Last, First" becomes
// "First Last", diacritics are stripped, whitespace collapsed and case folded.
func NameKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if last, first, ok := strings.Cut(name, ","); ok && !strings.Contains(first, ",") {
		name = strings.TrimSpace(first) + " " + strings.TrimSpace(last)
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return cases.Fold().String(strings.Join(strings.Fields(stripped), " "))
}

// IdentitySet is a set of join keys used for roster set differences.
type IdentitySet map[string]struct{}

// ByIdentity keys a record by its identity key.
func ByIdentity(r *domain.StudentRecord) string { return r.Key }

// ByName keys a record by its normalized display name.
func ByName(r *domain.StudentRecord) string { return NameKey(r.DisplayName()) }

// NewIdentitySet collects the non-empty keys of records.
func NewIdentitySet(records []*domain.StudentRecord, key func(*domain.StudentRecord) string) IdentitySet {
	set := make(IdentitySet, len(records))
	for _, r := range records {
		if k := key(r); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Contains reports whether k is in the set.
func (s IdentitySet) Contains(k string) bool {
	_, ok := s[k]
	return ok
}

// Difference returns the records whose key is not in s, in input order.
func (s IdentitySet) Difference(records []*domain.StudentRecord, key func(*domain.StudentRecord) string) []*domain.StudentRecord {
	var out []*domain.StudentRecord
	for _, r := range records {
		if !s.Contains(key(r)) {
			out = append(out, r)
		}
	}
	return out
}
