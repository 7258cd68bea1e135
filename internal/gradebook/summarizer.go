package gradebook

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"gradesync/pkg/contracts/domain"
)

// Summarizer computes per-project submission counts over one snapshot.
type Summarizer struct {
	mapping *domain.ColumnMapping
	logger  *slog.Logger
}

// NewSummarizer creates a summarizer; a nil logger uses slog.Default().
func NewSummarizer(mapping *domain.ColumnMapping, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{mapping: mapping, logger: logger}
}

// Summarize counts, per bucket, how many (student, column) cells hold a
// submission. Columns missing from the snapshot are skipped with a warning.
// Buckets with a trailing number come first in numeric order, the rest
// follow alphabetically.
func (s *Summarizer) Summarize(ctx context.Context, snap *domain.Snapshot, assignments []string) ([]domain.AssignmentStat, []domain.Warning) {
	present, missing := SplitAssignments(snap.HasColumn, assignments)

	warnings := make([]domain.Warning, 0, len(missing))
	for _, col := range missing {
		warnings = append(warnings, missingColumnWarning(snap.Path, col))
		s.logger.WarnContext(ctx, "Assignment column not found",
			slog.String("path", snap.Path),
			slog.String("column", col))
	}

	stats := make(map[string]*domain.AssignmentStat)
	var order []string
	records := snap.Records()
	for _, col := range present {
		bucket := s.mapping.BucketFor(col)
		stat, ok := stats[bucket]
		if !ok {
			stat = &domain.AssignmentStat{Bucket: bucket}
			stats[bucket] = stat
			order = append(order, bucket)
		}
		stat.Columns = append(stat.Columns, col)

		for _, r := range records {
			stat.Total++
			if r.Field(col).Submitted() {
				stat.Submitted++
			} else {
				stat.Unsubmitted++
			}
		}
	}

	SortBuckets(order)
	out := make([]domain.AssignmentStat, 0, len(order))
	for _, b := range order {
		stat := stats[b]
		if stat.Total > 0 {
			stat.Percentage = float64(stat.Submitted) / float64(stat.Total) * 100
		}
		out = append(out, *stat)
	}

	s.logger.InfoContext(ctx, "Submissions summarized",
		slog.String("path", snap.Path),
		slog.Int("students", snap.Len()),
		slog.Int("buckets", len(out)),
		slog.Int("missing_columns", len(missing)))

	return out, warnings
}

// SortBuckets orders labels with a trailing integer numerically, then the
// rest alphabetically.
func SortBuckets(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		ni, oki := bucketNumber(labels[i])
		nj, okj := bucketNumber(labels[j])
		switch {
		case oki && okj:
			if ni != nj {
				return ni < nj
			}
			return labels[i] < labels[j]
		case oki != okj:
			return oki
		default:
			return labels[i] < labels[j]
		}
	})
}

// bucketNumber returns the trailing integer of a label: "Project 3" -> 3.
func bucketNumber(label string) (int, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	return n, err == nil
}
