package gradebook

import (
	"strings"

	apperrors "gradesync/internal/errors"
)

// Delimiter is the field separator of every supported export.
const Delimiter = ","

// SplitLines splits raw text on "\n" or "\r\n". A trailing newline does not
// produce an empty last line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// NormalizeHeader drops every line before the header row, the first line
// that contains all anchors. When the header starts with an empty leading
// column, one leading delimiter is removed from it and from each following
// line that starts with one. With no anchors the first line is the header.
func NormalizeHeader(lines []string, anchors []string) ([]string, error) {
	_, out, err := normalizeHeader(lines, anchors)
	return out, err
}

// normalizeHeader also returns the index of the header line in lines.
func normalizeHeader(lines []string, anchors []string) (int, []string, error) {
	idx := findHeader(lines, anchors)
	if idx < 0 {
		return -1, nil, &apperrors.HeaderNotFoundError{
			Anchors: anchors,
			Missing: missingAnchors(lines, anchors),
		}
	}

	out := make([]string, len(lines)-idx)
	copy(out, lines[idx:])
	if strings.HasPrefix(out[0], Delimiter) {
		for i, line := range out {
			out[i] = strings.TrimPrefix(line, Delimiter)
		}
	}
	return idx, out, nil
}

func findHeader(lines []string, anchors []string) int {
	if len(lines) == 0 {
		return -1
	}
	if len(anchors) == 0 {
		return 0
	}
	for i, line := range lines {
		if containsAll(line, anchors) {
			return i
		}
	}
	return -1
}

func containsAll(line string, anchors []string) bool {
	for _, a := range anchors {
		if !strings.Contains(line, a) {
			return false
		}
	}
	return true
}

// missingAnchors lists the anchors found on no line. If each anchor occurs
// somewhere, just never together, every anchor is reported.
func missingAnchors(lines []string, anchors []string) []string {
	var missing []string
	for _, a := range anchors {
		found := false
		for _, line := range lines {
			if strings.Contains(line, a) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, a)
		}
	}
	if len(missing) == 0 {
		return append([]string(nil), anchors...)
	}
	return missing
}
