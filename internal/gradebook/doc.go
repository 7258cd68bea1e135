// Package gradebook reconciles gradebook exports from an LMS and a bootcamp
// platform.
//
// A Parser locates the header row of an export (NormalizeHeader), checks
// its columns against the mapping (ResolveColumns) and builds a Snapshot of
// student records, skipping blank, ignored, duplicate and withdrawn rows.
// Match pairs two snapshots by identity, then email, then name. Diff
// compares the assignment grades of the matched pairs with a fixed 0.01
// tolerance and Summarizer counts submissions per project bucket.
//
// Merge, FindUnsubmitted, CompareRosters and FindCompleters build the
// remaining reports on top of the same snapshots.
//
// Nothing in this package reads files; callers hand in decoded text.
package gradebook
