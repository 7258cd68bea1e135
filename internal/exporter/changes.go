package exporter

import (
	"bufio"
	"fmt"
	"io"

	"gradesync/pkg/contracts/domain"
)

// NoChangesLine is written when a comparison finds nothing.
const NoChangesLine = "No updates found in the specified columns."

// WriteChanges writes the plain-text change report: a title line naming both
// snapshots, then one block per delta. Consecutive deltas of the same student
// share one "Student:" line. Warnings, if any, follow in a "Warnings:" block.
//
//	Updates found between old.csv (old) and new.csv (new):
//	Student: alice@x.edu
//	  Project 1: 80.0 -> 95.0
//
//	Warnings:
//	  new.csv:4: invalid-number: bob@x.edu / Project 1: value "EX" is not a number
func WriteChanges(w io.Writer, oldName, newName string, deltas []domain.GradeDelta, warnings []domain.Warning) error {
	bw := bufio.NewWriter(w)
	if len(deltas) == 0 {
		fmt.Fprintln(bw, NoChangesLine)
	} else {
		fmt.Fprintf(bw, "Updates found between %s (old) and %s (new):\n", oldName, newName)
		for i, d := range deltas {
			if i == 0 || deltas[i-1].Student != d.Student {
				if i > 0 {
					fmt.Fprintln(bw)
				}
				fmt.Fprintf(bw, "Student: %s\n", d.Student)
			}
			fmt.Fprintf(bw, "  %s: %s -> %s\n", d.Assignment, d.Old, d.New)
		}
		fmt.Fprintln(bw)
	}

	if len(warnings) > 0 {
		if len(deltas) == 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintln(bw, "Warnings:")
		for _, wn := range warnings {
			fmt.Fprintf(bw, "  %s\n", wn)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
