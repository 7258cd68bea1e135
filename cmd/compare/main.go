// Command compare reports the grade changes between two LMS gradebooks,
// by default the two newest updated gradebooks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"gradesync/internal/app"
	contracts "gradesync/pkg/contracts"
	"gradesync/pkg/contracts/domain"
)

func main() {
	configPath := flag.String("config", "", "configuration file (defaults to gradesync.yaml in the working directory)")
	oldFile := flag.String("old", "", "older gradebook")
	newFile := flag.String("new", "", "newer gradebook")
	dir := flag.String("dir", "", "directory searched for updated gradebooks when -old and -new are not given")
	appendTo := flag.Bool("append", false, "append to the text report instead of replacing it")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString("compare"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, *configPath, os.Stderr, func(ctx context.Context, a *app.Application) error {
		res, err := a.Runner.Compare(ctx, app.CompareOptions{
			OldFile: *oldFile,
			NewFile: *newFile,
			Dir:     *dir,
			Append:  *appendTo,
		})
		if err != nil {
			return err
		}
		if res.Identical {
			fmt.Println("The gradebooks have identical content.")
		}
		counts := res.Diff.CountByKind()
		fmt.Printf("%d changes (%d updated, %d new, %d missing in new) between %s and %s\n",
			len(res.Diff.Deltas),
			counts[domain.DeltaUpdated], counts[domain.DeltaNewGrade], counts[domain.DeltaMissingInNew],
			res.OldPath, res.NewPath)
		fmt.Printf("Report: %s\n", res.TextPath)
		return nil
	})
	stop()
	os.Exit(code)
}
