// Command roster finds the students of the current class roster who were
// enrolled in a reference roster, with their section and previous grade.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"gradesync/internal/app"
	contracts "gradesync/pkg/contracts"
)

func main() {
	configPath := flag.String("config", "", "configuration file (defaults to gradesync.yaml in the working directory)")
	current := flag.String("current", "", "current class roster (required)")
	reference := flag.String("reference", "", "reference roster of an earlier class (required)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString("roster"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, *configPath, os.Stderr, func(ctx context.Context, a *app.Application) error {
		res, err := a.Runner.Roster(ctx, app.RosterOptions{CurrentFile: *current, ReferenceFile: *reference})
		if err != nil {
			return err
		}
		fmt.Printf("%d of %d students returning (%.1f%%)\n",
			len(res.Roster.Returning), res.Roster.CurrentTotal, res.Roster.ReturningRate())
		for _, e := range res.Sections {
			fmt.Printf("  %-20s %d\n", e.Label, e.Count)
		}
		for _, e := range res.Grades {
			fmt.Printf("  %-20s %d\n", e.Label, e.Count)
		}
		fmt.Printf("Report: %s\n", res.Path)
		return nil
	})
	stop()
	os.Exit(code)
}
