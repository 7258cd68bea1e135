// Command unsubmitted lists, per student, the assignment columns with no
// submission in the newest updated gradebook.
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
	file := flag.String("file", "", "gradebook to scan (defaults to the newest updated gradebook)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString("unsubmitted"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, *configPath, os.Stderr, func(ctx context.Context, a *app.Application) error {
		res, err := a.Runner.Unsubmitted(ctx, app.UnsubmittedOptions{File: *file})
		if err != nil {
			return err
		}
		fmt.Printf("%d students with missing assignments in %s\n", len(res.Missing), res.FilePath)
		fmt.Printf("Report: %s\n", res.Path)
		return nil
	})
	stop()
	os.Exit(code)
}
