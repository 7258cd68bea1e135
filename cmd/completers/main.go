// Command completers checks which program completers appear on the newest
// platform roster.
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
	completersFile := flag.String("completers", "", "completers list (defaults to reconcile.completers_file)")
	rosterFile := flag.String("roster", "", "roster to check against (defaults to the newest platform export)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString("completers"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, *configPath, os.Stderr, func(ctx context.Context, a *app.Application) error {
		res, err := a.Runner.Completers(ctx, app.CompletersOptions{CompletersFile: *completersFile, RosterFile: *rosterFile})
		if err != nil {
			return err
		}
		fmt.Printf("%d of %d completers are on the roster\n", res.InRoster, len(res.Statuses))
		fmt.Printf("Report: %s\n", res.Path)
		return nil
	})
	stop()
	os.Exit(code)
}
