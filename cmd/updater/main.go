// Command updater copies the bootcamp platform's grades into the newest LMS
// gradebook export and lists the platform students the LMS does not know.
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
	lmsFile := flag.String("lms", "", "LMS gradebook export (defaults to the newest file matching reconcile.lms_pattern)")
	platformFile := flag.String("platform", "", "platform export (defaults to the newest file matching reconcile.platform_pattern)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString("updater"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, *configPath, os.Stderr, func(ctx context.Context, a *app.Application) error {
		res, err := a.Runner.Update(ctx, app.UpdateOptions{LMSFile: *lmsFile, PlatformFile: *platformFile})
		if err != nil {
			return err
		}
		fmt.Printf("Matched %d students, %d platform students not in the LMS\n",
			len(res.Match.Matched), len(res.Merge.Unmatched))
		fmt.Printf("Updated gradebook: %s\n", res.UpdatedPath)
		fmt.Printf("Unmatched emails:  %s\n", res.UnmatchedPath)
		return nil
	})
	stop()
	os.Exit(code)
}
