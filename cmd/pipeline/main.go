// Command pipeline runs update, compare, unsubmitted and summarize in one go.
// Only a failed update stops the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

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
		fmt.Println(contracts.GetVersionString("pipeline"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, *configPath, os.Stderr, func(ctx context.Context, a *app.Application) error {
		res, err := a.Runner.Pipeline(ctx, app.PipelineOptions{LMSFile: *lmsFile, PlatformFile: *platformFile})
		if err != nil {
			return err
		}
		fmt.Printf("Updated gradebook: %s\n", res.Update.UpdatedPath)
		if res.Compare != nil {
			fmt.Printf("Changes:           %s (%d)\n", res.Compare.TextPath, len(res.Compare.Diff.Deltas))
		}
		if res.Unsubmitted != nil {
			fmt.Printf("Unsubmitted:       %s (%d students)\n", res.Unsubmitted.Path, len(res.Unsubmitted.Missing))
		}
		if res.Summary != nil {
			fmt.Printf("Summary:           %s\n", res.Summary.Path)
		}
		fmt.Printf("Workbook:          %s\n", res.WorkbookPath)
		if len(res.Failed) > 0 {
			fmt.Printf("Skipped after errors: %s (see log)\n", strings.Join(res.Failed, ", "))
		}
		return nil
	})
	stop()
	os.Exit(code)
}
