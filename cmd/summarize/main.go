// Command summarize counts submissions per project in the newest platform
// export.
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
	platformFile := flag.String("platform", "", "platform export (defaults to the newest file matching reconcile.platform_pattern)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString("summarize"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Execute(ctx, *configPath, os.Stderr, func(ctx context.Context, a *app.Application) error {
		res, err := a.Runner.Summarize(ctx, app.SummarizeOptions{PlatformFile: *platformFile})
		if err != nil {
			return err
		}
		fmt.Printf("%d students in %s\n", res.Students, res.PlatformPath)
		for _, s := range res.Stats {
			fmt.Printf("  %-16s %4d/%-4d %5.1f%%\n", s.Bucket, s.Submitted, s.Total, s.Percentage)
		}
		fmt.Printf("Summary: %s\n", res.Path)
		return nil
	})
	stop()
	os.Exit(code)
}
