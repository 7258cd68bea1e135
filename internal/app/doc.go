// Package app wires configuration, logging, telemetry and the gradebook
// engine into the commands behind the gradesync binaries.
//
// # Initialization Flow
//
//  1. Load configuration from the YAML file and GRADESYNC_* environment
//  2. Resolve paths and create the log and report directories
//  3. Initialize the global logger, tracing and the metrics registry
//  4. Build the Runner
//
// # Commands
//
// Runner exposes one method per command: Update, Compare, Summarize,
// Unsubmitted, Roster, Completers and Pipeline. Each opens a RunReport,
// runs its stages inside spans, writes its CSV and text reports and returns
// a result describing what was written.
//
// Pipeline runs update, compare, unsubmitted and summarize in order. A failed
// update ends the run; a failure in any later stage is logged, recorded in
// PipelineResult.Failed and the next stage runs anyway.
//
// # Usage
//
//	cfg, err := app.LoadConfig(configPath)
//	if err != nil {
//	    return err
//	}
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	defer application.Close()
//	res, err := application.Runner.Pipeline(ctx, app.PipelineOptions{})
package app
