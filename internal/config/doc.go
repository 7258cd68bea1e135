// Package config loads and validates the gradesync configuration.
//
// # Configuration Sources
//
// Values are layered in order of increasing precedence:
//
//	1. Defaults (Default)
//	2. A YAML file: $GRADESYNC_CONFIG, gradesync.yaml or configs/gradesync.yaml
//	3. Environment variables prefixed with GRADESYNC_
//
// # Environment Variables
//
//	GRADESYNC_LOGGING_LEVEL=debug
//	GRADESYNC_PATHS_DATA_DIR=/srv/grades/data
//	GRADESYNC_RECONCILE_LMS_PATTERN=Canvas-COP4655
//	GRADESYNC_RECONCILE_EXCLUDED_STATUSES=Withdrawn,Dropped
//
// The assignment table, bucket labels and per-side header anchors can only be
// set in the file.
//
// # Assignment Mapping
//
// reconcile.assignment_mapping maps each canonical LMS column to the platform
// column carrying the same grade. Declaration order is the order in which
// assignments are compared and reported:
//
//	reconcile:
//	  assignment_mapping:
//	    "Project 1: Intro (101)": "Project 1"
//	    "Final Project: App (900)": "Final Project"
//
// # Validation
//
// Load validates eagerly and fails with a CONFIG error naming the first bad
// key, e.g. reconcile.identity_columns.old_side. Call Reconcile.Mapping once
// at start-up and share the resulting *domain.ColumnMapping.
package config
