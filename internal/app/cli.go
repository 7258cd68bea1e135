package app

import (
	"context"
	"io"

	apperrors "gradesync/internal/errors"
	"gradesync/internal/infrastructure"
)

// Execute loads the configuration at configPath, builds the application and
// runs fn. The error of any step is reported on stderr and mapped to the
// process exit code.
func Execute(ctx context.Context, configPath string, stderr io.Writer, fn func(ctx context.Context, a *Application) error) int {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return apperrors.NewErrorHandler(nil, stderr).Handle(ctx, err)
	}

	application, err := NewApplication(cfg)
	if err != nil {
		return apperrors.NewErrorHandler(nil, stderr).Handle(ctx, err)
	}

	ctx = infrastructure.EnsureRunID(ctx)
	code := apperrors.NewErrorHandler(application.Logger, stderr).Handle(ctx, fn(ctx, application))
	if err := application.Close(); err != nil && code == apperrors.ExitOK {
		code = apperrors.ExitFailure
	}
	return code
}
