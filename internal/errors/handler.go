package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// Process exit codes used by the command-line tools.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConfig     = 2
	ExitStructural = 3
	ExitStorage    = 4
	ExitNotFound   = 5
)

// ExitCode maps an error to the exit code of a command.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsStructural(err) {
		return ExitStructural
	}
	var appErr *AppError
	if As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeConfig, ErrTypeValidation:
			return ExitConfig
		case ErrTypeParsing:
			return ExitStructural
		case ErrTypeStorage:
			return ExitStorage
		case ErrTypeNotFound:
			return ExitNotFound
		}
	}
	return ExitFailure
}

// ErrorHandler provides centralized error reporting for the commands
type ErrorHandler struct {
	logger *slog.Logger
	out    io.Writer
}

// NewErrorHandler creates a new error handler. Diagnostics go to out
// (usually stderr) in addition to the structured log.
func NewErrorHandler(logger *slog.Logger, out io.Writer) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
		out:    out,
	}
}

// Handle logs err with its context, prints a one-line diagnostic and
// returns the exit code.
func (h *ErrorHandler) Handle(ctx context.Context, err error) int {
	if err == nil {
		return ExitOK
	}

	attrs := []any{slog.String("error", err.Error())}
	var appErr *AppError
	if As(err, &appErr) {
		attrs = append(attrs, slog.String("error_type", string(appErr.Type)))
		keys := make([]string, 0, len(appErr.Context))
		for k := range appErr.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, slog.Any(k, appErr.Context[k]))
		}
	}
	var headerErr *HeaderNotFoundError
	if As(err, &headerErr) {
		attrs = append(attrs,
			slog.String("path", headerErr.Path),
			slog.Any("missing_anchors", headerErr.Missing))
	}
	var idErr *IdentityColumnMissingError
	if As(err, &idErr) {
		attrs = append(attrs,
			slog.String("path", idErr.Path),
			slog.String("column", idErr.Column),
			slog.String("side", idErr.Side))
	}

	code := ExitCode(err)
	attrs = append(attrs, slog.Int("exit_code", code))
	h.logger.ErrorContext(ctx, "run failed", attrs...)

	if h.out != nil {
		fmt.Fprintf(h.out, "error: %v\n", err)
	}
	return code
}
