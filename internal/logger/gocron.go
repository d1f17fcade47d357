package logger

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/go-co-op/gocron/v2"

	"github.com/6are8/Plan-Smart/internal/errs"
)

// gocronLogger implements gocron.Logger on top of slog.
type gocronLogger struct {
	log *slog.Logger
}

// NewGocronLogger returns a gocron.Logger that forwards to log.
//
//nolint:ireturn // Interface return is required by gocron's API contract
func NewGocronLogger(log *slog.Logger) gocron.Logger {
	if log == nil {
		log = Discard()
	}
	return &gocronLogger{log: log.With("component", "gocron")}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, processSchedulerArgs(args...)...)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.log.Error(msg, processSchedulerArgs(args...)...)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.log.Info(msg, processSchedulerArgs(args...)...)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, processSchedulerArgs(args...)...)
}

// processSchedulerArgs wraps scheduler errors into coded errors so they log
// with a code like the rest of the application.
func processSchedulerArgs(args ...any) []any {
	processedArgs := make([]any, 0, len(args))

	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			processedArgs = append(processedArgs, args[i])
			break
		}

		key, val := args[i], args[i+1]

		if k, ok := key.(string); ok && k == "error" {
			if err, ok := val.(error); ok {
				processedArgs = append(processedArgs, key, classifySchedulerError(err))
				continue
			}
		}

		processedArgs = append(processedArgs, key, val)
	}

	return processedArgs
}

func classifySchedulerError(err error) error {
	switch {
	case errors.Is(err, gocron.ErrJobNotFound):
		return errs.NewValidationError("scheduled job not found", err)
	case strings.Contains(err.Error(), "duplicate job"):
		return errs.NewValidationError("duplicate job name", err)
	case strings.Contains(err.Error(), "shutdown"):
		return errs.NewConfigError("scheduler is shut down", err)
	default:
		return errs.NewConfigError("scheduler error", err)
	}
}
