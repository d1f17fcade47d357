package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/6are8/Plan-Smart/internal/errs"
)

// Call runs one generation bounded by timeout and returns either the text or
// an ExtractionFailed error. Empty output counts as a failure. It never panics
// on backend misbehavior.
func Call(ctx context.Context, gen Generator, timeout time.Duration, prompt, system string) (text string, err error) {
	if gen == nil {
		return "", errs.NewExtractionError("no text generator configured", nil)
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errs.NewExtractionError("text generator panicked", nil)
		}
	}()

	out, err := gen.Generate(callCtx, prompt, system)
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)):
		return "", errs.NewExtractionError("text generation timed out", err)
	case err != nil:
		return "", errs.NewExtractionError("text generation failed", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", errs.NewExtractionError("text generation returned empty output", nil)
	}
	return out, nil
}

// OrDefault is Call for callers that always have something to show: on any
// failure it logs and returns fallback.
func OrDefault(ctx context.Context, log *slog.Logger, gen Generator, timeout time.Duration, prompt, system, fallback string) string {
	text, err := Call(ctx, gen, timeout, prompt, system)
	if err != nil {
		if log != nil {
			log.WarnContext(ctx, "Text generation failed, using fallback", "error", err)
		}
		return fallback
	}
	return text
}
