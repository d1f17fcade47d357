// Package llm provides the text generation capability used by the profile
// pipeline and the plan service, with Gemini and Ollama backends.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/6are8/Plan-Smart/internal/config"
	"github.com/6are8/Plan-Smart/internal/logger"
)

// Generator turns a prompt and an optional system instruction into text.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt, system string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt, system string) (string, error) {
	return f(ctx, prompt, system)
}

// New creates the Generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Generator, error) {
	if log == nil {
		log = logger.Discard()
	}

	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg, log)
	case "ollama":
		return NewOllama(cfg, log)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
