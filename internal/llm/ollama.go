package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/6are8/Plan-Smart/internal/config"
)

// DefaultOllamaURL is used when no base URL is configured.
const DefaultOllamaURL = "http://localhost:11434"

type ollamaClient struct {
	llm         llms.Model
	log         *slog.Logger
	temperature float64
}

// NewOllama creates a Generator backed by a local Ollama server.
func NewOllama(cfg config.AIConfig, log *slog.Logger) (Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}

	model, err := ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	logger := log.With("component", "ollama_client")
	logger.Info("Ollama client initialized successfully", "model", cfg.Model, "url", baseURL)
	return &ollamaClient{
		llm:         model,
		log:         logger,
		temperature: float64(cfg.Temperature),
	}, nil
}

func (c *ollamaClient) Generate(ctx context.Context, prompt, system string) (string, error) {
	resp, err := c.llm.GenerateContent(ctx, chatMessages(prompt, system), llms.WithTemperature(c.temperature))
	if err != nil {
		c.log.ErrorContext(ctx, "Ollama generation failed", "error", err)
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", fmt.Errorf("ollama returned empty text")
	}
	return text, nil
}

// chatMessages puts the optional system instruction ahead of the user prompt.
func chatMessages(prompt, system string) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, 2)
	if system != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, system))
	}
	return append(messages, llms.TextParts(schema.ChatMessageTypeHuman, prompt))
}
