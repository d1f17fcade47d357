package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/6are8/Plan-Smart/internal/cache"
	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/llm"
	"github.com/6are8/Plan-Smart/internal/logger"
	"github.com/6are8/Plan-Smart/internal/weekly"
)

const (
	suggestionHistoryDays = 21
	suggestionMinEntries  = 3
	maxSuggestions        = 5
	maxSuggestionRunes    = 50

	// SuggestionTypeAI marks suggestions derived by the model from history.
	SuggestionTypeAI = "ai_prediction"
)

// Suggestion is one proposed task for tomorrow.
type Suggestion struct {
	Text string `json:"text"`
	Type string `json:"type"`
	Day  string `json:"day"`
}

// SuggestTomorrow proposes recurring tasks for tomorrow from the last three
// weeks of "what to improve" notes. Results are cached per user until the
// end of the day. Too little history or an unusable model reply yields an
// empty list; only store failures are returned as errors.
func (s *Service) SuggestTomorrow(ctx context.Context, userID string) ([]Suggestion, error) {
	now := s.now()
	key := fmt.Sprintf("suggestions:%s:%s", userID, now.Format(database.DateLayout))

	if cached, ok, err := cache.GetJSON[[]Suggestion](ctx, s.cache, key); err != nil {
		s.log.WarnContext(ctx, "Suggestion cache read failed", "user_id", userID, "error", err)
	} else if ok {
		return cached, nil
	}

	today := database.NewDate(now)
	entries, err := s.store.ListEntriesInRange(ctx, userID, today.AddDays(-suggestionHistoryDays), today)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion history: %w", err)
	}
	if len(entries) < suggestionMinEntries {
		return []Suggestion{}, nil
	}

	var history []string
	for _, e := range entries {
		todo := strings.TrimSpace(e.WhatToImprove.String)
		if !e.WhatToImprove.Valid || todo == "" {
			continue
		}
		history = append(history, fmt.Sprintf("- %s (%s): %s", weekly.GermanWeekday(e.Date.Time), e.Date.Format("02.01."), todo))
	}
	if len(history) == 0 {
		return []Suggestion{}, nil
	}

	tomorrow := weekly.GermanWeekday(today.AddDays(1).Time)
	prompt := fmt.Sprintf(suggestionInstruction, strings.Join(history, "\n"), tomorrow)

	raw, err := llm.Call(ctx, s.gen, s.timeout, prompt, suggestionSystemInstruction)
	if err != nil {
		s.log.WarnContext(ctx, "Suggestion generation failed", "user_id", userID, "error", err)
		return []Suggestion{}, nil
	}

	suggestions, err := parseSuggestions(raw, tomorrow)
	if err != nil {
		s.log.WarnContext(ctx, "Unusable suggestion reply", "user_id", userID, "error", err,
			"response_preview", logger.Truncate(raw, 120))
		return []Suggestion{}, nil
	}

	if err := cache.SetJSON(ctx, s.cache, key, suggestions, now); err != nil {
		s.log.WarnContext(ctx, "Failed to cache suggestions", "user_id", userID, "error", err)
	}
	return suggestions, nil
}

// parseSuggestions reads the first JSON array of strings in raw. Non-string
// and blank items are skipped.
func parseSuggestions(raw, day string) ([]Suggestion, error) {
	span, ok := llm.FindJSONArray(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON array in model response")
	}

	var items []any
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	out := make([]Suggestion, 0, maxSuggestions)
	for _, item := range items {
		text, ok := item.(string)
		if !ok {
			continue
		}
		text = clip(text, maxSuggestionRunes)
		if text == "" {
			continue
		}
		out = append(out, Suggestion{Text: text, Type: SuggestionTypeAI, Day: day})
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}
