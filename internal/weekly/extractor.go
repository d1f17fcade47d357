package weekly

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/6are8/Plan-Smart/internal/database"
	"github.com/6are8/Plan-Smart/internal/errs"
	"github.com/6are8/Plan-Smart/internal/llm"
	"github.com/6are8/Plan-Smart/internal/logger"
)

// Extractor turns a week of journal entries into a FeatureSet with one
// generator call. It has no persistence side effects.
type Extractor struct {
	gen     llm.Generator
	timeout time.Duration
	log     *slog.Logger
}

// NewExtractor creates an Extractor. timeout bounds each generator call.
func NewExtractor(gen llm.Generator, timeout time.Duration, log *slog.Logger) *Extractor {
	if log == nil {
		log = logger.Discard()
	}
	return &Extractor{
		gen:     gen,
		timeout: timeout,
		log:     log.With("component", "feature_extractor"),
	}
}

// Extract requests the given variant for entries. previous, the prior week's
// features, is only used in persona mode and may be nil. All failures are
// returned as ExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, mode Mode, entries []*database.JournalEntry, previous *FeatureSet) (FeatureSet, error) {
	if len(entries) == 0 {
		return FeatureSet{}, errs.NewExtractionError("no entries to analyze", nil)
	}

	transcript := BuildTranscript(entries)

	var prompt, system string
	switch mode {
	case ModeAnalysis:
		prompt = fmt.Sprintf(analysisInstruction, transcript)
		system = analysisSystemInstruction
	case ModePersona:
		prevCtx := ""
		if previous != nil {
			if s := FormatSummary(previous); s != "" {
				prevCtx = fmt.Sprintf(previousWeekContext, s)
			}
		}
		prompt = fmt.Sprintf(personaInstruction, transcript, prevCtx)
		system = personaSystemInstruction
	default:
		return FeatureSet{}, errs.NewExtractionError(fmt.Sprintf("unknown feature mode %q", mode), nil)
	}

	e.log.DebugContext(ctx, "Requesting weekly features", "mode", mode, "entries", len(entries), "prompt_chars", len(prompt))

	raw, err := llm.Call(ctx, e.gen, e.timeout, prompt, system)
	if err != nil {
		e.log.WarnContext(ctx, "Feature extraction call failed", "mode", mode, "error", err)
		return FeatureSet{}, err
	}

	fs, err := parseFeatures(mode, raw)
	if err != nil {
		e.log.WarnContext(ctx, "Could not parse model response", "mode", mode, "error", err,
			"response_preview", logger.Truncate(raw, 120))
		return FeatureSet{}, errs.NewExtractionError("unusable model response", err)
	}

	return fs, nil
}

// BuildTranscript renders entries one block per day: date, weekday, mood and
// the non-empty free-text fields.
func BuildTranscript(entries []*database.JournalEntry) string {
	var sb strings.Builder
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s (%s)\n", entry.Date.Format("02.01.2006"), GermanWeekday(entry.Date.Time))
		fmt.Fprintf(&sb, "Stimmung: %s\n", entry.MoodValue().Describe())
		writeField(&sb, "Was lief gut", entry.WhatWentWell.String)
		writeField(&sb, "Was verbessern", entry.WhatToImprove.String)
		writeField(&sb, "Wie fühle ich mich", entry.HowIFeel.String)
	}
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, value)
}
