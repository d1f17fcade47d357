package weekly

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/6are8/Plan-Smart/internal/llm"
)

// Mode selects which FeatureSet variant the extractor asks for.
type Mode string

const (
	// ModeAnalysis is the flat categorical analysis.
	ModeAnalysis Mode = "analysis"
	// ModePersona is the traits and coaching-notes persona.
	ModePersona Mode = "persona"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAnalysis, ModePersona:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown feature mode %q", s)
	}
}

// schemaVersion is written into every stored blob.
const schemaVersion = 1

// Keys of the analysis variant. Missing keys are stored as explicit null.
var analysisKeys = []string{
	"stress_level",
	"sleep_quality",
	"energy_pattern",
	"planning_style",
	"emotional_stability",
	"focus_level",
	"workload",
	"dominant_interests",
	"motivation_triggers",
	"plan_preference",
	"risk_flags",
}

// Persona bounds. The persona is interpolated into plan prompts with fixed
// length budgets.
const (
	MaxTraits          = 5
	CoachingNotesCount = 3
	MaxNoteRunes       = 60
	MaxTrendRunes      = 50
	MaxPriorityRunes   = 80
)

// coachingFiller pads coaching_notes when the model returns fewer than three.
const coachingFiller = "Bleib dran und achte auf kleine Fortschritte."

// Analysis is the flat categorical variant. Values are kept as decoded JSON
// so unknown keys survive a round trip.
type Analysis map[string]any

// Persona is the nested persona variant.
type Persona struct {
	Traits        []string `json:"traits"`
	CoachingNotes []string `json:"coaching_notes"`
	Trend         string   `json:"trend"`
	Priority      string   `json:"priority"`
}

// FeatureSet is a tagged variant: exactly one of Analysis or Persona is set,
// selected by Mode.
type FeatureSet struct {
	Mode     Mode
	Analysis Analysis
	Persona  *Persona
}

type envelope struct {
	Schema  Mode            `json:"schema"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Encode serializes the set with its schema tag.
func (fs FeatureSet) Encode() (string, error) {
	var data any
	switch fs.Mode {
	case ModeAnalysis:
		if fs.Analysis == nil {
			return "", fmt.Errorf("analysis feature set has no data")
		}
		data = fs.Analysis
	case ModePersona:
		if fs.Persona == nil {
			return "", fmt.Errorf("persona feature set has no data")
		}
		data = fs.Persona
	default:
		return "", fmt.Errorf("unknown feature mode %q", fs.Mode)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode features: %w", err)
	}
	out, err := json.Marshal(envelope{Schema: fs.Mode, Version: schemaVersion, Data: raw})
	if err != nil {
		return "", fmt.Errorf("failed to encode feature envelope: %w", err)
	}
	return string(out), nil
}

// DecodeFeatures parses a stored blob. Blobs without a schema tag are the
// legacy flat analysis object.
func DecodeFeatures(blob string) (FeatureSet, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &probe); err != nil {
		return FeatureSet{}, fmt.Errorf("failed to decode features: %w", err)
	}

	if _, tagged := probe["schema"]; !tagged {
		var a Analysis
		if err := json.Unmarshal([]byte(blob), &a); err != nil {
			return FeatureSet{}, fmt.Errorf("failed to decode legacy features: %w", err)
		}
		return FeatureSet{Mode: ModeAnalysis, Analysis: fillAnalysis(a)}, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(blob), &env); err != nil {
		return FeatureSet{}, fmt.Errorf("failed to decode feature envelope: %w", err)
	}

	switch env.Schema {
	case ModeAnalysis:
		var a Analysis
		if err := json.Unmarshal(env.Data, &a); err != nil {
			return FeatureSet{}, fmt.Errorf("failed to decode analysis features: %w", err)
		}
		return FeatureSet{Mode: ModeAnalysis, Analysis: fillAnalysis(a)}, nil
	case ModePersona:
		var p Persona
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return FeatureSet{}, fmt.Errorf("failed to decode persona features: %w", err)
		}
		return FeatureSet{Mode: ModePersona, Persona: &p}, nil
	default:
		return FeatureSet{}, fmt.Errorf("unknown feature schema %q", env.Schema)
	}
}

// String returns the value of key when it is a non-empty string.
func (a Analysis) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Strings returns the value of key when it is a list, keeping string items.
func (a Analysis) Strings(key string) []string {
	items, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// StressLevel is the stress label of either variant, empty if unknown.
func (fs FeatureSet) StressLevel() string {
	if fs.Mode == ModeAnalysis {
		return fs.Analysis.String("stress_level")
	}
	return ""
}

// Interests returns the dominant interests (analysis) or traits (persona).
func (fs FeatureSet) Interests() []string {
	switch fs.Mode {
	case ModeAnalysis:
		return fs.Analysis.Strings("dominant_interests")
	case ModePersona:
		if fs.Persona != nil {
			return fs.Persona.Traits
		}
	}
	return nil
}

// fillAnalysis sets every known key that is absent to nil.
func fillAnalysis(a Analysis) Analysis {
	if a == nil {
		a = Analysis{}
	}
	for _, key := range analysisKeys {
		if _, ok := a[key]; !ok {
			a[key] = nil
		}
	}
	return a
}

// clampPersona enforces the persona length budgets.
func clampPersona(p *Persona) {
	traits := make([]string, 0, len(p.Traits))
	for _, t := range p.Traits {
		if t = strings.TrimSpace(t); t != "" {
			traits = append(traits, t)
		}
	}
	if len(traits) > MaxTraits {
		traits = traits[:MaxTraits]
	}
	p.Traits = traits

	notes := make([]string, 0, CoachingNotesCount)
	for _, n := range p.CoachingNotes {
		if n = strings.TrimSpace(n); n == "" {
			continue
		}
		if len(notes) == CoachingNotesCount {
			break
		}
		notes = append(notes, truncateRunes(n, MaxNoteRunes))
	}
	for len(notes) < CoachingNotesCount {
		notes = append(notes, truncateRunes(coachingFiller, MaxNoteRunes))
	}
	p.CoachingNotes = notes

	p.Trend = truncateRunes(strings.TrimSpace(p.Trend), MaxTrendRunes)
	p.Priority = truncateRunes(strings.TrimSpace(p.Priority), MaxPriorityRunes)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}

// parseFeatures extracts and validates the JSON object in a raw model reply.
func parseFeatures(mode Mode, raw string) (FeatureSet, error) {
	span, ok := llm.FindJSONObject(raw)
	if !ok {
		return FeatureSet{}, fmt.Errorf("no JSON object in model response")
	}

	switch mode {
	case ModeAnalysis:
		var a Analysis
		if err := json.Unmarshal([]byte(span), &a); err != nil {
			return FeatureSet{}, fmt.Errorf("invalid JSON in model response: %w", err)
		}
		if len(a) == 0 {
			return FeatureSet{}, fmt.Errorf("empty JSON object in model response")
		}
		return FeatureSet{Mode: ModeAnalysis, Analysis: fillAnalysis(a)}, nil

	case ModePersona:
		var p Persona
		if err := json.Unmarshal([]byte(span), &p); err != nil {
			return FeatureSet{}, fmt.Errorf("invalid persona JSON in model response: %w", err)
		}
		if len(p.Traits) == 0 && len(p.CoachingNotes) == 0 && p.Trend == "" && p.Priority == "" {
			return FeatureSet{}, fmt.Errorf("persona JSON in model response has no usable fields")
		}
		clampPersona(&p)
		return FeatureSet{Mode: ModePersona, Persona: &p}, nil

	default:
		return FeatureSet{}, fmt.Errorf("unknown feature mode %q", mode)
	}
}
