package weekly

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisFillsMissingKeys(t *testing.T) {
	t.Parallel()

	fs, err := parseFeatures(ModeAnalysis, `Sure, here you go: {"stress_level":"hoch","mood_swings":"selten"} hope that helps!`)
	require.NoError(t, err)
	require.Equal(t, ModeAnalysis, fs.Mode)

	assert.Equal(t, "hoch", fs.Analysis["stress_level"])
	assert.Equal(t, "selten", fs.Analysis["mood_swings"], "unknown keys are kept")
	for _, key := range analysisKeys {
		assert.Contains(t, fs.Analysis, key)
	}
	assert.Nil(t, fs.Analysis["sleep_quality"])

	blob, err := fs.Encode()
	require.NoError(t, err)
	assert.Contains(t, blob, `"sleep_quality":null`)
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode Mode
		raw  string
	}{
		{"no json", ModeAnalysis, "Leider keine Daten."},
		{"broken json", ModeAnalysis, `{"stress_level": hoch}`},
		{"empty object", ModeAnalysis, `{}`},
		{"persona wrong types", ModePersona, `{"traits": "ruhig"}`},
		{"persona without fields", ModePersona, `{"other": 1}`},
		{"unknown mode", Mode("raw"), `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseFeatures(tt.mode, tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestPersonaClamping(t *testing.T) {
	t.Parallel()

	trend := strings.Repeat("t", 80)
	priority := strings.Repeat("ü", 100)
	longNote := strings.Repeat("n", 75)
	raw := `{"traits":["a","b","c","d","e","f","g"],"coaching_notes":["` + longNote + `"],` +
		`"trend":"` + trend + `","priority":"` + priority + `"}`

	fs, err := parseFeatures(ModePersona, raw)
	require.NoError(t, err)
	p := fs.Persona
	require.NotNil(t, p)

	assert.Len(t, p.Traits, MaxTraits)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, p.Traits)
	require.Len(t, p.CoachingNotes, CoachingNotesCount)
	assert.Equal(t, strings.Repeat("n", MaxNoteRunes), p.CoachingNotes[0])
	assert.Equal(t, coachingFiller, p.CoachingNotes[1])
	assert.Equal(t, coachingFiller, p.CoachingNotes[2])
	assert.Len(t, p.Trend, MaxTrendRunes)
	assert.Equal(t, MaxPriorityRunes, utf8.RuneCountInString(p.Priority))
}

func TestPersonaTruncatesExtraNotes(t *testing.T) {
	t.Parallel()

	fs, err := parseFeatures(ModePersona, `{"coaching_notes":["1","2","","3","4"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, fs.Persona.CoachingNotes)
	assert.Empty(t, fs.Persona.Traits)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	persona := FeatureSet{Mode: ModePersona, Persona: &Persona{
		Traits: []string{"ruhig"}, CoachingNotes: []string{"a", "b", "c"}, Trend: "stabil", Priority: "Schlaf",
	}}
	blob, err := persona.Encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(blob, `{"schema":"persona","version":1,`), blob)

	decoded, err := DecodeFeatures(blob)
	require.NoError(t, err)
	assert.Equal(t, persona, decoded)

	legacy, err := DecodeFeatures(`{"stress_level":"mittel","dominant_interests":["Sport"]}`)
	require.NoError(t, err)
	assert.Equal(t, ModeAnalysis, legacy.Mode)
	assert.Equal(t, "mittel", legacy.StressLevel())
	assert.Equal(t, []string{"Sport"}, legacy.Interests())

	_, err = DecodeFeatures(`{"schema":"dream","version":1,"data":{}}`)
	assert.Error(t, err)
	_, err = DecodeFeatures(`not json`)
	assert.Error(t, err)

	_, err = FeatureSet{Mode: ModeAnalysis}.Encode()
	assert.Error(t, err)
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fs   *FeatureSet
		want string
	}{
		{"absent", nil, "Kein Profil verfügbar"},
		{
			"analysis",
			&FeatureSet{Mode: ModeAnalysis, Analysis: Analysis{
				"stress_level": "hoch", "energy_pattern": "morgens", "dominant_interests": []any{"Sport", "Lesen"},
			}},
			"Stress: hoch | Energie: morgens | Interessen: Sport, Lesen",
		},
		{
			"analysis without patterns",
			&FeatureSet{Mode: ModeAnalysis, Analysis: fillAnalysis(nil)},
			"Keine spezifischen Muster erkannt",
		},
		{
			"persona",
			&FeatureSet{Mode: ModePersona, Persona: &Persona{Traits: []string{"ruhig", "fleißig"}, Priority: "Schlaf"}},
			"Eigenschaften: ruhig, fleißig | Fokus: Schlaf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatSummary(tt.fs))
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("persona")
	require.NoError(t, err)
	assert.Equal(t, ModePersona, m)
	_, err = ParseMode("flat")
	assert.Error(t, err)
}
