// Package mood models the journal mood column, which holds either a legacy
// 1..5 numeric rating or a categorical label.
package mood

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags which representation a Mood carries.
type Kind int

const (
	KindNone Kind = iota
	KindNumeric
	KindCategorical
)

// Labels used by the categorical representation.
const (
	Happy   = "Happy"
	Calm    = "Calm"
	Focused = "Focused"
	Tired   = "Tired"
	Sad     = "Sad"
)

// legacyScale maps the old numeric ratings onto labels. Values outside
// the scale migrate to Calm.
var legacyScale = map[int]string{
	5: Happy,
	4: Calm,
	3: Focused,
	2: Tired,
	1: Sad,
}

// Mood is a tagged variant: exactly one of numeric or label is meaningful,
// selected by kind. The zero value means no mood was recorded.
type Mood struct {
	kind    Kind
	numeric int
	label   string
}

func Numeric(n int) Mood {
	return Mood{kind: KindNumeric, numeric: n}
}

func Categorical(label string) Mood {
	return Mood{kind: KindCategorical, label: label}
}

// Parse reads a stored column value. Numeric strings stay numeric; nothing
// is converted here.
func Parse(raw string) Mood {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Mood{}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return Numeric(n)
	}
	return Categorical(raw)
}

func (m Mood) Kind() Kind { return m.kind }

func (m Mood) IsZero() bool { return m.kind == KindNone }

// Value returns the numeric rating when the mood is numeric.
func (m Mood) Value() (int, bool) {
	return m.numeric, m.kind == KindNumeric
}

// Label returns the label when the mood is categorical.
func (m Mood) Label() (string, bool) {
	return m.label, m.kind == KindCategorical
}

// String renders the stored representation.
func (m Mood) String() string {
	switch m.kind {
	case KindNumeric:
		return strconv.Itoa(m.numeric)
	case KindCategorical:
		return m.label
	default:
		return ""
	}
}

// Describe renders the mood for prompts and logs.
func (m Mood) Describe() string {
	switch m.kind {
	case KindNumeric:
		return fmt.Sprintf("%d/5", m.numeric)
	case KindCategorical:
		return m.label
	default:
		return "unbekannt"
	}
}

// Upgrade converts a legacy numeric mood to its categorical label. It is the
// Go side of migration 000002 and must stay in sync with it. Categorical and
// empty moods are returned unchanged.
func Upgrade(m Mood) Mood {
	if m.kind != KindNumeric {
		return m
	}
	if label, ok := legacyScale[m.numeric]; ok {
		return Categorical(label)
	}
	return Categorical(Calm)
}
