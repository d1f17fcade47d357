package plan

import "strings"

// Emotion labels produced by DetectEmotion.
const (
	EmotionNeutral   = "neutral"
	EmotionStressed  = "gestresst"
	EmotionExhausted = "erschöpft"
	EmotionSad       = "traurig"
	EmotionNegative  = "negativ"
	EmotionHappy     = "glücklich"
	EmotionMotivated = "motiviert"
	EmotionPositive  = "positiv"
)

var (
	positiveKeywords = []string{"glücklich", "fröhlich", "gut", "super", "toll", "freude", "entspannt", "zufrieden", "motiviert"}
	negativeKeywords = []string{"gestresst", "müde", "traurig", "schlecht", "ängstlich", "sorge", "problem", "erschöpft", "überfordert"}
)

// DetectEmotion classifies German free text by keyword counts. It is used
// when no generator is available and never fails.
func DetectEmotion(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return EmotionNeutral
	}

	pos := countKeywords(t, positiveKeywords)
	neg := countKeywords(t, negativeKeywords)

	switch {
	case neg > pos:
		switch {
		case containsAny(t, "gestresst", "überfordert"):
			return EmotionStressed
		case containsAny(t, "müde", "erschöpft"):
			return EmotionExhausted
		case containsAny(t, "traurig"):
			return EmotionSad
		}
		return EmotionNegative
	case pos > neg:
		switch {
		case containsAny(t, "glücklich", "freude"):
			return EmotionHappy
		case containsAny(t, "motiviert"):
			return EmotionMotivated
		}
		return EmotionPositive
	}
	return EmotionNeutral
}

func countKeywords(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
