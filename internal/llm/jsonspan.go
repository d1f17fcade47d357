package llm

// FindJSONObject returns the first balanced top-level {...} span in s.
// Models often wrap JSON in prose or code fences; only the span is parsed.
func FindJSONObject(s string) (string, bool) {
	return findSpan(s, '{', '}')
}

// FindJSONArray returns the first balanced top-level [...] span in s.
func FindJSONArray(s string) (string, bool) {
	return findSpan(s, '[', ']')
}

// findSpan scans for a balanced open/close pair. Delimiters inside string
// literals of the span are ignored.
func findSpan(s string, open, close byte) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case open:
			if start < 0 {
				start = i
			}
			depth++
		case close:
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
