package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Extract recovers a structured response from free-form model output. It
// tries a direct parse, then the first fenced code block, then a balanced
// object span containing the results key. Returns nil when no strategy
// yields a results collection; it never fails on malformed input.
func Extract(text string) *ParsedResponse {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// 1. The whole output is the JSON object.
	if parsed := tryParse(text); parsed != nil {
		return parsed
	}

	// 2. JSON wrapped in a markdown fence.
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		if parsed := tryParse(m[1]); parsed != nil {
			return parsed
		}
	}

	// 3. An object span embedded in surrounding prose.
	if span := objectSpanWith(text, `"results"`); span != "" {
		if parsed := tryParse(span); parsed != nil {
			return parsed
		}
	}

	return nil
}

// tryParse attempts a strict decode and requires the results key to be
// present, distinguishing `{}` from `{"results": []}`.
func tryParse(candidate string) *ParsedResponse {
	var probe struct {
		Results *[]Result `json:"results"`
	}
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil
	}
	if probe.Results == nil {
		return nil
	}
	return &ParsedResponse{Results: *probe.Results}
}

// objectSpanWith finds the first balanced {...} span that contains the given
// marker. Brace matching ignores string contents, so braces inside model
// prose values do not derail it.
func objectSpanWith(text, marker string) string {
	for start := strings.Index(text, "{"); start != -1; {
		end := matchBrace(text, start)
		if end == -1 {
			return ""
		}
		span := text[start : end+1]
		if strings.Contains(span, marker) {
			return span
		}
		next := strings.Index(text[end+1:], "{")
		if next == -1 {
			return ""
		}
		start = end + 1 + next
	}
	return ""
}

// matchBrace returns the index of the brace closing the object opened at
// start, or -1 when unbalanced.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
