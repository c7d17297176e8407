package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseError reports that the oracle's response could not be interpreted as
// the expected structure even after recovery parsing. Raw retains the
// original model text for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse oracle response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeLoose parses raw model output into v. Model output is untrusted: it
// may be fenced, wrapped in prose, or use single quotes. Strategies are tried
// in order: direct parse, fence-stripped parse, first JSON object/array
// extracted, quote-normalized parse, then jsonrepair as the final fallback.
// On failure the returned *ParseError keeps the raw text.
func DecodeLoose(raw string, v any) error {
	firstErr := json.Unmarshal([]byte(raw), v)
	if firstErr == nil {
		return nil
	}

	stripped := stripCodeFences(raw)
	if json.Unmarshal([]byte(stripped), v) == nil {
		return nil
	}

	candidate := stripped
	if extracted, ok := extractFirstJSON(stripped); ok {
		candidate = extracted
		if json.Unmarshal([]byte(candidate), v) == nil {
			return nil
		}
	}

	if normalized := normalizeQuotes(candidate); normalized != candidate {
		if json.Unmarshal([]byte(normalized), v) == nil {
			return nil
		}
	}

	if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
		if json.Unmarshal([]byte(repaired), v) == nil {
			return nil
		}
	}

	return &ParseError{Raw: raw, Err: firstErr}
}

// stripCodeFences removes a surrounding markdown code fence, if any.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractFirstJSON returns the first balanced JSON object or array in s.
// Brackets inside string literals are ignored.
func extractFirstJSON(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", false
	}

	open := s[start]
	var closing byte = '}'
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
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
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

var singleQuoted = regexp.MustCompile(`'([^']*)'`)

// normalizeQuotes rewrites single-quoted strings as double-quoted ones.
func normalizeQuotes(s string) string {
	return singleQuoted.ReplaceAllString(s, `"$1"`)
}
