// Package jsonutil implements the tolerant JSON extraction every JSON-
// returning agent prompt needs (spec.md §4.5, §9 "Tolerant JSON parsing").
// LLM responses arrive as text that may or may not be fenced; this package
// covers the three failure modes the design notes call out before giving up:
// raw JSON, ```json-fenced, and fenced-without-a-language-tag.
package jsonutil

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ErrNoJSON is returned when none of the three extraction strategies found
// a parseable JSON payload in the text.
var ErrNoJSON = errors.New("jsonutil: no JSON object or array found in text")

// Extract tries, in order: the raw text as-is, the first fenced code block
// (with or without a "json" language tag), and finally the substring between
// the first '{'/'[' and the matching last '}'/']'. It unmarshal into v on the
// first strategy that parses cleanly.
func Extract(text string, v any) error {
	candidates := candidates(text)
	var lastErr error
	for _, c := range candidates {
		if c == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(c))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err == nil {
			return nil
		}
		// retry the same candidate without the strict-field check: the
		// LLM may have added an extra field we don't model.
		if err := json.Unmarshal([]byte(c), v); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr != nil {
		return errors.Join(ErrNoJSON, lastErr)
	}
	return ErrNoJSON
}

// candidates returns the text to try, in priority order: raw, fenced match,
// bracket-sliced fallback.
func candidates(text string) []string {
	trimmed := strings.TrimSpace(text)
	out := []string{trimmed}

	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		out = append(out, strings.TrimSpace(m[1]))
	}

	if sliced := sliceOutermostBrackets(trimmed); sliced != "" {
		out = append(out, sliced)
	}
	return out
}

// sliceOutermostBrackets returns the substring from the first '{' or '[' to
// the matching last '}' or ']', a last-resort for text like "Sure! {...}
// Let me know if that helps."
func sliceOutermostBrackets(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	open, close := byte('{'), byte('}')
	if text[start] == '[' {
		open, close = '[', ']'
	}
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
