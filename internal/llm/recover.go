package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	leadingFenceRe  = regexp.MustCompile("^\\s*```[A-Za-z0-9_+-]*")
	trailingFenceRe = regexp.MustCompile("```\\s*$")
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	lineBreakRe     = regexp.MustCompile(`[\r\n]`)
)

// Recover parses model output that should be a JSON value. It tries, in order:
// the raw text, the text with code fences stripped, the span from the first '{'
// to the last '}', that span with trailing commas removed, the de-comma'd span
// with line breaks escaped, and finally with line breaks flattened to spaces.
// The first candidate that parses wins. When none does, the returned
// UnrecoverableFormatError carries the error from parsing the raw text.
func Recover(raw string) (any, error) {
	text, err := RecoverJSON(raw)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(text, &v); err != nil {
		return nil, &UnrecoverableFormatError{Raw: raw, Cause: err}
	}
	return v, nil
}

// RecoverObject is Recover for callers that need a JSON object.
func RecoverObject(raw string) (map[string]any, error) {
	v, err := Recover(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &UnrecoverableFormatError{Raw: raw, Cause: fmt.Errorf("expected a JSON object, got %T", v)}
	}
	return obj, nil
}

// RecoverInto runs the ladder and decodes the first valid candidate into dst.
// Type mismatches between the JSON and dst are reported as plain decode errors,
// not as UnrecoverableFormatError.
func RecoverInto(raw string, dst any) error {
	text, err := RecoverJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(text, dst); err != nil {
		return fmt.Errorf("decode recovered JSON: %w", err)
	}
	return nil
}

// RecoverJSON returns the first ladder candidate that is syntactically valid JSON.
func RecoverJSON(raw string) (json.RawMessage, error) {
	firstErr := checkJSON(raw)
	if firstErr == nil {
		return json.RawMessage(raw), nil
	}
	for _, candidate := range repairCandidates(raw) {
		if checkJSON(candidate) == nil {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, &UnrecoverableFormatError{Raw: raw, Cause: firstErr}
}

// checkJSON reports the decoder's error for s, which includes the offset.
func checkJSON(s string) error {
	var v any
	return json.Unmarshal([]byte(s), &v)
}

// repairCandidates builds the fallback ladder. Fence stripping and brace
// extraction both start from the raw text; the later steps build on the span.
func repairCandidates(raw string) []string {
	candidates := []string{stripCodeFence(raw)}

	span, ok := braceSpan(raw)
	if !ok {
		return candidates
	}
	noCommas := trailingCommaRe.ReplaceAllString(span, "$1")
	escaped := strings.NewReplacer("\n", `\n`, "\r", `\r`).Replace(noCommas)
	flattened := lineBreakRe.ReplaceAllString(noCommas, " ")

	return append(candidates, span, noCommas, escaped, flattened)
}

// stripCodeFence removes a leading ``` marker (with or without a language tag)
// and a trailing ``` marker.
func stripCodeFence(s string) string {
	s = leadingFenceRe.ReplaceAllString(s, "")
	s = trailingFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// braceSpan returns the substring from the first '{' to the last '}' inclusive.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
