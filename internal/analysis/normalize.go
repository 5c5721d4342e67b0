package analysis

import (
	"encoding/json"
	"errors"
	"strings"
)

// Normalize recovers a structured payload from raw model output. Models are
// instructed to answer with bare JSON but routinely wrap it in markdown
// fences or explanatory prose, or truncate trailing characters. Recovery
// heuristics are applied in order, each purely syntactic:
//
//  1. parse the raw string as-is;
//  2. strip markdown code fences and retry;
//  3. slice to the outermost { ... } boundary and retry.
//
// No semantic correction is attempted. When every heuristic fails the
// result is a MalformedResponseError carrying a raw excerpt.
func Normalize(raw string) (*ParsedPayload, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &MalformedResponseError{Raw: raw, Err: errors.New("empty response")}
	}

	candidates := []string{
		trimmed,
		stripFences(trimmed),
		sliceToObjectBounds(stripFences(trimmed)),
	}

	var lastErr error
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var payload ParsedPayload
		if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
			lastErr = err
			continue
		}
		return &payload, nil
	}

	return nil, &MalformedResponseError{Raw: raw, Err: lastErr}
}

// stripFences removes a surrounding markdown code fence (```json ... ``` or
// ``` ... ```) if present, along with any prose outside the fence.
func stripFences(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	// Language tag on the opening fence, e.g. ```json
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(body[:nl])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
			body = body[nl+1:]
		}
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// sliceToObjectBounds returns the substring covering the outermost balanced
// JSON object embedded in leading or trailing noise. When the object is
// unbalanced (truncated output) it falls back to the first-'{' to last-'}'
// span. Returns "" when no object boundary exists.
func sliceToObjectBounds(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	end := strings.LastIndexByte(s, '}')
	if end < start {
		return ""
	}
	return s[start : end+1]
}
