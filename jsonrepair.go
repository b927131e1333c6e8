package cantrip

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Model output is not trusted to be valid JSON. repairJSON is a
// best-effort structural pass over the raw text: it strips code
// fences and prose around the first JSON value, quotes bare object
// keys, drops trailing commas, and closes unterminated strings and
// brackets. It either yields a string that parses or an error; it
// never returns partially decoded data.
func repairJSON(raw string) (string, error) {
	candidate := stripCodeFences(raw)
	candidate = sliceFromFirstBracket(candidate)
	if candidate == "" {
		return "", fmt.Errorf("no JSON value found in output")
	}

	candidate = quoteBareKeys(candidate)
	candidate = balance(candidate)

	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("output is not parseable after repair")
	}
	return candidate, nil
}

func stripCodeFences(s string) string {
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		// Skip a language tag such as ```json.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return rest
	}
	return s
}

func sliceFromFirstBracket(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	return strings.TrimSpace(s[start:])
}

var bareKeyPattern = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_-]*)(\s*:)`)

// quoteBareKeys wraps unquoted object keys in double quotes. Keys
// inside string values are left alone by only rewriting runs that
// start at an object boundary outside any string.
func quoteBareKeys(s string) string {
	var sb strings.Builder
	inString := false
	escaped := false
	segmentStart := 0

	flush := func(end int) {
		segment := s[segmentStart:end]
		if !inString {
			segment = bareKeyPattern.ReplaceAllString(segment, `$1"$2"$3`)
		}
		sb.WriteString(segment)
		segmentStart = end
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			flush(i)
			inString = !inString
		}
	}
	flush(len(s))
	return sb.String()
}

// balance walks the candidate once, removing trailing commas and
// closing whatever the model left open: an unterminated string, then
// any unclosed brackets, in nesting order.
func balance(s string) string {
	var sb strings.Builder
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			sb.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			sb.WriteByte(c)
		case '{':
			stack = append(stack, '}')
			sb.WriteByte(c)
		case '[':
			stack = append(stack, ']')
			sb.WriteByte(c)
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
			sb.WriteByte(c)
			// Top-level value closed; anything after it is prose.
			if len(stack) == 0 {
				return sb.String()
			}
		case ',':
			// Drop the comma when nothing but whitespace sits between
			// it and the closing bracket or the end of input.
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j >= len(s) || s[j] == '}' || s[j] == ']' {
				continue
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}

	if inString {
		sb.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteByte(stack[i])
	}
	return sb.String()
}

// decodeToolSelection extracts the {"tools": [...]} object from model
// output, repairing the JSON first when a strict parse fails.
func decodeToolSelection(raw string) ([]string, error) {
	var payload struct {
		Tools []string `json:"tools"`
	}

	candidate := sliceFromFirstBracket(stripCodeFences(raw))
	if candidate == "" || json.Unmarshal([]byte(candidate), &payload) != nil {
		repaired, err := repairJSON(raw)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			return nil, fmt.Errorf("repaired output has the wrong shape: %w", err)
		}
	}
	return payload.Tools, nil
}
