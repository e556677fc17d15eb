package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionRequest is one entry of the oracle's "actions" array: a function
// name from the catalog plus a loosely typed parameter bag.
type ActionRequest struct {
	Function string         `json:"function"`
	Params   map[string]any `json:"params"`
}

// Reply is the structured contract the oracle must honor.
type Reply struct {
	Actions      []ActionRequest `json:"actions"`
	ResponseText string          `json:"response_text"`
}

// ParseReply extracts and decodes the JSON object embedded in the oracle's
// raw text. The model routinely wraps its output in markdown fences or
// surrounds it with prose, so the first balanced object span is used.
func ParseReply(raw string) (*Reply, error) {
	jsonStr := extractJSON(stripFences(raw))
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object found in model response")
	}

	var reply Reply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return nil, fmt.Errorf("parse model JSON: %w", err)
	}
	return &reply, nil
}

// stripFences removes a ```json ... ``` (or plain ```) wrapper if present.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSON returns the first balanced {...} span in text, tracking string
// literals and escapes so braces inside values don't terminate the scan.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
