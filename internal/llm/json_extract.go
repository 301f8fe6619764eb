package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeBlockPattern matches markdown code blocks with an optional language tag.
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// ExtractJSON extracts JSON from an LLM response that may be wrapped in
// markdown. Code-fenced JSON wins over raw JSON found in the text.
func ExtractJSON(response string) (string, error) {
	if jsonStr, found := extractFromCodeBlock(response); found {
		return jsonStr, nil
	}
	if jsonStr, found := extractRawJSON(response); found {
		return jsonStr, nil
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

// ExtractInto extracts JSON from a response and unmarshals it into v.
func ExtractInto(response string, v any) error {
	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("unmarshal extracted JSON: %w", err)
	}
	return nil
}

func extractFromCodeBlock(response string) (string, bool) {
	matches := codeBlockPattern.FindAllStringSubmatch(response, -1)
	for _, match := range matches {
		if len(match) < 3 {
			continue
		}
		lang := strings.ToLower(match[1])
		content := strings.TrimSpace(match[2])

		// Skip blocks explicitly tagged as other languages.
		if lang != "" && lang != "json" {
			continue
		}
		if (strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")) && isValidJSON(content) {
			return content, true
		}
	}
	return "", false
}

// extractRawJSON scans for the first balanced {...} or [...] that parses.
func extractRawJSON(response string) (string, bool) {
	for _, open := range []byte{'{', '['} {
		start := strings.IndexByte(response, open)
		if start < 0 {
			continue
		}
		closeCh := byte('}')
		if open == '[' {
			closeCh = ']'
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(response); i++ {
			c := response[i]
			if escaped {
				escaped = false
				continue
			}
			switch {
			case c == '\\' && inString:
				escaped = true
			case c == '"':
				inString = !inString
			case !inString && c == open:
				depth++
			case !inString && c == closeCh:
				depth--
				if depth == 0 {
					candidate := response[start : i+1]
					if isValidJSON(candidate) {
						return candidate, true
					}
				}
			}
		}
	}
	return "", false
}

func isValidJSON(s string) bool {
	return json.Valid([]byte(s))
}
