package recorder

import (
	"fmt"
	"regexp"
	"strings"
)

// A regex to extract the payload of a markdown code block, optionally
// labeled as JSON.
var codeBlockRegex = regexp.MustCompile(fmt.Sprintf("(?s)%s(?:json)?\\s*(.*?)\\s*%s", "```", "```"))

// decodeExtractedContent recovers structure from an action result's text.
// Text carrying a fenced code block with valid JSON yields the parsed value;
// a fence with unparseable content falls back to the original raw string,
// and a nil source stays nil. This never fails, only degrades.
func decodeExtractedContent(raw *string) interface{} {
	if raw == nil {
		return nil
	}

	matches := codeBlockRegex.FindStringSubmatch(*raw)
	if len(matches) < 2 {
		return *raw
	}

	candidate := strings.TrimSpace(matches[1])
	if candidate == "" {
		return *raw
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return *raw
	}
	return parsed
}
