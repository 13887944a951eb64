package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSONBlock pulls the first fenced json code block out of an LLM reply
// and unmarshals it into a flat key-value map. Models wrap structured output
// in markdown fences; the regex tolerates a missing language tag.
func ExtractJSONBlock(text string) (map[string]string, error) {
	match := fencedJSONPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, fmt.Errorf("no json block found in response")
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(match[1]), &result); err != nil {
		return nil, fmt.Errorf("parse json block: %w", err)
	}

	return result, nil
}
