package scrape

import (
	"encoding/json"
	"fmt"
)

// ParseSuggestions decodes the suggest payload, a two-element JSON array of
// the echoed query and the completion list: ["que", ["query a", "query b"]].
func ParseSuggestions(body []byte) ([]string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("suggest payload: %w", err)
	}
	if len(raw) < 2 {
		return nil, nil
	}
	var completions []string
	if err := json.Unmarshal(raw[1], &completions); err != nil {
		return nil, fmt.Errorf("suggest completions: %w", err)
	}
	return completions, nil
}
