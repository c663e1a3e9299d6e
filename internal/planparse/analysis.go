package planparse

import (
	"encoding/json"
	"strings"
)

var fenceReplacer = strings.NewReplacer("```json\n", "", "```json", "", "\n```", "")

// ParseAnalysis normalizes the analysis field of a research payload. Objects
// are returned as a plain map. Strings are parsed as JSON after stripping ```json
// fences; a string that still does not parse is returned as {"raw_text": s}.
func ParseAnalysis(v any) map[string]any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return t
	case string:
		cleaned := strings.TrimSpace(fenceReplacer.Replace(t))
		var out map[string]any
		if err := json.Unmarshal([]byte(cleaned), &out); err == nil && out != nil {
			return out
		}
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return map[string]any{"raw_text": t}
	default:
		// Named map types such as bson.M round-trip through JSON.
		raw, err := json.Marshal(t)
		if err != nil {
			return nil
		}
		var out map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil
		}
		return out
	}
}
