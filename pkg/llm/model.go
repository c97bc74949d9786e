package llm

import "strings"

// ResolveModelID maps a configured alias onto the model id sent upstream.
// Unknown aliases are passed through unchanged.
func ResolveModelID(alias string, cfg ModelConfig) string {
	if name := strings.TrimSpace(cfg.ModelName); name != "" {
		return name
	}
	return strings.TrimSpace(alias)
}
