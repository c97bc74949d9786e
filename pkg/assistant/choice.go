package assistant

import (
	"fmt"
	"strings"
)

// Choice selects which chat backend answers a request.
type Choice string

const (
	// ChoiceLocal is an OpenAI-compatible server on the user's machine (LM Studio, Ollama).
	ChoiceLocal Choice = "local"
	// ChoiceCloud is a hosted model behind an OpenAI-compatible endpoint.
	ChoiceCloud Choice = "cloud"
)

// Label returns the name shown next to the model picker.
func (c Choice) Label() string {
	switch c {
	case ChoiceLocal:
		return "Open AI OSS (Local)"
	case ChoiceCloud:
		return "Gemini (Cloud)"
	default:
		return string(c)
	}
}

// ParseChoice normalises s into a Choice.
func ParseChoice(s string) (Choice, error) {
	switch Choice(strings.ToLower(strings.TrimSpace(s))) {
	case ChoiceLocal, "lmstudio", "oss":
		return ChoiceLocal, nil
	case ChoiceCloud, "gemini":
		return ChoiceCloud, nil
	default:
		return "", fmt.Errorf("assistant: unknown provider choice %q", s)
	}
}
