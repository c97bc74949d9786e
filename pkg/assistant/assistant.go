package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"

	"findash/pkg/llm"
)

// ErrUnknownChoice is returned when no backend is registered for a choice.
var ErrUnknownChoice = errors.New("assistant: provider choice not configured")

// DefaultSystemPrompt is used when no prompt template is configured.
const DefaultSystemPrompt = `You are a friendly, practical finance companion inside a market dashboard.
- Keep answers concise and scannable: short bullets or numbered steps.
- Never exceed six bullets at once; offer more depth on request.
- Be proactive but never overconfident, and flag risks plainly.`

// Reply is a completed answer and the backend that produced it.
type Reply struct {
	Text     string    `json:"text"`
	Choice   Choice    `json:"provider"`
	Model    string    `json:"model"`
	FellBack bool      `json:"fellBack"`
	Usage    llm.Usage `json:"usage"`
	Tried    []Attempt `json:"tried,omitempty"`
}

// Attempt records a backend that failed before the reply was produced.
type Attempt struct {
	Choice Choice `json:"provider"`
	Error  string `json:"error"`
}

// Backend is one chat endpoint behind a choice.
type Backend struct {
	Client   llm.LLMClient
	Model    string
	Fallback Choice
}

// Assistant relays chat histories to the selected backend.
type Assistant struct {
	mu         sync.RWMutex
	backends   map[Choice]Backend
	prompt     *llm.PromptTemplate
	promptData func(ctx context.Context) any
	def        Choice
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithSystemPrompt renders tpl as the system message.
func WithSystemPrompt(tpl *llm.PromptTemplate) Option {
	return func(a *Assistant) {
		a.prompt = tpl
	}
}

// WithPromptData supplies template data, evaluated per request.
func WithPromptData(fn func(ctx context.Context) any) Option {
	return func(a *Assistant) {
		a.promptData = fn
	}
}

// WithDefaultChoice sets the choice used when a request names none.
func WithDefaultChoice(c Choice) Option {
	return func(a *Assistant) {
		a.def = c
	}
}

// New builds an assistant over the given backends.
func New(backends map[Choice]Backend, opts ...Option) (*Assistant, error) {
	if len(backends) == 0 {
		return nil, errors.New("assistant: at least one backend is required")
	}
	a := &Assistant{backends: make(map[Choice]Backend, len(backends)), def: ChoiceLocal}
	for choice, b := range backends {
		if b.Client == nil {
			return nil, fmt.Errorf("assistant: backend %s has no client", choice)
		}
		a.backends[choice] = b
	}
	for _, opt := range opts {
		opt(a)
	}
	if _, ok := a.backends[a.def]; !ok {
		a.def = a.Choices()[0]
	}
	return a, nil
}

// NewFromConfig loads each backend's LLM config and builds its client.
func NewFromConfig(cfg *Config, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		return nil, errors.New("assistant: config cannot be nil")
	}
	backends := make(map[Choice]Backend, len(cfg.Providers))
	for name, p := range cfg.Providers {
		choice, err := ParseChoice(name)
		if err != nil {
			return nil, err
		}
		var fallback Choice
		if p.Fallback != "" {
			if fallback, err = ParseChoice(p.Fallback); err != nil {
				return nil, fmt.Errorf("assistant %s: fallback: %w", choice, err)
			}
		}
		llmCfg, err := llm.LoadConfig(cfg.resolve(p.ConfigFile))
		if err != nil {
			return nil, fmt.Errorf("assistant %s: %w", choice, err)
		}
		client, err := llm.NewClient(llmCfg)
		if err != nil {
			return nil, fmt.Errorf("assistant %s: %w", choice, err)
		}
		backends[choice] = Backend{Client: client, Model: p.Model, Fallback: fallback}
	}

	base := []Option{WithDefaultChoice(cfg.DefaultChoice())}
	if cfg.SystemPromptFile != "" {
		tpl, err := llm.NewPromptTemplate(cfg.resolve(cfg.SystemPromptFile), nil)
		if err != nil {
			return nil, err
		}
		base = append(base, WithSystemPrompt(tpl))
	}
	return New(backends, append(base, opts...)...)
}

// Choices returns the registered choices, sorted.
func (a *Assistant) Choices() []Choice {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Choice, 0, len(a.backends))
	for c := range a.backends {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultChoice returns the choice used when a request names none.
func (a *Assistant) DefaultChoice() Choice {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.def
}

// Complete sends history to choice, prepending the system prompt unless the
// history already opens with one. If the backend fails its fallback is tried once.
func (a *Assistant) Complete(ctx context.Context, history []llm.Message, choice Choice) (*Reply, error) {
	if len(history) == 0 {
		return nil, errors.New("assistant: message history is empty")
	}
	if choice == "" {
		choice = a.DefaultChoice()
	}
	a.mu.RLock()
	primary, ok := a.backends[choice]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChoice, choice)
	}

	messages, err := a.withSystemPrompt(ctx, history)
	if err != nil {
		return nil, err
	}

	reply, err := a.ask(ctx, choice, primary, messages)
	if err == nil {
		return reply, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	a.mu.RLock()
	fallback, hasFallback := a.backends[primary.Fallback]
	a.mu.RUnlock()
	if primary.Fallback == "" || primary.Fallback == choice || !hasFallback {
		return nil, err
	}
	logx.WithContext(ctx).Errorf("assistant: %s failed, trying %s: %v", choice, primary.Fallback, err)

	reply, fbErr := a.ask(ctx, primary.Fallback, fallback, messages)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	reply.FellBack = true
	reply.Tried = []Attempt{{Choice: choice, Error: err.Error()}}
	return reply, nil
}

func (a *Assistant) ask(ctx context.Context, choice Choice, b Backend, messages []llm.Message) (*Reply, error) {
	resp, err := b.Client.Chat(ctx, &llm.ChatRequest{Model: b.Model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("assistant %s: %w", choice, err)
	}
	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("assistant %s: empty completion", choice)
	}
	return &Reply{Text: text, Choice: choice, Model: resp.Model, Usage: resp.Usage}, nil
}

func (a *Assistant) withSystemPrompt(ctx context.Context, history []llm.Message) ([]llm.Message, error) {
	if history[0].IsSystem() {
		return history, nil
	}
	system, err := a.systemPrompt(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]llm.Message, 0, len(history)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: system})
	return append(out, history...), nil
}

func (a *Assistant) systemPrompt(ctx context.Context) (string, error) {
	if a.prompt == nil {
		return DefaultSystemPrompt, nil
	}
	var data any
	if a.promptData != nil {
		data = a.promptData(ctx)
	}
	text, err := a.prompt.Render(data)
	if err != nil {
		return "", fmt.Errorf("assistant: render system prompt: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return DefaultSystemPrompt, nil
	}
	return text, nil
}

// Close releases every backend client.
func (a *Assistant) Close() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var errs []error
	for _, b := range a.backends {
		if err := b.Client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
