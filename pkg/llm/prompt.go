package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// PromptTemplate is a text/template used to render system prompts. Templates
// loaded from disk can be reloaded; inline templates cannot.
type PromptTemplate struct {
	name  string
	path  string
	funcs template.FuncMap

	mu     sync.RWMutex
	tmpl   *template.Template
	digest string
}

// NewPromptTemplate parses the template at path.
func NewPromptTemplate(path string, funcs template.FuncMap) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	t := &PromptTemplate{name: filepath.Base(path), path: path, funcs: funcs}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParsePromptTemplate builds a template from an inline string.
func ParsePromptTemplate(name, text string, funcs template.FuncMap) (*PromptTemplate, error) {
	t := &PromptTemplate{name: name, funcs: funcs}
	if err := t.parse([]byte(text)); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the template with data.
func (t *PromptTemplate) Render(data any) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Reload reparses the template file. It is a no-op for inline templates.
func (t *PromptTemplate) Reload() error {
	if t.path == "" {
		return nil
	}
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", t.path, err)
	}
	return t.parse(data)
}

func (t *PromptTemplate) parse(data []byte) error {
	tmpl := template.New(t.name).Option("missingkey=error")
	if len(t.funcs) > 0 {
		tmpl = tmpl.Funcs(t.funcs)
	}
	if _, err := tmpl.Parse(string(data)); err != nil {
		return fmt.Errorf("parse prompt template %q: %w", t.name, err)
	}
	sum := sha256.Sum256(data)
	t.mu.Lock()
	t.tmpl = tmpl
	t.digest = hex.EncodeToString(sum[:])
	t.mu.Unlock()
	return nil
}

// Digest returns the sha256 of the template source, handy for correlating logs.
func (t *PromptTemplate) Digest() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.digest
}
