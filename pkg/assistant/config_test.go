package assistant

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	t.Setenv("FINDASH_CLOUD_MODEL", "gemini-2.0-flash")
	cfg, err := LoadConfigFromReader(strings.NewReader(`
default: cloud
system_prompt_file: prompts/assistant_system.tmpl
providers:
  local:
    config_file: llm.local.yaml
    fallback: cloud
  cloud:
    config_file: llm.cloud.yaml
    model: ${FINDASH_CLOUD_MODEL}
`))
	require.NoError(t, err)
	assert.Equal(t, ChoiceCloud, cfg.DefaultChoice())
	assert.Equal(t, []Choice{ChoiceCloud, ChoiceLocal}, cfg.Choices())
	p, ok := cfg.provider(ChoiceCloud)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.0-flash", p.Model)
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]string{
		"empty":             `providers: {}`,
		"unknown choice":    "providers:\n  claude:\n    config_file: x.yaml\n",
		"missing file":      "providers:\n  local: {}\n",
		"dangling fallback": "providers:\n  local:\n    config_file: x.yaml\n    fallback: cloud\n",
		"bad default":       "default: cloud\nproviders:\n  local:\n    config_file: x.yaml\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestNewFromConfigResolvesFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("llm.local.yaml", "base_url: http://127.0.0.1:1234/v1\ndefault_model: local\n")
	write("prompts/system.tmpl", "Market is {{if .}}{{.}}{{else}}unknown{{end}}")
	write("assistant.yaml", "system_prompt_file: prompts/system.tmpl\nproviders:\n  local:\n    config_file: llm.local.yaml\n")

	cfg, err := LoadConfig(filepath.Join(dir, "assistant.yaml"))
	require.NoError(t, err)

	a, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, []Choice{ChoiceLocal}, a.Choices())
	assert.Equal(t, ChoiceLocal, a.DefaultChoice())
	require.NotNil(t, a.prompt)
}

func TestNewFromConfigRejectsUnknownFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "llm.local.yaml"),
		[]byte("base_url: http://127.0.0.1:1234/v1\ndefault_model: local\n"), 0o644))

	cfg := &Config{Providers: map[string]*ProviderConfig{
		"local": {ConfigFile: "llm.local.yaml", Fallback: "claude"},
	}}
	cfg.SetBaseDir(dir)

	_, err := NewFromConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
}
