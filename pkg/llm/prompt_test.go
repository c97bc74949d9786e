package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptTemplateRender(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "assistant.tmpl")
	require.NoError(t, os.WriteFile(templatePath, []byte("Market: {{ upper .Market }}\nWatching {{ len .Keys }} instruments\n"), 0o600))

	tpl, err := NewPromptTemplate(templatePath, template.FuncMap{"upper": strings.ToUpper})
	require.NoError(t, err)

	out, err := tpl.Render(map[string]any{"Market": "crypto", "Keys": []string{"bitcoin", "ethereum"}})
	require.NoError(t, err)
	assert.Equal(t, "Market: CRYPTO\nWatching 2 instruments", out)
}

func TestPromptTemplateReload(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "reload.tmpl")
	require.NoError(t, os.WriteFile(templatePath, []byte("v1"), 0o600))

	tpl, err := NewPromptTemplate(templatePath, nil)
	require.NoError(t, err)
	digestV1 := tpl.Digest()
	assert.NotEmpty(t, digestV1)

	require.NoError(t, os.WriteFile(templatePath, []byte("v2"), 0o600))
	require.NoError(t, tpl.Reload())

	out, err := tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out)
	assert.NotEqual(t, digestV1, tpl.Digest())
}

func TestPromptTemplateMissingKey(t *testing.T) {
	tpl, err := ParsePromptTemplate("inline", "hello {{ .Name }}", nil)
	require.NoError(t, err)
	_, err = tpl.Render(map[string]any{})
	assert.Error(t, err)
	assert.NoError(t, tpl.Reload(), "inline templates ignore reload")
}

func TestNewPromptTemplateErrors(t *testing.T) {
	_, err := NewPromptTemplate("", nil)
	assert.Error(t, err)
	_, err = NewPromptTemplate(filepath.Join(t.TempDir(), "missing.tmpl"), nil)
	assert.Error(t, err)
	_, err = ParsePromptTemplate("bad", "{{ .Unclosed", nil)
	assert.Error(t, err)
}

func TestResolveModelID(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", ResolveModelID("cloud", ModelConfig{ModelName: "gemini-2.0-flash"}))
	assert.Equal(t, "openai/gpt-oss-20b", ResolveModelID(" openai/gpt-oss-20b ", ModelConfig{}))
}
