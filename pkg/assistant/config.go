package assistant

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"findash/pkg/confkit"
)

// Config lists the chat backends and the system prompt.
type Config struct {
	Default          string                     `yaml:"default"`
	SystemPromptFile string                     `yaml:"system_prompt_file"`
	Providers        map[string]*ProviderConfig `yaml:"providers"`

	baseDir string
}

// ProviderConfig binds a choice to an LLM config file.
type ProviderConfig struct {
	ConfigFile string `yaml:"config_file"`
	Model      string `yaml:"model"`
	// Fallback names the choice tried once when this one fails.
	Fallback string `yaml:"fallback"`
}

// LoadConfig reads the assistant configuration. Relative file references
// resolve against the directory holding path.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open assistant config: %w", err)
	}
	defer file.Close()
	cfg, err := LoadConfigFromReader(file)
	if err != nil {
		return nil, err
	}
	cfg.baseDir = confkit.BaseDir(path)
	return cfg, nil
}

// LoadConfigFromReader parses configuration from r.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read assistant config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal assistant config: %w", err)
	}
	cfg.SystemPromptFile = strings.TrimSpace(os.ExpandEnv(cfg.SystemPromptFile))
	for _, p := range cfg.Providers {
		if p == nil {
			continue
		}
		p.ConfigFile = strings.TrimSpace(os.ExpandEnv(p.ConfigFile))
		p.Model = strings.TrimSpace(os.ExpandEnv(p.Model))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks choices, file references and fallback links.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("assistant config: providers cannot be empty")
	}
	for name, p := range c.Providers {
		if _, err := ParseChoice(name); err != nil {
			return fmt.Errorf("assistant config: %w", err)
		}
		if p == nil || p.ConfigFile == "" {
			return fmt.Errorf("assistant config: provider %s must set config_file", name)
		}
		if p.Fallback == "" {
			continue
		}
		fb, err := ParseChoice(p.Fallback)
		if err != nil {
			return fmt.Errorf("assistant config: provider %s fallback: %w", name, err)
		}
		if _, ok := c.provider(fb); !ok {
			return fmt.Errorf("assistant config: provider %s falls back to unconfigured %s", name, fb)
		}
	}
	if c.Default != "" {
		choice, err := ParseChoice(c.Default)
		if err != nil {
			return fmt.Errorf("assistant config: default: %w", err)
		}
		if _, ok := c.provider(choice); !ok {
			return fmt.Errorf("assistant config: default %s is not configured", choice)
		}
	}
	return nil
}

// DefaultChoice returns the configured default, or local when unset.
func (c *Config) DefaultChoice() Choice {
	if choice, err := ParseChoice(c.Default); err == nil {
		return choice
	}
	return ChoiceLocal
}

// Choices returns the configured choices, sorted.
func (c *Config) Choices() []Choice {
	out := make([]Choice, 0, len(c.Providers))
	for name := range c.Providers {
		if choice, err := ParseChoice(name); err == nil {
			out = append(out, choice)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetBaseDir overrides the directory relative file references resolve against.
func (c *Config) SetBaseDir(dir string) {
	c.baseDir = dir
}

func (c *Config) resolve(file string) string {
	return confkit.ResolvePath(c.baseDir, file)
}

func (c *Config) provider(choice Choice) (*ProviderConfig, bool) {
	for name, p := range c.Providers {
		if parsed, err := ParseChoice(name); err == nil && parsed == choice {
			return p, true
		}
	}
	return nil, false
}
