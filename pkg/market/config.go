package market

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"findash/pkg/confkit"
)

// Config describes the upstream price providers and which market each serves.
type Config struct {
	Providers map[string]*ProviderConfig `yaml:"providers"`
	// Routing maps a market name (see ParseMarket) to a provider name.
	Routing map[string]string `yaml:"routing"`
}

// ProviderConfig represents configuration for a single upstream provider.
type ProviderConfig struct {
	Type string `yaml:"type"`

	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	TimeoutRaw     string        `yaml:"timeout"`
	Timeout        time.Duration `yaml:"-"`
	HTTPTimeoutRaw string        `yaml:"http_timeout"`
	HTTPTimeout    time.Duration `yaml:"-"`
	IntervalRaw    string        `yaml:"request_interval"`
	Interval       time.Duration `yaml:"-"`
	CacheTTLRaw    string        `yaml:"cache_ttl"`
	CacheTTL       time.Duration `yaml:"-"`
	MaxRetries     int           `yaml:"max_retries"`
}

// ProviderBuilder constructs a Provider from configuration.
type ProviderBuilder func(name string, cfg *ProviderConfig) (Provider, error)

type registration struct {
	builder         ProviderBuilder
	defaultInterval time.Duration
}

// RegisterOption tunes a provider registration.
type RegisterOption func(*registration)

// WithDefaultInterval sets the pacing used when request_interval is not configured.
func WithDefaultInterval(d time.Duration) RegisterOption {
	return func(r *registration) {
		if d >= 0 {
			r.defaultInterval = d
		}
	}
}

var (
	providerRegistry   = make(map[string]registration)
	providerRegistryMu sync.RWMutex
)

// RegisterProvider registers a provider constructor under typeName.
func RegisterProvider(typeName string, builder ProviderBuilder, opts ...RegisterOption) {
	reg := registration{builder: builder}
	for _, opt := range opts {
		opt(&reg)
	}
	providerRegistryMu.Lock()
	defer providerRegistryMu.Unlock()
	providerRegistry[normalizeType(typeName)] = reg
}

func lookupProvider(typeName string) (registration, bool) {
	providerRegistryMu.RLock()
	defer providerRegistryMu.RUnlock()
	reg, ok := providerRegistry[normalizeType(typeName)]
	return reg, ok
}

func normalizeType(typeName string) string {
	return strings.ToLower(strings.TrimSpace(typeName))
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads market configuration from the default project location and panics on error.
func MustLoad() *Config {
	cfg, err := LoadConfig(confkit.MustProjectPath("etc/market.yaml"))
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read market config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal market config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	if c.Routing == nil {
		c.Routing = make(map[string]string)
	}
	for name, provider := range c.Providers {
		if provider == nil {
			provider = &ProviderConfig{}
			c.Providers[name] = provider
		}
		provider.expandEnv()
		if err := provider.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) expandEnv() {
	p.Type = strings.TrimSpace(os.ExpandEnv(p.Type))
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.APIKey = strings.TrimSpace(os.ExpandEnv(p.APIKey))
	p.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.TimeoutRaw))
	p.HTTPTimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.HTTPTimeoutRaw))
	p.IntervalRaw = strings.TrimSpace(os.ExpandEnv(p.IntervalRaw))
	p.CacheTTLRaw = strings.TrimSpace(os.ExpandEnv(p.CacheTTLRaw))
}

func (p *ProviderConfig) parseDurations(name string) error {
	fields := []struct {
		label    string
		raw      string
		dst      *time.Duration
		zeroOkay bool
	}{
		{"timeout", p.TimeoutRaw, &p.Timeout, false},
		{"http_timeout", p.HTTPTimeoutRaw, &p.HTTPTimeout, false},
		{"request_interval", p.IntervalRaw, &p.Interval, true},
		{"cache_ttl", p.CacheTTLRaw, &p.CacheTTL, true},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("market provider %s: invalid %s %q: %w", name, f.label, f.raw, err)
		}
		if d < 0 || (d == 0 && !f.zeroOkay) {
			return fmt.Errorf("market provider %s: %s must be positive, got %s", name, f.label, d)
		}
		*f.dst = d
	}
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("market config: providers cannot be empty")
	}
	for name, provider := range c.Providers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("market config: provider name cannot be empty")
		}
		if err := provider.validate(name); err != nil {
			return err
		}
	}
	for rawMarket, providerName := range c.Routing {
		if _, err := ParseMarket(rawMarket); err != nil {
			return fmt.Errorf("market config: routing: %w", err)
		}
		if _, ok := c.Providers[providerName]; !ok {
			return fmt.Errorf("market config: routing %s references undefined provider %q", rawMarket, providerName)
		}
	}
	return nil
}

func (p *ProviderConfig) validate(name string) error {
	if p == nil {
		return fmt.Errorf("market config: provider %s is nil", name)
	}
	if strings.TrimSpace(p.Type) == "" {
		return fmt.Errorf("market config: provider %s must specify type", name)
	}
	if _, ok := lookupProvider(p.Type); !ok {
		return fmt.Errorf("market config: provider %s has unsupported type %q", name, p.Type)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("market config: provider %s max_retries cannot be negative", name)
	}
	return nil
}

// ProviderNames returns the configured provider names, sorted.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildProviders instantiates providers according to configuration.
func (c *Config) BuildProviders() (map[string]Provider, error) {
	result := make(map[string]Provider, len(c.Providers))
	for name, providerCfg := range c.Providers {
		reg, ok := lookupProvider(providerCfg.Type)
		if !ok {
			return nil, fmt.Errorf("market provider %s: unsupported type %q", name, providerCfg.Type)
		}
		provider, err := reg.builder(name, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("market provider %s: %w", name, err)
		}
		result[name] = provider
	}
	return result, nil
}

// BuildSelector builds every provider and binds them to markets through the routing table.
func (c *Config) BuildSelector() (*Selector, error) {
	providers, err := c.BuildProviders()
	if err != nil {
		return nil, err
	}
	routes := make(map[Market]Route, len(c.Routing))
	for rawMarket, name := range c.Routing {
		m, err := ParseMarket(rawMarket)
		if err != nil {
			return nil, err
		}
		providerCfg := c.Providers[name]
		routes[m] = Route{
			Name:     name,
			Provider: providers[name],
			Interval: c.intervalFor(providerCfg),
		}
	}
	return NewSelector(routes), nil
}

func (c *Config) intervalFor(p *ProviderConfig) time.Duration {
	if p.IntervalRaw != "" {
		return p.Interval
	}
	if reg, ok := lookupProvider(p.Type); ok {
		return reg.defaultInterval
	}
	return 0
}
