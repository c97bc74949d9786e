package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/pkg/assistant"
	"findash/pkg/market"
	_ "findash/pkg/market/exchanges/coingecko"
	_ "findash/pkg/market/exchanges/finnhub"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadHydratesSections(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FINNHUB_API_KEY", "fh-test")
	t.Setenv("KITE_ACCESS_TOKEN", "kite-token")

	writeFile(t, dir, "market.yaml", `
providers:
  gecko:
    type: coingecko
    cache_ttl: 20s
  finnhub:
    type: finnhub
    api_key: ${FINNHUB_API_KEY}
routing:
  crypto: gecko
  us_stocks: finnhub
`)
	writeFile(t, dir, "llm.local.yaml", "base_url: http://127.0.0.1:1234/v1\ndefault_model: local\n")
	writeFile(t, dir, "assistant.yaml", "providers:\n  local:\n    config_file: llm.local.yaml\n")
	main := writeFile(t, dir, "findash.yaml", `
Name: findash-test
Host: 127.0.0.1
Port: 18888
Env: dev
Session:
  RefreshInterval: 15s
  InitialMarket: us
  KiteAccessToken: ${KITE_ACCESS_TOKEN}
Monitor:
  Markets: [crypto, india]
Market:
  File: market.yaml
Assistant:
  File: assistant.yaml
`)

	cfg, err := Load(main)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.IsTestEnv())
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 15*time.Second, cfg.Session.RefreshInterval)
	assert.Equal(t, "kite-token", cfg.Session.KiteAccessToken)
	assert.Equal(t, market.USStocks, cfg.InitialMarket())
	assert.Equal(t, []market.Market{market.Crypto, market.IndianStocks}, cfg.MonitorMarkets())
	assert.Equal(t, 2*time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, 10, cfg.TTL.Short)
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, main, cfg.MainPath())

	require.True(t, cfg.Market.Loaded())
	assert.Equal(t, filepath.Join(dir, "market.yaml"), cfg.Market.File)
	assert.Equal(t, "fh-test", cfg.Market.Value.Providers["finnhub"].APIKey)
	assert.Equal(t, 20*time.Second, cfg.Market.Value.Providers["gecko"].CacheTTL)

	require.True(t, cfg.Assistant.Loaded())
	assert.Equal(t, []assistant.Choice{assistant.ChoiceLocal}, cfg.Assistant.Value.Choices())
}

func TestLoadWithoutSections(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "findash.yaml", "Name: findash\nPort: 18888\n")

	cfg, err := Load(main)
	require.NoError(t, err)
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, 30*time.Second, cfg.Session.RefreshInterval)
	assert.Equal(t, market.Crypto, cfg.InitialMarket())
	assert.Equal(t, CacheTTL{Short: 10, Medium: 60, Long: 300}, cfg.TTL)
	assert.Equal(t, 2*time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Timeout)
	assert.Equal(t, market.Markets(), cfg.MonitorMarkets())
	assert.False(t, cfg.Market.Loaded())
	assert.False(t, cfg.Assistant.Loaded())
}

func TestLoadSectionError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "market.yaml", "providers:\n  x:\n    type: bloomberg\n")
	main := writeFile(t, dir, "findash.yaml", "Name: findash\nPort: 18888\nMarket:\n  File: market.yaml\n")

	_, err := Load(main)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load market config")
}

func TestFillDefaultsKeepsExplicitValues(t *testing.T) {
	var cfg Config
	cfg.Env = "prod"
	cfg.TTL.Long = 900
	cfg.Session.RefreshInterval = 5 * time.Second
	cfg.Session.InitialMarket = "us"
	cfg.Monitor.Timeout = time.Minute
	cfg.FillDefaults()

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, CacheTTL{Short: 10, Medium: 60, Long: 900}, cfg.TTL)
	assert.Equal(t, 5*time.Second, cfg.Session.RefreshInterval)
	assert.Equal(t, "us", cfg.Session.InitialMarket)
	assert.Equal(t, 2*time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, time.Minute, cfg.Monitor.Timeout)
	require.NoError(t, cfg.Validate())

	var empty Config
	empty.FillDefaults()
	require.NoError(t, empty.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.Session.RefreshInterval = 30 * time.Second
		cfg.Session.InitialMarket = "crypto"
		cfg.TTL = CacheTTL{Short: 10, Medium: 60, Long: 300}
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"bad env":          func(c *Config) { c.Env = "staging" },
		"zero refresh":     func(c *Config) { c.Session.RefreshInterval = 0 },
		"unknown market":   func(c *Config) { c.Session.InitialMarket = "forex" },
		"bad monitor list": func(c *Config) { c.Monitor.Markets = []string{"crypto", "bonds"} },
		"ttl short":        func(c *Config) { c.TTL.Short = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
