package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"findash/internal/config"
	"findash/pkg/market"
)

func TestConfigSummaryLines(t *testing.T) {
	assert.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))

	cfg := &config.Config{Env: "dev"}
	cfg.Port = 8888
	cfg.Session.RefreshInterval = 30 * time.Second
	cfg.Session.InitialMarket = "us"
	cfg.Market.File = "/etc/findash/market.yaml"
	cfg.Market.Value = &market.Config{
		Providers: map[string]*market.ProviderConfig{"gecko": {Type: "coingecko"}, "finnhub": {Type: "finnhub"}},
		Routing:   map[string]string{"us_stocks": "finnhub", "crypto": "gecko"},
	}

	lines := ConfigSummaryLines(cfg)
	assert.Contains(t, lines, "Environment: dev")
	assert.Contains(t, lines, "Redis: not configured")
	assert.Contains(t, lines, "Session: market=us_stocks refresh=30s kite=not configured")
	assert.Contains(t, lines, "Market config: /etc/findash/market.yaml")
	assert.Contains(t, lines, "Assistant config: not configured")
	assert.Contains(t, lines, "Market providers: finnhub, gecko")
	assert.Contains(t, lines, "Route crypto -> gecko")
}
