// Package kite serves Indian instruments from the Zerodha Kite Connect LTP endpoint.
package kite

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"findash/pkg/market"
	"findash/pkg/market/exchanges/restclient"
)

const (
	defaultBaseURL         = "https://api.kite.trade"
	defaultProviderTimeout = 8 * time.Second
	defaultInterval        = 250 * time.Millisecond
	apiVersion             = "3"
)

// Provider fetches last traded prices for a logged-in Kite session.
type Provider struct {
	client  *restclient.Client
	apiKey  string
	timeout time.Duration
	name    string
}

type providerConfig struct {
	apiKey        string
	timeout       time.Duration
	clientOptions []restclient.Option
}

// ProviderOption customises the Kite provider.
type ProviderOption func(*providerConfig)

// WithAPIKey sets the Kite Connect application key.
func WithAPIKey(key string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.apiKey = key
	}
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithClientOptions passes options to the underlying REST client.
func WithClientOptions(options ...restclient.Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// NewProvider constructs a Kite LTP provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{timeout: defaultProviderTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:  restclient.New("kite", defaultBaseURL, cfg.clientOptions...),
		apiKey:  cfg.apiKey,
		timeout: cfg.timeout,
		name:    "kite",
	}
}

func init() {
	market.RegisterProvider("kite", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []ProviderOption{WithAPIKey(cfg.APIKey)}
		clientOptions := []restclient.Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.HTTPTimeout > 0 {
			clientOptions = append(clientOptions, restclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		if cfg.BaseURL != "" {
			clientOptions = append(clientOptions, restclient.WithBaseURL(cfg.BaseURL))
		}
		if cfg.MaxRetries > 0 {
			clientOptions = append(clientOptions, restclient.WithMaxRetries(cfg.MaxRetries))
		}
		if len(clientOptions) > 0 {
			opts = append(opts, WithClientOptions(clientOptions...))
		}
		provider := NewProvider(opts...)
		provider.name = name
		return provider, nil
	}, market.WithDefaultInterval(defaultInterval))
}

type ltpResponse struct {
	Status string                    `json:"status"`
	Data   map[string]map[string]any `json:"data"`
}

// Price implements market.Provider using GET /quote/ltp.
func (p *Provider) Price(ctx context.Context, req market.PriceRequest) (*market.PriceResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: api key not configured: %w", p.name, market.ErrNoProviderAvailable)
	}
	if req.AccessToken == "" {
		return nil, fmt.Errorf("%s: access token required: %w", p.name, market.ErrNoProviderAvailable)
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	header := http.Header{}
	header.Set("X-Kite-Version", apiVersion)
	header.Set("Authorization", fmt.Sprintf("token %s:%s", p.apiKey, req.AccessToken))

	var payload ltpResponse
	if err := p.client.GetJSON(ctx, "/quote/ltp", url.Values{"i": {req.Symbol}}, header, &payload); err != nil {
		return nil, err
	}
	entry, ok := pickEntry(payload.Data, req.Symbol)
	if !ok {
		return nil, fmt.Errorf("%s: no ltp entry for %s: %w", p.name, req.Symbol, market.ErrShapeValidation)
	}
	price, ok := entry["last_price"].(float64)
	if !ok {
		return nil, fmt.Errorf("%s: last_price for %s is not numeric: %w", p.name, req.Symbol, market.ErrShapeValidation)
	}
	return &market.PriceResult{Price: price, Timestamp: time.Now()}, nil
}

// pickEntry prefers the exact symbol and otherwise takes the first entry in key order.
func pickEntry(data map[string]map[string]any, symbol string) (map[string]any, bool) {
	if entry, ok := data[symbol]; ok {
		return entry, true
	}
	if len(data) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return data[keys[0]], true
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
