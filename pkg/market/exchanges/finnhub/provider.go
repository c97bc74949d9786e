// Package finnhub serves US equities from the Finnhub quote endpoint.
package finnhub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"findash/pkg/market"
	"findash/pkg/market/exchanges/restclient"
)

const (
	defaultBaseURL         = "https://finnhub.io/api/v1"
	defaultProviderTimeout = 8 * time.Second
	// Free tier allows 60 calls per minute.
	defaultInterval = 1100 * time.Millisecond
)

// Provider fetches current quotes by ticker.
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

// ProviderOption customises the Finnhub provider.
type ProviderOption func(*providerConfig)

// WithAPIKey sets the Finnhub token.
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

// NewProvider constructs a Finnhub quote provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{timeout: defaultProviderTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:  restclient.New("finnhub", defaultBaseURL, cfg.clientOptions...),
		apiKey:  cfg.apiKey,
		timeout: cfg.timeout,
		name:    "finnhub",
	}
}

func init() {
	market.RegisterProvider("finnhub", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
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

// quoteResponse mirrors /quote: c current, pc previous close, t unix seconds.
type quoteResponse struct {
	Current       any   `json:"c"`
	PreviousClose any   `json:"pc"`
	Timestamp     int64 `json:"t"`
}

// Price implements market.Provider using GET /quote.
func (p *Provider) Price(ctx context.Context, req market.PriceRequest) (*market.PriceResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%s: api key not configured: %w", p.name, market.ErrNoProviderAvailable)
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var payload quoteResponse
	query := url.Values{"symbol": {req.Symbol}, "token": {p.apiKey}}
	if err := p.client.GetJSON(ctx, "/quote", query, nil, &payload); err != nil {
		return nil, err
	}
	// Unknown tickers come back as all-zero quotes.
	price, ok := payload.Current.(float64)
	if !ok || price <= 0 {
		return nil, fmt.Errorf("%s: quote for %s has no usable price: %w", p.name, req.Symbol, market.ErrShapeValidation)
	}
	result := &market.PriceResult{Price: price, Timestamp: time.Now()}
	if pc, ok := payload.PreviousClose.(float64); ok && pc > 0 {
		result.PreviousClose = pc
	}
	if payload.Timestamp > 0 {
		result.Timestamp = time.Unix(payload.Timestamp, 0)
	}
	return result, nil
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
