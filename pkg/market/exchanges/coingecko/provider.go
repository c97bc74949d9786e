// Package coingecko serves crypto spot prices from the CoinGecko simple price endpoint.
package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"findash/pkg/market"
	"findash/pkg/market/exchanges/restclient"
)

const (
	defaultBaseURL         = "https://api.coingecko.com/api/v3"
	defaultProviderTimeout = 8 * time.Second
	defaultCacheTTL        = 20 * time.Second
	defaultInterval        = 250 * time.Millisecond
	demoKeyHeader          = "x-cg-demo-api-key"
)

// Provider fetches spot prices by coin id with a short-lived cache.
type Provider struct {
	client   *restclient.Client
	apiKey   string
	timeout  time.Duration
	cacheTTL time.Duration
	name     string
	now      func() time.Time

	cacheMu sync.RWMutex
	prices  map[string]cachedPrice
}

type cachedPrice struct {
	Price   float64
	Fetched time.Time
}

type providerConfig struct {
	apiKey        string
	timeout       time.Duration
	cacheTTL      time.Duration
	clientOptions []restclient.Option
}

// ProviderOption customises the CoinGecko provider.
type ProviderOption func(*providerConfig)

// WithAPIKey sets an optional demo API key.
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

// WithCacheTTL overrides how long a fetched price is served without a new call.
func WithCacheTTL(ttl time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		if ttl > 0 {
			cfg.cacheTTL = ttl
		}
	}
}

// WithClientOptions passes options to the underlying REST client.
func WithClientOptions(options ...restclient.Option) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.clientOptions = append(cfg.clientOptions, options...)
	}
}

// NewProvider constructs a CoinGecko spot price provider.
func NewProvider(opts ...ProviderOption) *Provider {
	cfg := &providerConfig{
		timeout:  defaultProviderTimeout,
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Provider{
		client:   restclient.New("coingecko", defaultBaseURL, cfg.clientOptions...),
		apiKey:   cfg.apiKey,
		timeout:  cfg.timeout,
		cacheTTL: cfg.cacheTTL,
		name:     "coingecko",
		now:      time.Now,
		prices:   make(map[string]cachedPrice),
	}
}

func init() {
	market.RegisterProvider("coingecko", func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		opts := []ProviderOption{WithAPIKey(cfg.APIKey)}
		clientOptions := []restclient.Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.CacheTTL > 0 {
			opts = append(opts, WithCacheTTL(cfg.CacheTTL))
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

// Price implements market.Provider using GET /simple/price. A fresh cache hit
// skips the network; on upstream failure the last known price is served as stale.
func (p *Provider) Price(ctx context.Context, req market.PriceRequest) (*market.PriceResult, error) {
	id := strings.ToLower(strings.TrimSpace(req.Symbol))
	vs := strings.ToLower(strings.TrimSpace(req.Currency))
	if vs == "" {
		vs = "usd"
	}
	key := id + "|" + vs
	if entry, ok := p.load(key); ok && p.now().Sub(entry.Fetched) < p.cacheTTL {
		return &market.PriceResult{Price: entry.Price, Timestamp: entry.Fetched, Cached: true}, nil
	}

	price, err := p.fetch(ctx, id, vs)
	if err != nil {
		if entry, ok := p.load(key); ok {
			logx.WithContext(ctx).Errorf("%s: serving stale price id=%s age=%s err=%v", p.name, id, p.now().Sub(entry.Fetched), err)
			return &market.PriceResult{Price: entry.Price, Timestamp: entry.Fetched, Cached: true, Stale: true}, nil
		}
		return nil, err
	}
	fetched := p.now()
	p.store(key, cachedPrice{Price: price, Fetched: fetched})
	return &market.PriceResult{Price: price, Timestamp: fetched}, nil
}

func (p *Provider) fetch(ctx context.Context, id, vs string) (float64, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var header http.Header
	if p.apiKey != "" {
		header = http.Header{}
		header.Set(demoKeyHeader, p.apiKey)
	}
	var payload map[string]map[string]any
	query := url.Values{"ids": {id}, "vs_currencies": {vs}}
	if err := p.client.GetJSON(ctx, "/simple/price", query, header, &payload); err != nil {
		return 0, err
	}
	price, ok := payload[id][vs].(float64)
	if !ok {
		return 0, fmt.Errorf("%s: %s/%s price is not numeric: %w", p.name, id, vs, market.ErrShapeValidation)
	}
	return price, nil
}

func (p *Provider) load(key string) (cachedPrice, bool) {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	entry, ok := p.prices[key]
	return entry, ok
}

func (p *Provider) store(key string, entry cachedPrice) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.prices[key] = entry
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
