package market

import (
	"context"
	"time"
)

// Provider exposes a single upstream price source.
type Provider interface {
	// Price returns the latest price for the upstream symbol in req.
	Price(ctx context.Context, req PriceRequest) (*PriceResult, error)
}

// PriceRequest describes one upstream price lookup.
type PriceRequest struct {
	Symbol      string // Upstream identifier: ticker, instrument token or coin id
	Currency    string // Quote currency for spot providers, e.g. "usd"
	AccessToken string // Session token for authenticated providers
}

// PriceResult is the typed success variant of an upstream call.
type PriceResult struct {
	Price         float64
	PreviousClose float64 // 0 when the provider does not report one
	Timestamp     time.Time
	Cached        bool // Served from a provider-side cache
	Stale         bool // Cached value served after an upstream failure
}

// Market identifies one tab of the dashboard.
type Market string

const (
	IndianStocks Market = "indian_stocks"
	Crypto       Market = "crypto"
	USStocks     Market = "us_stocks"
)

// Markets lists every supported market in display order.
func Markets() []Market {
	return []Market{IndianStocks, Crypto, USStocks}
}

// Instrument identifies one tradable thing within a market.
type Instrument struct {
	Key            string `json:"key"`
	DisplayName    string `json:"displayName"`
	UpstreamSymbol string `json:"upstreamSymbol"`
	QuoteCurrency  string `json:"quoteCurrency,omitempty"`
	Color          string `json:"color"`
}

// Source tags where the retained history of an instrument came from.
type Source string

const (
	SourceNone     Source = ""
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// PricePoint is a single (timestamp, price) sample.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Quote is derived from a price history; it is never stored on its own.
type Quote struct {
	Key            string    `json:"key"`
	LastPrice      float64   `json:"lastPrice"`
	ReferencePrice float64   `json:"referencePrice"` // oldest retained point, stands in for previous close
	Change         float64   `json:"change"`
	ChangePercent  float64   `json:"changePercent"`
	Source         Source    `json:"source"`
	Points         int       `json:"points"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AuthState carries credentials injected by the login collaborator.
type AuthState struct {
	KiteAccessToken string
}

// Authenticated reports whether a Kite session token is present.
func (a AuthState) Authenticated() bool {
	return a.KiteAccessToken != ""
}
