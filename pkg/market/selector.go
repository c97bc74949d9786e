package market

import (
	"context"
	"fmt"
	"time"
)

// ProviderKind names the class of upstream call chosen for an instrument.
type ProviderKind string

const (
	ProviderNone             ProviderKind = "none"
	ProviderAuthenticatedLTP ProviderKind = "authenticated_ltp"
	ProviderFreeQuote        ProviderKind = "free_quote"
	ProviderSpotPrice        ProviderKind = "spot_price"
)

// KindFor returns the provider class a market is served by.
func KindFor(m Market) ProviderKind {
	switch m {
	case IndianStocks:
		return ProviderAuthenticatedLTP
	case USStocks:
		return ProviderFreeQuote
	case Crypto:
		return ProviderSpotPrice
	default:
		return ProviderNone
	}
}

// Route binds a market to a built provider and its request pacing.
type Route struct {
	Name     string
	Provider Provider
	Interval time.Duration // delay before each call after the first in a pass
}

// Call describes which provider to invoke for an instrument and with what argument.
type Call struct {
	Kind         ProviderKind
	ProviderName string
	Request      PriceRequest
	Interval     time.Duration
	Err          error // reason when Kind is ProviderNone

	provider Provider
}

// Available reports whether the call can be invoked.
func (c Call) Available() bool {
	return c.Kind != ProviderNone && c.provider != nil
}

// Invoke performs the upstream call.
func (c Call) Invoke(ctx context.Context) (*PriceResult, error) {
	if !c.Available() {
		if c.Err != nil {
			return nil, c.Err
		}
		return nil, ErrNoProviderAvailable
	}
	return c.provider.Price(ctx, c.Request)
}

// Selector decides which provider serves an instrument. It performs no I/O.
type Selector struct {
	routes map[Market]Route
}

// NewSelector builds a selector from per-market routes. Markets without a route select no provider.
func NewSelector(routes map[Market]Route) *Selector {
	cp := make(map[Market]Route, len(routes))
	for m, r := range routes {
		if r.Provider != nil {
			cp[m] = r
		}
	}
	return &Selector{routes: cp}
}

// Route returns the configured route for m.
func (s *Selector) Route(m Market) (Route, bool) {
	r, ok := s.routes[m]
	return r, ok
}

// Select resolves the call for inst in market m given the current auth state.
func (s *Selector) Select(m Market, inst Instrument, auth AuthState) Call {
	none := func(err error) Call {
		return Call{Kind: ProviderNone, Err: err}
	}
	route, ok := s.routes[m]
	if !ok {
		return none(fmt.Errorf("%w: no provider configured for %s", ErrNoProviderAvailable, m))
	}
	req := PriceRequest{Symbol: inst.UpstreamSymbol}
	switch m {
	case IndianStocks:
		if !auth.Authenticated() {
			return none(fmt.Errorf("%w: kite session required for %s", ErrNoProviderAvailable, inst.Key))
		}
		req.AccessToken = auth.KiteAccessToken
	case Crypto:
		req.Currency = inst.QuoteCurrency
		if req.Currency == "" {
			req.Currency = "usd"
		}
	case USStocks:
	default:
		return none(fmt.Errorf("%w: unknown market %q", ErrNoProviderAvailable, m))
	}
	return Call{
		Kind:         KindFor(m),
		ProviderName: route.Name,
		Request:      req,
		Interval:     route.Interval,
		provider:     route.Provider,
	}
}

// FallbackWhenUnavailable reports whether a "no provider" outcome should be
// papered over with demo data. Indian stocks stay blank until the user logs in.
func FallbackWhenUnavailable(m Market) bool {
	return m != IndianStocks
}
