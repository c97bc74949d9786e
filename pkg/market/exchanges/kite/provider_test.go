package kite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/pkg/market"
	"findash/pkg/market/exchanges/restclient"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewProvider(
		WithAPIKey("key123"),
		WithClientOptions(restclient.WithBaseURL(server.URL), restclient.WithMaxRetries(0)),
	)
}

func TestPriceSendsSessionHeaders(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/ltp", r.URL.Path)
		assert.Equal(t, "NSE:RELIANCE", r.URL.Query().Get("i"))
		assert.Equal(t, "3", r.Header.Get("X-Kite-Version"))
		assert.Equal(t, "token key123:tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"NSE:RELIANCE":{"instrument_token":738561,"last_price":2934.15}}}`))
	})

	res, err := provider.Price(context.Background(), market.PriceRequest{Symbol: "NSE:RELIANCE", AccessToken: "tok"})
	require.NoError(t, err)
	assert.InDelta(t, 2934.15, res.Price, 1e-9)
	assert.False(t, res.Timestamp.IsZero())
}

func TestPriceFallsBackToFirstEntry(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"NSE:NIFTY 50":{"last_price":24100.5}}}`))
	})

	res, err := provider.Price(context.Background(), market.PriceRequest{Symbol: "256265", AccessToken: "tok"})
	require.NoError(t, err)
	assert.InDelta(t, 24100.5, res.Price, 1e-9)
}

func TestPriceRejectsNonNumericLastPrice(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"NSE:TCS":{"last_price":"n/a"}}}`))
	})

	_, err := provider.Price(context.Background(), market.PriceRequest{Symbol: "NSE:TCS", AccessToken: "tok"})
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrShapeValidation)
}

func TestPriceRejectsEmptyData(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{}}`))
	})

	_, err := provider.Price(context.Background(), market.PriceRequest{Symbol: "NSE:TCS", AccessToken: "tok"})
	assert.ErrorIs(t, err, market.ErrShapeValidation)
}

func TestPriceMapsTokenExceptionToRejection(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":"error","error_type":"TokenException","message":"Incorrect api_key or access_token."}`))
	})

	_, err := provider.Price(context.Background(), market.PriceRequest{Symbol: "NSE:TCS", AccessToken: "expired"})
	assert.ErrorIs(t, err, market.ErrUpstreamRejected)
}

func TestPriceWithoutAccessTokenMakesNoCall(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream call to %s", r.URL)
	})

	_, err := provider.Price(context.Background(), market.PriceRequest{Symbol: "NSE:TCS"})
	assert.ErrorIs(t, err, market.ErrNoProviderAvailable)
}

func TestRegisteredWithDefaultPacing(t *testing.T) {
	cfg := &market.Config{
		Providers: map[string]*market.ProviderConfig{"zerodha": {Type: "kite", APIKey: "k"}},
		Routing:   map[string]string{"indian_stocks": "zerodha"},
	}
	require.NoError(t, cfg.Validate())
	selector, err := cfg.BuildSelector()
	require.NoError(t, err)
	route, ok := selector.Route(market.IndianStocks)
	require.True(t, ok)
	assert.Equal(t, "zerodha", route.Name)
	assert.Equal(t, defaultInterval, route.Interval)
}
