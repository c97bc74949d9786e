package restclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/pkg/market"
)

func TestGetJSONDecodesBodyAndForwardsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "3", r.Header.Get("X-Kite-Version"))
		_, _ = w.Write([]byte(`{"c": 191.5}`))
	}))
	defer server.Close()

	client := New("test", server.URL)
	var out struct {
		C float64 `json:"c"`
	}
	header := http.Header{}
	header.Set("X-Kite-Version", "3")
	err := client.GetJSON(context.Background(), "/quote", url.Values{"symbol": {"AAPL"}}, header, &out)
	require.NoError(t, err)
	assert.InDelta(t, 191.5, out.C, 1e-9)
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New("test", server.URL, WithMaxRetries(2), WithBackoff(time.Millisecond))
	require.NoError(t, client.GetJSON(context.Background(), "/", nil, nil, &struct{}{}))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := New("test", server.URL, WithMaxRetries(3), WithBackoff(time.Millisecond))
	err := client.GetJSON(context.Background(), "/", nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrUpstreamRejected)
	assert.Equal(t, market.KindUpstreamRejected, market.Classify(err))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSONUndecodableBodyIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	err := New("test", server.URL).GetJSON(context.Background(), "/", nil, nil, &struct{}{})
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrUpstreamRejected)
}

func TestGetJSONDeadlineIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := New("test", server.URL, WithMaxRetries(0)).GetJSON(ctx, "/", nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, market.ErrUpstreamTimeout)
	assert.Equal(t, market.KindUpstreamTimeout, market.Classify(err))
}

func TestWithBaseURLTrimsTrailingSlash(t *testing.T) {
	c := New("test", "https://default.example", WithBaseURL("https://api.example/v1/"))
	assert.Equal(t, "https://api.example/v1", c.BaseURL())
}
