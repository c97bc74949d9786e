package marketpersist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachekeys "findash/internal/cache"
	"findash/internal/config"
	"findash/pkg/market"
)

type fakeKV struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]int
	err    error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, ttls: map[string]int{}}
}

func (f *fakeKV) SetexCtx(_ context.Context, key, value string, seconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.values[key] = value
	f.ttls[key] = seconds
	return nil
}

func (f *fakeKV) GetCtx(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], f.err
}

var _ market.Persistence = (*Service)(nil)

func TestRecordAndReadQuote(t *testing.T) {
	kv := newFakeKV()
	svc := NewService(Config{Store: kv, TTL: cachekeys.NewTTLSet(config.CacheTTL{Short: 10, Medium: 60, Long: 300})})
	require.NotNil(t, svc)

	updated := time.Date(2024, 6, 3, 6, 30, 0, 0, time.UTC)
	q := market.Quote{
		Key:            "bitcoin",
		LastPrice:      65100,
		ReferencePrice: 65000,
		Change:         100,
		ChangePercent:  100.0 / 65000 * 100,
		Source:         market.SourceLive,
		Points:         12,
		UpdatedAt:      updated,
	}
	require.NoError(t, svc.RecordQuote(context.Background(), market.Crypto, q))

	key := "findash:quote:latest:crypto:bitcoin"
	assert.Contains(t, kv.values, key)
	assert.Equal(t, 300, kv.ttls[key])

	got, ok, err := svc.LatestQuote(context.Background(), market.Crypto, "bitcoin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, q, got)

	_, ok, err = svc.LatestQuote(context.Background(), market.Crypto, "ethereum")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := svc.LatestQuotes(context.Background(), market.Crypto, []string{"bitcoin", "ethereum"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordQuoteErrors(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")
	svc := NewService(Config{Store: kv, TTL: cachekeys.NewTTLSet(config.CacheTTL{})})

	err := svc.RecordQuote(context.Background(), market.USStocks, market.Quote{Key: "apple", LastPrice: 190})
	require.Error(t, err)

	require.NoError(t, svc.RecordQuote(context.Background(), market.USStocks, market.Quote{}))
}

func TestCorruptPayload(t *testing.T) {
	kv := newFakeKV()
	kv.values["findash:quote:latest:crypto:bitcoin"] = "\xc1"
	svc := NewService(Config{Store: kv})
	_, _, err := svc.LatestQuote(context.Background(), market.Crypto, "bitcoin")
	require.Error(t, err)
}

func TestNilService(t *testing.T) {
	assert.Nil(t, NewService(Config{}))
	var svc *Service
	require.NoError(t, svc.RecordQuote(context.Background(), market.Crypto, market.Quote{Key: "bitcoin"}))
	_, ok, err := svc.LatestQuote(context.Background(), market.Crypto, "bitcoin")
	require.NoError(t, err)
	assert.False(t, ok)
}
