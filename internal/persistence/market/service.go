package marketpersist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"

	cachekeys "findash/internal/cache"
	"findash/pkg/market"
)

// kvStore is the subset of go-zero's redis client the mirror needs.
type kvStore interface {
	SetexCtx(ctx context.Context, key, value string, seconds int) error
	GetCtx(ctx context.Context, key string) (string, error)
}

// quoteRecord is the msgpack wire form of a quote.
type quoteRecord struct {
	Key            string  `msgpack:"key"`
	Market         string  `msgpack:"market"`
	LastPrice      float64 `msgpack:"last"`
	ReferencePrice float64 `msgpack:"ref"`
	Change         float64 `msgpack:"chg"`
	ChangePercent  float64 `msgpack:"chg_pct"`
	Source         string  `msgpack:"src"`
	Points         int     `msgpack:"n"`
	UpdatedAtMs    int64   `msgpack:"ts"`
}

// Service mirrors the latest derived quote of every refreshed instrument to Redis.
type Service struct {
	store kvStore
	ttl   cachekeys.TTLSet
}

// Config enumerates dependencies required to mirror quotes.
type Config struct {
	Store kvStore
	TTL   cachekeys.TTLSet
}

// NewService wires a quote mirror. Returns nil when no store is configured.
func NewService(cfg Config) *Service {
	if cfg.Store == nil {
		return nil
	}
	return &Service{store: cfg.Store, ttl: cfg.TTL}
}

// RecordQuote implements market.Persistence.
func (s *Service) RecordQuote(ctx context.Context, m market.Market, q market.Quote) error {
	if s == nil || s.store == nil || strings.TrimSpace(q.Key) == "" {
		return nil
	}
	ttl := cachekeys.QuoteTTL(s.ttl)
	if ttl <= 0 {
		return nil
	}
	rec := quoteRecord{
		Key:            q.Key,
		Market:         string(m),
		LastPrice:      q.LastPrice,
		ReferencePrice: q.ReferencePrice,
		Change:         q.Change,
		ChangePercent:  q.ChangePercent,
		Source:         string(q.Source),
		Points:         q.Points,
	}
	if !q.UpdatedAt.IsZero() {
		rec.UpdatedAtMs = q.UpdatedAt.UnixMilli()
	}
	payload, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marketpersist: encode quote %s: %w", q.Key, err)
	}
	key := cachekeys.QuoteLatestKey(string(m), q.Key)
	if err := s.store.SetexCtx(ctx, key, string(payload), ttlSeconds(ttl)); err != nil {
		logx.WithContext(ctx).Errorf("marketpersist: cache quote key=%s err=%v", key, err)
		return err
	}
	return nil
}

// LatestQuote reads back a mirrored quote. ok is false when nothing is cached.
func (s *Service) LatestQuote(ctx context.Context, m market.Market, key string) (market.Quote, bool, error) {
	if s == nil || s.store == nil {
		return market.Quote{}, false, nil
	}
	raw, err := s.store.GetCtx(ctx, cachekeys.QuoteLatestKey(string(m), key))
	if err != nil {
		return market.Quote{}, false, err
	}
	if raw == "" {
		return market.Quote{}, false, nil
	}
	var rec quoteRecord
	if err := msgpack.Unmarshal([]byte(raw), &rec); err != nil {
		return market.Quote{}, false, fmt.Errorf("marketpersist: decode quote %s: %w", key, err)
	}
	q := market.Quote{
		Key:            rec.Key,
		LastPrice:      rec.LastPrice,
		ReferencePrice: rec.ReferencePrice,
		Change:         rec.Change,
		ChangePercent:  rec.ChangePercent,
		Source:         market.Source(rec.Source),
		Points:         rec.Points,
	}
	if rec.UpdatedAtMs > 0 {
		q.UpdatedAt = time.UnixMilli(rec.UpdatedAtMs).UTC()
	}
	return q, true, nil
}

// LatestQuotes returns the mirrored quotes for keys, skipping misses.
func (s *Service) LatestQuotes(ctx context.Context, m market.Market, keys []string) (map[string]market.Quote, error) {
	out := make(map[string]market.Quote, len(keys))
	for _, key := range keys {
		q, ok, err := s.LatestQuote(ctx, m, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = q
		}
	}
	return out, nil
}

func ttlSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
