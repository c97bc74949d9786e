package session

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"findash/pkg/market"
)

// runPass fetches keys one by one. The caller holds the market guard, so
// appends for a key are never interleaved between passes.
func (s *Session) runPass(ctx context.Context, m market.Market, keys []string, auth market.AuthState) PassResult {
	logger := logx.WithContext(ctx)
	res := PassResult{Market: m, StartedAt: s.now()}
	registry := market.RegistryFor(m)

	for i, key := range keys {
		if ctx.Err() != nil {
			res.Cancelled = true
			res.Outcomes = append(res.Outcomes, cancelledOutcomes(keys[i:])...)
			break
		}
		inst, ok := registry.Lookup(key)
		if !ok {
			continue
		}
		now := s.now()
		if !market.IsOpen(m, now) && s.history.Len(key) > 0 {
			res.Outcomes = append(res.Outcomes, Outcome{Key: key, Action: ActionSkipped})
			continue
		}

		call := s.selector.Select(m, inst, auth)
		if !call.Available() {
			out := Outcome{Key: key, Action: ActionUnavailable, Err: call.Err, ErrorKind: market.Classify(call.Err)}
			if market.FallbackWhenUnavailable(m) {
				s.applyFallback(ctx, m, key, now)
				out.Action = ActionFallback
			}
			res.Outcomes = append(res.Outcomes, out)
			continue
		}

		if res.Calls > 0 && call.Interval > 0 {
			if err := s.sleep(ctx, call.Interval); err != nil {
				res.Cancelled = true
				res.Outcomes = append(res.Outcomes, cancelledOutcomes(keys[i:])...)
				break
			}
		}
		res.Calls++
		price, err := call.Invoke(ctx)
		if err != nil {
			if ctx.Err() != nil {
				res.Cancelled = true
				res.Outcomes = append(res.Outcomes, cancelledOutcomes(keys[i:])...)
				break
			}
			kind := market.Classify(err)
			logger.Errorf("session: fetch failed market=%s key=%s provider=%s kind=%s err=%v", m, key, call.ProviderName, kind, err)
			s.applyFallback(ctx, m, key, s.now())
			res.Outcomes = append(res.Outcomes, Outcome{Key: key, Action: ActionFallback, Provider: call.ProviderName, ErrorKind: kind, Err: err})
			continue
		}
		if price.Stale {
			logger.Infof("session: stale price served market=%s key=%s provider=%s", m, key, call.ProviderName)
		}
		s.history.Append(key, market.PricePoint{Timestamp: s.now(), Price: price.Price}, market.SourceLive)
		s.persist(ctx, m, key)
		res.Outcomes = append(res.Outcomes, Outcome{Key: key, Action: ActionLive, Provider: call.ProviderName})
	}

	res.FinishedAt = s.now()
	logger.Infof("session: pass done market=%s calls=%d outcomes=%d cancelled=%t elapsed=%s",
		m, res.Calls, len(res.Outcomes), res.Cancelled, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
	return res
}

func (s *Session) applyFallback(ctx context.Context, m market.Market, key string, now time.Time) {
	s.history.Replace(key, s.fallback.GenerateFor(key, now), market.SourceFallback)
	s.persist(ctx, m, key)
}

func (s *Session) persist(ctx context.Context, m market.Market, key string) {
	if s.persistence == nil {
		return
	}
	if err := s.persistence.RecordQuote(ctx, m, s.history.Quote(key)); err != nil {
		logx.WithContext(ctx).Errorf("session: persist quote market=%s key=%s err=%v", m, key, err)
	}
}

func cancelledOutcomes(keys []string) []Outcome {
	out := make([]Outcome, 0, len(keys))
	for _, key := range keys {
		out = append(out, Outcome{Key: key, Action: ActionCancelled})
	}
	return out
}
