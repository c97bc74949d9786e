package svc

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	cachekeys "findash/internal/cache"
	"findash/internal/config"
	marketpersist "findash/internal/persistence/market"
	"findash/pkg/assistant"
	marketpkg "findash/pkg/market"
	_ "findash/pkg/market/exchanges/coingecko"
	_ "findash/pkg/market/exchanges/finnhub"
	_ "findash/pkg/market/exchanges/kite"
	"findash/pkg/session"
)

type ServiceContext struct {
	Config config.Config

	MarketConfig *marketpkg.Config
	Selector     *marketpkg.Selector
	Session      *session.Session

	// Assistant is nil when no assistant section is configured.
	Assistant *assistant.Assistant
	// QuoteMirror is nil when Redis is not configured.
	QuoteMirror *marketpersist.Service
}

// Option customises service construction, mainly for tests.
type Option func(*options)

type options struct {
	sessionOpts []session.Option
	store       quoteStore
	selector    *marketpkg.Selector
}

type quoteStore interface {
	SetexCtx(ctx context.Context, key, value string, seconds int) error
	GetCtx(ctx context.Context, key string) (string, error)
}

// WithSessionOptions appends options to the session constructor.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// WithSelector replaces the selector built from the market section.
func WithSelector(selector *marketpkg.Selector) Option {
	return func(o *options) {
		o.selector = selector
	}
}

// WithQuoteStore replaces the Redis client backing the quote mirror.
func WithQuoteStore(store quoteStore) Option {
	return func(o *options) {
		o.store = store
	}
}

func MustNewServiceContext(c config.Config, opts ...Option) *ServiceContext {
	ctx, err := NewServiceContext(c, opts...)
	if err != nil {
		log.Fatalf("failed to build service context: %v", err)
	}
	return ctx
}

func NewServiceContext(c config.Config, opts ...Option) (*ServiceContext, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	svc := &ServiceContext{Config: c}

	// Without a market section every market runs on demo data.
	svc.Selector = marketpkg.NewSelector(nil)
	if c.Market.Value != nil {
		selector, err := c.Market.Value.BuildSelector()
		if err != nil {
			return nil, fmt.Errorf("build market providers: %w", err)
		}
		svc.MarketConfig = c.Market.Value
		svc.Selector = selector
	}
	if o.selector != nil {
		svc.Selector = o.selector
	}

	store := o.store
	if store == nil && c.RedisEnabled() {
		rds, err := redis.NewRedis(c.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = rds
	}
	if store != nil {
		svc.QuoteMirror = marketpersist.NewService(marketpersist.Config{
			Store: store,
			TTL:   cachekeys.NewTTLSet(c.TTL),
		})
	}

	sessOpts := []session.Option{
		session.WithRefreshInterval(c.Session.RefreshInterval),
		session.WithInitialMarket(c.InitialMarket()),
		session.WithAuth(marketpkg.AuthState{KiteAccessToken: c.Session.KiteAccessToken}),
	}
	if svc.QuoteMirror != nil {
		sessOpts = append(sessOpts, session.WithPersistence(svc.QuoteMirror))
	}
	sess, err := session.New(svc.Selector, append(sessOpts, o.sessionOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}
	svc.Session = sess

	if c.Assistant.Value != nil {
		asst, err := assistant.NewFromConfig(c.Assistant.Value,
			assistant.WithPromptData(func(context.Context) any { return sess.View() }),
		)
		if err != nil {
			_ = sess.Close()
			return nil, fmt.Errorf("build assistant: %w", err)
		}
		svc.Assistant = asst
	}
	return svc, nil
}

// Start loads the initial market in the background and arms auto-refresh.
func (s *ServiceContext) Start(ctx context.Context) error {
	go func() {
		res := s.Session.LoadInitial(ctx)
		logx.WithContext(ctx).Infof("initial load market=%s calls=%d", res.Market, res.Calls)
	}()
	return s.Session.StartAutoRefresh(ctx)
}

func (s *ServiceContext) Close() error {
	var errs []error
	if s.Session != nil {
		errs = append(errs, s.Session.Close())
	}
	if s.Assistant != nil {
		errs = append(errs, s.Assistant.Close())
	}
	return errors.Join(errs...)
}
