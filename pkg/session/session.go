// Package session drives per-market quote fetching for one dashboard user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"findash/pkg/market"
)

// DefaultRefreshInterval is the auto-refresh period.
const DefaultRefreshInterval = 30 * time.Second

// Session owns the active market, the selection, the price history and the
// refresh timer. Passes for a market are serialised by that market's guard.
type Session struct {
	selector    *market.Selector
	history     *market.HistoryStore
	fallback    *market.FallbackGenerator
	persistence market.Persistence
	interval    time.Duration
	now         func() time.Time
	sleep       func(context.Context, time.Duration) error

	guards map[market.Market]*sync.Mutex

	mu          sync.RWMutex
	active      market.Market
	selection   *market.Selection
	auth        market.AuthState
	status      Status
	lastRefresh time.Time

	schedMu   sync.Mutex
	scheduler gocron.Scheduler
	job       gocron.Job
	autoCtx   context.Context
}

// Option customises a Session.
type Option func(*Session)

// WithRefreshInterval overrides the auto-refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithInitialMarket selects the market shown first.
func WithInitialMarket(m market.Market) Option {
	return func(s *Session) {
		if m != "" {
			s.active = m
		}
	}
}

// WithHistoryStore shares an existing history store.
func WithHistoryStore(h *market.HistoryStore) Option {
	return func(s *Session) {
		if h != nil {
			s.history = h
		}
	}
}

// WithFallbackGenerator injects the demo data generator.
func WithFallbackGenerator(g *market.FallbackGenerator) Option {
	return func(s *Session) {
		if g != nil {
			s.fallback = g
		}
	}
}

// WithPersistence mirrors every updated quote to p.
func WithPersistence(p market.Persistence) Option {
	return func(s *Session) {
		s.persistence = p
	}
}

// WithAuth seeds the login state.
func WithAuth(a market.AuthState) Option {
	return func(s *Session) {
		s.auth = a
	}
}

// WithClock replaces the wall clock used for gating and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSleeper replaces the pacing delay.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(s *Session) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// New constructs a session showing the initial market's default selection.
func New(selector *market.Selector, opts ...Option) (*Session, error) {
	if selector == nil {
		selector = market.NewSelector(nil)
	}
	s := &Session{
		selector: selector,
		history:  market.NewHistoryStore(),
		interval: DefaultRefreshInterval,
		now:      time.Now,
		sleep:    sleepContext,
		guards:   make(map[market.Market]*sync.Mutex),
		active:   market.Crypto,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fallback == nil {
		s.fallback = market.NewFallbackGenerator(nil)
	}
	for _, m := range market.Markets() {
		s.guards[m] = &sync.Mutex{}
	}
	sel, err := market.NewSelection(market.RegistryFor(s.active))
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.selection = sel
	s.status = s.statusLocked()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("session: create scheduler: %w", err)
	}
	scheduler.Start()
	s.scheduler = scheduler
	return s, nil
}

// PassBudget bounds a full pass over m when each upstream call may take up to
// perCall, pacing delays included.
func (s *Session) PassBudget(m market.Market, perCall time.Duration) time.Duration {
	var interval time.Duration
	if r, ok := s.selector.Route(m); ok {
		interval = r.Interval
	}
	return time.Duration(market.SelectionSize) * (interval + perCall)
}

// History exposes the shared price history store.
func (s *Session) History() *market.HistoryStore { return s.history }

// Market returns the active market.
func (s *Session) Market() market.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Selected returns the selected keys in slot order.
func (s *Session) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection.Keys()
}

// LoadInitial runs a full pass over the selection, waiting for any pass in flight to finish.
func (s *Session) LoadInitial(ctx context.Context) PassResult {
	m, keys, auth := s.snapshot()
	guard := s.guard(m)
	guard.Lock()
	defer guard.Unlock()

	s.setStatus(m, StatusLoading)
	res := s.runPass(ctx, m, keys, auth)
	s.finishPass(m, res)
	return res
}

// Refresh runs a pass unless one is already running for the active market, in
// which case it returns false without issuing any calls.
func (s *Session) Refresh(ctx context.Context) (PassResult, bool) {
	m, keys, auth := s.snapshot()
	guard := s.guard(m)
	if !guard.TryLock() {
		logx.WithContext(ctx).Infof("session: refresh skipped, pass in flight market=%s", m)
		return PassResult{Market: m}, false
	}
	defer guard.Unlock()

	res := s.runPass(ctx, m, keys, auth)
	s.finishPass(m, res)
	return res, true
}

// StartAutoRefresh arms the repeating refresh timer, replacing any previous one.
// Ticks run Refresh with ctx until ctx is done or Close is called.
func (s *Session) StartAutoRefresh(ctx context.Context) error {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	s.autoCtx = ctx
	return s.rearmLocked()
}

// StopAutoRefresh disarms the timer.
func (s *Session) StopAutoRefresh() error {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	s.autoCtx = nil
	return s.removeJobLocked()
}

func (s *Session) rearmLocked() error {
	if err := s.removeJobLocked(); err != nil {
		return err
	}
	ctx := s.autoCtx
	if ctx == nil {
		return nil
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			s.Refresh(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("session: schedule refresh: %w", err)
	}
	s.job = job
	return nil
}

func (s *Session) removeJobLocked() error {
	if s.job == nil {
		return nil
	}
	id := s.job.ID()
	s.job = nil
	if err := s.scheduler.RemoveJob(id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		return fmt.Errorf("session: remove refresh job: %w", err)
	}
	return nil
}

func (s *Session) rearm() {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	if err := s.rearmLocked(); err != nil {
		logx.Errorf("session: re-arm refresh timer: %v", err)
	}
}

// Activate switches to m, resets the selection to m's defaults, keeps history,
// re-arms the timer and loads m.
func (s *Session) Activate(ctx context.Context, m market.Market) (PassResult, error) {
	sel, err := market.NewSelection(market.RegistryFor(m))
	if err != nil {
		return PassResult{}, fmt.Errorf("session: activate %q: %w", m, err)
	}
	s.mu.Lock()
	s.active = m
	s.selection = sel
	s.status = s.statusLocked()
	s.mu.Unlock()

	s.rearm()
	return s.LoadInitial(ctx), nil
}

// Assign places key into slot (swapping on conflict), re-arms the timer and reloads.
func (s *Session) Assign(ctx context.Context, slot int, key string) (PassResult, error) {
	s.mu.Lock()
	err := s.selection.Assign(slot, key)
	s.mu.Unlock()
	if err != nil {
		return PassResult{}, err
	}
	s.rearm()
	return s.LoadInitial(ctx), nil
}

// SetAuth stores the login state. The Indian market is reloaded when active.
func (s *Session) SetAuth(ctx context.Context, auth market.AuthState) {
	s.mu.Lock()
	s.auth = auth
	active := s.active
	s.status = s.statusLocked()
	s.mu.Unlock()

	if active == market.IndianStocks {
		s.LoadInitial(ctx)
	}
}

// Authenticated reports whether a Kite session token is held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth.Authenticated()
}

// View renders the active market for display.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	registry := market.RegistryFor(s.active)
	v := View{
		Market:       s.active,
		MarketOpen:   market.IsOpen(s.active, now),
		MarketStatus: market.StatusString(s.active, now),
		Status:       s.status,
		StatusLabel:  s.status.Label(),
		LastRefresh:  s.lastRefresh,
		Available:    registry.Instruments(),
	}
	for slot, key := range s.selection.Keys() {
		inst, _ := registry.Lookup(key)
		v.Selected = append(v.Selected, InstrumentView{Slot: slot, Instrument: inst, Quote: s.history.Quote(key)})
	}
	return v
}

// Close disarms the timer and stops the scheduler.
func (s *Session) Close() error {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	s.autoCtx = nil
	s.job = nil
	return s.scheduler.Shutdown()
}

func (s *Session) snapshot() (market.Market, []string, market.AuthState) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.selection.Keys(), s.auth
}

func (s *Session) guard(m market.Market) *sync.Mutex {
	if g, ok := s.guards[m]; ok {
		return g
	}
	// Unknown markets have an empty registry; a private guard is enough.
	return &sync.Mutex{}
}

func (s *Session) setStatus(m market.Market, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == m {
		s.status = st
	}
}

func (s *Session) finishPass(m market.Market, res PassResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != m {
		return
	}
	s.lastRefresh = res.FinishedAt
	s.status = s.statusLocked()
}

// statusLocked derives the indicator from the sources of the selected histories.
func (s *Session) statusLocked() Status {
	if s.active == market.IndianStocks && !s.auth.Authenticated() {
		return StatusLoginRequired
	}
	for _, key := range s.selection.Keys() {
		if s.history.Source(key) == market.SourceLive {
			return StatusConnected
		}
	}
	return StatusDemo
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
