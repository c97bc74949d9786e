package session

import (
	"time"

	"findash/pkg/market"
)

// Status is the aggregate connection indicator of the active market.
type Status string

const (
	StatusLoginRequired Status = "login_required"
	StatusLoading       Status = "loading"
	StatusConnected     Status = "connected"
	StatusDemo          Status = "demo"
)

// Label returns the short text shown next to the status dot.
func (s Status) Label() string {
	switch s {
	case StatusConnected:
		return "Live"
	case StatusLoading:
		return "Loading..."
	case StatusLoginRequired:
		return "Login required"
	default:
		return "Demo Mode"
	}
}

// Action records what a pass did for one instrument.
type Action string

const (
	ActionLive     Action = "live"
	ActionFallback Action = "fallback"
	// ActionSkipped means the market was closed and history already existed.
	ActionSkipped Action = "skipped"
	// ActionUnavailable means no provider was selected and demo data is not allowed.
	ActionUnavailable Action = "unavailable"
	ActionCancelled   Action = "cancelled"
)

// Outcome is the per-instrument result of a pass.
type Outcome struct {
	Key       string           `json:"key"`
	Action    Action           `json:"action"`
	Provider  string           `json:"provider,omitempty"`
	ErrorKind market.ErrorKind `json:"errorKind,omitempty"`
	Err       error            `json:"-"`
}

// PassResult summarises one sequential fetch pass.
type PassResult struct {
	Market     market.Market `json:"market"`
	Outcomes   []Outcome     `json:"outcomes"`
	Calls      int           `json:"calls"`
	Cancelled  bool          `json:"cancelled"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// Outcome returns the outcome recorded for key.
func (r PassResult) Outcome(key string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Key == key {
			return o, true
		}
	}
	return Outcome{}, false
}

// InstrumentView is one chart slot.
type InstrumentView struct {
	Slot       int               `json:"slot"`
	Instrument market.Instrument `json:"instrument"`
	Quote      market.Quote      `json:"quote"`
}

// View is the read model rendered by the dashboard.
type View struct {
	Market       market.Market       `json:"market"`
	MarketOpen   bool                `json:"marketOpen"`
	MarketStatus string              `json:"marketStatus"`
	Status       Status              `json:"status"`
	StatusLabel  string              `json:"statusLabel"`
	LastRefresh  time.Time           `json:"lastRefresh"`
	Selected     []InstrumentView    `json:"selected"`
	Available    []market.Instrument `json:"available"`
}
