package types

import (
	"time"

	"findash/pkg/assistant"
	"findash/pkg/market"
	"findash/pkg/session"
)

type MarketReq struct {
	Market string `json:"market"`
}

type SelectionReq struct {
	Slot int    `json:"slot"`
	Key  string `json:"key"`
}

type AuthReq struct {
	// AccessToken is the Kite session token; empty logs out.
	AccessToken string `json:"accessToken,optional"`
}

type HistoryReq struct {
	Key string `form:"key"`
}

type ClockReq struct {
	Market string `form:"market,optional"`
}

type CachedQuotesReq struct {
	Market string `form:"market,optional"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatReq struct {
	Messages []ChatMessage `json:"messages"`
	Provider string        `json:"provider,optional"`
}

type PassSummary struct {
	Market    market.Market     `json:"market"`
	Calls     int               `json:"calls"`
	Cancelled bool              `json:"cancelled"`
	Ran       bool              `json:"ran"`
	Outcomes  []session.Outcome `json:"outcomes"`
	TookMs    int64             `json:"tookMs"`
}

type ViewResp struct {
	View session.View `json:"view"`
	Pass *PassSummary `json:"pass,omitempty"`
}

type HistoryResp struct {
	Key    string              `json:"key"`
	Source market.Source       `json:"source"`
	Points []market.PricePoint `json:"points"`
	Quote  market.Quote        `json:"quote"`
}

type ClockStatus struct {
	Market market.Market `json:"market"`
	Open   bool          `json:"open"`
	Status string        `json:"status"`
}

type ClockResp struct {
	Now     time.Time     `json:"now"`
	Markets []ClockStatus `json:"markets"`
}

type CachedQuotesResp struct {
	Market market.Market           `json:"market"`
	Quotes map[string]market.Quote `json:"quotes"`
}

type ChatResp struct {
	Reply     *assistant.Reply   `json:"reply"`
	Providers []assistant.Choice `json:"providers"`
}
