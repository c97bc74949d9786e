package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"findash/internal/svc"
	"findash/internal/types"
	"findash/pkg/market"
	"findash/pkg/session"
)

type DashboardLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDashboardLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DashboardLogic {
	return &DashboardLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *DashboardLogic) View() (*types.ViewResp, error) {
	return &types.ViewResp{View: l.svcCtx.Session.View()}, nil
}

func (l *DashboardLogic) SwitchMarket(req *types.MarketReq) (*types.ViewResp, error) {
	m, err := market.ParseMarket(req.Market)
	if err != nil {
		return nil, err
	}
	ctx, cancel := l.passContext(m)
	defer cancel()
	res, err := l.svcCtx.Session.Activate(ctx, m)
	if err != nil {
		return nil, err
	}
	l.Infof("market switched to %s calls=%d", m, res.Calls)
	return l.withPass(res, true), nil
}

func (l *DashboardLogic) Assign(req *types.SelectionReq) (*types.ViewResp, error) {
	key := strings.ToLower(strings.TrimSpace(req.Key))
	if key == "" {
		return nil, errors.New("key is required")
	}
	ctx, cancel := l.passContext(l.svcCtx.Session.Market())
	defer cancel()
	res, err := l.svcCtx.Session.Assign(ctx, req.Slot, key)
	if err != nil {
		return nil, err
	}
	return l.withPass(res, true), nil
}

func (l *DashboardLogic) SetAuth(req *types.AuthReq) (*types.ViewResp, error) {
	token := strings.TrimSpace(req.AccessToken)
	ctx, cancel := l.passContext(l.svcCtx.Session.Market())
	defer cancel()
	l.svcCtx.Session.SetAuth(ctx, market.AuthState{KiteAccessToken: token})
	if token == "" {
		l.Info("kite session cleared")
	} else {
		l.Info("kite session stored")
	}
	return l.View()
}

func (l *DashboardLogic) Refresh() (*types.ViewResp, error) {
	ctx, cancel := l.passContext(l.svcCtx.Session.Market())
	defer cancel()
	res, ran := l.svcCtx.Session.Refresh(ctx)
	return l.withPass(res, ran), nil
}

func (l *DashboardLogic) History(req *types.HistoryReq) (*types.HistoryResp, error) {
	key := strings.ToLower(strings.TrimSpace(req.Key))
	m := l.svcCtx.Session.Market()
	if !market.RegistryFor(m).Contains(key) {
		return nil, fmt.Errorf("unknown instrument %q for %s", req.Key, m)
	}
	history := l.svcCtx.Session.History()
	return &types.HistoryResp{
		Key:    key,
		Source: history.Source(key),
		Points: history.Points(key),
		Quote:  history.Quote(key),
	}, nil
}

func (l *DashboardLogic) Clock(req *types.ClockReq) (*types.ClockResp, error) {
	markets := market.Markets()
	if strings.TrimSpace(req.Market) != "" {
		m, err := market.ParseMarket(req.Market)
		if err != nil {
			return nil, err
		}
		markets = []market.Market{m}
	}
	now := time.Now().In(market.IST)
	resp := &types.ClockResp{Now: now}
	for _, m := range markets {
		resp.Markets = append(resp.Markets, types.ClockStatus{
			Market: m,
			Open:   market.IsOpen(m, now),
			Status: market.StatusString(m, now),
		})
	}
	return resp, nil
}

func (l *DashboardLogic) CachedQuotes(req *types.CachedQuotesReq) (*types.CachedQuotesResp, error) {
	if l.svcCtx.QuoteMirror == nil {
		return nil, errors.New("quote mirror is not configured")
	}
	m := l.svcCtx.Session.Market()
	if strings.TrimSpace(req.Market) != "" {
		parsed, err := market.ParseMarket(req.Market)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	quotes, err := l.svcCtx.QuoteMirror.LatestQuotes(l.ctx, m, market.RegistryFor(m).Keys())
	if err != nil {
		return nil, err
	}
	return &types.CachedQuotesResp{Market: m, Quotes: quotes}, nil
}

// passContext detaches a fetch pass from the request so the server's handler
// timeout or a client disconnect cannot cut it short. The pass keeps the
// request's values and its own deadline sized to m's pacing.
func (l *DashboardLogic) passContext(m market.Market) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(l.ctx)
	perCall := l.svcCtx.Config.Session.CallTimeout
	if perCall <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.svcCtx.Session.PassBudget(m, perCall))
}

func (l *DashboardLogic) withPass(res session.PassResult, ran bool) *types.ViewResp {
	summary := &types.PassSummary{
		Market:    res.Market,
		Calls:     res.Calls,
		Cancelled: res.Cancelled,
		Ran:       ran,
		Outcomes:  res.Outcomes,
	}
	if !res.StartedAt.IsZero() && !res.FinishedAt.IsZero() {
		summary.TookMs = res.FinishedAt.Sub(res.StartedAt).Milliseconds()
	}
	return &types.ViewResp{View: l.svcCtx.Session.View(), Pass: summary}
}
