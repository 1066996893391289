package logic

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"findash-api/internal/cache"
	"findash-api/internal/svc"
	"findash-api/internal/types"
	"findash-api/pkg/catalog"
	"findash-api/pkg/chart"
	"findash-api/pkg/insight"
	"findash-api/pkg/market"
)

const (
	DefaultDays      = 180
	MinDays          = 30
	MaxDays          = 365
	DefaultThreshold = 5.0
	MinThreshold     = 0.5
	MaxThreshold     = 20.0
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

// UnavailableMessage is shown in place of the dashboard when no history could be fetched.
func UnavailableMessage(symbol string) string {
	return fmt.Sprintf("Could not fetch data for %s. The API may be temporarily unavailable or the asset is invalid.", symbol)
}

func (l *DashboardLogic) Dashboard(req *types.DashboardReq) (resp *types.DashboardResp, err error) {
	kind, err := catalog.ParseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = l.svcCtx.Catalog.DefaultSymbol(kind)
	}
	entry, err := l.svcCtx.Catalog.Resolve(kind, symbol)
	if err != nil {
		return nil, err
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if !insight.ValidThreshold(threshold) || threshold < MinThreshold || threshold > MaxThreshold {
		return nil, fmt.Errorf("threshold must be within [%.1f, %.1f], got %v", MinThreshold, MaxThreshold, req.Threshold)
	}

	window := 0
	if kind.UsesWindow() {
		window = req.Days
		if window == 0 {
			window = DefaultDays
		}
		if window < MinDays || window > MaxDays {
			return nil, fmt.Errorf("days must be within [%d, %d], got %d", MinDays, MaxDays, req.Days)
		}
	}

	resp = &types.DashboardResp{
		Kind:      string(kind),
		Symbol:    entry.Symbol,
		Name:      entry.Name,
		Days:      window,
		Threshold: threshold,
	}

	series := l.history(kind, entry, window)
	if series.Empty() {
		resp.Unavailable = true
		resp.Message = UnavailableMessage(entry.Symbol)
		return resp, nil
	}

	report := insight.Calculate(series, threshold)
	figure := chart.Build(series, entry.Symbol)
	resp.Metrics = &types.Metrics{
		LatestPrice: report.LatestPrice,
		Change24h:   report.Change24h,
		Change7d:    report.Change7d,
		Change30d:   report.Change30d,
	}
	resp.Alert = report.Alert
	resp.Chart = &figure
	resp.Narrative = l.svcCtx.Narrator.Generate(l.ctx, entry.Symbol, report, kind)
	return resp, nil
}

// history returns the cached or freshly fetched series. Failures are logged and
// surface as an empty series; they are never cached.
func (l *DashboardLogic) history(kind catalog.Kind, entry catalog.Entry, window int) market.Series {
	fetcher := l.svcCtx.Fetchers[kind]
	key := cache.HistoryKey(string(kind), entry.ProviderID, window)

	series, err := cache.Fetch(l.ctx, l.svcCtx.Cache, key, l.svcCtx.TTL.Duration(cache.TTLHistory),
		func(ctx context.Context) (market.Series, error) {
			return market.SafeFetch(ctx, fetcher, entry.ProviderID, window)
		})
	if err != nil {
		l.Errorf("history for %s unavailable: %v", entry.Symbol, err)
		return market.Series{}
	}
	return series
}
