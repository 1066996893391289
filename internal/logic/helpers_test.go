package logic

import "findash-api/internal/types"

func assetsReq(kind string) *types.AssetsReq {
	return &types.AssetsReq{Kind: kind}
}

func dashboardReq(kind, symbol string, days int, threshold float64) *types.DashboardReq {
	return &types.DashboardReq{Kind: kind, Symbol: symbol, Days: days, Threshold: threshold}
}
