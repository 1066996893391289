// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

import "findash-api/pkg/chart"

type AssetsReq struct {
	Kind string `form:"kind,default=crypto"`
}

type AssetItem struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name,omitempty"`
	ProviderId string `json:"providerId"`
}

type AssetsResp struct {
	Kind          string      `json:"kind"`
	Label         string      `json:"label"`
	DefaultSymbol string      `json:"defaultSymbol"`
	UsesWindow    bool        `json:"usesWindow"`
	Assets        []AssetItem `json:"assets"`
}

type DashboardReq struct {
	Kind      string  `form:"kind,default=crypto"`
	Symbol    string  `form:"symbol,optional"`
	Days      int     `form:"days,default=180"`
	Threshold float64 `form:"threshold,default=5,range=[0.5:20]"`
}

type Metrics struct {
	LatestPrice string `json:"latestPrice"`
	Change24h   string `json:"change24h"`
	Change7d    string `json:"change7d"`
	Change30d   string `json:"change30d"`
}

type DashboardResp struct {
	Kind        string        `json:"kind"`
	Symbol      string        `json:"symbol"`
	Name        string        `json:"name,omitempty"`
	Days        int           `json:"days"`
	Threshold   float64       `json:"threshold"`
	Unavailable bool          `json:"unavailable"`
	Message     string        `json:"message,omitempty"`
	Metrics     *Metrics      `json:"metrics,omitempty"`
	Alert       string        `json:"alert,omitempty"`
	Chart       *chart.Figure `json:"chart,omitempty"`
	Narrative   string        `json:"narrative,omitempty"`
}
