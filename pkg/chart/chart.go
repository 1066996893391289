// Package chart builds declarative Plotly figures for a price history. The figure is
// plain JSON handed to plotly.js in the browser; nothing is rendered server side.
package chart

import (
	"strings"

	"findash-api/pkg/market"
)

const (
	traceName = "Price (USD)"
	lineColor = "#1f77b4"
	height    = 500
)

// Figure is the subset of the Plotly figure schema the dashboard uses.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type   string    `json:"type"`
	Mode   string    `json:"mode"`
	Name   string    `json:"name"`
	X      []string  `json:"x"`
	Y      []float64 `json:"y"`
	Line   Line      `json:"line"`
	Marker Marker    `json:"marker"`
}

type Line struct {
	Color string `json:"color"`
	Width int    `json:"width"`
}

type Marker struct {
	Size int `json:"size"`
}

type Layout struct {
	Title        Title  `json:"title"`
	XAxis        XAxis  `json:"xaxis"`
	YAxis        YAxis  `json:"yaxis"`
	Height       int    `json:"height"`
	PaperBGColor string `json:"paper_bgcolor"`
	PlotBGColor  string `json:"plot_bgcolor"`
	Font         Font   `json:"font"`
}

type Title struct {
	Text string `json:"text"`
}

type Font struct {
	Color string `json:"color"`
}

type XAxis struct {
	Title         Title         `json:"title"`
	Type          string        `json:"type"`
	GridColor     string        `json:"gridcolor"`
	RangeSelector RangeSelector `json:"rangeselector"`
	RangeSlider   RangeSlider   `json:"rangeslider"`
}

type YAxis struct {
	Title     Title  `json:"title"`
	GridColor string `json:"gridcolor"`
}

type RangeSelector struct {
	Buttons     []RangeButton `json:"buttons"`
	BGColor     string        `json:"bgcolor"`
	ActiveColor string        `json:"activecolor"`
}

// RangeButton is a preset zoom. Count is omitted for the "all" button.
type RangeButton struct {
	Count    int    `json:"count,omitempty"`
	Label    string `json:"label"`
	Step     string `json:"step"`
	StepMode string `json:"stepmode,omitempty"`
}

type RangeSlider struct {
	Visible bool `json:"visible"`
}

// Dark theme colors, matching plotly_dark.
const (
	darkPaper  = "rgb(17,17,17)"
	darkPlot   = "rgb(17,17,17)"
	darkGrid   = "#283442"
	darkFont   = "#f2f5fa"
	darkButton = "#283442"
	darkActive = "#506784"
)

func rangeButtons() []RangeButton {
	return []RangeButton{
		{Count: 1, Label: "1m", Step: "month", StepMode: "backward"},
		{Count: 6, Label: "6m", Step: "month", StepMode: "backward"},
		{Count: 1, Label: "YTD", Step: "year", StepMode: "todate"},
		{Count: 1, Label: "1y", Step: "year", StepMode: "backward"},
		{Label: "all", Step: "all"},
	}
}

// Build returns the price figure for series. An empty series yields a figure with
// an empty trace, never an error.
func Build(series market.Series, label string) Figure {
	x := make([]string, 0, series.Len())
	y := make([]float64, 0, series.Len())
	for _, p := range series.Points() {
		x = append(x, p.Date.Format(market.DateLayout))
		y = append(y, p.Price.InexactFloat64())
	}

	return Figure{
		Data: []Trace{{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   traceName,
			X:      x,
			Y:      y,
			Line:   Line{Color: lineColor, Width: 2},
			Marker: Marker{Size: 4},
		}},
		Layout: Layout{
			Title: Title{Text: "Price History for " + strings.ToUpper(strings.TrimSpace(label))},
			XAxis: XAxis{
				Title:     Title{Text: "Date"},
				Type:      "date",
				GridColor: darkGrid,
				RangeSelector: RangeSelector{
					Buttons:     rangeButtons(),
					BGColor:     darkButton,
					ActiveColor: darkActive,
				},
				RangeSlider: RangeSlider{Visible: true},
			},
			YAxis:        YAxis{Title: Title{Text: traceName}, GridColor: darkGrid},
			Height:       height,
			PaperBGColor: darkPaper,
			PlotBGColor:  darkPlot,
			Font:         Font{Color: darkFont},
		},
	}
}
