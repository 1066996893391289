package insight

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash-api/pkg/market"
)

func seriesOf(prices ...float64) market.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]market.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = market.PricePoint{Date: start.AddDate(0, 0, i), Price: decimal.NewFromFloat(p)}
	}
	return market.NewSeries(points)
}

func constant(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func TestCalculate_ShortSeriesIsUnavailable(t *testing.T) {
	for _, s := range []market.Series{seriesOf(), seriesOf(100)} {
		for _, threshold := range []float64{0.5, 5, 20} {
			r := Calculate(s, threshold)
			assert.Equal(t, Unavailable(), r)
			assert.False(t, r.Available())
			assert.False(t, r.HasAlert())
		}
	}
}

func TestCalculate_ConstantSeries(t *testing.T) {
	r := Calculate(seriesOf(constant(31, 250)...), 0.5)
	assert.Equal(t, "$250.00", r.LatestPrice)
	assert.Equal(t, "0.00%", r.Change24h)
	assert.Equal(t, "0.00%", r.Change7d)
	assert.Equal(t, "0.00%", r.Change30d)
	assert.Empty(t, r.Alert)
}

func TestCalculate_AlertThreshold(t *testing.T) {
	r := Calculate(seriesOf(100, 106), 5)
	assert.Equal(t, "+6.00%", r.Change24h)
	require.True(t, r.HasAlert())
	assert.Equal(t, "Alert: Increase of +6.00% in the last 24 hours!", r.Alert)

	r = Calculate(seriesOf(100, 104), 5)
	assert.Equal(t, "+4.00%", r.Change24h)
	assert.False(t, r.HasAlert())

	// Exactly at the threshold does not fire.
	r = Calculate(seriesOf(100, 105), 5)
	assert.False(t, r.HasAlert())
}

func TestCalculate_Decrease(t *testing.T) {
	r := Calculate(seriesOf(50, 40), 10)
	assert.Equal(t, "-20.00%", r.Change24h)
	assert.Equal(t, "Alert: Decrease of -20.00% in the last 24 hours!", r.Alert)

	r = Calculate(seriesOf(50, 40), 20)
	assert.False(t, r.HasAlert(), "a change equal to the threshold does not alert")
}

func TestCalculate_ShortSeriesReferencesFallBackToFirst(t *testing.T) {
	// Three points: 7d and 30d both compare against the first one.
	r := Calculate(seriesOf(80, 90, 100), 50)
	assert.Equal(t, "+11.11%", r.Change24h)
	assert.Equal(t, "+25.00%", r.Change7d)
	assert.Equal(t, "+25.00%", r.Change30d)
}

func TestCalculate_Horizons(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = float64(100 + i)
	}
	r := Calculate(seriesOf(prices...), 5)

	// latest 139; 24h ref 138; 7d ref 132; 30d ref 109.
	assert.Equal(t, "$139.00", r.LatestPrice)
	assert.Equal(t, "+0.72%", r.Change24h)
	assert.Equal(t, "+5.30%", r.Change7d)
	assert.Equal(t, "+27.52%", r.Change30d)
	assert.False(t, r.HasAlert(), "only the 24h change drives the alert")
}

func TestCalculate_BoundaryLengths(t *testing.T) {
	// len 8: 7d reference is index 0, which is also last-7.
	r := Calculate(seriesOf(10, 1, 1, 1, 1, 1, 1, 20), 1000)
	assert.Equal(t, "+100.00%", r.Change7d)

	// len 31: 30d reference is index 0.
	prices := constant(31, 1)
	prices[0] = 4
	prices[30] = 8
	r = Calculate(seriesOf(prices...), 1000)
	assert.Equal(t, "+100.00%", r.Change30d)
	assert.Equal(t, "+700.00%", r.Change7d)
}

func TestCalculate_ZeroReference(t *testing.T) {
	r := Calculate(seriesOf(0, 10), 1)
	assert.Equal(t, "$10.00", r.LatestPrice)
	assert.Equal(t, Placeholder, r.Change24h)
	assert.Equal(t, Placeholder, r.Change7d)
	assert.Equal(t, Placeholder, r.Change30d)
	assert.False(t, r.HasAlert())
	assert.True(t, r.Available())

	r = Calculate(seriesOf(0, 10, 20), 1)
	assert.Equal(t, "+100.00%", r.Change24h)
	assert.Equal(t, Placeholder, r.Change7d)
	assert.True(t, r.HasAlert())
}

func TestCalculate_InvalidThresholdNeverAlerts(t *testing.T) {
	s := seriesOf(100, 200)
	for _, threshold := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.False(t, Calculate(s, threshold).HasAlert(), "threshold %v", threshold)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	s := seriesOf(42261.04, 44179.92, 44946.64, 42848.17, 44162.69, 44172.63, 43997.58, 46656.28)
	first := Calculate(s, 2)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Calculate(s, 2))
	}
	assert.Equal(t, "$46,656.28", first.LatestPrice)
}

func TestFormatPrice(t *testing.T) {
	tests := map[string]string{
		"0":          "$0.00",
		"0.004":      "$0.00",
		"1.005":      "$1.01",
		"999.999":    "$1,000.00",
		"1234.56":    "$1,234.56",
		"67491.4123": "$67,491.41",
		"1234567.8":  "$1,234,567.80",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPrice(decimal.RequireFromString(in)), "input %s", in)
	}
}

func TestFormatChange(t *testing.T) {
	tests := map[string]string{
		"6":       "+6.00%",
		"-20":     "-20.00%",
		"0":       "0.00%",
		"0.004":   "0.00%",
		"-0.004":  "0.00%",
		"0.005":   "+0.01%",
		"-12.345": "-12.35%",
		"150":     "+150.00%",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatChange(decimal.RequireFromString(in)), "input %s", in)
	}
}

func TestValidThreshold(t *testing.T) {
	assert.True(t, ValidThreshold(0.5))
	assert.True(t, ValidThreshold(20))
	assert.False(t, ValidThreshold(0))
	assert.False(t, ValidThreshold(-3))
	assert.False(t, ValidThreshold(math.NaN()))
	assert.False(t, ValidThreshold(math.Inf(1)))
}
