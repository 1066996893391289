package market_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"findash-api/pkg/market"
)

func point(ts string, price string) market.PricePoint {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return market.PricePoint{Date: t, Price: decimal.RequireFromString(price)}
}

func TestNewSeriesNormalises(t *testing.T) {
	s := market.NewSeries([]market.PricePoint{
		point("2024-03-03T00:00:00Z", "3"),
		point("2024-03-01T00:00:00Z", "1"),
		point("2024-03-02T00:00:00Z", "2"),
		point("2024-03-03T15:04:05Z", "3.5"),
	})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, "2024-03-01", s.At(0).Date.Format(market.DateLayout))
	assert.Equal(t, "2024-03-03", s.At(-1).Date.Format(market.DateLayout))
	assert.True(t, s.At(-1).Price.Equal(decimal.RequireFromString("3.5")), "later same-day observation wins")
	for _, p := range s.Points() {
		assert.Equal(t, time.UTC, p.Date.Location())
		assert.Zero(t, p.Date.Hour())
	}
}

func TestNewSeriesUsesUTCCalendarDay(t *testing.T) {
	// 23:30 in UTC-3 is the next day in UTC.
	s := market.NewSeries([]market.PricePoint{point("2024-03-01T23:30:00-03:00", "10")})
	assert.Equal(t, "2024-03-02", s.At(0).Date.Format(market.DateLayout))
}

func TestEmptySeries(t *testing.T) {
	s := market.NewSeries(nil)
	assert.True(t, s.Empty())
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Points())
}

func TestPointsIsACopy(t *testing.T) {
	s := market.NewSeries([]market.PricePoint{point("2024-03-01T00:00:00Z", "1")})
	pts := s.Points()
	pts[0].Price = decimal.NewFromInt(99)
	assert.True(t, s.At(0).Price.Equal(decimal.NewFromInt(1)))
}

func TestSeriesMsgpackRoundTrip(t *testing.T) {
	in := market.NewSeries([]market.PricePoint{
		point("2024-03-01T00:00:00Z", "42261.04"),
		point("2024-03-02T00:00:00Z", "0.00001234"),
	})
	raw, err := msgpack.Marshal(in)
	require.NoError(t, err)

	var out market.Series
	require.NoError(t, msgpack.Unmarshal(raw, &out))
	assert.Equal(t, in.Len(), out.Len())
	for i := 0; i < in.Len(); i++ {
		assert.True(t, in.At(i).Date.Equal(out.At(i).Date))
		assert.True(t, in.At(i).Price.Equal(out.At(i).Price), "decimal precision is preserved")
	}

	raw, err = msgpack.Marshal(market.Series{})
	require.NoError(t, err)
	var empty market.Series
	require.NoError(t, msgpack.Unmarshal(raw, &empty))
	assert.True(t, empty.Empty())
}
