package market_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash-api/pkg/market"
)

type stubFetcher struct {
	series market.Series
	err    error
	panic  bool
}

func (s stubFetcher) Name() string { return "stub" }

func (s stubFetcher) FetchHistory(context.Context, string, int) (market.Series, error) {
	if s.panic {
		panic("vendor exploded")
	}
	return s.series, s.err
}

func TestSafeFetch(t *testing.T) {
	good := market.NewSeries([]market.PricePoint{point("2024-03-01T00:00:00Z", "1")})
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fetcher market.HistoryFetcher
		wantErr error
		errMsg  string
		wantLen int
	}{
		{name: "success", fetcher: stubFetcher{series: good}, wantLen: 1},
		{name: "error", fetcher: stubFetcher{series: good, err: boom}, wantErr: boom},
		{name: "empty", fetcher: stubFetcher{}, wantErr: market.ErrEmptyHistory},
		{name: "panic", fetcher: stubFetcher{panic: true}, errMsg: "panicked"},
		{name: "nil fetcher", fetcher: nil, errMsg: "no history fetcher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := market.SafeFetch(context.Background(), tt.fetcher, "asset", 30)
			assert.Equal(t, tt.wantLen, series.Len())
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
