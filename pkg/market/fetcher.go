package market

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyHistory indicates the provider answered without any usable prices.
var ErrEmptyHistory = errors.New("market: provider returned no prices")

// HistoryFetcher retrieves a daily price history for a provider-specific asset id.
// window is the number of trailing days requested; implementations that always
// return the full history ignore it.
type HistoryFetcher interface {
	Name() string
	FetchHistory(ctx context.Context, assetID string, window int) (Series, error)
}

// SafeFetch is the boundary between the dashboard and a vendor fetcher. Whatever the
// fetcher does (error, malformed payload, panic) the caller receives a valid Series,
// empty on failure, plus the reason for diagnostics.
func SafeFetch(ctx context.Context, f HistoryFetcher, assetID string, window int) (series Series, err error) {
	if f == nil {
		return Series{}, errors.New("market: no history fetcher configured")
	}
	defer func() {
		if r := recover(); r != nil {
			series = Series{}
			err = fmt.Errorf("market: %s fetcher panicked for %s: %v", f.Name(), assetID, r)
		}
	}()

	s, fetchErr := f.FetchHistory(ctx, assetID, window)
	if fetchErr != nil {
		return Series{}, fmt.Errorf("market: %s history for %s: %w", f.Name(), assetID, fetchErr)
	}
	if s.Empty() {
		return Series{}, fmt.Errorf("market: %s history for %s: %w", f.Name(), assetID, ErrEmptyHistory)
	}
	return s, nil
}
