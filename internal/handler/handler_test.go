package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash-api/internal/cache"
	"findash-api/internal/config"
	"findash-api/internal/svc"
	"findash-api/internal/types"
	"findash-api/pkg/catalog"
	"findash-api/pkg/market"
	"findash-api/pkg/narrative"
)

type fixedFetcher struct{ series market.Series }

func (f fixedFetcher) Name() string { return "fixed" }

func (f fixedFetcher) FetchHistory(context.Context, string, int) (market.Series, error) {
	return f.series, nil
}

func testServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := market.NewSeries([]market.PricePoint{
		{Date: day, Price: decimal.NewFromInt(2000)},
		{Date: day.AddDate(0, 0, 1), Price: decimal.NewFromInt(2050)},
	})
	narrator, err := narrative.NewGenerator(nil)
	require.NoError(t, err)
	return &svc.ServiceContext{
		Catalog:  catalog.Default(),
		Fetchers: map[catalog.Kind]market.HistoryFetcher{catalog.KindCrypto: fixedFetcher{series: series}},
		Cache:    cache.NewMemoryStore(nil),
		TTL:      cache.NewTTLSet(config.CacheTTL{}),
		Narrator: narrator,
	}
}

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAssetsHandler(t *testing.T) {
	rec := serve(AssetsHandler(testServiceContext(t)), "/api/assets?kind=crypto")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.AssetsResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BTC", resp.DefaultSymbol)
	assert.True(t, resp.UsesWindow)
	assert.Len(t, resp.Assets, 8)
}

func TestAssetsHandlerDefaultsToCrypto(t *testing.T) {
	rec := serve(AssetsHandler(testServiceContext(t)), "/api/assets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"crypto"`)
}

func TestAssetsHandlerUnknownKind(t *testing.T) {
	rec := serve(AssetsHandler(testServiceContext(t)), "/api/assets?kind=bond")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandler(t *testing.T) {
	rec := serve(DashboardHandler(testServiceContext(t)), "/api/dashboard?kind=crypto&symbol=ETH&days=60&threshold=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.DashboardResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ETH", resp.Symbol)
	assert.Equal(t, 60, resp.Days)
	require.NotNil(t, resp.Metrics)
	assert.Equal(t, "$2,050.00", resp.Metrics.LatestPrice)
	assert.Equal(t, "+2.50%", resp.Metrics.Change24h)
	assert.Equal(t, "Alert: Increase of +2.50% in the last 24 hours!", resp.Alert)
	require.NotNil(t, resp.Chart)
	assert.Len(t, resp.Chart.Data, 1)
	assert.Equal(t, narrative.MissingKeyMessage, resp.Narrative)
}

func TestDashboardHandlerDefaults(t *testing.T) {
	rec := serve(DashboardHandler(testServiceContext(t)), "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.DashboardResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BTC", resp.Symbol)
	assert.Equal(t, 180, resp.Days)
	assert.Equal(t, 5.0, resp.Threshold)
	assert.Empty(t, resp.Alert)
}

func TestDashboardHandlerUnavailable(t *testing.T) {
	rec := serve(DashboardHandler(testServiceContext(t)), "/api/dashboard?kind=equity&symbol=AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.DashboardResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Unavailable)
	assert.Contains(t, resp.Message, "Could not fetch data for AAPL.")
	assert.Nil(t, resp.Chart)
}

func TestDashboardHandlerEquityIgnoresDays(t *testing.T) {
	rec := serve(DashboardHandler(testServiceContext(t)), "/api/dashboard?kind=equity&symbol=MSFT&days=7")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.DashboardResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MSFT", resp.Symbol)
	assert.Equal(t, 0, resp.Days)
}

func TestDashboardHandlerRejectsOutOfRange(t *testing.T) {
	for _, target := range []string{
		"/api/dashboard?days=7",
		"/api/dashboard?days=400",
		"/api/dashboard?threshold=0.1",
		"/api/dashboard?threshold=25",
		"/api/dashboard?symbol=NOPE",
	} {
		rec := serve(DashboardHandler(testServiceContext(t)), target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestIndexHandler(t *testing.T) {
	rec := serve(IndexHandler(nil), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Financial Dashboard</title>")
	assert.Contains(t, body, "About this application and data sources")
	assert.Contains(t, body, `<option value="crypto" selected>Cryptocurrencies</option>`)
	assert.Contains(t, body, `<option value="equity">Stocks (Stock Exchange)</option>`)
	assert.Contains(t, body, `min="30" max="365" value="180"`)
	assert.Contains(t, body, "plotly")
}
