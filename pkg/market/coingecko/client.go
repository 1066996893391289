package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"findash-api/pkg/market"
)

const (
	defaultBaseURL     = "https://api.coingecko.com/api/v3"
	defaultCurrency    = "usd"
	defaultHTTPTimeout = 15 * time.Second
	demoKeyHeader      = "x-cg-demo-api-key"
)

// ErrInvalidWindow is returned for a non-positive day window.
var ErrInvalidWindow = errors.New("coingecko: window must be positive")

// Client fetches daily market charts from the CoinGecko public API.
type Client struct {
	baseURL    string
	apiKey     string
	currency   string
	httpClient *http.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the API root, e.g. for the pro endpoint or tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIKey sets the optional demo API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithCurrency overrides the quote currency (default usd).
func WithCurrency(currency string) Option {
	return func(c *Client) {
		if currency != "" {
			c.currency = strings.ToLower(currency)
		}
	}
}

// NewClient constructs a CoinGecko client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		currency:   defaultCurrency,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements market.HistoryFetcher.
func (c *Client) Name() string { return "coingecko" }

type marketChart struct {
	Prices [][]json.Number `json:"prices"`
}

// FetchHistory returns up to window trailing days of daily prices for coin id.
func (c *Client) FetchHistory(ctx context.Context, id string, window int) (market.Series, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return market.Series{}, errors.New("coingecko: empty coin id")
	}
	if window <= 0 {
		return market.Series{}, ErrInvalidWindow
	}

	params := url.Values{}
	params.Set("vs_currency", c.currency)
	params.Set("days", strconv.Itoa(window))
	params.Set("interval", "daily")
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(id), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return market.Series{}, fmt.Errorf("coingecko: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(demoKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return market.Series{}, fmt.Errorf("coingecko: fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return market.Series{}, fmt.Errorf("coingecko: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return market.Series{}, fmt.Errorf("coingecko: http status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return market.Series{}, fmt.Errorf("coingecko: decode response: %w", err)
	}
	series, err := toSeries(chart.Prices)
	if err != nil {
		return market.Series{}, err
	}

	logx.WithContext(ctx).Debugf("coingecko: %s window=%d points=%d in %s", id, window, series.Len(), time.Since(start))
	return series, nil
}

func toSeries(rows [][]json.Number) (market.Series, error) {
	if len(rows) == 0 {
		return market.Series{}, market.ErrEmptyHistory
	}
	points := make([]market.PricePoint, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return market.Series{}, fmt.Errorf("coingecko: price row %d has %d fields", i, len(row))
		}
		ms, err := row[0].Int64()
		if err != nil {
			f, ferr := row[0].Float64()
			if ferr != nil {
				return market.Series{}, fmt.Errorf("coingecko: price row %d timestamp %q: %w", i, row[0], err)
			}
			ms = int64(f)
		}
		price, err := decimal.NewFromString(row[1].String())
		if err != nil {
			return market.Series{}, fmt.Errorf("coingecko: price row %d value %q: %w", i, row[1], err)
		}
		if price.IsNegative() {
			return market.Series{}, fmt.Errorf("coingecko: price row %d is negative", i)
		}
		points = append(points, market.PricePoint{Date: time.UnixMilli(ms), Price: price})
	}
	return market.NewSeries(points), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func init() {
	market.RegisterProvider("coingecko", func(name string, cfg *market.ProviderConfig) (market.HistoryFetcher, error) {
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithAPIKey(cfg.APIKey),
			WithCurrency(cfg.Currency),
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewClient(opts...), nil
	})
}
