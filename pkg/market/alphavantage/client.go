package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/time/rate"

	"findash-api/pkg/market"
)

const (
	defaultBaseURL       = "https://www.alphavantage.co"
	defaultOutputSize    = "full"
	defaultRatePerMinute = 5
	defaultHTTPTimeout   = 20 * time.Second

	closeField = "4. close"
)

// ErrMissingAPIKey is returned before any request is made when no key is configured.
var ErrMissingAPIKey = errors.New("alphavantage: api key is not configured")

// Client fetches daily equity closes from Alpha Vantage.
type Client struct {
	baseURL    string
	apiKey     string
	outputSize string
	httpClient *http.Client
	limiter    *rate.Limiter
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

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithOutputSize selects compact (last 100 days) or full history.
func WithOutputSize(size string) Option {
	return func(c *Client) {
		switch strings.ToLower(strings.TrimSpace(size)) {
		case "compact":
			c.outputSize = "compact"
		case "full":
			c.outputSize = "full"
		}
	}
}

// WithRatePerMinute caps outbound calls. n <= 0 disables the limit.
func WithRatePerMinute(n int) Option {
	return func(c *Client) {
		c.limiter = newLimiter(n)
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// NewClient constructs an Alpha Vantage client. The free tier allows five calls a
// minute, which is the default limit.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		outputSize: defaultOutputSize,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    newLimiter(defaultRatePerMinute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements market.HistoryFetcher.
func (c *Client) Name() string { return "alphavantage" }

type dailyResponse struct {
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
}

// FetchHistory returns the complete daily close history for ticker. The window is
// ignored; callers always receive everything the provider has.
func (c *Client) FetchHistory(ctx context.Context, ticker string, _ int) (market.Series, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return market.Series{}, errors.New("alphavantage: empty ticker")
	}
	if c.apiKey == "" {
		return market.Series{}, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return market.Series{}, fmt.Errorf("alphavantage: rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", ticker)
	params.Set("outputsize", c.outputSize)
	params.Set("apikey", c.apiKey)
	endpoint := c.baseURL + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return market.Series{}, fmt.Errorf("alphavantage: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The url in a transport error carries the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return market.Series{}, fmt.Errorf("alphavantage: fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return market.Series{}, fmt.Errorf("alphavantage: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return market.Series{}, fmt.Errorf("alphavantage: http status %d", resp.StatusCode)
	}

	var payload dailyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return market.Series{}, fmt.Errorf("alphavantage: decode response: %w", err)
	}
	// Quota and validation failures come back as 200 with a message field instead
	// of the series.
	switch {
	case payload.ErrorMessage != "":
		return market.Series{}, fmt.Errorf("alphavantage: %s: %s", ticker, payload.ErrorMessage)
	case payload.Note != "":
		return market.Series{}, fmt.Errorf("alphavantage: throttled: %s", payload.Note)
	case payload.Information != "":
		return market.Series{}, fmt.Errorf("alphavantage: %s", payload.Information)
	}

	series, err := toSeries(payload.Series)
	if err != nil {
		return market.Series{}, err
	}
	logx.WithContext(ctx).Debugf("alphavantage: %s points=%d in %s", ticker, series.Len(), time.Since(start))
	return series, nil
}

func toSeries(days map[string]map[string]string) (market.Series, error) {
	if len(days) == 0 {
		return market.Series{}, market.ErrEmptyHistory
	}
	points := make([]market.PricePoint, 0, len(days))
	for day, fields := range days {
		date, err := time.Parse(market.DateLayout, day)
		if err != nil {
			return market.Series{}, fmt.Errorf("alphavantage: invalid date %q: %w", day, err)
		}
		raw, ok := fields[closeField]
		if !ok {
			return market.Series{}, fmt.Errorf("alphavantage: %s has no %q field", day, closeField)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return market.Series{}, fmt.Errorf("alphavantage: %s close %q: %w", day, raw, err)
		}
		if price.IsNegative() {
			return market.Series{}, fmt.Errorf("alphavantage: %s close is negative", day)
		}
		points = append(points, market.PricePoint{Date: date, Price: price})
	}
	return market.NewSeries(points), nil
}

func init() {
	market.RegisterProvider("alphavantage", func(name string, cfg *market.ProviderConfig) (market.HistoryFetcher, error) {
		opts := []Option{
			WithBaseURL(cfg.BaseURL),
			WithAPIKey(cfg.APIKey),
			WithOutputSize(cfg.OutputSize),
		}
		if cfg.RatePerMinute > 0 {
			opts = append(opts, WithRatePerMinute(cfg.RatePerMinute))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewClient(opts...), nil
	})
}
