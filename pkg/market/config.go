package market

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"findash-api/pkg/confkit"
)

// Config describes the history providers and which one serves each asset kind.
type Config struct {
	Kinds     map[string]string          `yaml:"kinds"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents configuration for a single history provider.
type ProviderConfig struct {
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	// Currency is the quote currency (crypto providers).
	Currency string `yaml:"currency"`
	// OutputSize selects compact|full history (equity providers).
	OutputSize string `yaml:"output_size"`
	// RatePerMinute caps outbound calls; zero uses the provider default.
	RatePerMinute int `yaml:"rate_per_minute"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// ProviderBuilder constructs a HistoryFetcher from configuration.
type ProviderBuilder func(name string, cfg *ProviderConfig) (HistoryFetcher, error)

var (
	providerRegistry   = make(map[string]ProviderBuilder)
	providerRegistryMu sync.RWMutex
)

// RegisterProvider registers a history provider constructor under typeName.
func RegisterProvider(typeName string, builder ProviderBuilder) {
	providerRegistryMu.Lock()
	defer providerRegistryMu.Unlock()
	providerRegistry[strings.ToLower(strings.TrimSpace(typeName))] = builder
}

func lookupProviderBuilder(typeName string) (ProviderBuilder, bool) {
	providerRegistryMu.RLock()
	defer providerRegistryMu.RUnlock()
	builder, ok := providerRegistry[strings.ToLower(strings.TrimSpace(typeName))]
	return builder, ok
}

// DefaultConfig is used when no market section is configured: CoinGecko for crypto,
// Alpha Vantage for equities, both on their public endpoints.
func DefaultConfig() *Config {
	return &Config{
		Kinds: map[string]string{
			"crypto": "coingecko",
			"equity": "alphavantage",
		},
		Providers: map[string]*ProviderConfig{
			"coingecko":    {Type: "coingecko", Currency: "usd"},
			"alphavantage": {Type: "alphavantage", OutputSize: "full"},
		},
	}
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read market config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal market config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	if c.Kinds == nil {
		c.Kinds = make(map[string]string)
	}
	for name, provider := range c.Providers {
		if provider == nil {
			provider = &ProviderConfig{}
			c.Providers[name] = provider
		}
		provider.expandEnv()
		if err := provider.parseDurations(name); err != nil {
			return err
		}
	}
	for kind, provider := range c.Kinds {
		c.Kinds[kind] = strings.TrimSpace(provider)
	}
	return nil
}

func (p *ProviderConfig) expandEnv() {
	p.Type = strings.TrimSpace(os.ExpandEnv(p.Type))
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.APIKey = strings.TrimSpace(os.ExpandEnv(p.APIKey))
	p.Currency = strings.TrimSpace(os.ExpandEnv(p.Currency))
	p.OutputSize = strings.TrimSpace(os.ExpandEnv(p.OutputSize))
	p.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.TimeoutRaw))
}

func (p *ProviderConfig) parseDurations(name string) error {
	if p.TimeoutRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(p.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("market provider %s: invalid timeout %q: %w", name, p.TimeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("market provider %s: timeout must be positive, got %s", name, d)
	}
	p.Timeout = d
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("market config: providers cannot be empty")
	}
	for name, provider := range c.Providers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("market config: provider name cannot be empty")
		}
		if err := provider.validate(name); err != nil {
			return err
		}
	}
	for kind, name := range c.Kinds {
		if _, ok := c.Providers[name]; !ok {
			return fmt.Errorf("market config: kind %s uses undefined provider %q", kind, name)
		}
	}
	return nil
}

func (p *ProviderConfig) validate(name string) error {
	if p == nil {
		return fmt.Errorf("market config: provider %s is nil", name)
	}
	if strings.TrimSpace(p.Type) == "" {
		return fmt.Errorf("market config: provider %s must specify type", name)
	}
	if _, ok := lookupProviderBuilder(p.Type); !ok {
		return fmt.Errorf("market config: provider %s has unsupported type %q", name, p.Type)
	}
	if p.RatePerMinute < 0 {
		return fmt.Errorf("market config: provider %s rate_per_minute cannot be negative", name)
	}
	return nil
}

// ApplyCredential sets apiKey on every provider of providerType that has no key
// configured in the file itself.
func (c *Config) ApplyCredential(providerType, apiKey string) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return
	}
	for _, p := range c.Providers {
		if p != nil && strings.EqualFold(p.Type, providerType) && p.APIKey == "" {
			p.APIKey = apiKey
		}
	}
}

// ProviderNames returns the configured provider names in sorted order.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildProviders instantiates history fetchers according to configuration.
func (c *Config) BuildProviders() (map[string]HistoryFetcher, error) {
	result := make(map[string]HistoryFetcher, len(c.Providers))
	for name, providerCfg := range c.Providers {
		builder, ok := lookupProviderBuilder(providerCfg.Type)
		if !ok {
			return nil, fmt.Errorf("market provider %s: unsupported type %q", name, providerCfg.Type)
		}
		provider, err := builder(name, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("market provider %s: %w", name, err)
		}
		result[name] = provider
	}
	return result, nil
}

// BuildKindFetchers resolves the fetcher serving each asset kind.
func (c *Config) BuildKindFetchers() (map[string]HistoryFetcher, error) {
	providers, err := c.BuildProviders()
	if err != nil {
		return nil, err
	}
	out := make(map[string]HistoryFetcher, len(c.Kinds))
	for kind, name := range c.Kinds {
		f, ok := providers[name]
		if !ok {
			return nil, fmt.Errorf("market config: kind %s uses undefined provider %q", kind, name)
		}
		out[kind] = f
	}
	return out, nil
}
