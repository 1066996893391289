package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/rest"

	catalogpkg "findash-api/pkg/catalog"
	"findash-api/pkg/confkit"
	llmpkg "findash-api/pkg/llm"
	marketpkg "findash-api/pkg/market"
)

const (
	defaultCatalogTTL = 3600
	defaultHistoryTTL = 300
)

// CacheTTL holds expiry windows in seconds. Zero selects the default.
type CacheTTL struct {
	Catalog int `json:",default=3600"`
	History int `json:",default=300"`
}

// Credentials are read from the environment (or .env) and never from YAML files
// checked into the repository.
type Credentials struct {
	EquityAPIKey    string `json:",optional,env=ALPHA_VANTAGE_API_KEY"`
	NarrativeAPIKey string `json:",optional,env=GROQ_API_KEY"`
}

type Config struct {
	rest.RestConf
	// Env indicates the running environment: test | dev | prod
	Env         string          `json:",default=dev"`
	Redis       redis.RedisConf `json:",optional"`
	TTL         CacheTTL        `json:",optional"`
	// Credentials is required so its env tags are read even when the key is absent.
	Credentials Credentials

	Catalog confkit.Section[catalogpkg.Catalog] `json:",optional"`
	Market  confkit.Section[marketpkg.Config]   `json:",optional"`
	LLM     confkit.Section[llmpkg.Config]      `json:",optional"`

	mainPath string
	baseDir  string
}

func (c *Config) IsTestEnv() bool {
	return c.Env == "test"
}

// UseRedis reports whether a shared Redis cache is configured. Without one the
// service caches in process memory.
func (c *Config) UseRedis() bool {
	return strings.TrimSpace(c.Redis.Host) != ""
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}

	var cfg Config
	if err := conf.Load(absPath, &cfg, conf.UseEnv()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", absPath, err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = filepath.Dir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	switch env {
	case "":
		c.Env = "dev"
	case "test", "dev", "prod":
		c.Env = env
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	if c.TTL.Catalog == 0 {
		c.TTL.Catalog = defaultCatalogTTL
	}
	if c.TTL.History == 0 {
		c.TTL.History = defaultHistoryTTL
	}
	if c.TTL.Catalog < 0 {
		return errors.New("config: ttl.catalog must be positive")
	}
	if c.TTL.History < 0 {
		return errors.New("config: ttl.history must be positive")
	}
	if c.UseRedis() {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("config: redis: %w", err)
		}
	}
	return nil
}

func (c *Config) hydrateSections() error {
	base := c.baseDir

	if err := c.Catalog.Hydrate(base, catalogpkg.LoadFile); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := c.Market.Hydrate(base, marketpkg.LoadConfig); err != nil {
		return fmt.Errorf("load market config: %w", err)
	}
	if err := c.LLM.Hydrate(base, llmpkg.LoadConfig); err != nil {
		return fmt.Errorf("load llm config: %w", err)
	}
	return nil
}

// CatalogOrDefault returns the configured catalog or the built-in one.
func (c *Config) CatalogOrDefault() *catalogpkg.Catalog {
	if c.Catalog.Value != nil {
		return c.Catalog.Value
	}
	return catalogpkg.Default()
}

// MarketOrDefault returns the configured market section or the built-in providers.
func (c *Config) MarketOrDefault() *marketpkg.Config {
	if c.Market.Value != nil {
		return c.Market.Value
	}
	return marketpkg.DefaultConfig()
}

// LLMOrDefault returns the configured llm section or the Groq defaults.
func (c *Config) LLMOrDefault() *llmpkg.Config {
	if c.LLM.Value != nil {
		return c.LLM.Value
	}
	return llmpkg.DefaultConfig()
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
