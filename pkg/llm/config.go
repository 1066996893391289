package llm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"findash-api/pkg/confkit"
)

const (
	defaultBaseURL     = "https://api.groq.com/openai/v1"
	defaultModel       = "llama3-8b-8192"
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 300
	defaultLogLevel    = "info"

	envAPIKey       = "GROQ_API_KEY"
	envBaseURL      = "GROQ_BASE_URL"
	envDefaultModel = "GROQ_MODEL"
	envTimeout      = "GROQ_TIMEOUT"
)

// ErrMissingAPIKey is returned by NewClient when no credential is configured.
var ErrMissingAPIKey = errors.New("llm: api key is not configured")

// Config holds runtime settings for the chat-completions client.
type Config struct {
	BaseURL      string                 `yaml:"base_url"`
	APIKey       string                 `yaml:"api_key"`
	DefaultModel string                 `yaml:"default_model"`
	Timeout      time.Duration          `yaml:"-"`
	LogLevel     string                 `yaml:"log_level"`
	Models       map[string]ModelConfig `yaml:"models"`
	// PromptTemplate optionally points at a text/template file replacing the
	// built-in narrative prompt. Relative paths resolve against the config file.
	PromptTemplate string `yaml:"prompt_template"`

	timeoutRaw string
}

// ModelConfig holds sampling defaults for a model alias.
type ModelConfig struct {
	ModelName   string   `yaml:"model_name"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty"`
}

// DefaultConfig returns the built-in Groq settings with environment overrides applied.
func DefaultConfig() *Config {
	confkit.LoadDotenvOnce()
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	// Defaults are always parseable; a malformed GROQ_TIMEOUT falls back.
	if err := cfg.parseTimeout(); err != nil {
		cfg.Timeout = defaultTimeout
	}
	return cfg
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open llm config: %w", err)
	}
	defer file.Close()
	cfg, err := LoadConfigFromReader(file)
	if err != nil {
		return nil, err
	}
	if cfg.PromptTemplate != "" {
		cfg.PromptTemplate = confkit.ResolvePath(confkit.BaseDir(path), cfg.PromptTemplate)
	}
	return cfg, nil
}

// LoadConfigFromReader constructs a Config from a reader. A missing api key is not an
// error here; the dashboard runs without narratives in that case.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var raw struct {
		BaseURL        string                 `yaml:"base_url"`
		APIKey         string                 `yaml:"api_key"`
		DefaultModel   string                 `yaml:"default_model"`
		Timeout        string                 `yaml:"timeout"`
		LogLevel       string                 `yaml:"log_level"`
		Models         map[string]ModelConfig `yaml:"models"`
		PromptTemplate string                 `yaml:"prompt_template"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read llm config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal llm config: %w", err)
	}

	cfg := &Config{
		BaseURL:        raw.BaseURL,
		APIKey:         raw.APIKey,
		DefaultModel:   raw.DefaultModel,
		LogLevel:       raw.LogLevel,
		Models:         raw.Models,
		PromptTemplate: strings.TrimSpace(os.ExpandEnv(raw.PromptTemplate)),
		timeoutRaw:     raw.Timeout,
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.parseTimeout(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural settings. Credentials are checked by HasCredentials.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("llm config: base_url is required")
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		return errors.New("llm config: default_model is required")
	}
	if c.Timeout <= 0 {
		return errors.New("llm config: timeout must be positive")
	}
	for alias, m := range c.Models {
		if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
			return fmt.Errorf("llm config: model %s temperature must be within [0, 2]", alias)
		}
		if m.MaxTokens != nil && *m.MaxTokens <= 0 {
			return fmt.Errorf("llm config: model %s max_tokens must be positive", alias)
		}
	}
	return nil
}

// HasCredentials reports whether an api key is configured.
func (c *Config) HasCredentials() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Model returns the configuration for the given model alias.
func (c *Config) Model(name string) (ModelConfig, bool) {
	if c.Models == nil {
		return ModelConfig{}, false
	}
	modelCfg, ok := c.Models[name]
	return modelCfg, ok
}

// ResolveModel returns the provider model id and sampling settings for alias,
// falling back to the package defaults for anything unset.
func (c *Config) ResolveModel(alias string) (id string, temperature float64, maxTokens int) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		alias = c.DefaultModel
	}
	id, temperature, maxTokens = alias, defaultTemperature, defaultMaxTokens

	m, ok := c.Model(alias)
	if !ok {
		return id, temperature, maxTokens
	}
	if name := strings.TrimSpace(m.ModelName); name != "" {
		id = name
	}
	if m.Temperature != nil {
		temperature = *m.Temperature
	}
	if m.MaxTokens != nil {
		maxTokens = *m.MaxTokens
	}
	return id, temperature, maxTokens
}

// Clone returns a copy of the configuration safe to mutate.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Models != nil {
		cp.Models = make(map[string]ModelConfig, len(c.Models))
		for k, v := range c.Models {
			cp.Models[k] = v
		}
	}
	return &cp
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		c.DefaultModel = defaultModel
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
}

func (c *Config) applyEnvOverrides() {
	c.BaseURL = expandAndOverride(c.BaseURL, envBaseURL)
	c.APIKey = expandAndOverride(c.APIKey, envAPIKey)
	c.DefaultModel = expandAndOverride(c.DefaultModel, envDefaultModel)

	if raw := os.Getenv(envTimeout); raw != "" {
		c.timeoutRaw = raw
	} else {
		c.timeoutRaw = os.ExpandEnv(c.timeoutRaw)
	}
}

func (c *Config) parseTimeout() error {
	if strings.TrimSpace(c.timeoutRaw) == "" {
		c.Timeout = defaultTimeout
		return nil
	}

	d, err := time.ParseDuration(c.timeoutRaw)
	if err != nil {
		return fmt.Errorf("llm config: invalid timeout %q: %w", c.timeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("llm config: timeout must be positive, got %s", d)
	}
	c.Timeout = d
	return nil
}

func expandAndOverride(current, envKey string) string {
	current = strings.TrimSpace(os.ExpandEnv(current))
	if envVal := strings.TrimSpace(os.Getenv(envKey)); envVal != "" {
		return envVal
	}
	return current
}
