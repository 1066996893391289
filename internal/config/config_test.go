package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash-api/pkg/catalog"
	"findash-api/pkg/confkit"
	_ "findash-api/pkg/market/alphavantage"
	_ "findash-api/pkg/market/coingecko"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMinimal(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	dir := t.TempDir()
	path := writeFile(t, dir, "findash.yaml", `
Name: findash-api
Host: 127.0.0.1
Port: 8888
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 3600, cfg.TTL.Catalog)
	assert.Equal(t, 300, cfg.TTL.History)
	assert.False(t, cfg.UseRedis())
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, path, cfg.MainPath())

	assert.Equal(t, "BTC", cfg.CatalogOrDefault().DefaultSymbol(catalog.KindCrypto))
	assert.Equal(t, "coingecko", cfg.MarketOrDefault().Kinds["crypto"])
	assert.Equal(t, "llama3-8b-8192", cfg.LLMOrDefault().DefaultModel)
}

func TestLoadSectionsAndCredentials(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-key")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("FINDASH_TEST_PORT", "9090")
	dir := t.TempDir()
	writeFile(t, dir, "catalog.yaml", "crypto:\n  - {symbol: BTC, id: bitcoin}\nequity:\n  - {symbol: IBM, name: IBM}\n")
	writeFile(t, dir, "market.yaml", `
kinds:
  crypto: coingecko
  equity: alphavantage
providers:
  coingecko:
    type: coingecko
  alphavantage:
    type: alphavantage
`)
	writeFile(t, dir, "llm.yaml", "default_model: llama3-70b-8192\ntimeout: 5s\n")
	path := writeFile(t, dir, "findash.yaml", `
Name: findash-api
Host: 0.0.0.0
Port: ${FINDASH_TEST_PORT}
Env: TEST
TTL:
  Catalog: 60
  History: 30
Catalog:
  File: catalog.yaml
Market:
  File: market.yaml
LLM:
  File: llm.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.IsTestEnv())
	assert.Equal(t, 60, cfg.TTL.Catalog)
	assert.Equal(t, "av-key", cfg.Credentials.EquityAPIKey)
	assert.Equal(t, "groq-key", cfg.Credentials.NarrativeAPIKey)

	require.NotNil(t, cfg.Catalog.Value)
	assert.Equal(t, filepath.Join(dir, "catalog.yaml"), cfg.Catalog.File)
	assert.Equal(t, "IBM", cfg.CatalogOrDefault().DefaultSymbol(catalog.KindEquity))

	require.NotNil(t, cfg.Market.Value)
	assert.Len(t, cfg.Market.Value.Providers, 2)

	require.NotNil(t, cfg.LLM.Value)
	assert.Equal(t, "llama3-70b-8192", cfg.LLMOrDefault().DefaultModel)
	assert.Equal(t, "groq-key", cfg.LLM.Value.APIKey, "GROQ_API_KEY overrides the llm file")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		extra string
		msg   string
	}{
		{name: "bad env", extra: "Env: staging\n", msg: "env must be one of"},
		{name: "negative ttl", extra: "TTL:\n  Catalog: -1\n  History: 10\n", msg: "ttl.catalog"},
		{name: "missing section file", extra: "Market:\n  File: nope.yaml\n", msg: "load market config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "findash.yaml", "Name: findash-api\nHost: 127.0.0.1\nPort: 8888\n"+tt.extra)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateRedis(t *testing.T) {
	cfg := Config{}
	cfg.Redis.Host = "localhost:6379"
	assert.Error(t, cfg.Validate(), "redis type is required once a host is set")

	cfg.Redis.Type = "node"
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.UseRedis())
	assert.Equal(t, defaultCatalogTTL, cfg.TTL.Catalog)
	assert.Equal(t, "dev", cfg.Env)
}

func TestLoadShippedConfig(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "av-env")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("COINGECKO_API_KEY", "")

	cfg, err := Load(confkit.MustProjectPath("etc/findash.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8888, cfg.Port)
	assert.Equal(t, 300, cfg.TTL.History)
	assert.Equal(t, "av-env", cfg.Credentials.EquityAPIKey, "credentials come from the environment without a Credentials key")
	assert.Empty(t, cfg.Credentials.NarrativeAPIKey)

	require.NotNil(t, cfg.Catalog.Value)
	assert.Len(t, cfg.Catalog.Value.Entries(catalog.KindEquity), 10)
	require.NotNil(t, cfg.Market.Value)
	assert.Equal(t, 5, cfg.Market.Value.Providers["alphavantage"].RatePerMinute)
	require.NotNil(t, cfg.LLM.Value)
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Value.DefaultModel)
	assert.False(t, cfg.LLM.Value.HasCredentials())
}
