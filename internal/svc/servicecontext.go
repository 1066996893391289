package svc

import (
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"findash-api/internal/cache"
	"findash-api/internal/config"
	"findash-api/pkg/catalog"
	llmpkg "findash-api/pkg/llm"
	marketpkg "findash-api/pkg/market"
	_ "findash-api/pkg/market/alphavantage"
	_ "findash-api/pkg/market/coingecko"
	"findash-api/pkg/narrative"
)

type ServiceContext struct {
	Config config.Config

	Catalog  *catalog.Catalog
	Fetchers map[catalog.Kind]marketpkg.HistoryFetcher
	Cache    cache.Store
	TTL      cache.TTLSet
	Narrator *narrative.Generator
}

func NewServiceContext(c config.Config) *ServiceContext {
	fetchers, err := buildFetchers(c)
	logx.Must(err)
	narrator, err := buildNarrator(c)
	logx.Must(err)

	return &ServiceContext{
		Config:   c,
		Catalog:  c.CatalogOrDefault(),
		Fetchers: fetchers,
		Cache:    buildStore(c),
		TTL:      cache.NewTTLSet(c.TTL),
		Narrator: narrator,
	}
}

func buildStore(c config.Config) cache.Store {
	if c.UseRedis() {
		logx.Infof("cache: using redis at %s", c.Redis.Host)
		return cache.MustNewRedisStore(c.Redis)
	}
	logx.Info("cache: using in-process memory store")
	return cache.NewMemoryStore(nil)
}

func buildFetchers(c config.Config) (map[catalog.Kind]marketpkg.HistoryFetcher, error) {
	mcfg := c.MarketOrDefault()
	mcfg.ApplyCredential("alphavantage", c.Credentials.EquityAPIKey)

	byKind, err := mcfg.BuildKindFetchers()
	if err != nil {
		return nil, err
	}

	out := make(map[catalog.Kind]marketpkg.HistoryFetcher, len(byKind))
	for raw, f := range byKind {
		kind, err := catalog.ParseKind(raw)
		if err != nil {
			return nil, fmt.Errorf("market config: %w", err)
		}
		out[kind] = f
	}
	for _, kind := range catalog.Kinds {
		if _, ok := out[kind]; !ok {
			logx.Errorf("market: no history provider configured for %s; its charts will be unavailable", kind)
		}
	}
	if p, ok := mcfg.Providers[mcfg.Kinds[string(catalog.KindEquity)]]; ok && p.Type == "alphavantage" && p.APIKey == "" {
		logx.Errorf("market: ALPHA_VANTAGE_API_KEY is not set; equity history will be unavailable")
	}
	return out, nil
}

func buildNarrator(c config.Config) (*narrative.Generator, error) {
	lcfg := c.LLMOrDefault().Clone()
	if !lcfg.HasCredentials() {
		lcfg.APIKey = c.Credentials.NarrativeAPIKey
	}

	var opts []narrative.Option
	if lcfg.PromptTemplate != "" {
		tmpl, err := llmpkg.NewPromptTemplate(lcfg.PromptTemplate, nil)
		if err != nil {
			return nil, err
		}
		logx.Infof("narrative: prompt %s (sha256 %s)", lcfg.PromptTemplate, tmpl.Digest())
		opts = append(opts, narrative.WithPromptTemplate(tmpl))
	}

	var chat llmpkg.LLMClient
	client, err := llmpkg.NewClient(lcfg)
	switch {
	case errors.Is(err, llmpkg.ErrMissingAPIKey):
		logx.Errorf("narrative: %v; analyses are disabled", narrative.ErrNoClient)
	case err != nil:
		return nil, err
	default:
		chat = client
	}
	gen, err := narrative.NewGenerator(chat, opts...)
	if err != nil {
		return nil, err
	}
	if gen.Enabled() {
		logx.Infof("narrative: using model %s", gen.Model())
	}
	return gen, nil
}

// Close releases the resources held by the service dependencies.
func (s *ServiceContext) Close() error {
	return s.Narrator.Close()
}
