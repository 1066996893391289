package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"findash-api/internal/config"
	"findash-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
// Credentials are reported as configured or not, never echoed.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	cache := "memory"
	if cfg.UseRedis() {
		cache = "redis " + cfg.Redis.Host
	}

	return []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		fmt.Sprintf("Cache: %s", cache),
		fmt.Sprintf("TTL (catalog/history): %ds / %ds", cfg.TTL.Catalog, cfg.TTL.History),
		fmt.Sprintf("Equity API key: %s", presence(cfg.Credentials.EquityAPIKey != "")),
		fmt.Sprintf("Narrative API key: %s", presence(narrativeKeySet(cfg))),
		sectionLine("Catalog", cfg.Catalog, "built-in"),
		sectionLine("Market config", cfg.Market, "built-in providers"),
		sectionLine("LLM config", cfg.LLM, "Groq defaults"),
	}
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func narrativeKeySet(cfg *config.Config) bool {
	if cfg.Credentials.NarrativeAPIKey != "" {
		return true
	}
	return cfg.LLM.Value != nil && cfg.LLM.Value.HasCredentials()
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T], fallback string) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Configured():
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: %s", name, fallback)
	}
}
