package cache

import (
	"strconv"
	"strings"
	"time"

	"findash-api/internal/config"
)

// Namespace is the key prefix for the findash application.
const Namespace = "findash"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLCatalog TTLClass = "catalog"
	TTLHistory TTLClass = "history"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Catalog time.Duration
	History time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Catalog: durationOrDefault(cfg.Catalog, time.Hour),
		History: durationOrDefault(cfg.History, 5*time.Minute),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLCatalog:
		return t.Catalog
	case TTLHistory:
		return t.History
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// AssetListKey caches the catalog entries for one asset kind.
func AssetListKey(kind string) string {
	return formatKey("assets", strings.ToLower(kind))
}

// HistoryKey caches a fetched price series. Providers that ignore the window use 0
// so every window shares one entry.
func HistoryKey(kind, providerID string, window int) string {
	return formatKey("history", strings.ToLower(kind), providerID, strconv.Itoa(window))
}
