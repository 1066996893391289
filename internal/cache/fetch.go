package cache

import (
	"context"
	"errors"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"
)

// Fetch returns the cached value for key or calls load and caches its result for
// ttl. Load errors are returned and never cached. A failing store is logged and
// bypassed so the caller always gets a fresh value.
func Fetch[T any](ctx context.Context, store Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if store == nil || ttl <= 0 {
		return load(ctx)
	}

	raw, err := store.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		decodeErr := msgpack.Unmarshal(raw, &cached)
		if decodeErr == nil {
			return cached, nil
		}
		logx.WithContext(ctx).Errorf("cache: decode %s: %v", key, decodeErr)
	case !errors.Is(err, ErrMiss):
		logx.WithContext(ctx).Errorf("cache: get %s: %v", key, err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	encoded, err := msgpack.Marshal(value)
	if err != nil {
		logx.WithContext(ctx).Errorf("cache: encode %s: %v", key, err)
		return value, nil
	}
	if err := store.Set(ctx, key, encoded, ttl); err != nil {
		logx.WithContext(ctx).Errorf("cache: set %s: %v", key, err)
	}
	return value, nil
}
