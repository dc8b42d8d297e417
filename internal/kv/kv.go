// Package kv provides the persisted key/value namespace that backs sessions
// and mock mode. Values are opaque strings; callers encode JSON themselves.
package kv

import (
	"context"
	"fmt"

	"pingme/internal/config"
)

// Store is a string key/value namespace that survives process restarts.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key in the namespace.
	Clear(ctx context.Context) error
}

// Open returns the store selected by cfg.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.StoreNamespace), nil
	case config.StoreBackendFile, "":
		return NewOSFileStore(cfg.StorePath), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
