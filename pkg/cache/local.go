package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache is an in-process cache backed by go-cache.
type LocalCache struct {
	store *gocache.Cache
}

// NewLocalCache builds an in-process cache.
func NewLocalCache(config LocalConfig) *LocalCache {
	exp := config.DefaultExpiration
	if exp <= 0 {
		exp = 5 * time.Minute
	}
	cleanup := config.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &LocalCache{store: gocache.New(exp, cleanup)}
}

func (l *LocalCache) Get(_ context.Context, key string) (interface{}, bool) {
	return l.store.Get(key)
}

func (l *LocalCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	l.store.Set(key, value, expiration)
	return nil
}

func (l *LocalCache) Delete(_ context.Context, key string) error {
	l.store.Delete(key)
	return nil
}

func (l *LocalCache) Exists(_ context.Context, key string) bool {
	_, ok := l.store.Get(key)
	return ok
}

func (l *LocalCache) Clear(_ context.Context) error {
	l.store.Flush()
	return nil
}

func (l *LocalCache) Close() error {
	return nil
}
