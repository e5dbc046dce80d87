package news

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache stores raw values by key. Get returns ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource serves a source's articles from cache when present. Cache
// failures are logged and fall through to the wrapped source.
type CachedSource struct {
	Source
	cache Cache
	ttl   time.Duration
}

func NewCachedSource(source Source, cache Cache, ttl time.Duration) *CachedSource {
	return &CachedSource{Source: source, cache: cache, ttl: ttl}
}

func (c *CachedSource) Fetch(ctx context.Context, query string) ([]Article, error) {
	key := c.key(query)

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var articles []Article
		if err := json.Unmarshal(data, &articles); err == nil {
			return articles, nil
		}
		slog.Warn("discarding unreadable cache entry", "source", c.Name(), "key", key)
	case !errors.Is(err, ErrCacheMiss):
		slog.Warn("news cache read failed", "source", c.Name(), "error", err)
	}

	articles, err := c.Source.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(articles)
	if err == nil {
		err = c.cache.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		slog.Warn("news cache write failed", "source", c.Name(), "error", err)
	}

	return articles, nil
}

// key shares one entry across queries for listing sources.
func (c *CachedSource) key(query string) string {
	key := "cryptonews:news:" + strings.ToLower(c.Name())
	if l, ok := c.Source.(Listing); ok && l.IgnoresQuery() {
		return key
	}
	return key + ":" + strings.ToLower(strings.TrimSpace(query))
}
