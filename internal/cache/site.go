package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	models "inkstand/internal/domain/models/cms"

	"github.com/redis/go-redis/v9"
)

// SiteCache caches subdomain -> site lookups in Redis.
type SiteCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewSiteCache(client redis.Cmdable, prefix string, ttl time.Duration) *SiteCache {
	return &SiteCache{client: client, prefix: prefix + "site:", ttl: ttl}
}

// Get returns the cached site, or ok=false on a miss.
func (c *SiteCache) Get(ctx context.Context, subdomain string) (*models.Site, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+subdomain).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get cached site: %w", err)
	}

	var site models.Site
	if err := json.Unmarshal(raw, &site); err != nil {
		return nil, false, fmt.Errorf("decode cached site: %w", err)
	}
	return &site, true, nil
}

func (c *SiteCache) Set(ctx context.Context, site *models.Site) error {
	raw, err := json.Marshal(site)
	if err != nil {
		return fmt.Errorf("encode site: %w", err)
	}
	return c.client.Set(ctx, c.prefix+site.Subdomain, raw, c.ttl).Err()
}

func (c *SiteCache) Invalidate(ctx context.Context, subdomain string) error {
	return c.client.Del(ctx, c.prefix+subdomain).Err()
}

// MemorySiteCache is the SiteCache used when Redis is not configured.
type MemorySiteCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memoryEntry
}

type memoryEntry struct {
	site    models.Site
	expires time.Time
}

func NewMemorySiteCache(ttl time.Duration) *MemorySiteCache {
	return &MemorySiteCache{ttl: ttl, now: time.Now, items: make(map[string]memoryEntry)}
}

func (c *MemorySiteCache) Get(_ context.Context, subdomain string) (*models.Site, bool, error) {
	c.mu.RLock()
	e, ok := c.items[subdomain]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return nil, false, nil
	}
	site := e.site
	return &site, true, nil
}

func (c *MemorySiteCache) Set(_ context.Context, site *models.Site) error {
	c.mu.Lock()
	c.items[site.Subdomain] = memoryEntry{site: *site, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemorySiteCache) Invalidate(_ context.Context, subdomain string) error {
	c.mu.Lock()
	delete(c.items, subdomain)
	c.mu.Unlock()
	return nil
}
