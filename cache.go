package brandkit

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/storage"
)

// Presentation is what document previews read: the three global settings,
// with the footer layout already resolved.
type Presentation struct {
	Header       domain.HeaderSettings `json:"header"`
	Footer       domain.FooterSettings `json:"footer"`
	FooterLayout domain.FooterLayout   `json:"footerLayout"`
	FooterIcons  map[string]string     `json:"footerIcons"`
	Hero         domain.HeroSettings   `json:"hero"`
	Degraded     bool                  `json:"degraded"`
}

// PresentationCache is an in-memory cache of the global settings with TTL.
// Editors invalidate it after every successful save.
type PresentationCache struct {
	mu      sync.RWMutex
	p       *Presentation
	fetched time.Time
	ttl     time.Duration
	storage *storage.Adapter
}

// NewPresentationCache creates a cache backed by the given adapter.
func NewPresentationCache(s *storage.Adapter, ttl time.Duration) *PresentationCache {
	return &PresentationCache{storage: s, ttl: ttl}
}

func (c *PresentationCache) valid() bool {
	return c.p != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PresentationCache) Invalidate() {
	c.mu.Lock()
	c.p = nil
	c.mu.Unlock()
}

func (c *PresentationCache) load(ctx context.Context) Presentation {
	header := c.storage.LoadHeaderSettings(ctx)
	footer := c.storage.LoadFooterSettings(ctx)
	hero := c.storage.LoadHeroSettings(ctx)

	icons := make(map[string]string, len(domain.FooterFields))
	for _, f := range domain.FooterFields {
		icons[string(f)] = footer.Value.IconFor(f)
	}
	return Presentation{
		Header:       header.Value,
		Footer:       footer.Value,
		FooterLayout: footer.Value.Layout(),
		FooterIcons:  icons,
		Hero:         hero.Value,
		Degraded:     header.Degraded() || footer.Degraded() || hero.Degraded(),
	}
}

// Get returns the cached presentation, reloading it when stale. A degraded
// load is returned but not cached, so the next request retries the store.
func (c *PresentationCache) Get(ctx context.Context) Presentation {
	c.mu.RLock()
	if c.valid() {
		p := *c.p
		c.mu.RUnlock()
		return p
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return *c.p
	}
	p := c.load(ctx)
	if !p.Degraded {
		c.p = &p
		c.fetched = time.Now()
	}
	return p
}
