package memory

import (
	"strings"
	"time"

	"legal-assistant-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SearchCache keeps recent corpus lookups keyed by the lower-cased query
// (the lookup itself is case-insensitive).
// Only successful lookups are stored so an outage is never cached.
type SearchCache struct {
	cache *cache.Cache
}

func NewSearchCache(ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SearchCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func cacheKey(query string) string {
	return strings.ToLower(query)
}

func (c *SearchCache) Save(query string, docs []*entity.LegalDocument) {
	c.cache.Set(cacheKey(query), docs, cache.DefaultExpiration)
}

func (c *SearchCache) Get(query string) ([]*entity.LegalDocument, bool) {
	if x, found := c.cache.Get(cacheKey(query)); found {
		return x.([]*entity.LegalDocument), true
	}
	return nil, false
}

// Flush drops everything, e.g. after the corpus was reseeded.
func (c *SearchCache) Flush() {
	c.cache.Flush()
}
