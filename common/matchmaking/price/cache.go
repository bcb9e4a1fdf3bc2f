package price

import (
	"sync/atomic"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"golang.org/x/sync/singleflight"
)

// IndexCache holds one Index per catalog snapshot identity.
//
// The first caller to request the Index of a snapshot builds it. Concurrent callers that request the
// same snapshot while it is being built wait for and share that result.
type IndexCache struct {
	indices cmap.ConcurrentMap[string, *Index]
	group   singleflight.Group
	builds  atomic.Int64

	// onBuild is called after a new Index has been built. It may be nil.
	onBuild func(index *Index)

	log logger.Logger
}

// NewIndexCache creates a new IndexCache. The onBuild callback is optional.
func NewIndexCache(onBuild func(index *Index)) *IndexCache {
	cache := &IndexCache{
		indices: cmap.New[*Index](),
		onBuild: onBuild,
	}

	config.InitLogger(&cache.log, cache)

	return cache
}

// Get returns the Index of the given catalog, building it first if necessary.
func (c *IndexCache) Get(cat *catalog.Catalog) *Index {
	if index, ok := c.indices.Get(cat.ID()); ok {
		return index
	}

	val, _, _ := c.group.Do(cat.ID(), func() (interface{}, error) {
		// Re-check, as another flight for this key may have completed since our lookup.
		if index, ok := c.indices.Get(cat.ID()); ok {
			return index, nil
		}

		index := Build(cat)
		c.indices.Set(cat.ID(), index)
		c.builds.Add(1)

		if index.Duplicates() > 0 {
			c.log.Warn("Catalog %s contains %d duplicate price entries.", cat.ID(), index.Duplicates())
		}

		c.log.Debug("Built price index for catalog %s with %d entries.", cat.ID(), index.Len())

		if c.onBuild != nil {
			c.onBuild(index)
		}

		return index, nil
	})

	return val.(*Index)
}

// Evict discards the Index of the catalog with the given identity.
func (c *IndexCache) Evict(catalogId string) {
	c.indices.Remove(catalogId)
}

// Retain discards the Index of every catalog whose identity is not in the given set.
func (c *IndexCache) Retain(catalogIds map[string]struct{}) {
	for _, id := range c.indices.Keys() {
		if _, ok := catalogIds[id]; !ok {
			c.indices.Remove(id)
		}
	}
}

// Len returns the number of cached indices.
func (c *IndexCache) Len() int {
	return c.indices.Count()
}

// Builds returns the number of indices that have been built by the IndexCache.
func (c *IndexCache) Builds() int64 {
	return c.builds.Load()
}
