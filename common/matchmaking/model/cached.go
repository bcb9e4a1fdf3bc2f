package model

import (
	"context"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"golang.org/x/sync/singleflight"
	"k8s.io/apimachinery/pkg/util/cache"
)

const (
	DefaultCacheTTL  = 10 * time.Minute
	DefaultCacheSize = 128
)

// CachedGenerator memoizes the catalog of each user.
//
// A cached catalog expires once it has not been accessed for the configured TTL. At most size catalogs
// are cached; the least recently used one is evicted first. Since the cached snapshot is returned as is,
// everything keyed by its identity (price indices, cached candidates) remains valid while it is cached.
type CachedGenerator struct {
	delegate matchmaking.ModelGenerator
	catalogs *cache.LRUExpireCache
	ttl      time.Duration
	group    singleflight.Group

	log logger.Logger
}

// NewCachedGenerator wraps the given generator.
func NewCachedGenerator(delegate matchmaking.ModelGenerator, ttl time.Duration, size int) *CachedGenerator {
	return NewCachedGeneratorWithClock(delegate, ttl, size, nil)
}

// NewCachedGeneratorWithClock wraps the given generator, using the given clock to expire entries.
// A nil clock selects the real clock.
func NewCachedGeneratorWithClock(delegate matchmaking.ModelGenerator, ttl time.Duration, size int, clock cache.Clock) *CachedGenerator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	if size <= 0 {
		size = DefaultCacheSize
	}

	generator := &CachedGenerator{
		delegate: delegate,
		ttl:      ttl,
	}

	if clock != nil {
		generator.catalogs = cache.NewLRUExpireCacheWithClock(size, clock)
	} else {
		generator.catalogs = cache.NewLRUExpireCache(size)
	}

	config.InitLogger(&generator.log, generator)

	return generator
}

func (g *CachedGenerator) GenerateModel(ctx context.Context, userId string) (*catalog.Catalog, error) {
	if userId == "" {
		return nil, matchmaking.ErrEmptyUserId
	}

	if cat, ok := g.lookup(userId); ok {
		return cat, nil
	}

	val, err, _ := g.group.Do(userId, func() (interface{}, error) {
		if cat, ok := g.lookup(userId); ok {
			return cat, nil
		}

		cat, err := g.delegate.GenerateModel(ctx, userId)
		if err != nil {
			return nil, err
		}

		g.catalogs.Add(userId, cat, g.ttl)
		g.log.Debug("Cached catalog %s of user \"%s\" for %v.", cat.ID(), userId, g.ttl)

		return cat, nil
	})

	if err != nil {
		return nil, err
	}

	return val.(*catalog.Catalog), nil
}

// lookup returns the cached catalog of the user and extends its expiration.
func (g *CachedGenerator) lookup(userId string) (*catalog.Catalog, bool) {
	val, ok := g.catalogs.Get(userId)
	if !ok {
		return nil, false
	}

	cat := val.(*catalog.Catalog)
	g.catalogs.Add(userId, cat, g.ttl)
	return cat, true
}

// Invalidate discards the cached catalog of the given user.
func (g *CachedGenerator) Invalidate(userId string) {
	g.catalogs.Remove(userId)
}

// CachedUsers returns the users whose catalog is currently cached.
func (g *CachedGenerator) CachedUsers() []string {
	keys := g.catalogs.Keys()
	users := make([]string, 0, len(keys))
	for _, key := range keys {
		users = append(users, key.(string))
	}
	return users
}
