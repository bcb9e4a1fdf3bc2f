package generator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/zhangjyr/hashmap"
	"golang.org/x/sync/singleflight"
)

// cacheEntry is the memoized candidate set of one user.
type cacheEntry struct {
	catalogId   string
	fingerprint uint64
	candidates  *matchmaking.NodeCandidates
}

// CandidateCache memoizes the fully filtered candidate set of each user.
//
// At most one candidate set is cached per user. A cached set is only returned for the catalog snapshot
// and request fingerprint from which it was produced; any other snapshot or fingerprint replaces it.
type CandidateCache struct {
	entries *hashmap.HashMap // user ID -> *cacheEntry
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64

	log logger.Logger
}

// NewCandidateCache creates a new CandidateCache sized for the expected number of users.
func NewCandidateCache(expectedUsers int) *CandidateCache {
	if expectedUsers <= 0 {
		expectedUsers = 64
	}

	cache := &CandidateCache{
		entries: hashmap.New(uintptr(expectedUsers)),
	}

	config.InitLogger(&cache.log, cache)

	return cache
}

// Wrap returns a matchmaking.CandidateSource that serves the candidate set of the given user from the
// cache, obtaining it from source if the cache holds no matching set.
func (c *CandidateCache) Wrap(userId string, catalogId string, fingerprint uint64, source matchmaking.CandidateSource) matchmaking.CandidateSource {
	return matchmaking.CandidateSourceFunc(func(ctx context.Context) (*matchmaking.NodeCandidates, error) {
		return c.get(ctx, userId, catalogId, fingerprint, source)
	})
}

func (c *CandidateCache) get(ctx context.Context, userId string, catalogId string, fingerprint uint64,
	source matchmaking.CandidateSource) (*matchmaking.NodeCandidates, error) {

	if entry, ok := c.lookup(userId); ok && entry.catalogId == catalogId && entry.fingerprint == fingerprint {
		c.hits.Add(1)
		return entry.candidates, nil
	}

	flightKey := fmt.Sprintf("%s|%s|%x", userId, catalogId, fingerprint)
	val, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		if entry, ok := c.lookup(userId); ok && entry.catalogId == catalogId && entry.fingerprint == fingerprint {
			c.hits.Add(1)
			return entry.candidates, nil
		}

		c.misses.Add(1)

		candidates, err := source.Candidates(ctx)
		if err != nil {
			return nil, err
		}

		c.entries.Set(userId, &cacheEntry{
			catalogId:   catalogId,
			fingerprint: fingerprint,
			candidates:  candidates,
		})

		c.log.Debug("Cached %d candidate(s) for user \"%s\" (catalog=%s).", candidates.Len(), userId, catalogId)

		return candidates, nil
	})

	if err != nil {
		return nil, err
	}

	return val.(*matchmaking.NodeCandidates), nil
}

func (c *CandidateCache) lookup(userId string) (*cacheEntry, bool) {
	val, ok := c.entries.GetStringKey(userId)
	if !ok || val == nil {
		return nil, false
	}

	return val.(*cacheEntry), true
}

// Invalidate discards the cached candidate set of the given user.
func (c *CandidateCache) Invalidate(userId string) {
	c.entries.Del(userId)
}

// Len returns the number of users with a cached candidate set.
func (c *CandidateCache) Len() int {
	return c.entries.Len()
}

// Hits returns the number of requests that were served from the cache.
func (c *CandidateCache) Hits() int64 {
	return c.hits.Load()
}

// Misses returns the number of requests for which the candidate set had to be produced.
func (c *CandidateCache) Misses() int64 {
	return c.misses.Load()
}
