package generator

import (
	"context"
	"sync"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/price"
)

// DefaultGenerator enumerates every valid (cloud, hardware, image, location) combination of a catalog
// snapshot and emits one priced matchmaking.NodeCandidate for each.
//
// A combination is valid if the location is assignable and both the image and the hardware profile may
// be placed within the location's scope. See Bindings for how unbound images and hardware profiles are
// handled.
type DefaultGenerator struct {
	catalog *catalog.Catalog
	prices  *price.IndexCache

	bindingsMu sync.Mutex
	bindings   *Bindings

	log logger.Logger
}

// NewDefaultGenerator creates a new DefaultGenerator for the given catalog.
//
// The price index of the catalog is obtained from the given IndexCache.
func NewDefaultGenerator(cat *catalog.Catalog, prices *price.IndexCache) *DefaultGenerator {
	generator := &DefaultGenerator{
		catalog: cat,
		prices:  prices,
	}

	config.InitLogger(&generator.log, generator)

	return generator
}

// Candidates generates the candidate set of the catalog.
func (g *DefaultGenerator) Candidates(ctx context.Context) (*matchmaking.NodeCandidates, error) {
	candidates, _, err := g.Generate(ctx)
	return candidates, err
}

// Generate generates the candidate set of the catalog and returns it alongside the location bindings
// that were established while generating it.
//
// Generate is deterministic: the catalog is traversed in the order in which it lists its entities,
// and the bindings of previous passes are not carried over.
func (g *DefaultGenerator) Generate(ctx context.Context) (*matchmaking.NodeCandidates, *Bindings, error) {
	index := g.prices.Get(g.catalog)
	bindings := newBindings()
	candidates := matchmaking.NewNodeCandidates()

	scopes := make(map[*catalog.Location]map[string]struct{})
	scopeOf := func(loc *catalog.Location) map[string]struct{} {
		scope, ok := scopes[loc]
		if !ok {
			scope = loc.Scope()
			scopes[loc] = scope
		}
		return scope
	}

	numUnpriced := 0
	for _, cloud := range g.catalog.Clouds() {
		for _, img := range cloud.Images {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			for _, hw := range cloud.Hardware {
				for _, loc := range cloud.Locations {
					if !loc.Assignable {
						continue
					}

					scope := scopeOf(loc)

					// The image is bound before the hardware profile is checked, so an image may end up
					// bound to a location at which no candidate is generated for it.
					if !admit(bindings.images, bindingKey{cloud.ID, img.ID}, img.Location, loc, scope) {
						continue
					}

					if !admit(bindings.hardware, bindingKey{cloud.ID, hw.ID}, hw.Location, loc, scope) {
						continue
					}

					p, ok := index.Lookup(cloud.ID, img.ID, hw.ID, loc.ID)
					if !ok {
						p = matchmaking.UnknownPrice
						numUnpriced++
					}

					candidates.Add(matchmaking.NewNodeCandidate(cloud, hw, img, loc, p))
				}
			}
		}
	}

	g.bindingsMu.Lock()
	g.bindings = bindings
	g.bindingsMu.Unlock()

	g.log.Debug("Generated %d candidate(s) from catalog %s (%d without a price, %d possible combinations).",
		candidates.Len(), g.catalog.ID(), numUnpriced, g.catalog.NumCombinations())

	return candidates, bindings, nil
}

// Bindings returns the bindings established by the most recent generation pass, or nil if the
// DefaultGenerator has not generated any candidates yet.
func (g *DefaultGenerator) Bindings() *Bindings {
	g.bindingsMu.Lock()
	defer g.bindingsMu.Unlock()

	return g.bindings
}

// Catalog returns the catalog snapshot from which the DefaultGenerator generates candidates.
func (g *DefaultGenerator) Catalog() *catalog.Catalog {
	return g.catalog
}
