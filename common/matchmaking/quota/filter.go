package quota

import (
	"context"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

// Filter is a matchmaking.CandidateSource that removes the candidates of the wrapped source that would
// push the usage of a quota past its limit.
//
// The candidates of existing nodes always pass, since those nodes are already part of the usage. Whether
// they can be chosen for additional nodes is decided by the solution-level checker.
type Filter struct {
	manager     *Manager
	source      matchmaking.CandidateSource
	constraints *matchmaking.ConstraintSet

	log logger.Logger
}

func newFilter(manager *Manager, source matchmaking.CandidateSource, constraints *matchmaking.ConstraintSet) *Filter {
	filter := &Filter{
		manager:     manager,
		source:      source,
		constraints: constraints,
	}

	config.InitLogger(&filter.log, filter)

	return filter
}

// Candidates returns the candidates of the wrapped source that fit within every applicable quota.
func (f *Filter) Candidates(ctx context.Context) (*matchmaking.NodeCandidates, error) {
	candidates, err := f.source.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	if len(f.constraints.Quotas) == 0 {
		return candidates, nil
	}

	existing := make(map[string]struct{}, len(f.constraints.ExistingNodes))
	for _, node := range f.constraints.ExistingNodes {
		existing[node.NodeCandidateID] = struct{}{}
	}

	baseline := f.manager.Baseline(f.constraints, candidates)
	filtered := candidates.Filter(func(candidate *matchmaking.NodeCandidate) bool {
		if _, ok := existing[candidate.ID()]; ok {
			return true
		}
		return baseline.fits(placementOf(candidate), 1)
	})

	f.log.Debug("%d/%d candidate(s) fit within the %d quota(s).",
		filtered.Len(), candidates.Len(), len(f.constraints.Quotas))

	return filtered, nil
}
