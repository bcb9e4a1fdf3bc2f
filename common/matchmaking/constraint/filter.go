package constraint

import (
	"context"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

// Filter is a matchmaking.CandidateSource that removes the candidates of the wrapped source that
// individually violate a constraint.
//
// Filter is also used to re-validate whole solutions before they are accepted.
type Filter struct {
	source  matchmaking.CandidateSource
	checker matchmaking.ConstraintChecker

	log logger.Logger
}

// NewFilter creates a new Filter that wraps the given source.
func NewFilter(source matchmaking.CandidateSource, checker matchmaking.ConstraintChecker) *Filter {
	filter := &Filter{
		source:  source,
		checker: checker,
	}

	config.InitLogger(&filter.log, filter)

	return filter
}

// Candidates returns the candidates of the wrapped source that satisfy every per-node constraint.
//
// A candidate for which a constraint cannot be evaluated is removed.
func (f *Filter) Candidates(ctx context.Context) (*matchmaking.NodeCandidates, error) {
	candidates, err := f.source.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	numErrors := 0
	var lastErr error
	filtered := candidates.Filter(func(candidate *matchmaking.NodeCandidate) bool {
		ok, err := f.checker.CheckNode(candidate)
		if err != nil {
			numErrors++
			lastErr = err
			return false
		}
		return ok
	})

	if numErrors > 0 {
		f.log.Warn("Constraints could not be evaluated against %d candidate(s). Most recent error: %v", numErrors, lastErr)
	}

	f.log.Debug("%d/%d candidate(s) satisfy the per-node constraints.", filtered.Len(), candidates.Len())

	return filtered, nil
}

// Check returns true if the given solution satisfies every constraint.
//
// The no-solution sentinel never passes.
func (f *Filter) Check(solution *matchmaking.Solution) (bool, error) {
	if solution == nil || solution.IsNoSolution() {
		return false, nil
	}

	return f.checker.CheckSolution(solution.Candidates())
}
