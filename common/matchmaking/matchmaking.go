package matchmaking

import (
	"context"

	"github.com/scusemua/cloud-matchmaker/common/catalog"
)

// CandidateSource produces a set of NodeCandidate instances.
//
// The stages of the candidate pipeline (generation, quota filtering, constraint filtering, and
// caching) are each a CandidateSource that wraps the next.
type CandidateSource interface {
	// Candidates returns the candidate set produced by the CandidateSource.
	Candidates(ctx context.Context) (*NodeCandidates, error)
}

// CandidateSourceFunc adapts a function to the CandidateSource interface.
type CandidateSourceFunc func(ctx context.Context) (*NodeCandidates, error)

func (f CandidateSourceFunc) Candidates(ctx context.Context) (*NodeCandidates, error) {
	return f(ctx)
}

// ConstraintChecker evaluates a compiled ConstraintSet against individual candidates and whole
// selections of candidates.
//
// Implementations must be safe for concurrent use, as the same ConstraintChecker is shared by all
// Solver instances that run concurrently during a solve.
type ConstraintChecker interface {
	// CheckNode returns true if the candidate satisfies every per-node constraint.
	CheckNode(candidate *NodeCandidate) (bool, error)

	// CheckSolution returns true if the selected candidates satisfy every constraint.
	CheckSolution(selection []*NodeCandidate) (bool, error)
}

// Evaluator compiles constraint expressions into a ConstraintChecker.
type Evaluator interface {
	// Compile compiles the given requirements.
	//
	// Compile returns an error wrapping ErrConstraintParse if any requirement is malformed.
	Compile(requirements []string) (ConstraintChecker, error)
}

// Solver is a solving strategy.
//
// Solve must not share mutable state with other concurrently running invocations, and it should
// return promptly once ctx is done.
type Solver interface {
	// Name returns the name under which the Solver is registered.
	Name() string

	// Solve selects targetSize candidates from the given set such that the selection satisfies the
	// constraints. If existing is non-nil, then its candidates must be part of the selection.
	//
	// Solve returns the NoSolution sentinel if no feasible selection was found.
	Solve(ctx context.Context, constraints ConstraintChecker, candidates *NodeCandidates, existing *Solution, targetSize int) (*Solution, error)
}

// ModelGenerator acquires the catalog that is available to a user.
type ModelGenerator interface {
	GenerateModel(ctx context.Context, userId string) (*catalog.Catalog, error)
}

type allOf []ConstraintChecker

// AllOf returns a ConstraintChecker that passes only if every one of the given checkers passes.
// Nil checkers are ignored.
func AllOf(checkers ...ConstraintChecker) ConstraintChecker {
	combined := make(allOf, 0, len(checkers))
	for _, checker := range checkers {
		if checker != nil {
			combined = append(combined, checker)
		}
	}
	return combined
}

func (a allOf) CheckNode(candidate *NodeCandidate) (bool, error) {
	for _, checker := range a {
		if ok, err := checker.CheckNode(candidate); !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}

func (a allOf) CheckSolution(selection []*NodeCandidate) (bool, error) {
	for _, checker := range a {
		if ok, err := checker.CheckSolution(selection); !ok || err != nil {
			return false, err
		}
	}
	return true, nil
}
