package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownStrategy   = errors.New("unknown solver strategy")
	ErrDuplicateStrategy = errors.New("solver strategy already registered")
)

// problem is the normalized input of a single solve.
//
// The existing candidates are always part of the selection. The solver chooses the candidates of the
// remaining slots. Candidates may be chosen more than once.
type problem struct {
	constraints matchmaking.ConstraintChecker
	existing    []*matchmaking.NodeCandidate
	sorted      []*matchmaking.NodeCandidate // ascending by price
	slots       int
	existingSum decimal.Decimal
}

func newProblem(constraints matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
	existing *matchmaking.Solution, targetSize int) (*problem, error) {

	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: %d", matchmaking.ErrInvalidTargetSize, targetSize)
	}

	p := &problem{
		constraints: constraints,
		sorted:      candidates.SortedByPrice(),
		existingSum: decimal.Zero,
	}

	if existing != nil && !existing.IsNoSolution() {
		p.existing = existing.Candidates()
		p.existingSum = matchmaking.TotalPrice(p.existing)
	}

	// Existing nodes are never removed, so a fleet that is already larger than the target stays as is.
	p.slots = targetSize - len(p.existing)
	if p.slots < 0 {
		p.slots = 0
	}

	return p, nil
}

// selection returns the existing candidates followed by the candidates at the given indices.
func (p *problem) selection(indices []int) []*matchmaking.NodeCandidate {
	selection := make([]*matchmaking.NodeCandidate, 0, len(p.existing)+len(indices))
	selection = append(selection, p.existing...)
	for _, idx := range indices {
		selection = append(selection, p.sorted[idx])
	}
	return selection
}

// cost returns the total price of the selection described by the given indices.
func (p *problem) cost(indices []int) decimal.Decimal {
	total := p.existingSum
	for _, idx := range indices {
		total = total.Add(p.sorted[idx].Price())
	}
	return total
}

// feasible returns true if the selection described by the given indices satisfies the constraints.
//
// Selections for which the constraints cannot be evaluated are infeasible.
func (p *problem) feasible(indices []int) bool {
	ok, err := p.constraints.CheckSolution(p.selection(indices))
	return ok && err == nil
}

// solution converts the selection described by the given indices into a matchmaking.Solution.
func (p *problem) solution(indices []int, optimal bool) *matchmaking.Solution {
	return matchmaking.NewSolution(p.selection(indices), optimal)
}

// trivial handles problems that require no search: either no slots must be filled, or there are no
// candidates to fill them with. It returns nil if the problem requires a search.
func (p *problem) trivial() *matchmaking.Solution {
	if p.slots == 0 {
		if p.feasible(nil) {
			return p.solution(nil, true)
		}
		return matchmaking.NoSolution()
	}

	if len(p.sorted) == 0 {
		return matchmaking.NoSolution()
	}

	return nil
}

func done(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
