package solver

import (
	"context"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/shopspring/decimal"
)

const (
	EnumerationName = "enumeration"

	DefaultEnumerationLimit = 250000
)

// Enumeration is an exact branch-and-bound search over all selections.
//
// Selections are enumerated as non-decreasing sequences of indices into the candidates sorted by price,
// so each multiset of candidates is visited once. A branch is pruned when even filling its remaining
// slots with its cheapest admissible candidate cannot beat the best feasible selection found so far.
//
// If the search space is exhausted within the limit, then the result is optimal. Otherwise the best
// selection found is returned without asserting optimality.
type Enumeration struct {
	limit int

	log logger.Logger
}

// NewEnumeration creates a new Enumeration strategy that evaluates at most limit complete selections.
func NewEnumeration(limit int) *Enumeration {
	if limit <= 0 {
		limit = DefaultEnumerationLimit
	}

	enumeration := &Enumeration{limit: limit}
	config.InitLogger(&enumeration.log, enumeration)

	return enumeration
}

func (s *Enumeration) Name() string {
	return EnumerationName
}

type search struct {
	p         *problem
	ctx       context.Context
	remaining int
	aborted   bool

	indices  []int
	best     []int
	bestCost decimal.Decimal
}

func (s *Enumeration) Solve(ctx context.Context, constraints matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
	existing *matchmaking.Solution, targetSize int) (*matchmaking.Solution, error) {

	p, err := newProblem(constraints, candidates, existing, targetSize)
	if err != nil {
		return nil, err
	}

	if trivial := p.trivial(); trivial != nil {
		return trivial, nil
	}

	st := &search{
		p:         p,
		ctx:       ctx,
		remaining: s.limit,
		indices:   make([]int, 0, p.slots),
	}

	st.visit(0, p.existingSum)

	if st.best == nil {
		if st.aborted {
			s.log.Debug("Search aborted after %d selection(s) without finding a feasible one.", s.limit-st.remaining)
		}
		return matchmaking.NoSolution(), nil
	}

	return p.solution(st.best, !st.aborted), nil
}

// visit extends the current partial selection with candidates at index start or later.
func (st *search) visit(start int, partialCost decimal.Decimal) {
	if st.aborted {
		return
	}

	if len(st.indices) == st.p.slots {
		if st.remaining <= 0 || done(st.ctx) {
			st.aborted = true
			return
		}
		st.remaining--

		if st.p.feasible(st.indices) {
			st.best = append(st.best[:0], st.indices...)
			st.bestCost = partialCost
		}
		return
	}

	open := decimal.NewFromInt(int64(st.p.slots - len(st.indices)))
	for idx := start; idx < len(st.p.sorted); idx++ {
		price := st.p.sorted[idx].Price()

		// Every remaining slot costs at least this candidate's price.
		if st.best != nil && !partialCost.Add(price.Mul(open)).LessThan(st.bestCost) {
			return
		}

		st.indices = append(st.indices, idx)
		st.visit(idx, partialCost.Add(price))
		st.indices = st.indices[:len(st.indices)-1]

		if st.aborted {
			return
		}
	}
}
