package solver

import (
	"context"
	"math/rand"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/shopspring/decimal"
)

const (
	BestFitName = "bestfit"

	DefaultBestFitIterations = 100
	DefaultBestFitWidth      = 1
)

// BestFit is a greedy local-search heuristic.
//
// BestFit seeds a pool of width selections from the cheapest candidates and then refines each of them by
// single-slot swaps. A swap is accepted if it makes an infeasible selection feasible, or if it makes a
// feasible selection cheaper without violating a constraint. A selection for which no swap is accepted is
// perturbed at random while it is infeasible. BestFit never asserts optimality.
type BestFit struct {
	maxIterations int
	width         int
	seed          int64

	log logger.Logger
}

// NewBestFit creates a new BestFit strategy.
//
// maxIterations bounds the number of refinement rounds and width is the number of selections that are
// refined. Non-positive values are replaced with the defaults.
func NewBestFit(maxIterations int, width int, seed int64) *BestFit {
	if maxIterations <= 0 {
		maxIterations = DefaultBestFitIterations
	}

	if width <= 0 {
		width = DefaultBestFitWidth
	}

	bestFit := &BestFit{
		maxIterations: maxIterations,
		width:         width,
		seed:          seed,
	}

	config.InitLogger(&bestFit.log, bestFit)

	return bestFit
}

func (s *BestFit) Name() string {
	return BestFitName
}

func (s *BestFit) Solve(ctx context.Context, constraints matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
	existing *matchmaking.Solution, targetSize int) (*matchmaking.Solution, error) {

	p, err := newProblem(constraints, candidates, existing, targetSize)
	if err != nil {
		return nil, err
	}

	if trivial := p.trivial(); trivial != nil {
		return trivial, nil
	}

	rng := rand.New(rand.NewSource(s.seed))

	var (
		best     []int
		bestCost decimal.Decimal
	)

	for k := 0; k < s.width && k < len(p.sorted); k++ {
		current := make([]int, p.slots)
		for i := range current {
			current[i] = k
		}

		if found := s.refine(ctx, p, current, rng); found != nil {
			if cost := p.cost(found); best == nil || cost.LessThan(bestCost) {
				best, bestCost = found, cost
			}
		}

		if done(ctx) {
			break
		}
	}

	if best == nil {
		s.log.Debug("No feasible selection of %d node(s) found among %d candidate(s).", targetSize, len(p.sorted))
		return matchmaking.NoSolution(), nil
	}

	return p.solution(best, false), nil
}

// refine improves the given selection in place and returns the cheapest feasible selection encountered,
// or nil if none was feasible.
func (s *BestFit) refine(ctx context.Context, p *problem, current []int, rng *rand.Rand) []int {
	var best []int
	feasible := p.feasible(current)
	if feasible {
		best = append([]int(nil), current...)
	}

	for iteration := 0; iteration < s.maxIterations && !done(ctx); iteration++ {
		if s.swap(ctx, p, current, feasible) {
			feasible = true
			if best == nil || p.cost(current).LessThan(p.cost(best)) {
				best = append(best[:0], current...)
			}
			continue
		}

		if feasible {
			// Local optimum.
			break
		}

		current[rng.Intn(len(current))] = rng.Intn(len(p.sorted))
		feasible = p.feasible(current)
		if feasible && (best == nil || p.cost(current).LessThan(p.cost(best))) {
			best = append(best[:0], current...)
		}
	}

	return best
}

// swap applies the first accepted single-slot swap to current. Cheaper replacements are tried first.
func (s *BestFit) swap(ctx context.Context, p *problem, current []int, feasible bool) bool {
	for slot := range current {
		original := current[slot]
		for idx := range p.sorted {
			if idx == original {
				continue
			}

			// The candidates are sorted by price, so no later replacement can make a feasible selection cheaper.
			if feasible && !p.sorted[idx].Price().LessThan(p.sorted[original].Price()) {
				break
			}

			current[slot] = idx
			if p.feasible(current) {
				return true
			}

			if done(ctx) {
				current[slot] = original
				return false
			}
		}

		current[slot] = original
	}

	return false
}
