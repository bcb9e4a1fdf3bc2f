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
	RandomName = "random"

	DefaultRandomSamples = 2000
)

// Random samples selections uniformly at random and returns the cheapest feasible one.
type Random struct {
	samples int
	seed    int64

	log logger.Logger
}

// NewRandom creates a new Random strategy that draws the given number of samples.
func NewRandom(samples int, seed int64) *Random {
	if samples <= 0 {
		samples = DefaultRandomSamples
	}

	random := &Random{samples: samples, seed: seed}
	config.InitLogger(&random.log, random)

	return random
}

func (s *Random) Name() string {
	return RandomName
}

func (s *Random) Solve(ctx context.Context, constraints matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
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
		sample   = make([]int, p.slots)
		drawn    int
	)

	for drawn = 0; drawn < s.samples && !done(ctx); drawn++ {
		for i := range sample {
			sample[i] = rng.Intn(len(p.sorted))
		}

		cost := p.cost(sample)
		if best != nil && !cost.LessThan(bestCost) {
			continue
		}

		if p.feasible(sample) {
			best = append(best[:0], sample...)
			bestCost = cost
		}
	}

	if best == nil {
		s.log.Debug("None of %d sample(s) was feasible.", drawn)
		return matchmaking.NoSolution(), nil
	}

	return p.solution(best, false), nil
}
