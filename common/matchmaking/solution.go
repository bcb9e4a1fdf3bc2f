package matchmaking

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Solution is a sized, ordered selection of NodeCandidate instances together with the metadata
// of the solve that produced it.
//
// Solutions are created by a single Solver and are not modified afterwards. The orchestrator
// attaches the elapsed solving time by way of WithElapsed, which returns a copy.
type Solution struct {
	candidates []*NodeCandidate
	cost       decimal.Decimal
	optimal    bool
	noSolution bool
	elapsed    time.Duration
	strategy   string
}

// NewSolution creates a new feasible Solution whose cost is the sum of the candidates' prices.
func NewSolution(candidates []*NodeCandidate, optimal bool) *Solution {
	return NewSolutionWithCost(candidates, TotalPrice(candidates), optimal)
}

// NewSolutionWithCost creates a new feasible Solution with a solver-specific cost.
func NewSolutionWithCost(candidates []*NodeCandidate, cost decimal.Decimal, optimal bool) *Solution {
	selected := make([]*NodeCandidate, len(candidates))
	copy(selected, candidates)

	return &Solution{
		candidates: selected,
		cost:       cost,
		optimal:    optimal,
	}
}

// NoSolution returns a new Solution that represents the absence of any feasible solution.
func NoSolution() *Solution {
	return &Solution{
		candidates: []*NodeCandidate{},
		cost:       decimal.Zero,
		noSolution: true,
	}
}

// TotalPrice returns the sum of the prices of the given candidates.
func TotalPrice(candidates []*NodeCandidate) decimal.Decimal {
	total := decimal.Zero
	for _, candidate := range candidates {
		total = total.Add(candidate.Price())
	}
	return total
}

// Candidates returns the candidates selected by the Solution.
//
// The returned slice must not be modified.
func (s *Solution) Candidates() []*NodeCandidate {
	return s.candidates
}

// Size returns the number of selected candidates.
func (s *Solution) Size() int {
	return len(s.candidates)
}

func (s *Solution) Cost() decimal.Decimal {
	return s.cost
}

// IsOptimal returns true if the strategy that produced the Solution asserted that it is optimal.
func (s *Solution) IsOptimal() bool {
	return s.optimal
}

// IsNoSolution returns true if the Solution is the no-solution sentinel.
func (s *Solution) IsNoSolution() bool {
	return s.noSolution
}

func (s *Solution) Elapsed() time.Duration {
	return s.elapsed
}

// Strategy returns the name of the Solver that produced the Solution, if any.
func (s *Solution) Strategy() string {
	return s.strategy
}

// WithElapsed returns a copy of the Solution with the given elapsed solving time.
func (s *Solution) WithElapsed(elapsed time.Duration) *Solution {
	clone := *s
	clone.elapsed = elapsed
	return &clone
}

// WithStrategy returns a copy of the Solution that records the name of the Solver that produced it.
func (s *Solution) WithStrategy(strategy string) *Solution {
	clone := *s
	clone.strategy = strategy
	return &clone
}

// Compare orders Solutions first by feasibility and then by ascending cost.
//
// Compare returns a negative number if s is better than other, a positive number if other is better
// than s, and zero if they rank equally. The no-solution sentinel ranks after every feasible Solution.
func (s *Solution) Compare(other *Solution) int {
	switch {
	case s.noSolution && other.noSolution:
		return 0
	case s.noSolution:
		return 1
	case other.noSolution:
		return -1
	}

	return s.cost.Cmp(other.cost)
}

// IsBetterThan returns true if s ranks strictly before other.
func (s *Solution) IsBetterThan(other *Solution) bool {
	return s.Compare(other) < 0
}

// ContainsAll returns true if every one of the given candidates is selected by the Solution,
// counting repeated candidates with multiplicity.
func (s *Solution) ContainsAll(candidates []*NodeCandidate) bool {
	remaining := make(map[CandidateKey]int, len(s.candidates))
	for _, candidate := range s.candidates {
		remaining[candidate.Key()]++
	}

	for _, candidate := range candidates {
		if remaining[candidate.Key()] == 0 {
			return false
		}
		remaining[candidate.Key()]--
	}

	return true
}

func (s *Solution) String() string {
	if s.noSolution {
		return "Solution[NoSolution]"
	}

	ids := make([]string, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		ids = append(ids, candidate.Key().String())
	}

	return fmt.Sprintf("Solution[Cost=%s,Optimal=%v,Strategy=%s,Elapsed=%v,Candidates=[%s]]",
		s.cost.StringFixed(4), s.optimal, s.strategy, s.elapsed, strings.Join(ids, ", "))
}
