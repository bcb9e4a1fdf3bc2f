package solver_test

import (
	"context"
	"errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/solver"
	"github.com/scusemua/cloud-matchmaker/common/testing"
	"github.com/shopspring/decimal"
)

func totalCores(selection []*matchmaking.NodeCandidate) int {
	total := 0
	for _, candidate := range selection {
		total += candidate.Hardware().Cores
	}
	return total
}

// atLeastCores accepts selections with at least the given number of cores in total.
func atLeastCores(cores int) testing.CheckerFunc {
	return func(selection []*matchmaking.NodeCandidate) bool {
		return totalCores(selection) >= cores
	}
}

var _ = Describe("Solver Strategies", func() {
	var (
		ctx        context.Context
		candidates *matchmaking.NodeCandidates
		strategies []matchmaking.Solver
	)

	BeforeEach(func() {
		ctx = context.Background()

		// c1..c5 with prices 1..5 and cores 2, 4, ..., 10.
		candidates = testing.NewCandidates(5)

		strategies = []matchmaking.Solver{
			solver.NewBestFit(solver.DefaultBestFitIterations, solver.DefaultBestFitWidth, 1),
			solver.NewEnumeration(solver.DefaultEnumerationLimit),
			solver.NewRandom(solver.DefaultRandomSamples, 1),
		}
	})

	It("Will choose the cheapest candidates when there are no constraints", func() {
		for _, strategy := range strategies {
			solution, err := strategy.Solve(ctx, testing.AcceptAll{}, candidates, nil, 2)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeFalse(), strategy.Name())
			Expect(solution.Size()).To(Equal(2))
			Expect(solution.Cost().Equal(decimal.NewFromInt(2))).To(BeTrue(), strategy.Name())
		}
	})

	It("Will find the cheapest feasible selection", func() {
		enumeration := solver.NewEnumeration(solver.DefaultEnumerationLimit)
		solution, err := enumeration.Solve(ctx, atLeastCores(10), candidates, nil, 2)
		Expect(err).To(BeNil())
		Expect(solution.IsOptimal()).To(BeTrue())
		Expect(solution.Cost().Equal(decimal.NewFromInt(5))).To(BeTrue())
		Expect(totalCores(solution.Candidates())).To(BeNumerically(">=", 10))

		bestFit := solver.NewBestFit(solver.DefaultBestFitIterations, solver.DefaultBestFitWidth, 1)
		solution, err = bestFit.Solve(ctx, atLeastCores(10), candidates, nil, 2)
		Expect(err).To(BeNil())
		Expect(solution.IsOptimal()).To(BeFalse())
		Expect(solution.Cost().Equal(decimal.NewFromInt(5))).To(BeTrue())
	})

	It("Will keep the existing nodes in every selection", func() {
		c5, _ := candidates.Get(testing.NewCandidate("c5", 10, 5*4096, "5").Key())
		existing := matchmaking.NewSolution([]*matchmaking.NodeCandidate{c5}, false)

		for _, strategy := range strategies {
			solution, err := strategy.Solve(ctx, testing.AcceptAll{}, candidates, existing, 2)
			Expect(err).To(BeNil())
			Expect(solution.Size()).To(Equal(2))
			Expect(solution.ContainsAll([]*matchmaking.NodeCandidate{c5})).To(BeTrue(), strategy.Name())
			Expect(solution.Cost().Equal(decimal.NewFromInt(6))).To(BeTrue(), strategy.Name())
		}
	})

	It("Will keep all existing nodes when there are more of them than the target size", func() {
		existing := matchmaking.NewSolution(candidates.Slice()[:3], false)

		for _, strategy := range strategies {
			solution, err := strategy.Solve(ctx, testing.AcceptAll{}, candidates, existing, 2)
			Expect(err).To(BeNil())
			Expect(solution.Size()).To(Equal(3))
			Expect(solution.IsOptimal()).To(BeTrue())
		}
	})

	It("Will return the sentinel when no selection is feasible", func() {
		impossible := testing.CheckerFunc(func(_ []*matchmaking.NodeCandidate) bool { return false })

		for _, strategy := range strategies {
			solution, err := strategy.Solve(ctx, impossible, candidates, nil, 2)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeTrue(), strategy.Name())
		}

		By("Returning the sentinel when there are no candidates at all")
		for _, strategy := range strategies {
			solution, err := strategy.Solve(ctx, testing.AcceptAll{}, matchmaking.NewNodeCandidates(), nil, 1)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeTrue(), strategy.Name())
		}
	})

	It("Will reject invalid target sizes", func() {
		for _, strategy := range strategies {
			_, err := strategy.Solve(ctx, testing.AcceptAll{}, candidates, nil, 0)
			Expect(errors.Is(err, matchmaking.ErrInvalidTargetSize)).To(BeTrue())
		}
	})

	It("Will stop searching once the context is done", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		for _, strategy := range strategies {
			solution, err := strategy.Solve(cancelled, atLeastCores(1000), candidates, nil, 3)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeTrue(), strategy.Name())
		}
	})

	Context("Enumeration", func() {
		It("Will not assert optimality when the limit is reached", func() {
			solution, err := solver.NewEnumeration(4).Solve(ctx, atLeastCores(10), candidates, nil, 2)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeFalse())
			Expect(solution.IsOptimal()).To(BeFalse())
			Expect(solution.Cost().Equal(decimal.NewFromInt(5))).To(BeTrue())

			solution, err = solver.NewEnumeration(2).Solve(ctx, atLeastCores(10), candidates, nil, 2)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeTrue())
		})

		It("Will prune branches that cannot beat the best selection", func() {
			solution, err := solver.NewEnumeration(1).Solve(ctx, testing.AcceptAll{}, candidates, nil, 2)
			Expect(err).To(BeNil())
			Expect(solution.IsOptimal()).To(BeTrue())
			Expect(solution.Cost().Equal(decimal.NewFromInt(2))).To(BeTrue())
		})
	})

	Context("Random", func() {
		It("Will be deterministic for a given seed", func() {
			first, err := solver.NewRandom(10, 42).Solve(ctx, atLeastCores(12), candidates, nil, 2)
			Expect(err).To(BeNil())
			second, err := solver.NewRandom(10, 42).Solve(ctx, atLeastCores(12), candidates, nil, 2)
			Expect(err).To(BeNil())

			Expect(first.IsNoSolution()).To(Equal(second.IsNoSolution()))
			Expect(first.Cost().Equal(second.Cost())).To(BeTrue())
		})
	})

	Context("Registry", func() {
		It("Will create strategies by name", func() {
			registry, err := solver.NewRegistryFromNames([]string{"bestfit", "enumeration", "random"}, solver.Options{})
			Expect(err).To(BeNil())
			Expect(registry.Len()).To(Equal(3))

			strategy, ok := registry.Get(solver.EnumerationName)
			Expect(ok).To(BeTrue())
			Expect(strategy.Name()).To(Equal(solver.EnumerationName))

			names := make([]string, 0, 3)
			for _, s := range registry.Solvers() {
				names = append(names, s.Name())
			}
			Expect(names).To(Equal([]string{"bestfit", "enumeration", "random"}))
		})

		It("Will reject unknown and duplicate strategies", func() {
			_, err := solver.NewRegistryFromNames([]string{"simulated-annealing"}, solver.Options{})
			Expect(errors.Is(err, solver.ErrUnknownStrategy)).To(BeTrue())

			_, err = solver.NewRegistryFromNames([]string{"bestfit", "bestfit"}, solver.Options{})
			Expect(errors.Is(err, solver.ErrDuplicateStrategy)).To(BeTrue())
		})
	})
})
