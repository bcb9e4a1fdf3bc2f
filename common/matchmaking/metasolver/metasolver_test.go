package metasolver_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/constraint"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/metasolver"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/quota"
	"github.com/scusemua/cloud-matchmaker/common/mock_matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/testing"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

const userId = "alice"

type solveFunc func(ctx context.Context, cc matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
	existing *matchmaking.Solution, targetSize int) (*matchmaking.Solution, error)

// pick returns the candidates with the given hardware IDs, in the given order.
func pick(candidates *matchmaking.NodeCandidates, hardwareIds ...string) []*matchmaking.NodeCandidate {
	picked := make([]*matchmaking.NodeCandidate, 0, len(hardwareIds))
	for _, id := range hardwareIds {
		for _, candidate := range candidates.Slice() {
			if candidate.Hardware().ID == id {
				picked = append(picked, candidate)
				break
			}
		}
	}
	Expect(picked).To(HaveLen(len(hardwareIds)))
	return picked
}

// returning builds a solveFunc that returns a solution made of the given hardware.
func returning(optimal bool, hardwareIds ...string) solveFunc {
	return func(_ context.Context, _ matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
		_ *matchmaking.Solution, _ int) (*matchmaking.Solution, error) {
		return matchmaking.NewSolution(pick(candidates, hardwareIds...), optimal), nil
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
	results  map[string]string
	stages   map[string]int
	builds   int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{results: map[string]string{}, stages: map[string]int{}}
}

func (r *recordingMetrics) ObserveSolve(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) ObserveStrategyResult(strategy string, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[strategy] = result
}

func (r *recordingMetrics) SetNumCandidates(stage string, numCandidates int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[stage] = numCandidates
}

func (r *recordingMetrics) IncrementPriceIndexBuilds() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds++
}

var _ = Describe("MetaSolver", func() {
	var (
		ctx       context.Context
		mockCtrl  *gomock.Controller
		models    *mock_matchmaking.MockModelGenerator
		first     *mock_matchmaking.MockSolver
		second    *mock_matchmaking.MockSolver
		evaluator *constraint.CelEvaluator
		store     *quota.MemoryStore
		quotas    *quota.Manager
		metrics   *recordingMetrics
		cat       *catalog.Catalog
		opts      metasolver.Options
	)

	// newMetaSolver creates the MetaSolver under test once the options have been adjusted.
	newMetaSolver := func() *metasolver.MetaSolver {
		ms, err := metasolver.NewMetaSolver(models, evaluator, []matchmaking.Solver{first, second}, quotas, opts)
		Expect(err).To(BeNil())
		Expect(ms).ToNot(BeNil())
		return ms
	}

	BeforeEach(func() {
		var err error

		ctx = context.Background()
		mockCtrl = gomock.NewController(GinkgoT())

		builder := testing.NewCatalogBuilder()
		cloud := builder.Cloud("aws", catalog.PublicCloud)
		zone := cloud.Location("us-east-1a", "US", true, nil)
		small := cloud.Hardware("small", 2, 2048, nil)
		medium := cloud.Hardware("medium", 4, 4096, nil)
		large := cloud.Hardware("large", 8, 8192, nil)
		img := cloud.Image("ubuntu", catalog.Ubuntu, nil)
		cloud.Price(img, small, zone, "5")
		cloud.Price(img, medium, zone, "10")
		cloud.Price(img, large, zone, "15")
		cat = builder.Build()

		models = mock_matchmaking.NewMockModelGenerator(mockCtrl)
		models.EXPECT().GenerateModel(gomock.Any(), userId).Return(cat, nil).AnyTimes()

		first = mock_matchmaking.NewMockSolver(mockCtrl)
		first.EXPECT().Name().Return("first").AnyTimes()
		second = mock_matchmaking.NewMockSolver(mockCtrl)
		second.EXPECT().Name().Return("second").AnyTimes()

		evaluator, err = constraint.NewCelEvaluator()
		Expect(err).To(BeNil())

		store = quota.NewMemoryStore()
		quotas = quota.NewManager(store)
		metrics = newRecordingMetrics()

		opts = metasolver.Options{
			SolvingTime: 5 * time.Second,
			Metrics:     metrics,
		}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("Will refuse to be created without any strategy", func() {
		_, err := metasolver.NewMetaSolver(models, evaluator, nil, quotas, opts)
		Expect(errors.Is(err, metasolver.ErrNoStrategies)).To(BeTrue())
	})

	Context("Target size", func() {
		It("Will grow the fleet by one node by default", func() {
			ms := newMetaSolver()
			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Nil(), 1).DoAndReturn(returning(false, "small"))
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Nil(), 1).DoAndReturn(returning(false, "medium"))

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, userId)
			Expect(err).To(BeNil())
			Expect(solution.Size()).To(Equal(1))
			Expect(solution.Cost().Equal(decimal.NewFromInt(5))).To(BeTrue())
			Expect(solution.Strategy()).To(Equal("first"))
		})

		It("Will use the requested minimum size", func() {
			ms := newMetaSolver()
			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Nil(), 3).DoAndReturn(returning(false, "small", "small", "small"))
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Nil(), 3).DoAndReturn(returning(false, "small", "small", "medium"))

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{MinimumNodeSize: 3}, userId)
			Expect(err).To(BeNil())
			Expect(solution.Size()).To(Equal(3))
			Expect(solution.Cost().Equal(decimal.NewFromInt(15))).To(BeTrue())
		})
	})

	It("Will return the no-solution sentinel without invoking any strategy if there are no candidates", func() {
		ms := newMetaSolver()

		solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
			Requirements: []string{"nodes.all(n, n.hardware.cores > 100)"},
		}, userId)

		Expect(err).To(BeNil())
		Expect(solution.IsNoSolution()).To(BeTrue())
		Expect(metrics.outcomes).To(Equal([]string{metasolver.OutcomeNoSolution}))
		Expect(metrics.stages[metasolver.StageGenerated]).To(Equal(3))
		Expect(metrics.stages[metasolver.StageConstraint]).To(Equal(0))
	})

	Context("Existing nodes", func() {
		It("Will fail if an existing node references a candidate that is no longer offered", func() {
			ms := newMetaSolver()

			_, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
				ExistingNodes: []matchmaking.ExistingNode{{ID: "node-1", NodeCandidateID: "no-longer-offered"}},
			}, userId)

			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, matchmaking.ErrModelGeneration)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("NodeCandidate with id no-longer-offered is no longer valid."))
			Expect(matchmaking.ErrorCode(err)).To(Equal(400))
		})

		It("Will fail if an existing node has no candidate", func() {
			ms := newMetaSolver()

			_, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
				ExistingNodes: []matchmaking.ExistingNode{{ID: "node-1"}},
			}, userId)

			Expect(errors.Is(err, matchmaking.ErrModelGeneration)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("NodeCandidate for node node-1 is unknown."))
		})

		It("Will pass the resolved existing nodes to every strategy", func() {
			ms := newMetaSolver()

			candidates, err := ms.NodeCandidates(ctx, userId, nil)
			Expect(err).To(BeNil())
			medium := pick(candidates, "medium")[0]

			expectExisting := func(_ context.Context, _ matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
				existing *matchmaking.Solution, targetSize int) (*matchmaking.Solution, error) {
				defer GinkgoRecover()

				Expect(existing).ToNot(BeNil())
				Expect(existing.Candidates()).To(HaveLen(1))
				Expect(existing.Candidates()[0].ID()).To(Equal(medium.ID()))
				Expect(targetSize).To(Equal(2))

				return matchmaking.NewSolution(append(existing.Candidates(), pick(candidates, "small")...), false), nil
			}

			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), 2).DoAndReturn(expectExisting)
			// Omits the existing node, so it is discarded.
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), 2).DoAndReturn(returning(true, "small", "small"))

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
				ExistingNodes: []matchmaking.ExistingNode{{ID: "node-1", NodeCandidateID: medium.ID()}},
			}, userId)

			Expect(err).To(BeNil())
			Expect(solution.Strategy()).To(Equal("first"))
			Expect(solution.Cost().Equal(decimal.NewFromInt(15))).To(BeTrue())
			Expect(metrics.results["second"]).To(Equal(metasolver.ResultInfeasible))
		})
	})

	Context("Selecting a solution", func() {
		It("Will return the feasible solution when another strategy fails", func() {
			ms := newMetaSolver()
			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, errors.New("solver crashed"))
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(returning(false, "medium"))

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, userId)
			Expect(err).To(BeNil())
			Expect(solution.Cost().Equal(decimal.NewFromInt(10))).To(BeTrue())
			Expect(metrics.results["first"]).To(Equal(metasolver.ResultFault))
			Expect(metrics.results["second"]).To(Equal(metasolver.ResultFeasible))
		})

		It("Will isolate a strategy that panics", func() {
			ms := newMetaSolver()
			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(context.Context, matchmaking.ConstraintChecker, *matchmaking.NodeCandidates,
					*matchmaking.Solution, int) (*matchmaking.Solution, error) {
					panic("index out of range")
				})
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(returning(false, "medium"))

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, userId)
			Expect(err).To(BeNil())
			Expect(solution.Cost().Equal(decimal.NewFromInt(10))).To(BeTrue())
			Expect(metrics.results["first"]).To(Equal(metasolver.ResultFault))
		})

		It("Will prefer an optimal solution over a cheaper one", func() {
			ms := newMetaSolver()
			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(returning(false, "small"))
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(returning(true, "large"))

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, userId)
			Expect(err).To(BeNil())
			Expect(solution.IsOptimal()).To(BeTrue())
			Expect(solution.Cost().Equal(decimal.NewFromInt(15))).To(BeTrue())
			Expect(solution.Strategy()).To(Equal("second"))
			Expect(metrics.outcomes).To(Equal([]string{metasolver.OutcomeOptimal}))
		})

		It("Will discard solutions that violate the constraints", func() {
			ms := newMetaSolver()
			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(returning(false, "small"))
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(returning(false, "large"))

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
				Requirements: []string{"nodes.map(n, n.hardware.cores).sum() >= 8"},
			}, userId)

			Expect(err).To(BeNil())
			Expect(solution.Cost().Equal(decimal.NewFromInt(15))).To(BeTrue())
			Expect(metrics.results["first"]).To(Equal(metasolver.ResultInfeasible))
		})

		It("Will return the no-solution sentinel if no strategy finds a solution", func() {
			ms := newMetaSolver()
			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(matchmaking.NoSolution(), nil)
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, nil)

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, userId)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeTrue())
		})
	})

	Context("Deadline", func() {
		It("Will ignore strategies that do not finish in time", func() {
			opts.SolvingTime = 100 * time.Millisecond
			ms := newMetaSolver()

			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, _ matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
					_ *matchmaking.Solution, _ int) (*matchmaking.Solution, error) {
					<-ctx.Done()
					time.Sleep(50 * time.Millisecond)
					return matchmaking.NewSolution(pick(candidates, "small"), true), nil
				})
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(returning(false, "large"))

			start := time.Now()
			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, userId)
			Expect(err).To(BeNil())
			Expect(time.Since(start)).To(BeNumerically("<", 2*time.Second))
			Expect(solution.Strategy()).To(Equal("second"))
			Expect(solution.Cost().Equal(decimal.NewFromInt(15))).To(BeTrue())
			Expect(metrics.results["first"]).To(Equal(metasolver.ResultTimeout))
		})

		It("Will return the no-solution sentinel when interrupted", func() {
			ms := newMetaSolver()

			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			solution, err := ms.Solve(cancelled, &matchmaking.ConstraintSet{}, userId)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeTrue())
		})
	})

	Context("Errors", func() {
		It("Will report a catalog that cannot be obtained as a model generation error", func() {
			failing := mock_matchmaking.NewMockModelGenerator(mockCtrl)
			failing.EXPECT().GenerateModel(gomock.Any(), "bob").Return(nil, errors.New("catalog service unavailable"))

			ms, err := metasolver.NewMetaSolver(failing, evaluator, []matchmaking.Solver{first, second}, quotas, opts)
			Expect(err).To(BeNil())

			_, err = ms.Solve(ctx, &matchmaking.ConstraintSet{}, "bob")
			Expect(errors.Is(err, matchmaking.ErrModelGeneration)).To(BeTrue())
			Expect(metrics.outcomes).To(Equal([]string{metasolver.OutcomeFailed}))
		})

		It("Will report malformed requirements as a parse error", func() {
			ms := newMetaSolver()

			_, err := ms.Solve(ctx, &matchmaking.ConstraintSet{Requirements: []string{"nodes.all(n, "}}, userId)
			Expect(errors.Is(err, matchmaking.ErrConstraintParse)).To(BeTrue())
			Expect(matchmaking.ErrorCode(err)).To(Equal(400))
		})

		It("Will reject an empty user ID", func() {
			ms := newMetaSolver()

			_, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, "")
			Expect(errors.Is(err, matchmaking.ErrEmptyUserId)).To(BeTrue())
		})
	})

	Context("Quotas", func() {
		It("Will only offer candidates that fit within the quotas and hold the winning candidates", func() {
			ms := newMetaSolver()

			onlySmallAndMedium := func(_ context.Context, _ matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
				_ *matchmaking.Solution, _ int) (*matchmaking.Solution, error) {
				defer GinkgoRecover()

				Expect(candidates.Len()).To(Equal(2))
				for _, candidate := range candidates.Slice() {
					Expect(candidate.Hardware().ID).ToNot(Equal("large"))
				}
				return matchmaking.NewSolution(pick(candidates, "medium"), false), nil
			}

			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(onlySmallAndMedium)
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(onlySmallAndMedium)

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
				Quotas: []matchmaking.Quota{{Scope: matchmaking.CloudScope, ScopeID: "aws", Resource: matchmaking.CoresResource, Limit: 4}},
			}, userId)
			Expect(err).To(BeNil())
			Expect(solution.Cost().Equal(decimal.NewFromInt(10))).To(BeTrue())
			Expect(metrics.stages[metasolver.StageQuota]).To(Equal(2))

			reservations, err := quotas.Reservations(ctx, userId)
			Expect(err).To(BeNil())
			Expect(reservations).To(HaveLen(1))
			Expect(reservations[0].State).To(Equal(quota.Held))
			Expect(reservations[0].CandidateID).To(Equal(solution.Candidates()[0].ID()))
		})

		It("Will keep offering the candidate of an existing node that already exhausts a quota", func() {
			ms := newMetaSolver()

			listed, err := ms.NodeCandidates(ctx, userId, nil)
			Expect(err).To(BeNil())
			smallId := pick(listed, "small")[0].ID()

			keepExisting := func(_ context.Context, _ matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
				existing *matchmaking.Solution, _ int) (*matchmaking.Solution, error) {
				defer GinkgoRecover()

				Expect(candidates.Len()).To(Equal(1))
				Expect(existing.Size()).To(Equal(1))
				return matchmaking.NewSolution(existing.Candidates(), true), nil
			}

			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil()), 1).DoAndReturn(keepExisting)
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil()), 1).Return(matchmaking.NoSolution(), nil)

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
				ExistingNodes:   []matchmaking.ExistingNode{{ID: "node-1", NodeCandidateID: smallId}},
				MinimumNodeSize: 1,
				Quotas:          []matchmaking.Quota{{Scope: matchmaking.CloudScope, ScopeID: "aws", Resource: matchmaking.NodesResource, Limit: 1}},
			}, userId)
			Expect(err).To(BeNil())
			Expect(solution.IsNoSolution()).To(BeFalse())
			Expect(solution.Size()).To(Equal(1))
			Expect(solution.Candidates()[0].ID()).To(Equal(smallId))
			Expect(metrics.stages[metasolver.StageQuota]).To(Equal(1))
		})

		It("Will let a user solve the same request again before the previous solution is provisioned", func() {
			ms := newMetaSolver()

			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), 1).DoAndReturn(returning(false, "small")).Times(3)
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), 1).Return(matchmaking.NoSolution(), nil).Times(3)

			constraints := &matchmaking.ConstraintSet{
				Quotas: []matchmaking.Quota{{Scope: matchmaking.CloudScope, ScopeID: "aws", Resource: matchmaking.NodesResource, Limit: 1}},
			}

			for i := 0; i < 3; i++ {
				solution, err := ms.Solve(ctx, constraints, userId)
				Expect(err).To(BeNil())
				Expect(solution.IsNoSolution()).To(BeFalse())
				Expect(solution.Cost().Equal(decimal.NewFromInt(5))).To(BeTrue())
				Expect(metrics.stages[metasolver.StageQuota]).To(Equal(3))
			}

			reservations, err := quotas.Reservations(ctx, userId)
			Expect(err).To(BeNil())
			Expect(reservations).To(HaveLen(1))
			Expect(reservations[0].State).To(Equal(quota.Held))
			Expect(reservations[0].Count).To(Equal(1))
		})

		It("Will still return the solution when the reservations cannot be stored", func() {
			failingStore := mock_matchmaking.NewMockReservationStore(mockCtrl)
			failingStore.EXPECT().Update(gomock.Any(), userId, gomock.Any()).Return(errors.New("connection refused")).Times(2)

			ms, err := metasolver.NewMetaSolver(models, evaluator, []matchmaking.Solver{first, second}, quota.NewManager(failingStore), opts)
			Expect(err).To(BeNil())

			first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(returning(false, "medium"))
			second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(matchmaking.NoSolution(), nil)

			solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{
				Quotas: []matchmaking.Quota{{Scope: matchmaking.CloudScope, ScopeID: "aws", Resource: matchmaking.CoresResource, Limit: 4}},
			}, userId)
			Expect(err).To(BeNil())
			Expect(solution.Cost().Equal(decimal.NewFromInt(10))).To(BeTrue())
		})
	})

	It("Will serialize concurrent solves", func() {
		ms := newMetaSolver()

		var inFlight, maxInFlight atomic.Int32
		track := func(_ context.Context, _ matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
			_ *matchmaking.Solution, _ int) (*matchmaking.Solution, error) {
			current := inFlight.Add(1)
			defer inFlight.Add(-1)

			for {
				observed := maxInFlight.Load()
				if current <= observed || maxInFlight.CompareAndSwap(observed, current) {
					break
				}
			}

			time.Sleep(20 * time.Millisecond)
			return matchmaking.NewSolution(pick(candidates, "small"), false), nil
		}

		first.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(track).Times(3)
		second.EXPECT().Solve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(matchmaking.NoSolution(), nil).Times(3)

		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				solution, err := ms.Solve(ctx, &matchmaking.ConstraintSet{}, userId)
				Expect(err).To(BeNil())
				Expect(solution.IsNoSolution()).To(BeFalse())
			}()
		}
		wg.Wait()

		Expect(maxInFlight.Load()).To(Equal(int32(1)))
		Expect(metrics.builds).To(Equal(1))
	})

	It("Will list the candidates that satisfy the per-node requirements", func() {
		ms := newMetaSolver()

		candidates, err := ms.NodeCandidates(ctx, userId, []string{"nodes.all(n, n.hardware.cores >= 4)"})
		Expect(err).To(BeNil())
		Expect(candidates.Len()).To(Equal(2))

		for _, candidate := range candidates.Slice() {
			Expect(candidate.Hardware().Cores).To(BeNumerically(">=", 4))
		}
	})
})
