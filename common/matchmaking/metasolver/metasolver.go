package metasolver

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/scusemua/cloud-matchmaker/common/catalog"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/constraint"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/generator"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/price"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking/quota"
	"github.com/scusemua/cloud-matchmaker/common/utils"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultSolvingTime = 60 * time.Second
)

var (
	ErrNoStrategies = errors.New("at least one solver strategy is required")
)

// Options configures a MetaSolver.
type Options struct {
	// SolvingTime is the deadline shared by every strategy of a solve.
	SolvingTime time.Duration

	// Workers bounds the number of strategies that run at the same time. Zero means one worker per strategy.
	Workers int

	// ExpectedUsers sizes the per-user candidate cache.
	ExpectedUsers int

	// Metrics receives the measurements of the MetaSolver. Nil disables metrics.
	Metrics MetricsProvider
}

// strategyResult is the outcome of a single strategy.
type strategyResult struct {
	index    int
	strategy string
	solution *matchmaking.Solution
	err      error
}

// MetaSolver runs every registered solver strategy against the candidates of a user and selects the
// best of their solutions.
//
// Only one solve is in progress at any time. Concurrent callers wait for their turn.
type MetaSolver struct {
	models    matchmaking.ModelGenerator
	evaluator matchmaking.Evaluator
	solvers   []matchmaking.Solver
	quotas    *quota.Manager

	prices     *price.IndexCache
	candidates *generator.CandidateCache

	// catalogs maps each user to the ID of the catalog snapshot of their most recent solve.
	catalogs cmap.ConcurrentMap[string, string]

	solvingTime time.Duration
	workers     *semaphore.Weighted
	turn        *semaphore.Weighted

	metrics MetricsProvider

	log logger.Logger
}

// NewMetaSolver creates a new MetaSolver.
func NewMetaSolver(models matchmaking.ModelGenerator, evaluator matchmaking.Evaluator, solvers []matchmaking.Solver,
	quotas *quota.Manager, opts Options) (*MetaSolver, error) {

	if len(solvers) == 0 {
		return nil, ErrNoStrategies
	}

	if opts.SolvingTime <= 0 {
		opts.SolvingTime = DefaultSolvingTime
	}

	if opts.Workers <= 0 {
		opts.Workers = len(solvers)
	}

	var metrics MetricsProvider = noopMetrics{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}

	m := &MetaSolver{
		models:      models,
		evaluator:   evaluator,
		solvers:     solvers,
		quotas:      quotas,
		candidates:  generator.NewCandidateCache(opts.ExpectedUsers),
		catalogs:    cmap.New[string](),
		solvingTime: opts.SolvingTime,
		workers:     semaphore.NewWeighted(int64(opts.Workers)),
		turn:        semaphore.NewWeighted(1),
		metrics:     metrics,
	}

	m.prices = price.NewIndexCache(func(index *price.Index) {
		m.metrics.IncrementPriceIndexBuilds()
	})

	config.InitLogger(&m.log, m)

	return m, nil
}

// Solve returns the best solution that the strategies found for the given constraint set within the
// solving time.
//
// Solve returns the no-solution sentinel if no strategy found a feasible solution, or if ctx is cancelled
// while the solve is waiting or in progress. Errors wrap matchmaking.ErrModelGeneration if the catalog of
// the user could not be obtained or an existing node no longer resolves, and matchmaking.ErrConstraintParse
// if a requirement is malformed.
func (m *MetaSolver) Solve(ctx context.Context, constraints *matchmaking.ConstraintSet, userId string) (*matchmaking.Solution, error) {
	if userId == "" {
		return nil, matchmaking.ErrEmptyUserId
	}

	if err := m.turn.Acquire(ctx, 1); err != nil {
		m.log.Warn("Interrupted while waiting to solve for user \"%s\": %v", userId, err)
		return matchmaking.NoSolution(), nil
	}
	defer m.turn.Release(1)

	startTime := time.Now()
	solution, err := m.solve(ctx, constraints, userId)

	switch {
	case err != nil:
		m.metrics.ObserveSolve(OutcomeFailed, time.Since(startTime))
	case solution.IsNoSolution():
		m.metrics.ObserveSolve(OutcomeNoSolution, time.Since(startTime))
	case solution.IsOptimal():
		m.metrics.ObserveSolve(OutcomeOptimal, time.Since(startTime))
	default:
		m.metrics.ObserveSolve(OutcomeSolved, time.Since(startTime))
	}

	return solution, err
}

func (m *MetaSolver) solve(ctx context.Context, constraints *matchmaking.ConstraintSet, userId string) (*matchmaking.Solution, error) {
	targetSize := constraints.TargetSize()
	m.log.Debug("Solving for user \"%s\" with target size %d, %d existing node(s), %d requirement(s), and %d quota(s).",
		userId, targetSize, len(constraints.ExistingNodes), len(constraints.Requirements), len(constraints.Quotas))

	cat, err := m.generateModel(ctx, userId)
	if err != nil {
		if ctx.Err() != nil {
			return m.interrupted(userId, err), nil
		}
		return nil, err
	}

	checker, err := m.compile(constraints.Requirements)
	if err != nil {
		return nil, err
	}

	startGeneration := time.Now()
	pipeline := m.candidates.Wrap(userId, cat.ID(), constraints.Fingerprint(),
		m.observe(StageConstraint, constraint.NewFilter(
			m.observe(StageQuota, m.quotas.Filter(
				m.observe(StageGenerated, generator.NewDefaultGenerator(cat, m.prices)),
				constraints)),
			checker)))

	candidates, err := pipeline.Candidates(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return m.interrupted(userId, err), nil
		}
		return nil, err
	}

	m.log.Debug("Generated %d possible candidate(s) for user \"%s\" in %v.", candidates.Len(), userId, time.Since(startGeneration))

	if candidates.IsEmpty() {
		m.log.Info(utils.YellowStyle.Render("No possible candidates for user \"%s\". Returning without invoking any solver."), userId)
		m.releasePending(ctx, userId)
		return matchmaking.NoSolution(), nil
	}

	existing, err := existingSolution(constraints.ExistingNodes, candidates)
	if err != nil {
		return nil, err
	}

	if err = m.quotas.Offer(ctx, userId, candidates); err != nil {
		m.log.Error("Failed to record the pending reservations of user \"%s\": %v", userId, err)
	}

	combined := matchmaking.AllOf(checker, m.quotas.Checker(constraints))
	validator := constraint.NewFilter(nil, combined)

	startSolving := time.Now()
	results := m.runStrategies(ctx, combined, candidates, existing, targetSize)

	if ctx.Err() != nil {
		return m.interrupted(userId, ctx.Err()), nil
	}

	best := m.selectSolution(results, validator, existing)
	if best.IsNoSolution() {
		m.log.Info(utils.YellowStyle.Render("No solution found for user \"%s\"."), userId)
	}

	best = best.WithElapsed(time.Since(startSolving))

	if err = m.quotas.EvictBySolution(ctx, best, userId); err != nil {
		m.log.Error("Failed to update the reservations of user \"%s\": %v", userId, err)
	}

	return best, nil
}

// NodeCandidates returns the candidates of the user's catalog that satisfy every per-node requirement.
//
// Unlike Solve, NodeCandidates neither applies quotas nor consults the candidate cache.
func (m *MetaSolver) NodeCandidates(ctx context.Context, userId string, requirements []string) (*matchmaking.NodeCandidates, error) {
	if userId == "" {
		return nil, matchmaking.ErrEmptyUserId
	}

	cat, err := m.generateModel(ctx, userId)
	if err != nil {
		return nil, err
	}

	checker, err := m.compile(requirements)
	if err != nil {
		return nil, err
	}

	return constraint.NewFilter(generator.NewDefaultGenerator(cat, m.prices), checker).Candidates(ctx)
}

// generateModel obtains the catalog of the user and drops the price indices of catalog snapshots that
// are no longer in use.
func (m *MetaSolver) generateModel(ctx context.Context, userId string) (*catalog.Catalog, error) {
	cat, err := m.models.GenerateModel(ctx, userId)
	if err != nil {
		if errors.Is(err, matchmaking.ErrModelGeneration) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", matchmaking.ErrModelGeneration, err)
	}

	if cat == nil {
		return nil, fmt.Errorf("%w: no catalog for user \"%s\"", matchmaking.ErrModelGeneration, userId)
	}

	if previous, loaded := m.catalogs.Get(userId); !loaded || previous != cat.ID() {
		m.catalogs.Set(userId, cat.ID())

		if loaded {
			inUse := make(map[string]struct{})
			for item := range m.catalogs.IterBuffered() {
				inUse[item.Val] = struct{}{}
			}
			m.prices.Retain(inUse)
		}
	}

	return cat, nil
}

func (m *MetaSolver) compile(requirements []string) (matchmaking.ConstraintChecker, error) {
	checker, err := m.evaluator.Compile(requirements)
	if err != nil {
		if errors.Is(err, matchmaking.ErrConstraintParse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", matchmaking.ErrConstraintParse, err)
	}

	return checker, nil
}

// observe records the number of candidates produced by source under the given stage.
func (m *MetaSolver) observe(stage string, source matchmaking.CandidateSource) matchmaking.CandidateSource {
	return matchmaking.CandidateSourceFunc(func(ctx context.Context) (*matchmaking.NodeCandidates, error) {
		candidates, err := source.Candidates(ctx)
		if err == nil {
			m.metrics.SetNumCandidates(stage, candidates.Len())
		}
		return candidates, err
	})
}

// existingSolution resolves the existing nodes against the given candidates.
//
// It returns nil if there are no existing nodes.
func existingSolution(nodes []matchmaking.ExistingNode, candidates *matchmaking.NodeCandidates) (*matchmaking.Solution, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	resolved := make([]*matchmaking.NodeCandidate, 0, len(nodes))
	for _, node := range nodes {
		if node.NodeCandidateID == "" {
			return nil, fmt.Errorf("%w: NodeCandidate for node %s is unknown.", matchmaking.ErrModelGeneration, node.ID)
		}

		candidate, ok := candidates.ByID(node.NodeCandidateID)
		if !ok {
			return nil, fmt.Errorf("%w: NodeCandidate with id %s is no longer valid.", matchmaking.ErrModelGeneration, node.NodeCandidateID)
		}

		resolved = append(resolved, candidate)
	}

	return matchmaking.NewSolution(resolved, false), nil
}

// runStrategies runs every strategy under the shared deadline and returns the results that were
// available when the last strategy finished or the deadline passed. Results are returned in the order
// in which the strategies were registered.
func (m *MetaSolver) runStrategies(ctx context.Context, checker matchmaking.ConstraintChecker, candidates *matchmaking.NodeCandidates,
	existing *matchmaking.Solution, targetSize int) []strategyResult {

	deadlineCtx, cancel := context.WithTimeout(ctx, m.solvingTime)
	defer cancel()

	// Buffered so that stragglers never block once the results are no longer consulted.
	resultChan := make(chan strategyResult, len(m.solvers))
	for i, strategy := range m.solvers {
		go m.runStrategy(deadlineCtx, i, strategy, checker, candidates, existing, targetSize, resultChan)
	}

	completed := make([]*strategyResult, len(m.solvers))
	numCompleted := 0

collect:
	for numCompleted < len(m.solvers) {
		select {
		case result := <-resultChan:
			completed[result.index] = &result
			numCompleted++
		case <-deadlineCtx.Done():
			for i, strategy := range m.solvers {
				if completed[i] == nil {
					m.log.Warn(utils.StrategyStyle(ResultTimeout).Render("Strategy \"%s\" did not finish within %v."),
						strategy.Name(), m.solvingTime)
					m.metrics.ObserveStrategyResult(strategy.Name(), ResultTimeout)
				}
			}
			break collect
		}
	}

	results := make([]strategyResult, 0, numCompleted)
	for _, result := range completed {
		if result != nil {
			results = append(results, *result)
		}
	}

	return results
}

// runStrategy runs a single strategy. Panics are recovered and reported as faults.
func (m *MetaSolver) runStrategy(ctx context.Context, index int, strategy matchmaking.Solver, checker matchmaking.ConstraintChecker,
	candidates *matchmaking.NodeCandidates, existing *matchmaking.Solution, targetSize int, resultChan chan<- strategyResult) {

	result := strategyResult{index: index, strategy: strategy.Name()}
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("Strategy \"%s\" panicked: %v\n%s", strategy.Name(), r, string(debug.Stack()))
			result.solution = nil
			result.err = fmt.Errorf("%w: %s panicked: %v", matchmaking.ErrStrategyFault, strategy.Name(), r)
		}

		resultChan <- result
	}()

	if err := m.workers.Acquire(ctx, 1); err != nil {
		result.err = err
		return
	}
	defer m.workers.Release(1)

	result.solution, result.err = strategy.Solve(ctx, checker, candidates, existing, targetSize)
}

// selectSolution picks the result of the first strategy that asserted optimality, or else the cheapest
// feasible result. Results that fail re-validation are discarded.
func (m *MetaSolver) selectSolution(results []strategyResult, validator *constraint.Filter, existing *matchmaking.Solution) *matchmaking.Solution {
	var best *matchmaking.Solution
	for _, result := range m.feasible(results, validator, existing) {
		if result.IsOptimal() {
			m.log.Info(utils.OptimalStyle.Render("Strategy \"%s\" found optimal solution %v."), result.Strategy(), result)
			return result
		}

		if best == nil || result.IsBetterThan(best) {
			best = result
		}
	}

	if best == nil {
		return matchmaking.NoSolution()
	}

	m.log.Info("No optimal solution was found. Using the best solution %v of strategy \"%s\".", best, best.Strategy())
	return best
}

// feasible returns the solutions of the given results that are feasible, in the order of the results.
func (m *MetaSolver) feasible(results []strategyResult, validator *constraint.Filter, existing *matchmaking.Solution) []*matchmaking.Solution {
	solutions := make([]*matchmaking.Solution, 0, len(results))
	for _, result := range results {
		if result.err != nil {
			m.log.Warn(utils.StrategyStyle(ResultFault).Render("Strategy \"%s\" failed: %v"), result.strategy, result.err)
			m.metrics.ObserveStrategyResult(result.strategy, ResultFault)
			continue
		}

		if result.solution == nil || result.solution.IsNoSolution() {
			m.log.Debug(utils.StrategyStyle(ResultInfeasible).Render("Strategy \"%s\" found no solution."), result.strategy)
			m.metrics.ObserveStrategyResult(result.strategy, ResultInfeasible)
			continue
		}

		ok, err := validator.Check(result.solution)
		if ok && existing != nil {
			ok = result.solution.ContainsAll(existing.Candidates())
		}

		if err != nil || !ok {
			m.log.Warn(utils.StrategyStyle(ResultInfeasible).Render("Discarding solution %v of strategy \"%s\", as it violates the constraints (err=%v)."),
				result.solution, result.strategy, err)
			m.metrics.ObserveStrategyResult(result.strategy, ResultInfeasible)
			continue
		}

		m.log.Debug(utils.StrategyStyle(ResultFeasible).Render("Strategy \"%s\" found solution %v."), result.strategy, result.solution)
		m.metrics.ObserveStrategyResult(result.strategy, ResultFeasible)
		solutions = append(solutions, result.solution.WithStrategy(result.strategy))
	}

	return solutions
}

// interrupted handles a solve whose context was cancelled.
func (m *MetaSolver) interrupted(userId string, err error) *matchmaking.Solution {
	m.log.Warn("Solve for user \"%s\" was interrupted: %v", userId, err)
	return matchmaking.NoSolution()
}

// releasePending releases the pending reservations of the user.
func (m *MetaSolver) releasePending(ctx context.Context, userId string) {
	if err := m.quotas.EvictBySolution(ctx, matchmaking.NoSolution(), userId); err != nil {
		m.log.Error("Failed to release the pending reservations of user \"%s\": %v", userId, err)
	}
}

// Strategies returns the names of the registered strategies.
func (m *MetaSolver) Strategies() []string {
	names := make([]string, 0, len(m.solvers))
	for _, strategy := range m.solvers {
		names = append(names, strategy.Name())
	}
	return names
}

// InvalidateUser discards the cached candidates of the given user.
func (m *MetaSolver) InvalidateUser(userId string) {
	m.candidates.Invalidate(userId)
}
