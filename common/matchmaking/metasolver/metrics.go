package metasolver

import "time"

const (
	OutcomeSolved     = "solved"
	OutcomeOptimal    = "optimal"
	OutcomeNoSolution = "no_solution"
	OutcomeFailed     = "failed"

	ResultFeasible   = "feasible"
	ResultInfeasible = "infeasible"
	ResultFault      = "fault"
	ResultTimeout    = "timeout"

	StageGenerated  = "generated"
	StageQuota      = "quota"
	StageConstraint = "constraint"
)

// MetricsProvider receives the measurements of the MetaSolver.
type MetricsProvider interface {
	// ObserveSolve records the latency and the outcome of a call to MetaSolver.Solve.
	ObserveSolve(outcome string, latency time.Duration)

	// ObserveStrategyResult records the result of one strategy during a solve.
	ObserveStrategyResult(strategy string, result string)

	// SetNumCandidates records the number of candidates that left the given stage of the pipeline.
	SetNumCandidates(stage string, numCandidates int)

	// IncrementPriceIndexBuilds records that a price index was built.
	IncrementPriceIndexBuilds()
}

// noopMetrics is used when no MetricsProvider is configured.
type noopMetrics struct{}

func (noopMetrics) ObserveSolve(string, time.Duration) {}
func (noopMetrics) ObserveStrategyResult(string, string) {}
func (noopMetrics) SetNumCandidates(string, int) {}
func (noopMetrics) IncrementPriceIndexBuilds() {}
