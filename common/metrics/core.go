package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/gin-gonic/contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scusemua/cloud-matchmaker/common/utils"
)

const (
	Namespace = "matchmaker"
)

var (
	ErrManagerAlreadyRunning = errors.New("the MatchmakerPrometheusManager is already running")
	ErrManagerNotRunning     = errors.New("the MatchmakerPrometheusManager is not running")
	ErrMetricsNotInitialized = errors.New("the MatchmakerPrometheusManager has not been initialized yet")
)

// MatchmakerPrometheusManager registers the metrics of the matchmaker with Prometheus and serves them
// over HTTP.
type MatchmakerPrometheusManager struct {
	log logger.Logger

	registry          *prometheus.Registry
	prometheusHandler http.Handler
	engine            *gin.Engine
	httpServer        *http.Server

	// SolveLatencyMillisecondsVec is a histogram of the duration of solves.
	//
	// This metric requires the following labels:
	//
	// - "outcome": "solved", "optimal", "no_solution", or "failed".
	SolveLatencyMillisecondsVec *prometheus.HistogramVec

	// StrategyResultsCounterVec counts the results of the individual strategies.
	//
	// This metric requires the following labels:
	//
	// - "strategy": the name of the strategy.
	//
	// - "result": "feasible", "infeasible", "fault", or "timeout".
	StrategyResultsCounterVec *prometheus.CounterVec

	// NumCandidatesGaugeVec is the number of candidates that left each stage of the candidate pipeline
	// during the most recent solve.
	NumCandidatesGaugeVec *prometheus.GaugeVec

	// PriceIndexBuildsCounter counts the price indices that were built.
	PriceIndexBuildsCounter prometheus.Counter

	port int
	mu   sync.Mutex

	// serving indicates whether the manager has been started and is serving requests.
	serving            bool
	metricsInitialized bool
}

// NewMatchmakerPrometheusManager creates a new MatchmakerPrometheusManager that serves metrics on the
// given port. A port of zero or less disables the HTTP server.
func NewMatchmakerPrometheusManager(port int) *MatchmakerPrometheusManager {
	registry := prometheus.NewRegistry()

	manager := &MatchmakerPrometheusManager{
		port:              port,
		registry:          registry,
		prometheusHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		serving:           false,
	}
	config.InitLogger(&manager.log, manager)
	return manager
}

// IsRunning returns true if the manager has been started and is serving metrics.
func (m *MatchmakerPrometheusManager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.serving
}

// Start registers the metrics with Prometheus and begins serving them via an HTTP endpoint.
func (m *MatchmakerPrometheusManager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.serving {
		m.log.Warn("MatchmakerPrometheusManager is already running.")
		return ErrManagerAlreadyRunning
	}

	if !m.metricsInitialized {
		if err := m.initializeMetrics(); err != nil {
			return err
		}
	}

	m.serving = true
	m.initializeHttpServer()

	return nil
}

// Stop shuts down the HTTP server.
func (m *MatchmakerPrometheusManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.serving {
		m.log.Warn("MatchmakerPrometheusManager is not running.")
		return ErrManagerNotRunning
	}

	m.serving = false
	if m.httpServer == nil {
		return nil
	}

	if err := m.httpServer.Shutdown(context.Background()); err != nil {
		m.log.Error("Failed to cleanly shutdown the HTTP server: %v", err)
		return err
	}

	return nil
}

// Handler returns the HTTP handler of the manager. It is nil until the manager has been started.
func (m *MatchmakerPrometheusManager) Handler() http.Handler {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		return nil
	}

	return m.engine
}

// HandleRequest handles Prometheus HTTP requests (when Prometheus is scraping for metrics).
func (m *MatchmakerPrometheusManager) HandleRequest(c *gin.Context) {
	m.prometheusHandler.ServeHTTP(c.Writer, c.Request)
}

func (m *MatchmakerPrometheusManager) initializeHttpServer() {
	m.engine = gin.New()

	m.engine.Use(gin.Recovery())
	m.engine.Use(cors.Default())

	m.engine.GET("/metrics", m.HandleRequest)

	if m.port <= 0 {
		m.log.Debug("Prometheus Port is set to %d. Not serving HTTP server.", m.port)
		return
	}

	address := fmt.Sprintf("0.0.0.0:%d", m.port)
	m.httpServer = &http.Server{
		Addr:    address,
		Handler: m.engine,
	}

	go func() {
		m.log.Debug("Serving Prometheus metrics at %s", address)
		if err := m.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error(utils.RedStyle.Render("HTTP Server failed to listen on '%s'. Error: %v"), address, err)
		}
	}()
}

func (m *MatchmakerPrometheusManager) initializeMetrics() error {
	m.SolveLatencyMillisecondsVec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "solve_latency_milliseconds",
		Help:      "The latency, in milliseconds, of solving a constraint set, from dispatching the strategies to selecting a solution.",
		Buckets:   []float64{1, 5, 10, 50, 100, 250, 500, 1000, 5000, 10e3, 30e3, 60e3, 120e3},
	}, []string{"outcome"})

	m.StrategyResultsCounterVec = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "strategy_results_total",
		Help:      "The number of results produced by each solver strategy, by kind of result.",
	}, []string{"strategy", "result"})

	m.NumCandidatesGaugeVec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "candidates",
		Help:      "The number of node candidates that left each stage of the candidate pipeline during the most recent solve.",
	}, []string{"stage"})

	m.PriceIndexBuildsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "price_index_builds_total",
		Help:      "The number of price indices that were built from catalog snapshots.",
	})

	if err := m.registry.Register(m.SolveLatencyMillisecondsVec); err != nil {
		m.log.Error("Failed to register 'Solve Latency Milliseconds' metric because: %v", err)
		return err
	}

	if err := m.registry.Register(m.StrategyResultsCounterVec); err != nil {
		m.log.Error("Failed to register 'Strategy Results' metric because: %v", err)
		return err
	}

	if err := m.registry.Register(m.NumCandidatesGaugeVec); err != nil {
		m.log.Error("Failed to register 'Number of Candidates' metric because: %v", err)
		return err
	}

	if err := m.registry.Register(m.PriceIndexBuildsCounter); err != nil {
		m.log.Error("Failed to register 'Price Index Builds' metric because: %v", err)
		return err
	}

	m.metricsInitialized = true
	return nil
}

// ObserveSolve records the latency and the outcome of a solve.
func (m *MatchmakerPrometheusManager) ObserveSolve(outcome string, latency time.Duration) {
	if !m.metricsInitialized {
		m.log.Warn("Cannot record solve latency observation as metrics have not yet been initialized...")
		return
	}

	m.SolveLatencyMillisecondsVec.
		With(prometheus.Labels{"outcome": outcome}).
		Observe(float64(latency.Milliseconds()))
}

// ObserveStrategyResult records the result of one strategy.
func (m *MatchmakerPrometheusManager) ObserveStrategyResult(strategy string, result string) {
	if !m.metricsInitialized {
		m.log.Warn("Cannot record strategy result as metrics have not yet been initialized...")
		return
	}

	m.StrategyResultsCounterVec.
		With(prometheus.Labels{"strategy": strategy, "result": result}).
		Inc()
}

func (m *MatchmakerPrometheusManager) SetNumCandidates(stage string, numCandidates int) {
	if !m.metricsInitialized {
		return
	}

	m.NumCandidatesGaugeVec.With(prometheus.Labels{"stage": stage}).Set(float64(numCandidates))
}

func (m *MatchmakerPrometheusManager) IncrementPriceIndexBuilds() {
	if !m.metricsInitialized {
		return
	}

	m.PriceIndexBuildsCounter.Inc()
}
