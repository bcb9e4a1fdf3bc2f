package solver

import (
	"fmt"
	"sync"

	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

// Options configures the strategies created by NewRegistryFromNames.
type Options struct {
	BestFitIterations int
	BestFitWidth      int
	EnumerationLimit  int
	RandomSamples     int
	Seed              int64
}

// Registry holds the solver strategies that the orchestrator runs, in registration order.
type Registry struct {
	mu      sync.RWMutex
	solvers []matchmaking.Solver
	byName  map[string]matchmaking.Solver
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]matchmaking.Solver),
	}
}

// NewRegistryFromNames creates a Registry containing the named strategies.
func NewRegistryFromNames(names []string, opts Options) (*Registry, error) {
	registry := NewRegistry()
	for _, name := range names {
		strategy, err := New(name, opts)
		if err != nil {
			return nil, err
		}

		if err = registry.Register(strategy); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// New creates the strategy with the given name.
func New(name string, opts Options) (matchmaking.Solver, error) {
	switch name {
	case BestFitName:
		return NewBestFit(opts.BestFitIterations, opts.BestFitWidth, opts.Seed), nil
	case EnumerationName:
		return NewEnumeration(opts.EnumerationLimit), nil
	case RandomName:
		return NewRandom(opts.RandomSamples, opts.Seed), nil
	default:
		return nil, fmt.Errorf("%w: \"%s\"", ErrUnknownStrategy, name)
	}
}

// Register adds the given strategy to the Registry.
func (r *Registry) Register(strategy matchmaking.Solver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, loaded := r.byName[strategy.Name()]; loaded {
		return fmt.Errorf("%w: \"%s\"", ErrDuplicateStrategy, strategy.Name())
	}

	r.byName[strategy.Name()] = strategy
	r.solvers = append(r.solvers, strategy)
	return nil
}

// Get returns the strategy registered under the given name.
func (r *Registry) Get(name string) (matchmaking.Solver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, ok := r.byName[name]
	return strategy, ok
}

// Solvers returns a copy of the registered strategies in registration order.
func (r *Registry) Solvers() []matchmaking.Solver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	solvers := make([]matchmaking.Solver, len(r.solvers))
	copy(solvers, r.solvers)
	return solvers
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.solvers)
}
