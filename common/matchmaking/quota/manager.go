package quota

import (
	"context"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"
	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

// Manager enforces the quotas of users and tracks the reservations that are made on their behalf.
//
// Quota usage is derived from the user's existing nodes alone. Reservations are advisory state for the
// subsystems that share the store: every solve records the candidates it offered as pending, and an
// accepted solution replaces them, along with whatever the user held before, with held reservations.
// A user's own reservations are superseded by the user's next solve and never count against the
// user's quotas.
type Manager struct {
	store ReservationStore

	log logger.Logger
}

// NewManager creates a new Manager that persists reservations in the given store.
func NewManager(store ReservationStore) *Manager {
	manager := &Manager{
		store: store,
	}

	config.InitLogger(&manager.log, manager)

	return manager
}

// Filter returns a Filter that removes the candidates of source that would exceed one of the quotas
// of the given constraint set.
func (m *Manager) Filter(source matchmaking.CandidateSource, constraints *matchmaking.ConstraintSet) *Filter {
	return newFilter(m, source, constraints)
}

// Baseline returns the usage of the given quotas before any new node is added, which is the usage of
// the existing nodes that resolve against the given candidates.
func (m *Manager) Baseline(constraints *matchmaking.ConstraintSet, candidates *matchmaking.NodeCandidates) *Usage {
	usage := newUsage(constraints.Quotas)
	if len(constraints.Quotas) == 0 {
		return usage
	}

	for _, node := range constraints.ExistingNodes {
		if candidate, ok := candidates.ByID(node.NodeCandidateID); ok {
			usage.add(placementOf(candidate), 1)
		}
	}

	return usage
}

// Checker returns a matchmaking.ConstraintChecker that rejects selections which would exceed one of the
// quotas of the given constraint set. It returns nil if the constraint set defines no quotas.
//
// Selections include the existing nodes, so the checker starts from zero usage.
func (m *Manager) Checker(constraints *matchmaking.ConstraintSet) matchmaking.ConstraintChecker {
	if len(constraints.Quotas) == 0 {
		return nil
	}

	return &checker{baseline: newUsage(constraints.Quotas)}
}

// Offer records a pending reservation for each of the given candidates, replacing the pending
// reservations of the user's previous solve. Held reservations are kept until EvictBySolution.
func (m *Manager) Offer(ctx context.Context, userId string, candidates *matchmaking.NodeCandidates) error {
	return m.store.Update(ctx, userId, func(current []Reservation) []Reservation {
		reservations := make([]Reservation, 0, len(current)+candidates.Len())
		for _, reservation := range current {
			if reservation.State == Held {
				reservations = append(reservations, reservation)
			}
		}

		for _, candidate := range candidates.Slice() {
			reservations = append(reservations, newReservation(candidate, Pending, 1))
		}

		return reservations
	})
}

// EvictBySolution records the reservations of the accepted solution and releases every other
// reservation of the user, including the held reservations of earlier solutions.
//
// Passing the no-solution sentinel releases the pending reservations and leaves the held ones intact
// until the store expires them.
func (m *Manager) EvictBySolution(ctx context.Context, solution *matchmaking.Solution, userId string) error {
	return m.store.Update(ctx, userId, func(current []Reservation) []Reservation {
		if solution == nil || solution.IsNoSolution() {
			held := make([]Reservation, 0, len(current))
			for _, reservation := range current {
				if reservation.State == Held {
					held = append(held, reservation)
				}
			}

			m.log.Debug("Released %d pending reservation(s) of user \"%s\".", len(current)-len(held), userId)
			return held
		}

		counts := make(map[string]int)
		chosen := make(map[string]*matchmaking.NodeCandidate)
		order := make([]string, 0, solution.Size())
		for _, candidate := range solution.Candidates() {
			if _, seen := chosen[candidate.ID()]; !seen {
				order = append(order, candidate.ID())
			}
			chosen[candidate.ID()] = candidate
			counts[candidate.ID()]++
		}

		reservations := make([]Reservation, 0, len(order))
		for _, id := range order {
			reservations = append(reservations, newReservation(chosen[id], Held, counts[id]))
		}

		m.log.Debug("Holding %d reservation(s) of user \"%s\"; released %d.", len(reservations), userId, len(current))
		return reservations
	})
}

// Reservations returns the reservations of the given user.
func (m *Manager) Reservations(ctx context.Context, userId string) ([]Reservation, error) {
	return m.store.Load(ctx, userId)
}

// checker rejects selections that exceed a quota.
type checker struct {
	baseline *Usage
}

func (c *checker) CheckNode(_ *matchmaking.NodeCandidate) (bool, error) {
	return true, nil
}

func (c *checker) CheckSolution(selection []*matchmaking.NodeCandidate) (bool, error) {
	usage := c.baseline.clone()
	for _, candidate := range selection {
		usage.add(placementOf(candidate), 1)
	}

	for i, q := range usage.quotas {
		if usage.used[i] > q.Limit {
			return false, nil
		}
	}

	return true, nil
}
