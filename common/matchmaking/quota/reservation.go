package quota

import (
	"context"
	"errors"

	"github.com/scusemua/cloud-matchmaker/common/matchmaking"
)

// ReservationState is the state of a Reservation.
type ReservationState string

const (
	// Pending reservations mark the candidates that the user's current solve offered to the solvers.
	Pending ReservationState = "pending"

	// Held reservations mark the candidates of the user's most recently accepted solution, which may
	// not be provisioned yet.
	Held ReservationState = "held"
)

var (
	ErrInvalidReservations = errors.New("invalid reservation state")
)

// Reservation records quota that is reserved for a candidate on behalf of a user.
//
// A Reservation carries the resources and placement of its candidate, so that it can be accounted for
// even when the candidate is no longer generated from the current catalog.
type Reservation struct {
	CandidateID string           `json:"candidate_id"`
	State       ReservationState `json:"state"`
	Count       int              `json:"count"`

	CloudID       string   `json:"cloud_id"`
	LocationScope []string `json:"location_scope"`
	Cores         int      `json:"cores"`
	RamMB         int64    `json:"ram_mb"`
}

// newReservation creates a Reservation for count instances of the given candidate.
func newReservation(candidate *matchmaking.NodeCandidate, state ReservationState, count int) Reservation {
	p := placementOf(candidate)

	return Reservation{
		CandidateID:   candidate.ID(),
		State:         state,
		Count:         count,
		CloudID:       p.cloudId,
		LocationScope: p.scope,
		Cores:         int(p.cores),
		RamMB:         p.ramMB,
	}
}

// placement returns the placement of the Reservation's candidate.
func (r Reservation) placement() placement {
	return placement{
		cloudId: r.CloudID,
		scope:   r.LocationScope,
		cores:   int64(r.Cores),
		ramMB:   r.RamMB,
	}
}

// ReservationStore persists the reservations of each user.
//
// Stores may expire the reservations of a user some time after they were last updated.
type ReservationStore interface {
	// Load returns the reservations of the given user.
	Load(ctx context.Context, userId string) ([]Reservation, error)

	// Update atomically replaces the reservations of the given user with the result of update.
	Update(ctx context.Context, userId string, update func(current []Reservation) []Reservation) error
}
