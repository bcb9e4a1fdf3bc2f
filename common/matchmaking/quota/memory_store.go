package quota

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"k8s.io/apimachinery/pkg/util/cache"
)

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type memoryEntry struct {
	reservations []Reservation
	updatedAt    time.Time
}

// MemoryStore is an in-process ReservationStore.
//
// If the ttl is positive, then the reservations of a user expire once they have not been updated for
// that long.
type MemoryStore struct {
	reservations cmap.ConcurrentMap[string, memoryEntry]
	ttl          time.Duration
	clock        cache.Clock
}

// NewMemoryStore creates a MemoryStore whose reservations never expire.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithTTL(0)
}

func NewMemoryStoreWithTTL(ttl time.Duration) *MemoryStore {
	return NewMemoryStoreWithClock(ttl, realClock{})
}

func NewMemoryStoreWithClock(ttl time.Duration, clock cache.Clock) *MemoryStore {
	return &MemoryStore{
		reservations: cmap.New[memoryEntry](),
		ttl:          ttl,
		clock:        clock,
	}
}

func (s *MemoryStore) Load(_ context.Context, userId string) ([]Reservation, error) {
	entry, ok := s.reservations.Get(userId)
	if !ok || s.expired(entry) {
		return []Reservation{}, nil
	}

	return cloneReservations(entry.reservations), nil
}

// Update applies update while holding the lock of the shard that contains the user.
func (s *MemoryStore) Update(_ context.Context, userId string, update func(current []Reservation) []Reservation) error {
	s.reservations.Upsert(userId, memoryEntry{}, func(exist bool, valueInMap memoryEntry, _ memoryEntry) memoryEntry {
		current := []Reservation{}
		if exist && !s.expired(valueInMap) {
			current = cloneReservations(valueInMap.reservations)
		}

		return memoryEntry{
			reservations: cloneReservations(update(current)),
			updatedAt:    s.clock.Now(),
		}
	})

	return nil
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return s.ttl > 0 && s.clock.Now().Sub(entry.updatedAt) >= s.ttl
}

func cloneReservations(reservations []Reservation) []Reservation {
	clone := make([]Reservation, len(reservations))
	copy(clone, reservations)
	return clone
}
