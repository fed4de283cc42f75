package rating

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Reservation claims the right to rate one booking as one user
type Reservation struct {
	BookingID      string    `dynamodbav:"booking_id"`
	UserID         string    `dynamodbav:"user_id"`
	PhotographerID string    `dynamodbav:"photographer_id"`
	Rating         int       `dynamodbav:"rating"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
}

// Key identifies the (booking, user) pair
func (r Reservation) Key() string {
	return fmt.Sprintf("%s#%s", r.BookingID, r.UserID)
}

// Ledger records which (booking, user) pairs already hold a rating
type Ledger interface {
	// Reserve claims the pair; false means it is already claimed
	Reserve(ctx context.Context, r Reservation) (bool, error)
	// Release gives the pair back after a failed submission
	Release(ctx context.Context, r Reservation) error
}

// MemoryLedger keeps reservations in process memory
type MemoryLedger struct {
	mu    sync.Mutex
	taken map[string]Reservation
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{taken: make(map[string]Reservation)}
}

func (m *MemoryLedger) Reserve(_ context.Context, r Reservation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.taken[r.Key()]; ok {
		return false, nil
	}
	m.taken[r.Key()] = r
	return true, nil
}

func (m *MemoryLedger) Release(_ context.Context, r Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.taken, r.Key())
	return nil
}
