package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/photobook/gateway-api/internal/models"
)

// ErrViewClosed is returned when a backend result arrives after the view
// that requested it was closed. The result is discarded.
var ErrViewClosed = errors.New("booking view closed, result discarded")

// View is a photographer's local booking list. Backend calls issued on
// behalf of a view are cancelled and their results ignored once the view
// is closed.
type View struct {
	mu       sync.Mutex
	bookings []models.Booking
	index    map[string]int
	seq      map[string]uint64
	closed   bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewView wraps an already-fetched booking list
func NewView(bookings []models.Booking) *View {
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		bookings: make([]models.Booking, len(bookings)),
		index:    make(map[string]int, len(bookings)),
		seq:      make(map[string]uint64, len(bookings)),
		ctx:      ctx,
		cancel:   cancel,
	}
	copy(v.bookings, bookings)
	for i, b := range v.bookings {
		v.index[b.ID] = i
	}
	return v
}

// Bookings returns a snapshot of the list
func (v *View) Bookings() []models.Booking {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Booking, len(v.bookings))
	copy(out, v.bookings)
	return out
}

// Get returns one booking by id
func (v *View) Get(id string) (models.Booking, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i, ok := v.index[id]
	if !ok {
		return models.Booking{}, false
	}
	return v.bookings[i], true
}

// Close ends the view's lifetime
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.cancel()
}

// Closed reports whether Close has been called
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// bind derives a context that is cancelled when either ctx or the view ends
func (v *View) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// apply sets the status optimistically and returns the previous status
// with the write sequence number that rollback must match.
func (v *View) apply(id string, status models.BookingStatus) (models.BookingStatus, uint64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i, ok := v.index[id]
	if !ok || v.closed {
		return "", 0, false
	}
	prev := v.bookings[i].Status
	v.bookings[i].Status = status
	v.seq[id]++
	return prev, v.seq[id], true
}

// rollback restores prev unless a later write to the booking superseded ours
func (v *View) rollback(id string, prev models.BookingStatus, seq uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	i, ok := v.index[id]
	if !ok || v.closed || v.seq[id] != seq {
		return false
	}
	v.bookings[i].Status = prev
	return true
}

// replace stores the backend's echoed booking unless superseded
func (v *View) replace(b models.Booking, seq uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i, ok := v.index[b.ID]
	if !ok || v.closed || v.seq[b.ID] != seq {
		return
	}
	v.bookings[i] = b
}
