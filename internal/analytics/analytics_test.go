package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/photobook/gateway-api/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(id, user, photographer string, status models.BookingStatus) models.Booking {
	return models.Booking{ID: id, UserID: models.Ref{ID: user}, PhotographerID: models.Ref{ID: photographer}, Status: status}
}

func fixtures() ([]models.EndUser, []models.Photographer, []models.Booking) {
	users := []models.EndUser{{ID: "u1", Name: "Dana"}, {ID: "u2", Name: "Eli"}, {ID: "u3", Name: "Fay"}}
	photographers := []models.Photographer{
		{ID: "p1", Name: "Ansel", Specialization: []string{"Wedding", "Portrait"}, AverageRating: 4.5},
		{ID: "p2", Name: "Berenice", Specialization: []string{"Wedding"}},
	}
	bookings := []models.Booking{
		booking("b1", "u1", "p1", models.StatusPending),
		booking("b2", "u1", "p1", models.StatusConfirmed),
		booking("b3", "u2", "p2", models.StatusCompleted),
		booking("b4", "u1", "p2", models.StatusCanceled),
		booking("b5", "ghost", "p9", models.StatusPending),
	}
	return users, photographers, bookings
}

func TestSummarize(t *testing.T) {
	users, photographers, bookings := fixtures()
	s := Summarize(users, photographers, bookings)

	assert.Equal(t, 3, s.TotalUsers)
	assert.Equal(t, 2, s.TotalPhotographers)
	assert.Equal(t, 5, s.TotalBookings)
	assert.Equal(t, 3, s.ActiveBookings)
	assert.Equal(t, 1, s.CompletedBookings)
	assert.Equal(t, 1, s.ByStatus[models.StatusCanceled])
}

func TestTopUsers_OrderingAndTieBreak(t *testing.T) {
	users, _, bookings := fixtures()
	top := TopUsers(users, bookings, 5)

	require.Len(t, top, 3)
	assert.Equal(t, Ranked{ID: "u1", Name: "Dana", Bookings: 3}, top[0])
	assert.Equal(t, Ranked{ID: "u2", Name: "Eli", Bookings: 1}, top[1])
	assert.Equal(t, Ranked{ID: "u3", Name: "Fay", Bookings: 0}, top[2])
}

func TestTopN_AtMostFiveSortedDescending(t *testing.T) {
	var users []models.EndUser
	var photographers []models.Photographer
	var bookings []models.Booking
	for i := 0; i < 12; i++ {
		uid := fmt.Sprintf("u%02d", i)
		pid := fmt.Sprintf("p%02d", i)
		users = append(users, models.EndUser{ID: uid, Name: uid})
		photographers = append(photographers, models.Photographer{ID: pid, Name: pid})
		for j := 0; j < i%4; j++ {
			bookings = append(bookings, booking(fmt.Sprintf("b%d-%d", i, j), uid, pid, models.StatusPending))
		}
	}

	for _, top := range [][]Ranked{
		TopUsers(users, bookings, DefaultTopN),
		TopPhotographers(photographers, bookings, DefaultTopN),
	} {
		require.LessOrEqual(t, len(top), 5)
		assert.True(t, sort.SliceIsSorted(top, func(i, j int) bool { return top[i].Bookings > top[j].Bookings }))
		for i := 1; i < len(top); i++ {
			if top[i].Bookings == top[i-1].Bookings {
				assert.Less(t, top[i-1].ID, top[i].ID)
			}
		}
	}
	assert.Empty(t, TopUsers(nil, bookings, 5))
}

func TestSpecializations(t *testing.T) {
	_, photographers, _ := fixtures()
	assert.Equal(t, map[string]int{"Wedding": 2, "Portrait": 1}, Specializations(photographers))
}

func TestBreakdowns(t *testing.T) {
	users, photographers, bookings := fixtures()

	rows := UserBreakdown(users, bookings)
	require.Len(t, rows, 3)
	assert.Equal(t, 3, rows[0].Total)
	assert.Equal(t, 1, rows[0].ByStatus[models.StatusCanceled])
	assert.Equal(t, 0, rows[2].Total)

	prows := PhotographerBreakdown(photographers, bookings)
	require.Len(t, prows, 2)
	assert.Equal(t, 2, prows[0].Total)
	assert.Equal(t, 4.5, *prows[0].AverageRating)
}

func TestActiveBookingRows_UnknownNames(t *testing.T) {
	users, photographers, bookings := fixtures()
	rows := ActiveBookingRows(users, photographers, bookings)

	require.Len(t, rows, 3)
	assert.Equal(t, "Dana", rows[0].UserName)
	assert.Equal(t, "Ansel", rows[0].PhotographerName)
	assert.Equal(t, UnknownName, rows[2].UserName)
	assert.Equal(t, UnknownName, rows[2].PhotographerName)
}

// MockBackend is a mock implementation of Backend
type MockBackend struct {
	AdminUsersFunc         func(ctx context.Context, token string) ([]models.EndUser, error)
	AdminPhotographersFunc func(ctx context.Context, token string) ([]models.Photographer, error)
	AdminBookingsFunc      func(ctx context.Context, token string) ([]models.Booking, error)
}

func (m *MockBackend) AdminUsers(ctx context.Context, token string) ([]models.EndUser, error) {
	return m.AdminUsersFunc(ctx, token)
}

func (m *MockBackend) AdminPhotographers(ctx context.Context, token string) ([]models.Photographer, error) {
	return m.AdminPhotographersFunc(ctx, token)
}

func (m *MockBackend) AdminBookings(ctx context.Context, token string) ([]models.Booking, error) {
	return m.AdminBookingsFunc(ctx, token)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestReport_FetchesConcurrently(t *testing.T) {
	users, photographers, bookings := fixtures()
	var inFlight, peak int32
	enter := func() {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}

	backend := &MockBackend{
		AdminUsersFunc: func(_ context.Context, token string) ([]models.EndUser, error) {
			assert.Equal(t, "admin-token", token)
			enter()
			return users, nil
		},
		AdminPhotographersFunc: func(context.Context, string) ([]models.Photographer, error) {
			enter()
			return photographers, nil
		},
		AdminBookingsFunc: func(context.Context, string) ([]models.Booking, error) {
			enter()
			return bookings, nil
		},
	}

	report, err := NewService(backend, 2, quietLogger()).Report(context.Background(), "admin-token")
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
	assert.Len(t, report.TopUsers, 2)
	assert.Equal(t, 5, report.Summary.TotalBookings)
	assert.Len(t, report.ActiveBookings, 3)
}

func TestReport_FailsWhenAnyFetchFails(t *testing.T) {
	boom := errors.New("backend down")
	backend := &MockBackend{
		AdminUsersFunc: func(context.Context, string) ([]models.EndUser, error) { return nil, nil },
		AdminPhotographersFunc: func(ctx context.Context, _ string) ([]models.Photographer, error) {
			return nil, boom
		},
		AdminBookingsFunc: func(context.Context, string) ([]models.Booking, error) { return nil, nil },
	}

	_, err := NewService(backend, 5, quietLogger()).Report(context.Background(), "t")
	assert.ErrorIs(t, err, boom)
}
