// Package booking implements the booking status lifecycle as seen by end
// users and photographers.
//
//	Pending --accept--> Confirmed --mark done--> Completed
//	Pending --reject--> Canceled
//
// Completed and Canceled are terminal. Any other transition is rejected
// before the backend is contacted.
package booking

import (
	"encoding/json"

	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"
)

// Domain errors
var (
	ErrUnknownStatus     = apperrors.New(apperrors.CodeValidationFailed, "Invalid status value")
	ErrInvalidTransition = apperrors.New(apperrors.CodeInvalidTransition, "")
	ErrBookingNotFound   = apperrors.New(apperrors.CodeNotFound, "Booking not found")
	ErrNotEndUser        = apperrors.New(apperrors.CodeForbidden, "Only end users can book sessions")
	ErrNotPhotographer   = apperrors.New(apperrors.CodeForbidden, "Only photographers can manage bookings")
	ErrUnauthenticated   = apperrors.New(apperrors.CodeUnauthenticated, "Please log in to continue")
	ErrUnexpectedStatus  = apperrors.New(apperrors.CodeUpstreamUnavailable, "Backend created a booking in an unexpected state")
)

var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCanceled},
	models.StatusConfirmed: {models.StatusCompleted},
}

// CanTransition reports whether from → to is an edge of the lifecycle
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses a photographer may move a booking to
func NextStatuses(from models.BookingStatus) []models.BookingStatus {
	next := transitions[from]
	out := make([]models.BookingStatus, len(next))
	copy(out, next)
	return out
}

// ParseTarget accepts a requested status only if it belongs to the vocabulary
func ParseTarget(target string) (models.BookingStatus, error) {
	to, ok := models.ParseStatus(target)
	if !ok {
		return "", ErrUnknownStatus
	}
	return to, nil
}

// Row is a booking as a photographer sees it, with the statuses it may
// move to next. Completed and Canceled rows have none.
type Row struct {
	models.Booking
	Next []models.BookingStatus `json:"next"`
}

func (r *Row) UnmarshalJSON(b []byte) error {
	if err := r.Booking.UnmarshalJSON(b); err != nil {
		return err
	}
	var aux struct {
		Next []models.BookingStatus `json:"next"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Next = aux.Next
	return nil
}

// Rows annotates bookings with their available transitions
func Rows(bookings []models.Booking) []Row {
	out := make([]Row, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, Row{Booking: b, Next: NextStatuses(b.Status)})
	}
	return out
}

func invalidTransition(from, to models.BookingStatus) error {
	return apperrors.NewAppErrorf(apperrors.CodeInvalidTransition, nil,
		"Cannot move a %s booking to %s", from, to)
}
