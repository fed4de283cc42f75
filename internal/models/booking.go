package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusCompleted BookingStatus = "Completed"
	StatusCanceled  BookingStatus = "Canceled"
)

// Statuses is the fixed status vocabulary
var Statuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCanceled}

// ParseStatus accepts only the exact vocabulary spelling
func ParseStatus(s string) (BookingStatus, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsActive reports whether the booking still awaits fulfilment
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Ref points at another entity. The backend sends either a bare id or a
// populated object with _id and name.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts "id", {"_id": ...} and {"id": ...}
func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var obj struct {
		ID    string `json:"_id"`
		AltID string `json:"id"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("decode reference: %w", err)
	}
	*r = Ref{ID: obj.ID, Name: obj.Name}
	if r.ID == "" {
		r.ID = obj.AltID
	}
	return nil
}

// Booking is a scheduled session between one end user and one photographer
type Booking struct {
	ID             string        `json:"_id" validate:"required"`
	UserID         Ref           `json:"userId"`
	PhotographerID Ref           `json:"photographerId"`
	Date           string        `json:"date"`
	TimeSlot       string        `json:"timeSlot"`
	Location       string        `json:"location"`
	Event          string        `json:"event,omitempty"`
	Package        *Package      `json:"package,omitempty"`
	Status         BookingStatus `json:"status"`
	BookedAt       *time.Time    `json:"bookedAt,omitempty"`
}

// UnmarshalJSON accepts both _id and id for the booking id
func (b *Booking) UnmarshalJSON(data []byte) error {
	type alias Booking
	aux := struct {
		*alias
		AltID string `json:"id"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = aux.AltID
	}
	return nil
}

// Day returns the calendar day of the booking, tolerating full timestamps
func (b *Booking) Day() (time.Time, error) {
	if len(b.Date) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, b.Date[:len(DateLayout)]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("booking %s has unparseable date %q", b.ID, b.Date)
}

// DateLayout is the calendar date format used by booking requests
const DateLayout = "2006-01-02"

// BookSessionRequest is the EndUser booking form
type BookSessionRequest struct {
	PhotographerID string   `json:"photographerId" validate:"required"`
	Date           string   `json:"date" validate:"required,isodate"`
	TimeSlot       string   `json:"timeSlot" validate:"required"`
	Location       string   `json:"location" validate:"required"`
	Event          string   `json:"event,omitempty"`
	Package        *Package `json:"package,omitempty" validate:"omitempty"`
}

// StatusUpdateRequest is sent to PUT /photographers/booking-status
type StatusUpdateRequest struct {
	BookingID string        `json:"bookingId" validate:"required"`
	Status    BookingStatus `json:"status" validate:"required"`
}

// BookingResponse is the envelope some backend booking endpoints reply with
type BookingResponse struct {
	Message string   `json:"message,omitempty"`
	Booking *Booking `json:"booking,omitempty"`
}
