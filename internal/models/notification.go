package models

import "time"

// Notification is a dated message shown to a user or photographer
type Notification struct {
	ID        string    `json:"_id"`
	BookingID string    `json:"bookingId,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status,omitempty"`
	Date      time.Time `json:"date"`
	Read      bool      `json:"read,omitempty"`
}
