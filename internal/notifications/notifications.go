// Package notifications derives status update messages from bookings and
// filters notification lists by status and date range.
package notifications

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"
)

// FilterAll disables status filtering
const FilterAll = "all"

var ErrInvalidRange = apperrors.New(apperrors.CodeValidationFailed, "from must not be after to")

// Filter narrows a notification list
type Filter struct {
	Status models.BookingStatus // empty means all
	From   *time.Time
	To     *time.Time
}

// ParseFilter reads the status, from and to query values. Status is "all"
// or a lower-case status; dates use YYYY-MM-DD and are inclusive.
func ParseFilter(status, from, to string) (Filter, error) {
	var f Filter

	switch s := strings.ToLower(strings.TrimSpace(status)); s {
	case "", FilterAll:
	case "cancelled":
		f.Status = models.StatusCanceled
	default:
		parsed, ok := models.ParseStatus(strings.ToUpper(s[:1]) + s[1:])
		if !ok {
			return f, apperrors.New(apperrors.CodeValidationFailed,
				"status must be one of: all, pending, confirmed, completed, canceled")
		}
		f.Status = parsed
	}

	var err error
	if f.From, err = parseDay("from", from); err != nil {
		return f, err
	}
	if f.To, err = parseDay("to", to); err != nil {
		return f, err
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, ErrInvalidRange
	}
	return f, nil
}

func parseDay(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, v)
	if err != nil {
		return nil, apperrors.NewAppErrorf(apperrors.CodeValidationFailed, err, "%s must be a date in YYYY-MM-DD format", name)
	}
	return &t, nil
}

// FromBookings builds one notification per booking, dated by the booking date
func FromBookings(bookings []models.Booking) []models.Notification {
	out := make([]models.Notification, 0, len(bookings))
	for _, b := range bookings {
		name := b.PhotographerID.Name
		if name == "" {
			name = "your photographer"
		}
		n := models.Notification{
			ID:        b.ID,
			BookingID: b.ID,
			Message:   fmt.Sprintf("Your booking with %s is now %s.", name, b.Status),
			Status:    strings.ToLower(string(b.Status)),
		}
		if day, err := b.Day(); err == nil {
			n.Date = day
		}
		out = append(out, n)
	}
	return out
}

// Apply returns the notifications matching f, newest first
func Apply(list []models.Notification, f Filter) []models.Notification {
	out := make([]models.Notification, 0, len(list))
	for _, n := range list {
		if f.Status != "" && !strings.EqualFold(n.Status, string(f.Status)) {
			continue
		}
		if !inRange(n.Date, f.From, f.To) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func inRange(date time.Time, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if date.IsZero() {
		return false
	}
	// the calendar day as written, whatever the offset
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if from != nil && day.Before(*from) {
		return false
	}
	if to != nil && day.After(*to) {
		return false
	}
	return true
}
