// Package analytics derives admin dashboard figures from the full user,
// photographer and booking collections. Everything is recomputed from
// scratch on each call.
package analytics

import (
	"sort"

	"github.com/photobook/gateway-api/internal/models"
)

// DefaultTopN is the number of entries in the top users/photographers lists
const DefaultTopN = 5

// UnknownName is shown when a booking references a party missing from the lists
const UnknownName = "Unknown"

// Summary holds the headline counts
type Summary struct {
	TotalUsers         int                          `json:"totalUsers"`
	TotalPhotographers int                          `json:"totalPhotographers"`
	TotalBookings      int                          `json:"totalBookings"`
	ActiveBookings     int                          `json:"activeBookings"`
	CompletedBookings  int                          `json:"completedBookings"`
	ByStatus           map[models.BookingStatus]int `json:"byStatus"`
}

// Ranked is one entry of a top-N list
type Ranked struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Bookings int    `json:"bookings"`
}

// Breakdown is the per-party status table row
type Breakdown struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	Total         int                          `json:"total"`
	ByStatus      map[models.BookingStatus]int `json:"byStatus"`
	AverageRating *float64                     `json:"averageRating,omitempty"`
}

// ActiveRow is an active booking joined with party names
type ActiveRow struct {
	BookingID        string               `json:"bookingId"`
	UserName         string               `json:"userName"`
	PhotographerName string               `json:"photographerName"`
	Date             string               `json:"date"`
	TimeSlot         string               `json:"timeSlot"`
	Status           models.BookingStatus `json:"status"`
}

// CountByStatus buckets bookings by status. Every vocabulary status is present.
func CountByStatus(bookings []models.Booking) map[models.BookingStatus]int {
	counts := make(map[models.BookingStatus]int, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, b := range bookings {
		counts[b.Status]++
	}
	return counts
}

// Summarize computes totals; active means Pending or Confirmed
func Summarize(users []models.EndUser, photographers []models.Photographer, bookings []models.Booking) Summary {
	byStatus := CountByStatus(bookings)
	return Summary{
		TotalUsers:         len(users),
		TotalPhotographers: len(photographers),
		TotalBookings:      len(bookings),
		ActiveBookings:     byStatus[models.StatusPending] + byStatus[models.StatusConfirmed],
		CompletedBookings:  byStatus[models.StatusCompleted],
		ByStatus:           byStatus,
	}
}

// TopUsers ranks every user by booking count, descending, ties by id
// ascending, and keeps at most n entries.
func TopUsers(users []models.EndUser, bookings []models.Booking, n int) []Ranked {
	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.UserID.ID]++
	}
	ranked := make([]Ranked, 0, len(users))
	for _, u := range users {
		ranked = append(ranked, Ranked{ID: u.ID, Name: u.Name, Bookings: counts[u.ID]})
	}
	return top(ranked, n)
}

// TopPhotographers ranks every photographer by booking count the same way
func TopPhotographers(photographers []models.Photographer, bookings []models.Booking, n int) []Ranked {
	counts := make(map[string]int)
	for _, b := range bookings {
		counts[b.PhotographerID.ID]++
	}
	ranked := make([]Ranked, 0, len(photographers))
	for _, p := range photographers {
		ranked = append(ranked, Ranked{ID: p.ID, Name: p.Name, Bookings: counts[p.ID]})
	}
	return top(ranked, n)
}

func top(ranked []Ranked, n int) []Ranked {
	if n <= 0 {
		n = DefaultTopN
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Bookings != ranked[j].Bookings {
			return ranked[i].Bookings > ranked[j].Bookings
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Specializations counts tag occurrences across all photographers
func Specializations(photographers []models.Photographer) map[string]int {
	hist := make(map[string]int)
	for _, p := range photographers {
		for _, tag := range p.Specialization {
			hist[tag]++
		}
	}
	return hist
}

// UserBreakdown returns one status row per user, in input order
func UserBreakdown(users []models.EndUser, bookings []models.Booking) []Breakdown {
	byUser := make(map[string][]models.Booking)
	for _, b := range bookings {
		byUser[b.UserID.ID] = append(byUser[b.UserID.ID], b)
	}
	rows := make([]Breakdown, 0, len(users))
	for _, u := range users {
		own := byUser[u.ID]
		rows = append(rows, Breakdown{ID: u.ID, Name: u.Name, Total: len(own), ByStatus: CountByStatus(own)})
	}
	return rows
}

// PhotographerBreakdown returns one status row per photographer, with rating
func PhotographerBreakdown(photographers []models.Photographer, bookings []models.Booking) []Breakdown {
	byPhotographer := make(map[string][]models.Booking)
	for _, b := range bookings {
		byPhotographer[b.PhotographerID.ID] = append(byPhotographer[b.PhotographerID.ID], b)
	}
	rows := make([]Breakdown, 0, len(photographers))
	for _, p := range photographers {
		own := byPhotographer[p.ID]
		rating := p.AverageRating
		rows = append(rows, Breakdown{
			ID:            p.ID,
			Name:          p.Name,
			Total:         len(own),
			ByStatus:      CountByStatus(own),
			AverageRating: &rating,
		})
	}
	return rows
}

// ActiveBookingRows lists Pending and Confirmed bookings with party names
func ActiveBookingRows(users []models.EndUser, photographers []models.Photographer, bookings []models.Booking) []ActiveRow {
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}
	photographerNames := make(map[string]string, len(photographers))
	for _, p := range photographers {
		photographerNames[p.ID] = p.Name
	}

	rows := make([]ActiveRow, 0)
	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}
		rows = append(rows, ActiveRow{
			BookingID:        b.ID,
			UserName:         nameOr(userNames, b.UserID.ID),
			PhotographerName: nameOr(photographerNames, b.PhotographerID.ID),
			Date:             b.Date,
			TimeSlot:         b.TimeSlot,
			Status:           b.Status,
		})
	}
	return rows
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return UnknownName
}
