package devbackend

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/photobook/gateway-api/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	role         models.Role
	passwordHash []byte
	user         *models.EndUser
	photographer *models.Photographer
	admin        *models.Admin
}

func (a *account) id() string {
	switch a.role {
	case models.RoleUser:
		return a.user.ID
	case models.RolePhotographer:
		return a.photographer.ID
	default:
		return a.admin.ID
	}
}

type ratingEntry struct {
	bookingID string
	userID    string
	value     int
	comment   string
}

// store holds every collection in memory, guarded by one mutex
type store struct {
	mu            sync.RWMutex
	accounts      map[string]*account // by id
	byEmail       map[string]*account // by role + ":" + lower-case email
	bookings      []*models.Booking
	portfolio     map[string]*models.PortfolioItem
	notifications map[string][]models.Notification // by photographer id
	ratings       map[string][]ratingEntry         // by photographer id
	contacts      []models.ContactRequest
	bcryptCost    int
	now           func() time.Time
}

func newStore(bcryptCost int) *store {
	return &store{
		accounts:      make(map[string]*account),
		byEmail:       make(map[string]*account),
		portfolio:     make(map[string]*models.PortfolioItem),
		notifications: make(map[string][]models.Notification),
		ratings:       make(map[string][]ratingEntry),
		bcryptCost:    bcryptCost,
		now:           time.Now,
	}
}

func emailKey(role models.Role, email string) string {
	return string(role) + ":" + strings.ToLower(strings.TrimSpace(email))
}

func (s *store) register(role models.Role, email, password string, build func(id string) *account) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(role, email)
	if _, exists := s.byEmail[key]; exists {
		return nil, errEmailTaken
	}
	acc := build(uuid.NewString())
	acc.role = role
	acc.passwordHash = hash
	s.byEmail[key] = acc
	s.accounts[acc.id()] = acc
	return acc, nil
}

func (s *store) authenticate(role models.Role, email, password string) (*account, error) {
	s.mu.RLock()
	acc, ok := s.byEmail[emailKey(role, email)]
	s.mu.RUnlock()
	if !ok {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	if acc.role == models.RoleUser && acc.user.Status == string(models.UserStatusInactive) {
		return nil, errInactive
	}
	return acc, nil
}

func (s *store) account(id string, role models.Role) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok || acc.role != role {
		return nil, false
	}
	return acc, true
}

func (s *store) users() []models.EndUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EndUser, 0)
	for _, acc := range s.accounts {
		if acc.role == models.RoleUser {
			out = append(out, *acc.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) photographers() []models.Photographer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Photographer, 0)
	for _, acc := range s.accounts {
		if acc.role == models.RolePhotographer {
			p := *acc.photographer
			p.Portfolio = s.portfolioOf(p.ID)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) portfolioOf(photographerID string) []models.PortfolioItem {
	out := make([]models.PortfolioItem, 0)
	for _, item := range s.portfolio {
		if item.PhotographerID == photographerID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) deletePhotographer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok || acc.role != models.RolePhotographer {
		return false
	}
	delete(s.accounts, id)
	delete(s.byEmail, emailKey(acc.role, acc.photographer.Email))
	for pid, item := range s.portfolio {
		if item.PhotographerID == id {
			delete(s.portfolio, pid)
		}
	}
	return true
}

// populated copies b with party names filled in
func (s *store) populated(b *models.Booking) models.Booking {
	out := *b
	if acc, ok := s.accounts[b.UserID.ID]; ok && acc.role == models.RoleUser {
		out.UserID.Name = acc.user.Name
	}
	if acc, ok := s.accounts[b.PhotographerID.ID]; ok && acc.role == models.RolePhotographer {
		out.PhotographerID.Name = acc.photographer.Name
	}
	return out
}

func (s *store) bookingsWhere(match func(*models.Booking) bool) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, s.populated(b))
		}
	}
	return out
}

func (s *store) createBooking(userID string, req *models.BookSessionRequest) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photographer, ok := s.accounts[req.PhotographerID]
	if !ok || photographer.role != models.RolePhotographer {
		return models.Booking{}, errPhotographerNotFound
	}
	now := s.now().UTC()
	b := &models.Booking{
		ID:             uuid.NewString(),
		UserID:         models.Ref{ID: userID},
		PhotographerID: models.Ref{ID: req.PhotographerID},
		Date:           req.Date,
		TimeSlot:       req.TimeSlot,
		Location:       req.Location,
		Event:          req.Event,
		Package:        req.Package,
		Status:         models.StatusPending,
		BookedAt:       &now,
	}
	s.bookings = append(s.bookings, b)

	customer := "A customer"
	if acc, ok := s.accounts[userID]; ok && acc.role == models.RoleUser {
		customer = acc.user.Name
	}
	s.notifications[req.PhotographerID] = append(s.notifications[req.PhotographerID], models.Notification{
		ID:        uuid.NewString(),
		BookingID: b.ID,
		Message:   customer + " requested a session on " + req.Date + " at " + req.TimeSlot + ".",
		Status:    strings.ToLower(string(models.StatusPending)),
		Date:      now,
	})
	return s.populated(b), nil
}

func (s *store) setBookingStatus(photographerID, bookingID string, status models.BookingStatus) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID != bookingID {
			continue
		}
		if b.PhotographerID.ID != photographerID {
			return models.Booking{}, errNotYourBooking
		}
		b.Status = status
		return s.populated(b), nil
	}
	return models.Booking{}, errBookingNotFound
}

// rate records a rating and returns the photographer's new average
func (s *store) rate(photographerID string, r ratingEntry) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[photographerID]
	if !ok || acc.role != models.RolePhotographer {
		return 0, errPhotographerNotFound
	}
	s.ratings[photographerID] = append(s.ratings[photographerID], r)
	total := 0
	for _, e := range s.ratings[photographerID] {
		total += e.value
	}
	avg := float64(total) / float64(len(s.ratings[photographerID]))
	acc.photographer.AverageRating = avg
	return avg, nil
}
