package analytics

import (
	"context"
	"time"

	"github.com/photobook/gateway-api/internal/metrics"
	"github.com/photobook/gateway-api/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the REST backend the report needs
type Backend interface {
	AdminUsers(ctx context.Context, token string) ([]models.EndUser, error)
	AdminPhotographers(ctx context.Context, token string) ([]models.Photographer, error)
	AdminBookings(ctx context.Context, token string) ([]models.Booking, error)
}

// Report is the full admin analytics payload
type Report struct {
	Summary               Summary        `json:"summary"`
	TopUsers              []Ranked       `json:"topUsers"`
	TopPhotographers      []Ranked       `json:"topPhotographers"`
	Specializations       map[string]int `json:"specializations"`
	UserBreakdown         []Breakdown    `json:"userBreakdown"`
	PhotographerBreakdown []Breakdown    `json:"photographerBreakdown"`
	ActiveBookings        []ActiveRow    `json:"activeBookings"`
	GeneratedAt           time.Time      `json:"generatedAt"`
}

// Service builds reports from freshly fetched collections
type Service struct {
	backend Backend
	topN    int
	logger  *logrus.Logger
}

func NewService(backend Backend, topN int, logger *logrus.Logger) *Service {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Service{backend: backend, topN: topN, logger: logger}
}

// Report fetches users, photographers and bookings concurrently and
// aggregates once all three have arrived. Any fetch error fails the report.
func (s *Service) Report(ctx context.Context, token string) (*Report, error) {
	start := time.Now()
	defer func() { metrics.RecordAnalyticsReport(time.Since(start)) }()

	var (
		users         []models.EndUser
		photographers []models.Photographer
		bookings      []models.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.backend.AdminUsers(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		photographers, err = s.backend.AdminPhotographers(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = s.backend.AdminBookings(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := Build(users, photographers, bookings, s.topN)
	s.logger.WithFields(logrus.Fields{
		"users":         len(users),
		"photographers": len(photographers),
		"bookings":      len(bookings),
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Debug("Analytics report built")
	return report, nil
}

// Build aggregates already-fetched collections
func Build(users []models.EndUser, photographers []models.Photographer, bookings []models.Booking, topN int) *Report {
	return &Report{
		Summary:               Summarize(users, photographers, bookings),
		TopUsers:              TopUsers(users, bookings, topN),
		TopPhotographers:      TopPhotographers(photographers, bookings, topN),
		Specializations:       Specializations(photographers),
		UserBreakdown:         UserBreakdown(users, bookings),
		PhotographerBreakdown: PhotographerBreakdown(photographers, bookings),
		ActiveBookings:        ActiveBookingRows(users, photographers, bookings),
		GeneratedAt:           time.Now().UTC(),
	}
}
