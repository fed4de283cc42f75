package booking

import (
	"context"
	"errors"

	"github.com/photobook/gateway-api/internal/metrics"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/session"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/sirupsen/logrus"
)

// Backend is the subset of the REST backend the lifecycle needs
type Backend interface {
	BookSession(ctx context.Context, token string, req *models.BookSessionRequest) (*models.Booking, error)
	PhotographerBookings(ctx context.Context, token string) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, token string, req *models.StatusUpdateRequest) (*models.Booking, error)
}

// Manager creates bookings and drives status transitions
type Manager struct {
	backend Backend
	logger  *logrus.Logger
}

// NewManager creates a booking lifecycle manager
func NewManager(backend Backend, logger *logrus.Logger) *Manager {
	return &Manager{backend: backend, logger: logger}
}

// CreateBooking books a session for the calling end user. The backend's
// booking is returned in Pending state. No overlap check is performed.
func (m *Manager) CreateBooking(ctx context.Context, sess session.Session, req *models.BookSessionRequest) (*models.Booking, error) {
	user, ok := sess.User()
	if !ok {
		if !sess.IsAuthenticated() {
			return nil, ErrUnauthenticated
		}
		return nil, ErrNotEndUser
	}
	if err := models.Validate(req); err != nil {
		metrics.RecordBookingCreated("rejected")
		return nil, err
	}

	b, err := m.backend.BookSession(ctx, sess.Token(), req)
	if err != nil {
		metrics.RecordBookingCreated("error")
		return nil, err
	}

	switch b.Status {
	case "":
		b.Status = models.StatusPending
	case models.StatusPending:
	default:
		metrics.RecordBookingCreated("error")
		m.logger.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"status":     b.Status,
		}).Error("Backend created booking outside Pending")
		return nil, apperrors.NewAppError(ErrUnexpectedStatus.Code, ErrUnexpectedStatus.Message, nil)
	}
	if b.UserID.ID == "" {
		b.UserID = models.Ref{ID: user.ID, Name: user.Name}
	}
	if b.PhotographerID.ID == "" {
		b.PhotographerID = models.Ref{ID: req.PhotographerID}
	}

	metrics.RecordBookingCreated("created")
	m.logger.WithFields(logrus.Fields{
		"booking_id":      b.ID,
		"user_id":         user.ID,
		"photographer_id": b.PhotographerID.ID,
	}).Info("Booking created")
	return b, nil
}

// Load fetches the calling photographer's bookings into a view
func (m *Manager) Load(ctx context.Context, sess session.Session) (*View, error) {
	if err := requirePhotographer(sess); err != nil {
		return nil, err
	}
	bookings, err := m.backend.PhotographerBookings(ctx, sess.Token())
	if err != nil {
		return nil, err
	}
	return NewView(bookings), nil
}

// Transition moves a booking in view to target. Unknown statuses and
// transitions outside the lifecycle are rejected without a backend call.
// The view is updated before the backend call and rolled back if it fails.
// A result arriving after the view is closed is discarded.
func (m *Manager) Transition(ctx context.Context, sess session.Session, view *View, bookingID, target string) (models.Booking, error) {
	if err := requirePhotographer(sess); err != nil {
		return models.Booking{}, err
	}

	to, err := ParseTarget(target)
	if err != nil {
		metrics.RecordBookingTransition("unknown", "unknown", "rejected")
		return models.Booking{}, err
	}

	current, ok := view.Get(bookingID)
	if !ok {
		return models.Booking{}, ErrBookingNotFound
	}
	from := current.Status
	if !CanTransition(from, to) {
		metrics.RecordBookingTransition(string(from), string(to), "rejected")
		return models.Booking{}, invalidTransition(from, to)
	}

	prev, seq, ok := view.apply(bookingID, to)
	if !ok {
		return models.Booking{}, ErrViewClosed
	}

	callCtx, release := view.bind(ctx)
	defer release()

	echoed, err := m.backend.UpdateBookingStatus(callCtx, sess.Token(), &models.StatusUpdateRequest{
		BookingID: bookingID,
		Status:    to,
	})

	if view.Closed() {
		metrics.RecordBookingTransition(string(from), string(to), "discarded")
		return models.Booking{}, ErrViewClosed
	}

	log := m.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"from":       from,
		"to":         to,
	})

	if err != nil {
		if view.rollback(bookingID, prev, seq) {
			log.WithError(err).Warn("Booking transition failed, rolled back")
		} else {
			log.WithError(err).Warn("Booking transition failed, superseded by a later write")
		}
		metrics.RecordBookingTransition(string(from), string(to), "rolled_back")
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return models.Booking{}, ErrViewClosed
		}
		return models.Booking{}, err
	}

	if echoed != nil && echoed.ID == bookingID {
		view.replace(*echoed, seq)
	}

	metrics.RecordBookingTransition(string(from), string(to), "applied")
	log.Info("Booking transition applied")

	updated, _ := view.Get(bookingID)
	return updated, nil
}

func requirePhotographer(sess session.Session) error {
	if _, ok := sess.Photographer(); !ok {
		if !sess.IsAuthenticated() {
			return ErrUnauthenticated
		}
		return ErrNotPhotographer
	}
	return nil
}
