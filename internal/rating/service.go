// Package rating submits 1-5 ratings for completed bookings, at most once
// per (booking, user) pair.
package rating

import (
	"context"
	"time"

	"github.com/photobook/gateway-api/internal/metrics"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/session"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoIdentity        = apperrors.New(apperrors.CodeUnauthenticated, "No authenticated user to rate as")
	ErrNotCompleted      = apperrors.New(apperrors.CodeInvalidState, "Only completed bookings can be rated")
	ErrNotYourBooking    = apperrors.New(apperrors.CodeForbidden, "You can only rate your own bookings")
	ErrWrongPhotographer = apperrors.New(apperrors.CodeValidationFailed, "Booking was not with this photographer")
	ErrAlreadyRated      = apperrors.New(apperrors.CodeConflict, "This booking has already been rated")
	ErrLedgerUnavailable = apperrors.New(apperrors.CodeUpstreamUnavailable, "Rating could not be recorded, please try again")
)

// Backend is the subset of the REST backend the rating flow needs
type Backend interface {
	UserHistory(ctx context.Context, token string, status models.BookingStatus) ([]models.Booking, error)
	RatePhotographer(ctx context.Context, token string, rating *models.Rating) (*models.RatingResponse, error)
}

// Service submits ratings
type Service struct {
	backend Backend
	ledger  Ledger
	logger  *logrus.Logger
	now     func() time.Time
}

func NewService(backend Backend, ledger Ledger, logger *logrus.Logger) *Service {
	return &Service{backend: backend, ledger: ledger, logger: logger, now: time.Now}
}

// Submit rates the photographer of a completed booking owned by the
// session's end user. Without an end user id nothing is sent to the backend.
func (s *Service) Submit(ctx context.Context, sess session.Session, req *models.RatingRequest) (*models.RatingResponse, error) {
	userID := sess.UserID()
	if userID == "" {
		metrics.RecordRatingSubmission("no_identity")
		return nil, ErrNoIdentity
	}
	if err := models.Validate(req); err != nil {
		metrics.RecordRatingSubmission("rejected")
		return nil, err
	}

	if err := s.checkEligible(ctx, sess, userID, req); err != nil {
		metrics.RecordRatingSubmission("rejected")
		return nil, err
	}

	res := Reservation{
		BookingID:      req.BookingID,
		UserID:         userID,
		PhotographerID: req.PhotographerID,
		Rating:         req.Rating,
		CreatedAt:      s.now().UTC(),
	}
	log := s.logger.WithFields(logrus.Fields{
		"booking_id":      req.BookingID,
		"user_id":         userID,
		"photographer_id": req.PhotographerID,
	})

	ok, err := s.ledger.Reserve(ctx, res)
	if err != nil {
		log.WithError(err).Error("Rating ledger reservation failed")
		metrics.RecordRatingSubmission("error")
		return nil, apperrors.NewAppError(ErrLedgerUnavailable.Code, ErrLedgerUnavailable.Message, err)
	}
	if !ok {
		metrics.RecordRatingSubmission("duplicate")
		return nil, ErrAlreadyRated
	}

	resp, err := s.backend.RatePhotographer(ctx, sess.Token(), &models.Rating{
		PhotographerID: req.PhotographerID,
		UserID:         userID,
		BookingID:      req.BookingID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	})
	if err != nil {
		if relErr := s.ledger.Release(context.WithoutCancel(ctx), res); relErr != nil {
			log.WithError(relErr).Error("Failed to release rating reservation")
		}
		metrics.RecordRatingSubmission("error")
		return nil, err
	}

	metrics.RecordRatingSubmission("submitted")
	log.WithField("rating", req.Rating).Info("Rating submitted")
	return resp, nil
}

func (s *Service) checkEligible(ctx context.Context, sess session.Session, userID string, req *models.RatingRequest) error {
	history, err := s.backend.UserHistory(ctx, sess.Token(), models.StatusCompleted)
	if err != nil {
		return err
	}
	for _, b := range history {
		if b.ID != req.BookingID {
			continue
		}
		if b.Status != models.StatusCompleted {
			return ErrNotCompleted
		}
		if b.UserID.ID != "" && b.UserID.ID != userID {
			return ErrNotYourBooking
		}
		if b.PhotographerID.ID != "" && b.PhotographerID.ID != req.PhotographerID {
			return ErrWrongPhotographer
		}
		return nil
	}
	return ErrNotCompleted
}
