package routes

import (
	"strings"

	"github.com/photobook/gateway-api/internal/analytics"
	"github.com/photobook/gateway-api/internal/booking"
	"github.com/photobook/gateway-api/internal/clients"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/notifications"
	"github.com/photobook/gateway-api/internal/rating"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var errPhotographerNotFound = apperrors.New(apperrors.CodeNotFound, "Photographer not found")

// UserDashboard is the landing payload of the EndUser tree
type UserDashboard struct {
	Profile  *models.EndUser              `json:"profile"`
	ByStatus map[models.BookingStatus]int `json:"byStatus"`
	Upcoming []models.Booking             `json:"upcoming"`
}

// UserHandler serves the EndUser view tree
type UserHandler struct {
	backend  *clients.Backend
	bookings *booking.Manager
	ratings  *rating.Service
	logger   *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(backend *clients.Backend, bookings *booking.Manager, ratings *rating.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{backend: backend, bookings: bookings, ratings: ratings, logger: logger}
}

// Dashboard returns the profile with booking counts and active bookings
// @Summary User dashboard
// @Tags User
// @Produce json
// @Success 200 {object} UserDashboard
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /user/dashboard [get]
func (h *UserHandler) Dashboard(c *fiber.Ctx) error {
	sess := middleware.GetSession(c)
	profile, err := h.backend.GetUserProfile(c.UserContext(), sess.Token())
	if err != nil {
		return fail(c, err)
	}
	bookings, err := h.backend.UserBookings(c.UserContext(), sess.Token())
	if err != nil {
		return fail(c, err)
	}

	upcoming := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.Status.IsActive() {
			upcoming = append(upcoming, b)
		}
	}
	return c.JSON(UserDashboard{
		Profile:  profile,
		ByStatus: analytics.CountByStatus(bookings),
		Upcoming: upcoming,
	})
}

// GetProfile returns the caller's profile
// @Summary Get user profile
// @Tags User
// @Produce json
// @Success 200 {object} models.EndUser
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.backend.GetUserProfile(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile edits the caller's profile
// @Summary Update user profile
// @Tags User
// @Accept json
// @Produce json
// @Param profile body models.UpdateUserProfileRequest true "Editable fields"
// @Success 200 {object} models.EndUser
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req models.UpdateUserProfileRequest
	if err := parse(c, &req); err != nil {
		return middleware.WriteError(c, err)
	}
	profile, err := h.backend.UpdateUserProfile(c.UserContext(), middleware.GetSession(c).Token(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// ListPhotographers returns the photographer directory
// @Summary List photographers
// @Description Optionally narrowed to one specialization tag (case-insensitive)
// @Tags User
// @Produce json
// @Param specialization query string false "Specialization tag"
// @Success 200 {array} models.Photographer
// @Router /user/photographers [get]
func (h *UserHandler) ListPhotographers(c *fiber.Ctx) error {
	photographers, err := h.backend.ListPhotographers(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}

	tag := strings.TrimSpace(c.Query("specialization"))
	if tag == "" {
		return c.JSON(photographers)
	}
	out := make([]models.Photographer, 0, len(photographers))
	for _, p := range photographers {
		for _, s := range p.Specialization {
			if strings.EqualFold(s, tag) {
				out = append(out, p)
				break
			}
		}
	}
	return c.JSON(out)
}

// GetPhotographer shows one photographer from the directory
// @Summary Photographer details
// @Tags User
// @Produce json
// @Param id path string true "Photographer ID"
// @Success 200 {object} models.Photographer
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /user/photographers/{id} [get]
func (h *UserHandler) GetPhotographer(c *fiber.Ctx) error {
	photographers, err := h.backend.ListPhotographers(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	id := c.Params("id")
	for i := range photographers {
		if photographers[i].ID == id {
			return c.JSON(photographers[i])
		}
	}
	return middleware.WriteError(c, errPhotographerNotFound)
}

// CreateBooking books a session with a photographer
// @Summary Book a session
// @Description The booking is created in Pending state
// @Tags User
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "UUID v4"
// @Param booking body models.BookSessionRequest true "Booking form"
// @Success 201 {object} models.BookingResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /user/bookings [post]
func (h *UserHandler) CreateBooking(c *fiber.Ctx) error {
	var req models.BookSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.WriteError(c, apperrors.NewAppError(errInvalidBody.Code, errInvalidBody.Message, err))
	}

	b, err := h.bookings.CreateBooking(c.UserContext(), middleware.GetSession(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.BookingResponse{Message: "Booking created", Booking: b})
}

// ListBookings returns every booking of the caller
// @Summary List my bookings
// @Tags User
// @Produce json
// @Success 200 {array} models.Booking
// @Router /user/bookings [get]
func (h *UserHandler) ListBookings(c *fiber.Ctx) error {
	bookings, err := h.backend.UserBookings(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bookings)
}

// History returns the caller's bookings in one status, Completed by default
// @Summary Booking history
// @Tags User
// @Produce json
// @Param status query string false "all or a lower-case status" default(completed)
// @Success 200 {array} models.Booking
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /user/history [get]
func (h *UserHandler) History(c *fiber.Ctx) error {
	filter, err := notifications.ParseFilter(c.Query("status", "completed"), "", "")
	if err != nil {
		return middleware.WriteError(c, err)
	}
	bookings, err := h.backend.UserHistory(c.UserContext(), middleware.GetSession(c).Token(), filter.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bookings)
}

// Notifications derives status updates from the caller's bookings
// @Summary User notifications
// @Tags User
// @Produce json
// @Param status query string false "all or a lower-case status"
// @Param from query string false "YYYY-MM-DD, inclusive"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Success 200 {array} models.Notification
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /user/notifications [get]
func (h *UserHandler) Notifications(c *fiber.Ctx) error {
	filter, err := notifications.ParseFilter(c.Query("status"), c.Query("from"), c.Query("to"))
	if err != nil {
		return middleware.WriteError(c, err)
	}
	bookings, err := h.backend.UserBookings(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notifications.Apply(notifications.FromBookings(bookings), filter))
}

// Rate submits a rating for a completed booking
// @Summary Rate a photographer
// @Description Each booking can be rated once
// @Tags User
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "UUID v4"
// @Param rating body models.RatingRequest true "Rating"
// @Success 201 {object} models.RatingResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /user/ratings [post]
func (h *UserHandler) Rate(c *fiber.Ctx) error {
	var req models.RatingRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.WriteError(c, apperrors.NewAppError(errInvalidBody.Code, errInvalidBody.Message, err))
	}

	resp, err := h.ratings.Submit(c.UserContext(), middleware.GetSession(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
