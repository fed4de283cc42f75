package routes

import (
	"github.com/photobook/gateway-api/internal/analytics"
	"github.com/photobook/gateway-api/internal/booking"
	"github.com/photobook/gateway-api/internal/clients"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/notifications"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var errPortfolioItemNotFound = apperrors.New(apperrors.CodeNotFound, "Portfolio item not found")

// PhotographerDashboard is the landing payload of the photographer tree
type PhotographerDashboard struct {
	Profile  *models.Photographer         `json:"profile"`
	ByStatus map[models.BookingStatus]int `json:"byStatus"`
	Pending  []booking.Row                `json:"pending"`
}

// StatusChangeRequest is the body of a booking status change
type StatusChangeRequest struct {
	Status string `json:"status"`
}

// PhotographerHandler serves the photographer view tree
type PhotographerHandler struct {
	backend  *clients.Backend
	bookings *booking.Manager
	logger   *logrus.Logger
}

// NewPhotographerHandler creates a new photographer handler
func NewPhotographerHandler(backend *clients.Backend, bookings *booking.Manager, logger *logrus.Logger) *PhotographerHandler {
	return &PhotographerHandler{backend: backend, bookings: bookings, logger: logger}
}

// Dashboard returns the profile, booking counts and bookings awaiting a decision
// @Summary Photographer dashboard
// @Tags Photographer
// @Produce json
// @Success 200 {object} PhotographerDashboard
// @Router /photographer/dashboard [get]
func (h *PhotographerHandler) Dashboard(c *fiber.Ctx) error {
	sess := middleware.GetSession(c)
	profile, err := h.backend.GetPhotographerProfile(c.UserContext(), sess.Token())
	if err != nil {
		return fail(c, err)
	}
	bookings, err := h.backend.PhotographerBookings(c.UserContext(), sess.Token())
	if err != nil {
		return fail(c, err)
	}

	pending := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.Status == models.StatusPending {
			pending = append(pending, b)
		}
	}
	return c.JSON(PhotographerDashboard{
		Profile:  profile,
		ByStatus: analytics.CountByStatus(bookings),
		Pending:  booking.Rows(pending),
	})
}

// GetProfile returns the caller's profile
// @Summary Get photographer profile
// @Tags Photographer
// @Produce json
// @Success 200 {object} models.Photographer
// @Router /photographer/profile [get]
func (h *PhotographerHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.backend.GetPhotographerProfile(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile edits the caller's profile
// @Summary Update photographer profile
// @Tags Photographer
// @Accept json
// @Produce json
// @Param profile body models.UpdatePhotographerProfileRequest true "Editable fields"
// @Success 200 {object} models.Photographer
// @Router /photographer/profile [put]
func (h *PhotographerHandler) UpdateProfile(c *fiber.Ctx) error {
	var req models.UpdatePhotographerProfileRequest
	if err := parse(c, &req); err != nil {
		return middleware.WriteError(c, err)
	}
	profile, err := h.backend.UpdatePhotographerProfile(c.UserContext(), middleware.GetSession(c).Token(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// ListBookings returns the bookings addressed to the caller, each with the
// statuses it can move to
// @Summary List photographer bookings
// @Tags Photographer
// @Produce json
// @Success 200 {array} booking.Row
// @Router /photographer/bookings [get]
func (h *PhotographerHandler) ListBookings(c *fiber.Ctx) error {
	view, err := h.bookings.Load(c.UserContext(), middleware.GetSession(c))
	if err != nil {
		return fail(c, err)
	}
	defer view.Close()
	return c.JSON(booking.Rows(view.Bookings()))
}

// UpdateBookingStatus moves a booking along its lifecycle
// @Summary Change booking status
// @Description Pending to Confirmed or Canceled, Confirmed to Completed
// @Tags Photographer
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param status body StatusChangeRequest true "Target status"
// @Success 200 {object} models.Booking
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /photographer/bookings/{id}/status [put]
func (h *PhotographerHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	var req StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return middleware.WriteError(c, apperrors.NewAppError(errInvalidBody.Code, errInvalidBody.Message, err))
	}
	if _, err := booking.ParseTarget(req.Status); err != nil {
		return middleware.WriteError(c, err)
	}

	ctx, span := middleware.StartSpan(c.UserContext(), "booking.transition")
	defer span.End()

	bookingID := c.Params("id")
	middleware.AddSpanAttributes(span, map[string]interface{}{
		"booking.id":     bookingID,
		"booking.target": req.Status,
	})

	sess := middleware.GetSession(c)
	view, err := h.bookings.Load(ctx, sess)
	if err != nil {
		return fail(c, err)
	}
	defer view.Close()

	updated, err := h.bookings.Transition(ctx, sess, view, bookingID, req.Status)
	if err != nil {
		span.RecordError(err)
		return fail(c, err)
	}
	return c.JSON(updated)
}

// ListPortfolio returns the caller's portfolio
// @Summary List portfolio items
// @Tags Photographer
// @Produce json
// @Success 200 {array} models.PortfolioItem
// @Router /photographer/portfolio [get]
func (h *PhotographerHandler) ListPortfolio(c *fiber.Ctx) error {
	items, err := h.backend.ListPortfolio(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(items)
}

// CreatePortfolioItem adds an item to the caller's portfolio
// @Summary Add portfolio item
// @Tags Photographer
// @Accept json
// @Produce json
// @Param item body models.PortfolioRequest true "Portfolio item"
// @Success 201 {object} models.PortfolioItem
// @Router /photographer/portfolio [post]
func (h *PhotographerHandler) CreatePortfolioItem(c *fiber.Ctx) error {
	var req models.PortfolioRequest
	if err := parse(c, &req); err != nil {
		return middleware.WriteError(c, err)
	}
	sess := middleware.GetSession(c)
	req.PhotographerID = middleware.GetUserID(c)

	item, err := h.backend.CreatePortfolioItem(c.UserContext(), sess.Token(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdatePortfolioItem replaces one of the caller's portfolio items
// @Summary Update portfolio item
// @Tags Photographer
// @Accept json
// @Produce json
// @Param id path string true "Portfolio item ID"
// @Param item body models.PortfolioRequest true "Portfolio item"
// @Success 200 {object} models.PortfolioItem
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /photographer/portfolio/{id} [put]
func (h *PhotographerHandler) UpdatePortfolioItem(c *fiber.Ctx) error {
	var req models.PortfolioRequest
	if err := parse(c, &req); err != nil {
		return middleware.WriteError(c, err)
	}
	id := c.Params("id")
	if err := h.ensureOwned(c, id); err != nil {
		return fail(c, err)
	}
	req.PhotographerID = middleware.GetUserID(c)

	item, err := h.backend.UpdatePortfolioItem(c.UserContext(), middleware.GetSession(c).Token(), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(item)
}

// DeletePortfolioItem removes one of the caller's portfolio items
// @Summary Delete portfolio item
// @Tags Photographer
// @Param id path string true "Portfolio item ID"
// @Success 204
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /photographer/portfolio/{id} [delete]
func (h *PhotographerHandler) DeletePortfolioItem(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.ensureOwned(c, id); err != nil {
		return fail(c, err)
	}
	if err := h.backend.DeletePortfolioItem(c.UserContext(), middleware.GetSession(c).Token(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ensureOwned checks id against the caller's own portfolio listing
func (h *PhotographerHandler) ensureOwned(c *fiber.Ctx, id string) error {
	items, err := h.backend.ListPortfolio(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return err
	}
	owner := middleware.GetUserID(c)
	for _, item := range items {
		if item.ID == id && (item.PhotographerID == "" || item.PhotographerID == owner) {
			return nil
		}
	}
	return errPortfolioItemNotFound
}

// Notifications lists the caller's notifications within an optional date range
// @Summary Photographer notifications
// @Tags Photographer
// @Produce json
// @Param from query string false "YYYY-MM-DD, inclusive"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Success 200 {array} models.Notification
// @Router /photographer/notifications [get]
func (h *PhotographerHandler) Notifications(c *fiber.Ctx) error {
	filter, err := notifications.ParseFilter("", c.Query("from"), c.Query("to"))
	if err != nil {
		return middleware.WriteError(c, err)
	}
	list, err := h.backend.PhotographerNotifications(c.UserContext(), middleware.GetSession(c).Token(), middleware.GetUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notifications.Apply(list, filter))
}
