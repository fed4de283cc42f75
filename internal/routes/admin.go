package routes

import (
	"github.com/photobook/gateway-api/internal/analytics"
	"github.com/photobook/gateway-api/internal/clients"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AdminDashboard is the landing payload of the admin tree
type AdminDashboard struct {
	Summary        analytics.Summary     `json:"summary"`
	ActiveBookings []analytics.ActiveRow `json:"activeBookings"`
}

// UserStatusRequest is the body of an account status change
type UserStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

// AdminHandler serves the admin view tree
type AdminHandler struct {
	backend   *clients.Backend
	analytics *analytics.Service
	logger    *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(backend *clients.Backend, reports *analytics.Service, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{backend: backend, analytics: reports, logger: logger}
}

// Dashboard returns the headline counts and active bookings
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} AdminDashboard
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	report, err := h.analytics.Report(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(AdminDashboard{Summary: report.Summary, ActiveBookings: report.ActiveBookings})
}

// Analytics returns the full analytics report
// @Summary Analytics report
// @Description Recomputed from the full user, photographer and booking lists on every call
// @Tags Admin
// @Produce json
// @Success 200 {object} analytics.Report
// @Failure 503 {object} apperrors.ErrorResponse
// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	report, err := h.analytics.Report(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// ListUsers returns every EndUser account
// @Summary List users
// @Tags Admin
// @Produce json
// @Success 200 {array} models.EndUser
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.backend.AdminUsers(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// UpdateUserStatus activates or deactivates an account
// @Summary Change user status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param status body UserStatusRequest true "active or inactive"
// @Success 200 {object} models.MessageResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	var body UserStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return middleware.WriteError(c, apperrors.NewAppError(errInvalidBody.Code, errInvalidBody.Message, err))
	}
	req := models.UpdateUserStatusRequest{UserID: c.Params("id"), Status: body.Status}
	if err := models.Validate(&req); err != nil {
		return middleware.WriteError(c, err)
	}

	resp, err := h.backend.UpdateUserStatus(c.UserContext(), middleware.GetSession(c).Token(), &req)
	if err != nil {
		return fail(c, err)
	}
	h.logger.WithFields(logrus.Fields{
		"admin_id": middleware.GetUserID(c),
		"user_id":  req.UserID,
		"status":   req.Status,
	}).Info("User status changed")
	return c.JSON(resp)
}

// ListPhotographers returns every photographer account
// @Summary List photographers
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Photographer
// @Router /admin/photographers [get]
func (h *AdminHandler) ListPhotographers(c *fiber.Ctx) error {
	photographers, err := h.backend.AdminPhotographers(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(photographers)
}

// RegisterPhotographer creates a photographer account
// @Summary Register photographer
// @Tags Admin
// @Accept json
// @Produce json
// @Param photographer body models.RegisterPhotographerRequest true "Registration form"
// @Success 201 {object} models.MessageResponse
// @Router /admin/photographers [post]
func (h *AdminHandler) RegisterPhotographer(c *fiber.Ctx) error {
	var req models.RegisterPhotographerRequest
	if err := parse(c, &req); err != nil {
		return middleware.WriteError(c, err)
	}
	resp, err := h.backend.AdminRegisterPhotographer(c.UserContext(), middleware.GetSession(c).Token(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeletePhotographer removes a photographer account
// @Summary Delete photographer
// @Tags Admin
// @Param id path string true "Photographer ID"
// @Success 204
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/photographers/{id} [delete]
func (h *AdminHandler) DeletePhotographer(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.backend.AdminDeletePhotographer(c.UserContext(), middleware.GetSession(c).Token(), id); err != nil {
		return fail(c, err)
	}
	h.logger.WithFields(logrus.Fields{
		"admin_id":        middleware.GetUserID(c),
		"photographer_id": id,
	}).Info("Photographer deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

// ListBookings returns every booking
// @Summary List bookings
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Booking
// @Router /admin/bookings [get]
func (h *AdminHandler) ListBookings(c *fiber.Ctx) error {
	bookings, err := h.backend.AdminBookings(c.UserContext(), middleware.GetSession(c).Token())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(bookings)
}
