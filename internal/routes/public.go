package routes

import (
	"github.com/photobook/gateway-api/internal/clients"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// PublicHandler serves the endpoints reachable without a session
type PublicHandler struct {
	backend *clients.Backend
	logger  *logrus.Logger
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(backend *clients.Backend, logger *logrus.Logger) *PublicHandler {
	return &PublicHandler{backend: backend, logger: logger}
}

// Register creates an account for the given role
// @Summary Register an account
// @Description Validates the role's registration form and forwards it to the backend
// @Tags Public
// @Accept json
// @Produce json
// @Param role path string true "user, photographer or admin"
// @Success 201 {object} models.MessageResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /register/{role} [post]
func (h *PublicHandler) Register(c *fiber.Ctx) error {
	role, err := models.ParseRole(c.Params("role"))
	if err != nil {
		return middleware.WriteError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Unknown role", err))
	}

	var resp *models.MessageResponse
	switch role {
	case models.RoleUser:
		var req models.RegisterUserRequest
		if err := parse(c, &req); err != nil {
			return middleware.WriteError(c, err)
		}
		resp, err = h.backend.RegisterUser(c.UserContext(), &req)
	case models.RolePhotographer:
		var req models.RegisterPhotographerRequest
		if err := parse(c, &req); err != nil {
			return middleware.WriteError(c, err)
		}
		resp, err = h.backend.RegisterPhotographer(c.UserContext(), &req)
	case models.RoleAdmin:
		var req models.RegisterAdminRequest
		if err := parse(c, &req); err != nil {
			return middleware.WriteError(c, err)
		}
		resp, err = h.backend.RegisterAdmin(c.UserContext(), &req)
	}
	if err != nil {
		return middleware.WriteError(c, err)
	}

	h.logger.WithField("role", role.String()).Info("Account registered")
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Contact forwards the contact form
// @Summary Contact form
// @Tags Public
// @Accept json
// @Produce json
// @Param message body models.ContactRequest true "Contact form"
// @Success 200 {object} models.MessageResponse
// @Router /contact [post]
func (h *PublicHandler) Contact(c *fiber.Ctx) error {
	var req models.ContactRequest
	if err := parse(c, &req); err != nil {
		return middleware.WriteError(c, err)
	}
	resp, err := h.backend.Contact(c.UserContext(), &req)
	if err != nil {
		return middleware.WriteError(c, err)
	}
	return c.JSON(resp)
}
