package routes

import (
	"github.com/photobook/gateway-api/internal/access"
	"github.com/photobook/gateway-api/internal/logging"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/session"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionResponse describes the caller's session
type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Role          string          `json:"role"`
	Identity      models.Identity `json:"identity,omitempty"`
	Home          string          `json:"home"`
}

// AccessResponse answers whether a client-side path may be shown
type AccessResponse struct {
	Path      string `json:"path"`
	Reachable bool   `json:"reachable"`
	Redirect  string `json:"redirect,omitempty"`
}

// SessionHandler handles login, logout and session inspection
type SessionHandler struct {
	logger *logrus.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{logger: logger}
}

func describeSession(sess session.Session) SessionResponse {
	resp := SessionResponse{
		Authenticated: sess.IsAuthenticated(),
		Role:          sess.Role().String(),
		Home:          access.Home(sess),
	}
	if sess.IsAuthenticated() {
		resp.Identity = sess.Identity()
	}
	return resp
}

// Get returns the current session
// @Summary Current session
// @Description Returns the role, identity and landing page of the browser session
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /session [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	return c.JSON(describeSession(middleware.GetSession(c)))
}

// Access reports whether the session may navigate to ?path=
// @Summary Route access check
// @Tags Session
// @Produce json
// @Param path query string true "Client-side path"
// @Success 200 {object} AccessResponse
// @Router /session/access [get]
func (h *SessionHandler) Access(c *fiber.Ctx) error {
	path := c.Query("path", "/")
	sess := middleware.GetSession(c)

	resp := AccessResponse{Path: path, Reachable: access.Reachable(sess, path)}
	if !resp.Reachable {
		if role := access.RequiredRole(path); role != models.RoleNone && !sess.IsAuthenticated() {
			resp.Redirect = access.LoginPath(role)
		} else {
			resp.Redirect = access.Home(sess)
		}
	}
	return c.JSON(resp)
}

// Login authenticates against the backend for the given role
// @Summary Log in
// @Description Exchanges credentials for a backend token and binds the identity to the session
// @Tags Session
// @Accept json
// @Produce json
// @Param role path string true "user, photographer or admin"
// @Param credentials body models.Credentials true "Login form"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 422 {object} apperrors.ErrorResponse
// @Router /session/login/{role} [post]
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	role, err := models.ParseRole(c.Params("role"))
	if err != nil {
		return middleware.WriteError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Unknown role", err))
	}

	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		return middleware.WriteError(c, apperrors.NewAppError(errInvalidBody.Code, errInvalidBody.Message, err))
	}

	store := middleware.GetStore(c)
	sess, err := store.Login(c.UserContext(), role, creds)
	if err != nil {
		logging.WithSession(h.logger, store.ID(), role.String()).
			WithField("error_code", apperrors.As(err).Code).
			Info("Login rejected")
		return middleware.WriteError(c, err)
	}
	return c.JSON(describeSession(sess))
}

// Logout clears the session
// @Summary Log out
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	store := middleware.GetStore(c)
	store.Logout(c.UserContext())
	return c.JSON(describeSession(store.Current()))
}
