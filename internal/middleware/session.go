package middleware

import (
	"github.com/photobook/gateway-api/internal/access"
	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/session"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionHeader carries the session id for clients that do not keep cookies
const SessionHeader = "X-Session-ID"

const (
	localsStore   = "session_store"
	localsSession = "session"
)

type SessionMiddleware struct {
	factory *session.Factory
	cfg     *config.SessionConfig
	logger  *logrus.Logger
}

func NewSessionMiddleware(factory *session.Factory, cfg *config.SessionConfig, logger *logrus.Logger) *SessionMiddleware {
	return &SessionMiddleware{factory: factory, cfg: cfg, logger: logger}
}

// Handle binds a session store to the request and rehydrates it once.
// A request without a session id gets a fresh one.
func (s *SessionMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// sid outlives the request as a storage key
		sid := utils.CopyString(c.Cookies(s.cfg.CookieName))
		if sid == "" {
			sid = utils.CopyString(c.Get(SessionHeader))
		}
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
		}

		c.Cookie(&fiber.Cookie{
			Name:     s.cfg.CookieName,
			Value:    sid,
			Path:     "/",
			MaxAge:   int(s.cfg.TTL.Seconds()),
			Secure:   s.cfg.Secure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Set(SessionHeader, sid)

		store := s.factory.For(sid)
		sess, err := store.Restore(c.UserContext())
		if err != nil {
			s.logger.WithError(err).WithField("session_id", sid).Error("Failed to load session")
			return WriteError(c, apperrors.NewAppError(apperrors.CodeUpstreamUnavailable, "Session storage unavailable", err))
		}

		c.Locals(localsStore, store)
		c.Locals(localsSession, sess)
		return c.Next()
	}
}

// GetStore returns the store bound by the session middleware
func GetStore(c *fiber.Ctx) *session.Store {
	if store, ok := c.Locals(localsStore).(*session.Store); ok {
		return store
	}
	return nil
}

// GetSession returns the current session, unauthenticated when none is bound
func GetSession(c *fiber.Ctx) session.Session {
	if store := GetStore(c); store != nil {
		return store.Current()
	}
	return session.Unauthenticated()
}

// GetSessionID returns the browser session id
func GetSessionID(c *fiber.Ctx) string {
	if store := GetStore(c); store != nil {
		return store.ID()
	}
	return ""
}

// GetUserID returns the id of the signed-in identity of any role
func GetUserID(c *fiber.Ctx) string {
	if id := GetSession(c).Identity(); id != nil {
		return id.IdentityID()
	}
	return ""
}

// RequireRole guards a route tree. Without a session the client is sent to
// the role's login page; a session of another role is forbidden.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := GetSession(c)
		if !sess.IsAuthenticated() {
			return WriteErrorWithRedirect(c,
				apperrors.New(apperrors.CodeUnauthenticated, "Please log in to continue"),
				access.LoginPath(role))
		}
		if sess.Role() != role {
			return WriteError(c, apperrors.NewAppErrorf(apperrors.CodeForbidden, nil,
				"This area requires the %s role", role))
		}
		return c.Next()
	}
}
