// Package session holds the authenticated identity of one browser tab.
//
// A Session is either unauthenticated or carries exactly one identity
// (EndUser, Photographer or Admin) together with its bearer token. The
// persisted form lives in a Storage under four keys: token, user,
// photographer and admin.
package session

import (
	"github.com/photobook/gateway-api/internal/models"
)

// Persisted keys
const (
	KeyToken        = "token"
	KeyUser         = "user"
	KeyPhotographer = "photographer"
	KeyAdmin        = "admin"
)

// AllKeys lists every persisted key; Logout clears all of them
var AllKeys = []string{KeyToken, KeyUser, KeyPhotographer, KeyAdmin}

// roleKey maps a role to the key its identity blob is persisted under
func roleKey(r models.Role) string {
	switch r {
	case models.RoleUser:
		return KeyUser
	case models.RolePhotographer:
		return KeyPhotographer
	case models.RoleAdmin:
		return KeyAdmin
	}
	return ""
}

// Session is the current authentication state. The zero value is unauthenticated.
type Session struct {
	token    string
	identity models.Identity
}

// Unauthenticated returns the empty session
func Unauthenticated() Session {
	return Session{}
}

// Authenticated builds a session holding one identity
func Authenticated(token string, identity models.Identity) Session {
	if token == "" || identity == nil {
		return Session{}
	}
	return Session{token: token, identity: identity}
}

func (s Session) IsAuthenticated() bool { return s.identity != nil }

func (s Session) Token() string { return s.token }

func (s Session) Identity() models.Identity { return s.identity }

// Role returns RoleNone for an unauthenticated session
func (s Session) Role() models.Role {
	if s.identity == nil {
		return models.RoleNone
	}
	return s.identity.IdentityRole()
}

// UserID returns the EndUser id, or "" when the session is not an EndUser
func (s Session) UserID() string {
	if u, ok := s.User(); ok {
		return u.ID
	}
	return ""
}

func (s Session) User() (*models.EndUser, bool) {
	u, ok := s.identity.(*models.EndUser)
	return u, ok
}

func (s Session) Photographer() (*models.Photographer, bool) {
	p, ok := s.identity.(*models.Photographer)
	return p, ok
}

func (s Session) Admin() (*models.Admin, bool) {
	a, ok := s.identity.(*models.Admin)
	return a, ok
}
