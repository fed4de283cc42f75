package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/photobook/gateway-api/internal/metrics"
	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/sirupsen/logrus"
)

// Authenticator performs the backend login for a role
type Authenticator interface {
	Login(ctx context.Context, role models.Role, creds models.Credentials) (*models.LoginResult, error)
}

// Factory builds a Store for each browser session id, sharing storage,
// token decoding and the backend authenticator.
type Factory struct {
	storage Storage
	decoder TokenDecoder
	auth    Authenticator
	logger  *logrus.Logger
	now     func() time.Time
}

// NewFactory creates a store factory
func NewFactory(storage Storage, decoder TokenDecoder, auth Authenticator, logger *logrus.Logger) *Factory {
	return &Factory{
		storage: storage,
		decoder: decoder,
		auth:    auth,
		logger:  logger,
		now:     time.Now,
	}
}

// For returns the store bound to sid. The store starts unauthenticated
// until Restore or Login is called.
func (f *Factory) For(sid string) *Store {
	return &Store{sid: sid, f: f}
}

// Store is the session state of a single browser tab
type Store struct {
	sid string
	f   *Factory

	mu      sync.RWMutex
	current Session
}

// ID returns the browser session id
func (s *Store) ID() string { return s.sid }

// Current returns the in-memory session
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) set(sess Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

func (s *Store) log() *logrus.Entry {
	return s.f.logger.WithField("session_id", s.sid)
}

// Restore rehydrates the session from storage. A missing token leaves the
// session unauthenticated without touching storage. An undecodable or
// expired token, or anything other than exactly one decodable identity
// blob, clears every key. The error is non-nil only when storage fails.
func (s *Store) Restore(ctx context.Context) (Session, error) {
	values, err := s.f.storage.Load(ctx, s.sid)
	if err != nil {
		s.set(Unauthenticated())
		return Unauthenticated(), err
	}

	token := values[KeyToken]
	if token == "" {
		s.set(Unauthenticated())
		return Unauthenticated(), nil
	}

	exp, err := s.f.decoder.Expiry(ctx, token)
	if err != nil {
		s.log().WithError(err).Info("Discarding session with undecodable token")
		return s.discard(ctx, "invalid_token")
	}
	if !exp.After(s.f.now()) {
		s.log().WithField("expired_at", exp).Info("Discarding expired session")
		return s.discard(ctx, "expired")
	}

	var (
		role models.Role
		blob string
		seen int
	)
	for _, r := range models.Roles {
		if v := values[roleKey(r)]; v != "" {
			role, blob = r, v
			seen++
		}
	}
	if seen != 1 {
		s.log().WithField("identities", seen).Warn("Discarding session with inconsistent identities")
		return s.discard(ctx, "inconsistent")
	}

	identity, err := models.DecodeIdentity(role, []byte(blob))
	if err != nil {
		s.log().WithError(err).Warn("Discarding session with undecodable identity")
		return s.discard(ctx, "inconsistent")
	}

	sess := Authenticated(token, identity)
	s.set(sess)
	metrics.RecordSessionEvent("restored", role.String())
	return sess, nil
}

func (s *Store) discard(ctx context.Context, event string) (Session, error) {
	s.clear(ctx)
	metrics.RecordSessionEvent(event, models.RoleNone.String())
	return Unauthenticated(), nil
}

// Login validates credentials locally, delegates to the backend and, on
// success, persists the token and the role's identity while removing any
// other role's identity.
func (s *Store) Login(ctx context.Context, role models.Role, creds models.Credentials) (Session, error) {
	if !role.IsValid() {
		return Unauthenticated(), apperrors.NewAppErrorf(apperrors.CodeBadRequest, nil, "unknown role %q", role)
	}
	if err := models.Validate(&creds); err != nil {
		return Unauthenticated(), err
	}

	res, err := s.f.auth.Login(ctx, role, creds)
	if err != nil {
		metrics.RecordSessionEvent("login_failed", role.String())
		return Unauthenticated(), authenticationError(err)
	}
	if res.Identity.IdentityRole() != role {
		metrics.RecordSessionEvent("login_failed", role.String())
		return Unauthenticated(), apperrors.NewAppError(apperrors.CodeUpstreamUnavailable, "Login returned a profile for another role", nil)
	}

	blob, err := json.Marshal(res.Identity)
	if err != nil {
		return Unauthenticated(), apperrors.NewAppError(apperrors.CodeInternalError, "Failed to store session", err)
	}

	key := roleKey(role)
	remove := make([]string, 0, len(models.Roles)-1)
	for _, r := range models.Roles {
		if r != role {
			remove = append(remove, roleKey(r))
		}
	}
	set := map[string]string{KeyToken: res.Token, key: string(blob)}
	if err := s.f.storage.Save(ctx, s.sid, set, remove); err != nil {
		return Unauthenticated(), apperrors.NewAppError(apperrors.CodeInternalError, "Failed to store session", err)
	}

	sess := Authenticated(res.Token, res.Identity)
	s.set(sess)
	metrics.RecordSessionEvent("login", role.String())
	s.log().WithFields(logrus.Fields{
		"role":    role.String(),
		"user_id": res.Identity.IdentityID(),
	}).Info("Session established")
	return sess, nil
}

// authenticationError keeps the backend's message while classifying the
// failure as an authentication error. Upstream faults keep their code.
func authenticationError(err error) error {
	appErr := apperrors.As(err)
	switch appErr.Code {
	case apperrors.CodeUpstreamTimeout, apperrors.CodeUpstreamUnavailable, apperrors.CodeInternalError:
		return appErr
	}
	return apperrors.NewAppError(apperrors.CodeUnauthenticated, appErr.Message, err)
}

// Logout clears every persisted key and the in-memory session. It never fails.
func (s *Store) Logout(ctx context.Context) {
	role := s.Current().Role()
	s.clear(ctx)
	metrics.RecordSessionEvent("logout", role.String())
}

// Invalidate tears the session down after the backend rejected its token
func (s *Store) Invalidate(ctx context.Context) {
	role := s.Current().Role()
	s.clear(ctx)
	metrics.RecordSessionEvent("invalidated", role.String())
	s.log().WithField("role", role.String()).Info("Session invalidated by backend")
}

// Check inspects a backend error and invalidates the session when the
// backend answered 401. The error is returned unchanged.
func (s *Store) Check(ctx context.Context, err error) error {
	if err != nil && apperrors.HasCode(err, apperrors.CodeUnauthenticated) && s.Current().IsAuthenticated() {
		s.Invalidate(ctx)
	}
	return err
}

func (s *Store) clear(ctx context.Context) {
	s.set(Unauthenticated())
	if err := s.f.storage.Clear(ctx, s.sid); err != nil {
		s.log().WithError(err).Error("Failed to clear persisted session")
	}
}
