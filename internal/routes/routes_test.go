package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/photobook/gateway-api/internal/analytics"
	"github.com/photobook/gateway-api/internal/booking"
	"github.com/photobook/gateway-api/internal/clients"
	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/devbackend"
	"github.com/photobook/gateway-api/internal/middleware"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/rating"
	"github.com/photobook/gateway-api/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type gateway struct {
	t       *testing.T
	app     *fiber.App
	backend *devbackend.Server
	// upstream counts requests that reached the backend
	upstream atomic.Int64
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dev := devbackend.New(devbackend.Config{
		Secret:     []byte("e2e-secret"),
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, logger)
	g := &gateway{t: t, backend: dev}
	upstream := httptest.NewServer(adaptor.FiberApp(dev.App(func(c *fiber.Ctx) error {
		g.upstream.Add(1)
		return c.Next()
	})))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Backend: config.BackendConfig{
			BaseURL:          upstream.URL + "/api",
			Timeout:          5 * time.Second,
			BreakerFailures:  5,
			BreakerResetTime: time.Second,
		},
		Session:       config.SessionConfig{Store: "memory", CookieName: "photobook_sid", TTL: time.Hour},
		RateLimit:     config.RateLimitConfig{Enabled: false},
		Observability: config.ObservabilityConfig{MetricsPath: "/metrics"},
	}

	backend := clients.NewBackend(&cfg.Backend, logger)
	factory := session.NewFactory(session.NewMemoryStorage(cfg.Session.TTL), session.NewUnverifiedDecoder(), backend, logger)
	mw := middleware.NewManager(cfg, factory, nil, logger)

	app := fiber.New(fiber.Config{
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return middleware.WriteError(c, err)
		},
	})
	Setup(app, cfg, logger, mw, &Services{
		Backend:   backend,
		Bookings:  booking.NewManager(backend, logger),
		Ratings:   rating.NewService(backend, rating.NewMemoryLedger(), logger),
		Analytics: analytics.NewService(backend, analytics.DefaultTopN, logger),
	})
	g.app = app
	return g
}

// tab is one browser tab holding its own session id
type tab struct {
	g   *gateway
	sid string
}

func (g *gateway) tab() *tab {
	return &tab{g: g, sid: uuid.NewString()}
}

type reply struct {
	status int
	header http.Header
	body   []byte
}

// sessionView mirrors SessionResponse without the polymorphic identity
type sessionView struct {
	Authenticated bool                   `json:"authenticated"`
	Role          string                 `json:"role"`
	Identity      map[string]interface{} `json:"identity"`
	Home          string                 `json:"home"`
}

func (r reply) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), string(r.body))
}

func (r reply) errorCode(t *testing.T) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	r.decode(t, &env)
	return env.Error.Code
}

func (r reply) redirect(t *testing.T) string {
	t.Helper()
	var env struct {
		Error struct {
			Redirect string `json:"redirect"`
		} `json:"error"`
	}
	r.decode(t, &env)
	return env.Error.Redirect
}

func (tb *tab) call(method, path string, body interface{}, headers ...string) reply {
	t := tb.g.t
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, tb.sid)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := tb.g.app.Test(req, -1)
	require.NoError(t, err)
	out, _ := io.ReadAll(resp.Body)
	return reply{status: resp.StatusCode, header: resp.Header, body: out}
}

func (tb *tab) login(role models.Role, email string) sessionView {
	tb.g.t.Helper()
	r := tb.call(http.MethodPost, "/session/login/"+string(role), models.Credentials{Email: email, Password: "secret1"})
	require.Equal(tb.g.t, http.StatusOK, r.status, string(r.body))
	var sess sessionView
	r.decode(tb.g.t, &sess)
	return sess
}

func (tb *tab) session() sessionView {
	tb.g.t.Helper()
	r := tb.call(http.MethodGet, "/session", nil)
	require.Equal(tb.g.t, http.StatusOK, r.status)
	var sess sessionView
	r.decode(tb.g.t, &sess)
	return sess
}

func (g *gateway) register(role models.Role, body interface{}) {
	g.t.Helper()
	r := g.tab().call(http.MethodPost, "/register/"+string(role), body)
	require.Equal(g.t, http.StatusCreated, r.status, string(r.body))
}

func (g *gateway) seed() (user, photographer *tab, photographerID string) {
	g.register(models.RoleUser, models.RegisterUserRequest{
		Name: "Dana", Email: "dana@example.com", Password: "secret1", Phone: "0123456789", Address: "1 Main St",
	})
	g.register(models.RolePhotographer, models.RegisterPhotographerRequest{
		Name: "Ansel", Email: "ansel@example.com", Password: "secret1", Phone: "0123456789",
		Specialization: []string{"Wedding", "Portrait"}, Experience: 7,
	})

	user = g.tab()
	user.login(models.RoleUser, "dana@example.com")
	photographer = g.tab()
	photographer.login(models.RolePhotographer, "ansel@example.com")

	r := user.call(http.MethodGet, "/user/photographers", nil)
	require.Equal(g.t, http.StatusOK, r.status, string(r.body))
	var list []models.Photographer
	r.decode(g.t, &list)
	require.Len(g.t, list, 1)
	return user, photographer, list[0].ID
}

func (tb *tab) book(photographerID, date string) models.Booking {
	t := tb.g.t
	t.Helper()
	r := tb.call(http.MethodPost, "/user/bookings", models.BookSessionRequest{
		PhotographerID: photographerID, Date: date, TimeSlot: "10:00-12:00", Location: "Park",
	}, "Idempotency-Key", uuid.NewString())
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var resp models.BookingResponse
	r.decode(t, &resp)
	require.NotNil(t, resp.Booking)
	return *resp.Booking
}

func (tb *tab) setStatus(id string, status string) reply {
	return tb.call(http.MethodPut, "/photographer/bookings/"+id+"/status", StatusChangeRequest{Status: status})
}

func TestSystemEndpoints(t *testing.T) {
	g := newGateway(t)

	for _, path := range []string{"/healthz", "/readyz", "/version"} {
		resp, err := g.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := g.app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginSession(t *testing.T) {
	g := newGateway(t)
	g.seed()

	tb := g.tab()
	r := tb.call(http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, tb.sid, r.header.Get(middleware.SessionHeader))
	anon := tb.session()
	assert.False(t, anon.Authenticated)
	assert.Equal(t, "none", anon.Role)
	assert.Equal(t, "/", anon.Home)

	r = tb.call(http.MethodPost, "/session/login/user", models.Credentials{Email: "dana@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "UNAUTHENTICATED", r.errorCode(t))

	r = tb.call(http.MethodPost, "/session/login/user", models.Credentials{Email: "not-an-email", Password: "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)

	r = tb.call(http.MethodPost, "/session/login/guest", models.Credentials{Email: "dana@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusNotFound, r.status)

	sess := tb.login(models.RoleUser, "dana@example.com")
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "user", sess.Role)
	assert.Equal(t, "/dashboard", sess.Home)
	assert.Equal(t, "Dana", tb.session().Identity["name"])

	// a second tab has its own session
	assert.False(t, g.tab().session().Authenticated)

	r = tb.call(http.MethodPost, "/session/logout", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.False(t, tb.session().Authenticated)

	r = tb.call(http.MethodGet, "/user/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "/user/login", r.redirect(t))
}

func TestRoleGuards(t *testing.T) {
	g := newGateway(t)
	user, photographer, _ := g.seed()

	r := g.tab().call(http.MethodGet, "/photographer/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "/photographer/login", r.redirect(t))

	r = user.call(http.MethodGet, "/photographer/dashboard", nil)
	assert.Equal(t, http.StatusForbidden, r.status)
	assert.Equal(t, "FORBIDDEN", r.errorCode(t))

	r = photographer.call(http.MethodGet, "/admin/analytics", nil)
	assert.Equal(t, http.StatusForbidden, r.status)

	var acc AccessResponse
	user.call(http.MethodGet, "/session/access?path=/dashboard/bookings", nil).decode(t, &acc)
	assert.True(t, acc.Reachable)
	user.call(http.MethodGet, "/session/access?path=/admin-dashboard", nil).decode(t, &acc)
	assert.False(t, acc.Reachable)
	assert.Equal(t, "/dashboard", acc.Redirect)
	g.tab().call(http.MethodGet, "/session/access?path=/photographer-dashboard", nil).decode(t, &acc)
	assert.Equal(t, "/photographer/login", acc.Redirect)
}

func TestBookingLifecycle(t *testing.T) {
	g := newGateway(t)
	user, photographer, photographerID := g.seed()

	b := user.book(photographerID, "2026-11-05")
	assert.Equal(t, models.StatusPending, b.Status)

	r := photographer.setStatus(b.ID, "Completed")
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "INVALID_TRANSITION", r.errorCode(t))

	before := g.upstream.Load()
	r = photographer.setStatus(b.ID, "Done")
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)
	assert.Equal(t, "VALIDATION_FAILED", r.errorCode(t))
	assert.Equal(t, before, g.upstream.Load(), "unknown status must not reach the backend")

	r = photographer.setStatus("missing", "Confirmed")
	assert.Equal(t, http.StatusNotFound, r.status)

	r = photographer.setStatus(b.ID, "Confirmed")
	require.Equal(t, http.StatusOK, r.status, string(r.body))
	var updated models.Booking
	r.decode(t, &updated)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	r = photographer.setStatus(b.ID, "Pending")
	assert.Equal(t, http.StatusConflict, r.status)

	r = photographer.setStatus(b.ID, "Completed")
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	r = photographer.setStatus(b.ID, "Canceled")
	assert.Equal(t, http.StatusConflict, r.status)

	var bookings []models.Booking
	user.call(http.MethodGet, "/user/history", nil).decode(t, &bookings)
	require.Len(t, bookings, 1)
	assert.Equal(t, models.StatusCompleted, bookings[0].Status)

	var dash PhotographerDashboard
	photographer.call(http.MethodGet, "/photographer/dashboard", nil).decode(t, &dash)
	assert.Equal(t, 1, dash.ByStatus[models.StatusCompleted])
	assert.Empty(t, dash.Pending)
}

func TestPhotographerBookingsListNextStatuses(t *testing.T) {
	g := newGateway(t)
	user, photographer, photographerID := g.seed()

	pending := user.book(photographerID, "2026-11-05")
	confirmed := user.book(photographerID, "2026-11-06")
	canceled := user.book(photographerID, "2026-11-07")
	require.Equal(t, http.StatusOK, photographer.setStatus(confirmed.ID, "Confirmed").status)
	require.Equal(t, http.StatusOK, photographer.setStatus(canceled.ID, "Canceled").status)
	assert.Equal(t, http.StatusConflict, photographer.setStatus(confirmed.ID, "Canceled").status)

	r := photographer.call(http.MethodGet, "/photographer/bookings", nil)
	require.Equal(t, http.StatusOK, r.status, string(r.body))
	var rows []booking.Row
	r.decode(t, &rows)
	require.Len(t, rows, 3)

	next := make(map[string][]models.BookingStatus, len(rows))
	for _, row := range rows {
		next[row.ID] = row.Next
	}
	assert.Equal(t, []models.BookingStatus{models.StatusConfirmed, models.StatusCanceled}, next[pending.ID])
	assert.Equal(t, []models.BookingStatus{models.StatusCompleted}, next[confirmed.ID])
	assert.Empty(t, next[canceled.ID])
	assert.Contains(t, string(r.body), `"next":[]`)

	var dash PhotographerDashboard
	photographer.call(http.MethodGet, "/photographer/dashboard", nil).decode(t, &dash)
	require.Len(t, dash.Pending, 1)
	assert.Equal(t, pending.ID, dash.Pending[0].ID)
	assert.Equal(t, []models.BookingStatus{models.StatusConfirmed, models.StatusCanceled}, dash.Pending[0].Next)
}

func TestCreateBookingIdempotency(t *testing.T) {
	g := newGateway(t)
	user, _, photographerID := g.seed()
	req := models.BookSessionRequest{PhotographerID: photographerID, Date: "2026-11-05", TimeSlot: "09:00", Location: "Studio"}

	r := user.call(http.MethodPost, "/user/bookings", req)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "IDEMPOTENCY_REQUIRED", r.errorCode(t))

	key := uuid.NewString()
	first := user.call(http.MethodPost, "/user/bookings", req, "Idempotency-Key", key)
	require.Equal(t, http.StatusCreated, first.status, string(first.body))
	second := user.call(http.MethodPost, "/user/bookings", req, "Idempotency-Key", key)
	assert.Equal(t, http.StatusCreated, second.status)
	assert.Equal(t, "true", second.header.Get("X-Idempotency-Cached"))
	assert.JSONEq(t, string(first.body), string(second.body))

	changed := req
	changed.Location = "Beach"
	r = user.call(http.MethodPost, "/user/bookings", changed, "Idempotency-Key", key)
	assert.Equal(t, http.StatusConflict, r.status)

	var bookings []models.Booking
	user.call(http.MethodGet, "/user/bookings", nil).decode(t, &bookings)
	assert.Len(t, bookings, 1)

	r = user.call(http.MethodPost, "/user/bookings", models.BookSessionRequest{PhotographerID: photographerID}, "Idempotency-Key", uuid.NewString())
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)
}

func TestRatingOncePerBooking(t *testing.T) {
	g := newGateway(t)
	user, photographer, photographerID := g.seed()

	b := user.book(photographerID, "2026-11-05")
	rate := models.RatingRequest{PhotographerID: photographerID, BookingID: b.ID, Rating: 4, Comment: "Lovely"}

	r := user.call(http.MethodPost, "/user/ratings", rate, "Idempotency-Key", uuid.NewString())
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "INVALID_STATE", r.errorCode(t))

	require.Equal(t, http.StatusOK, photographer.setStatus(b.ID, "Confirmed").status)
	require.Equal(t, http.StatusOK, photographer.setStatus(b.ID, "Completed").status)

	r = user.call(http.MethodPost, "/user/ratings", rate, "Idempotency-Key", uuid.NewString())
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var resp models.RatingResponse
	r.decode(t, &resp)
	require.NotNil(t, resp.AverageRating)
	assert.Equal(t, 4.0, *resp.AverageRating)

	r = user.call(http.MethodPost, "/user/ratings", rate, "Idempotency-Key", uuid.NewString())
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "CONFLICT", r.errorCode(t))
}

func TestUserNotifications(t *testing.T) {
	g := newGateway(t)
	user, photographer, photographerID := g.seed()

	first := user.book(photographerID, "2026-11-01")
	user.book(photographerID, "2026-11-20")
	require.Equal(t, http.StatusOK, photographer.setStatus(first.ID, "Confirmed").status)

	var list []models.Notification
	user.call(http.MethodGet, "/user/notifications", nil).decode(t, &list)
	require.Len(t, list, 2)
	assert.True(t, list[0].Date.After(list[1].Date))

	user.call(http.MethodGet, "/user/notifications?status=confirmed", nil).decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Your booking with Ansel is now Confirmed.", list[0].Message)

	user.call(http.MethodGet, "/user/notifications?from=2026-11-10&to=2026-11-30", nil).decode(t, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "pending", list[0].Status)

	r := user.call(http.MethodGet, "/user/notifications?from=2026-11-30&to=2026-11-01", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)

	photographer.call(http.MethodGet, "/photographer/notifications", nil).decode(t, &list)
	assert.Len(t, list, 2)
}

func TestPortfolio(t *testing.T) {
	g := newGateway(t)
	_, photographer, _ := g.seed()

	item := models.PortfolioRequest{Title: "Golden hour", Description: "Beach wedding", ImageURL: "https://cdn.example.com/a.jpg"}
	r := photographer.call(http.MethodPost, "/photographer/portfolio", item)
	require.Equal(t, http.StatusCreated, r.status, string(r.body))
	var created models.PortfolioItem
	r.decode(t, &created)

	item.Title = "Blue hour"
	r = photographer.call(http.MethodPut, "/photographer/portfolio/"+created.ID, item)
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	r = photographer.call(http.MethodPut, "/photographer/portfolio/"+uuid.NewString(), item)
	assert.Equal(t, http.StatusNotFound, r.status)

	r = photographer.call(http.MethodDelete, "/photographer/portfolio/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, r.status)

	var items []models.PortfolioItem
	photographer.call(http.MethodGet, "/photographer/portfolio", nil).decode(t, &items)
	assert.Empty(t, items)
}

func TestAdminAnalytics(t *testing.T) {
	g := newGateway(t)
	user, photographer, photographerID := g.seed()
	g.register(models.RoleAdmin, models.RegisterAdminRequest{Name: "Root", Email: "root@example.com", Password: "secret1"})
	admin := g.tab()
	admin.login(models.RoleAdmin, "root@example.com")

	b := user.book(photographerID, "2026-11-05")
	user.book(photographerID, "2026-11-06")
	require.Equal(t, http.StatusOK, photographer.setStatus(b.ID, "Canceled").status)

	var report analytics.Report
	r := admin.call(http.MethodGet, "/admin/analytics", nil)
	require.Equal(t, http.StatusOK, r.status, string(r.body))
	r.decode(t, &report)
	assert.Equal(t, 1, report.Summary.TotalUsers)
	assert.Equal(t, 1, report.Summary.TotalPhotographers)
	assert.Equal(t, 2, report.Summary.TotalBookings)
	assert.Equal(t, 1, report.Summary.ActiveBookings)
	require.Len(t, report.TopPhotographers, 1)
	assert.Equal(t, 2, report.TopPhotographers[0].Bookings)
	assert.Equal(t, 1, report.Specializations["Wedding"])
	require.Len(t, report.ActiveBookings, 1)
	assert.Equal(t, "Dana", report.ActiveBookings[0].UserName)

	g.register(models.RoleUser, models.RegisterUserRequest{
		Name: "Eli", Email: "eli@example.com", Password: "secret1", Phone: "0123456789",
	})
	var users []models.EndUser
	admin.call(http.MethodGet, "/admin/users", nil).decode(t, &users)
	require.Len(t, users, 2)
	var eli string
	for _, u := range users {
		if u.Name == "Eli" {
			eli = u.ID
		}
	}

	r = admin.call(http.MethodPut, "/admin/users/"+eli+"/status", UserStatusRequest{Status: "frozen"})
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)
	r = admin.call(http.MethodPut, fmt.Sprintf("/admin/users/%s/status", eli), UserStatusRequest{Status: models.UserStatusInactive})
	require.Equal(t, http.StatusOK, r.status, string(r.body))

	r = g.tab().call(http.MethodPost, "/session/login/user", models.Credentials{Email: "eli@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestBackendRejectionClearsSession(t *testing.T) {
	g := newGateway(t)
	user, _, _ := g.seed()

	g.backend.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })

	r := user.call(http.MethodGet, "/user/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "/user/login", r.redirect(t))

	assert.False(t, user.session().Authenticated)
}
