package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/models"
	"github.com/photobook/gateway-api/internal/session"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noAuth struct{}

func (noAuth) Login(context.Context, models.Role, models.Credentials) (*models.LoginResult, error) {
	return nil, apperrors.New(apperrors.CodeUnauthenticated, "Invalid credentials")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1", "exp": exp.Unix()}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

type harness struct {
	app     *fiber.App
	storage *session.MemoryStorage
	cfg     *config.Config
}

func newHarness(t *testing.T) *harness {
	cfg := &config.Config{
		Session: config.SessionConfig{CookieName: "photobook_sid", TTL: time.Hour},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
	}
	storage := session.NewMemoryStorage(time.Hour)
	factory := session.NewFactory(storage, session.NewUnverifiedDecoder(), noAuth{}, quietLogger())
	m := NewManager(cfg, factory, nil, quietLogger())

	app := fiber.New()
	app.Use(m.Session.Handle())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": GetSession(c).Role().String(), "id": GetUserID(c), "sid": GetSessionID(c)})
	})
	app.Get("/user/area", RequireRole(models.RoleUser), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	var calls int
	app.Post("/user/bookings", m.Idempotency.Require(), func(c *fiber.Ctx) error {
		calls++
		if strings.Contains(string(c.Body()), "fail") {
			return WriteError(c, apperrors.New(apperrors.CodeUpstreamUnavailable, "down"))
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	return &harness{app: app, storage: storage, cfg: cfg}
}

func (h *harness) signIn(t *testing.T, sid string, role models.Role, identity string) {
	require.NoError(t, h.storage.Save(context.Background(), sid, map[string]string{
		session.KeyToken: token(t, time.Now().Add(time.Hour)),
		string(role):     identity,
	}, nil))
}

func (h *harness) do(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}) {
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(body, &out)
	return resp, out
}

func TestSession_AssignsIDWhenMissing(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	sid := resp.Header.Get(SessionHeader)
	_, err := uuid.Parse(sid)
	require.NoError(t, err)
	assert.Equal(t, sid, body["sid"])
	assert.Equal(t, "none", body["role"])
	assert.Contains(t, resp.Header.Get("Set-Cookie"), "photobook_sid="+sid)
}

func TestSession_RestoresFromHeaderAndCookie(t *testing.T) {
	h := newHarness(t)
	sid := uuid.NewString()
	h.signIn(t, sid, models.RoleUser, `{"_id":"u1","name":"Dana","email":"d@x.io"}`)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(SessionHeader, sid)
	_, body := h.do(t, req)
	assert.Equal(t, "user", body["role"])
	assert.Equal(t, "u1", body["id"])

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "photobook_sid", Value: sid})
	_, body = h.do(t, req)
	assert.Equal(t, "u1", body["id"])
}

type staticAuth struct{ token string }

func (a staticAuth) Login(_ context.Context, _ models.Role, creds models.Credentials) (*models.LoginResult, error) {
	return &models.LoginResult{
		Token:    a.token,
		Identity: &models.EndUser{ID: "u1", Name: "Dana", Email: creds.Email},
	}, nil
}

func TestSession_LoginSurvivesLaterRequests(t *testing.T) {
	cfg := &config.SessionConfig{CookieName: "photobook_sid", TTL: time.Hour}
	storage := session.NewMemoryStorage(time.Hour)
	factory := session.NewFactory(storage, session.NewUnverifiedDecoder(),
		staticAuth{token: token(t, time.Now().Add(time.Hour))}, quietLogger())
	sm := NewSessionMiddleware(factory, cfg, quietLogger())

	// default config: request buffers are reused between requests
	app := fiber.New()
	app.Use(sm.Handle())
	app.Post("/login", func(c *fiber.Ctx) error {
		sess, err := GetStore(c).Login(c.UserContext(), models.RoleUser,
			models.Credentials{Email: "d@x.io", Password: "secret1"})
		if err != nil {
			return WriteError(c, err)
		}
		return c.JSON(fiber.Map{"role": sess.Role().String()})
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": GetSession(c).Role().String()})
	})

	call := func(method, path, sid string) map[string]interface{} {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(SessionHeader, sid)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		var out map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	sid := uuid.NewString()
	assert.Equal(t, "user", call(http.MethodPost, "/login", sid)["role"])
	for i := 0; i < 5; i++ {
		assert.Equal(t, "none", call(http.MethodGet, "/whoami", uuid.NewString())["role"])
	}
	assert.Equal(t, "user", call(http.MethodGet, "/whoami", sid)["role"])

	values, err := storage.Load(context.Background(), sid)
	require.NoError(t, err)
	assert.Contains(t, values, session.KeyUser)
}

func TestRequireRole(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, httptest.NewRequest(http.MethodGet, "/user/area", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "UNAUTHENTICATED", errBody["code"])
	assert.Equal(t, "/user/login", errBody["redirect"])

	sid := uuid.NewString()
	h.signIn(t, sid, models.RolePhotographer, `{"_id":"p1","name":"Ansel","email":"a@x.io"}`)
	req := httptest.NewRequest(http.MethodGet, "/user/area", nil)
	req.Header.Set(SessionHeader, sid)
	resp, body = h.do(t, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["error"].(map[string]interface{})["code"])

	sid = uuid.NewString()
	h.signIn(t, sid, models.RoleUser, `{"_id":"u1","name":"Dana","email":"d@x.io"}`)
	req = httptest.NewRequest(http.MethodGet, "/user/area", nil)
	req.Header.Set(SessionHeader, sid)
	resp, _ = h.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSession_ExpiredTokenIsCleared(t *testing.T) {
	h := newHarness(t)
	sid := uuid.NewString()
	require.NoError(t, h.storage.Save(context.Background(), sid, map[string]string{
		session.KeyToken: token(t, time.Now().Add(-time.Minute)),
		session.KeyUser:  `{"_id":"u1","name":"Dana","email":"d@x.io"}`,
	}, nil))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(SessionHeader, sid)
	_, body := h.do(t, req)
	assert.Equal(t, "none", body["role"])

	values, err := h.storage.Load(context.Background(), sid)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func post(sid, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/user/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, sid)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotency(t *testing.T) {
	h := newHarness(t)
	sid := uuid.NewString()
	key := uuid.NewString()

	resp, body := h.do(t, post(sid, "", `{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_REQUIRED", body["error"].(map[string]interface{})["code"])

	resp, body = h.do(t, post(sid, key, `{"a":1}`))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["call"])

	resp, body = h.do(t, post(sid, key, `{"a":1}`))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Idempotency-Cached"))
	assert.Equal(t, float64(1), body["call"])

	resp, body = h.do(t, post(sid, key, `{"a":2}`))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", body["error"].(map[string]interface{})["code"])

	// the same key in another session is independent
	resp, body = h.do(t, post(uuid.NewString(), key, `{"a":1}`))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), body["call"])
}

func TestIdempotency_FailureReleasesKey(t *testing.T) {
	h := newHarness(t)
	sid := uuid.NewString()
	key := uuid.NewString()

	resp, _ := h.do(t, post(sid, key, `{"fail":true}`))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = h.do(t, post(sid, key, `{"fail":true}`))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Idempotency-Cached"))
}

func TestMemoryIdempotencyStore_InProgress(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	ctx := context.Background()

	ok, _, err := store.Claim(ctx, "k", "fp", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, existing, err := store.Claim(ctx, "k", "fp", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "fp", existing)

	record, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, record)

	now := time.Now()
	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	ok, _, err = store.Claim(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimit_LocalFallback(t *testing.T) {
	cfg := &config.RateLimitConfig{Enabled: true, RPS: 2, Burst: 2, WindowSize: time.Minute, ExemptPaths: []string{"/healthz"}}
	rl := NewRateLimitMiddleware(cfg, nil, quietLogger())

	app := fiber.New()
	app.Use(rl.Handle())
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRateLimit_RedisBucketRefillsBetweenRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.RateLimitConfig{Enabled: true, RPS: 10, Burst: 2, WindowSize: time.Second}
	rl := NewRateLimitMiddleware(cfg, client, quietLogger())
	clock := time.UnixMilli(1_700_000_000_000)
	rl.now = func() time.Time { return clock }

	app := fiber.New()
	app.Use(rl.Handle())
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendString("ok") })

	hit := func() int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	// one token every 100ms, requests every 50ms: the burst, then every other request
	allowed := 0
	for i := 0; i < 40; i++ {
		switch code := hit(); code {
		case http.StatusOK:
			allowed++
		default:
			assert.Equal(t, http.StatusTooManyRequests, code)
		}
		clock = clock.Add(50 * time.Millisecond)
	}
	assert.Equal(t, 21, allowed)

	// an idle client gets back at most the burst
	clock = clock.Add(10 * time.Second)
	assert.Equal(t, []int{200, 200, 429}, []int{hit(), hit(), hit()})
}

func TestErrorLogger_CarriesRequestAndSession(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	storage := session.NewMemoryStorage(time.Hour)
	factory := session.NewFactory(storage, session.NewUnverifiedDecoder(), noAuth{}, quietLogger())
	sm := NewSessionMiddleware(factory, &config.SessionConfig{CookieName: "photobook_sid", TTL: time.Hour}, quietLogger())

	app := fiber.New()
	app.Use(NewErrorLoggerMiddleware(logger).Handle())
	app.Use(sm.Handle())
	app.Put("/user/profile", func(c *fiber.Ctx) error {
		return WriteError(c, apperrors.New(apperrors.CodeConflict, "Email is already registered"))
	})

	sid := uuid.NewString()
	require.NoError(t, storage.Save(context.Background(), sid, map[string]string{
		session.KeyToken: token(t, time.Now().Add(time.Hour)),
		session.KeyUser:  `{"_id":"u1","name":"Dana","email":"d@x.io"}`,
	}, nil))

	req := httptest.NewRequest(http.MethodPut, "/user/profile", strings.NewReader(`{"email":"d@x.io","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SessionHeader, sid)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "Client error response", entry["msg"])
	httpFields := entry["http"].(map[string]interface{})
	assert.Equal(t, "PUT", httpFields["method"])
	assert.Equal(t, "/user/profile", httpFields["route"])
	assert.Equal(t, float64(http.StatusConflict), httpFields["status"])
	assert.Contains(t, entry, "latency_ms")
	assert.Contains(t, entry, "trace_id")
	assert.Equal(t, sid, entry["session_id"])
	assert.Equal(t, "user", entry["role"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.NotContains(t, entry["request_body"], "hunter22")
}

func TestMaskSecrets(t *testing.T) {
	masked := maskSecrets([]byte(`{"email":"a@b.co","password":"hunter22","Token":"eyJ.x.y"}`))
	assert.NotContains(t, masked, "hunter22")
	assert.NotContains(t, masked, "eyJ.x.y")
	assert.Contains(t, masked, `"password":"***"`)
	assert.Contains(t, masked, "a@b.co")

	long := maskSecrets([]byte(strings.Repeat("x", 600)))
	assert.True(t, strings.HasSuffix(long, "...(truncated)"))
}
