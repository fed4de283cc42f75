package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/photobook/gateway-api/internal/config"
	"github.com/photobook/gateway-api/internal/metrics"
	"github.com/photobook/gateway-api/internal/models"
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBytes = 4 << 20

// ErrInvalidPayload is returned when the backend answers 2xx with a body
// that does not match the expected schema.
var ErrInvalidPayload = apperrors.New(apperrors.CodeUpstreamUnavailable, "Invalid response from backend")

// Backend is a typed client for the photobook REST backend
type Backend struct {
	baseURL    string
	httpClient *http.Client
	breaker    *Breaker
	logger     *logrus.Logger
	tracer     trace.Tracer
}

// NewBackend creates a new backend client
func NewBackend(cfg *config.BackendConfig, logger *logrus.Logger) *Backend {
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxConnsPerHost:     20,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Backend{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		breaker:    NewBreaker(cfg.BreakerFailures, cfg.BreakerResetTime, logger),
		logger:     logger,
		tracer:     otel.Tracer("photobook-gateway/clients"),
	}
}

// Breaker exposes the circuit breaker for health reporting
func (c *Backend) Breaker() *Breaker {
	return c.breaker
}

// call describes one backend round trip. route is the low-cardinality
// template used for metrics and span names.
type call struct {
	method string
	route  string
	path   string
	token  string
	query  url.Values
	body   interface{}
}

// Registration and login

// RegisterUser creates an EndUser account
func (c *Backend) RegisterUser(ctx context.Context, req *models.RegisterUserRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/users/register", path: "/users/register", body: req}, &out)
	return &out, err
}

// RegisterPhotographer creates a photographer account
func (c *Backend) RegisterPhotographer(ctx context.Context, req *models.RegisterPhotographerRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/photographers/register", path: "/photographers/register", body: req}, &out)
	return &out, err
}

// RegisterAdmin creates an admin account
func (c *Backend) RegisterAdmin(ctx context.Context, req *models.RegisterAdminRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/admin/register", path: "/admin/register", body: req}, &out)
	return &out, err
}

var loginPaths = map[models.Role]string{
	models.RoleUser:         "/users/login",
	models.RolePhotographer: "/photographers/login",
	models.RoleAdmin:        "/admin/login",
}

// Login authenticates against the role's login endpoint. The response
// carries the token and the identity under the role's key.
func (c *Backend) Login(ctx context.Context, role models.Role, creds models.Credentials) (*models.LoginResult, error) {
	path, ok := loginPaths[role]
	if !ok {
		return nil, apperrors.NewAppErrorf(apperrors.CodeBadRequest, nil, "unknown role %q", role)
	}

	var raw map[string]json.RawMessage
	if err := c.do(ctx, call{method: http.MethodPost, route: path, path: path, body: creds}, &raw); err != nil {
		return nil, err
	}

	var token string
	if err := json.Unmarshal(raw["token"], &token); err != nil || token == "" {
		return nil, apperrors.NewAppError(ErrInvalidPayload.Code, "Login response is missing the token", err)
	}
	blob, ok := raw[string(role)]
	if !ok {
		return nil, apperrors.NewAppErrorf(ErrInvalidPayload.Code, nil, "Login response is missing the %s profile", role)
	}
	identity, err := models.DecodeIdentity(role, blob)
	if err != nil {
		return nil, apperrors.NewAppError(ErrInvalidPayload.Code, ErrInvalidPayload.Message, err)
	}

	return &models.LoginResult{Token: token, Identity: identity}, nil
}

// EndUser surface

// GetUserProfile returns the caller's EndUser profile
func (c *Backend) GetUserProfile(ctx context.Context, token string) (*models.EndUser, error) {
	var out models.EndUser
	if err := c.do(ctx, call{method: http.MethodGet, route: "/users/profile", path: "/users/profile", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, validated(&out)
}

// UpdateUserProfile updates the caller's EndUser profile
func (c *Backend) UpdateUserProfile(ctx context.Context, token string, req *models.UpdateUserProfileRequest) (*models.EndUser, error) {
	var out models.EndUser
	if err := c.do(ctx, call{method: http.MethodPut, route: "/users/profile", path: "/users/profile", token: token, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, validated(&out)
}

// UserHistory lists the caller's bookings filtered by status
func (c *Backend) UserHistory(ctx context.Context, token string, status models.BookingStatus) ([]models.Booking, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/users/history", path: "/users/history", token: token, query: q}, &raw); err != nil {
		return nil, err
	}
	return decodeBookings(raw)
}

// UserBookings lists every booking of the caller
func (c *Backend) UserBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/users/bookings", path: "/users/bookings", token: token}, &raw); err != nil {
		return nil, err
	}
	return decodeBookings(raw)
}

// BookSession creates a booking and returns it as stored by the backend
func (c *Backend) BookSession(ctx context.Context, token string, req *models.BookSessionRequest) (*models.Booking, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodPost, route: "/users/book-session", path: "/users/book-session", token: token, body: req}, &raw); err != nil {
		return nil, err
	}
	return decodeBooking(raw)
}

// Contact submits the public contact form
func (c *Backend) Contact(ctx context.Context, req *models.ContactRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/users/contact", path: "/users/contact", body: req}, &out)
	return &out, err
}

// Photographer surface

// ListPhotographers returns the photographer directory
func (c *Backend) ListPhotographers(ctx context.Context, token string) ([]models.Photographer, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/photographers", path: "/photographers", token: token}, &raw); err != nil {
		return nil, err
	}
	var out []models.Photographer
	if err := decodeList(raw, "photographers", &out); err != nil {
		return nil, err
	}
	return out, validatedEach(out)
}

// GetPhotographerProfile returns the caller's photographer profile
func (c *Backend) GetPhotographerProfile(ctx context.Context, token string) (*models.Photographer, error) {
	var out models.Photographer
	if err := c.do(ctx, call{method: http.MethodGet, route: "/photographers/profile", path: "/photographers/profile", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, validated(&out)
}

// UpdatePhotographerProfile updates the caller's photographer profile
func (c *Backend) UpdatePhotographerProfile(ctx context.Context, token string, req *models.UpdatePhotographerProfileRequest) (*models.Photographer, error) {
	var out models.Photographer
	if err := c.do(ctx, call{method: http.MethodPut, route: "/photographers/profile", path: "/photographers/profile", token: token, body: req}, &out); err != nil {
		return nil, err
	}
	return &out, validated(&out)
}

// ListPortfolio returns the caller's portfolio items
func (c *Backend) ListPortfolio(ctx context.Context, token string) ([]models.PortfolioItem, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/photographers/portfolio", path: "/photographers/portfolio", token: token}, &raw); err != nil {
		return nil, err
	}
	var out []models.PortfolioItem
	if err := decodeList(raw, "portfolio", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePortfolioItem adds a portfolio item
func (c *Backend) CreatePortfolioItem(ctx context.Context, token string, req *models.PortfolioRequest) (*models.PortfolioItem, error) {
	var out models.PortfolioItem
	err := c.do(ctx, call{method: http.MethodPost, route: "/photographers/portfolio", path: "/photographers/portfolio", token: token, body: req}, &out)
	return &out, err
}

// UpdatePortfolioItem replaces a portfolio item
func (c *Backend) UpdatePortfolioItem(ctx context.Context, token, id string, req *models.PortfolioRequest) (*models.PortfolioItem, error) {
	var out models.PortfolioItem
	err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/photographers/portfolio/:id",
		path:   "/photographers/portfolio/" + url.PathEscape(id),
		token:  token,
		body:   req,
	}, &out)
	return &out, err
}

// DeletePortfolioItem removes a portfolio item
func (c *Backend) DeletePortfolioItem(ctx context.Context, token, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/photographers/portfolio/:id",
		path:   "/photographers/portfolio/" + url.PathEscape(id),
		token:  token,
	}, nil)
}

// PhotographerBookings lists bookings addressed to the caller
func (c *Backend) PhotographerBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/photographers/bookings", path: "/photographers/bookings", token: token}, &raw); err != nil {
		return nil, err
	}
	return decodeBookings(raw)
}

// UpdateBookingStatus persists a status change. The returned booking is nil
// when the backend only acknowledges with a message.
func (c *Backend) UpdateBookingStatus(ctx context.Context, token string, req *models.StatusUpdateRequest) (*models.Booking, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodPut, route: "/photographers/booking-status", path: "/photographers/booking-status", token: token, body: req}, &raw); err != nil {
		return nil, err
	}
	b, err := decodeBooking(raw)
	if errors.Is(err, ErrInvalidPayload) {
		return nil, nil
	}
	return b, err
}

// RatePhotographer records a rating for a completed booking
func (c *Backend) RatePhotographer(ctx context.Context, token string, rating *models.Rating) (*models.RatingResponse, error) {
	var out models.RatingResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "/photographers/rate/:photographerId",
		path:   "/photographers/rate/" + url.PathEscape(rating.PhotographerID),
		token:  token,
		body:   rating,
	}, &out)
	return &out, err
}

// PhotographerNotifications lists notifications addressed to a photographer
func (c *Backend) PhotographerNotifications(ctx context.Context, token, photographerID string) ([]models.Notification, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/photographers/:id/notifications",
		path:   "/photographers/" + url.PathEscape(photographerID) + "/notifications",
		token:  token,
	}, &raw); err != nil {
		return nil, err
	}
	var out []models.Notification
	if err := decodeList(raw, "notifications", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Admin surface

// AdminUsers lists every EndUser account
func (c *Backend) AdminUsers(ctx context.Context, token string) ([]models.EndUser, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/users", path: "/admin/users", token: token}, &raw); err != nil {
		return nil, err
	}
	var out []models.EndUser
	if err := decodeList(raw, "users", &out); err != nil {
		return nil, err
	}
	return out, validatedEach(out)
}

// AdminPhotographers lists every photographer account
func (c *Backend) AdminPhotographers(ctx context.Context, token string) ([]models.Photographer, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/photographers", path: "/admin/photographers", token: token}, &raw); err != nil {
		return nil, err
	}
	var out []models.Photographer
	if err := decodeList(raw, "photographers", &out); err != nil {
		return nil, err
	}
	return out, validatedEach(out)
}

// AdminBookings lists every booking
func (c *Backend) AdminBookings(ctx context.Context, token string) ([]models.Booking, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/bookings", path: "/admin/bookings", token: token}, &raw); err != nil {
		return nil, err
	}
	return decodeBookings(raw)
}

// UpdateUserStatus activates or deactivates an EndUser account
func (c *Backend) UpdateUserStatus(ctx context.Context, token string, req *models.UpdateUserStatusRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.do(ctx, call{method: http.MethodPut, route: "/admin/user-status", path: "/admin/user-status", token: token, body: req}, &out)
	return &out, err
}

// AdminRegisterPhotographer creates a photographer account on an admin's behalf
func (c *Backend) AdminRegisterPhotographer(ctx context.Context, token string, req *models.RegisterPhotographerRequest) (*models.MessageResponse, error) {
	var out models.MessageResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/admin/register-photographer", path: "/admin/register-photographer", token: token, body: req}, &out)
	return &out, err
}

// AdminDeletePhotographer removes a photographer account
func (c *Backend) AdminDeletePhotographer(ctx context.Context, token, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/admin/delete-photographer/:id",
		path:   "/admin/delete-photographer/" + url.PathEscape(id),
		token:  token,
	}, nil)
}

// Ping checks that the backend answers at all; any HTTP status counts
func (c *Backend) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/photographers", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Helper methods

func (c *Backend) do(ctx context.Context, cl call, out interface{}) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.doRequest(ctx, cl, out)
	})
}

func (c *Backend) doRequest(ctx context.Context, cl call, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "backend "+cl.method+" "+cl.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", cl.method),
			attribute.String("http.route", cl.route),
		))
	defer span.End()

	start := time.Now()

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var bodyReader io.Reader
	if cl.body != nil {
		bodyBytes, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendCall(cl.route, cl.method, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return transportError(ctx, cl, err)
	}
	defer resp.Body.Close()

	metrics.RecordBackendCall(cl.route, cl.method, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError(ctx, cl, err)
	}

	if resp.StatusCode >= 400 {
		appErr := statusError(resp.StatusCode, respBody)
		if resp.StatusCode >= 500 {
			span.SetStatus(codes.Error, appErr.Message)
		}
		c.logger.WithFields(logrus.Fields{
			"route":  cl.route,
			"method": cl.method,
			"status": resp.StatusCode,
			"code":   appErr.Code,
		}).Debug("Backend returned error")
		return appErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.NewAppError(ErrInvalidPayload.Code, ErrInvalidPayload.Message, err)
	}
	return nil
}

func transportError(ctx context.Context, cl call, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", cl.method, cl.route, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewAppError(apperrors.CodeUpstreamTimeout, "Backend did not respond in time", err)
	}
	return apperrors.NewAppError(apperrors.CodeUpstreamUnavailable, "Backend is unreachable", err)
}

// statusError maps a backend error response onto the gateway taxonomy,
// passing the backend's message through unchanged.
func statusError(status int, body []byte) *apperrors.AppError {
	var payload struct {
		Message string      `json:"message"`
		Error   interface{} `json:"error"`
	}
	message := ""
	if json.Unmarshal(body, &payload) == nil {
		message = payload.Message
		if message == "" {
			if s, ok := payload.Error.(string); ok {
				message = s
			}
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}

	var code apperrors.ErrorCode
	switch {
	case status == http.StatusUnauthorized:
		code = apperrors.CodeUnauthenticated
	case status == http.StatusForbidden:
		code = apperrors.CodeForbidden
	case status == http.StatusNotFound:
		code = apperrors.CodeNotFound
	case status == http.StatusConflict:
		code = apperrors.CodeConflict
	case status == http.StatusUnprocessableEntity:
		code = apperrors.CodeValidationFailed
	case status == http.StatusTooManyRequests:
		code = apperrors.CodeRateLimited
	case status == http.StatusGatewayTimeout:
		code = apperrors.CodeUpstreamTimeout
	case status >= 500:
		code = apperrors.CodeUpstreamUnavailable
	default:
		code = apperrors.CodeBadRequest
	}
	return apperrors.NewAppError(code, message, nil)
}

// decodeList accepts either a bare JSON array or an object holding the
// array under key.
func decodeList(raw json.RawMessage, key string, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '[' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return apperrors.NewAppError(ErrInvalidPayload.Code, ErrInvalidPayload.Message, err)
		}
		inner, ok := envelope[key]
		if !ok {
			return apperrors.NewAppErrorf(ErrInvalidPayload.Code, nil, "%s: missing %q list", ErrInvalidPayload.Message, key)
		}
		trimmed = inner
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return apperrors.NewAppError(ErrInvalidPayload.Code, ErrInvalidPayload.Message, err)
	}
	return nil
}

func decodeBookings(raw json.RawMessage) ([]models.Booking, error) {
	var out []models.Booking
	if err := decodeList(raw, "bookings", &out); err != nil {
		return nil, err
	}
	return out, validatedEach(out)
}

// decodeBooking accepts a bare booking or a {"booking": ...} envelope
func decodeBooking(raw json.RawMessage) (*models.Booking, error) {
	var envelope models.BookingResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Booking != nil {
		return envelope.Booking, validated(envelope.Booking)
	}
	var b models.Booking
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, apperrors.NewAppError(ErrInvalidPayload.Code, ErrInvalidPayload.Message, err)
	}
	return &b, validated(&b)
}

func validated(v interface{}) error {
	if err := models.Validate(v); err != nil {
		return apperrors.NewAppError(ErrInvalidPayload.Code, ErrInvalidPayload.Message, err)
	}
	return nil
}

func validatedEach[T any](items []T) error {
	for i := range items {
		if err := validated(&items[i]); err != nil {
			return err
		}
	}
	return nil
}
