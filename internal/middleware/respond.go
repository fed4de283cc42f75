package middleware

import (
	apperrors "github.com/photobook/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// TraceID prefers the active span's trace id and falls back to the request id
func TraceID(c *fiber.Ctx) string {
	if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		return rid
	}
	return c.Get("X-Request-ID")
}

// WriteError renders err as the standard error envelope
func WriteError(c *fiber.Ctx, err error) error {
	appErr := apperrors.As(err)
	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse(TraceID(c)))
}

// WriteErrorWithRedirect renders err and tells the client where to navigate
func WriteErrorWithRedirect(c *fiber.Ctx, err error, redirect string) error {
	appErr := apperrors.As(err)
	resp := appErr.ToErrorResponse(TraceID(c))
	resp.Error.Redirect = redirect
	return c.Status(appErr.HTTPStatus()).JSON(resp)
}
