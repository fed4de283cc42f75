package middleware

import (
	"regexp"
	"time"

	"github.com/photobook/gateway-api/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const maxLoggedBody = 500

var secretFields = regexp.MustCompile(`("(?i:password|token)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

type ErrorLoggerMiddleware struct {
	logger *logrus.Logger
}

func NewErrorLoggerMiddleware(logger *logrus.Logger) *ErrorLoggerMiddleware {
	return &ErrorLoggerMiddleware{
		logger: logger,
	}
}

// Handle logs 4xx and 5xx responses with detailed context
func (e *ErrorLoggerMiddleware) Handle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if statusCode < 400 {
			return err
		}

		logEntry := logging.WithRequest(e.logger, c.Method(), c.Path(), statusCode,
			float64(time.Since(startTime).Microseconds())/1000)
		logEntry = logging.WithTraceID(logEntry, TraceID(c))
		if sid := GetSessionID(c); sid != "" {
			logEntry = logging.WithSession(logEntry, sid, GetSession(c).Role().String())
		}
		if userID := GetUserID(c); userID != "" {
			logEntry = logging.WithUserID(logEntry, userID)
		}

		logFields := logrus.Fields{
			"ip":            c.IP(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}
		if idempotencyKey := c.Get("Idempotency-Key"); idempotencyKey != "" {
			logFields["idempotency_key"] = idempotencyKey
		}
		if q := c.Request().URI().QueryString(); len(q) > 0 {
			logFields["query"] = string(q)
		}

		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
			if body := maskSecrets(c.Body()); body != "" {
				logFields["request_body"] = body
			}
		}
		if body := maskSecrets(c.Response().Body()); body != "" {
			logFields["response_body"] = body
		}

		logEntry = logEntry.WithFields(logFields)
		if statusCode >= 500 {
			if err != nil {
				logEntry = logEntry.WithError(err)
			}
			logEntry.Error("Server error response")
		} else {
			logEntry.Warn("Client error response")
		}

		return err
	}
}

// maskSecrets hides password and token values and truncates long bodies
func maskSecrets(body []byte) string {
	s := secretFields.ReplaceAllString(string(body), `$1"***"`)
	if len(s) > maxLoggedBody {
		s = s[:maxLoggedBody] + "...(truncated)"
	}
	return s
}
