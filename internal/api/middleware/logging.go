package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDKey is the fiber.Locals key holding the request ID.
const RequestIDKey = "request_id"

// RequestLogger writes one structured log line per request and tags every
// response with an X-Request-ID, reusing the caller's if present.
func RequestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(RequestIDKey, requestID)
		c.Set(fiber.HeaderXRequestID, requestID)

		// Process request
		err := c.Next()

		// The error handler has not run yet, so an error decides the status.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error().Err(err)
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Str("user_agent", c.Get(fiber.HeaderUserAgent)).
			Str("what", describe(c.Path(), status)).
			Msg("request completed")

		return err
	}
}

// describe names what happened, for log queries.
func describe(path string, status int) string {
	if path == "/courses/title" {
		switch status {
		case fiber.StatusOK:
			return "title_found"
		case fiber.StatusNotFound:
			return "title_not_found"
		}
	}
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "request_completed"
	}
}
