// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the correlation-id injector, a panic-safe recovery
// handler, and the request-scoped logger accessor:
//
//   - RequestID() ensures every request carries a stable correlation ID
//     (propagated via X-Request-ID and stored in the Gin context).
//   - Recovery() converts panics into JSON 500 responses while preserving the
//     correlation ID and emitting a stack trace to logs.
//   - LoggerFrom() retrieves the request-scoped zerolog.Logger attached by
//     RedactingLogger to enrich logs within handlers and services
//     (e.g., lg.Info().Str("appointment_id", id).Msg("…")).
//
// Design notes:
//   - Compose RequestID() before RedactingLogger() before Recovery() so that
//     panics and access logs include the correlation ID.
//   - Access logging itself lives in RedactingLogger (redact_logger.go);
//     booking traffic carries PII, so the plain variant was retired.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key for the request-scoped logger.
	loggerKey = "logger"
)

// RequestID attaches (or propagates) a correlation identifier per request.
//
// Behavior:
//   - If the incoming request has X-Request-ID (header lookup is case-insensitive),
//     that value is reused. Otherwise, a new UUIDv4 is generated.
//   - The ID is written back to the response header (X-Request-ID) and stored
//     in the Gin context under the "requestID" key.
//
// Place this early in the chain so subsequent middleware/handlers can rely on
// the ID for logging and error responses.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Recovery intercepts panics, logs a stack trace, and returns a JSON 500 error.
//
// Behavior:
//   - Logs the panic value and stack trace with the request ID.
//   - If no response has been written, emits a standardized JSON error body:
//     { "request_id": "...", "code": "internal_error", "message": "internal server error" }
//   - Ensures the X-Request-ID header is present on the response.
//
// Place this after the access logger so the panic is captured with structured
// context.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				// Only write if nothing has been written yet.
				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": asString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger.
//
// If a logger was not previously attached by RedactingLogger(), a fallback
// logger is returned (without request-scoped fields). Callers can safely use
// the result without nil checks.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString converts an arbitrary interface to a string, returning an empty
// string when the value is not a string. Used for context values.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
