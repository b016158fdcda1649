// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints:
// structured error envelopes, consistent JSON serialization, and helpers for
// common HTTP patterns. Every failure path returns an ErrorResponse with a
// stable `code`, and fail() centralizes logging so 5xx responses always carry
// request context.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "slot_taken",
//	  "message": "that slot has just been booked"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-booking-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// RequestID is the correlation ID echoed from the X-Request-ID header; Code
// is a stable machine-readable string (see errors.go constants); Message is
// human-readable and safe to display.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"slot_taken"`
	Message   string `json:"message" example:"that slot has just been booked"`
}

// fail aborts the request with a structured error and logs server-side errors.
//
// Server errors (>=500) are logged using the request-scoped logger from
// middleware.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
