// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes the symbolic error code constants mapped to HTTP
// responses via the `fail()` helper. Generic codes mirror common HTTP status
// semantics; domain-specific codes (slot_taken, reply_failed) carry business
// outcomes that status alone cannot convey. Handlers select the most specific
// matching code, and clients are expected to branch on them.

package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeSlotTaken        = "slot_taken"
	ErrCodeReplyFailed      = "reply_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
