// Conversation HTTP handlers.
//
// This file exposes the public dialogue endpoint:
//   - POST /chat  (one conversation turn)
//
// Handlers are transport-thin: they validate input, call the conversation
// engine, and translate results into HTTP responses. All dialogue logic,
// including error recovery, lives in the engine; a turn only fails at this
// layer when the request itself is malformed.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-booking-backend/internal/business"
	"github.com/tbourn/go-booking-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// Conversation defines the dialogue operation consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type Conversation interface {
	// Handle runs one turn of the booking dialogue for (businessID, userID).
	Handle(ctx context.Context, businessID, userID, message string) services.Reply
}

//
// Handler wiring
//

// ChatHandlers groups the public conversation endpoints. It depends on the
// abstract Conversation interface to keep transport concerns separate from
// dialogue logic.
type ChatHandlers struct {
	conv     Conversation
	profiles *business.Registry
}

// NewChat constructs a ChatHandlers bound to the given engine and registry.
func NewChat(conv Conversation, profiles *business.Registry) *ChatHandlers {
	return &ChatHandlers{conv: conv, profiles: profiles}
}

// userID extracts the caller identity from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// ChatRequest is the JSON payload for one conversation turn.
type ChatRequest struct {
	// BusinessID selects the business profile; the default profile is used
	// when empty or unknown.
	BusinessID string `json:"business_id" example:"gp"`
	// UserID identifies the visitor; overrides the X-User-ID header.
	UserID string `json:"user_id" example:"user123"`
	// Message is the visitor's input (1–2000 chars).
	Message string `json:"message" binding:"required,min=1,max=2000" example:"I need to see a doctor"`
}

// ChatResponse is the engine's reply for one turn.
type ChatResponse struct {
	Reply   string   `json:"reply" example:"What date works for you?"`
	Options []string `json:"options,omitempty" example:"2025-12-20,2025-12-21"`
}

//
// Handlers
//

// Chat godoc
// @ID          chat
// @Summary     Run one conversation turn
// @Description Sends a visitor message to the booking dialogue and returns the assistant reply, optionally with selectable options (dates or times). Numeric replies select from the previously offered options.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.ChatRequest  true  "Conversation turn payload"
//
// @Success     200  {object}  handlers.ChatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat [post]
func (h *ChatHandlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message required (1–2000 chars)")
		return
	}

	uid := strings.TrimSpace(req.UserID)
	if uid == "" {
		uid = userID(c)
	}

	reply := h.conv.Handle(c.Request.Context(), req.BusinessID, uid, req.Message)
	ok(c, http.StatusOK, ChatResponse{Reply: reply.Text, Options: reply.Options})
}
