// Admin HTTP handlers.
//
// This file exposes the BasicAuth-protected back-office surface:
//   - GET    /admin/appointments              (list, paginated, ETag support)
//   - POST   /admin/appointments/{id}/cancel
//   - POST   /admin/appointments/{id}/reinstate
//   - GET    /admin/availability              (list published slots)
//   - POST   /admin/availability              (publish a slot, idempotent)
//   - DELETE /admin/availability/{id}         (withdraw a slot)
//
// Reinstating an appointment re-enters the slot race: if another booking
// took the slot in the meantime the operation fails with 409 slot_taken.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-booking-backend/internal/business"
	"github.com/tbourn/go-booking-backend/internal/domain"
	"github.com/tbourn/go-booking-backend/internal/repo"
	"github.com/tbourn/go-booking-backend/internal/services"
	"github.com/tbourn/go-booking-backend/internal/utils"
)

//
// Service contract (context-aware)
//

// BookingAdmin defines the back-office operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type BookingAdmin interface {
	// ListPage returns a page of appointments for a business and the total count.
	ListPage(ctx context.Context, businessID string, page, pageSize int) ([]domain.Appointment, int64, error)
	// Cancel marks an appointment cancelled, freeing its slot.
	Cancel(ctx context.Context, id string) error
	// Reinstate re-confirms a cancelled appointment if its slot is still free.
	Reinstate(ctx context.Context, id string) error
	// AddSlot publishes an availability slot (idempotent on the natural key).
	AddSlot(ctx context.Context, businessID, date, t string, capacity int) (*domain.AvailabilitySlot, bool, error)
	// RemoveSlot withdraws a published slot.
	RemoveSlot(ctx context.Context, id string) error
	// ListSlots returns all published slots for a business.
	ListSlots(ctx context.Context, businessID string) ([]domain.AvailabilitySlot, error)
}

// AdminHandlers groups the back-office endpoints.
type AdminHandlers struct {
	svc      BookingAdmin
	profiles *business.Registry
}

// NewAdmin constructs an AdminHandlers bound to the given service.
func NewAdmin(svc BookingAdmin, profiles *business.Registry) *AdminHandlers {
	return &AdminHandlers{svc: svc, profiles: profiles}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListAppointmentsResponse wraps a page of appointments and pagination
// information.
type ListAppointmentsResponse struct {
	Appointments []domain.Appointment `json:"appointments"`
	Pagination   Pagination           `json:"pagination"`
}

// AddSlotRequest is the JSON payload for publishing an availability slot.
type AddSlotRequest struct {
	// BusinessID selects the business; the default is used when empty.
	BusinessID string `json:"business_id" example:"gp"`
	// Date in ISO format (YYYY-MM-DD).
	Date string `json:"date" binding:"required" example:"2025-12-20"`
	// Time in 24h HH:MM format.
	Time string `json:"time" binding:"required" example:"11:00"`
	// Capacity defaults to 1 when omitted or non-positive.
	Capacity int `json:"capacity" example:"1"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// businessID resolves the business query param against the registry, falling
// back to the default profile for absent or unknown ids.
func (h *AdminHandlers) businessID(c *gin.Context) string {
	return h.profiles.Get(c.Query("business")).ID
}

//
// Handlers
//

// ListAppointments godoc
// @ID          adminListAppointments
// @Summary     List appointments (paginated)
// @Description Returns a page of a business's appointments, confirmed first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       business       query   string  false "Business ID"                  example(gp)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"   example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListAppointmentsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/appointments [get]
func (h *AdminHandlers) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()
	biz := h.businessID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.svc.(*services.BookingService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.AppointmentsStats(ctx, db, biz)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"appointments:%s:%d:%d"`, biz, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.svc.ListPage(ctx, biz, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListAppointmentsResponse{
		Appointments: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// CancelAppointment godoc
// @ID          adminCancelAppointment
// @Summary     Cancel an appointment
// @Description Marks an appointment cancelled, freeing its slot for new bookings. Cancelling an already-cancelled appointment succeeds.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       id  path  string  true  "Appointment ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Appointment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/appointments/{id}/cancel [post]
func (h *AdminHandlers) CancelAppointment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "appointment id must be a UUID")
		return
	}

	switch err := h.svc.Cancel(c.Request.Context(), id); err {
	case nil:
		noContent(c)
	case services.ErrAppointmentNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "appointment not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ReinstateAppointment godoc
// @ID          adminReinstateAppointment
// @Summary     Reinstate a cancelled appointment
// @Description Re-confirms a cancelled appointment. Fails with 409 slot_taken when the slot has been booked by someone else in the meantime.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       id  path  string  true  "Appointment ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Appointment not found"
// @Failure     409  {object} handlers.ErrorResponse "Slot taken"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/appointments/{id}/reinstate [post]
func (h *AdminHandlers) ReinstateAppointment(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "appointment id must be a UUID")
		return
	}

	switch err := h.svc.Reinstate(c.Request.Context(), id); err {
	case nil:
		noContent(c)
	case services.ErrAppointmentNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "appointment not found")
	case services.ErrSlotTaken:
		fail(c, http.StatusConflict, ErrCodeSlotTaken, "slot has been booked by someone else")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ListAvailability godoc
// @ID          adminListAvailability
// @Summary     List published availability slots
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       business  query  string  false "Business ID"  example(gp)
//
// @Success     200  {array}  domain.AvailabilitySlot
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/availability [get]
func (h *AdminHandlers) ListAvailability(c *gin.Context) {
	slots, err := h.svc.ListSlots(c.Request.Context(), h.businessID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, slots)
}

// AddAvailability godoc
// @ID          adminAddAvailability
// @Summary     Publish an availability slot
// @Description Publishes a bookable (business, date, time) slot. Re-publishing an existing slot succeeds with 200 and the stored slot.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BasicAuth
//
// @Param       body  body  handlers.AddSlotRequest  true  "Slot payload"
//
// @Success     201  {object} domain.AvailabilitySlot
// @Success     200  {object} domain.AvailabilitySlot "Already published"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/availability [post]
func (h *AdminHandlers) AddAvailability(c *gin.Context) {
	var req AddSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	biz := h.profiles.Get(strings.TrimSpace(req.BusinessID)).ID
	slot, created, err := h.svc.AddSlot(c.Request.Context(), biz, req.Date, req.Time, req.Capacity)
	switch err {
	case nil:
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		ok(c, status, slot)
	case services.ErrInvalidSlot:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD and time HH:MM")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// RemoveAvailability godoc
// @ID          adminRemoveAvailability
// @Summary     Withdraw an availability slot
// @Description Removes a published slot so it can no longer be booked. Existing confirmed appointments are untouched.
// @Tags        Admin
// @Produce     json
// @Security    BasicAuth
//
// @Param       id  path  string  true  "Slot ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Slot not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/availability/{id} [delete]
func (h *AdminHandlers) RemoveAvailability(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "slot id must be a UUID")
		return
	}

	switch err := h.svc.RemoveSlot(c.Request.Context(), id); err {
	case nil:
		noContent(c)
	case services.ErrSlotNotFound:
		fail(c, http.StatusNotFound, ErrCodeNotFound, "slot not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
