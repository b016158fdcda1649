// Widget configuration handler.
//
// This file exposes the read-only endpoint the embeddable chat widget calls
// on load:
//   - GET /config?business={id}  (branding + greeting)
//
// Unknown business ids resolve to the default profile so a misconfigured
// embed still renders a working widget.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-booking-backend/internal/business"
)

// ConfigResponse is the widget bootstrap payload for one business.
type ConfigResponse struct {
	BusinessID string         `json:"business_id" example:"gp"`
	Name       string         `json:"name" example:"Dr. Murphy's Practice"`
	Industry   string         `json:"industry" example:"healthcare"`
	Brand      business.Brand `json:"brand"`
	Greeting   string         `json:"greeting" example:"Hi — I can help you book an appointment."`
}

// Config godoc
// @ID          widgetConfig
// @Summary     Widget bootstrap configuration
// @Description Returns the branding and greeting for a business. Unknown or missing ids fall back to the default business.
// @Tags        Chat
// @Produce     json
//
// @Param       business  query  string  false "Business ID"  example(gp)
//
// @Success     200  {object}  handlers.ConfigResponse
// @Router      /config [get]
func (h *ChatHandlers) Config(c *gin.Context) {
	p := h.profiles.Get(c.Query("business"))
	ok(c, http.StatusOK, ConfigResponse{
		BusinessID: p.ID,
		Name:       p.Name,
		Industry:   p.Industry,
		Brand:      p.Brand,
		Greeting:   p.Copy.Greeting,
	})
}
