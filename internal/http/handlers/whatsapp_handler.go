// WhatsApp webhook handler.
//
// This file exposes the Twilio inbound-message webhook:
//   - POST /whatsapp  (form-encoded Twilio payload, TwiML response)
//
// Twilio retries webhooks it considers failed, so delivery is at-least-once.
// Each message carries a provider-unique MessageSid; the handler records it
// before running the turn and answers duplicates with an empty TwiML body so
// a retried delivery never advances the conversation twice.
//
// The sender's WhatsApp address ("whatsapp:+3538...") is the user id, which
// gives each phone number its own session without any signup step.
package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-booking-backend/internal/business"
	"github.com/tbourn/go-booking-backend/internal/http/middleware"
	"github.com/tbourn/go-booking-backend/internal/repo"
)

const whatsappChannel = "whatsapp"

// twiml is the Twilio Messaging Response document. An empty Messages slice
// serializes to a bare <Response/>, which acknowledges the webhook without
// sending anything.
type twiml struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message,omitempty"`
}

// WhatsAppHandlers serves the Twilio webhook surface.
type WhatsAppHandlers struct {
	conv       Conversation
	db         *gorm.DB
	profiles   *business.Registry
	inboundTTL time.Duration
}

// NewWhatsApp constructs a WhatsAppHandlers. Each WhatsApp number points its
// webhook URL at a ?biz= query selecting the profile, so one deployment can
// serve several numbers; inboundTTL bounds how long delivered message ids are
// remembered for dedupe.
func NewWhatsApp(conv Conversation, db *gorm.DB, profiles *business.Registry, inboundTTL time.Duration) *WhatsAppHandlers {
	return &WhatsAppHandlers{conv: conv, db: db, profiles: profiles, inboundTTL: inboundTTL}
}

// Webhook godoc
// @ID          whatsappWebhook
// @Summary     Twilio WhatsApp webhook
// @Description Receives an inbound WhatsApp message from Twilio and replies with TwiML. Offered options are rendered as a numbered list; the sender picks one by replying with its number. Redelivered messages (same MessageSid) return an empty TwiML acknowledgment.
// @Tags        WhatsApp
// @Accept      x-www-form-urlencoded
// @Produce     xml
//
// @Param       biz         query     string  false "Business profile id; the default profile is used when absent or unknown" example(gp)
// @Param       From        formData  string  true  "Sender address"      example(whatsapp:+353851234567)
// @Param       Body        formData  string  true  "Message text"        example(book an appointment)
// @Param       MessageSid  formData  string  true  "Provider message id" example(SM1f2e3d4c5b6a)
//
// @Success     200  {string}  string  "TwiML response"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /whatsapp [post]
func (h *WhatsAppHandlers) Webhook(c *gin.Context) {
	from := strings.TrimSpace(c.PostForm("From"))
	body := strings.TrimSpace(c.PostForm("Body"))
	sid := strings.TrimSpace(c.PostForm("MessageSid"))
	if from == "" || body == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "From and Body required")
		return
	}

	ctx := c.Request.Context()

	if sid != "" {
		switch err := repo.RecordInbound(ctx, h.db, whatsappChannel, sid, from, h.inboundTTL); err {
		case nil:
			// Piggyback cleanup of lapsed dedupe records on the write we just
			// did; the table stays bounded without a scheduler.
			if err := repo.PurgeExpiredInbound(ctx, h.db, time.Now().UTC()); err != nil {
				middleware.LoggerFrom(c).Warn().Err(err).Msg("inbound purge failed")
			}
		case repo.ErrDuplicate:
			middleware.LoggerFrom(c).Info().Str("message_sid", sid).Msg("duplicate webhook delivery")
			h.respond(c, twiml{})
			return
		default:
			// Dedupe is best effort: a storage hiccup must not drop the
			// message, a rare double reply is the lesser failure.
			middleware.LoggerFrom(c).Warn().Err(err).Msg("inbound dedupe failed")
		}
	}

	biz := h.profiles.Get(c.Query("biz"))
	reply := h.conv.Handle(ctx, biz.ID, from, body)
	h.respond(c, twiml{Messages: []string{renderText(reply.Text, reply.Options)}})
}

// respond writes a TwiML document with the XML declaration Twilio expects.
func (h *WhatsAppHandlers) respond(c *gin.Context, doc twiml) {
	out, err := xml.Marshal(doc)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "twiml encoding failed")
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

// renderText flattens a structured reply into one WhatsApp message, numbering
// the options and telling the sender a bare digit selects one on the next
// turn.
func renderText(text string, options []string) string {
	if len(options) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	for i, opt := range options {
		fmt.Fprintf(&b, "\n%d) %s", i+1, opt)
	}
	fmt.Fprintf(&b, "\n\nReply with a number (1-%d).", len(options))
	return b.String()
}
