package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-booking-backend/internal/domain"
	"github.com/tbourn/go-booking-backend/internal/services"
)

func newWhatsAppDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	db, err := gorm.Open(sqlite.Open("file:wa_handlers_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.InboundMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newWhatsAppRouter(t *testing.T, conv Conversation) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newWhatsAppDB(t)
	r := gin.New()
	h := NewWhatsApp(conv, db, testRegistry(t), time.Hour)
	r.POST("/whatsapp", h.Webhook)
	return r, db
}

func postForm(t *testing.T, r *gin.Engine, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhook_RepliesWithTwiML(t *testing.T) {
	stub := &stubConversation{reply: services.Reply{
		Text:    "When would you like to come in?",
		Options: []string{"2025-12-20", "2025-12-21"},
	}}
	r, _ := newWhatsAppRouter(t, stub)

	w := postForm(t, r, "/whatsapp", url.Values{
		"From":       {"whatsapp:+353851234567"},
		"Body":       {"book an appointment"},
		"MessageSid": {"SM100"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("content type: %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		"<Response>",
		"<Message>",
		"When would you like to come in?",
		"1) 2025-12-20",
		"2) 2025-12-21",
		"Reply with a number (1-2).",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("twiml missing %q: %s", want, body)
		}
	}

	if stub.lastBusiness != "gp" || stub.lastUser != "whatsapp:+353851234567" {
		t.Fatalf("engine turn: %+v", stub)
	}
}

func TestWebhook_BusinessQuerySelectsProfile(t *testing.T) {
	stub := &stubConversation{reply: services.Reply{Text: "hi"}}
	r, _ := newWhatsAppRouter(t, stub)

	// A second WhatsApp number points its webhook URL at its own profile.
	w := postForm(t, r, "/whatsapp?biz=fitness", url.Values{
		"From":       {"whatsapp:+353851234567"},
		"Body":       {"book"},
		"MessageSid": {"SM300"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if stub.lastBusiness != "fitness" {
		t.Fatalf("business: got %q want %q", stub.lastBusiness, "fitness")
	}

	// Unknown ids fall back to the default profile.
	w = postForm(t, r, "/whatsapp?biz=nope", url.Values{
		"From":       {"whatsapp:+353851234567"},
		"Body":       {"book"},
		"MessageSid": {"SM301"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if stub.lastBusiness != "gp" {
		t.Fatalf("fallback business: got %q want %q", stub.lastBusiness, "gp")
	}
}

func TestWebhook_DuplicateDeliveryIsAcknowledgedEmpty(t *testing.T) {
	stub := &stubConversation{reply: services.Reply{Text: "hi"}}
	r, _ := newWhatsAppRouter(t, stub)

	form := url.Values{
		"From":       {"whatsapp:+353851234567"},
		"Body":       {"book"},
		"MessageSid": {"SM200"},
	}
	if w := postForm(t, r, "/whatsapp", form); w.Code != http.StatusOK {
		t.Fatalf("first delivery: %d", w.Code)
	}
	if stub.lastMessage != "book" {
		t.Fatalf("first delivery should reach the engine")
	}

	stub.lastMessage = ""
	w := postForm(t, r, "/whatsapp", form)
	if w.Code != http.StatusOK {
		t.Fatalf("replay status: %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<Message>") {
		t.Fatalf("replay must not carry a message: %s", w.Body.String())
	}
	if stub.lastMessage != "" {
		t.Fatalf("replay must not reach the engine")
	}
}

func TestWebhook_PurgesLapsedDedupeRecords(t *testing.T) {
	stub := &stubConversation{reply: services.Reply{Text: "hi"}}
	r, db := newWhatsAppRouter(t, stub)

	now := time.Now().UTC()
	lapsed := &domain.InboundMessage{
		ID:         uuid.NewString(),
		Channel:    whatsappChannel,
		ProviderID: "SM-old",
		UserID:     "whatsapp:+353850000001",
		CreatedAt:  now.Add(-48 * time.Hour),
		ExpiresAt:  now.Add(-24 * time.Hour),
	}
	live := &domain.InboundMessage{
		ID:         uuid.NewString(),
		Channel:    whatsappChannel,
		ProviderID: "SM-live",
		UserID:     "whatsapp:+353850000002",
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Hour),
	}
	if err := db.Create(lapsed).Error; err != nil {
		t.Fatalf("seed lapsed: %v", err)
	}
	if err := db.Create(live).Error; err != nil {
		t.Fatalf("seed live: %v", err)
	}

	w := postForm(t, r, "/whatsapp", url.Values{
		"From":       {"whatsapp:+353851234567"},
		"Body":       {"book"},
		"MessageSid": {"SM400"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}

	var n int64
	if err := db.Model(&domain.InboundMessage{}).Where("provider_id = ?", "SM-old").Count(&n).Error; err != nil {
		t.Fatalf("count lapsed: %v", err)
	}
	if n != 0 {
		t.Fatalf("lapsed dedupe record should be purged by the delivery")
	}
	if err := db.Model(&domain.InboundMessage{}).Where("provider_id = ?", "SM-live").Count(&n).Error; err != nil {
		t.Fatalf("count live: %v", err)
	}
	if n != 1 {
		t.Fatalf("unexpired dedupe record must survive the purge")
	}
}

func TestWebhook_MissingFields(t *testing.T) {
	stub := &stubConversation{reply: services.Reply{Text: "hi"}}
	r, _ := newWhatsAppRouter(t, stub)

	w := postForm(t, r, "/whatsapp", url.Values{"Body": {"book"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing From: %d", w.Code)
	}
	w = postForm(t, r, "/whatsapp", url.Values{"From": {"whatsapp:+353851234567"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing Body: %d", w.Code)
	}
}

func TestRenderText(t *testing.T) {
	if got := renderText("pick one", nil); got != "pick one" {
		t.Fatalf("no options: %q", got)
	}
	got := renderText("pick one", []string{"10:00", "11:00"})
	want := "pick one\n1) 10:00\n2) 11:00\n\nReply with a number (1-2)."
	if got != want {
		t.Fatalf("numbered list: got %q want %q", got, want)
	}
}
