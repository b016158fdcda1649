// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-booking-backend/internal/business"
	"github.com/tbourn/go-booking-backend/internal/config"
	"github.com/tbourn/go-booking-backend/internal/events"
	"github.com/tbourn/go-booking-backend/internal/http/handlers"
	"github.com/tbourn/go-booking-backend/internal/http/middleware"
	"github.com/tbourn/go-booking-backend/internal/intent"
	"github.com/tbourn/go-booking-backend/internal/services"
	"github.com/tbourn/go-booking-backend/internal/session"
)

// Dependencies carries the externally constructed collaborators the router
// injects into application services. The caller owns their lifecycles
// (connection pools, producers) and closes them on shutdown.
type Dependencies struct {
	Profiles   *business.Registry
	Sessions   session.Store
	Classifier intent.Classifier
	Events     events.Publisher
	Loc        *time.Location
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, health and metrics endpoints, and then mounts
// the versioned public API under /api/v* plus the BasicAuth admin surface.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps Dependencies, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Phone numbers travel in chat
	// bodies and Twilio form fields, so response/request body logging stays
	// off; the masked headers cover the credentialed surfaces.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"Authorization",
			"X-Twilio-Signature",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP. Twilio webhook deliveries
	// are exempt: they arrive from a shared provider IP pool and are
	// deduplicated by message id instead.
	r.Use(func(c *gin.Context) {
		if strings.HasSuffix(c.Request.URL.Path, "/whatsapp") {
			middleware.MarkRateBypass(c)
		}
		c.Next()
	})
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured — the
	// chat widget embeds on arbitrary customer sites)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API documentation
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/collaborators
	bookingSvc := services.NewBookingService(db, deps.Events)
	convSvc := services.NewConversationService(deps.Sessions, bookingSvc, deps.Classifier, deps.Profiles, deps.Loc)
	if cfg.Classifier.Timeout > 0 {
		convSvc.ClassifierTimeout = cfg.Classifier.Timeout
	}

	chatH := handlers.NewChat(convSvc, deps.Profiles)
	waH := handlers.NewWhatsApp(convSvc, db, deps.Profiles, cfg.InboundTTL)
	adminH := handlers.NewAdmin(bookingSvc, deps.Profiles)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Conversation
		api.POST("/chat", chatH.Chat)
		api.GET("/config", chatH.Config)

		// Channel webhooks
		api.POST("/whatsapp", waH.Webhook)
	}

	// Admin surface: mounted only when credentials are configured, so a
	// misconfigured deployment exposes nothing instead of an open admin API.
	if cfg.Admin.User != "" && cfg.Admin.Pass != "" {
		admin := api.Group("/admin", gin.BasicAuth(gin.Accounts{cfg.Admin.User: cfg.Admin.Pass}))
		{
			admin.GET("/appointments", adminH.ListAppointments)
			admin.POST("/appointments/:id/cancel", adminH.CancelAppointment)
			admin.POST("/appointments/:id/reinstate", adminH.ReinstateAppointment)
			admin.GET("/availability", adminH.ListAvailability)
			admin.POST("/availability", adminH.AddAvailability)
			admin.DELETE("/availability/:id", adminH.RemoveAvailability)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
