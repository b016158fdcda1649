// Command server runs the conversational appointment booking backend.
//
// Startup order: env + config, logging, storage (SQLite + migrations),
// business profiles, external collaborators (classifier, session store,
// event publisher, tracing), then the HTTP server. Shutdown drains in the
// reverse order under a bounded deadline.
//
// @title        Booking Backend API
// @version      1.0
// @description  Conversational appointment booking backend: chat widget API, WhatsApp webhook, and admin surface.
//
// @BasePath     /api/v1
//
// @securityDefinitions.basic BasicAuth
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-booking-backend/docs"
	"github.com/tbourn/go-booking-backend/internal/business"
	"github.com/tbourn/go-booking-backend/internal/config"
	"github.com/tbourn/go-booking-backend/internal/events"
	httpapi "github.com/tbourn/go-booking-backend/internal/http"
	"github.com/tbourn/go-booking-backend/internal/intent"
	"github.com/tbourn/go-booking-backend/internal/observability"
	"github.com/tbourn/go-booking-backend/internal/repo"
	"github.com/tbourn/go-booking-backend/internal/session"
	"github.com/tbourn/go-booking-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	// Storage
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	// Business profiles
	profiles, err := business.NewRegistry(cfg.BusinessesPath, cfg.DefaultBusiness)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.BusinessesPath).Msg("load business profiles failed")
	}

	ctx := context.Background()

	// Intent classifier: Gemini when a key is configured, keyword matching
	// otherwise; either way the keyword fallback backstops failures.
	var classifier intent.Classifier = intent.Keyword{}
	if cfg.Classifier.APIKey != "" {
		g, err := intent.NewGemini(ctx, cfg.Classifier.APIKey, cfg.Classifier.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini client init failed")
		}
		defer g.Close()
		classifier = intent.WithFallback{Primary: g}
		log.Info().Str("model", cfg.Classifier.Model).Msg("gemini intent classifier enabled")
	}

	// Session store
	var sessions session.Store = session.NewMemoryStore()
	if cfg.Session.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr, DB: cfg.Session.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Session.RedisAddr).Msg("redis ping failed")
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, cfg.Session.TTL)
		log.Info().Str("addr", cfg.Session.RedisAddr).Msg("redis session store enabled")
	}

	// Appointment lifecycle events (no-op without brokers)
	publisher := events.New(cfg.Events.Brokers, cfg.Events.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("event publisher close failed")
		}
	}()

	// Tracing
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// HTTP transport
	r := gin.New()
	httpapi.RegisterRoutes(r, db, httpapi.Dependencies{
		Profiles:   profiles,
		Sessions:   sessions,
		Classifier: classifier,
		Events:     publisher,
		Loc:        loc,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("default_business", profiles.DefaultID()).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("bye")
}
