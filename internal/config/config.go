// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, session storage, the
// intent classifier, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-booking-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-booking-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ClassifierConfig configures the external intent classifier. When APIKey is
// empty the engine runs on the deterministic keyword fallback alone.
type ClassifierConfig struct {
	APIKey  string        // GEMINI_API_KEY (falls back to GOOGLE_API_KEY)
	Model   string        // GEMINI_MODEL
	Timeout time.Duration // CLASSIFIER_TIMEOUT; per-call deadline before falling back
}

// SessionConfig selects the conversation session store backend.
type SessionConfig struct {
	Backend   string        // SESSION_BACKEND: memory|redis
	RedisAddr string        // REDIS_ADDR (host:port), required for redis backend
	RedisDB   int           // REDIS_DB
	TTL       time.Duration // SESSION_TTL; idle sessions expire after this
}

// EventsConfig configures the optional Kafka publisher for appointment
// lifecycle events. Publishing is disabled when Brokers is empty.
type EventsConfig struct {
	Brokers string // KAFKA_BROKERS, comma-separated
	Topic   string // KAFKA_TOPIC
}

// AdminConfig holds the BasicAuth credentials protecting the admin surface.
type AdminConfig struct {
	User string // ADMIN_USER
	Pass string // ADMIN_PASS
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath          string // SQLite path
	BusinessesPath  string // optional JSON file with business profiles
	DefaultBusiness string // business id used when a request names none
	Timezone        string // IANA zone resolving "today"/"tomorrow"

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Webhook replay protection
	InboundTTL time.Duration // how long a provider message id is remembered

	// Subsystems
	Admin      AdminConfig
	Classifier ClassifierConfig
	Session    SessionConfig
	Events     EventsConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:          getenv("DB_PATH", "appointments.db"),
		BusinessesPath:  getenv("BUSINESSES_PATH", ""),
		DefaultBusiness: getenv("DEFAULT_BUSINESS", "gp"),
		Timezone:        getenv("TIMEZONE", "Europe/Dublin"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Webhook replay protection
		InboundTTL: getdur("INBOUND_TTL", 24*time.Hour),

		// Admin surface
		Admin: AdminConfig{
			User: getenv("ADMIN_USER", "admin"),
			Pass: getenv("ADMIN_PASS", "change-me"),
		},

		// Intent classifier
		Classifier: ClassifierConfig{
			APIKey:  sysutil.FirstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
			Model:   getenv("GEMINI_MODEL", "models/gemini-1.5-flash"),
			Timeout: getdur("CLASSIFIER_TIMEOUT", 5*time.Second),
		},

		// Session store
		Session: SessionConfig{
			Backend:   strings.ToLower(getenv("SESSION_BACKEND", "memory")),
			RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
			RedisDB:   getint("REDIS_DB", 0),
			TTL:       getdur("SESSION_TTL", 12*time.Hour),
		},

		// Appointment lifecycle events
		Events: EventsConfig{
			Brokers: getenv("KAFKA_BROKERS", ""),
			Topic:   getenv("KAFKA_TOPIC", "appointment-events"),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-booking-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.DefaultBusiness) == "" {
		return cfg, errors.New("DEFAULT_BUSINESS must not be empty")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, errors.New("TIMEZONE must be a valid IANA zone name")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.InboundTTL <= 0 {
		return cfg, errors.New("INBOUND_TTL must be > 0")
	}
	switch cfg.Session.Backend {
	case "memory", "redis":
	default:
		return cfg, errors.New("SESSION_BACKEND must be memory or redis")
	}
	if cfg.Session.Backend == "redis" && strings.TrimSpace(cfg.Session.RedisAddr) == "" {
		return cfg, errors.New("REDIS_ADDR must not be empty when SESSION_BACKEND=redis")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.Classifier.Timeout <= 0 {
		return cfg, errors.New("CLASSIFIER_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(cfg.Events.Brokers) != "" && strings.TrimSpace(cfg.Events.Topic) == "" {
		return cfg, errors.New("KAFKA_TOPIC must not be empty when KAFKA_BROKERS is set")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
