// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-booking-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database, applies PRAGMAs, and
// instruments queries with OpenTelemetry.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and the slot-uniqueness constraint.
//
// The constraint is a partial unique index over (business_id, date, time)
// limited to confirmed rows: cancelled appointments keep their row for the
// audit trail and must not block a later booking of the same slot. GORM tags
// cannot express filtered indexes, so it is created with raw SQL. This index
// is the single authoritative exclusion point for concurrent commits; see
// CreateAppointment.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.AvailabilitySlot{},
		&domain.Appointment{},
		&domain.InboundMessage{},
	); err != nil {
		return err
	}
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ux_appt_slot_confirmed
		ON appointments(business_id, date, time)
		WHERE status = 'confirmed'
	`).Error
}
