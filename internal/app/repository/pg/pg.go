package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"lexscribe/internal/app/repository"
)

// Schema creates the tables used by the service
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		subscription_plan TEXT NULL,
		subscription_status TEXT NOT NULL DEFAULT 'inactive',
		free_transcription_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transcription_jobs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		meeting_type TEXT NOT NULL,
		audio_file_urls TEXT NOT NULL,
		blob_keys TEXT NOT NULL DEFAULT '[]',
		provider_handle TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		content TEXT NULL,
		error_details TEXT NOT NULL DEFAULT '',
		failure_reason TEXT NOT NULL DEFAULT '',
		error_count INTEGER NOT NULL DEFAULT 0,
		duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		summary TEXT NOT NULL DEFAULT '',
		summarized_at TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ NULL,
		expires_at TIMESTAMPTZ NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_user ON transcription_jobs (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON transcription_jobs (status)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		status TEXT NOT NULL,
		period_start TIMESTAMPTZ NOT NULL,
		period_end TIMESTAMPTZ NOT NULL,
		transcription_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
		transcription_count BIGINT NOT NULL DEFAULT 0,
		summary_count BIGINT NOT NULL DEFAULT 0,
		start_date TIMESTAMPTZ NULL,
		end_date TIMESTAMPTZ NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions (user_id, status)`,
	`CREATE TABLE IF NOT EXISTS billing_entries (
		id TEXT PRIMARY KEY,
		subscription_id TEXT NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
		amount NUMERIC(12, 2) NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		payment_id TEXT NOT NULL DEFAULT ''
	)`,
}

// NewPostgresDB opens a PostgreSQL connection pool, verifies it and ensures the schema
func NewPostgresDB(ctx context.Context, connectionString string) (*repository.CommonDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := repository.NewCommonDB(db, "postgres")
	if err := store.EnsureSchema(ctx, Schema); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
