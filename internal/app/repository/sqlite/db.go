package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"lexscribe/internal/app/repository"
)

// Schema creates the tables used by the service
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		subscription_plan TEXT NULL,
		subscription_status TEXT NOT NULL DEFAULT 'inactive',
		free_transcription_seconds REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
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
		duration_seconds REAL NOT NULL DEFAULT 0,
		summary TEXT NOT NULL DEFAULT '',
		summarized_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP NULL,
		expires_at TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_user ON transcription_jobs (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON transcription_jobs (status)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		status TEXT NOT NULL,
		period_start TIMESTAMP NOT NULL,
		period_end TIMESTAMP NOT NULL,
		transcription_seconds REAL NOT NULL DEFAULT 0,
		transcription_count INTEGER NOT NULL DEFAULT 0,
		summary_count INTEGER NOT NULL DEFAULT 0,
		start_date TIMESTAMP NULL,
		end_date TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions (user_id, status)`,
	`CREATE TABLE IF NOT EXISTS billing_entries (
		id TEXT PRIMARY KEY,
		subscription_id TEXT NOT NULL REFERENCES subscriptions(id),
		amount REAL NOT NULL,
		date TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		payment_id TEXT NOT NULL DEFAULT ''
	)`,
}

// NewSQLiteDB opens (creating if needed) the database file at path and
// ensures the schema exists. ":memory:" opens a private in-memory database.
func NewSQLiteDB(ctx context.Context, path string) (*repository.CommonDB, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", path)
	if path == ":memory:" {
		dsn = "file::memory:?_busy_timeout=5000"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer; one connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	store := repository.NewCommonDB(db, "sqlite3")
	if err := store.EnsureSchema(ctx, Schema); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
