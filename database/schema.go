package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		mfa_enabled   BOOLEAN NOT NULL DEFAULT FALSE,
		mfa_secret    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS diagnoses (
		id              UUID PRIMARY KEY,
		user_email      TEXT NOT NULL,
		image_file_id   TEXT,
		audio_file_id   TEXT,
		audio_output_id TEXT,
		transcription   TEXT NOT NULL DEFAULT '',
		doctor_response TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS diagnoses_user_email_created_at_idx ON diagnoses (user_email, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS request_logs (
		id            BIGSERIAL PRIMARY KEY,
		method        VARCHAR(10) NOT NULL,
		path          VARCHAR(500) NOT NULL,
		status_code   INT NOT NULL,
		response_time INT,
		user_agent    TEXT,
		ip            VARCHAR(45) NOT NULL,
		body          TEXT,
		query         TEXT,
		email         TEXT,
		log_level     VARCHAR(10) NOT NULL,
		environment   VARCHAR(20) NOT NULL,
		pid           INT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS request_logs_email_created_at_idx ON request_logs (email, created_at DESC)`,
}

// EnsureSchema crea las tablas si todavía no existen
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
