package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL migration statements.
// Each entry is applied once in order. New migrations are appended at the end.
var migrations = []string{
	// Migration 0: initial schema
	`CREATE TABLE IF NOT EXISTS captures (
		id              TEXT PRIMARY KEY,
		timestamp       DATETIME NOT NULL,
		processed       INTEGER NOT NULL DEFAULT 0,
		processed_at    DATETIME,
		note            TEXT NOT NULL DEFAULT '',
		mood            TEXT NOT NULL DEFAULT '',
		tags            TEXT NOT NULL DEFAULT '[]',
		health          TEXT,
		environment     TEXT,
		location        TEXT,
		calendar_titles TEXT NOT NULL DEFAULT '[]',
		source          TEXT NOT NULL DEFAULT 'manual',
		trigger_kind    TEXT NOT NULL DEFAULT 'none',
		duration_ms     INTEGER NOT NULL DEFAULT 0,
		errors          TEXT NOT NULL DEFAULT '[]',
		battery         INTEGER,
		insights        TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS entries (
		date         TEXT PRIMARY KEY,
		headline     TEXT NOT NULL DEFAULT '',
		summary      TEXT NOT NULL DEFAULT '',
		body         TEXT NOT NULL DEFAULT '',
		mood         TEXT NOT NULL DEFAULT 'calm',
		mood_emoji   TEXT NOT NULL DEFAULT '',
		tags         TEXT NOT NULL DEFAULT '[]',
		snapshot     TEXT NOT NULL DEFAULT '{}',
		user_note    TEXT NOT NULL DEFAULT '',
		user_mood    TEXT NOT NULL DEFAULT '',
		ai_generated INTEGER NOT NULL DEFAULT 0,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_captures_timestamp ON captures(timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_captures_processed ON captures(processed)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_date       ON entries(date DESC)`,

	// Migration 1: migration tracking table
	`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// applyMigrations runs any migrations that have not yet been applied.
func applyMigrations(conn *sql.DB) error {
	// Ensure the migration tracking table exists first.
	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmt := range migrations {
		var count int
		row := conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, i)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", i, err)
		}
		if count > 0 {
			continue
		}

		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}

		if _, err := conn.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, i); err != nil {
			return fmt.Errorf("record migration %d: %w", i, err)
		}
	}

	return nil
}
