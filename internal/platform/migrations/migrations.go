// Package migrations applies the relational schema at startup. Statements are
// idempotent and ordered so parents exist before their foreign keys.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS amenities (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS places (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price       DOUBLE PRECISION NOT NULL DEFAULT 0,
		latitude    DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude   DOUBLE PRECISION NOT NULL DEFAULT 0,
		owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rooms       INTEGER NOT NULL DEFAULT 1,
		capacity    INTEGER NOT NULL DEFAULT 1,
		surface     DOUBLE PRECISION NOT NULL DEFAULT 0,
		photos      JSONB NOT NULL DEFAULT '[]',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL DEFAULT '',
		rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		place_id   TEXT NOT NULL REFERENCES places(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS place_amenities (
		place_id   TEXT NOT NULL REFERENCES places(id) ON DELETE CASCADE,
		amenity_id TEXT NOT NULL REFERENCES amenities(id) ON DELETE CASCADE,
		PRIMARY KEY (place_id, amenity_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_place_id ON reviews(place_id)`,
}

// Apply executes all schema statements in order.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
