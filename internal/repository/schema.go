package repository

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS realty`,
	`CREATE TABLE IF NOT EXISTS realty.users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS realty.properties (
		id            BIGSERIAL PRIMARY KEY,
		user_id       BIGINT NOT NULL REFERENCES realty.users(id) ON DELETE CASCADE,
		location      TEXT NOT NULL,
		area          DOUBLE PRECISION NOT NULL CHECK (area >= 0),
		price         NUMERIC(18, 2) NOT NULL CHECK (price >= 0),
		property_type TEXT NOT NULL,
		amenities     TEXT[] NOT NULL DEFAULT '{}',
		description   TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS properties_user_created_idx ON realty.properties (user_id, created_at DESC)`,
}

// Migrate creates the schema if it does not exist yet
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}
