// Package db provides PostgreSQL storage for the board's audit trail.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/jobboard/internal/jobboard"
	"github.com/jonathan/jobboard/internal/types"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          BIGSERIAL PRIMARY KEY,
	kind        TEXT NOT NULL,
	actor_role  TEXT NOT NULL DEFAULT '',
	actor_id    TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	detail      TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_occurred_at_idx ON audit_events (occurred_at DESC);
`

// EnsureSchema creates the audit table if it does not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// InsertEvent appends one event to the audit table.
func (db *DB) InsertEvent(ctx context.Context, ev jobboard.Event) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO audit_events (kind, actor_role, actor_id, subject, detail, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(ev.Kind), string(ev.Actor.Role), ev.Actor.ID, ev.Subject, ev.Detail, ev.At,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event %s: %w", ev.Kind, err)
	}
	return nil
}

// ListEvents retrieves the most recent audit events, newest first.
func (db *DB) ListEvents(ctx context.Context, limit int) ([]jobboard.Event, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT kind, actor_role, actor_id, subject, detail, occurred_at
		 FROM audit_events ORDER BY occurred_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	events := []jobboard.Event{}
	for rows.Next() {
		var ev jobboard.Event
		var kind, role string
		if err := rows.Scan(&kind, &role, &ev.Actor.ID, &ev.Subject, &ev.Detail, &ev.At); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.Kind = jobboard.EventKind(kind)
		ev.Actor.Role = types.Role(role)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}
	return events, nil
}
