package event

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore appends events to the events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e Event) error {
	query := `
		INSERT INTO events (uid, kind, user_agent, browser, os, remote_addr, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.UID, e.Kind, e.UserAgent, e.Browser, e.OS, e.RemoteAddr, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUID(ctx context.Context, uid string) ([]Event, error) {
	query := `
		SELECT id, uid, kind, user_agent, browser, os, remote_addr, created_at
		FROM events
		WHERE uid = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		err := rows.Scan(&e.ID, &e.UID, &e.Kind, &e.UserAgent, &e.Browser, &e.OS, &e.RemoteAddr, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
