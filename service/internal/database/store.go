// internal/database/store.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MatchRecord is one decided match.
type MatchRecord struct {
	MatchID    uuid.UUID `json:"matchId"`
	Winner     string    `json:"winner"` // "P1" or "P2".
	WinnerName string    `json:"winnerName"`
	LoserName  string    `json:"loserName"`
	Reason     string    `json:"reason"` // captures, surrender or forfeit.
	Moves      int       `json:"moves"`
	CapturedP1 int       `json:"capturedP1"`
	CapturedP2 int       `json:"capturedP2"`
	FinishedAt time.Time `json:"finishedAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS seega_matches (
	match_id     UUID PRIMARY KEY,
	winner       TEXT NOT NULL,
	winner_name  TEXT NOT NULL,
	loser_name   TEXT NOT NULL,
	reason       TEXT NOT NULL,
	moves        INTEGER NOT NULL,
	captured_p1  INTEGER NOT NULL,
	captured_p2  INTEGER NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS seega_matches_finished_at_idx ON seega_matches (finished_at DESC);
`

// Store persists match results in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for url and pings it.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the tables if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// RecordMatch stores rec. A match recorded twice keeps its first row.
func (s *Store) RecordMatch(ctx context.Context, rec MatchRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO seega_matches
			(match_id, winner, winner_name, loser_name, reason, moves, captured_p1, captured_p2, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (match_id) DO NOTHING`,
		rec.MatchID, rec.Winner, rec.WinnerName, rec.LoserName, rec.Reason,
		rec.Moves, rec.CapturedP1, rec.CapturedP2, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", rec.MatchID, err)
	}
	return nil
}

// RecentMatches returns up to limit matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT match_id, winner, winner_name, loser_name, reason, moves, captured_p1, captured_p2, finished_at
		FROM seega_matches
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent matches: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MatchRecord, error) {
		var r MatchRecord
		err := row.Scan(&r.MatchID, &r.Winner, &r.WinnerName, &r.LoserName, &r.Reason,
			&r.Moves, &r.CapturedP1, &r.CapturedP2, &r.FinishedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan recent matches: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
