// Package archive stores the outcome of finished matches.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/paint-chess/internal/board"
)

// Record is the final state of one match. Winner is empty for draws and aborts.
type Record struct {
	MatchID        string            `json:"matchId"`
	P1             string            `json:"p1"`
	P2             string            `json:"p2"`
	Winner         string            `json:"winner,omitempty"`
	WinnerRole     board.Role        `json:"winnerRole,omitempty"`
	Method         string            `json:"method"`
	SecsPerPlayer  int               `json:"secsPerPlayer"`
	CompletedTurns int               `json:"completedTurns"`
	StartedAt      time.Time         `json:"startedAt"`
	EndedAt        time.Time         `json:"endedAt"`
	FinalBoard     board.Description `json:"finalBoard"`
	Summary        string            `json:"summary,omitempty"`
}

// DurationMS is the wall-clock length of the match, never negative.
func (r *Record) DurationMS() int64 {
	d := r.EndedAt.Sub(r.StartedAt).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}

// Score renders the result the way chess results are usually written.
func (r *Record) Score() string {
	switch {
	case strings.EqualFold(r.Method, "aborted"):
		return "*"
	case r.WinnerRole == board.P1:
		return "1-0"
	case r.WinnerRole == board.P2:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

// Repository writes records to the paint_matches table.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository { return &Repository{db: db} }

// EnsureSchema creates the paint_matches table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS paint_matches (
			match_id        TEXT PRIMARY KEY,
			p1              TEXT NOT NULL,
			p2              TEXT NOT NULL,
			winner          TEXT NOT NULL DEFAULT '',
			score           TEXT NOT NULL,
			method          TEXT NOT NULL,
			secs_per_player INTEGER NOT NULL,
			completed_turns INTEGER NOT NULL,
			started_at      TIMESTAMPTZ NOT NULL,
			ended_at        TIMESTAMPTZ NOT NULL,
			duration_ms     BIGINT NOT NULL,
			final_board     JSONB NOT NULL
		)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create paint_matches table: %w", err)
	}
	return nil
}

// SaveResult upserts a finished match.
func (r *Repository) SaveResult(ctx context.Context, rec *Record) error {
	if r == nil || r.db == nil {
		return nil
	}
	if rec == nil {
		return errors.New("nil match record")
	}
	boardRaw, err := json.Marshal(rec.FinalBoard)
	if err != nil {
		return fmt.Errorf("marshal final_board: %w", err)
	}

	const q = `INSERT INTO paint_matches (
		match_id, p1, p2, winner, score, method,
		secs_per_player, completed_turns,
		started_at, ended_at, duration_ms, final_board
	) VALUES (
		$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12::jsonb
	) ON CONFLICT (match_id) DO UPDATE SET
		p1=EXCLUDED.p1,
		p2=EXCLUDED.p2,
		winner=EXCLUDED.winner,
		score=EXCLUDED.score,
		method=EXCLUDED.method,
		secs_per_player=EXCLUDED.secs_per_player,
		completed_turns=EXCLUDED.completed_turns,
		started_at=EXCLUDED.started_at,
		ended_at=EXCLUDED.ended_at,
		duration_ms=EXCLUDED.duration_ms,
		final_board=EXCLUDED.final_board`

	_, err = r.db.ExecContext(ctx, q,
		rec.MatchID, rec.P1, rec.P2, rec.Winner, rec.Score(), strings.TrimSpace(rec.Method),
		rec.SecsPerPlayer, rec.CompletedTurns,
		rec.StartedAt, rec.EndedAt, rec.DurationMS(), string(boardRaw),
	)
	if err != nil {
		return fmt.Errorf("upsert paint match: %w", err)
	}
	return nil
}
