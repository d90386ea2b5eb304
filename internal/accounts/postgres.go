package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// Postgres reads registered users from the users table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema creates the users table when missing.
func (r *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS users (
			username    TEXT PRIMARY KEY,
			displayname TEXT NOT NULL,
			rating      DOUBLE PRECISION NOT NULL DEFAULT 400
		)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *Postgres) FetchPublicProfile(ctx context.Context, username string) (*Profile, error) {
	const query = `
		SELECT username, displayname, rating
		FROM users
		WHERE username = $1
		LIMIT 1`

	var p Profile
	err := r.db.QueryRowContext(ctx, query, username).Scan(&p.Username, &p.Displayname, &p.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &p, nil
}

func (r *Postgres) SetRating(ctx context.Context, username string, rating float64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET rating = $2 WHERE username = $1`, username, rating)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts or replaces a registered user.
func (r *Postgres) Upsert(ctx context.Context, p Profile) error {
	const query = `
		INSERT INTO users (username, displayname, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (username)
		DO UPDATE SET
			displayname = EXCLUDED.displayname,
			rating = EXCLUDED.rating`
	if _, err := r.db.ExecContext(ctx, query, p.Username, p.Displayname, p.Rating); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
