package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresFetchPublicProfile(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectQuery(`SELECT username, displayname, rating\s+FROM users`).
		WithArgs("ann").
		WillReturnRows(sqlmock.NewRows([]string{"username", "displayname", "rating"}).AddRow("ann", "Ann", 1234.5))
	mock.ExpectQuery(`FROM users`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	p, err := pg.FetchPublicProfile(context.Background(), "ann")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Displayname != "Ann" || p.Rating != 1234.5 || p.RoundedRating() != 1234 {
		t.Fatalf("profile = %+v", p)
	}
	if _, err := pg.FetchPublicProfile(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresSetRating(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectExec(`UPDATE users SET rating`).WithArgs("ann", 1210.0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET rating`).WithArgs("ghost", 400.0).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := pg.SetRating(context.Background(), "ann", 1210); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	if err := pg.SetRating(context.Background(), "ghost", 400); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresSchemaAndUpsert(t *testing.T) {
	pg, mock := newMockPostgres(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO users .* ON CONFLICT \(username\)`).
		WithArgs("bob", "Bob", 1000.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := pg.Upsert(ctx, Profile{Username: "bob", Displayname: "Bob", Rating: 1000}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
