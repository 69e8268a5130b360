// Package store is the Postgres-backed repository for every entity of the
// shop. Methods take a context and translate driver errors into apperr kinds.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/go-b2b-store/internal/apperr"
	"github.com/safar/go-b2b-store/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// notFound maps sql.ErrNoRows to apperr.ErrNotFound and wraps everything else.
func notFound(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

func expectOneRow(result sql.Result, what, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
	}
	return nil
}

func duplicate(err error, what string) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, apperr.ErrDuplicateIdentity)
	}
	return fmt.Errorf("create %s: %w", what, err)
}
