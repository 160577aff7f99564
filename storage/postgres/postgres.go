// Package postgres implements storage.Repository backed by PostgreSQL.
//
// The records table uses a composite primary key (kind, record_id) that
// mirrors the key space used by the BBolt and in-memory backends. Rows are
// stored as BYTEA so the schema stays agnostic to the record encoding.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wordtrove/authd/storage"
)

// Store implements storage.Repository backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Repository backed by the given pgx connection pool.
func NewRepository(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewRepositoryFromDSN creates a connection pool from a DSN string, ensures
// the schema exists, and returns a new Repository.
func NewRepositoryFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return NewRepository(pool), nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Put(kind, id string, data []byte) error {
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO auth_records (kind, record_id, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (kind, record_id) DO UPDATE SET data = $3`,
		kind, id, data)
	return err
}

func (s *Store) Get(kind, id string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(context.Background(),
		`SELECT data FROM auth_records WHERE kind = $1 AND record_id = $2`,
		kind, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", kind, id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete relies on the command tag's row count so two concurrent deletes of
// the same id report exactly one removal.
func (s *Store) Delete(kind, id string) (bool, error) {
	tag, err := s.pool.Exec(context.Background(),
		`DELETE FROM auth_records WHERE kind = $1 AND record_id = $2`,
		kind, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) List(kind string) ([]string, error) {
	rows, err := s.pool.Query(context.Background(),
		`SELECT record_id FROM auth_records WHERE kind = $1`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
