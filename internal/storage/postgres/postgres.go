package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the postgres persistence backend, raw SQL over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an initialized connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the connection pool.
func (s *Store) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}
