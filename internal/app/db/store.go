package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dbc "trailmeet/internal/app/db/sqlc"
)

// Store is the query surface plus transactions. Handlers depend on it so
// tests can swap in an in-memory implementation.
type Store interface {
	dbc.Querier
	ExecTx(ctx context.Context, fn func(q dbc.Querier) error) error
}

// SQLStore implements Store on a pgx pool.
type SQLStore struct {
	*dbc.Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{
		Queries: dbc.New(pool),
		pool:    pool,
	}
}

// ExecTx runs fn inside a transaction, rolling back when fn fails.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(q dbc.Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
