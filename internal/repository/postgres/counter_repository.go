package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"barangay-hub/internal/repository"
)

type counterRepository struct {
	pool *pgxpool.Pool
}

func NewCounterRepository(pool *pgxpool.Pool) repository.CounterRepository {
	return &counterRepository{pool: pool}
}

var _ repository.CounterRepository = (*counterRepository)(nil)

// Next increments and returns the sequence for key in one statement. The
// upsert makes first use of a key implicit and the RETURNING clause keeps
// the read atomic with the increment.
func (r *counterRepository) Next(ctx context.Context, key string) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO counters (key, seq)
		 VALUES ($1, 1)
		 ON CONFLICT (key) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq`,
		key,
	).Scan(&seq)
	return seq, err
}
