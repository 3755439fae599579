package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the PostgreSQL-backed Store. The counters live on the users
// table, so the check-reset-increment is one conditional UPDATE — concurrent
// requests for the same user serialize on the row and the cap holds.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) IncrementIfUnder(ctx context.Context, userID uuid.UUID, today string, max int) (bool, error) {
	// The WHERE clause admits two cases: a stale date (new day, effective
	// count zero) or a current date still under the cap. The CASE expression
	// applies the matching mutation. No row matched means the cap is reached;
	// the counter stays untouched.
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET call_count = CASE WHEN last_call_date = $2::date THEN call_count + 1 ELSE 1 END,
		     last_call_date = $2::date,
		     updated_at = NOW()
		 WHERE id = $1
		   AND (last_call_date IS DISTINCT FROM $2::date OR call_count < $3)
		 RETURNING call_count`,
		userID, today, max,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("incrementing call count: %w", err)
	}
	return true, nil
}

func (r *Repository) ResetIfStale(ctx context.Context, userID uuid.UUID, today string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET call_count = 0,
		     last_call_date = $2::date,
		     updated_at = NOW()
		 WHERE id = $1 AND last_call_date IS DISTINCT FROM $2::date`,
		userID, today,
	)
	if err != nil {
		return fmt.Errorf("resetting stale call count: %w", err)
	}
	return nil
}

func (r *Repository) CallsOn(ctx context.Context, userID uuid.UUID, day string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT CASE WHEN last_call_date = $2::date THEN call_count ELSE 0 END
		 FROM users WHERE id = $1`,
		userID, day,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading call count: %w", err)
	}
	return count, nil
}
