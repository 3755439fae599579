// Package quota implements the per-user daily cap on billed provider calls.
//
// The counter lives on the users row as (call_count, last_call_date). The
// stored count is only meaningful relative to the stored date: when the date
// is not today (UTC), the effective count is zero. The reset is lazy — it is
// materialized by the next gate or login, never by a background timer.
package quota

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jobprep-ai/jobprep/internal/metrics"
)

var (
	// ErrStoreUnavailable signals a transient storage failure. Callers must
	// treat it as a denial: the gate fails closed.
	ErrStoreUnavailable = errors.New("quota store unavailable")

	// ErrExceeded reports that the user has used up today's allowance.
	ErrExceeded = errors.New("daily call quota exceeded")
)

// Status reports a user's current standing against the daily cap.
type Status struct {
	CallsToday     int    `json:"calls_today"`
	MaxCallsPerDay int    `json:"max_calls_per_day"`
	Remaining      int    `json:"remaining"`
	Date           string `json:"date"`
}

// Store persists per-user daily call counters.
//
// IncrementIfUnder must be atomic: a single conditional mutation that applies
// the lazy day reset and the increment together, so concurrent callers can
// never push the counter past max.
type Store interface {
	// IncrementIfUnder increments the user's counter for today if the
	// effective count (zero when the stored date is not today) is below max.
	// Returns false without mutating anything when the cap is reached.
	IncrementIfUnder(ctx context.Context, userID uuid.UUID, today string, max int) (bool, error)

	// ResetIfStale zeroes the counter when the stored date is not today.
	// Idempotent: a second call on an already-reset row changes nothing.
	ResetIfStale(ctx context.Context, userID uuid.UUID, today string) error

	// CallsOn returns the stored count when the stored date equals the given
	// day, zero otherwise.
	CallsOn(ctx context.Context, userID uuid.UUID, day string) (int, error)
}

// Service is the quota gate consulted before every billed action.
type Service struct {
	store Store
	max   int
	now   func() time.Time
}

func NewService(store Store, maxCallsPerDay int) *Service {
	return &Service{
		store: store,
		max:   maxCallsPerDay,
		now:   time.Now,
	}
}

// today returns the current UTC calendar date as an ISO-8601 date string.
func (s *Service) today() string {
	return s.now().UTC().Format(time.DateOnly)
}

// CheckAndIncrement consumes one daily call if the user is under the cap.
// It returns false when the quota is exhausted (the counter is untouched in
// that case), and a non-nil error when the store is unreachable — the caller
// must deny the action on error, never allow it.
func (s *Service) CheckAndIncrement(ctx context.Context, userID uuid.UUID) (bool, error) {
	allowed, err := s.store.IncrementIfUnder(ctx, userID, s.today(), s.max)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return allowed, nil
}

// Consume collapses CheckAndIncrement to a single error: ErrExceeded when the
// cap is reached, an ErrStoreUnavailable-wrapped error when the store fails.
func (s *Service) Consume(ctx context.Context, userID uuid.UUID) error {
	allowed, err := s.CheckAndIncrement(ctx, userID)
	if err != nil {
		return err
	}
	if !allowed {
		metrics.QuotaDenialsTotal.Inc()
		return ErrExceeded
	}
	return nil
}

// ResetIfStale is the login-path eager reset: it zeroes a stale counter
// without consuming a call. Safe to call repeatedly on the same day.
func (s *Service) ResetIfStale(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.ResetIfStale(ctx, userID, s.today()); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Status returns today's usage for display. Storage errors surface as
// ErrStoreUnavailable; this path never mutates the counter.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	today := s.today()
	calls, err := s.store.CallsOn(ctx, userID, today)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	remaining := s.max - calls
	if remaining < 0 {
		remaining = 0
	}
	return &Status{
		CallsToday:     calls,
		MaxCallsPerDay: s.max,
		Remaining:      remaining,
		Date:           today,
	}, nil
}
