package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore mirrors the repository's semantics: the day reset and the
// increment happen under one lock, like the single conditional UPDATE.
type memStore struct {
	mu   sync.Mutex
	recs map[uuid.UUID]*memRec
	err  error
}

type memRec struct {
	count int
	date  string
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[uuid.UUID]*memRec)}
}

func (s *memStore) rec(userID uuid.UUID) *memRec {
	r, ok := s.recs[userID]
	if !ok {
		r = &memRec{}
		s.recs[userID] = r
	}
	return r
}

func (s *memStore) IncrementIfUnder(_ context.Context, userID uuid.UUID, today string, max int) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.rec(userID)
	effective := 0
	if r.date == today {
		effective = r.count
	}
	if effective >= max {
		return false, nil
	}
	r.count = effective + 1
	r.date = today
	return true, nil
}

func (s *memStore) ResetIfStale(_ context.Context, userID uuid.UUID, today string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.rec(userID)
	if r.date != today {
		r.count = 0
		r.date = today
	}
	return nil
}

func (s *memStore) CallsOn(_ context.Context, userID uuid.UUID, day string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.rec(userID)
	if r.date != day {
		return 0, nil
	}
	return r.count, nil
}

func fixedDay(day string) func() time.Time {
	t, _ := time.Parse(time.DateOnly, day)
	return func() time.Time { return t }
}

func TestCheckAndIncrement_ExactlyMaxCallsSucceed(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, 10)
	svc.now = fixedDay("2024-04-15")
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		allowed, err := svc.CheckAndIncrement(ctx, userID)
		require.NoError(t, err)
		assert.True(t, allowed, "call %d should be allowed", i+1)
	}

	// 11th call is denied and must not increment
	allowed, err := svc.CheckAndIncrement(ctx, userID)
	require.NoError(t, err)
	assert.False(t, allowed)

	calls, err := store.CallsOn(ctx, userID, "2024-04-15")
	require.NoError(t, err)
	assert.Equal(t, 10, calls, "denied call must not increment the counter")

	// Further denials still leave the counter alone
	for i := 0; i < 3; i++ {
		allowed, err := svc.CheckAndIncrement(ctx, userID)
		require.NoError(t, err)
		assert.False(t, allowed)
	}
	calls, _ = store.CallsOn(ctx, userID, "2024-04-15")
	assert.Equal(t, 10, calls)
}

func TestCheckAndIncrement_NewDayResetsToOne(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, 10)
	svc.now = fixedDay("2024-04-15")
	ctx := context.Background()
	userID := uuid.New()

	// Exhaust yesterday's quota
	for i := 0; i < 10; i++ {
		allowed, err := svc.CheckAndIncrement(ctx, userID)
		require.NoError(t, err)
		require.True(t, allowed)
	}

	// Day rolls over: the first call succeeds regardless of yesterday's
	// count, and the effective count becomes 1, not 0.
	svc.now = fixedDay("2024-04-16")
	allowed, err := svc.CheckAndIncrement(ctx, userID)
	require.NoError(t, err)
	assert.True(t, allowed)

	calls, err := store.CallsOn(ctx, userID, "2024-04-16")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCheckAndIncrement_FailsClosedOnStoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")
	svc := NewService(store, 10)

	allowed, err := svc.CheckAndIncrement(context.Background(), uuid.New())
	assert.False(t, allowed, "storage failure must deny, never allow")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestResetIfStale_Idempotent(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, 10)
	svc.now = fixedDay("2024-04-15")
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 4; i++ {
		_, err := svc.CheckAndIncrement(ctx, userID)
		require.NoError(t, err)
	}

	// A new day: the login reset zeroes the counter without consuming a call.
	svc.now = fixedDay("2024-04-16")
	require.NoError(t, svc.ResetIfStale(ctx, userID))

	calls, err := store.CallsOn(ctx, userID, "2024-04-16")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	// A second reset on an already-reset-today record changes nothing.
	require.NoError(t, svc.ResetIfStale(ctx, userID))
	calls, _ = store.CallsOn(ctx, userID, "2024-04-16")
	assert.Equal(t, 0, calls)

	// Reset then call: the gate applies the increment, landing on 1.
	allowed, err := svc.CheckAndIncrement(ctx, userID)
	require.NoError(t, err)
	assert.True(t, allowed)
	calls, _ = store.CallsOn(ctx, userID, "2024-04-16")
	assert.Equal(t, 1, calls)
}

func TestCheckAndIncrement_ConcurrentCallersNeverExceedCap(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, 10)
	svc.now = fixedDay("2024-04-15")
	ctx := context.Background()
	userID := uuid.New()

	const workers = 50
	var wg sync.WaitGroup
	successes := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := svc.CheckAndIncrement(ctx, userID)
			require.NoError(t, err)
			successes <- allowed
		}()
	}
	wg.Wait()
	close(successes)

	granted := 0
	for ok := range successes {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 10, granted, "exactly the capped number of calls may succeed")

	calls, _ := store.CallsOn(ctx, userID, "2024-04-15")
	assert.Equal(t, 10, calls)
}

// racyStore performs the check and the increment as separate steps with a
// rendezvous between them. It reproduces the lost-update race that a
// read-compare-write gate suffers, which is why Store demands a single
// atomic mutation.
type racyStore struct {
	mu      sync.Mutex
	count   int
	date    string
	barrier *sync.WaitGroup
}

func (s *racyStore) IncrementIfUnder(_ context.Context, _ uuid.UUID, today string, max int) (bool, error) {
	s.mu.Lock()
	effective := 0
	if s.date == today {
		effective = s.count
	}
	s.mu.Unlock()

	// Both callers observe the pre-increment count before either writes.
	s.barrier.Done()
	s.barrier.Wait()

	if effective >= max {
		return false, nil
	}

	s.mu.Lock()
	s.count = effective + 1
	s.date = today
	s.mu.Unlock()
	return true, nil
}

func (s *racyStore) ResetIfStale(context.Context, uuid.UUID, string) error { return nil }

func (s *racyStore) CallsOn(context.Context, uuid.UUID, string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

// Regression: documents the overshoot a non-atomic store produces, so the
// atomicity requirement on Store never regresses silently.
func TestCheckAndIncrement_NonAtomicStoreOvershoots(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)

	store := &racyStore{count: 9, date: "2024-04-15", barrier: &barrier}
	svc := NewService(store, 10)
	svc.now = fixedDay("2024-04-15")
	ctx := context.Background()
	userID := uuid.New()

	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() {
			allowed, _ := svc.CheckAndIncrement(ctx, userID)
			results <- allowed
		}()
	}

	granted := 0
	for i := 0; i < 2; i++ {
		if <-results {
			granted++
		}
	}

	// One slot remained, yet both interleaved callers were granted: the
	// naive read-compare-write gate breaks the cap.
	assert.Equal(t, 2, granted)
}

func TestStatus(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, 10)
	svc.now = fixedDay("2024-04-15")
	ctx := context.Background()
	userID := uuid.New()

	st, err := svc.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CallsToday)
	assert.Equal(t, 10, st.Remaining)
	assert.Equal(t, "2024-04-15", st.Date)

	for i := 0; i < 3; i++ {
		_, err := svc.CheckAndIncrement(ctx, userID)
		require.NoError(t, err)
	}

	st, err = svc.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.CallsToday)
	assert.Equal(t, 7, st.Remaining)

	// Yesterday's count reads as zero on a new day, even before any reset.
	svc.now = fixedDay("2024-04-16")
	st, err = svc.Status(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, st.CallsToday)
	assert.Equal(t, 10, st.Remaining)
}

func TestConsume(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, 2)
	svc.now = fixedDay("2024-04-15")
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Consume(ctx, userID))
	require.NoError(t, svc.Consume(ctx, userID))
	assert.ErrorIs(t, svc.Consume(ctx, userID), ErrExceeded)

	store.err = errors.New("connection reset")
	assert.ErrorIs(t, svc.Consume(ctx, userID), ErrStoreUnavailable)
}
