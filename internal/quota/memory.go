package quota

import (
	"context"
	"sync"
	"time"

	"lucky-draw/internal/pkg/lock"
)

// MemoryTracker keeps quota state in process memory. Each tier is guarded
// by its own key lock, so it is exact within a single process only.
type MemoryTracker struct {
	window
	locks  *lock.KeyLock
	states sync.Map // map[int64]State
}

// NewMemoryTracker creates a MemoryTracker using loc for the day boundary.
func NewMemoryTracker(loc *time.Location) *MemoryTracker {
	return &MemoryTracker{
		window: newWindow(loc),
		locks:  lock.NewKeyLock(),
	}
}

// Acquire implements Tracker.
func (m *MemoryTracker) Acquire(ctx context.Context, tierID, dayMax int64, now time.Time) (State, error) {
	var result State
	err := m.locks.WithLockContext(ctx, tierID, time.Second, func() error {
		st := m.load(tierID)
		if st.WonCount == 0 || !m.isToday(st.FirstWonAt, now) {
			st = State{TierID: tierID}
		}
		if dayMax > 0 && st.WonCount >= dayMax {
			result = st
			return ErrQuotaExceeded
		}
		st.WonCount++
		st.FirstWonAt = now
		m.states.Store(tierID, st)
		result = st
		return nil
	})
	return result, err
}

// Release implements Tracker.
func (m *MemoryTracker) Release(ctx context.Context, tierID int64, now time.Time) error {
	return m.locks.WithLockContext(ctx, tierID, time.Second, func() error {
		st := m.load(tierID)
		if st.WonCount > 0 && m.isToday(st.FirstWonAt, now) {
			st.WonCount--
			m.states.Store(tierID, st)
		}
		return nil
	})
}

// Get implements Tracker.
func (m *MemoryTracker) Get(_ context.Context, tierID int64, now time.Time) (State, bool, error) {
	st := m.load(tierID)
	if st.WonCount == 0 || !m.isToday(st.FirstWonAt, now) {
		return State{TierID: tierID}, false, nil
	}
	return st, true, nil
}

func (m *MemoryTracker) load(tierID int64) State {
	if v, ok := m.states.Load(tierID); ok {
		return v.(State)
	}
	return State{TierID: tierID}
}
