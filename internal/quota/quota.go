// Package quota tracks how many times each prize tier has been won today.
//
// A tier's state is a win counter plus the time of the latest win. The
// counter restarts at 1 on the first win after local midnight. Every
// backend implements Acquire as a single atomic increment-with-ceiling so
// concurrent draws never award more than the tier's daily maximum.
package quota

import (
	"context"
	"errors"
	"time"

	"lucky-draw/internal/pkg/clock"
)

// ErrQuotaExceeded is returned by Acquire when the tier's daily maximum
// has already been reached. Callers turn it into a no-win outcome.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// State is the quota counter of one tier for the current day.
type State struct {
	TierID     int64
	WonCount   int64
	FirstWonAt time.Time // refreshed on every win; marks the day the counter belongs to
}

// Tracker is the per-tier daily win counter.
type Tracker interface {
	// Acquire reserves one win for the tier on now's day. dayMax 0 means
	// unlimited. Returns ErrQuotaExceeded when no slot is left.
	Acquire(ctx context.Context, tierID, dayMax int64, now time.Time) (State, error)

	// Release hands back a slot reserved by Acquire earlier the same day.
	Release(ctx context.Context, tierID int64, now time.Time) error

	// Get returns today's state. ok is false when the tier has no win today.
	Get(ctx context.Context, tierID int64, now time.Time) (state State, ok bool, err error)
}

// window holds the day-boundary logic shared by the backends.
type window struct {
	loc *time.Location
}

func newWindow(loc *time.Location) window {
	if loc == nil {
		loc = time.Local
	}
	return window{loc: loc}
}

// dayStart returns the most recent local midnight relative to now.
func (w window) dayStart(now time.Time) time.Time {
	return clock.StartOfDay(now, w.loc)
}

// isToday reports whether a stored win time belongs to now's day.
func (w window) isToday(firstWonAt, now time.Time) bool {
	return !firstWonAt.Before(w.dayStart(now))
}
