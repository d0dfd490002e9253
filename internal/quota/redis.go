package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// stateTTL bounds how long a tier's hash outlives its last win.
const stateTTL = 48 * time.Hour

// acquireScript resets a stale counter, enforces the ceiling and bumps the
// counter in one server-side step. Returns -1 when the quota is exhausted.
var acquireScript = redis.NewScript(`
local count = tonumber(redis.call('HGET', KEYS[1], 'won_count') or '0')
local first = tonumber(redis.call('HGET', KEYS[1], 'first_won_at') or '0')
local now = tonumber(ARGV[1])
local day_start = tonumber(ARGV[2])
local day_max = tonumber(ARGV[3])
if first < day_start then
	count = 0
end
if day_max > 0 and count >= day_max then
	return -1
end
count = count + 1
redis.call('HSET', KEYS[1], 'won_count', count, 'first_won_at', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return count
`)

var releaseScript = redis.NewScript(`
local count = tonumber(redis.call('HGET', KEYS[1], 'won_count') or '0')
local first = tonumber(redis.call('HGET', KEYS[1], 'first_won_at') or '0')
if count > 0 and first >= tonumber(ARGV[1]) then
	return redis.call('HINCRBY', KEYS[1], 'won_count', -1)
end
return count
`)

// RedisTracker keeps quota state in a redis hash per tier and mutates it
// with Lua scripts.
type RedisTracker struct {
	window
	client redis.UniversalClient
	prefix string
}

// NewRedisTracker creates a RedisTracker. Keys are prefix + "lucky_goods_<id>".
func NewRedisTracker(client redis.UniversalClient, prefix string, loc *time.Location) *RedisTracker {
	return &RedisTracker{window: newWindow(loc), client: client, prefix: prefix}
}

func (r *RedisTracker) key(tierID int64) string {
	return r.prefix + "lucky_goods_" + strconv.FormatInt(tierID, 10)
}

// Acquire implements Tracker.
func (r *RedisTracker) Acquire(ctx context.Context, tierID, dayMax int64, now time.Time) (State, error) {
	count, err := acquireScript.Run(ctx, r.client, []string{r.key(tierID)},
		now.UnixMilli(),
		r.dayStart(now).UnixMilli(),
		dayMax,
		stateTTL.Milliseconds(),
	).Int64()
	if err != nil {
		return State{}, fmt.Errorf("failed to acquire quota: %w", err)
	}
	if count < 0 {
		return State{TierID: tierID, WonCount: dayMax}, ErrQuotaExceeded
	}
	return State{TierID: tierID, WonCount: count, FirstWonAt: time.UnixMilli(now.UnixMilli())}, nil
}

// Release implements Tracker.
func (r *RedisTracker) Release(ctx context.Context, tierID int64, now time.Time) error {
	err := releaseScript.Run(ctx, r.client, []string{r.key(tierID)}, r.dayStart(now).UnixMilli()).Err()
	if err != nil {
		return fmt.Errorf("failed to release quota: %w", err)
	}
	return nil
}

// Get implements Tracker.
func (r *RedisTracker) Get(ctx context.Context, tierID int64, now time.Time) (State, bool, error) {
	vals, err := r.client.HMGet(ctx, r.key(tierID), "won_count", "first_won_at").Result()
	if err != nil {
		return State{}, false, fmt.Errorf("failed to get quota: %w", err)
	}
	count, _ := parseRedisInt(vals[0])
	first, _ := parseRedisInt(vals[1])
	st := State{TierID: tierID, WonCount: count, FirstWonAt: time.UnixMilli(first)}
	if count == 0 || !r.isToday(st.FirstWonAt, now) {
		return State{TierID: tierID}, false, nil
	}
	return st, true, nil
}

func parseRedisInt(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
