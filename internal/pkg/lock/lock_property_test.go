// Property-based tests for per-key serialization.
package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// TestConcurrentCounterSafetyProperty checks that concurrent read-modify-write
// sequences under the same key behave like sequential execution.
func TestConcurrentCounterSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(0, 1000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")
		key := rapid.Int64Range(1, 9).Draw(t, "key")

		deltas := make([]int64, numOps)
		expected := initial
		for i := range deltas {
			deltas[i] = rapid.Int64Range(-50, 50).Draw(t, "delta")
			expected += deltas[i]
		}

		kl := NewKeyLock()
		counter := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, d := range deltas {
			go func(d int64) {
				defer wg.Done()
				_ = kl.WithLockContext(context.Background(), key, time.Minute, func() error {
					counter += d
					return nil
				})
			}(d)
		}
		wg.Wait()

		if counter != expected {
			t.Fatalf("counter mismatch with locking: expected %d, got %d", expected, counter)
		}
	})
}

// TestExclusiveHolderProperty checks that a key is never held by two
// goroutines at once and is free again afterwards.
func TestExclusiveHolderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.Int64Range(1, 1000000).Draw(t, "key")
		numAttempts := rapid.IntRange(5, 20).Draw(t, "numAttempts")

		kl := NewKeyLock()

		var holders, maxHolders atomic.Int32
		var wg sync.WaitGroup
		wg.Add(numAttempts)
		startCh := make(chan struct{})

		for i := 0; i < numAttempts; i++ {
			go func() {
				defer wg.Done()
				<-startCh
				_ = kl.WithLockContext(context.Background(), key, time.Minute, func() error {
					n := holders.Add(1)
					for {
						m := maxHolders.Load()
						if n <= m || maxHolders.CompareAndSwap(m, n) {
							break
						}
					}
					holders.Add(-1)
					return nil
				})
			}()
		}

		close(startCh)
		wg.Wait()

		if maxHolders.Load() > 1 {
			t.Fatalf("key held by %d goroutines at once", maxHolders.Load())
		}
		if !kl.LockWithTimeout(context.Background(), key, 10*time.Millisecond) {
			t.Fatal("lock should be available after all operations complete")
		}
		kl.Unlock(key)
	})
}

// TestErrorReleasesLockProperty checks that fn's error is returned and the
// key is released either way.
func TestErrorReleasesLockProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.Int64Range(1, 1000000).Draw(t, "key")
		numCycles := rapid.IntRange(1, 50).Draw(t, "numCycles")
		boom := errors.New("boom")

		kl := NewKeyLock()
		for i := 0; i < numCycles; i++ {
			fail := rapid.Bool().Draw(t, "fail")
			err := kl.WithLockContext(context.Background(), key, 10*time.Millisecond, func() error {
				if fail {
					return boom
				}
				return nil
			})
			if fail && !errors.Is(err, boom) {
				t.Fatalf("expected fn error, got %v", err)
			}
			if !fail && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		if !kl.LockWithTimeout(context.Background(), key, 10*time.Millisecond) {
			t.Fatal("key should be free after every cycle")
		}
		kl.Unlock(key)
	})
}

func TestWithLockContextTimeout(t *testing.T) {
	kl := NewKeyLock()
	if !kl.LockWithTimeout(context.Background(), 3, time.Second) {
		t.Fatal("fresh key should be free")
	}
	defer kl.Unlock(3)

	err := kl.WithLockContext(context.Background(), 3, 20*time.Millisecond, func() error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	if err != ErrLockTimeout {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}

	// Other keys are unaffected.
	if err := kl.WithLockContext(context.Background(), 4, 20*time.Millisecond, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error on independent key: %v", err)
	}
}

func TestWithLockContextCanceled(t *testing.T) {
	kl := NewKeyLock()
	if !kl.LockWithTimeout(context.Background(), 5, time.Second) {
		t.Fatal("fresh key should be free")
	}
	defer kl.Unlock(5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := kl.WithLockContext(ctx, 5, time.Second, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
