package keylock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLock_SerializesSameKey(t *testing.T) {
	reg := New()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := reg.Lock(ctx, "m1")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders: got %d, want 1", maxSeen)
	}
	if n := reg.Len(); n != 0 {
		t.Errorf("registry should be empty after all unlocks, has %d keys", n)
	}
}

func TestLock_DifferentKeysDoNotContend(t *testing.T) {
	reg := New()
	ctx := context.Background()

	unlockA, err := reg.Lock(ctx, "a")
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer unlockA()

	ctxB, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	unlockB, err := reg.Lock(ctxB, "b")
	if err != nil {
		t.Fatalf("Lock b should not wait on a: %v", err)
	}
	unlockB()
}

func TestLock_TimesOut(t *testing.T) {
	reg := New()

	unlock, err := reg.Lock(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = reg.Lock(ctx, "m1")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if n := reg.Len(); n != 1 {
		t.Errorf("waiter should have released its reference, keys=%d", n)
	}
}

func TestUnlock_Idempotent(t *testing.T) {
	reg := New()
	unlock, err := reg.Lock(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	unlock()
	unlock()

	if n := reg.Len(); n != 0 {
		t.Errorf("keys after double unlock: got %d, want 0", n)
	}
}
