package admission

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestController_AcquireUpToCapacity(t *testing.T) {
	c := NewController(3)

	for i := 0; i < 3; i++ {
		if _, err := c.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}

	if c.InFlight() != 3 {
		t.Errorf("Expected 3 in flight, got %d", c.InFlight())
	}

	if slot := c.TryAcquire(); slot != nil {
		t.Error("Expected TryAcquire to fail at capacity")
	}
}

func TestController_WaiterProceedsAfterRelease(t *testing.T) {
	c := NewController(1)

	first, err := c.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		slot, err := c.Acquire(context.Background())
		if err != nil {
			t.Errorf("Waiter acquire failed: %v", err)
			return
		}
		defer slot.Release()
		close(acquired)
	}()

	// The waiter must not proceed while the slot is held.
	select {
	case <-acquired:
		t.Fatal("Waiter acquired a slot while controller was at capacity")
	case <-time.After(50 * time.Millisecond):
	}

	first.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("Waiter did not acquire a slot after release")
	}
}

func TestController_ReleaseIsIdempotent(t *testing.T) {
	c := NewController(1)

	slot, err := c.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	slot.Release()
	slot.Release()
	slot.Release()

	if c.InFlight() != 0 {
		t.Errorf("Expected 0 in flight after repeated release, got %d", c.InFlight())
	}

	// A double release must not manufacture extra capacity.
	if _, err := c.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if slot := c.TryAcquire(); slot != nil {
		t.Error("Expected controller to be at capacity again")
	}
}

func TestController_AcquireHonorsContext(t *testing.T) {
	c := NewController(1)

	slot, err := c.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer slot.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Acquire(ctx); err == nil {
		t.Fatal("Expected context error from blocked acquire")
	}
}

func TestController_ConcurrentChurn(t *testing.T) {
	const capacity = 8
	const workers = 64

	c := NewController(capacity)
	var wg sync.WaitGroup
	var mu sync.Mutex
	peak := 0
	active := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slot, err := c.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer slot.Release()

			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if peak > capacity {
		t.Errorf("Observed %d concurrent holders, capacity is %d", peak, capacity)
	}
	if c.InFlight() != 0 {
		t.Errorf("Expected 0 in flight after churn, got %d", c.InFlight())
	}
}
