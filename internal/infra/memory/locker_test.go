package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLockerSerialisesSameKey(t *testing.T) {
	locker := NewLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "badge:u1:c1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
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

	if maxInside != 1 {
		t.Fatalf("expected exclusive access, saw %d holders", maxInside)
	}
	if len(locker.slots) != 0 {
		t.Fatalf("expected idle keys to be released, got %d", len(locker.slots))
	}
}

func TestLockerHonoursContext(t *testing.T) {
	locker := NewLocker()
	unlock, err := locker.Lock(context.Background(), "certificates:syl-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, "certificates:syl-1"); err == nil {
		t.Fatalf("expected timeout while key is held")
	}

	other, err := locker.Lock(context.Background(), "certificates:syl-2")
	if err != nil {
		t.Fatalf("expected other keys to stay free: %v", err)
	}
	other()
	other()
}
