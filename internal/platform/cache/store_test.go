package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Fatalf("unexpected hit for missing key")
	}

	store.Set(ctx, "k", 42)
	value, ok := store.Get(ctx, "k")
	if !ok || value.(int) != 42 {
		t.Fatalf("get: got=%v/%v want=42/true", value, ok)
	}

	store.Delete(ctx, "k")
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("key survived delete")
	}
}

func TestStore_EmptyKeyIsIgnored(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "", "value")
	if _, ok := store.Get(ctx, ""); ok {
		t.Fatalf("empty key must never hit")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	time.Sleep(30 * time.Millisecond)

	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expired entry still served")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	time.Sleep(10 * time.Millisecond)

	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatalf("zero-ttl entry expired")
	}
}

func TestGetOrLoad_LoadsOnceForConcurrentCallers(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	var loads atomic.Int32
	load := func() (any, error) {
		loads.Add(1)
		time.Sleep(5 * time.Millisecond)
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := store.GetOrLoad(ctx, "k", load)
			if err != nil {
				t.Errorf("get or load: %v", err)
				return
			}
			if value.(string) != "loaded" {
				t.Errorf("value: got=%v want=loaded", value)
			}
		}()
	}
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestGetOrLoad_ErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	calls := 0

	_, err := store.GetOrLoad(ctx, "k", func() (any, error) {
		calls++
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	value, err := store.GetOrLoad(ctx, "k", func() (any, error) {
		calls++
		return "ok", nil
	})
	if err != nil || value.(string) != "ok" {
		t.Fatalf("recovery load: got=%v/%v", value, err)
	}
	if calls != 2 {
		t.Fatalf("loader calls: got=%d want=2", calls)
	}
}
