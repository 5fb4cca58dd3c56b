package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreSetGet(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "k", 42)
	value, ok := store.Get(ctx, "k")
	if !ok || value.(int) != 42 {
		t.Fatalf("Get = %v, %v", value, ok)
	}

	if _, ok := store.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	time.Sleep(25 * time.Millisecond)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestStoreInvalidateAll(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.InvalidateAll(ctx)

	if _, ok := store.Get(ctx, "a"); ok {
		t.Fatal("expected store to be empty")
	}
}

func TestGetOrLoadCoalescesConcurrentLoads(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "loaded", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := store.GetOrLoad(ctx, "k", loader)
			if err != nil || value.(string) != "loaded" {
				t.Errorf("GetOrLoad = %v, %v", value, err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	fail := true
	loader := func(context.Context) (any, error) {
		if fail {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(ctx, "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	fail = false
	value, err := store.GetOrLoad(ctx, "k", loader)
	if err != nil || value.(string) != "ok" {
		t.Fatalf("retry = %v, %v", value, err)
	}
}
