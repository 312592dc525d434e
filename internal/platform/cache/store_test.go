package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_SetGet_RespectsTTL(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	store.Set(context.Background(), "run-1", "result")

	if v, ok := store.Get(context.Background(), "run-1"); !ok || v != "result" {
		t.Fatalf("expected fresh entry, got %v ok=%t", v, ok)
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get(context.Background(), "run-1"); ok {
		t.Fatalf("expected expired entry to be gone")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set(context.Background(), "sync-run:a", 1)
	store.Set(context.Background(), "sync-run:b", 2)
	store.Set(context.Background(), "other", 3)

	store.DeletePrefix(context.Background(), "sync-run:")

	if _, ok := store.Get(context.Background(), "sync-run:a"); ok {
		t.Fatalf("expected sync-run:a removed")
	}
	if _, ok := store.Get(context.Background(), "other"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
