package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetOrFetchCaches(t *testing.T) {
	c := NewTTL[int]("test-caches", 10, time.Minute)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	for i := 0; i < 5; i++ {
		v, err := c.GetOrFetch(context.Background(), "key", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch returned error: %v", err)
		}
		if v != 42 {
			t.Errorf("Expected 42, got %d", v)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 fetch for 5 gets, got %d", got)
	}
}

func TestGetOrFetchExpiry(t *testing.T) {
	c := NewTTL[int]("test-expiry", 10, 20*time.Millisecond)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 1, nil
	}

	if _, err := c.GetOrFetch(context.Background(), "key", fetch); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := c.GetOrFetch(context.Background(), "key", fetch); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("Expected refetch after TTL expiry, got %d fetches", got)
	}
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	c := NewTTL[int]("test-errors", 10, time.Minute)

	var calls atomic.Int32
	failing := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, errors.New("upstream down")
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrFetch(context.Background(), "key", failing); err == nil {
			t.Fatal("Expected error from failing fetch")
		}
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("Errors must not be cached; expected 3 fetch attempts, got %d", got)
	}
}

func TestGetOrFetchSingleFlight(t *testing.T) {
	c := NewTTL[int]("test-singleflight", 10, time.Minute)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	slowFetch := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 7, nil
	}

	const goroutines = 8
	var wg sync.WaitGroup
	results := make([]int, goroutines)
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFetch(context.Background(), "key", slowFetch)
		}(i)
	}

	// Let the first fetch start, give the rest time to pile in behind it,
	// then release.
	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d got error: %v", i, errs[i])
		}
		if results[i] != 7 {
			t.Errorf("goroutine %d got %d, want 7", i, results[i])
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected concurrent misses to collapse into 1 fetch, got %d", got)
	}
}

func TestRemove(t *testing.T) {
	c := NewTTL[string]("test-remove", 10, time.Minute)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "v", nil
	}

	if _, err := c.GetOrFetch(context.Background(), "key", fetch); err != nil {
		t.Fatal(err)
	}
	c.Remove("key")
	if _, err := c.GetOrFetch(context.Background(), "key", fetch); err != nil {
		t.Fatal(err)
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("Expected refetch after Remove, got %d fetches", got)
	}
}
