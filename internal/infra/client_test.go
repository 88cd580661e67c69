package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(gap time.Duration) *Client {
	cfg := DefaultClientConfig()
	cfg.MinRequestGap = gap
	cfg.RetryDelay = 10 * time.Millisecond
	cfg.RateLimitDelay = 20 * time.Millisecond
	cfg.Timeout = 5 * time.Second
	return NewClient(cfg)
}

func TestFetchJSONReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := testClient(0)
	body, err := c.FetchJSON(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestThrottleEnforcesMinimumGap(t *testing.T) {
	var mu sync.Mutex
	var starts []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	gap := 50 * time.Millisecond
	c := testClient(gap)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		url := srv.URL + "/" + string(rune('a'+i))
		go func() {
			defer wg.Done()
			if _, err := c.FetchJSON(context.Background(), url); err != nil {
				t.Errorf("fetch failed: %v", err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(starts) != 3 {
		t.Fatalf("expected 3 dispatched requests, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		for j := 0; j < i; j++ {
			d := starts[i].Sub(starts[j])
			if d < 0 {
				d = -d
			}
			if d < gap-5*time.Millisecond { // scheduler slack
				t.Errorf("requests %d and %d only %v apart, want >= %v", j, i, d, gap)
			}
		}
	}
}

func TestConcurrentIdenticalRequestsDeduplicated(t *testing.T) {
	var hits int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		<-release
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := c.FetchJSON(context.Background(), srv.URL); err != nil {
			t.Errorf("first fetch failed: %v", err)
		}
	}()

	// Wait until the first request is actually in flight.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&hits) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first request never dispatched")
		}
		time.Sleep(time.Millisecond)
	}

	body, err := c.FetchJSON(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("duplicate fetch errored: %v", err)
	}
	if body != nil {
		t.Errorf("duplicate in-flight fetch should return nil body, got %s", body)
	}

	close(release)
	<-done

	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Errorf("expected exactly 1 dispatched request, got %d", n)
	}
}

func TestRetriesOnServerError(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"recovered":true}`))
	}))
	defer srv.Close()

	c := testClient(0)
	body, err := c.FetchJSON(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected recovery on third attempt, got %v", err)
	}
	if string(body) != `{"recovered":true}` {
		t.Errorf("unexpected body: %s", body)
	}
	if hits != 3 {
		t.Errorf("expected 3 attempts, got %d", hits)
	}
}

func TestSurfacesErrorAfterRetryCeiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(0)
	_, err := c.FetchJSON(context.Background(), srv.URL)
	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("expected *HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Status != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", httpErr.Status)
	}
}

func TestRateLimitBackoffThenSuccess(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(0)
	start := time.Now()
	if _, err := c.FetchJSON(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected success after backoff: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected rate-limit backoff of >= 20ms, took %v", elapsed)
	}
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	c := testClient(time.Hour) // the throttle alone would block forever
	// Burn the first slot so the next call has to wait a full gap.
	c.mu.Lock()
	c.nextSlot = time.Now().Add(time.Hour)
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.FetchJSON(ctx, "http://127.0.0.1:0/never")
	if err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}
