package infra

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestGetAfterSetIsNeverStale(t *testing.T) {
	c := NewSWRCache(NewMemStore())
	at := time.Unix(1700000000, 0)
	c.now = func() time.Time { return at }

	if err := c.Set("markets", json.RawMessage(`[1,2,3]`)); err != nil {
		t.Fatal(err)
	}
	data, stale, ok := c.Get("markets", time.Minute)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if stale {
		t.Error("entry must be fresh immediately after set")
	}
	if string(data) != `[1,2,3]` {
		t.Errorf("unexpected payload: %s", data)
	}
}

func TestStalenessMatchesThreshold(t *testing.T) {
	c := NewSWRCache(NewMemStore())
	at := time.Unix(1700000000, 0)
	c.now = func() time.Time { return at }
	if err := c.Set("k", json.RawMessage(`{}`)); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		age   time.Duration
		stale bool
	}{
		{0, false},
		{59 * time.Second, false},
		{60 * time.Second, true}, // boundary: age >= threshold is stale
		{24 * time.Hour, true},
	}
	for _, tc := range cases {
		c.now = func() time.Time { return at.Add(tc.age) }
		_, stale, ok := c.Get("k", time.Minute)
		if !ok {
			t.Fatalf("age %v: lost entry", tc.age)
		}
		if stale != tc.stale {
			t.Errorf("age %v: stale = %v, want %v", tc.age, stale, tc.stale)
		}
	}
}

func TestGetMissingKey(t *testing.T) {
	c := NewSWRCache(NewMemStore())
	if _, _, ok := c.Get("nope", time.Minute); ok {
		t.Error("expected miss for absent key")
	}
}

func TestRefreshSuccessUpdatesAndNotifies(t *testing.T) {
	c := NewSWRCache(NewMemStore())

	updated := make(chan json.RawMessage, 1)
	c.Refresh("k",
		func() (json.RawMessage, error) { return json.RawMessage(`"new"`), nil },
		func(d json.RawMessage) { updated <- d })

	select {
	case d := <-updated:
		if string(d) != `"new"` {
			t.Errorf("onUpdate payload = %s", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onUpdate never fired")
	}

	data, _, ok := c.Get("k", time.Minute)
	if !ok || string(data) != `"new"` {
		t.Errorf("cache not updated, got ok=%v data=%s", ok, data)
	}
}

func TestRefreshFailureLeavesEntryUntouched(t *testing.T) {
	c := NewSWRCache(NewMemStore())
	if err := c.Set("k", json.RawMessage(`"old"`)); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	c.Refresh("k",
		func() (json.RawMessage, error) { defer close(done); return nil, errors.New("boom") },
		func(json.RawMessage) { t.Error("onUpdate must not fire on failure") })
	<-done
	time.Sleep(10 * time.Millisecond) // let any erroneous update land

	data, _, ok := c.Get("k", time.Minute)
	if !ok || string(data) != `"old"` {
		t.Errorf("stale entry should stand, got ok=%v data=%s", ok, data)
	}
}

func TestRefreshSkipsDeduplicatedFetch(t *testing.T) {
	c := NewSWRCache(NewMemStore())
	done := make(chan struct{})
	c.Refresh("k",
		func() (json.RawMessage, error) { defer close(done); return nil, nil },
		func(json.RawMessage) { t.Error("onUpdate must not fire for a deduplicated fetch") })
	<-done
	time.Sleep(10 * time.Millisecond)

	if _, _, ok := c.Get("k", time.Minute); ok {
		t.Error("nothing should have been cached")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "store.json")

	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("pins", []byte(`["bitcoin","solana"]`)); err != nil {
		t.Fatal(err)
	}

	// Simulate a reload: reopen from disk.
	s2, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := s2.Get("pins")
	if !ok {
		t.Fatal("expected key to survive reopen")
	}
	if string(v) != `["bitcoin","solana"]` {
		t.Errorf("unexpected value after reopen: %s", v)
	}
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k", []byte(`{broken`)); err == nil {
		t.Error("expected error for invalid JSON value")
	}
}
