package infra

import (
	"encoding/json"
	"log"
	"time"
)

// swrEntry is the persisted shape of one cached snapshot.
type swrEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
}

// SWRCache is a stale-while-revalidate cache over a Store. Cached data is
// always served when present; staleness only decides whether a background
// refresh is due. Entries are overwritten on each successful refresh, no
// eviction.
type SWRCache struct {
	store Store
	now   func() time.Time
}

// NewSWRCache wraps the given store.
func NewSWRCache(store Store) *SWRCache {
	return &SWRCache{store: store, now: time.Now}
}

// Get returns the cached payload for key, whether it has exceeded the
// freshness threshold, and whether an entry exists at all.
func (c *SWRCache) Get(key string, threshold time.Duration) (data json.RawMessage, stale, ok bool) {
	raw, ok := c.store.Get(key)
	if !ok {
		return nil, true, false
	}
	var e swrEntry
	if err := json.Unmarshal(raw, &e); err != nil || len(e.Data) == 0 {
		return nil, true, false
	}
	age := c.now().UnixMilli() - e.Timestamp
	return e.Data, age >= threshold.Milliseconds(), true
}

// Set stores data under key stamped with the current time.
func (c *SWRCache) Set(key string, data json.RawMessage) error {
	b, err := json.Marshal(swrEntry{Data: data, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return err
	}
	return c.store.Set(key, b)
}

// Refresh invokes fetch in the background. On success the entry is
// rewritten and onUpdate receives the new payload; on failure (or when the
// fetch was de-duplicated and returned nothing) the existing entry stands
// and onUpdate is not called.
func (c *SWRCache) Refresh(key string, fetch func() (json.RawMessage, error), onUpdate func(json.RawMessage)) {
	go func() {
		data, err := fetch()
		if err != nil {
			log.Printf("[cache] refresh %s failed: %v", key, err)
			return
		}
		if data == nil {
			return // identical request already in flight
		}
		if err := c.Set(key, data); err != nil {
			log.Printf("[cache] persist %s failed: %v", key, err)
			return
		}
		if onUpdate != nil {
			onUpdate(data)
		}
	}()
}
