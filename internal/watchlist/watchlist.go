// Package watchlist tracks pinned asset identifiers. The set persists
// through the shared key-value store so pins survive restarts, and can be
// seeded from an optional YAML file.
package watchlist

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/onchainrev/terminal/internal/infra"
)

const storeKey = "pinned_ids"

// PinnedSet is a persisted set of entity identifiers. Methods are safe
// for concurrent use.
type PinnedSet struct {
	mu    sync.Mutex
	store infra.Store
	ids   map[string]struct{}
}

// Load builds a PinnedSet from whatever the store currently holds. A
// missing or unreadable entry starts the set empty.
func Load(store infra.Store) *PinnedSet {
	p := &PinnedSet{store: store, ids: make(map[string]struct{})}
	raw, ok := store.Get(storeKey)
	if !ok {
		return p
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		log.Printf("watchlist: discarding unreadable pin state: %v", err)
		return p
	}
	for _, id := range ids {
		p.ids[id] = struct{}{}
	}
	return p
}

// Toggle flips the pinned state of id and persists the set. It reports
// whether id is pinned after the call.
func (p *PinnedSet) Toggle(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.ids[id]; ok {
		delete(p.ids, id)
	} else {
		p.ids[id] = struct{}{}
	}
	p.flush()
	_, pinned := p.ids[id]
	return pinned
}

// Pinned reports whether id is in the set.
func (p *PinnedSet) Pinned(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.ids[id]
	return ok
}

// IDs returns the pinned identifiers in sorted order.
func (p *PinnedSet) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Seed adds ids that are not already pinned and persists once. Used for
// the optional YAML seed file on first run.
func (p *PinnedSet) Seed(ids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	added := false
	for _, id := range ids {
		if _, ok := p.ids[id]; !ok {
			p.ids[id] = struct{}{}
			added = true
		}
	}
	if added {
		p.flush()
	}
}

// flush persists the current set. Caller holds the lock.
func (p *PinnedSet) flush() {
	ids := make([]string, 0, len(p.ids))
	for id := range p.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	raw, err := json.Marshal(ids)
	if err != nil {
		log.Printf("watchlist: encode pin state: %v", err)
		return
	}
	if err := p.store.Set(storeKey, raw); err != nil {
		log.Printf("watchlist: persist pin state: %v", err)
	}
}

type seedFile struct {
	Watchlist []struct {
		ID string `yaml:"id"`
	} `yaml:"watchlist"`
}

// LoadSeed reads entity ids from a YAML seed file, lowercased, trimmed
// and deduplicated in file order.
func LoadSeed(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf seedFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("parse watchlist seed: %w", err)
	}

	seen := make(map[string]struct{}, len(sf.Watchlist))
	out := make([]string, 0, len(sf.Watchlist))
	for _, it := range sf.Watchlist {
		id := strings.ToLower(strings.TrimSpace(it.ID))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no entries found in watchlist seed")
	}
	return out, nil
}
