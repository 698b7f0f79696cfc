// Package cache holds search result sets for the lifetime of a session.
package cache

import (
	"strings"
	"sync"

	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/samber/mo"
)

// DefaultCapacity is the number of distinct keys kept before eviction starts.
const DefaultCapacity = 50

// Search maps (type, query) to the records last returned for it.
// When full, inserting a new key evicts the oldest inserted key. Reads do not refresh a key.
type Search struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]media.Record
	order    []string
}

// New returns an empty cache. A non-positive capacity selects DefaultCapacity.
func New(capacity int) *Search {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Search{
		capacity: capacity,
		entries:  make(map[string][]media.Record, capacity),
	}
}

// Key normalizes the query so that case and surrounding whitespace do not matter.
func Key(t media.Type, query string) string {
	return string(t) + "::" + strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached records for (t, query).
func (s *Search) Get(t media.Type, query string) mo.Option[[]media.Record] {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.entries[Key(t, query)]
	if !ok {
		return mo.None[[]media.Record]()
	}
	return mo.Some(records)
}

// Put stores records for (t, query). Empty result sets are ignored.
// Replacing an existing key keeps its original insertion position.
func (s *Search) Put(t media.Type, query string, records []media.Record) {
	if len(records) == 0 {
		return
	}

	key := Key(t, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.entries[key] = records
		return
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}

	s.entries[key] = records
	s.order = append(s.order, key)
}

// Len returns the number of cached keys.
func (s *Search) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
