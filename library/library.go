// Package library keeps a user's tracked entries and favorites and reports every change for remote persistence.
package library

import (
	"encoding/json"
	"errors"
	"maps"
	"math"
	"sync"
	"time"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// FavoritesCapacity bounds the favorites list.
const FavoritesCapacity = 5

// MaxRating is the top of the user rating scale. Zero means unrated.
const MaxRating = 10

var ErrFavoritesFull = errors.New("favorites list is full")

// ValidRating reports whether rating can be stored. NaN and infinities cannot be serialized.
func ValidRating(rating float64) bool {
	return !math.IsNaN(rating) && !math.IsInf(rating, 0)
}

// Store is the local map of one owner. It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	entries   map[string]media.Entry
	favorites []media.Favorite
	scheduler Scheduler

	now func() time.Time
}

// New returns an empty store reporting its changes to scheduler, which may be nil.
func New(scheduler Scheduler) *Store {
	return &Store{
		entries:   make(map[string]media.Entry),
		favorites: []media.Favorite{},
		scheduler: scheduler,
		now:       time.Now,
	}
}

// Load replaces the state with what storage returned. Nothing is scheduled.
func (s *Store) Load(entries []media.Entry, favorites []media.Favorite) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = lo.SliceToMap(entries, func(e media.Entry) (string, media.Entry) {
		return e.ID, e
	})

	favorites = lo.UniqBy(favorites, func(f media.Favorite) string { return f.ID })
	if len(favorites) > FavoritesCapacity {
		favorites = favorites[:FavoritesCapacity]
	}
	s.favorites = append([]media.Favorite{}, favorites...)
}

// mutate applies fn to a copy of the map and, when fn reports a change, swaps it in and schedules the diff.
// Scheduling happens under the lock so changes reach the scheduler in mutation order.
func (s *Store) mutate(fn func(next map[string]media.Entry) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.entries
	next := maps.Clone(prev)
	if !fn(next) {
		return false
	}
	s.entries = next

	s.schedule(Diff(prev, next))
	return true
}

func (s *Store) schedule(changes []Change) {
	if s.scheduler == nil || len(changes) == 0 {
		return
	}
	s.scheduler.Schedule(changes)
}

// Add tracks record. It is a no-op returning false when the id is already present
// or the rating is not a finite number.
// An empty status defaults to planned and the rating is clamped to 0..MaxRating.
func (s *Store) Add(record media.Record, status media.Status, rating float64) bool {
	if !ValidRating(rating) {
		log.With(log.Fields{"id": record.ID}).Warnf("refusing rating %v", rating)
		return false
	}
	if status == "" {
		status = media.StatusPlanned
	}

	return s.mutate(func(next map[string]media.Entry) bool {
		if _, ok := next[record.ID]; ok {
			return false
		}

		next[record.ID] = media.Entry{
			Record:     record,
			UserStatus: status,
			UserRating: lo.Clamp(rating, 0, MaxRating),
			AddedAt:    s.now().UnixMilli(),
		}

		log.With(log.Fields{"id": record.ID}).Infof("added to library")
		return true
	})
}

// Remove untracks id.
func (s *Store) Remove(id string) bool {
	return s.mutate(func(next map[string]media.Entry) bool {
		if _, ok := next[id]; !ok {
			return false
		}
		delete(next, id)
		return true
	})
}

// update replaces one entry through fn, leaving everything fn does not touch.
func (s *Store) update(id string, fn func(*media.Entry)) bool {
	return s.mutate(func(next map[string]media.Entry) bool {
		entry, ok := next[id]
		if !ok {
			return false
		}
		fn(&entry)
		next[id] = entry
		return true
	})
}

func (s *Store) SetStatus(id string, status media.Status) bool {
	return s.update(id, func(e *media.Entry) { e.UserStatus = status })
}

// SetRating clamps rating to 0..MaxRating. Zero clears it. Non-finite ratings are refused.
func (s *Store) SetRating(id string, rating float64) bool {
	if !ValidRating(rating) {
		log.With(log.Fields{"id": id}).Warnf("refusing rating %v", rating)
		return false
	}
	return s.update(id, func(e *media.Entry) { e.UserRating = lo.Clamp(rating, 0, MaxRating) })
}

// SetCover sets the user's cover override. An empty url restores the catalog cover.
func (s *Store) SetCover(id, url string) bool {
	return s.update(id, func(e *media.Entry) { e.CustomCover = url })
}

// ToggleFavorite removes record from the favorites when present and adds it otherwise.
// Adding past FavoritesCapacity fails with ErrFavoritesFull and leaves the list unchanged.
func (s *Store) ToggleFavorite(record media.Record) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, index, found := lo.FindIndexOf(s.favorites, func(f media.Favorite) bool {
		return f.ID == record.ID
	})

	switch {
	case found:
		s.favorites = append(append([]media.Favorite{}, s.favorites[:index]...), s.favorites[index+1:]...)
	case len(s.favorites) >= FavoritesCapacity:
		return false, ErrFavoritesFull
	default:
		s.favorites = append(append([]media.Favorite{}, s.favorites...), record.Favorite())
		added = true
	}

	value, err := json.Marshal(s.favorites)
	if err != nil {
		return added, err
	}

	s.schedule([]Change{{Kind: ChangeFavorites, Value: value}})
	return added, nil
}

// Get returns the entry tracked under id.
func (s *Store) Get(id string) mo.Option[media.Entry] {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	return mo.TupleToOption(entry, ok)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns a copy of every entry in no particular order.
func (s *Store) Entries() []media.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Values(s.entries)
}

// Favorites returns a copy of the favorites list.
func (s *Store) Favorites() []media.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]media.Favorite{}, s.favorites...)
}
