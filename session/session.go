// Package session wires storage, the write queue, the library and the catalogs for one owner.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/mcmeskajr-prog/trackall/auth"
	"github.com/mcmeskajr-prog/trackall/internal/sync"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/library"
	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/query"
	"github.com/mcmeskajr-prog/trackall/search"
	"github.com/mcmeskajr-prog/trackall/storage"
	"github.com/mcmeskajr-prog/trackall/storage/bolt"
	"github.com/mcmeskajr-prog/trackall/storage/sqlite"
	"github.com/mcmeskajr-prog/trackall/trending"
	"github.com/mcmeskajr-prog/trackall/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// CloseTimeout bounds the final flush.
const CloseTimeout = 5 * time.Second

// secretKeys maps a keyring secret to the storage key it is mirrored under.
var secretKeys = map[string]string{
	auth.TMDB:  storage.KeyTMDB,
	auth.Proxy: storage.KeyProxy,
}

// configKeys maps a keyring secret to the config key that overrides it.
var configKeys = map[string]string{
	auth.TMDB:  key.TMDBKey,
	auth.Proxy: key.ProxyURL,
}

// Session is everything a command needs. Close it when done.
type Session struct {
	Owner    string
	Store    storage.Store
	Queue    *sync.Queue
	Library  *library.Store
	Router   *search.Router
	Trending *trending.Fetcher

	mu     stdsync.Mutex
	stored map[string]string

	stop context.CancelFunc
	done chan struct{}
}

// Open builds a session from the configuration and starts delivering queued writes.
func Open(ctx context.Context) (*Session, error) {
	owner, err := Owner()
	if err != nil {
		return nil, fmt.Errorf("resolve owner: %w", err)
	}

	local, err := bolt.Open(where.Database())
	if err != nil {
		return nil, err
	}

	store := &storage.Fallback{Local: local}
	if dsn := viper.GetString(key.StorageRemote); dsn != "" {
		remote, err := sqlite.Open(dsn)
		if err != nil {
			_ = local.Close()
			return nil, err
		}
		store.Primary = remote
	}

	catalogs := search.DefaultCatalogs()
	router := search.Default()
	router.History = func(q string) error {
		return query.Remember(q, 1)
	}

	s := New(ctx, owner, store, router, trending.New(catalogs.AniList, catalogs.TMDB, catalogs.IGDB))
	if err := s.Queue.Load(); err != nil {
		log.WithError(err).Warnf("could not restore queued writes")
	}

	return s, nil
}

// New assembles a session over the given parts and starts the queue.
func New(ctx context.Context, owner string, store storage.Store, router *search.Router, fetcher *trending.Fetcher) *Session {
	queue := sync.New(store)

	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		Owner:    owner,
		Store:    store,
		Queue:    queue,
		Library:  library.New(sync.Scheduler{Queue: queue, Owner: owner}),
		Router:   router,
		Trending: fetcher,
		stored:   make(map[string]string),
		stop:     stop,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		queue.Run(runCtx)
	}()

	return s
}

// Load pulls the library, the favorites and the stored keys of the owner.
// Writes still waiting in the queue are newer than storage and win over it.
func (s *Session) Load(ctx context.Context) error {
	pending := lo.Filter(s.Queue.Settled(), func(t sync.Task, _ int) bool {
		return t.Owner == s.Owner
	})

	entries, err := s.entries(ctx)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}
	entries = overlay(entries, pending)

	var favorites []media.Favorite
	raw, err := s.lookup(ctx, pending, storage.KeyFavorites)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	if value, ok := raw.Get(); ok {
		if err := json.Unmarshal([]byte(value), &favorites); err != nil {
			log.WithError(err).Warnf("ignoring unreadable favorites")
		}
	}

	s.Library.Load(entries, favorites)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range secretKeys {
		value, err := s.lookup(ctx, pending, k)
		if err != nil {
			return fmt.Errorf("load %s: %w", k, err)
		}
		if v, ok := value.Get(); ok {
			s.stored[k] = v
		}
	}

	return nil
}

// lookup reads a value of the owner, preferring a queued write of it.
func (s *Session) lookup(ctx context.Context, pending []sync.Task, k string) (mo.Option[string], error) {
	task, ok := lo.Find(pending, func(t sync.Task) bool {
		return t.Scope == sync.ScopeKV && t.Key == k
	})
	switch {
	case !ok:
		return storage.Lookup(ctx, s.Store, k, s.Owner)
	case task.Op == sync.OpDelete:
		return mo.None[string](), nil
	default:
		return mo.Some(task.Value), nil
	}
}

// overlay applies queued library writes to the stored entries.
func overlay(entries []media.Entry, pending []sync.Task) []media.Entry {
	writes := lo.Filter(pending, func(t sync.Task, _ int) bool {
		return t.Scope == sync.ScopeLibrary
	})
	if len(writes) == 0 {
		return entries
	}

	byID := lo.KeyBy(entries, func(e media.Entry) string { return e.ID })
	for _, task := range writes {
		if task.Op == sync.OpDelete {
			delete(byID, task.Key)
			continue
		}

		var entry media.Entry
		if err := json.Unmarshal([]byte(task.Value), &entry); err != nil {
			log.With(log.Fields{"id": task.Key}).WithError(err).Warnf("skipping unreadable queued entry")
			continue
		}
		entry.ID = task.Key
		byID[task.Key] = entry
	}

	return lo.Values(byID)
}

// entries reads the library rows. Profiles that kept their whole library as one
// value under KeyLibrary are read from there when no rows exist yet.
func (s *Session) entries(ctx context.Context) ([]media.Entry, error) {
	rows, err := s.Store.Entries(ctx, s.Owner)
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		return lo.FilterMap(rows, func(row storage.Row, _ int) (media.Entry, bool) {
			var entry media.Entry
			if err := json.Unmarshal(row.Data, &entry); err != nil {
				log.With(log.Fields{"id": row.ID}).WithError(err).Warnf("skipping unreadable entry")
				return entry, false
			}
			return entry, true
		}), nil
	}

	blob, err := storage.Lookup(ctx, s.Store, storage.KeyLibrary, s.Owner)
	if err != nil {
		return nil, err
	}

	value, ok := blob.Get()
	if !ok {
		return []media.Entry{}, nil
	}

	var legacy map[string]media.Entry
	if err := json.Unmarshal([]byte(value), &legacy); err != nil {
		return nil, fmt.Errorf("decode %s: %w", storage.KeyLibrary, err)
	}

	return lo.MapToSlice(legacy, func(id string, entry media.Entry) media.Entry {
		entry.ID = id
		return entry
	}), nil
}

// Keys resolves credentials from the config, then the keyring, then storage.
func (s *Session) Keys() search.Keys {
	return search.Keys{
		TMDB:  s.Key(auth.TMDB),
		Proxy: s.Key(auth.Proxy),
	}
}

// Key resolves one secret, see Keys.
func (s *Session) Key(name string) string {
	if v := viper.GetString(configKeys[name]); v != "" {
		return v
	}

	if v, ok := auth.Get(name).Get(); ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored[secretKeys[name]]
}

// SetKey stores a secret for the owner in storage so other devices see it.
func (s *Session) SetKey(name, value string) error {
	k, ok := secretKeys[name]
	if !ok {
		return fmt.Errorf("unknown secret %q", name)
	}

	if err := s.Queue.Enqueue(sync.Task{Owner: s.Owner, Scope: sync.ScopeKV, Key: k, Op: sync.OpSet, Value: value}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored[k] = value
	return nil
}

// Close stops the queue, delivers what it can within CloseTimeout,
// snapshots the rest and closes storage.
func (s *Session) Close(ctx context.Context) error {
	s.stop()
	<-s.done

	ctx, cancel := context.WithTimeout(ctx, CloseTimeout)
	defer cancel()

	var errs []error
	if err := s.Queue.Flush(ctx); err != nil {
		log.WithError(err).Warnf("%d writes left for the next run", s.Queue.Len())
	}

	errs = append(errs, s.Queue.Save(), s.Store.Close())
	return errors.Join(errs...)
}
