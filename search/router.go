// Package search routes a query to the catalogs serving a media type.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mcmeskajr-prog/trackall/internal/cache"
	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// ErrUnreachable is returned when nothing was found and no consulted catalog answered at all.
// A catalog that answered with zero records makes the outcome a plain empty result instead.
var ErrUnreachable = errors.New("no catalog could be reached")

// Keys are the per-session credentials.
type Keys struct {
	TMDB  string
	Proxy string
}

// Lookup queries one catalog.
type Lookup func(ctx context.Context, query string, keys Keys) ([]media.Record, error)

// Source is one link of a fallback chain.
type Source struct {
	Name   string
	Lookup Lookup
}

// Batches used for the all-types search. The first batch needs no credential.
// The second runs after it so rate limited catalogs are not hit all at once.
var (
	firstBatch  = []media.Type{media.TypeAnime, media.TypeManga, media.TypeBooks}
	secondBatch = []media.Type{media.TypeMovies, media.TypeSeries, media.TypeGames}
)

// Router owns its cache. Create one per session.
type Router struct {
	cache  *cache.Search
	chains map[media.Type][]Source

	// History, when set, is told about every executed query.
	History func(query string) error
}

// New returns a router consulting chains, in order, for each type.
func New(c *cache.Search, chains map[media.Type][]Source) *Router {
	return &Router{cache: c, chains: chains}
}

// Search returns the records matching query for type t, or for every type when t is media.TypeAll.
// Catalog failures are never returned as-is. They only surface wrapped in ErrUnreachable.
func (r *Router) Search(ctx context.Context, query string, t media.Type, keys Keys) ([]media.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []media.Record{}, nil
	}

	if r.History != nil {
		if err := r.History(query); err != nil {
			log.WithError(err).Warnf("could not remember query")
		}
	}

	if t == media.TypeAll {
		return r.everything(ctx, query, keys)
	}

	if _, ok := r.chains[t]; !ok {
		return nil, fmt.Errorf("no catalog serves %q", t)
	}

	records, answered, err := r.lookup(ctx, query, t, keys)
	if len(records) == 0 && !answered && err != nil {
		return []media.Record{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	return records, nil
}

// lookup walks the chain of t until a source returns records.
// answered reports whether at least one source ran successfully.
func (r *Router) lookup(ctx context.Context, query string, t media.Type, keys Keys) (records []media.Record, answered bool, err error) {
	if hit, ok := r.cache.Get(t, query).Get(); ok {
		return hit, true, nil
	}

	var errs []error
	for _, source := range r.chains[t] {
		found, err := source.Lookup(ctx, query, keys)
		if err != nil {
			log.With(log.Fields{"source": source.Name, "type": t}).Warnf("lookup failed: %v", err)
			errs = append(errs, err)
			continue
		}

		answered = true
		if len(found) > 0 {
			r.cache.Put(t, query, found)
			return found, true, nil
		}
	}

	return []media.Record{}, answered, errors.Join(errs...)
}

func (r *Router) everything(ctx context.Context, query string, keys Keys) ([]media.Record, error) {
	var (
		mu       sync.Mutex
		merged   []media.Record
		answered bool
		errs     []error
	)

	run := func(types []media.Type) {
		p := pool.New()
		for _, t := range types {
			p.Go(func() {
				records, ok, err := r.lookup(ctx, query, t, keys)

				mu.Lock()
				defer mu.Unlock()
				merged = append(merged, records...)
				answered = answered || ok
				if err != nil {
					errs = append(errs, err)
				}
			})
		}
		p.Wait()
	}

	run(firstBatch)
	run(lo.Filter(secondBatch, func(t media.Type, _ int) bool {
		return keys.TMDB != "" || (t != media.TypeMovies && t != media.TypeSeries)
	}))

	merged = lo.UniqBy(merged, func(record media.Record) string {
		return record.ID
	})

	if len(merged) == 0 && !answered && len(errs) > 0 {
		return merged, fmt.Errorf("%w: %w", ErrUnreachable, errors.Join(errs...))
	}

	return merged, nil
}
