// Package trending pages through the popular lists of a subset of catalogs.
package trending

import (
	"context"
	"math/rand"
	"sync"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/provider/anilist"
	"github.com/mcmeskajr-prog/trackall/provider/igdb"
	"github.com/mcmeskajr-prog/trackall/provider/tmdb"
	"github.com/mcmeskajr-prog/trackall/search"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// Board holds the trending list of each class.
type Board map[media.Type][]media.Record

// Page fetches one page of a class.
type Page func(ctx context.Context, keys search.Keys) ([]media.Record, error)

// Class is a trending list and the pages it is made of.
type Class struct {
	Type  media.Type
	Pages []Page
}

// Fetcher has no state besides its classes. Errors are logged and never returned.
type Fetcher struct {
	// Stages run one after another. Classes inside a stage run together.
	Stages [][]Class

	// Shuffle reorders a flattened class.
	Shuffle func([]media.Record) []media.Record
}

// New returns a fetcher over the production adapters.
func New(al *anilist.Client, tm *tmdb.Client, ig *igdb.Client) *Fetcher {
	return &Fetcher{
		Stages:  Stages(al, tm, ig, rand.Intn(100)),
		Shuffle: func(records []media.Record) []media.Record {
			return lo.Shuffle(records)
		},
	}
}

// Stages returns anime, then manga, then movies, series and games together.
// gamesOffset is the second page offset of the games class.
func Stages(al *anilist.Client, tm *tmdb.Client, ig *igdb.Client, gamesOffset int) [][]Class {
	aniList := func(format anilist.Format, t media.Type, pages ...int) Class {
		return Class{Type: t, Pages: lo.Map(pages, func(page int, _ int) Page {
			return func(ctx context.Context, _ search.Keys) ([]media.Record, error) {
				return al.Trending(ctx, format, t, page)
			}
		})}
	}

	tmdbClass := func(t media.Type) Class {
		return Class{Type: t, Pages: lo.Map([]int{1, 2, 3}, func(page int, _ int) Page {
			return func(ctx context.Context, keys search.Keys) ([]media.Record, error) {
				return tm.Trending(ctx, t, keys.TMDB, page)
			}
		})}
	}

	games := Class{Type: media.TypeGames, Pages: lo.Map([]int{0, gamesOffset}, func(offset int, _ int) Page {
		return func(ctx context.Context, keys search.Keys) ([]media.Record, error) {
			return ig.Top(ctx, keys.Proxy, offset)
		}
	})}

	return [][]Class{
		{aniList(anilist.Anime, media.TypeAnime, 1, 2)},
		{aniList(anilist.Manga, media.TypeManga, 1, 2)},
		{tmdbClass(media.TypeMovies), tmdbClass(media.TypeSeries), games},
	}
}

// Fetch builds the board. A failing page contributes nothing and a failing class is empty.
func (f *Fetcher) Fetch(ctx context.Context, keys search.Keys) Board {
	var (
		mu    sync.Mutex
		board = make(Board)
	)

	for _, stage := range f.Stages {
		p := pool.New()
		for _, class := range stage {
			p.Go(func() {
				records := f.class(ctx, class, keys)

				mu.Lock()
				defer mu.Unlock()
				board[class.Type] = records
			})
		}
		p.Wait()
	}

	return board
}

func (f *Fetcher) class(ctx context.Context, class Class, keys search.Keys) []media.Record {
	p := pool.NewWithResults[[]media.Record]()
	for _, page := range class.Pages {
		p.Go(func() []media.Record {
			records, err := page(ctx, keys)
			if err != nil {
				log.With(log.Fields{"type": class.Type}).Warnf("trending page failed: %v", err)
				return nil
			}
			return records
		})
	}

	records := lo.Filter(lo.Flatten(p.Wait()), func(r media.Record, _ int) bool {
		return r.Cover != "" || r.CoverFallback != ""
	})

	if f.Shuffle != nil {
		records = f.Shuffle(records)
	}

	return records
}
