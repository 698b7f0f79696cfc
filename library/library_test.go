package library

import (
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]Change
}

func (r *recorder) Schedule(changes []Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, changes)
}

func (r *recorder) all() []Change {
	return lo.Flatten(r.batches)
}

func newStore() (*Store, *recorder, *time.Time) {
	rec := &recorder{}
	store := New(rec)
	clock := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time { return clock }
	return store, rec, &clock
}

var (
	frieren = media.Record{ID: "al-anime-154587", Title: "Frieren: Beyond Journey's End", Type: media.TypeAnime, Cover: "c"}
	dune    = media.Record{ID: "tmdb-filmes-438631", Title: "Dune", Type: media.TypeMovies}
)

func TestMutations(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store, rec, clock := newStore()

		Convey("Add inserts once", func() {
			So(store.Add(frieren, media.StatusInProgress, 0), ShouldBeTrue)
			So(store.Add(frieren, media.StatusCompleted, 9), ShouldBeFalse)
			So(store.Len(), ShouldEqual, 1)

			entry := store.Get(frieren.ID).MustGet()
			So(entry.UserStatus, ShouldEqual, media.StatusInProgress)
			So(entry.AddedAt, ShouldEqual, clock.UnixMilli())
			So(rec.batches, ShouldHaveLength, 1)
		})

		Convey("Add defaults the status and clamps the rating", func() {
			store.Add(dune, "", 42)
			entry := store.Get(dune.ID).MustGet()
			So(entry.UserStatus, ShouldEqual, media.StatusPlanned)
			So(entry.UserRating, ShouldEqual, MaxRating)
		})

		Convey("Setters on a missing id are no-ops", func() {
			So(store.SetStatus("nope", media.StatusDropped), ShouldBeFalse)
			So(store.SetRating("nope", 3), ShouldBeFalse)
			So(store.SetCover("nope", "x"), ShouldBeFalse)
			So(store.Remove("nope"), ShouldBeFalse)
			So(rec.batches, ShouldBeEmpty)
		})

		Convey("Setters replace only their field", func() {
			store.Add(frieren, media.StatusPlanned, 0)
			*clock = clock.Add(time.Hour)

			So(store.SetStatus(frieren.ID, media.StatusCompleted), ShouldBeTrue)
			So(store.SetRating(frieren.ID, 9.5), ShouldBeTrue)
			So(store.SetCover(frieren.ID, "mine"), ShouldBeTrue)

			entry := store.Get(frieren.ID).MustGet()
			So(entry.UserStatus, ShouldEqual, media.StatusCompleted)
			So(entry.UserRating, ShouldEqual, 9.5)
			So(entry.DisplayCover(), ShouldEqual, "mine")
			So(entry.Title, ShouldEqual, frieren.Title)
			So(entry.AddedAt, ShouldEqual, clock.Add(-time.Hour).UnixMilli())
		})

		Convey("Re-adding after removal gets a fresh addedAt", func() {
			store.Add(frieren, media.StatusPlanned, 0)
			first := store.Get(frieren.ID).MustGet().AddedAt

			store.Remove(frieren.ID)
			*clock = clock.Add(time.Minute)
			store.Add(frieren, media.StatusPlanned, 0)

			So(store.Get(frieren.ID).MustGet().AddedAt, ShouldBeGreaterThan, first)
		})

		Convey("Add, rate then remove leaves exactly one delete as the final change", func() {
			store.Add(frieren, media.StatusInProgress, 0)
			store.SetRating(frieren.ID, 8)
			store.Remove(frieren.ID)

			changes := rec.all()
			So(changes, ShouldHaveLength, 3)
			So(changes[0].Kind, ShouldEqual, ChangeUpsert)
			So(changes[1].Kind, ShouldEqual, ChangeUpsert)

			var rated media.Entry
			So(json.Unmarshal(changes[1].Value, &rated), ShouldBeNil)
			So(rated.UserRating, ShouldEqual, 8)

			deletes := lo.Filter(changes, func(c Change, _ int) bool { return c.Kind == ChangeDelete })
			So(deletes, ShouldHaveLength, 1)
			So(deletes[0].ID, ShouldEqual, frieren.ID)
			So(changes[2], ShouldResemble, deletes[0])
		})

		Convey("Non-finite ratings are refused", func() {
			So(ValidRating(7.5), ShouldBeTrue)
			So(ValidRating(math.NaN()), ShouldBeFalse)
			So(ValidRating(math.Inf(-1)), ShouldBeFalse)

			So(store.Add(frieren, media.StatusPlanned, math.NaN()), ShouldBeFalse)
			So(store.Len(), ShouldEqual, 0)
			So(rec.batches, ShouldBeEmpty)

			So(store.Add(frieren, media.StatusPlanned, 6), ShouldBeTrue)
			So(store.SetRating(frieren.ID, math.NaN()), ShouldBeFalse)
			So(store.SetRating(frieren.ID, math.Inf(1)), ShouldBeFalse)
			So(store.Get(frieren.ID).MustGet().UserRating, ShouldEqual, 6)
			So(rec.batches, ShouldHaveLength, 1)
		})

		Convey("Load replaces state without scheduling", func() {
			store.Load([]media.Entry{{Record: dune, UserStatus: media.StatusCompleted}}, nil)
			So(store.Len(), ShouldEqual, 1)
			So(rec.batches, ShouldBeEmpty)
		})
	})
}

func TestFavorites(t *testing.T) {
	Convey("Given an empty store", t, func() {
		store, rec, _ := newStore()

		records := lo.Times(6, func(i int) media.Record {
			return media.Record{ID: media.ID("test", i), Title: "T"}
		})

		Convey("Five favorites fit and the sixth is refused", func() {
			for _, r := range records[:5] {
				added, err := store.ToggleFavorite(r)
				So(err, ShouldBeNil)
				So(added, ShouldBeTrue)
			}

			added, err := store.ToggleFavorite(records[5])
			So(err, ShouldEqual, ErrFavoritesFull)
			So(added, ShouldBeFalse)
			So(store.Favorites(), ShouldHaveLength, 5)
			So(rec.batches, ShouldHaveLength, 5)

			Convey("Removal is always allowed", func() {
				added, err := store.ToggleFavorite(records[0])
				So(err, ShouldBeNil)
				So(added, ShouldBeFalse)
				So(store.Favorites(), ShouldHaveLength, 4)

				last := rec.all()[len(rec.all())-1]
				So(last.Kind, ShouldEqual, ChangeFavorites)

				var list []media.Favorite
				So(json.Unmarshal(last.Value, &list), ShouldBeNil)
				So(list, ShouldHaveLength, 4)
			})
		})

		Convey("Favorites are independent of the library", func() {
			_, _ = store.ToggleFavorite(frieren)
			So(store.Len(), ShouldEqual, 0)
		})
	})
}

func TestDiff(t *testing.T) {
	Convey("Diff", t, func() {
		a := media.Entry{Record: frieren, UserStatus: media.StatusPlanned}
		b := media.Entry{Record: dune, UserStatus: media.StatusPlanned}

		Convey("Identical maps produce nothing", func() {
			m := map[string]media.Entry{a.ID: a}
			So(Diff(m, map[string]media.Entry{a.ID: a}), ShouldBeEmpty)
		})

		Convey("Changes are sorted by id", func() {
			changed := a
			changed.UserRating = 7

			changes := Diff(
				map[string]media.Entry{a.ID: a, b.ID: b},
				map[string]media.Entry{a.ID: changed},
			)
			So(changes, ShouldHaveLength, 2)
			So(changes[0].ID, ShouldEqual, a.ID)
			So(changes[0].Kind, ShouldEqual, ChangeUpsert)
			So(changes[1].ID, ShouldEqual, b.ID)
			So(changes[1].Kind, ShouldEqual, ChangeDelete)
		})

		Convey("Unserializable entries are skipped", func() {
			broken := b
			broken.UserRating = math.NaN()

			changes := Diff(nil, map[string]media.Entry{a.ID: a, b.ID: broken})
			So(changes, ShouldHaveLength, 1)
			So(changes[0].ID, ShouldEqual, a.ID)
		})
	})
}

func TestViews(t *testing.T) {
	Convey("Given a populated store", t, func() {
		store, _, clock := newStore()
		store.Add(frieren, media.StatusCompleted, 10)
		*clock = clock.Add(time.Minute)
		store.Add(dune, media.StatusPlanned, 7)
		*clock = clock.Add(time.Minute)
		store.Add(media.Record{ID: "ol--works-OL1W", Title: "The Dispossessed", Type: media.TypeBooks}, media.StatusPlanned, 0)

		Convey("Sorted by added puts the newest first", func() {
			So(store.Sorted(SortAdded)[0].ID, ShouldEqual, "ol--works-OL1W")
		})

		Convey("Sorted by rating puts the highest first", func() {
			So(store.Sorted(SortRating)[0].ID, ShouldEqual, frieren.ID)
		})

		Convey("Filter narrows by status and type", func() {
			So(store.Filter(media.StatusPlanned, media.TypeAll), ShouldHaveLength, 2)
			So(store.Filter(media.StatusPlanned, media.TypeMovies), ShouldHaveLength, 1)
			So(store.Filter("", ""), ShouldHaveLength, 3)
		})

		Convey("Stats counts every status", func() {
			stats := store.Stats()
			So(stats[media.StatusPlanned], ShouldEqual, 2)
			So(stats[media.StatusCompleted], ShouldEqual, 1)
			So(stats, ShouldContainKey, media.StatusPaused)
		})

		Convey("Match accepts ids and near titles", func() {
			So(store.Match(dune.ID).MustGet().ID, ShouldEqual, dune.ID)
			So(store.Match("frieren beyond journeys end").MustGet().ID, ShouldEqual, frieren.ID)
			So(store.Match("zzzz").IsAbsent(), ShouldBeTrue)
		})

		Convey("Fuzzy ranks matching titles", func() {
			found := store.Fuzzy("dsp")
			So(found, ShouldHaveLength, 1)
			So(found[0].Title, ShouldEqual, "The Dispossessed")
		})
	})
}
