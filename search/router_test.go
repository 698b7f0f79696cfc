package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mcmeskajr-prog/trackall/internal/cache"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/mcmeskajr-prog/trackall/provider/igdb"
	"github.com/mcmeskajr-prog/trackall/provider/steam"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func records(t media.Type, ids ...string) []media.Record {
	return lo.Map(ids, func(id string, _ int) media.Record {
		return media.Record{ID: id, Title: id, Type: t}
	})
}

// counting returns a source answering with result and counting its calls.
func counting(name string, calls *int32, result []media.Record, err error) Source {
	return Source{Name: name, Lookup: func(context.Context, string, Keys) ([]media.Record, error) {
		atomic.AddInt32(calls, 1)
		return result, err
	}}
}

var errDown = &provider.Error{Provider: "test", Kind: provider.KindTransport, Err: errors.New("down")}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a router with one anime source", t, func() {
		var calls int32
		router := New(cache.New(0), map[media.Type][]Source{
			media.TypeAnime: {counting("a", &calls, records(media.TypeAnime, "al-anime-1"), nil)},
		})

		Convey("A blank query returns nothing without dispatching", func() {
			found, err := router.Search(ctx, "   ", media.TypeAnime, Keys{})
			So(err, ShouldBeNil)
			So(found, ShouldBeEmpty)
			So(calls, ShouldEqual, 0)
		})

		Convey("A repeated query is served from the cache", func() {
			first, err := router.Search(ctx, "Frieren", media.TypeAnime, Keys{})
			So(err, ShouldBeNil)
			second, err := router.Search(ctx, "  frieren ", media.TypeAnime, Keys{})
			So(err, ShouldBeNil)

			So(second, ShouldResemble, first)
			So(calls, ShouldEqual, 1)
		})

		Convey("An unserved type is an error", func() {
			_, err := router.Search(ctx, "x", media.TypeComics, Keys{})
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrUnreachable), ShouldBeFalse)
		})

		Convey("Queries are reported to the history", func() {
			var seen []string
			router.History = func(q string) error {
				seen = append(seen, q)
				return nil
			}
			_, _ = router.Search(ctx, " frieren ", media.TypeAnime, Keys{})
			So(seen, ShouldResemble, []string{"frieren"})
		})
	})

	Convey("Given a games chain", t, func() {
		var igdbCalls, steamCalls int32
		halo := records(media.TypeGames, "steam-976730")

		Convey("Steam answers when IGDB has no credential", func() {
			router := New(cache.New(0), map[media.Type][]Source{media.TypeGames: {
				counting(provider.IGDB, &igdbCalls, nil, provider.MissingCredential(provider.IGDB, "proxy url")),
				counting(provider.Steam, &steamCalls, halo, nil),
			}})

			found, err := router.Search(ctx, "Halo", media.TypeGames, Keys{})
			So(err, ShouldBeNil)
			So(found, ShouldResemble, halo)
			So(igdbCalls, ShouldEqual, 1)
			So(steamCalls, ShouldEqual, 1)
		})

		Convey("Steam answers when IGDB finds nothing", func() {
			router := New(cache.New(0), map[media.Type][]Source{media.TypeGames: {
				counting(provider.IGDB, &igdbCalls, []media.Record{}, nil),
				counting(provider.Steam, &steamCalls, halo, nil),
			}})

			found, err := router.Search(ctx, "Halo", media.TypeGames, Keys{})
			So(err, ShouldBeNil)
			So(found, ShouldResemble, halo)
		})

		Convey("Steam is skipped when IGDB answers", func() {
			router := New(cache.New(0), map[media.Type][]Source{media.TypeGames: {
				counting(provider.IGDB, &igdbCalls, records(media.TypeGames, "igdb-1"), nil),
				counting(provider.Steam, &steamCalls, halo, nil),
			}})

			found, err := router.Search(ctx, "Halo", media.TypeGames, Keys{})
			So(err, ShouldBeNil)
			So(found[0].ID, ShouldEqual, "igdb-1")
			So(steamCalls, ShouldEqual, 0)
		})

		Convey("Failure everywhere is ErrUnreachable", func() {
			router := New(cache.New(0), map[media.Type][]Source{media.TypeGames: {
				counting(provider.IGDB, &igdbCalls, nil, errDown),
				counting(provider.Steam, &steamCalls, nil, errDown),
			}})

			found, err := router.Search(ctx, "Halo", media.TypeGames, Keys{})
			So(found, ShouldBeEmpty)
			So(errors.Is(err, ErrUnreachable), ShouldBeTrue)
			So(provider.IsKind(err, provider.KindTransport), ShouldBeTrue)
		})

		Convey("An empty answer after a failure is not an error", func() {
			router := New(cache.New(0), map[media.Type][]Source{media.TypeGames: {
				counting(provider.IGDB, &igdbCalls, nil, errDown),
				counting(provider.Steam, &steamCalls, []media.Record{}, nil),
			}})

			found, err := router.Search(ctx, "zzzz", media.TypeGames, Keys{})
			So(err, ShouldBeNil)
			So(found, ShouldBeEmpty)
		})
	})
}

func TestEverything(t *testing.T) {
	ctx := context.Background()

	Convey("Given sources for every type", t, func() {
		var movieCalls, seriesCalls, gameCalls int32
		var none int32
		chains := map[media.Type][]Source{
			media.TypeAnime:  {counting("anime", &none, records(media.TypeAnime, "al-anime-1", "shared"), nil)},
			media.TypeManga:  {counting("manga", &none, records(media.TypeManga, "al-manga-1", "shared"), nil)},
			media.TypeBooks:  {counting("books", &none, records(media.TypeBooks, "ol--works-OL1W"), nil)},
			media.TypeMovies: {counting("movies", &movieCalls, records(media.TypeMovies, "tmdb-filmes-1"), nil)},
			media.TypeSeries: {counting("series", &seriesCalls, records(media.TypeSeries, "tmdb-series-1"), nil)},
			media.TypeGames:  {counting("games", &gameCalls, records(media.TypeGames, "steam-1"), nil)},
		}
		router := New(cache.New(0), chains)

		Convey("Results are merged with duplicate ids removed", func() {
			found, err := router.Search(ctx, "x", media.TypeAll, Keys{TMDB: "key"})
			So(err, ShouldBeNil)

			ids := lo.Map(found, func(r media.Record, _ int) string { return r.ID })
			So(ids, ShouldHaveLength, 7)
			So(lo.Uniq(ids), ShouldHaveLength, 7)
			So(lo.Count(ids, "shared"), ShouldEqual, 1)
		})

		Convey("Movies and series are skipped without a TMDB key", func() {
			found, err := router.Search(ctx, "x", media.TypeAll, Keys{})
			So(err, ShouldBeNil)
			So(movieCalls, ShouldEqual, 0)
			So(seriesCalls, ShouldEqual, 0)
			So(gameCalls, ShouldEqual, 1)
			So(found, ShouldHaveLength, 5)
		})
	})

	Convey("A shared id keeps the type of the lookup that resolved first", t, func() {
		var none int32
		mangaDone := make(chan struct{})
		anime := Source{Name: "anime", Lookup: func(context.Context, string, Keys) ([]media.Record, error) {
			<-mangaDone
			// Leave the manga goroutine time to merge its records.
			time.Sleep(50 * time.Millisecond)
			return records(media.TypeAnime, "al-anime-1", "shared"), nil
		}}
		manga := Source{Name: "manga", Lookup: func(context.Context, string, Keys) ([]media.Record, error) {
			defer close(mangaDone)
			return records(media.TypeManga, "al-manga-1", "shared"), nil
		}}
		router := New(cache.New(0), map[media.Type][]Source{
			media.TypeAnime: {anime},
			media.TypeManga: {manga},
			media.TypeBooks: {counting("books", &none, []media.Record{}, nil)},
		})

		found, err := router.Search(ctx, "x", media.TypeAll, Keys{})
		So(err, ShouldBeNil)
		So(found, ShouldHaveLength, 3)

		shared, ok := lo.Find(found, func(r media.Record) bool { return r.ID == "shared" })
		So(ok, ShouldBeTrue)
		So(shared.Type, ShouldEqual, media.TypeManga)
	})

	Convey("A failing type does not hide the records of the others", t, func() {
		var none int32
		router := New(cache.New(0), map[media.Type][]Source{
			media.TypeAnime: {counting("anime", &none, nil, errDown)},
			media.TypeManga: {counting("manga", &none, records(media.TypeManga, "al-manga-1", "al-manga-2"), nil)},
		})

		found, err := router.Search(ctx, "x", media.TypeAll, Keys{})
		So(err, ShouldBeNil)
		So(found, ShouldResemble, records(media.TypeManga, "al-manga-1", "al-manga-2"))
	})

	Convey("Given only failing sources", t, func() {
		var calls int32
		down := []Source{counting("down", &calls, nil, errDown)}
		router := New(cache.New(0), map[media.Type][]Source{
			media.TypeAnime: down, media.TypeManga: down, media.TypeBooks: down, media.TypeGames: down,
		})

		_, err := router.Search(ctx, "x", media.TypeAll, Keys{})
		So(errors.Is(err, ErrUnreachable), ShouldBeTrue)
	})
}

func TestChains(t *testing.T) {
	Convey("Given real adapters behind test servers", t, func() {
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer proxy.Close()

		store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items":[{"id":976730,"name":"Halo: The Master Chief Collection"}]}`))
		}))
		defer store.Close()

		chains := Chains(Catalogs{
			IGDB:  &igdb.Client{HTTP: proxy.Client()},
			Steam: &steam.Client{HTTP: store.Client(), Endpoint: store.URL},
		})

		Convey("Every concrete type has a chain", func() {
			for _, t := range media.Types {
				So(chains[t], ShouldNotBeEmpty)
			}
		})

		Convey("Halo falls through an empty IGDB answer to Steam", func() {
			router := New(cache.New(0), chains)
			found, err := router.Search(context.Background(), "Halo", media.TypeGames, Keys{Proxy: proxy.URL})
			So(err, ShouldBeNil)
			So(found, ShouldHaveLength, 1)
			So(found[0].ID, ShouldEqual, "steam-976730")
		})

		Convey("Manhwa is queried as manga", func() {
			So(Facets[media.TypeManhwa], ShouldEqual, Facets[media.TypeManga])
		})
	})
}
