package trending

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/provider/anilist"
	"github.com/mcmeskajr-prog/trackall/provider/igdb"
	"github.com/mcmeskajr-prog/trackall/provider/tmdb"
	"github.com/mcmeskajr-prog/trackall/search"
	. "github.com/smartystreets/goconvey/convey"
)

func page(records ...media.Record) Page {
	return func(context.Context, search.Keys) ([]media.Record, error) {
		return records, nil
	}
}

func covered(id string) media.Record {
	return media.Record{ID: id, Cover: "https://img/" + id}
}

func TestFetch(t *testing.T) {
	Convey("Given a fetcher with test classes", t, func() {
		var (
			mu    sync.Mutex
			order []media.Type
		)
		tracked := func(t media.Type, records ...media.Record) Page {
			return func(context.Context, search.Keys) ([]media.Record, error) {
				mu.Lock()
				order = append(order, t)
				mu.Unlock()
				return records, nil
			}
		}

		reversed := func(records []media.Record) []media.Record {
			out := make([]media.Record, 0, len(records))
			for i := len(records) - 1; i >= 0; i-- {
				out = append(out, records[i])
			}
			return out
		}

		fetcher := &Fetcher{
			Stages: [][]Class{
				{{Type: media.TypeAnime, Pages: []Page{tracked(media.TypeAnime, covered("a1")), tracked(media.TypeAnime, covered("a2"))}}},
				{{Type: media.TypeManga, Pages: []Page{tracked(media.TypeManga, covered("m1"))}}},
				{
					{Type: media.TypeMovies, Pages: []Page{
						page(covered("f1")),
						func(context.Context, search.Keys) ([]media.Record, error) { return nil, errors.New("boom") },
					}},
					{Type: media.TypeGames, Pages: []Page{page(covered("g1"), media.Record{ID: "g2"})}},
					{Type: media.TypeSeries, Pages: []Page{
						func(context.Context, search.Keys) ([]media.Record, error) { return nil, errors.New("down") },
					}},
				},
			},
			Shuffle: reversed,
		}

		board := fetcher.Fetch(context.Background(), search.Keys{})

		Convey("Stages run in order", func() {
			So(order, ShouldHaveLength, 3)
			So(order[2], ShouldEqual, media.TypeManga)
		})

		Convey("Pages are flattened and shuffled", func() {
			ids := []string{board[media.TypeAnime][0].ID, board[media.TypeAnime][1].ID}
			sort.Strings(ids)
			So(ids, ShouldResemble, []string{"a1", "a2"})
		})

		Convey("A failing page contributes nothing", func() {
			So(board[media.TypeMovies], ShouldHaveLength, 1)
			So(board[media.TypeMovies][0].ID, ShouldEqual, "f1")
		})

		Convey("A failing class is empty", func() {
			So(board[media.TypeSeries], ShouldBeEmpty)
		})

		Convey("Records without artwork are dropped", func() {
			So(board[media.TypeGames], ShouldHaveLength, 1)
			So(board[media.TypeGames][0].ID, ShouldEqual, "g1")
		})
	})
}

func TestStages(t *testing.T) {
	Convey("Given production stages behind test servers", t, func() {
		var (
			mu    sync.Mutex
			pages []float64
		)
		aniListServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Variables map[string]any `json:"variables"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			pages = append(pages, body.Variables["p"].(float64))
			mu.Unlock()
			_, _ = w.Write([]byte(`{"data":{"Page":{"media":[{"id":1,"title":{"romaji":"A"},"coverImage":{"large":"https://img/a.jpg"}}]}}}`))
		}))
		defer aniListServer.Close()

		stages := Stages(
			&anilist.Client{HTTP: aniListServer.Client(), Endpoint: aniListServer.URL},
			&tmdb.Client{HTTP: http.DefaultClient},
			&igdb.Client{HTTP: http.DefaultClient},
			42,
		)

		Convey("There are five classes in three stages", func() {
			So(stages, ShouldHaveLength, 3)
			So(stages[2], ShouldHaveLength, 3)
		})

		Convey("Credential-gated classes are empty without keys", func() {
			fetcher := &Fetcher{Stages: stages}
			board := fetcher.Fetch(context.Background(), search.Keys{})

			So(board[media.TypeAnime], ShouldHaveLength, 2)
			So(board[media.TypeManga], ShouldHaveLength, 2)
			So(board[media.TypeMovies], ShouldBeEmpty)
			So(board[media.TypeSeries], ShouldBeEmpty)
			So(board[media.TypeGames], ShouldBeEmpty)

			sort.Float64s(pages)
			So(pages, ShouldResemble, []float64{1, 1, 2, 2})
		})
	})
}
