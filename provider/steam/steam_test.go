package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/provider"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSearch(t *testing.T) {
	Convey("Given a storefront server", t, func() {
		var query url.Values
		status := http.StatusOK
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"total":1,"items":[{"id":976730,"name":"Halo: The Master Chief Collection","tiny_desc":"Six games."}]}`))
		}))
		defer server.Close()

		client := &Client{HTTP: server.Client(), Endpoint: server.URL, Language: "portuguese", Country: "PT"}

		Convey("Items become scoreless game records keyed by app id", func() {
			records, err := client.Search(context.Background(), "Halo")
			So(err, ShouldBeNil)
			So(query.Get("term"), ShouldEqual, "Halo")
			So(query.Get("cc"), ShouldEqual, "PT")

			So(records, ShouldHaveLength, 1)
			game := records[0]
			So(game.ID, ShouldEqual, "steam-976730")
			So(game.Type, ShouldEqual, media.TypeGames)
			So(game.Score, ShouldBeNil)
			So(game.SteamAppID, ShouldEqual, "976730")
			So(game.Cover, ShouldEqual, "https://cdn.akamai.steamstatic.com/steam/apps/976730/library_600x900.jpg")
			So(game.Backdrop, ShouldEqual, "https://cdn.akamai.steamstatic.com/steam/apps/976730/header.jpg")
			So(game.Synopsis, ShouldEqual, "Six games.")
		})

		Convey("A rejected request is a status error", func() {
			status = http.StatusForbidden
			_, err := client.Search(context.Background(), "Halo")
			So(provider.IsKind(err, provider.KindStatus), ShouldBeTrue)
		})
	})

	Convey("Image helpers ignore empty ids", t, func() {
		So(Cover(""), ShouldBeEmpty)
		So(Header(""), ShouldBeEmpty)
	})
}
