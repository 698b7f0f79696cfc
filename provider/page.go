package provider

import (
	"strings"

	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/samber/mo"
)

var pages = map[string]func(rest string) mo.Option[string]{
	media.PrefixAniList: func(rest string) mo.Option[string] {
		format, id, ok := strings.Cut(rest, "-")
		if !ok {
			return mo.None[string]()
		}
		return mo.Some("https://anilist.co/" + format + "/" + id)
	},
	media.PrefixTMDB: func(rest string) mo.Option[string] {
		t, id, ok := strings.Cut(rest, "-")
		if !ok {
			return mo.None[string]()
		}
		kind := "tv"
		if media.Type(t) == media.TypeMovies {
			kind = "movie"
		}
		return mo.Some("https://www.themoviedb.org/" + kind + "/" + id)
	},
	media.PrefixOpenLibrary: func(rest string) mo.Option[string] {
		return mo.Some("https://openlibrary.org" + strings.ReplaceAll(rest, "-", "/"))
	},
	media.PrefixSteam: func(rest string) mo.Option[string] {
		return mo.Some("https://store.steampowered.com/app/" + rest)
	},
	media.PrefixComicVine: func(rest string) mo.Option[string] {
		return mo.Some("https://comicvine.gamespot.com/volume/4050-" + rest + "/")
	},
}

// Page is the catalog's web page for a record id. IGDB ids carry no slug and have none.
func Page(id string) mo.Option[string] {
	prefix, rest, ok := strings.Cut(id, "-")
	if !ok || rest == "" {
		return mo.None[string]()
	}

	page, ok := pages[prefix]
	if !ok {
		return mo.None[string]()
	}
	return page(rest)
}
