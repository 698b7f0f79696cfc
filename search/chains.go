package search

import (
	"context"

	"github.com/mcmeskajr-prog/trackall/internal/cache"
	"github.com/mcmeskajr-prog/trackall/key"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/mcmeskajr-prog/trackall/provider/anilist"
	"github.com/mcmeskajr-prog/trackall/provider/comicvine"
	"github.com/mcmeskajr-prog/trackall/provider/igdb"
	"github.com/mcmeskajr-prog/trackall/provider/openlibrary"
	"github.com/mcmeskajr-prog/trackall/provider/steam"
	"github.com/mcmeskajr-prog/trackall/provider/tmdb"
	"github.com/spf13/viper"
)

// Facets maps each AniList-served type onto the AniList format it is queried with.
// Manhwa and light novels have no format of their own and reuse MANGA, relabeled.
var Facets = map[media.Type]anilist.Format{
	media.TypeAnime:       anilist.Anime,
	media.TypeManga:       anilist.Manga,
	media.TypeManhwa:      anilist.Manga,
	media.TypeLightNovels: anilist.Manga,
}

// Catalogs are the adapters a router is wired to.
type Catalogs struct {
	AniList     *anilist.Client
	TMDB        *tmdb.Client
	OpenLibrary *openlibrary.Client
	IGDB        *igdb.Client
	Steam       *steam.Client
	ComicVine   *comicvine.Client
}

// Chains returns the fallback order for every concrete type.
// Games try IGDB first and fall back to Steam, which needs no credential.
func Chains(c Catalogs) map[media.Type][]Source {
	chains := make(map[media.Type][]Source, len(media.Types))

	for t, format := range Facets {
		chains[t] = []Source{{
			Name: provider.AniList,
			Lookup: func(ctx context.Context, query string, _ Keys) ([]media.Record, error) {
				return c.AniList.Search(ctx, query, format, t)
			},
		}}
	}

	for _, t := range []media.Type{media.TypeMovies, media.TypeSeries} {
		chains[t] = []Source{{
			Name: provider.TMDB,
			Lookup: func(ctx context.Context, query string, keys Keys) ([]media.Record, error) {
				return c.TMDB.Search(ctx, query, t, keys.TMDB)
			},
		}}
	}

	chains[media.TypeBooks] = []Source{{
		Name: provider.OpenLibrary,
		Lookup: func(ctx context.Context, query string, _ Keys) ([]media.Record, error) {
			return c.OpenLibrary.Search(ctx, query)
		},
	}}

	chains[media.TypeGames] = []Source{
		{
			Name: provider.IGDB,
			Lookup: func(ctx context.Context, query string, keys Keys) ([]media.Record, error) {
				return c.IGDB.Search(ctx, query, keys.Proxy)
			},
		},
		{
			Name: provider.Steam,
			Lookup: func(ctx context.Context, query string, _ Keys) ([]media.Record, error) {
				return c.Steam.Search(ctx, query)
			},
		},
	}

	chains[media.TypeComics] = []Source{{
		Name: provider.ComicVine,
		Lookup: func(ctx context.Context, query string, keys Keys) ([]media.Record, error) {
			return c.ComicVine.Search(ctx, query, keys.Proxy)
		},
	}}

	return chains
}

// DefaultCatalogs returns the production adapters configured from viper.
func DefaultCatalogs() Catalogs {
	return Catalogs{
		AniList:     anilist.New(),
		TMDB:        tmdb.New(viper.GetString(key.TMDBLanguage)),
		OpenLibrary: openlibrary.New(),
		IGDB:        igdb.New(),
		Steam:       steam.New(viper.GetString(key.SteamLanguage), viper.GetString(key.SteamCountry)),
		ComicVine:   comicvine.New(),
	}
}

// Default returns a router over the production adapters with a fresh session cache.
func Default() *Router {
	return New(cache.New(viper.GetInt(key.SearchCacheSize)), Chains(DefaultCatalogs()))
}
