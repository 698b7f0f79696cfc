// Package provider describes the catalog adapters and the failure taxonomy they share.
package provider

import (
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/samber/lo"
)

// Provider describes one external catalog.
type Provider struct {
	Name   string
	Prefix string
	Types  []media.Type
	// Needs names the credential the catalog cannot run without, if any.
	Needs string
}

func (p *Provider) String() string {
	return p.Name
}

// Catalog names, also used as the Source field of produced records.
const (
	AniList     = "AniList"
	TMDB        = "TMDB"
	OpenLibrary = "OpenLibrary"
	IGDB        = "IGDB"
	Steam       = "Steam"
	ComicVine   = "ComicVine"
)

var builtins = []*Provider{
	{Name: AniList, Prefix: media.PrefixAniList, Types: []media.Type{media.TypeAnime, media.TypeManga, media.TypeManhwa, media.TypeLightNovels}},
	{Name: TMDB, Prefix: media.PrefixTMDB, Types: []media.Type{media.TypeMovies, media.TypeSeries}, Needs: "tmdb key"},
	{Name: OpenLibrary, Prefix: media.PrefixOpenLibrary, Types: []media.Type{media.TypeBooks}},
	{Name: IGDB, Prefix: media.PrefixIGDB, Types: []media.Type{media.TypeGames}, Needs: "proxy url"},
	{Name: Steam, Prefix: media.PrefixSteam, Types: []media.Type{media.TypeGames}},
	{Name: ComicVine, Prefix: media.PrefixComicVine, Types: []media.Type{media.TypeComics}, Needs: "proxy url"},
}

// Builtins returns every catalog.
func Builtins() []*Provider {
	return builtins
}

// Get finds a catalog by name.
func Get(name string) (*Provider, bool) {
	return lo.Find(builtins, func(p *Provider) bool {
		return p.Name == name
	})
}
