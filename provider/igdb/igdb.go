// Package igdb searches IGDB through the user's proxy worker and cross-references Steam artwork.
package igdb

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/network"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/mcmeskajr-prog/trackall/provider/steam"
	"github.com/samber/lo"
)

// steamCategory marks the storefront entry among a game's external ids.
const steamCategory = 1

const searchFields = "name,cover.url,first_release_date,summary,total_rating,genres.name," +
	"involved_companies.company.name,external_games.uid,external_games.category,platforms.name"

// Client posts IGDB query documents to {proxy}/igdb.
type Client struct {
	HTTP provider.Doer
}

// New returns a client using the shared HTTP client.
func New() *Client {
	return &Client{HTTP: network.Client}
}

type game struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cover struct {
		URL string `json:"url"`
	} `json:"cover"`
	FirstReleaseDate int64   `json:"first_release_date"`
	Summary          string  `json:"summary"`
	TotalRating      float64 `json:"total_rating"`
	Rating           float64 `json:"rating"`
	Genres           []named `json:"genres"`
	Companies        []struct {
		Company named `json:"company"`
	} `json:"involved_companies"`
	ExternalGames []struct {
		UID      string `json:"uid"`
		Category int    `json:"category"`
	} `json:"external_games"`
	Platforms []named `json:"platforms"`
}

type named struct {
	Name string `json:"name"`
}

func names(list []named) []string {
	return lo.Map(list, func(n named, _ int) string { return n.Name })
}

// Endpoint joins the proxy base URL with the igdb sub-path.
func Endpoint(proxy string) string {
	return strings.TrimRight(proxy, "/") + "/igdb"
}

// Search looks up games matching query. An empty proxy fails with KindMissingCredential.
func (c *Client) Search(ctx context.Context, query, proxy string) ([]media.Record, error) {
	if proxy == "" {
		return nil, provider.MissingCredential(provider.IGDB, "proxy url")
	}

	log.With(log.Fields{"provider": provider.IGDB}).Infof("searching %q", query)

	body := fmt.Sprintf(`search "%s"; fields %s; limit %d; where version_parent = null;`,
		escape(query), searchFields, media.MaxResults)

	games, err := c.post(ctx, proxy, body)
	if err != nil {
		return nil, err
	}

	return media.Capped(lo.Map(games, func(g game, _ int) media.Record {
		return toRecord(g)
	})), nil
}

// Top returns highly rated games with artwork, starting at offset.
func (c *Client) Top(ctx context.Context, proxy string, offset int) ([]media.Record, error) {
	if proxy == "" {
		return nil, provider.MissingCredential(provider.IGDB, "proxy url")
	}

	body := fmt.Sprintf(`fields name,cover.url,rating; where rating > 75 & rating_count > 30 & cover != null; sort rating desc; limit 30; offset %d;`, offset)

	games, err := c.post(ctx, proxy, body)
	if err != nil {
		return nil, err
	}

	games = lo.Filter(games, func(g game, _ int) bool {
		return g.Cover.URL != ""
	})

	return lo.Map(games, func(g game, _ int) media.Record {
		record := toRecord(g)
		record.Score = media.Rescale(g.Rating, 100)
		return record
	}), nil
}

func (c *Client) post(ctx context.Context, proxy, body string) ([]game, error) {
	req, err := http.NewRequest(http.MethodPost, Endpoint(proxy), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")

	var games []game
	if err := provider.Fetch(ctx, c.HTTP, req, provider.IGDB, &games); err != nil {
		log.WithError(err).Warnf("igdb request failed")
		return nil, err
	}

	return games, nil
}

// escape quotes query for an apicalypse string literal.
func escape(query string) string {
	query = strings.ReplaceAll(query, `\`, `\\`)
	return strings.ReplaceAll(query, `"`, `\"`)
}

// coverImage upgrades an IGDB thumbnail url to the large cover size.
func coverImage(url string) string {
	if url == "" {
		return ""
	}
	url = strings.Replace(url, "t_thumb", "t_cover_big", 1)
	if strings.HasPrefix(url, "//") {
		return "https:" + url
	}
	return url
}

func toRecord(g game) media.Record {
	native := coverImage(g.Cover.URL)

	var appID string
	for _, ext := range g.ExternalGames {
		if ext.Category == steamCategory && ext.UID != "" {
			appID = ext.UID
			break
		}
	}

	record := media.Record{
		ID:            media.ID(media.PrefixIGDB, g.ID),
		Title:         g.Name,
		Cover:         native,
		CoverFallback: native,
		Type:          media.TypeGames,
		Score:         media.Rescale(g.TotalRating, 100),
		Synopsis:      media.Synopsis(g.Summary),
		Genres:        media.Genres(names(g.Genres)),
		Platforms:     strings.Join(names(g.Platforms), ", "),
		Source:        provider.IGDB,
	}

	if len(g.Companies) > 0 {
		record.Extra = media.Attribution(g.Companies[0].Company.Name)
	}

	if g.FirstReleaseDate > 0 {
		record.Year = strconv.Itoa(time.Unix(g.FirstReleaseDate, 0).UTC().Year())
	}

	if appID != "" {
		record.Cover = steam.Cover(appID)
		record.Backdrop = steam.Header(appID)
		record.SteamAppID = appID
		record.Source = provider.IGDB + "+" + provider.Steam
	}

	return record
}
