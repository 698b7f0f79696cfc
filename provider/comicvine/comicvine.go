// Package comicvine searches Comic Vine volumes through the user's proxy worker.
package comicvine

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/network"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/samber/lo"
)

// Client sends GET {proxy}/comicvine?q=.
type Client struct {
	HTTP provider.Doer
}

// New returns a client using the shared HTTP client.
func New() *Client {
	return &Client{HTTP: network.Client}
}

type volume struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	StartYear string `json:"start_year"`
	Deck      string `json:"deck"`
	Image     struct {
		MediumURL string `json:"medium_url"`
		SmallURL  string `json:"small_url"`
	} `json:"image"`
	Publisher struct {
		Name string `json:"name"`
	} `json:"publisher"`
}

// Endpoint joins the proxy base URL with the comicvine sub-path.
func Endpoint(proxy string) string {
	return strings.TrimRight(proxy, "/") + "/comicvine"
}

// Search looks up comic volumes. An empty proxy fails with KindMissingCredential.
func (c *Client) Search(ctx context.Context, query, proxy string) ([]media.Record, error) {
	if proxy == "" {
		return nil, provider.MissingCredential(provider.ComicVine, "proxy url")
	}

	log.With(log.Fields{"provider": provider.ComicVine}).Infof("searching %q", query)

	req, err := http.NewRequest(http.MethodGet, Endpoint(proxy)+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Results []volume `json:"results"`
	}
	if err := provider.Fetch(ctx, c.HTTP, req, provider.ComicVine, &response); err != nil {
		log.WithError(err).Warnf("comicvine request failed")
		return nil, err
	}

	return media.Capped(lo.Map(response.Results, func(v volume, _ int) media.Record {
		cover, _ := lo.Coalesce(v.Image.MediumURL, v.Image.SmallURL)
		return media.Record{
			ID:       media.ID(media.PrefixComicVine, v.ID),
			Title:    v.Name,
			Cover:    cover,
			Type:     media.TypeComics,
			Year:     v.StartYear,
			Synopsis: media.Synopsis(v.Deck),
			Genres:   []string{},
			Extra:    media.Attribution(v.Publisher.Name),
			Source:   provider.ComicVine,
		}
	})), nil
}
