// Package tmdb searches The Movie Database for movies and series.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/network"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/samber/lo"
)

const (
	Endpoint     = "https://api.themoviedb.org"
	posterBase   = "https://image.tmdb.org/t/p/w500"
	backdropBase = "https://image.tmdb.org/t/p/w780"
)

// Kind is the catalog section queried.
type Kind string

const (
	Movie Kind = "movie"
	TV    Kind = "tv"
)

// KindOf maps a media type onto its catalog section.
func KindOf(t media.Type) Kind {
	if t == media.TypeMovies {
		return Movie
	}
	return TV
}

// Client talks to one TMDB endpoint.
type Client struct {
	HTTP     provider.Doer
	Endpoint string
	Language string
}

// New returns a client for the public API.
func New(language string) *Client {
	return &Client{HTTP: network.Client, Endpoint: Endpoint, Language: language}
}

type result struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
}

type resultsResponse struct {
	Results []result `json:"results"`
}

// Search looks up titles of type t (movies or series). An empty key fails with KindMissingCredential.
func (c *Client) Search(ctx context.Context, query string, t media.Type, key string) ([]media.Record, error) {
	if key == "" {
		return nil, provider.MissingCredential(provider.TMDB, "tmdb key")
	}

	log.With(log.Fields{"provider": provider.TMDB, "type": t}).Infof("searching %q", query)

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")

	results, err := c.get(ctx, fmt.Sprintf("/3/search/%s", KindOf(t)), key, params)
	if err != nil {
		return nil, err
	}

	return media.Capped(records(results, t)), nil
}

// Trending returns one page of this week's trending titles of type t.
func (c *Client) Trending(ctx context.Context, t media.Type, key string, page int) ([]media.Record, error) {
	if key == "" {
		return nil, provider.MissingCredential(provider.TMDB, "tmdb key")
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	results, err := c.get(ctx, fmt.Sprintf("/3/trending/%s/week", KindOf(t)), key, params)
	if err != nil {
		return nil, err
	}

	return records(results, t), nil
}

func (c *Client) get(ctx context.Context, path, key string, params url.Values) ([]result, error) {
	params.Set("api_key", key)
	if c.Language != "" {
		params.Set("language", c.Language)
	}

	req, err := http.NewRequest(http.MethodGet, c.Endpoint+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response resultsResponse
	if err := provider.Fetch(ctx, c.HTTP, req, provider.TMDB, &response); err != nil {
		log.WithError(err).Warnf("tmdb request failed")
		return nil, err
	}

	return response.Results, nil
}

func records(results []result, t media.Type) []media.Record {
	return lo.Map(results, func(r result, _ int) media.Record {
		title, _ := lo.Coalesce(r.Title, r.Name)
		date, _ := lo.Coalesce(r.ReleaseDate, r.FirstAirDate)

		record := media.Record{
			ID:       media.ID(media.PrefixTMDB, t, r.ID),
			Title:    title,
			Type:     t,
			Year:     media.Year(date),
			Score:    media.Rescale(r.VoteAverage, 10),
			Synopsis: media.Synopsis(r.Overview),
			Genres:   []string{},
			Source:   provider.TMDB,
		}

		if r.PosterPath != "" {
			record.Cover = posterBase + r.PosterPath
		}
		if r.BackdropPath != "" {
			record.Backdrop = backdropBase + r.BackdropPath
		}

		return record
	})
}
