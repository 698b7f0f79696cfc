// Package anilist searches the AniList GraphQL catalog for anime and manga-like works.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/network"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/samber/lo"
)

// Endpoint is the public GraphQL endpoint.
const Endpoint = "https://graphql.anilist.co"

// Format is the catalog's native media type.
type Format string

const (
	Anime Format = "ANIME"
	Manga Format = "MANGA"
)

// Client talks to one AniList endpoint.
type Client struct {
	HTTP     provider.Doer
	Endpoint string
}

// New returns a client for the public endpoint.
func New() *Client {
	return &Client{HTTP: network.Client, Endpoint: Endpoint}
}

type work struct {
	ID    int `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	CoverImage struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"coverImage"`
	BannerImage string `json:"bannerImage"`
	StartDate   struct {
		Year int `json:"year"`
	} `json:"startDate"`
	Description  string   `json:"description"`
	AverageScore float64  `json:"averageScore"`
	Genres       []string `json:"genres"`
	Studios      struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"studios"`
	Staff struct {
		Nodes []struct {
			Name struct {
				Full string `json:"full"`
			} `json:"name"`
		} `json:"nodes"`
	} `json:"staff"`
}

type pageResponse struct {
	Data struct {
		Page struct {
			Media []work `json:"media"`
		} `json:"Page"`
	} `json:"data"`
}

// Search finds works of the given format and tags the records with facet.
// Ids only depend on the format, so the same work found under two facets is one library item.
func (c *Client) Search(ctx context.Context, query string, format Format, facet media.Type) ([]media.Record, error) {
	log.With(log.Fields{"provider": provider.AniList, "format": format}).Infof("searching %q", query)

	items, err := c.page(ctx, searchQuery, map[string]any{"s": query, "t": format})
	if err != nil {
		return nil, err
	}

	return media.Capped(c.records(items, format, facet)), nil
}

// Trending returns one page of currently trending works.
func (c *Client) Trending(ctx context.Context, format Format, facet media.Type, page int) ([]media.Record, error) {
	items, err := c.page(ctx, trendingQuery, map[string]any{"t": format, "p": page})
	if err != nil {
		return nil, err
	}

	return c.records(items, format, facet), nil
}

func (c *Client) page(ctx context.Context, query string, variables map[string]any) ([]work, error) {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var response pageResponse
	if err := provider.Fetch(ctx, c.HTTP, req, provider.AniList, &response); err != nil {
		log.WithError(err).Warnf("anilist request failed")
		return nil, err
	}

	return response.Data.Page.Media, nil
}

func (c *Client) records(items []work, format Format, facet media.Type) []media.Record {
	return lo.Map(items, func(m work, _ int) media.Record {
		return toRecord(m, format, facet)
	})
}

func toRecord(m work, format Format, facet media.Type) media.Record {
	title, _ := lo.Coalesce(m.Title.English, m.Title.Romaji, m.Title.Native)
	cover, _ := lo.Coalesce(m.CoverImage.Large, m.CoverImage.Medium)

	var attribution string
	if format == Anime {
		if len(m.Studios.Nodes) > 0 {
			attribution = m.Studios.Nodes[0].Name
		}
	} else if len(m.Staff.Nodes) > 0 {
		attribution = m.Staff.Nodes[0].Name.Full
	}

	var year string
	if m.StartDate.Year > 0 {
		year = strconv.Itoa(m.StartDate.Year)
	}

	return media.Record{
		ID:       media.ID(media.PrefixAniList, strings.ToLower(string(format)), m.ID),
		Title:    title,
		TitleEn:  m.Title.English,
		Cover:    cover,
		Backdrop: m.BannerImage,
		Type:     facet,
		Year:     year,
		Score:    media.Rescale(m.AverageScore, 100),
		Synopsis: media.Synopsis(m.Description),
		Genres:   media.Genres(m.Genres),
		Extra:    media.Attribution(attribution),
		Source:   provider.AniList,
	}
}
