// Package openlibrary searches the Open Library book catalog.
package openlibrary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/mcmeskajr-prog/trackall/media"
	"github.com/mcmeskajr-prog/trackall/network"
	"github.com/mcmeskajr-prog/trackall/provider"
	"github.com/samber/lo"
)

const (
	Endpoint  = "https://openlibrary.org"
	coverBase = "https://covers.openlibrary.org/b/id/%d-L.jpg"
	fields    = "key,title,author_name,first_publish_year,cover_i,subject,ratings_average"
)

// Client talks to one Open Library endpoint.
type Client struct {
	HTTP     provider.Doer
	Endpoint string
}

// New returns a client for the public catalog.
func New() *Client {
	return &Client{HTTP: network.Client, Endpoint: Endpoint}
}

type doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverI           int      `json:"cover_i"`
	Subject          []string `json:"subject"`
	RatingsAverage   float64  `json:"ratings_average"`
}

// Search looks up books matching query.
func (c *Client) Search(ctx context.Context, query string) ([]media.Record, error) {
	log.With(log.Fields{"provider": provider.OpenLibrary}).Infof("searching %q", query)

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(media.MaxResults))
	params.Set("fields", fields)

	req, err := http.NewRequest(http.MethodGet, c.Endpoint+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Docs []doc `json:"docs"`
	}
	if err := provider.Fetch(ctx, c.HTTP, req, provider.OpenLibrary, &response); err != nil {
		log.WithError(err).Warnf("openlibrary request failed")
		return nil, err
	}

	return media.Capped(lo.Map(response.Docs, func(d doc, _ int) media.Record {
		return toRecord(d)
	})), nil
}

func toRecord(d doc) media.Record {
	record := media.Record{
		ID:     media.ID(media.PrefixOpenLibrary, strings.ReplaceAll(d.Key, "/", "-")),
		Title:  d.Title,
		Type:   media.TypeBooks,
		Score:  media.Rescale(d.RatingsAverage, 5),
		Genres: media.Genres(d.Subject),
		Extra:  media.Attribution(d.AuthorName...),
		Source: provider.OpenLibrary,
	}

	if d.FirstPublishYear > 0 {
		record.Year = strconv.Itoa(d.FirstPublishYear)
	}
	if d.CoverI > 0 {
		record.Cover = fmt.Sprintf(coverBase, d.CoverI)
	}

	return record
}
