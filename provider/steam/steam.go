// Package steam performs keyword searches against the Steam storefront.
package steam

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
	Endpoint = "https://store.steampowered.com"
	cdn      = "https://cdn.akamai.steamstatic.com/steam/apps/%s/%s"
)

// Cover is the portrait library artwork of an app.
func Cover(appID string) string {
	if appID == "" {
		return ""
	}
	return fmt.Sprintf(cdn, appID, "library_600x900.jpg")
}

// Header is the wide store header of an app.
func Header(appID string) string {
	if appID == "" {
		return ""
	}
	return fmt.Sprintf(cdn, appID, "header.jpg")
}

// Client talks to the storefront. It needs no credential.
type Client struct {
	HTTP     provider.Doer
	Endpoint string
	Language string
	Country  string
}

// New returns a storefront client using the browser fingerprint transport.
func New(language, country string) *Client {
	return &Client{HTTP: network.Browser, Endpoint: Endpoint, Language: language, Country: country}
}

type item struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	TinyDesc string `json:"tiny_desc"`
}

// Search looks up games by keyword. Records carry no score.
func (c *Client) Search(ctx context.Context, query string) ([]media.Record, error) {
	log.With(log.Fields{"provider": provider.Steam}).Infof("searching %q", query)

	params := url.Values{}
	params.Set("term", query)
	if c.Language != "" {
		params.Set("l", c.Language)
	}
	if c.Country != "" {
		params.Set("cc", c.Country)
	}

	req, err := http.NewRequest(http.MethodGet, c.Endpoint+"/api/storesearch/?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Items []item `json:"items"`
	}
	if err := provider.Fetch(ctx, c.HTTP, req, provider.Steam, &response); err != nil {
		log.WithError(err).Warnf("steam request failed")
		return nil, err
	}

	return media.Capped(lo.Map(response.Items, func(it item, _ int) media.Record {
		appID := strconv.Itoa(it.ID)
		return media.Record{
			ID:         media.ID(media.PrefixSteam, appID),
			Title:      it.Name,
			Cover:      Cover(appID),
			Backdrop:   Header(appID),
			Type:       media.TypeGames,
			Synopsis:   media.Synopsis(it.TinyDesc),
			Genres:     []string{},
			Source:     provider.Steam,
			SteamAppID: appID,
		}
	})), nil
}
