package coverart

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hifiberry/acr/internal/attrcache"
	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/ratelimit"
)

const lastfmServiceName = "lastfm"

// LastFMProvider calls the Last.fm artist.getinfo endpoint; Artist
// method only (spec §4.6). Cross-referenced against
// original_source/_INDEX.md's lastfm.rs for the query shape.
type LastFMProvider struct {
	client *httpfetch.Client
	cache  *attrcache.Cache
	apiKey string
}

// NewLastFMProvider builds a LastFMProvider.
func NewLastFMProvider(client *httpfetch.Client, cache *attrcache.Cache, apiKey string) *LastFMProvider {
	ratelimit.RegisterService(lastfmServiceName, 250)
	return &LastFMProvider{client: client, cache: cache, apiKey: apiKey}
}

// Info implements Provider.
func (p *LastFMProvider) Info() model.ProviderInfo {
	return model.ProviderInfo{
		InternalName:     "lastfm",
		DisplayName:      "Last.fm",
		SupportedMethods: []model.Method{model.MethodArtist},
	}
}

type lastfmImage struct {
	Text string `json:"#text"`
	Size string `json:"size"`
}

type lastfmArtistResponse struct {
	Artist struct {
		Images []lastfmImage `json:"image"`
	} `json:"artist"`
}

// ArtistCoverart implements Provider.
func (p *LastFMProvider) ArtistCoverart(ctx context.Context, name string) []string {
	cacheKey := "coverart::lastfm::artist::" + name
	if found, _ := p.cache.IsNotFound(ctx, cacheKey); found {
		return nil
	}

	ratelimit.RateLimit(lastfmServiceName)

	apiURL := fmt.Sprintf(
		"https://ws.audioscrobbler.com/2.0/?method=artist.getinfo&artist=%s&api_key=%s&format=json",
		url.QueryEscape(name), url.QueryEscape(p.apiKey))

	var resp lastfmArtistResponse
	if err := p.client.GetJSONWithHeaders(ctx, apiURL, nil, &resp); err != nil {
		_ = p.cache.SetNotFound(ctx, cacheKey)
		return nil
	}

	var urls []string
	for _, img := range resp.Artist.Images {
		if img.Text != "" {
			urls = append(urls, img.Text)
		}
	}
	if len(urls) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
	}
	return urls
}

// SongCoverart implements Provider (unsupported method).
func (p *LastFMProvider) SongCoverart(context.Context, string, string) []string { return nil }

// AlbumCoverart implements Provider (unsupported method).
func (p *LastFMProvider) AlbumCoverart(context.Context, string, string, *int) []string { return nil }

// URLCoverart implements Provider (unsupported method).
func (p *LastFMProvider) URLCoverart(context.Context, string) []string { return nil }
