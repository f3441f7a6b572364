package coverart

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hifiberry/acr/internal/attrcache"
	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/oauth"
	"github.com/hifiberry/acr/internal/ratelimit"
)

const spotifyServiceName = "spotify"

// SpotifyProvider searches the Spotify Search API (spec §4.6), using
// a bearer token from internal/oauth (spec §4.12). Cross-referenced
// against original_source/_INDEX.md's spotify.rs for the search
// query/type shape.
type SpotifyProvider struct {
	client  *httpfetch.Client
	cache   *attrcache.Cache
	tokens  *oauth.Manager
}

// NewSpotifyProvider builds a SpotifyProvider.
func NewSpotifyProvider(client *httpfetch.Client, cache *attrcache.Cache, tokens *oauth.Manager) *SpotifyProvider {
	ratelimit.RegisterService(spotifyServiceName, 200)
	return &SpotifyProvider{client: client, cache: cache, tokens: tokens}
}

// Info implements Provider.
func (p *SpotifyProvider) Info() model.ProviderInfo {
	return model.ProviderInfo{
		InternalName:     "spotify",
		DisplayName:      "Spotify",
		SupportedMethods: []model.Method{model.MethodArtist, model.MethodAlbum, model.MethodSong},
	}
}

type spotifyImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type spotifySearchResponse struct {
	Artists struct {
		Items []struct {
			Images []spotifyImage `json:"images"`
		} `json:"items"`
	} `json:"artists"`
	Albums struct {
		Items []struct {
			Images []spotifyImage `json:"images"`
		} `json:"items"`
	} `json:"albums"`
	Tracks struct {
		Items []struct {
			Album struct {
				Images []spotifyImage `json:"images"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

func (p *SpotifyProvider) search(ctx context.Context, query, searchType, cacheKey string) []string {
	if found, _ := p.cache.IsNotFound(ctx, cacheKey); found {
		return nil
	}

	token, err := p.tokens.EnsureValidToken(ctx)
	if err != nil {
		return nil
	}

	ratelimit.RateLimit(spotifyServiceName)

	apiURL := fmt.Sprintf("https://api.spotify.com/v1/search?q=%s&type=%s&limit=1",
		url.QueryEscape(query), searchType)
	var resp spotifySearchResponse
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := p.client.GetJSONWithHeaders(ctx, apiURL, headers, &resp); err != nil {
		_ = p.cache.SetNotFound(ctx, cacheKey)
		return nil
	}

	var urls []string
	switch searchType {
	case "artist":
		for _, item := range resp.Artists.Items {
			for _, img := range item.Images {
				urls = append(urls, img.URL)
			}
		}
	case "album":
		for _, item := range resp.Albums.Items {
			for _, img := range item.Images {
				urls = append(urls, img.URL)
			}
		}
	case "track":
		for _, item := range resp.Tracks.Items {
			for _, img := range item.Album.Images {
				urls = append(urls, img.URL)
			}
		}
	}

	if len(urls) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
	}
	return urls
}

// ArtistCoverart implements Provider.
func (p *SpotifyProvider) ArtistCoverart(ctx context.Context, name string) []string {
	return p.search(ctx, "artist:"+name, "artist", "coverart::spotify::artist::"+name)
}

// SongCoverart implements Provider.
func (p *SpotifyProvider) SongCoverart(ctx context.Context, title, artist string) []string {
	query := fmt.Sprintf("track:%s artist:%s", title, artist)
	return p.search(ctx, query, "track", "coverart::spotify::song::"+artist+"::"+title)
}

// AlbumCoverart implements Provider.
func (p *SpotifyProvider) AlbumCoverart(ctx context.Context, title, artist string, _ *int) []string {
	query := fmt.Sprintf("album:%s artist:%s", title, artist)
	return p.search(ctx, query, "album", "coverart::spotify::album::"+artist+"::"+title)
}

// URLCoverart implements Provider (unsupported method).
func (p *SpotifyProvider) URLCoverart(context.Context, string) []string { return nil }
