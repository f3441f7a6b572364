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

const theAudioDBServiceName = "theaudiodb"

// TheAudioDBProvider implements artist-by-MBID/artist-by-name and
// album-by-artist/album-by-name lookups (spec §4.6). Cross-referenced
// against original_source/_INDEX.md's theaudiodb.rs for endpoint shapes.
type TheAudioDBProvider struct {
	client *httpfetch.Client
	cache  *attrcache.Cache
	apiKey string
}

// NewTheAudioDBProvider builds a TheAudioDBProvider.
func NewTheAudioDBProvider(client *httpfetch.Client, cache *attrcache.Cache, apiKey string) *TheAudioDBProvider {
	ratelimit.RegisterService(theAudioDBServiceName, 500)
	return &TheAudioDBProvider{client: client, cache: cache, apiKey: apiKey}
}

// Info implements Provider.
func (p *TheAudioDBProvider) Info() model.ProviderInfo {
	return model.ProviderInfo{
		InternalName:     "theaudiodb",
		DisplayName:      "TheAudioDB",
		SupportedMethods: []model.Method{model.MethodArtist, model.MethodAlbum},
	}
}

type audioDBArtist struct {
	StrArtistThumb string `json:"strArtistThumb"`
	StrArtistFanart string `json:"strArtistFanart"`
	StrMusicBrainzID string `json:"strMusicBrainzID"`
}

type audioDBArtistResponse struct {
	Artists []audioDBArtist `json:"artists"`
}

type audioDBAlbum struct {
	StrAlbumThumb string `json:"strAlbumThumb"`
}

type audioDBAlbumResponse struct {
	Album []audioDBAlbum `json:"album"`
}

func (p *TheAudioDBProvider) baseURL(path string) string {
	return fmt.Sprintf("https://www.theaudiodb.com/api/v1/json/%s/%s", url.PathEscape(p.apiKey), path)
}

// ArtistCoverart resolves artist thumb/fanart by name (MBID-keyed
// lookup happens in internal/artistmeta, which already has the MBID
// and calls ArtistByMBID instead).
func (p *TheAudioDBProvider) ArtistCoverart(ctx context.Context, name string) []string {
	cacheKey := "coverart::theaudiodb::artist::" + name
	if found, _ := p.cache.IsNotFound(ctx, cacheKey); found {
		return nil
	}
	ratelimit.RateLimit(theAudioDBServiceName)

	apiURL := p.baseURL("search.php") + "?s=" + url.QueryEscape(name)
	var resp audioDBArtistResponse
	if err := p.client.GetJSONWithHeaders(ctx, apiURL, nil, &resp); err != nil || len(resp.Artists) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
		return nil
	}

	var urls []string
	for _, a := range resp.Artists {
		if a.StrArtistThumb != "" {
			urls = append(urls, a.StrArtistThumb)
		}
		if a.StrArtistFanart != "" {
			urls = append(urls, a.StrArtistFanart)
		}
	}
	if len(urls) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
	}
	return urls
}

// ArtistByMBID resolves artist thumb/fanart by MBID (called directly
// by internal/artistmeta, bypassing the generic name-keyed Provider
// method, per spec §4.7 step 3's "TheAudioDB given a single MBID").
func (p *TheAudioDBProvider) ArtistByMBID(ctx context.Context, mbid string) []string {
	cacheKey := "coverart::theaudiodb::mbid::" + mbid
	if found, _ := p.cache.IsNotFound(ctx, cacheKey); found {
		return nil
	}
	ratelimit.RateLimit(theAudioDBServiceName)

	apiURL := p.baseURL("artist-mb.php") + "?i=" + url.QueryEscape(mbid)
	var resp audioDBArtistResponse
	if err := p.client.GetJSONWithHeaders(ctx, apiURL, nil, &resp); err != nil || len(resp.Artists) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
		return nil
	}

	var urls []string
	for _, a := range resp.Artists {
		if a.StrArtistThumb != "" {
			urls = append(urls, a.StrArtistThumb)
		}
		if a.StrArtistFanart != "" {
			urls = append(urls, a.StrArtistFanart)
		}
	}
	return urls
}

// SongCoverart implements Provider (unsupported method).
func (p *TheAudioDBProvider) SongCoverart(context.Context, string, string) []string { return nil }

// AlbumCoverart resolves album thumb by artist+title.
func (p *TheAudioDBProvider) AlbumCoverart(ctx context.Context, title, artist string, _ *int) []string {
	cacheKey := "coverart::theaudiodb::album::" + artist + "::" + title
	if found, _ := p.cache.IsNotFound(ctx, cacheKey); found {
		return nil
	}
	ratelimit.RateLimit(theAudioDBServiceName)

	apiURL := p.baseURL("searchalbum.php") + "?s=" + url.QueryEscape(artist) + "&a=" + url.QueryEscape(title)
	var resp audioDBAlbumResponse
	if err := p.client.GetJSONWithHeaders(ctx, apiURL, nil, &resp); err != nil || len(resp.Album) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
		return nil
	}

	var urls []string
	for _, a := range resp.Album {
		if a.StrAlbumThumb != "" {
			urls = append(urls, a.StrAlbumThumb)
		}
	}
	if len(urls) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
	}
	return urls
}

// URLCoverart implements Provider (unsupported method).
func (p *TheAudioDBProvider) URLCoverart(context.Context, string) []string { return nil }
