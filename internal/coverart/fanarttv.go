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

const fanartTVServiceName = "fanarttv"

// FanArtTVProvider resolves artist thumbnails/banners by MBID only
// (spec §4.6). The generic name-keyed Provider interface methods are
// unsupported: fanart.tv has no by-name search, so artistmeta calls
// ArtistByMBID directly, same pattern as TheAudioDBProvider.
type FanArtTVProvider struct {
	client *httpfetch.Client
	cache  *attrcache.Cache
	apiKey string
}

// NewFanArtTVProvider builds a FanArtTVProvider.
func NewFanArtTVProvider(client *httpfetch.Client, cache *attrcache.Cache, apiKey string) *FanArtTVProvider {
	ratelimit.RegisterService(fanartTVServiceName, 500)
	return &FanArtTVProvider{client: client, cache: cache, apiKey: apiKey}
}

// Info implements Provider.
func (p *FanArtTVProvider) Info() model.ProviderInfo {
	return model.ProviderInfo{
		InternalName:     "fanarttv",
		DisplayName:      "fanart.tv",
		SupportedMethods: []model.Method{model.MethodArtist},
	}
}

type fanartImage struct {
	URL string `json:"url"`
}

type fanartArtistResponse struct {
	ArtistThumb  []fanartImage `json:"artistthumb"`
	ArtistBackground []fanartImage `json:"artistbackground"`
	MusicBanner  []fanartImage `json:"musicbanner"`
}

// ArtistCoverart implements Provider: name-keyed lookup has no
// fanart.tv equivalent, so this always returns empty; use
// ArtistByMBID for the real lookup (spec §4.7).
func (p *FanArtTVProvider) ArtistCoverart(context.Context, string) []string { return nil }

// ArtistByMBID resolves thumbnails and banners by MBID.
func (p *FanArtTVProvider) ArtistByMBID(ctx context.Context, mbid string) []string {
	cacheKey := "coverart::fanarttv::mbid::" + mbid
	if found, _ := p.cache.IsNotFound(ctx, cacheKey); found {
		return nil
	}
	ratelimit.RateLimit(fanartTVServiceName)

	apiURL := fmt.Sprintf("https://webservice.fanart.tv/v3/music/%s?api_key=%s", url.PathEscape(mbid), url.QueryEscape(p.apiKey))
	var resp fanartArtistResponse
	if err := p.client.GetJSONWithHeaders(ctx, apiURL, nil, &resp); err != nil {
		_ = p.cache.SetNotFound(ctx, cacheKey)
		return nil
	}

	var urls []string
	for _, img := range resp.ArtistThumb {
		urls = append(urls, img.URL)
	}
	for _, img := range resp.ArtistBackground {
		urls = append(urls, img.URL)
	}
	for _, img := range resp.MusicBanner {
		urls = append(urls, img.URL)
	}
	if len(urls) == 0 {
		_ = p.cache.SetNotFound(ctx, cacheKey)
	}
	return urls
}

// SongCoverart implements Provider (unsupported method).
func (p *FanArtTVProvider) SongCoverart(context.Context, string, string) []string { return nil }

// AlbumCoverart implements Provider (unsupported method).
func (p *FanArtTVProvider) AlbumCoverart(context.Context, string, string, *int) []string { return nil }

// URLCoverart implements Provider (unsupported method).
func (p *FanArtTVProvider) URLCoverart(context.Context, string) []string { return nil }
