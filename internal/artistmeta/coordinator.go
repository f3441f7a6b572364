// Package artistmeta implements the artist metadata coordinator (spec
// §4.7, C7): resolves MBIDs via MusicBrainz, fans out to the
// provider-bound biography/thumb/banner sources, applies genre
// cleanup, and writes the result to the attribute cache. The MBID
// resolution step (score threshold, pkg/musicbrainz.SearchArtist +
// GetArtist) is built directly against that package's client surface;
// the multi-provider fan-out and background sweep are this package's own.
package artistmeta

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hifiberry/acr/internal/attrcache"
	"github.com/hifiberry/acr/internal/coverart"
	"github.com/hifiberry/acr/internal/genre"
	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/ratelimit"
	"github.com/hifiberry/acr/pkg/musicbrainz"
)

const musicbrainzServiceName = "musicbrainz"

// minArtistScore is the MusicBrainz search-result score threshold
// below which a match is discarded (spec §4.7 step 1).
const minArtistScore = 90

// mbidKey / metadataKey are the attribute-cache keys spec §4.7 names.
func metadataKey(name string) string { return "artist::metadata::" + name }
func mbidKey(name string) string     { return "artist::mbid::" + name }

// Coordinator implements spec §4.7's algorithm.
type Coordinator struct {
	mb       *musicbrainz.Client
	cache    *attrcache.Cache
	audioDB  *coverart.TheAudioDBProvider
	fanart   *coverart.FanArtTVProvider
	lastfm   *coverart.LastFMProvider
}

// NewCoordinator builds a Coordinator wiring the three update_artist
// providers (spec §4.7 step 3: TheAudioDB and FanArt.tv given a single
// MBID, Last.fm always).
func NewCoordinator(cache *attrcache.Cache, audioDB *coverart.TheAudioDBProvider, fanart *coverart.FanArtTVProvider, lastfm *coverart.LastFMProvider) *Coordinator {
	ratelimit.RegisterService(musicbrainzServiceName, 1000)
	return &Coordinator{mb: musicbrainz.New(), cache: cache, audioDB: audioDB, fanart: fanart, lastfm: lastfm}
}

// separators splits a multi-artist display string into sub-artist
// names for the FoundPartial resolution path (spec §8 scenario S3).
var separators = []string{" & ", " feat. ", " featuring ", ", "}

func splitArtistName(name string) []string {
	parts := []string{name}
	for _, sep := range separators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveMBIDs implements spec §4.7 step 1: a full-name search first;
// if that scores too low and the name splits into more than one
// sub-artist, each sub-artist is searched independently
// (FoundPartial). Returns (mbids, isPartialMatch, found).
func (c *Coordinator) resolveMBIDs(ctx context.Context, name string) ([]string, bool, bool) {
	ratelimit.RateLimit(musicbrainzServiceName)
	if mbid, ok := c.searchOne(ctx, name); ok {
		return []string{mbid}, false, true
	}

	parts := splitArtistName(name)
	if len(parts) <= 1 {
		return nil, false, false
	}

	var mbids []string
	for _, part := range parts {
		ratelimit.RateLimit(musicbrainzServiceName)
		if mbid, ok := c.searchOne(ctx, part); ok {
			mbids = append(mbids, mbid)
		}
	}
	if len(mbids) == 0 {
		return nil, false, false
	}
	return mbids, true, true
}

func (c *Coordinator) searchOne(ctx context.Context, name string) (string, bool) {
	resp, err := c.mb.SearchArtist(ctx, name)
	if err != nil || len(resp.Artists) == 0 {
		return "", false
	}
	best := resp.Artists[0]
	if best.Score < minArtistScore {
		return "", false
	}
	return best.ID, true
}

// UpdateArtist implements the full spec §4.7 algorithm, mutating a and
// persisting the result to the attribute cache.
func (c *Coordinator) UpdateArtist(ctx context.Context, a *model.Artist) {
	existing := a.Metadata()

	mbids := existing.MBIDs
	isPartial := existing.IsPartialMatch
	if len(mbids) == 0 {
		found, partial, ok := c.resolveMBIDs(ctx, a.Name)
		if ok {
			mbids, isPartial = found, partial
		}
	}

	if len(mbids) > 1 || isPartial {
		a.SetMetadata(model.ArtistMetadata{MBIDs: mbids, IsPartialMatch: isPartial})
		c.persist(ctx, a)
		return
	}

	meta := model.ArtistMetadata{MBIDs: mbids, IsPartialMatch: isPartial}

	if len(mbids) == 1 {
		c.enrichFromMusicBrainz(ctx, mbids[0], &meta)
		if c.audioDB != nil {
			if urls := c.audioDB.ArtistByMBID(ctx, mbids[0]); len(urls) > 0 {
				meta.ThumbnailURLs = append(meta.ThumbnailURLs, urls...)
			}
		}
		if c.fanart != nil {
			if urls := c.fanart.ArtistByMBID(ctx, mbids[0]); len(urls) > 0 {
				meta.BannerURLs = append(meta.BannerURLs, urls...)
			}
		}
	}

	if c.lastfm != nil {
		if urls := c.lastfm.ArtistCoverart(ctx, a.Name); len(urls) > 0 {
			meta.ThumbnailURLs = append(meta.ThumbnailURLs, urls...)
		}
	}

	meta.Genres = genre.CleanGenresGlobal(meta.Genres)

	a.SetMetadata(meta)
	c.persist(ctx, a)
}

func (c *Coordinator) enrichFromMusicBrainz(ctx context.Context, mbid string, meta *model.ArtistMetadata) {
	ratelimit.RateLimit(musicbrainzServiceName)
	detail, err := c.mb.GetArtist(ctx, mbid)
	if err != nil {
		slog.Debug("artistmeta: musicbrainz detail fetch failed", "mbid", mbid, "err", err)
		return
	}
	for _, g := range detail.Genres {
		meta.Genres = append(meta.Genres, g.Name)
	}
	for _, t := range detail.Tags {
		meta.Genres = append(meta.Genres, t.Name)
	}
	if detail.Disambiguation != "" {
		bio := detail.Disambiguation
		meta.Biography = &bio
		source := "musicbrainz"
		meta.BiographySource = &source
	}
}

func (c *Coordinator) persist(ctx context.Context, a *model.Artist) {
	meta := a.Metadata()
	if err := c.cache.Set(ctx, metadataKey(a.Name), meta); err != nil {
		slog.Warn("artistmeta: persist metadata failed", "artist", a.Name, "err", err)
	}
	if len(meta.MBIDs) > 0 {
		if err := c.cache.Set(ctx, mbidKey(a.Name), meta.MBIDs); err != nil {
			slog.Warn("artistmeta: persist mbids failed", "artist", a.Name, "err", err)
		}
	}
}

// Sweep runs UpdateArtist over every artist in artists sequentially,
// logging and continuing past any individual failure (spec §7's
// "background sweeps log and continue to the next artist; they never
// abort"). Grounded on cmd/ingest's worker-pool/sync.Map-memoization
// idiom for the "snapshot + per-artist background pass" shape, reduced
// here to sequential iteration since the rate limiter already bounds
// concurrency across providers.
func (c *Coordinator) Sweep(ctx context.Context, artists []*model.Artist) {
	for _, a := range artists {
		func(artist *model.Artist) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("artistmeta: sweep panic recovered", "artist", artist.Name, "recover", fmt.Sprint(r))
				}
			}()
			c.UpdateArtist(ctx, artist)
		}(a)
	}
}
