package coverart

import (
	"context"
	"sort"
	"sync"

	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/imagecache"
	"github.com/hifiberry/acr/internal/model"
)

// Registry holds providers in registration order and implements the
// fan-out/grading contract of spec §4.6.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	client    *httpfetch.Client
}

// NewRegistry builds an empty Registry. client is used to probe image
// dimensions/size for grading; it may be shared with providers.
func NewRegistry(client *httpfetch.Client) *Registry {
	return &Registry{client: client}
}

// Register appends a provider; registration order is preserved in
// every fan-out result (spec §4.6, §8 property S2).
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

func (r *Registry) snapshot() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Provider(nil), r.providers...)
}

// Methods lists, for each declared method, the providers that support
// it, for the `/coverart/methods` endpoint (spec §6.1).
func (r *Registry) Methods() map[model.Method][]string {
	out := map[model.Method][]string{
		model.MethodArtist: {}, model.MethodSong: {}, model.MethodAlbum: {}, model.MethodURL: {},
	}
	for _, p := range r.snapshot() {
		info := p.Info()
		for method := range out {
			if supports(info, method) {
				out[method] = append(out[method], info.InternalName)
			}
		}
	}
	return out
}

func (r *Registry) gradeAndSort(urls []string, providerName string) []model.ImageInfo {
	images := make([]model.ImageInfo, 0, len(urls))
	for _, u := range urls {
		img := model.ImageInfo{URL: u}
		if r.client != nil {
			if data, mime, err := r.client.GetBinary(context.Background(), u); err == nil {
				if mime == "" {
					mime = imagecache.DetectMIME(u, data)
				}
				size := int64(len(data))
				img.SizeBytes = &size
				img.Format = &mime
				if w, h, ok := imagecache.ProbeDimensions(mime, data); ok {
					img.Width, img.Height = &w, &h
				}
			}
		}
		grade := Grade(img, providerName)
		img.Grade = &grade
		images = append(images, img)
	}
	sort.SliceStable(images, func(i, j int) bool {
		gi, gj := 0, 0
		if images[i].Grade != nil {
			gi = *images[i].Grade
		}
		if images[j].Grade != nil {
			gj = *images[j].Grade
		}
		return gi > gj
	})
	return images
}

func (r *Registry) fanOut(method model.Method, lookup func(Provider) []string) []model.CoverartResult {
	var results []model.CoverartResult
	for _, p := range r.snapshot() {
		info := p.Info()
		if !supports(info, method) {
			continue
		}
		urls := lookup(p)
		if len(urls) == 0 {
			continue
		}
		results = append(results, model.CoverartResult{
			Provider: info,
			Images:   r.gradeAndSort(urls, info.InternalName),
		})
	}
	return results
}

// ArtistCoverart fans out to every provider supporting the Artist
// method, in registration order.
func (r *Registry) ArtistCoverart(ctx context.Context, name string) []model.CoverartResult {
	return r.fanOut(model.MethodArtist, func(p Provider) []string { return p.ArtistCoverart(ctx, name) })
}

// SongCoverart fans out to every provider supporting the Song method.
func (r *Registry) SongCoverart(ctx context.Context, title, artist string) []model.CoverartResult {
	return r.fanOut(model.MethodSong, func(p Provider) []string { return p.SongCoverart(ctx, title, artist) })
}

// AlbumCoverart fans out to every provider supporting the Album method.
func (r *Registry) AlbumCoverart(ctx context.Context, title, artist string, year *int) []model.CoverartResult {
	return r.fanOut(model.MethodAlbum, func(p Provider) []string { return p.AlbumCoverart(ctx, title, artist, year) })
}

// URLCoverart fans out to every provider supporting the Url method.
func (r *Registry) URLCoverart(ctx context.Context, url string) []model.CoverartResult {
	return r.fanOut(model.MethodURL, func(p Provider) []string { return p.URLCoverart(ctx, url) })
}
