// Package coverart implements the capability-typed provider registry
// for cover art (spec §4.6, C6): providers declare which lookup
// methods they support, the registry fans out to all that apply and
// grades/sorts results. Grounded on the *shape* of pkg/musicbrainz
// (typed client, Enrich-style calls) but restructured into a true
// interface/registry, the "trait-object / vtable" pattern spec §9
// requires for dynamic provider dispatch.
package coverart

import (
	"context"

	"github.com/hifiberry/acr/internal/model"
)

// Provider is implemented by every cover-art backend. A provider that
// does not support a method returns an empty slice, never an error.
type Provider interface {
	Info() model.ProviderInfo

	ArtistCoverart(ctx context.Context, name string) []string
	SongCoverart(ctx context.Context, title, artist string) []string
	AlbumCoverart(ctx context.Context, title, artist string, year *int) []string
	URLCoverart(ctx context.Context, url string) []string
}

// supports reports whether info declares method.
func supports(info model.ProviderInfo, method model.Method) bool {
	for _, m := range info.SupportedMethods {
		if m == method {
			return true
		}
	}
	return false
}
