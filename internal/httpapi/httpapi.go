// Package httpapi implements the thin chi-routed HTTP handlers that
// expose the core to front-end clients (spec §6.1). Handlers only
// decode/encode and delegate; all behaviour lives in the packages they
// wire. Grounded on services/api/internal/library's Service{db}/
// Routes(r chi.Router)/writeJSON/writeErr shape.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hifiberry/acr/internal/artistmeta"
	"github.com/hifiberry/acr/internal/attrcache"
	"github.com/hifiberry/acr/internal/coverart"
	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/imagecache"
	"github.com/hifiberry/acr/internal/mpd"
	"github.com/hifiberry/acr/internal/oauth"
)

// Service holds every core subsystem the HTTP handlers delegate to.
type Service struct {
	Registry     *coverart.Registry
	ArtistImages *mpd.ArtistImageService
	Coordinator  *artistmeta.Coordinator
	AttrCache    *attrcache.Cache
	ImageCache   *imagecache.Cache
	FetchClient  *httpfetch.Client

	// Library and MPDCoverArt expose the MPD loader's library snapshot
	// and on-demand album-art fallback chain (spec §4.11).
	Library     *mpd.Library
	MPDCoverArt *mpd.CoverArtService

	// OAuthManagers is keyed by provider name ("spotify", "lastfm").
	OAuthManagers map[string]*oauth.Manager

	// LyricsProviders is keyed by provider name; nil/absent entries
	// yield {found:false} (lyrics backends are out of scope, spec §1 --
	// only the contract is implemented here).
	LyricsProviders map[string]LyricsProvider

	// Plugins lists active action-plugin names/versions for the
	// /plugins/actions endpoint (plugin backends are out of scope,
	// spec §1 -- this is a static/injectable inventory only).
	Plugins []PluginInfo
}

// Routes registers every endpoint spec §6.1 names.
func (s *Service) Routes(r chi.Router) {
	r.Get("/coverart/methods", s.coverartMethods)
	r.Get("/coverart/artist/{name}", s.coverartArtist)
	r.Get("/coverart/artist/{name}/image", s.coverartArtistImage)
	r.Post("/coverart/artist/{name}/update", s.coverartArtistUpdate)
	r.Get("/coverart/song/{title}/{artist}", s.coverartSong)
	r.Get("/coverart/album/{title}/{artist}", s.coverartAlbum)
	r.Get("/coverart/album/{title}/{artist}/{year}", s.coverartAlbum)
	r.Get("/coverart/url/{url}", s.coverartURL)

	r.Get("/lyrics/{provider}/{path}", s.lyricsByPath)
	r.Post("/lyrics/{provider}", s.lyricsByMetadata)

	r.Get("/plugins/actions", s.pluginActions)

	r.Get("/library/status", s.libraryStatus)
	r.Get("/library/albums/{id}", s.libraryAlbum)
	r.Get("/library/albums/{id}/cover", s.libraryAlbumCover)
	r.Get("/library/artists/{name}", s.libraryArtist)
	r.Get("/library/artists/{name}/albums", s.libraryArtistAlbums)

	r.Get("/oauth/{provider}/config", s.oauthConfig)
	r.Post("/oauth/{provider}/tokens", s.oauthStoreTokens)
	r.Get("/oauth/{provider}/status", s.oauthStatus)
	r.Post("/oauth/{provider}/disconnect", s.oauthDisconnect)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("httpapi: encode response failed", "err", err)
	}
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
