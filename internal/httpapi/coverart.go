package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/util"
)

// coverartResponse is the wire shape spec §6.1 names for every
// /coverart/* lookup: {results: [{provider, images}]}.
type coverartResponse struct {
	Results []model.CoverartResult `json:"results"`
}

// decodeSegment decodes a URL-safe-base64 path segment, writing a 400
// and returning ok=false on malformed input (spec §6.1).
func decodeSegment(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	raw, err := util.DecodeURLSafe(chi.URLParam(r, param))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "malformed base64 in "+param)
		return "", false
	}
	return string(raw), true
}

func (s *Service) coverartMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Registry.Methods())
}

func (s *Service) coverartArtist(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeSegment(w, r, "name")
	if !ok {
		return
	}
	results := s.Registry.ArtistCoverart(r.Context(), name)
	writeJSON(w, http.StatusOK, coverartResponse{Results: results})
}

func (s *Service) coverartSong(w http.ResponseWriter, r *http.Request) {
	title, ok := decodeSegment(w, r, "title")
	if !ok {
		return
	}
	artist, ok := decodeSegment(w, r, "artist")
	if !ok {
		return
	}
	results := s.Registry.SongCoverart(r.Context(), title, artist)
	writeJSON(w, http.StatusOK, coverartResponse{Results: results})
}

func (s *Service) coverartAlbum(w http.ResponseWriter, r *http.Request) {
	title, ok := decodeSegment(w, r, "title")
	if !ok {
		return
	}
	artist, ok := decodeSegment(w, r, "artist")
	if !ok {
		return
	}
	var year *int
	if raw := chi.URLParam(r, "year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "malformed year")
			return
		}
		year = &y
	}
	results := s.Registry.AlbumCoverart(r.Context(), title, artist, year)
	writeJSON(w, http.StatusOK, coverartResponse{Results: results})
}

func (s *Service) coverartURL(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeSegment(w, r, "url")
	if !ok {
		return
	}
	results := s.Registry.URLCoverart(r.Context(), url)
	writeJSON(w, http.StatusOK, coverartResponse{Results: results})
}

func (s *Service) coverartArtistImage(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeSegment(w, r, "name")
	if !ok {
		return
	}
	data, mime, err := s.ArtistImages.GetArtistImage(r.Context(), name)
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type coverartUpdateRequest struct {
	URL string `json:"url"`
}

// coverartArtistUpdate persists a user-supplied artist image URL,
// downloads it into the image cache under the same key
// ArtistImageService.GetArtistImage serves from, and records the
// setting in the attribute cache (spec §6.1).
func (s *Service) coverartArtistUpdate(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeSegment(w, r, "name")
	if !ok {
		return
	}
	var req coverartUpdateRequest
	if err := readJSON(r, &req); err != nil || req.URL == "" {
		writeErr(w, http.StatusBadRequest, "body must be {\"url\": \"...\"}")
		return
	}

	data, mime, err := s.FetchClient.GetBinary(r.Context(), req.URL)
	if err != nil {
		writeErr(w, http.StatusBadGateway, "fetch image: "+err.Error())
		return
	}

	key := s.ArtistImages.CacheKey(name)
	_ = s.ImageCache.Delete(key)
	if err := s.ImageCache.Store(key, data, mime, nil); err != nil {
		writeErr(w, http.StatusInternalServerError, "store image: "+err.Error())
		return
	}
	if err := s.AttrCache.Set(r.Context(), "artist.image."+name, req.URL); err != nil {
		writeErr(w, http.StatusInternalServerError, "persist setting: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
