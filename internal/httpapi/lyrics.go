package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TimedLine is one line of a time-synced lyric (spec §6.1).
type TimedLine struct {
	TimestampSeconds float64 `json:"timestamp"`
	Text             string  `json:"text"`
}

// Lyrics is either plain text or a timed-line sequence.
type Lyrics struct {
	Plain *string     `json:"plain,omitempty"`
	Timed []TimedLine `json:"timed,omitempty"`
}

// LyricsRequest is the body of POST /lyrics/{provider} (spec §6.1).
type LyricsRequest struct {
	Artist      string   `json:"artist"`
	Title       string   `json:"title"`
	DurationSec *float64 `json:"duration,omitempty"`
	Album       *string  `json:"album,omitempty"`
}

// LyricsProvider is the contract a lyrics backend fulfils; none are
// implemented in this core (spec §1 names lyrics backends out of
// scope), so Service.LyricsProviders is typically empty and every
// lookup returns {found:false}.
type LyricsProvider interface {
	LyricsByPath(ctx context.Context, path string) (Lyrics, bool, error)
	LyricsByMetadata(ctx context.Context, req LyricsRequest) (Lyrics, bool, error)
}

type lyricsResponse struct {
	Found  bool    `json:"found"`
	Lyrics *Lyrics `json:"lyrics,omitempty"`
}

func (s *Service) lyricsByPath(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	path, ok := decodeSegment(w, r, "path")
	if !ok {
		return
	}

	provider, exists := s.LyricsProviders[providerName]
	if !exists {
		writeJSON(w, http.StatusOK, lyricsResponse{Found: false})
		return
	}

	lyrics, found, err := provider.LyricsByPath(r.Context(), path)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, lyricsResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, lyricsResponse{Found: true, Lyrics: &lyrics})
}

func (s *Service) lyricsByMetadata(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	var req LyricsRequest
	if err := readJSON(r, &req); err != nil || req.Artist == "" || req.Title == "" {
		writeErr(w, http.StatusBadRequest, "body must include artist and title")
		return
	}

	provider, exists := s.LyricsProviders[providerName]
	if !exists {
		writeJSON(w, http.StatusOK, lyricsResponse{Found: false})
		return
	}

	lyrics, found, err := provider.LyricsByMetadata(r.Context(), req)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, lyricsResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, lyricsResponse{Found: true, Lyrics: &lyrics})
}
