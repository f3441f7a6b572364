package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubLyricsProvider struct {
	plain string
}

func (s *stubLyricsProvider) LyricsByPath(ctx context.Context, path string) (Lyrics, bool, error) {
	if path == "missing.mp3" {
		return Lyrics{}, false, nil
	}
	return Lyrics{Plain: &s.plain}, true, nil
}

func (s *stubLyricsProvider) LyricsByMetadata(ctx context.Context, req LyricsRequest) (Lyrics, bool, error) {
	if req.Artist == "Unknown" {
		return Lyrics{}, false, nil
	}
	return Lyrics{Plain: &s.plain}, true, nil
}

func TestLyricsByPathFoundAndNotFound(t *testing.T) {
	svc := &Service{LyricsProviders: map[string]LyricsProvider{
		"genius": &stubLyricsProvider{plain: "la la la"},
	}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lyrics/genius/"+encodeSeg("song.mp3"), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "la la la") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lyrics/genius/"+encodeSeg("missing.mp3"), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"found":false`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLyricsByPathUnknownProviderReturnsNotFound(t *testing.T) {
	svc := &Service{LyricsProviders: map[string]LyricsProvider{}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lyrics/nope/"+encodeSeg("song.mp3"), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"found":false`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLyricsByMetadataRequiresArtistAndTitle(t *testing.T) {
	svc := &Service{LyricsProviders: map[string]LyricsProvider{
		"genius": &stubLyricsProvider{plain: "la la la"},
	}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lyrics/genius", strings.NewReader(`{"artist":"","title":"X"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/lyrics/genius", strings.NewReader(`{"artist":"Radiohead","title":"Airbag"}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "la la la") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
