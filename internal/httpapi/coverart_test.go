package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hifiberry/acr/internal/attrcache"
	"github.com/hifiberry/acr/internal/coverart"
	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/imagecache"
	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/mpd"
	"github.com/hifiberry/acr/internal/util"
)

type stubCoverartProvider struct {
	info model.ProviderInfo
}

func (s *stubCoverartProvider) Info() model.ProviderInfo { return s.info }
func (s *stubCoverartProvider) ArtistCoverart(context.Context, string) []string {
	return []string{"http://example.test/a.png"}
}
func (s *stubCoverartProvider) SongCoverart(context.Context, string, string) []string {
	return []string{"http://example.test/s.png"}
}
func (s *stubCoverartProvider) AlbumCoverart(context.Context, string, string, *int) []string {
	return []string{"http://example.test/al.png"}
}
func (s *stubCoverartProvider) URLCoverart(context.Context, string) []string {
	return []string{"http://example.test/u.png"}
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "attr.db")
	backend, err := attrcache.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	imgDir := t.TempDir()
	imgCache, err := imagecache.New(imgDir)
	if err != nil {
		t.Fatalf("imagecache.New: %v", err)
	}

	registry := coverart.NewRegistry(nil)
	registry.Register(&stubCoverartProvider{
		info: model.ProviderInfo{
			InternalName:     "stub",
			DisplayName:      "Stub",
			SupportedMethods: []model.Method{model.MethodArtist, model.MethodSong, model.MethodAlbum, model.MethodURL},
		},
	})

	fetchClient := httpfetch.New(0)
	artistImages := mpd.NewArtistImageService(t.TempDir(), imgCache, registry, fetchClient)

	return &Service{
		Registry:     registry,
		ArtistImages: artistImages,
		AttrCache:    attrcache.New(backend),
		ImageCache:   imgCache,
		FetchClient:  fetchClient,
	}
}

func newTestRouter(s *Service) *chi.Mux {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

func encodeSeg(s string) string { return util.EncodeURLSafe([]byte(s)) }

func TestCoverartArtistReturnsGradedResults(t *testing.T) {
	svc := newTestService(t)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/coverart/artist/"+encodeSeg("Radiohead"), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !containsAll(rec.Body.String(), `"stub"`, "a.png", `"grade"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCoverartArtistRejectsMalformedSegment(t *testing.T) {
	svc := newTestService(t)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/coverart/artist/not-base64!!!", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCoverartAlbumWithYear(t *testing.T) {
	svc := newTestService(t)
	router := newTestRouter(svc)

	path := "/coverart/album/" + encodeSeg("OK Computer") + "/" + encodeSeg("Radiohead") + "/1997"
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCoverartMethodsListsRegisteredProvider(t *testing.T) {
	svc := newTestService(t)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/coverart/methods", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !containsAll(rec.Body.String(), "Artist", `"stub"`) {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCoverartArtistUpdateRejectsMissingURL(t *testing.T) {
	svc := newTestService(t)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/coverart/artist/"+encodeSeg("Radiohead")+"/update", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func containsAll(haystack string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(haystack, n) {
			return false
		}
	}
	return true
}
