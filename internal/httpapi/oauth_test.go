package httpapi

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/oauth"
	"github.com/hifiberry/acr/internal/secretstore"
)

func newOAuthTestService(t *testing.T) *Service {
	t.Helper()

	store := secretstore.New()
	if err := store.Initialize("test-encryption-key", filepath.Join(t.TempDir(), "secrets.json")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	client := httpfetch.New(0)
	mgr := oauth.NewManager("spotify", store, client, "", "", "")

	return &Service{
		OAuthManagers: map[string]*oauth.Manager{"spotify": mgr},
	}
}

func TestOAuthStatusUnauthenticatedByDefault(t *testing.T) {
	svc := newOAuthTestService(t)
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/oauth/spotify/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestOAuthStoreThenStatusAuthenticated(t *testing.T) {
	svc := newOAuthTestService(t)
	router := newTestRouter(svc)

	body := strings.NewReader(`{"access_token":"abc","refresh_token":"def","expires_in":3600}`)
	req := httptest.NewRequest(http.MethodPost, "/oauth/spotify/tokens", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("store status=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/oauth/spotify/status", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"authenticated":true`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestOAuthDisconnectClearsStatus(t *testing.T) {
	svc := newOAuthTestService(t)
	router := newTestRouter(svc)

	body := strings.NewReader(`{"access_token":"abc","expires_in":60}`)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/oauth/spotify/tokens", body))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/oauth/spotify/disconnect", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("disconnect status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/spotify/status", nil))
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Fatalf("expected unauthenticated after disconnect, got %s", rec.Body.String())
	}
}

func TestOAuthUnknownProviderReturns404(t *testing.T) {
	svc := newOAuthTestService(t)
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/lastfm/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}

func TestOAuthStoreTokensRejectsMissingAccessToken(t *testing.T) {
	svc := newOAuthTestService(t)
	router := newTestRouter(svc)

	body := strings.NewReader(`{"expires_in":60}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/oauth/spotify/tokens", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}
