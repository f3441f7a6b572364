package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPluginActionsEmptyByDefault(t *testing.T) {
	svc := &Service{}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins/actions", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestPluginActionsListsConfigured(t *testing.T) {
	svc := &Service{Plugins: []PluginInfo{{Name: "shutdown", Version: "1.0"}}}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins/actions", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "shutdown") {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
