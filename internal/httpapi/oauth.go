package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hifiberry/acr/internal/oauth"
)

// oauthManager resolves the named OAuth session, writing 404 if the
// provider was never configured (spec §6.1: "OAuth management for
// Spotify and Last.fm").
func (s *Service) oauthManager(w http.ResponseWriter, provider string) (*oauth.Manager, bool) {
	m, ok := s.OAuthManagers[provider]
	if !ok {
		writeErr(w, http.StatusNotFound, "unknown oauth provider "+provider)
		return nil, false
	}
	return m, true
}

// oauthConfig reports whether a session is configured for provider, so
// the front end knows whether to offer the connect flow. The actual
// authorize-URL construction belongs to the out-of-scope OAuth flow
// (spec §1); this endpoint only reports readiness.
func (s *Service) oauthConfig(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if _, ok := s.oauthManager(w, provider); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"configured": true})
}

type storeTokensRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Service) oauthStoreTokens(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	m, ok := s.oauthManager(w, provider)
	if !ok {
		return
	}

	var req storeTokensRequest
	if err := readJSON(r, &req); err != nil || req.AccessToken == "" {
		writeErr(w, http.StatusBadRequest, "body must include access_token")
		return
	}

	tokens := oauth.Tokens{
		Access:    req.AccessToken,
		Refresh:   req.RefreshToken,
		ExpiresAt: time.Now().Add(time.Duration(req.ExpiresIn) * time.Second),
	}
	if err := m.StoreTokens(tokens); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "expires_at": tokens.ExpiresAt.Unix()})
}

func (s *Service) oauthStatus(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	m, ok := s.oauthManager(w, provider)
	if !ok {
		return
	}

	tokens, found, err := m.GetTokens()
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "expires_at": tokens.ExpiresAt.Unix()})
}

func (s *Service) oauthDisconnect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	m, ok := s.oauthManager(w, provider)
	if !ok {
		return
	}
	if err := m.Disconnect(); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
