// Package oauth implements the secret-backed OAuth token manager
// (spec §4.12): tokens live in the encrypted secret store; a cached
// access token is reused until it is within 60s of expiry, at which
// point a configured refresh proxy is called.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/secretstore"
)

// expiryMargin is the "expires in > 60s" threshold spec §4.12 names.
const expiryMargin = 60 * time.Second

// Tokens is the persisted token triple.
type Tokens struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager is one named OAuth session (e.g. "spotify", "lastfm"),
// backed by internal/secretstore and a configured refresh proxy.
type Manager struct {
	name       string
	store      *secretstore.Store
	client     *httpfetch.Client
	proxyURL   string
	proxySecretHeader string
	proxySecret string
	now        func() time.Time
}

// NewManager builds a Manager for the named session. proxyURL receives
// a POST with the refresh token in the body; proxySecretHeader/
// proxySecret are sent as a custom authentication header (spec §4.12).
func NewManager(name string, store *secretstore.Store, client *httpfetch.Client, proxyURL, proxySecretHeader, proxySecret string) *Manager {
	return &Manager{
		name: name, store: store, client: client,
		proxyURL: proxyURL, proxySecretHeader: proxySecretHeader, proxySecret: proxySecret,
		now: time.Now,
	}
}

func (m *Manager) key() string { return "oauth::" + m.name }

// StoreTokens persists t in the secret store.
func (m *Manager) StoreTokens(t Tokens) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("oauth: encode tokens: %w", err)
	}
	return m.store.Set(m.key(), string(raw))
}

// GetTokens returns the currently-stored tokens, if any.
func (m *Manager) GetTokens() (Tokens, bool, error) {
	raw, err := m.store.Get(m.key())
	if errors.Is(err, secretstore.ErrKeyNotFound) {
		return Tokens{}, false, nil
	}
	if err != nil {
		return Tokens{}, false, err
	}
	var t Tokens
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Tokens{}, false, fmt.Errorf("oauth: decode tokens: %w", err)
	}
	return t, true, nil
}

// Disconnect removes the stored session.
func (m *Manager) Disconnect() error {
	_, err := m.store.Remove(m.key())
	return err
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Access    string `json:"access_token"`
	Refresh   string `json:"refresh_token"`
	ExpiresIn int64  `json:"expires_in"`
}

// EnsureValidToken returns a currently-valid access token, refreshing
// via the proxy when the cached one expires within expiryMargin (spec
// §4.12). Returns an error if no session is stored or refresh fails.
func (m *Manager) EnsureValidToken(ctx context.Context) (string, error) {
	tokens, ok, err := m.GetTokens()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("oauth: no %s session stored", m.name)
	}

	if tokens.ExpiresAt.Sub(m.now()) > expiryMargin {
		return tokens.Access, nil
	}

	var resp refreshResponse
	headers := map[string]string{m.proxySecretHeader: m.proxySecret}
	err = m.client.PostJSONValueWithHeaders(ctx, m.proxyURL, headers, refreshRequest{RefreshToken: tokens.Refresh}, &resp)
	if err != nil {
		return "", fmt.Errorf("oauth: refresh %s: %w", m.name, err)
	}

	refresh := resp.Refresh
	if refresh == "" {
		refresh = tokens.Refresh
	}
	newTokens := Tokens{
		Access:    resp.Access,
		Refresh:   refresh,
		ExpiresAt: m.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if err := m.StoreTokens(newTokens); err != nil {
		return "", err
	}
	return newTokens.Access, nil
}
