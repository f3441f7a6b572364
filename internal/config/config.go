// Package config loads acrd's configuration file and carries the few
// environment-driven runtime knobs spec §6.5 allows alongside it.
// Generalizes pkg/config's Env(key, def) idiom from a Postgres DSN
// helper to the full settings surface this core needs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the on-disk configuration document selected via -c/--config
// (spec §6.5: the only load-bearing input besides logging flags).
type Config struct {
	HTTPAddr string `json:"http_addr"`

	ImageCacheDir string `json:"image_cache_dir"`

	AttrCache struct {
		Backend        string `json:"backend"` // "sqlite" | "redis"
		SQLitePath     string `json:"sqlite_path"`
		RedisAddr      string `json:"redis_addr"`
		RedisKeyPrefix string `json:"redis_key_prefix"`
	} `json:"attr_cache"`

	SecretStore struct {
		FilePath      string `json:"file_path"`
		EncryptionKey string `json:"encryption_key"`
	} `json:"secret_store"`

	HTTPFetchTimeoutSeconds int `json:"http_fetch_timeout_seconds"`

	LocalCoverArt struct {
		Dir       string `json:"dir"`
		URLPrefix string `json:"url_prefix"`
	} `json:"local_coverart"`

	Spotify struct {
		ProxyURL          string `json:"proxy_url"`
		ProxySecretHeader string `json:"proxy_secret_header"`
		ProxySecret       string `json:"proxy_secret"`
	} `json:"spotify"`

	LastFM struct {
		APIKey string `json:"api_key"`
	} `json:"lastfm"`

	TheAudioDB struct {
		APIKey string `json:"api_key"`
	} `json:"theaudiodb"`

	FanArtTV struct {
		APIKey string `json:"api_key"`
	} `json:"fanarttv"`

	ArtistImageOverrideDir string `json:"artist_image_override_dir"`

	GenreConfigPath string `json:"genre_config_path"`

	MPD struct {
		Addr               string   `json:"addr"`
		TimeoutSeconds      int      `json:"timeout_seconds"`
		ArtistSeparators    []string `json:"artist_separators"`
		MusicDir            string   `json:"music_dir"`
		ExtractEmbeddedArt  bool     `json:"extract_embedded_art"`
		EnhanceWithMetadata bool     `json:"enhance_with_metadata"`
	} `json:"mpd"`

	ShairportSync struct {
		UDPAddr           string `json:"udp_addr"`
		CoverArtDir       string `json:"coverart_dir"`
		CoverArtURLPrefix string `json:"coverart_url_prefix"`
		SystemdUnit       string `json:"systemd_unit"`
	} `json:"shairportsync"`
}

// defaults applies the values used when a JSON field is absent.
func defaults() Config {
	var c Config
	c.HTTPAddr = ":8080"
	c.ImageCacheDir = "./data/imagecache"
	c.AttrCache.Backend = "sqlite"
	c.AttrCache.SQLitePath = "./data/attrcache.db"
	c.AttrCache.RedisAddr = "localhost:6379"
	c.AttrCache.RedisKeyPrefix = "acr:"
	c.SecretStore.FilePath = "./data/secrets.json"
	c.HTTPFetchTimeoutSeconds = 10
	c.LocalCoverArt.URLPrefix = "/api/imagecache/local"
	c.MPD.Addr = "localhost:6600"
	c.MPD.TimeoutSeconds = 10
	c.MPD.ArtistSeparators = []string{" & ", " feat. ", " featuring "}
	c.ShairportSync.UDPAddr = ":5555"
	c.ShairportSync.CoverArtURLPrefix = "/api/imagecache/shairportsync"
	return c
}

// Load reads and parses the configuration file at path, merging it over
// the built-in defaults. A missing or malformed file is a Config-kind
// error (spec §7): fatal, the process must refuse to start.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SecretStore.EncryptionKey == "" {
		return fmt.Errorf("secret_store.encryption_key is required")
	}
	switch c.AttrCache.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("attr_cache.backend must be %q or %q, got %q", "sqlite", "redis", c.AttrCache.Backend)
	}
	return nil
}

// Env returns the value of the environment variable key, or def if
// unset -- retained for the handful of logging/runtime knobs spec §6.5
// allows outside the config file (verbosity, etc.), exactly as
// pkg/config.Env is used for DATABASE_URL in the teacher.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
