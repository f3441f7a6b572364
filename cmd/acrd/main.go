package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/hifiberry/acr/internal/activeplayer"
	"github.com/hifiberry/acr/internal/artistmeta"
	"github.com/hifiberry/acr/internal/attrcache"
	acrconfig "github.com/hifiberry/acr/internal/config"
	"github.com/hifiberry/acr/internal/coverart"
	"github.com/hifiberry/acr/internal/genre"
	"github.com/hifiberry/acr/internal/httpapi"
	"github.com/hifiberry/acr/internal/httpfetch"
	"github.com/hifiberry/acr/internal/imagecache"
	"github.com/hifiberry/acr/internal/mpd"
	"github.com/hifiberry/acr/internal/oauth"
	"github.com/hifiberry/acr/internal/secretstore"
	"github.com/hifiberry/acr/internal/shairport"
)

var flagConfigPath string

var rootCmd = &cobra.Command{
	Use:   "acrd",
	Short: "Audio-playback control plane: metadata fusion pipeline daemon",
	RunE:  func(cmd *cobra.Command, args []string) error { return run(cmd.Context()) },
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfigPath, "config", "c", acrconfig.Env("ACRD_CONFIG", "./acrd.json"),
		"Path to the JSON configuration file (spec §6.5)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.SetContext(ctx)
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run wires every core subsystem (spec §4) and serves the thin HTTP
// contract (spec §6.1) until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := acrconfig.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// --- Secret store (C4) ---
	secrets := secretstore.New()
	if err := secrets.Initialize(cfg.SecretStore.EncryptionKey, cfg.SecretStore.FilePath); err != nil {
		return fmt.Errorf("secret store: %w", err)
	}

	// --- Attribute cache (C2) ---
	var attrBackend attrcache.Backend
	switch cfg.AttrCache.Backend {
	case "redis":
		kv := redis.NewClient(&redis.Options{Addr: cfg.AttrCache.RedisAddr})
		if err := kv.Ping(ctx).Err(); err != nil {
			slog.Warn("attrcache redis unreachable at startup", "err", err)
		}
		attrBackend = attrcache.NewRedisBackend(kv, cfg.AttrCache.RedisKeyPrefix)
	default:
		sqliteBackend, err := attrcache.OpenSQLite(cfg.AttrCache.SQLitePath)
		if err != nil {
			return fmt.Errorf("attrcache sqlite: %w", err)
		}
		attrBackend = sqliteBackend
	}
	attrs := attrcache.New(attrBackend)
	defer attrs.Close()

	// --- Image cache (C3) ---
	images, err := imagecache.New(cfg.ImageCacheDir)
	if err != nil {
		return fmt.Errorf("image cache: %w", err)
	}

	// --- HTTP fetch client (C5) ---
	fetchTimeout := time.Duration(cfg.HTTPFetchTimeoutSeconds) * time.Second
	fetchClient := httpfetch.New(fetchTimeout)

	// --- OAuth session managers (C4.12), Spotify + Last.fm ---
	oauthManagers := map[string]*oauth.Manager{
		"spotify": oauth.NewManager("spotify", secrets, fetchClient,
			cfg.Spotify.ProxyURL, cfg.Spotify.ProxySecretHeader, cfg.Spotify.ProxySecret),
		"lastfm": oauth.NewManager("lastfm", secrets, fetchClient, "", "", ""),
	}

	// --- Cover-art provider registry (C6) ---
	registry := coverart.NewRegistry(fetchClient)
	registry.Register(coverart.NewLocalProvider(cfg.LocalCoverArt.URLPrefix))
	registry.Register(coverart.NewSpotifyProvider(fetchClient, attrs, oauthManagers["spotify"]))
	lastfmProvider := coverart.NewLastFMProvider(fetchClient, attrs, cfg.LastFM.APIKey)
	registry.Register(lastfmProvider)
	audioDB := coverart.NewTheAudioDBProvider(fetchClient, attrs, cfg.TheAudioDB.APIKey)
	registry.Register(audioDB)
	fanart := coverart.NewFanArtTVProvider(fetchClient, attrs, cfg.FanArtTV.APIKey)
	registry.Register(fanart)

	// --- Artist metadata coordinator (C7) ---
	coordinator := artistmeta.NewCoordinator(attrs, audioDB, fanart, lastfmProvider)

	// --- Genre cleanup (C12) ---
	if cfg.GenreConfigPath != "" {
		cleanup, err := genre.FromFile(cfg.GenreConfigPath)
		if err != nil {
			slog.Warn("genre config unavailable, falling back to dedupe+sort", "err", err)
		} else {
			genre.Init(cleanup)
		}
	}

	// --- Active-player selector (C9) and ShairportSync pipeline (C10) ---
	selector := activeplayer.New()
	shairportController := shairport.NewController(cfg.ShairportSync.SystemdUnit, runSystemctl)
	selector.Register("shairportsync", shairportController)

	shairportWatcher := shairport.NewWatcher(cfg.ShairportSync.CoverArtDir, images, shairportController, cfg.ShairportSync.CoverArtURLPrefix)
	shairportListener := shairport.NewListener(cfg.ShairportSync.UDPAddr, shairportController)

	go func() {
		if err := shairportWatcher.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("shairportsync watcher stopped", "err", err)
		}
	}()
	go func() {
		if err := shairportListener.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("shairportsync listener stopped", "err", err)
		}
	}()

	// --- MPD library loader and image service (C11) ---
	mpdClient := mpd.New(cfg.MPD.Addr, time.Duration(cfg.MPD.TimeoutSeconds)*time.Second)
	library := mpd.NewLibrary()
	loader := mpd.NewLoader(mpdClient, cfg.MPD.ArtistSeparators, cfg.MPD.EnhanceWithMetadata, coordinator)
	mpdCoverArt := mpd.NewCoverArtService(mpdClient, images, cfg.MPD.MusicDir, cfg.MPD.ExtractEmbeddedArt)
	artistImages := mpd.NewArtistImageService(cfg.ArtistImageOverrideDir, images, registry, fetchClient)

	go func() {
		if err := loader.RefreshLibrary(ctx, library); err != nil {
			slog.Error("mpd library load failed", "err", err)
		}
	}()

	// --- HTTP API (spec §6.1) ---
	api := &httpapi.Service{
		Registry:      registry,
		ArtistImages:  artistImages,
		Coordinator:   coordinator,
		AttrCache:     attrs,
		ImageCache:    images,
		FetchClient:   fetchClient,
		Library:       library,
		MPDCoverArt:   mpdCoverArt,
		OAuthManagers: oauthManagers,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthz)
	r.Route("/api", api.Routes)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	slog.Info("listening", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// runSystemctl is the Controller's default systemd action runner
// (spec §4.10: ShairportSync is managed as a systemd unit).
func runSystemctl(action, unit string) error {
	return exec.Command("systemctl", action, unit).Run()
}

func slogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
