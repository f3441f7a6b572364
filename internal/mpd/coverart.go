package mpd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"

	"github.com/hifiberry/acr/internal/imagecache"
	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/util"
)

// fallbackMusicDirs are searched, in order after the configured music
// directory, when extracting embedded/folder art (spec §4.11 step 3).
var fallbackMusicDirs = []string{"/var/lib/mpd/music", "/music", "/home/mpd/music", "/srv/music"}

// folderImageNames are checked, in order, inside an album directory.
var folderImageNames = []string{"cover.jpg", "cover.png", "folder.jpg", "folder.png", "front.jpg", "front.png"}

// CoverArtService resolves album cover art via the fallback chain
// spec §4.11 describes: image cache, then MPD's albumart command, then
// filesystem extraction, caching any hit.
type CoverArtService struct {
	client          *Client
	cache           *imagecache.Cache
	configuredDir   string
	extractEnabled  bool
}

// NewCoverArtService builds a CoverArtService. configuredMusicDir is
// searched before the hard-coded fallback directories; extractEnabled
// gates step 3 (filesystem extraction).
func NewCoverArtService(client *Client, cache *imagecache.Cache, configuredMusicDir string, extractEnabled bool) *CoverArtService {
	return &CoverArtService{client: client, cache: cache, configuredDir: configuredMusicDir, extractEnabled: extractEnabled}
}

// GetAlbumCover resolves cover art for album, trying each step of the
// fallback chain in order and caching the first hit.
func (s *CoverArtService) GetAlbumCover(ctx context.Context, album *model.Album) ([]byte, string, error) {
	key := util.KeyFromAlbum(album.Artists(), album.Name)

	if data, mime, err := s.cache.Get(key); err == nil {
		return data, mime, nil
	}

	if data, mime, ok := s.fromMPD(ctx, album); ok {
		_ = s.cache.Store(key, data, mime, nil)
		return data, mime, nil
	}

	if s.extractEnabled {
		if data, mime, ok := s.fromFilesystem(album); ok {
			_ = s.cache.Store(key, data, mime, nil)
			return data, mime, nil
		}
	}

	return nil, "", errors.New("mpd: no cover art found")
}

func (s *CoverArtService) fromMPD(ctx context.Context, album *model.Album) ([]byte, string, bool) {
	tracks := album.Tracks()
	if len(tracks) == 0 {
		return nil, "", false
	}
	conn, err := s.client.Dial(ctx)
	if err != nil {
		return nil, "", false
	}
	defer conn.Close()

	data, err := conn.AlbumArt(tracks[0].URI)
	if err != nil || len(data) == 0 {
		return nil, "", false
	}
	return data, imagecache.DetectMIME(tracks[0].URI, data), true
}

func (s *CoverArtService) musicDirCandidates() []string {
	dirs := fallbackMusicDirs
	if s.configuredDir != "" {
		dirs = append([]string{s.configuredDir}, dirs...)
	}
	return dirs
}

func (s *CoverArtService) fromFilesystem(album *model.Album) ([]byte, string, bool) {
	tracks := album.Tracks()
	if len(tracks) == 0 {
		return nil, "", false
	}
	relParent := filepath.Dir(tracks[0].URI)

	candidates := s.musicDirCandidates()
	candidates = append(candidates, "")

	for _, base := range candidates {
		dir := relParent
		if base != "" {
			dir = filepath.Join(base, relParent)
		}
		if data, mime, ok := s.scanAlbumDir(dir, tracks[0].URI, base); ok {
			return data, mime, true
		}
	}
	return nil, "", false
}

func (s *CoverArtService) scanAlbumDir(dir, trackURI, base string) ([]byte, string, bool) {
	for _, name := range folderImageNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, imagecache.DetectMIME(path, data), true
		}
	}

	trackPath := filepath.Join(dir, filepath.Base(trackURI))
	f, err := os.Open(trackPath)
	if err != nil {
		return nil, "", false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil || m.Picture() == nil {
		return nil, "", false
	}
	pic := m.Picture()

	if writable(dir) {
		savePath := filepath.Join(dir, "cover.jpg")
		if err := os.WriteFile(savePath, pic.Data, 0o644); err != nil {
			slog.Debug("mpd: failed to save extracted cover", "path", savePath, "err", err)
		}
	}
	return pic.Data, pic.MIMEType, true
}

func writable(dir string) bool {
	probe := filepath.Join(dir, ".acr-write-test")
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(probe)
	return true
}
