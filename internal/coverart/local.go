package coverart

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"

	"github.com/hifiberry/acr/internal/model"
)

// localCandidates are the filenames checked, in order, for a
// directory-based cover image (spec §4.6).
var localCandidates = []string{"cover.jpg", "cover.png", "folder.jpg", "folder.png"}

// LocalProvider reads cover.jpg/folder.jpg or an embedded tag from a
// filesystem directory. Grounded on cmd/ingest's folder-image scan
// logic, generalized behind the Provider interface.
type LocalProvider struct {
	urlPrefix string // served URL prefix for resolved local paths
}

// NewLocalProvider builds a LocalProvider that reports found images as
// urlPrefix+"/"+<absolute path>.
func NewLocalProvider(urlPrefix string) *LocalProvider {
	return &LocalProvider{urlPrefix: urlPrefix}
}

// Info implements Provider.
func (p *LocalProvider) Info() model.ProviderInfo {
	return model.ProviderInfo{
		InternalName:     "local",
		DisplayName:      "Local Files",
		SupportedMethods: []model.Method{model.MethodAlbum, model.MethodURL},
	}
}

// ArtistCoverart implements Provider (unsupported method).
func (p *LocalProvider) ArtistCoverart(context.Context, string) []string { return nil }

// SongCoverart implements Provider (unsupported method).
func (p *LocalProvider) SongCoverart(context.Context, string, string) []string { return nil }

// AlbumCoverart treats title as a directory path and looks for a known
// cover filename, falling back to the first file in the directory whose
// embedded tag carries a picture.
func (p *LocalProvider) AlbumCoverart(ctx context.Context, dir, _ string, _ *int) []string {
	return p.scanDirectory(dir)
}

// URLCoverart treats url as a directory path, same lookup as AlbumCoverart.
func (p *LocalProvider) URLCoverart(ctx context.Context, dir string) []string {
	return p.scanDirectory(dir)
}

func (p *LocalProvider) scanDirectory(dir string) []string {
	for _, name := range localCandidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return []string{p.resolve(path)}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if url, ok := p.embeddedTagImage(path); ok {
			return []string{url}
		}
	}
	return nil
}

func (p *LocalProvider) embeddedTagImage(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil || m.Picture() == nil {
		return "", false
	}
	return p.resolve(path), true
}

func (p *LocalProvider) resolve(path string) string {
	return p.urlPrefix + "/" + filepath.ToSlash(path)
}
