// Package imagecache implements the content-addressed byte-blob store
// with optional TTL (spec §4.3, C3). Grounded on pkg/objstore's
// interface shape and pkg/objstore/local.go's filesystem
// implementation, adapted to add MIME sniffing and a sidecar-based
// expiry the teacher's object store never needed.
package imagecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Get when the path is absent or expired.
var ErrNotFound = errors.New("imagecache: not found")

// Cache stores image blobs on disk under root, with a ".meta.json"
// sidecar per entry recording MIME type and optional absolute expiry.
type Cache struct {
	root string
	now  func() time.Time
}

// New creates a Cache rooted at dir, creating it if necessary.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{root: dir, now: time.Now}, nil
}

type sidecar struct {
	MIME    string `json:"mime"`
	Expiry  *int64 `json:"expiry,omitempty"`
}

func (c *Cache) blobPath(key string) string {
	return filepath.Join(c.root, filepath.FromSlash(key))
}

func (c *Cache) sidecarPath(key string) string {
	return c.blobPath(key) + ".meta.json"
}

// Store writes bytes under path with an optional explicit MIME type
// and optional absolute expiry. If mime is empty it is sniffed via
// DetectMIME.
func (c *Cache) Store(path string, data []byte, mime string, expiry *time.Time) error {
	if mime == "" {
		mime = DetectMIME(path, data)
	}
	dest := c.blobPath(path)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}

	sc := sidecar{MIME: mime}
	if expiry != nil {
		ts := expiry.Unix()
		sc.Expiry = &ts
	}
	raw, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(c.sidecarPath(path), raw, 0o644)
}

// StoreWithTTL is a convenience wrapper computing an absolute expiry
// from now + ttl.
func (c *Cache) StoreWithTTL(path string, data []byte, mime string, ttl time.Duration) error {
	expiry := c.now().Add(ttl)
	return c.Store(path, data, mime, &expiry)
}

// Get reads bytes and MIME for path. An expired entry is deleted and
// reported as ErrNotFound (spec §8 property 11).
func (c *Cache) Get(path string) ([]byte, string, error) {
	scRaw, err := os.ReadFile(c.sidecarPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	var sc sidecar
	if err := json.Unmarshal(scRaw, &sc); err != nil {
		return nil, "", err
	}
	if sc.Expiry != nil && c.now().Unix() >= *sc.Expiry {
		_ = c.Delete(path)
		return nil, "", ErrNotFound
	}

	data, err := os.ReadFile(c.blobPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return data, sc.MIME, nil
}

// Delete removes an entry and its sidecar.
func (c *Cache) Delete(path string) error {
	err1 := os.Remove(c.blobPath(path))
	err2 := os.Remove(c.sidecarPath(path))
	if err1 != nil && !errors.Is(err1, os.ErrNotExist) {
		return err1
	}
	if err2 != nil && !errors.Is(err2, os.ErrNotExist) {
		return err2
	}
	return nil
}

// CountProviderFiles counts blob files under base whose name contains
// provider, used by multi-image downloaders to decide whether to skip
// (spec §4.3).
func (c *Cache) CountProviderFiles(base, provider string) (int, error) {
	dir := filepath.Join(c.root, filepath.FromSlash(base))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".meta.json") {
			continue
		}
		if strings.Contains(e.Name(), provider) {
			count++
		}
	}
	return count, nil
}

// DetectMIME sniffs magic bytes first, falling back to file extension,
// falling back to application/octet-stream (spec §4.3's literal table).
func DetectMIME(path string, data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "image/png"
	case len(data) >= 4 && string(data[:4]) == "GIF8":
		return "image/gif"
	case len(data) >= 2 && string(data[:2]) == "BM":
		return "image/bmp"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	case len(data) >= 12 && string(data[4:8]) == "ftyp" && strings.Contains(string(data[8:12]), "heic"):
		return "image/heic"
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	}

	return "application/octet-stream"
}

// ProbeDimensions decodes width/height for formats recognized by
// DetectMIME, using stdlib decoders for jpeg/png/gif and
// golang.org/x/image for webp/bmp (grounded on derat-nup's use of
// golang.org/x/image).
func ProbeDimensions(mime string, data []byte) (width, height int, ok bool) {
	cfg, _, err := probeConfig(mime, data)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

func ensureMIMEKnown(mime string) error {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp":
		return nil
	}
	return fmt.Errorf("imagecache: unsupported mime %q for dimension probing", mime)
}
