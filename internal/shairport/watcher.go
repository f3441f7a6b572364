package shairport

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hifiberry/acr/internal/imagecache"
)

// coverArtTTL is the expiry spec §4.10 Thread B assigns every
// ShairportSync-sourced cover image.
const coverArtTTL = 7 * 24 * time.Hour

// Watcher is Thread B from spec §4.10: it watches a directory
// ShairportSync drops cover-art files into, content-addresses each
// file by MD5, stores it in the image cache, and notifies the
// controller of the resulting URL. Grounded on the teacher's
// fsnotify watch loop (cmd/ingest's --watch mode).
type Watcher struct {
	dir        string
	cache      *imagecache.Cache
	controller *Controller
	urlPrefix  string
}

// NewWatcher builds a Watcher over dir, storing promoted images in
// cache under keys derived from their content hash, and publishing
// URLs as urlPrefix+"/"+hash.
func NewWatcher(dir string, cache *imagecache.Cache, controller *Controller, urlPrefix string) *Watcher {
	return &Watcher{dir: dir, cache: cache, controller: controller, urlPrefix: urlPrefix}
}

// Run performs an initial scan of dir, then watches for new/modified
// files until ctx is cancelled (spec §4.10's "initial scan on
// startup" requirement).
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	w.scanOnce()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFile(ev.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("shairport: cover art watcher error", "err", err)
		}
	}
}

func (w *Watcher) scanOnce() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Warn("shairport: initial cover art scan failed", "dir", w.dir, "err", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		w.handleFile(filepath.Join(w.dir, e.Name()))
	}
}

func (w *Watcher) handleFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	sum := md5.Sum(data)
	key := hex.EncodeToString(sum[:])
	mime := imagecache.DetectMIME(path, data)

	if err := w.cache.StoreWithTTL(key, data, mime, coverArtTTL); err != nil {
		slog.Warn("shairport: failed to store cover art", "path", path, "err", err)
		return
	}

	url := fmt.Sprintf("%s/%s", w.urlPrefix, key)
	w.controller.onCoverArt(url)
}
