package mpd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hifiberry/acr/internal/imagecache"
	"github.com/hifiberry/acr/internal/model"
)

func TestGetAlbumCoverFromCache(t *testing.T) {
	dir := t.TempDir()
	cache, err := imagecache.New(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	album := model.NewAlbum("OK Computer")
	album.SetArtists([]string{"Radiohead"})
	key := "radiohead/ok computer"
	if err := cache.Store(key, []byte("jpegdata"), "image/jpeg", nil); err != nil {
		t.Fatal(err)
	}

	svc := NewCoverArtService(New("127.0.0.1:1", 0), cache, "", false)
	data, mime, err := svc.GetAlbumCover(context.Background(), album)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "jpegdata" || mime != "image/jpeg" {
		t.Fatalf("got %q %q", data, mime)
	}
}

func TestGetAlbumCoverFromFilesystemFolderImage(t *testing.T) {
	musicDir := t.TempDir()
	albumDir := filepath.Join(musicDir, "Radiohead", "OK Computer")
	if err := os.MkdirAll(albumDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(albumDir, "cover.jpg"), []byte{0xFF, 0xD8, 0xFF}, 0o644); err != nil {
		t.Fatal(err)
	}

	cacheDir := t.TempDir()
	cache, err := imagecache.New(cacheDir)
	if err != nil {
		t.Fatal(err)
	}

	album := model.NewAlbum("OK Computer")
	album.SetArtists([]string{"Radiohead"})
	album.AddTrack(model.Track{Name: "Airbag", URI: "Radiohead/OK Computer/01 Airbag.mp3"})

	svc := NewCoverArtService(New("127.0.0.1:1", 0), cache, musicDir, true)
	data, _, err := svc.GetAlbumCover(context.Background(), album)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Fatalf("got %d bytes", len(data))
	}
}
