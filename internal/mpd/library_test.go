package mpd

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestRefreshLibraryBuildsAlbumsAndArtists(t *testing.T) {
	addr := startFakeMPD(t, func(c net.Conn) {
		c.Write([]byte("OK MPD 0.23.5\n"))
		buf := make([]byte, 512)
		c.Read(buf)
		c.Write([]byte(
			"file: Radiohead/OK Computer/01 Airbag.mp3\n" +
				"Artist: Radiohead\n" +
				"Album: OK Computer\n" +
				"Title: Airbag\n" +
				"Track: 1\n" +
				"Date: 1997\n" +
				"file: Simon and Garfunkel/Bridge/01 Bridge.mp3\n" +
				"Artist: Simon & Garfunkel\n" +
				"Album: Bridge Over Troubled Water\n" +
				"Title: Bridge Over Troubled Water\n" +
				"Track: 1\n" +
				"OK\n"))
	})

	client := New(addr, 2*time.Second)
	loader := NewLoader(client, []string{" & "}, false, nil)
	lib := NewLibrary()

	if err := loader.RefreshLibrary(context.Background(), lib); err != nil {
		t.Fatal(err)
	}

	if !lib.IsLoaded() || lib.Progress() != 1.0 {
		t.Fatalf("expected loaded, got loaded=%v progress=%v", lib.IsLoaded(), lib.Progress())
	}

	if _, ok := lib.AlbumByArtistAndName("Radiohead", "OK Computer"); !ok {
		t.Fatal("expected OK Computer album linked to Radiohead")
	}

	if _, ok := lib.ArtistByName("Simon"); !ok {
		t.Fatal("expected split artist 'Simon'")
	}
	if _, ok := lib.ArtistByName("Garfunkel"); !ok {
		t.Fatal("expected split artist 'Garfunkel'")
	}

	simon, _ := lib.ArtistByName("Simon")
	albums := lib.AlbumsByArtistID(simon.ID)
	if len(albums) != 1 || albums[0].Name != "Bridge Over Troubled Water" {
		t.Fatalf("got %+v", albums)
	}
}
