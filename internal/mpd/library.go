package mpd

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/hifiberry/acr/internal/artistmeta"
	"github.com/hifiberry/acr/internal/model"
)

// Library is the in-memory snapshot produced by Loader.RefreshLibrary
// (spec §4.11): albums/artists keyed by name, linked by a bidirectional
// relation. Grounded on cmd/ingest's in-memory scan-state container
// (sync.RWMutex-guarded maps) and on pkg/store/models.go's Album/Artist
// field shapes, adapted from Postgres rows to pure in-memory structs.
type Library struct {
	mu       sync.RWMutex
	albums   map[string]*model.Album
	artists  map[string]*model.Artist
	relation *model.AlbumArtistRelation
	progress float64
	loaded   bool
}

// NewLibrary builds an empty, not-yet-loaded Library.
func NewLibrary() *Library {
	return &Library{
		albums:   make(map[string]*model.Album),
		artists:  make(map[string]*model.Artist),
		relation: model.NewAlbumArtistRelation(),
	}
}

// Progress returns the current load progress in [0.0, 1.0].
func (l *Library) Progress() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.progress
}

// IsLoaded reports whether a full load has completed.
func (l *Library) IsLoaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// AlbumByID returns an album snapshot by ID.
func (l *Library) AlbumByID(id model.NumericOrString) (*model.Album, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, a := range l.albums {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// AlbumsByArtistID returns every album linked to artistID.
func (l *Library) AlbumsByArtistID(artistID model.NumericOrString) []*model.Album {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*model.Album
	for _, albumID := range l.relation.AlbumsForArtist(artistID) {
		for _, a := range l.albums {
			if a.ID == albumID {
				out = append(out, a)
			}
		}
	}
	return out
}

// AlbumByArtistAndName looks up an album by exact artist+name.
func (l *Library) AlbumByArtistAndName(artist, name string) (*model.Album, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.albums[name]
	if !ok {
		return nil, false
	}
	for _, existing := range a.Artists() {
		if existing == artist {
			return a, true
		}
	}
	return nil, false
}

// ArtistByName looks up an artist by exact name.
func (l *Library) ArtistByName(name string) (*model.Artist, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.artists[name]
	return a, ok
}

// Artists returns a snapshot of every artist, for the background sweep.
func (l *Library) Artists() []*model.Artist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*model.Artist, 0, len(l.artists))
	for _, a := range l.artists {
		out = append(out, a)
	}
	return out
}

// record is one parsed "file:" entry from listallinfo.
type record struct {
	file        string
	artist      string
	albumArtist string
	album       string
	title       string
	track       string
	disc        string
	date        string
}

func parseRecords(lines []string) []record {
	var out []record
	var cur *record
	for _, line := range lines {
		key, value, ok := parseKV(line)
		if !ok {
			continue
		}
		switch key {
		case "file":
			if cur != nil {
				out = append(out, *cur)
			}
			cur = &record{file: value}
		case "Artist":
			if cur != nil {
				cur.artist = value
			}
		case "AlbumArtist":
			if cur != nil {
				cur.albumArtist = value
			}
		case "Album":
			if cur != nil {
				cur.album = value
			}
		case "Title":
			if cur != nil {
				cur.title = value
			}
		case "Track":
			if cur != nil {
				cur.track = value
			}
		case "Disc":
			if cur != nil {
				cur.disc = value
			}
		case "Date":
			if cur != nil {
				cur.date = value
			}
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// splitArtistNames splits a combined artist-credit string on every
// configured separator, returning the union of resulting sub-names
// (spec §4.11's "splitting rules... resulting artist set is the union
// over all splits").
func splitArtistNames(name string, separators []string) []string {
	parts := []string{name}
	for _, sep := range separators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Loader drives Library.RefreshLibrary against one MPD server.
type Loader struct {
	client      *Client
	separators  []string
	enhance     bool
	coordinator *artistmeta.Coordinator
}

// NewLoader builds a Loader. If coordinator is non-nil and enhance is
// true, RefreshLibrary launches the background metadata sweep on
// completion (spec §4.11).
func NewLoader(client *Client, separators []string, enhance bool, coordinator *artistmeta.Coordinator) *Loader {
	return &Loader{client: client, separators: separators, enhance: enhance, coordinator: coordinator}
}

// RefreshLibrary queries the MPD server and rebuilds lib's snapshot
// from scratch, updating progress as records are processed.
func (ld *Loader) RefreshLibrary(ctx context.Context, lib *Library) error {
	conn, err := ld.client.Dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	lines, err := conn.ListAllInfo()
	if err != nil {
		return err
	}
	records := parseRecords(lines)

	albums := make(map[string]*model.Album)
	artists := make(map[string]*model.Artist)
	relation := model.NewAlbumArtistRelation()

	total := len(records)
	for i, rec := range records {
		if rec.album == "" {
			continue
		}
		creditName := rec.albumArtist
		if creditName == "" {
			creditName = rec.artist
		}

		album, ok := albums[rec.album]
		if !ok {
			album = model.NewAlbum(rec.album)
			if rec.date != "" {
				date := rec.date
				album.ReleaseDate = &date
			}
			albums[rec.album] = album
		}

		trackNum, _ := strconv.Atoi(rec.track)
		album.AddTrack(model.Track{
			DiscNumber:  rec.disc,
			TrackNumber: trackNum,
			Name:        rec.title,
			Artist:      rec.artist,
			URI:         rec.file,
		})

		for _, artistName := range splitArtistNames(creditName, ld.separators) {
			artist, ok := artists[artistName]
			if !ok {
				artist = model.NewArtist(artistName)
				artists[artistName] = artist
			}
			album.AddArtist(artistName)
			relation.Link(album.ID, artist.ID)
		}

		if total > 0 {
			lib.mu.Lock()
			lib.progress = float64(i+1) / float64(total)
			lib.mu.Unlock()
		}
	}

	lib.mu.Lock()
	lib.albums = albums
	lib.artists = artists
	lib.relation = relation
	lib.progress = 1.0
	lib.loaded = true
	lib.mu.Unlock()

	if ld.enhance && ld.coordinator != nil {
		go func() {
			ld.coordinator.Sweep(context.Background(), lib.Artists())
			slog.Info("mpd: artist metadata sweep complete", "artists", len(lib.Artists()))
		}()
	}

	return nil
}
