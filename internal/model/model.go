// Package model holds the shared data types that flow between the
// player controllers, the library loader, and the metadata coordinator.
package model

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// NumericOrString identifies an Album or Artist. The reference design
// hashes names into a stable ID rather than assigning sequential
// integers, so two loads of the same library agree on IDs.
type NumericOrString string

// NewID derives a stable ID from a name. Empty names still produce a
// deterministic (if degenerate) ID rather than panicking.
func NewID(name string) NumericOrString {
	h := xxhash.Sum64String(strings.ToLower(strings.TrimSpace(name)))
	return NumericOrString(fmt.Sprintf("%016x", h))
}

// Song is the currently-playing or queued item reported by a player
// controller. It is immutable from the consumer's perspective: every
// field change is published as a fresh Song via NotifySongChanged.
type Song struct {
	Title       *string
	Artist      *string
	Album       *string
	AlbumArtist *string
	Composer    *string
	Genre       *string
	Genres      []string
	TrackNumber *int
	TotalTracks *int
	Year        *int
	DurationSec *float64
	URI         *string
	CoverArtURL *string
	Metadata    map[string]string
}

// HasSignificantMetadata reports whether at least one of title, artist
// or album is set -- the threshold the ShairportSync pipeline uses to
// decide whether a pending song is worth promoting (spec §4.10).
func (s *Song) HasSignificantMetadata() bool {
	if s == nil {
		return false
	}
	return s.Title != nil || s.Artist != nil || s.Album != nil
}

// Valid checks the track-number invariant: 1 <= track_number <= total_tracks
// whenever both are present.
func (s *Song) Valid() bool {
	if s == nil || s.TrackNumber == nil || s.TotalTracks == nil {
		return true
	}
	return *s.TrackNumber >= 1 && *s.TrackNumber <= *s.TotalTracks
}

// Clone returns a deep-enough copy so callers may safely mutate the
// clone without affecting a previously-published Song.
func (s *Song) Clone() *Song {
	if s == nil {
		return nil
	}
	c := *s
	if s.Genres != nil {
		c.Genres = append([]string(nil), s.Genres...)
	}
	if s.Metadata != nil {
		c.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Track is a queue entry: simpler than Song, disc number may be
// alphanumeric (e.g. "1/2").
type Track struct {
	DiscNumber  string
	TrackNumber int
	Name        string
	Artist      string
	URI         string
}

// Album carries a shared, mutable, ordered artist-name list and track
// list; both are guarded so concurrent readers (API handlers) and
// writers (the library loader) never race.
type Album struct {
	ID          NumericOrString
	Name        string
	ReleaseDate *string
	CoverArtURL *string
	URI         *string

	mu      sync.RWMutex
	artists []string
	tracks  []Track
}

// NewAlbum builds an Album with a stable, name-derived ID.
func NewAlbum(name string) *Album {
	return &Album{ID: NewID(name), Name: name}
}

// Artists returns a snapshot of the artist name list.
func (a *Album) Artists() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.artists...)
}

// SetArtists replaces the artist list.
func (a *Album) SetArtists(names []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.artists = append([]string(nil), names...)
}

// AddArtist appends an artist name if not already present.
func (a *Album) AddArtist(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.artists {
		if existing == name {
			return
		}
	}
	a.artists = append(a.artists, name)
}

// ArtistsString flattens the artist list under the given separator.
// The Album invariant (spec §3) requires this be re-derivable from the
// artist list at any time using the same separator, so it is always
// computed rather than cached.
func (a *Album) ArtistsString(separator string) string {
	return strings.Join(a.Artists(), separator)
}

// Tracks returns a snapshot of the ordered track list.
func (a *Album) Tracks() []Track {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Track(nil), a.tracks...)
}

// SetTracks replaces the track list.
func (a *Album) SetTracks(tracks []Track) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracks = append([]Track(nil), tracks...)
}

// AddTrack appends a track.
func (a *Album) AddTrack(t Track) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracks = append(a.tracks, t)
}

// ArtistMetadata holds everything the artist-metadata coordinator (C7)
// fills in via the provider registry.
type ArtistMetadata struct {
	MBIDs           []string
	ThumbnailURLs   []string
	BannerURLs      []string
	Biography       *string
	BiographySource *string
	Genres          []string
	IsPartialMatch  bool
}

// Artist carries the is_multi invariant described in spec §3/§8
// property 2: is_multi iff len(mbid) > 1 or is_partial_match; when
// is_multi, metadata other than MBIDs/IsPartialMatch is cleared.
type Artist struct {
	ID   NumericOrString
	Name string

	mu       sync.RWMutex
	isMulti  bool
	metadata ArtistMetadata
}

// NewArtist builds an Artist with a stable, name-derived ID.
func NewArtist(name string) *Artist {
	return &Artist{ID: NewID(name), Name: name}
}

// IsMulti reports the current is_multi flag.
func (a *Artist) IsMulti() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.isMulti
}

// Metadata returns a copy of the current metadata block.
func (a *Artist) Metadata() ArtistMetadata {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m := a.metadata
	m.MBIDs = append([]string(nil), a.metadata.MBIDs...)
	m.ThumbnailURLs = append([]string(nil), a.metadata.ThumbnailURLs...)
	m.BannerURLs = append([]string(nil), a.metadata.BannerURLs...)
	m.Genres = append([]string(nil), a.metadata.Genres...)
	return m
}

// SetMetadata installs a new metadata block and recomputes is_multi,
// enforcing the invariant: when is_multi becomes true, everything but
// MBIDs and IsPartialMatch is cleared.
func (a *Artist) SetMetadata(m ArtistMetadata) {
	a.mu.Lock()
	defer a.mu.Unlock()
	isMulti := len(m.MBIDs) > 1 || m.IsPartialMatch
	if isMulti {
		m = ArtistMetadata{MBIDs: m.MBIDs, IsPartialMatch: m.IsPartialMatch}
	}
	a.metadata = m
	a.isMulti = isMulti
}

// AlbumArtistRelation keeps the bidirectional album<->artist mapping
// consistent under every mutation (spec §3, §8 property 3).
type AlbumArtistRelation struct {
	mu             sync.RWMutex
	albumToArtists map[NumericOrString]map[NumericOrString]struct{}
	artistToAlbums map[NumericOrString]map[NumericOrString]struct{}
}

// NewAlbumArtistRelation builds an empty relation.
func NewAlbumArtistRelation() *AlbumArtistRelation {
	return &AlbumArtistRelation{
		albumToArtists: make(map[NumericOrString]map[NumericOrString]struct{}),
		artistToAlbums: make(map[NumericOrString]map[NumericOrString]struct{}),
	}
}

// Link records album<->artist in both directions.
func (r *AlbumArtistRelation) Link(album, artist NumericOrString) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.albumToArtists[album] == nil {
		r.albumToArtists[album] = make(map[NumericOrString]struct{})
	}
	r.albumToArtists[album][artist] = struct{}{}
	if r.artistToAlbums[artist] == nil {
		r.artistToAlbums[artist] = make(map[NumericOrString]struct{})
	}
	r.artistToAlbums[artist][album] = struct{}{}
}

// Unlink removes album<->artist in both directions.
func (r *AlbumArtistRelation) Unlink(album, artist NumericOrString) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.albumToArtists[album], artist)
	delete(r.artistToAlbums[artist], album)
}

// ArtistsForAlbum returns the artist IDs linked to an album.
func (r *AlbumArtistRelation) ArtistsForAlbum(album NumericOrString) []NumericOrString {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NumericOrString, 0, len(r.albumToArtists[album]))
	for a := range r.albumToArtists[album] {
		out = append(out, a)
	}
	return out
}

// AlbumsForArtist returns the album IDs linked to an artist.
func (r *AlbumArtistRelation) AlbumsForArtist(artist NumericOrString) []NumericOrString {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NumericOrString, 0, len(r.artistToAlbums[artist]))
	for a := range r.artistToAlbums[artist] {
		out = append(out, a)
	}
	return out
}

// ImageInfo is a graded image candidate.
type ImageInfo struct {
	URL       string  `json:"url"`
	Width     *int    `json:"width,omitempty"`
	Height    *int    `json:"height,omitempty"`
	SizeBytes *int64  `json:"size_bytes,omitempty"`
	Format    *string `json:"format,omitempty"`
	Grade     *int    `json:"grade,omitempty"`
}

// ProviderInfo describes a registered cover-art/metadata provider.
type ProviderInfo struct {
	InternalName     string
	DisplayName      string
	SupportedMethods []Method
}

// Method is a provider capability.
type Method string

const (
	MethodArtist Method = "Artist"
	MethodSong   Method = "Song"
	MethodAlbum  Method = "Album"
	MethodURL    Method = "Url"
)

// CoverartResult is one provider's graded image list.
type CoverartResult struct {
	Provider ProviderInfo `json:"provider"`
	Images   []ImageInfo  `json:"images"`
}

// PlaybackState enumerates the player state machine.
type PlaybackState string

const (
	StateStopped   PlaybackState = "Stopped"
	StatePlaying   PlaybackState = "Playing"
	StatePaused    PlaybackState = "Paused"
	StateBuffering PlaybackState = "Buffering"
	StateUnknown   PlaybackState = "Unknown"
)

// LoopMode enumerates repeat modes.
type LoopMode string

const (
	LoopNone    LoopMode = "None"
	LoopTrack   LoopMode = "Track"
	LoopPlaylist LoopMode = "Playlist"
)

// PlayerState is the coarse state/loop/shuffle tuple.
type PlayerState struct {
	State    PlaybackState
	Loop     LoopMode
	Shuffle  bool
}

// Capability enumerates the fixed set of controller capabilities
// (spec §4.8).
type Capability string

const (
	CapPlay         Capability = "Play"
	CapPause        Capability = "Pause"
	CapStop         Capability = "Stop"
	CapNext         Capability = "Next"
	CapPrevious     Capability = "Previous"
	CapSeek         Capability = "Seek"
	CapSetLoopMode  Capability = "SetLoopMode"
	CapSetShuffle   Capability = "SetShuffle"
	CapSetVolume    Capability = "SetVolume"
	CapMetadata     Capability = "Metadata"
	CapAlbumArt     Capability = "AlbumArt"
	CapQueue        Capability = "Queue"
	CapPlayUri      Capability = "PlayUri"
)
