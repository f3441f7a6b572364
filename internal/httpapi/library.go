package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hifiberry/acr/internal/model"
)

// albumView adds the "calculated fields" spec §4.11 names (cover-art
// URL, artist image URL) that are never persisted on the in-memory
// Album/Artist, only computed per read.
type albumView struct {
	ID          model.NumericOrString `json:"id"`
	Name        string                `json:"name"`
	Artists     []string              `json:"artists"`
	ReleaseDate *string               `json:"release_date,omitempty"`
	CoverArtURL string                `json:"cover_art_url"`
}

type artistView struct {
	ID            model.NumericOrString `json:"id"`
	Name          string                `json:"name"`
	ArtistImgURL  string                `json:"artist_image_url"`
}

func (s *Service) toAlbumView(a *model.Album) albumView {
	return albumView{
		ID:          a.ID,
		Name:        a.Name,
		Artists:     a.Artists(),
		ReleaseDate: a.ReleaseDate,
		CoverArtURL: "/api/coverart/album/" + encodeSeg(a.Name) + "/" + encodeSeg(firstOrEmpty(a.Artists())),
	}
}

func (s *Service) toArtistView(a *model.Artist) artistView {
	return artistView{
		ID:           a.ID,
		Name:         a.Name,
		ArtistImgURL: "/api/coverart/artist/" + encodeSeg(a.Name) + "/image",
	}
}

func firstOrEmpty(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func (s *Service) libraryAlbum(w http.ResponseWriter, r *http.Request) {
	id := model.NumericOrString(chi.URLParam(r, "id"))
	album, ok := s.Library.AlbumByID(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "album not found")
		return
	}
	writeJSON(w, http.StatusOK, s.toAlbumView(album))
}

func (s *Service) libraryAlbumCover(w http.ResponseWriter, r *http.Request) {
	id := model.NumericOrString(chi.URLParam(r, "id"))
	album, ok := s.Library.AlbumByID(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "album not found")
		return
	}
	data, mime, err := s.MPDCoverArt.GetAlbumCover(r.Context(), album)
	if err != nil {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Service) libraryArtist(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeSegment(w, r, "name")
	if !ok {
		return
	}
	artist, found := s.Library.ArtistByName(name)
	if !found {
		writeErr(w, http.StatusNotFound, "artist not found")
		return
	}
	writeJSON(w, http.StatusOK, s.toArtistView(artist))
}

func (s *Service) libraryArtistAlbums(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeSegment(w, r, "name")
	if !ok {
		return
	}
	artist, found := s.Library.ArtistByName(name)
	if !found {
		writeErr(w, http.StatusNotFound, "artist not found")
		return
	}
	albums := s.Library.AlbumsByArtistID(artist.ID)
	views := make([]albumView, 0, len(albums))
	for _, a := range albums {
		views = append(views, s.toAlbumView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Service) libraryStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":   s.Library.IsLoaded(),
		"progress": s.Library.Progress(),
	})
}
