package coverart

import (
	"context"
	"testing"

	"github.com/hifiberry/acr/internal/model"
)

type stubProvider struct {
	info    model.ProviderInfo
	artists []string
}

func (s *stubProvider) Info() model.ProviderInfo { return s.info }
func (s *stubProvider) ArtistCoverart(context.Context, string) []string { return s.artists }
func (s *stubProvider) SongCoverart(context.Context, string, string) []string { return nil }
func (s *stubProvider) AlbumCoverart(context.Context, string, string, *int) []string { return nil }
func (s *stubProvider) URLCoverart(context.Context, string) []string { return nil }

func newStub(name string, methods []model.Method, urls []string) *stubProvider {
	return &stubProvider{
		info:    model.ProviderInfo{InternalName: name, DisplayName: name, SupportedMethods: methods},
		artists: urls,
	}
}

func TestRegistryFanOutPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(newStub("spotify", []model.Method{model.MethodArtist}, []string{"http://a"}))
	r.Register(newStub("lastfm", []model.Method{model.MethodArtist}, []string{"http://b"}))
	r.Register(newStub("theaudiodb", []model.Method{model.MethodArtist}, []string{"http://c"}))
	r.Register(newStub("fanarttv", []model.Method{model.MethodArtist}, []string{"http://d"}))

	results := r.ArtistCoverart(context.Background(), "Radiohead")
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}
	want := []string{"spotify", "lastfm", "theaudiodb", "fanarttv"}
	for i, r := range results {
		if r.Provider.InternalName != want[i] {
			t.Fatalf("position %d: got %s want %s", i, r.Provider.InternalName, want[i])
		}
		if len(r.Images) != 1 || r.Images[0].Grade == nil {
			t.Fatalf("expected one graded image, got %+v", r.Images)
		}
	}
}

func TestRegistrySkipsUnsupportedMethod(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(newStub("local", []model.Method{model.MethodAlbum}, nil))

	if got := r.ArtistCoverart(context.Background(), "x"); len(got) != 0 {
		t.Fatalf("expected no results for unsupported method, got %v", got)
	}
}

func TestRegistrySkipsEmptyResults(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(newStub("spotify", []model.Method{model.MethodArtist}, nil))
	r.Register(newStub("lastfm", []model.Method{model.MethodArtist}, []string{"http://b"}))

	results := r.ArtistCoverart(context.Background(), "x")
	if len(results) != 1 || results[0].Provider.InternalName != "lastfm" {
		t.Fatalf("got %+v", results)
	}
}

func TestGradePrefersLargerAreaAndPNG(t *testing.T) {
	small := model.ImageInfo{Width: intPtr(100), Height: intPtr(100), Format: strPtr("image/jpeg")}
	large := model.ImageInfo{Width: intPtr(1000), Height: intPtr(1000), Format: strPtr("image/png")}

	if Grade(small, "x") >= Grade(large, "x") {
		t.Fatal("expected larger PNG image to grade higher")
	}
}

func TestGradePenalizesTinyFiles(t *testing.T) {
	tiny := model.ImageInfo{SizeBytes: int64Ptr(100)}
	normal := model.ImageInfo{SizeBytes: int64Ptr(50_000)}
	if Grade(tiny, "x") >= Grade(normal, "x") {
		t.Fatal("expected tiny file to be penalized")
	}
}

func intPtr(v int) *int          { return &v }
func int64Ptr(v int64) *int64    { return &v }
func strPtr(v string) *string    { return &v }
