package attrcache

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "attrs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { backend.Close() })
	return New(backend)
}

type artistMeta struct {
	MBIDs []string `json:"mbids"`
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	want := artistMeta{MBIDs: []string{"mbid-1"}}
	if err := c.Set(ctx, "artist::metadata::radiohead", want); err != nil {
		t.Fatal(err)
	}

	var got artistMeta
	ok, err := c.Get(ctx, "artist::metadata::radiohead", &got)
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if len(got.MBIDs) != 1 || got.MBIDs[0] != "mbid-1" {
		t.Fatalf("got %+v", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)
	var got artistMeta
	ok, err := c.Get(context.Background(), "missing", &got)
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestNegativeEntry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if found, _ := c.IsNotFound(ctx, "artist::metadata::unknown"); found {
		t.Fatal("expected no negative entry yet")
	}
	if err := c.SetNotFound(ctx, "artist::metadata::unknown"); err != nil {
		t.Fatal(err)
	}
	if found, err := c.IsNotFound(ctx, "artist::metadata::unknown"); err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
}
