package secretstore

import (
	"path/filepath"
	"testing"
)

func TestSetGetAndRemove(t *testing.T) {
	dir := t.TempDir()
	s := New()
	if err := s.Initialize("test_key_123", filepath.Join(dir, "store.json")); err != nil {
		t.Fatal(err)
	}

	if err := s.Set("username", "testuser"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("password", "p@ssw0rd"); err != nil {
		t.Fatal(err)
	}

	if got, err := s.Get("username"); err != nil || got != "testuser" {
		t.Fatalf("got %q, %v", got, err)
	}

	if ok, _ := s.Contains("username"); !ok {
		t.Fatal("expected username to exist")
	}
	if ok, _ := s.Contains("nonexistent"); ok {
		t.Fatal("expected nonexistent to be absent")
	}

	keys, err := s.ListKeys()
	if err != nil || len(keys) != 2 {
		t.Fatalf("keys=%v err=%v", keys, err)
	}

	if existed, err := s.Remove("username"); err != nil || !existed {
		t.Fatalf("existed=%v err=%v", existed, err)
	}
	if ok, _ := s.Contains("username"); ok {
		t.Fatal("expected username removed")
	}
	if _, err := s.Get("username"); err == nil {
		t.Fatal("expected error getting removed key")
	}
}

func TestChangeEncryptionKeyPreservesValues(t *testing.T) {
	dir := t.TempDir()
	s := New()
	if err := s.Initialize("test_key_123", filepath.Join(dir, "store.json")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("spotify_access_token", "abc"); err != nil {
		t.Fatal(err)
	}
	if err := s.ChangeEncryptionKey("k2"); err != nil {
		t.Fatal(err)
	}
	if got, err := s.Get("spotify_access_token"); err != nil || got != "abc" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")

	s1 := New()
	if err := s1.Initialize("k1", path); err != nil {
		t.Fatal(err)
	}
	if err := s1.Set("spotify_access_token", "abc"); err != nil {
		t.Fatal(err)
	}
	if err := s1.ChangeEncryptionKey("k2"); err != nil {
		t.Fatal(err)
	}

	s2 := New()
	if err := s2.Initialize("k2", path); err != nil {
		t.Fatal(err)
	}
	if got, err := s2.Get("spotify_access_token"); err != nil || got != "abc" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestOperationsBeforeInitializeFail(t *testing.T) {
	s := New()
	if _, err := s.Get("x"); err == nil {
		t.Fatal("expected ErrStoreLocked")
	}
	if err := s.Set("x", "y"); err == nil {
		t.Fatal("expected ErrStoreLocked")
	}
}

func TestInitializeRejectsEmptyKey(t *testing.T) {
	s := New()
	if err := s.Initialize("", ""); err == nil {
		t.Fatal("expected ErrInvalidKey")
	}
}
