package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "acrd.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaultsOverMinimalFile(t *testing.T) {
	path := writeConfig(t, `{"secret_store": {"encryption_key": "k1"}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("got %q", cfg.HTTPAddr)
	}
	if cfg.AttrCache.Backend != "sqlite" {
		t.Fatalf("got %q", cfg.AttrCache.Backend)
	}
	if cfg.SecretStore.EncryptionKey != "k1" {
		t.Fatalf("got %q", cfg.SecretStore.EncryptionKey)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"http_addr": ":9090",
		"secret_store": {"encryption_key": "k1"},
		"attr_cache": {"backend": "redis", "redis_addr": "redis:6379"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.AttrCache.Backend != "redis" || cfg.AttrCache.RedisAddr != "redis:6379" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoadMissingEncryptionKeyFails(t *testing.T) {
	path := writeConfig(t, `{}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing encryption_key")
	}
}

func TestLoadInvalidBackendFails(t *testing.T) {
	path := writeConfig(t, `{"secret_store": {"encryption_key": "k1"}, "attr_cache": {"backend": "mongo"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid backend")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
