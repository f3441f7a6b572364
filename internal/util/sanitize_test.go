package util

import "testing"

func TestSafeTruncateASCII(t *testing.T) {
	input := "Hello, World!"
	if got := SafeTruncate(input, 5); got != "Hello" {
		t.Fatalf("got %q", got)
	}
	if got := SafeTruncate(input, 15); got != "Hello, World!" {
		t.Fatalf("got %q", got)
	}
	if got := SafeTruncate(input, 0); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSafeTruncateUTF8(t *testing.T) {
	input := "Hello, 世界!"
	if got := SafeTruncate(input, 8); got != "Hello, 世" {
		t.Fatalf("got %q", got)
	}
	if got := SafeTruncate(input, 7); got != "Hello, " {
		t.Fatalf("got %q", got)
	}
	if got := SafeTruncate(input, 15); got != "Hello, 世界!" {
		t.Fatalf("got %q", got)
	}
}

func TestSafeTruncateEdgeCases(t *testing.T) {
	if got := SafeTruncate("", 5); got != "" {
		t.Fatalf("got %q", got)
	}
	input := "¥$"
	if got := SafeTruncate(input, 1); got != "¥" {
		t.Fatalf("got %q", got)
	}
	if got := SafeTruncate(input, 2); got != "¥$" {
		t.Fatalf("got %q", got)
	}
}

func TestFilenameFromString(t *testing.T) {
	if got := FilenameFromString("  Hello   World!! "); got != "hello world" {
		t.Fatalf("got %q", got)
	}
	if got := FilenameFromString("Café Müller"); got != "cafe muller" {
		t.Fatalf("got %q", got)
	}
}

func TestKeyFromAlbum(t *testing.T) {
	if got := KeyFromAlbum(nil, "OK Computer"); got != "unknown/ok computer" {
		t.Fatalf("got %q", got)
	}
	if got := KeyFromAlbum([]string{"Simon", "Garfunkel"}, "Bridge"); got != "simon+garfunkel/bridge" {
		t.Fatalf("got %q", got)
	}
}

func TestBase64RoundTrip(t *testing.T) {
	in := []byte("Radiohead/OK Computer")
	enc := EncodeURLSafe(in)
	dec, err := DecodeURLSafe(enc)
	if err != nil {
		t.Fatal(err)
	}
	if string(dec) != string(in) {
		t.Fatalf("got %q want %q", dec, in)
	}
}

func TestDecodeURLSafeMalformed(t *testing.T) {
	if _, err := DecodeURLSafe("not base64!!!"); err == nil {
		t.Fatal("expected error for malformed base64")
	}
}
