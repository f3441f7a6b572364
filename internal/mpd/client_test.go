package mpd

import (
	"context"
	"net"
	"testing"
	"time"
)

func startFakeMPD(t *testing.T, handler func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()
	return ln.Addr().String()
}

func TestDialReadsBanner(t *testing.T) {
	addr := startFakeMPD(t, func(c net.Conn) {
		c.Write([]byte("OK MPD 0.23.5\n"))
		buf := make([]byte, 256)
		c.Read(buf)
	})

	client := New(addr, 2*time.Second)
	conn, err := client.Dial(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
}

func TestCommandReturnsLinesUntilOK(t *testing.T) {
	addr := startFakeMPD(t, func(c net.Conn) {
		c.Write([]byte("OK MPD 0.23.5\n"))
		buf := make([]byte, 256)
		c.Read(buf)
		c.Write([]byte("volume: 50\nrepeat: 0\nOK\n"))
	})

	client := New(addr, 2*time.Second)
	conn, err := client.Dial(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	lines, err := conn.Command("status")
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "volume: 50" {
		t.Fatalf("got %v", lines)
	}
}

func TestCommandReturnsErrorOnACK(t *testing.T) {
	addr := startFakeMPD(t, func(c net.Conn) {
		c.Write([]byte("OK MPD 0.23.5\n"))
		buf := make([]byte, 256)
		c.Read(buf)
		c.Write([]byte("ACK [5@0] {} unknown command\n"))
	})

	client := New(addr, 2*time.Second)
	conn, err := client.Dial(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Command("bogus"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseRecordsGroupsByFile(t *testing.T) {
	lines := []string{
		"file: a/b.mp3",
		"Artist: Radiohead",
		"Album: OK Computer",
		"Title: Airbag",
		"Track: 1",
		"file: a/c.mp3",
		"Artist: Radiohead",
		"Album: OK Computer",
		"Title: Paranoid Android",
		"Track: 2",
	}
	recs := parseRecords(lines)
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].title != "Airbag" || recs[1].title != "Paranoid Android" {
		t.Fatalf("got %+v", recs)
	}
}

func TestSplitArtistNamesUnion(t *testing.T) {
	got := splitArtistNames("Simon & Garfunkel", []string{" & ", " feat. "})
	if len(got) != 2 || got[0] != "Simon" || got[1] != "Garfunkel" {
		t.Fatalf("got %v", got)
	}
}
