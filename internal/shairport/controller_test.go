package shairport

import (
	"testing"

	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/player"
)

type recordingListener struct {
	player.BaseListener
	states []model.PlaybackState
	songs  []*model.Song
}

func (r *recordingListener) OnStateChanged(s model.PlaybackState) { r.states = append(r.states, s) }
func (r *recordingListener) OnSongChanged(s *model.Song)          { r.songs = append(r.songs, s) }

func TestControllerPauseResumeState(t *testing.T) {
	c := NewController("", nil)
	rec := &recordingListener{}
	c.AddListener(rec)

	c.handleMessage(Message{Kind: MsgControl, Code: "ssncpres"})
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncpaus"})

	if len(rec.states) != 2 || rec.states[0] != model.StatePlaying || rec.states[1] != model.StatePaused {
		t.Fatalf("got %v", rec.states)
	}
}

func TestControllerPromotesPendingOnMetadataEnd(t *testing.T) {
	c := NewController("", nil)
	rec := &recordingListener{}
	c.AddListener(rec)

	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmdst"})
	c.handleMessage(Message{Kind: MsgControl, Code: "coreasar", Text: "Radiohead"})
	c.handleMessage(Message{Kind: MsgControl, Code: "coreminm", Text: "Karma Police"})
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmden"})

	if len(rec.songs) != 1 {
		t.Fatalf("expected one song-changed notification, got %d", len(rec.songs))
	}
	got := rec.songs[0]
	if got.Artist == nil || *got.Artist != "Radiohead" || got.Title == nil || *got.Title != "Karma Police" {
		t.Fatalf("got %+v", got)
	}

	song := c.GetSong()
	if song == nil || *song.Artist != "Radiohead" {
		t.Fatalf("GetSong mismatch: %+v", song)
	}
}

func TestControllerDoesNotPromoteEmptyPending(t *testing.T) {
	c := NewController("", nil)
	rec := &recordingListener{}
	c.AddListener(rec)

	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmdst"})
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmden"})

	if len(rec.songs) != 0 {
		t.Fatalf("expected no promotion for empty metadata, got %+v", rec.songs)
	}
	if c.GetSong() != nil {
		t.Fatalf("expected nil current song")
	}
}

func TestControllerSessionEndClearsState(t *testing.T) {
	c := NewController("", nil)
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmdst"})
	c.handleMessage(Message{Kind: MsgControl, Code: "coreasar", Text: "X"})
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmden"})
	c.handleMessage(Message{Kind: MsgSessionEnd})

	if c.GetSong() != nil {
		t.Fatal("expected song cleared on session end")
	}
	if c.GetPlaybackState() != model.StateStopped {
		t.Fatalf("got %v", c.GetPlaybackState())
	}
}

func TestControllerChunkedTextUpdatesPending(t *testing.T) {
	c := NewController("", nil)
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmdst"})
	c.handleMessage(Message{Kind: MsgChunkData, DataType: "ssncasal", Data: []byte("OK Computer")})
	c.handleMessage(Message{Kind: MsgControl, Code: "coreasar", Text: "Radiohead"})
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmden"})

	song := c.GetSong()
	if song == nil || song.Album == nil || *song.Album != "OK Computer" {
		t.Fatalf("got %+v", song)
	}
}

func TestControllerIgnoresPictureChunkData(t *testing.T) {
	c := NewController("", nil)
	rec := &recordingListener{}
	c.AddListener(rec)

	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmdst"})
	c.handleMessage(Message{Kind: MsgChunkData, DataType: "ssncPICT", Data: []byte{0xFF, 0xD8}})
	c.handleMessage(Message{Kind: MsgControl, Code: "coreasar", Text: "X"})
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmden"})

	song := c.GetSong()
	if song == nil || song.CoverArtURL != nil {
		t.Fatalf("expected no cover art set from wire PICT chunk, got %+v", song)
	}
}

func TestControllerCoverArtAttachesToCurrentSong(t *testing.T) {
	c := NewController("", nil)
	rec := &recordingListener{}
	c.AddListener(rec)

	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmdst"})
	c.handleMessage(Message{Kind: MsgControl, Code: "coreasar", Text: "Radiohead"})
	c.handleMessage(Message{Kind: MsgControl, Code: "ssncmden"})

	c.onCoverArt("http://example/covers/abc123")

	song := c.GetSong()
	if song == nil || song.CoverArtURL == nil || *song.CoverArtURL != "http://example/covers/abc123" {
		t.Fatalf("got %+v", song)
	}
}

func TestControllerSendCommandWithoutSystemdUnitFails(t *testing.T) {
	c := NewController("", nil)
	if c.SendCommand(player.Command{Kind: player.CmdPlay}) {
		t.Fatal("expected false with no systemd unit configured")
	}
}

func TestControllerSendCommandWithSystemdUnit(t *testing.T) {
	var calls []string
	c := NewController("shairport-sync", func(action, unit string) error {
		calls = append(calls, action+":"+unit)
		return nil
	})

	if !c.SendCommand(player.Command{Kind: player.CmdPlay}) {
		t.Fatal("expected Play to succeed")
	}
	if !c.SendCommand(player.Command{Kind: player.CmdPause}) {
		t.Fatal("expected Pause to succeed")
	}
	want := []string{"restart:shairport-sync", "stop:shairport-sync"}
	if len(calls) != len(want) || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("got %v", calls)
	}
}
