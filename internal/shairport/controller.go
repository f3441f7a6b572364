package shairport

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/player"
)

// Controller is the ShairportSync PlayerController: owns the pending
// and current Song state machine described in spec §4.10 and embeds
// player.BaseController for event fan-out.
type Controller struct {
	player.BaseController

	mu      sync.Mutex
	state   model.PlaybackState
	current *model.Song
	pending *model.Song

	unitName string // optional systemd unit for Play/Pause/Stop
	systemctl func(action, unit string) error

	playerID string
	lastSeen time.Time
}

// NewController builds an idle ShairportSync controller. If
// systemdUnit is non-empty, Play/Pause/Stop translate to
// `systemctl restart|stop|stop <unit>` (spec §4.10's systemd hook);
// runner performs the systemctl call and is injectable for tests; a
// nil runner makes SendCommand reject every command. playerID is a fresh random identifier per
// process instance, distinguishing restarts in any front end that
// caches controller identity across reconnects.
func NewController(systemdUnit string, runner func(action, unit string) error) *Controller {
	return &Controller{state: model.StateStopped, unitName: systemdUnit, systemctl: runner, playerID: uuid.NewString()}
}

func ptr[T any](v T) *T { return &v }

// handleMessage applies the state machine in spec §4.10 to one parsed
// Message. Returns nothing; all effects are via BaseController
// notifications.
func (c *Controller) handleMessage(msg Message) {
	switch msg.Kind {
	case MsgControl:
		c.handleControl(msg)
	case MsgChunkData:
		// ssncPICT chunk data is ignored by the pipeline -- cover art
		// arrives via the filesystem watcher (Thread B), not the wire.
		if msg.DataType == "ssncPICT" {
			return
		}
		c.handleChunkText(msg)
	case MsgSessionStart:
		c.mu.Lock()
		c.pending = nil
		c.current = nil
		c.mu.Unlock()
	case MsgSessionEnd:
		c.stopSession()
	case MsgUnknown:
		slog.Debug("shairport: unknown message", "bytes", len(msg.Raw))
	}
}

func (c *Controller) handleControl(msg Message) {
	switch msg.Code {
	case "ssncpaus":
		c.setState(model.StatePaused)
	case "ssncpres", "ssncabeg", "ssncpbeg":
		c.setState(model.StatePlaying)
	case "ssncaend":
		c.stopSession()
	case "ssncmdst":
		c.mu.Lock()
		if c.pending == nil {
			c.pending = &model.Song{}
		}
		c.mu.Unlock()
		c.setState(model.StatePlaying)
	case "ssncmden":
		c.promotePending()
	case "coreasar":
		c.updatePending(func(s *model.Song) { s.Artist = ptr(msg.Text) })
	case "coreasal":
		c.updatePending(func(s *model.Song) { s.Album = ptr(msg.Text) })
	case "coreminm":
		c.updatePending(func(s *model.Song) { s.Title = ptr(msg.Text) })
	case "coreastn":
		n := int(msg.U16)
		c.updatePending(func(s *model.Song) { s.TrackNumber = ptr(n) })
	case "coreastc":
		n := int(msg.U16)
		c.updatePending(func(s *model.Song) { s.TotalTracks = ptr(n) })
	case "coreastm":
		sec := float64(msg.U32) / 1000.0
		c.updatePending(func(s *model.Song) { s.DurationSec = ptr(sec) })
	case "coremper", "ssncprgr":
		// Internal/progress fields: tracked but do not affect song display.
	}
}

// handleChunkText applies text/binary chunk payloads mapping known
// codes to pending-song fields (spec §4.10).
func (c *Controller) handleChunkText(msg Message) {
	switch msg.DataType {
	case "ssncasar":
		v := string(msg.Data)
		c.updatePending(func(s *model.Song) { s.Artist = ptr(v) })
	case "ssncasal":
		v := string(msg.Data)
		c.updatePending(func(s *model.Song) { s.Album = ptr(v) })
	case "ssncastn":
		if len(msg.Data) == 2 {
			n := int(uint16(msg.Data[0])<<8 | uint16(msg.Data[1]))
			c.updatePending(func(s *model.Song) { s.TrackNumber = ptr(n) })
			return
		}
		v := string(msg.Data)
		c.updatePending(func(s *model.Song) { s.Title = ptr(v) })
	case "ssncastc":
		if len(msg.Data) == 2 {
			n := int(uint16(msg.Data[0])<<8 | uint16(msg.Data[1]))
			c.updatePending(func(s *model.Song) { s.TotalTracks = ptr(n) })
		}
	case "ssncascp":
		v := string(msg.Data)
		c.updatePending(func(s *model.Song) { s.Composer = ptr(v) })
	case "ssncasaa":
		v := string(msg.Data)
		c.updatePending(func(s *model.Song) { s.AlbumArtist = ptr(v) })
	case "ssncasgn":
		v := string(msg.Data)
		c.updatePending(func(s *model.Song) { s.Genre = ptr(v) })
	case "ssncasdt":
		if n, err := strconv.Atoi(string(msg.Data)); err == nil {
			c.updatePending(func(s *model.Song) { s.Year = ptr(n) })
		}
	}
}

func (c *Controller) updatePending(mutate func(*model.Song)) {
	c.mu.Lock()
	if c.pending == nil {
		c.pending = &model.Song{}
	}
	mutate(c.pending)
	c.mu.Unlock()
}

// promotePending moves pending -> current if it carries significant
// metadata, notifying song change exactly once; clears pending either way.
func (c *Controller) promotePending() {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	var toNotify *model.Song
	if p.HasSignificantMetadata() {
		c.current = p
		toNotify = p.Clone()
	}
	c.mu.Unlock()

	if toNotify != nil {
		c.NotifySongChanged(toNotify)
	}
}

func (c *Controller) setState(state model.PlaybackState) {
	c.mu.Lock()
	changed := c.state != state
	c.state = state
	c.mu.Unlock()
	if changed {
		c.NotifyStateChanged(state)
	}
}

func (c *Controller) stopSession() {
	c.mu.Lock()
	c.current = nil
	c.pending = nil
	c.state = model.StateStopped
	c.mu.Unlock()
	c.NotifyStateChanged(model.StateStopped)
}

// onCoverArt is invoked by the directory watcher when a new cover-art
// file has been promoted into the image cache (spec §4.10 Thread B).
func (c *Controller) onCoverArt(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.current != nil:
		c.current.CoverArtURL = ptr(url)
		notified := c.current.Clone()
		c.mu.Unlock()
		c.NotifySongChanged(notified)
		c.mu.Lock()
	case c.pending != nil:
		c.pending.CoverArtURL = ptr(url)
	default:
		c.current = &model.Song{CoverArtURL: ptr(url)}
		notified := c.current.Clone()
		c.mu.Unlock()
		c.NotifySongChanged(notified)
		c.mu.Lock()
	}
}

// GetSong implements player.Controller.
func (c *Controller) GetSong() *model.Song {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// GetPlaybackState implements player.Controller.
func (c *Controller) GetPlaybackState() model.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GetQueue implements player.Controller (ShairportSync has no queue).
func (c *Controller) GetQueue() []model.Track { return nil }

// GetLoopMode implements player.Controller.
func (c *Controller) GetLoopMode() model.LoopMode { return model.LoopNone }

// GetPosition implements player.Controller (no position tracking over
// the metadata-only wire protocol).
func (c *Controller) GetPosition() float64 { return 0 }

// GetShuffle implements player.Controller.
func (c *Controller) GetShuffle() bool { return false }

// GetPlayerName implements player.Controller.
func (c *Controller) GetPlayerName() string { return "shairport-sync" }

// GetAliases implements player.Controller.
func (c *Controller) GetAliases() []string { return []string{"airplay"} }

// GetPlayerID implements player.Controller.
func (c *Controller) GetPlayerID() string { return c.playerID }

// GetLastSeen implements player.Controller.
func (c *Controller) GetLastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// GetMetaKeys implements player.Controller.
func (c *Controller) GetMetaKeys() []string { return nil }

// GetMetadataValue implements player.Controller.
func (c *Controller) GetMetadataValue(string) (string, bool) { return "", false }

// GetCapabilities implements player.Controller.
func (c *Controller) GetCapabilities() map[model.Capability]struct{} {
	caps := map[model.Capability]struct{}{model.CapMetadata: {}, model.CapAlbumArt: {}}
	if c.unitName != "" {
		caps[model.CapPlay] = struct{}{}
		caps[model.CapPause] = struct{}{}
		caps[model.CapStop] = struct{}{}
	}
	return caps
}

// SendCommand implements player.Controller: Play/Pause/Stop translate
// to systemctl actions when a unit is configured; otherwise the
// controller is passive and every command is rejected (spec §4.10).
func (c *Controller) SendCommand(cmd player.Command) bool {
	if c.unitName == "" || c.systemctl == nil {
		return false
	}
	switch cmd.Kind {
	case player.CmdPlay:
		return c.systemctl("restart", c.unitName) == nil
	case player.CmdPause, player.CmdStop:
		return c.systemctl("stop", c.unitName) == nil
	default:
		return false
	}
}
