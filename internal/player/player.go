// Package player defines the PlayerController contract and the
// synchronous event fan-out every backend embeds (spec §4.8, C8).
package player

import (
	"sync"
	"time"

	"github.com/hifiberry/acr/internal/model"
)

// Command is a control-plane command sent to a controller.
type Command struct {
	Kind   CommandKind
	Seek   float64
	Loop   model.LoopMode
	Shuffle bool
	Volume int
	URI    string
}

// CommandKind enumerates spec §4.8's command set.
type CommandKind string

const (
	CmdPlay         CommandKind = "Play"
	CmdPause        CommandKind = "Pause"
	CmdStop         CommandKind = "Stop"
	CmdNext         CommandKind = "Next"
	CmdPrevious     CommandKind = "Previous"
	CmdSeek         CommandKind = "Seek"
	CmdSetLoopMode  CommandKind = "SetLoopMode"
	CmdSetShuffle   CommandKind = "SetShuffle"
	CmdSetVolume    CommandKind = "SetVolume"
	CmdPlayUri      CommandKind = "PlayUri"
)

// Listener receives controller events, invoked synchronously on the
// publishing thread in registration order (spec §4.8, §5). A listener
// must not block for long and must not re-enter the controller.
type Listener interface {
	OnStateChanged(state model.PlaybackState)
	OnSongChanged(song *model.Song)
	OnPositionChanged(seconds float64)
	OnQueueChanged(queue []model.Track)
	OnCapabilitiesChanged(caps map[model.Capability]struct{})
	OnLoopModeChanged(mode model.LoopMode)
	OnShuffleChanged(shuffle bool)
	OnDatabaseUpdate(progress *float64)
}

// Controller is the interface every backend implements.
type Controller interface {
	GetCapabilities() map[model.Capability]struct{}
	GetSong() *model.Song
	GetQueue() []model.Track
	GetLoopMode() model.LoopMode
	GetPlaybackState() model.PlaybackState
	GetPosition() float64
	GetShuffle() bool
	GetPlayerName() string
	GetAliases() []string
	GetPlayerID() string
	GetLastSeen() time.Time
	GetMetaKeys() []string
	GetMetadataValue(key string) (string, bool)

	SendCommand(cmd Command) bool

	Start() error
	Stop() error

	AddListener(l Listener)
	RemoveListener(l Listener)
}

// BaseController owns the listener registry and the synchronous notify
// methods every concrete controller embeds (spec §4.8).
type BaseController struct {
	mu        sync.RWMutex
	listeners []Listener
}

// AddListener registers l; events are delivered in registration order.
func (b *BaseController) AddListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// RemoveListener unregisters l.
func (b *BaseController) RemoveListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

func (b *BaseController) snapshot() []Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Listener(nil), b.listeners...)
}

// NotifyStateChanged fans out a state change to every listener, in
// registration order, synchronously on the calling goroutine.
func (b *BaseController) NotifyStateChanged(state model.PlaybackState) {
	for _, l := range b.snapshot() {
		l.OnStateChanged(state)
	}
}

// NotifySongChanged fans out a song change.
func (b *BaseController) NotifySongChanged(song *model.Song) {
	for _, l := range b.snapshot() {
		l.OnSongChanged(song)
	}
}

// NotifyPositionChanged fans out a position change.
func (b *BaseController) NotifyPositionChanged(seconds float64) {
	for _, l := range b.snapshot() {
		l.OnPositionChanged(seconds)
	}
}

// NotifyQueueChanged fans out a queue change.
func (b *BaseController) NotifyQueueChanged(queue []model.Track) {
	for _, l := range b.snapshot() {
		l.OnQueueChanged(queue)
	}
}

// NotifyCapabilitiesChanged fans out a capability-set change.
func (b *BaseController) NotifyCapabilitiesChanged(caps map[model.Capability]struct{}) {
	for _, l := range b.snapshot() {
		l.OnCapabilitiesChanged(caps)
	}
}

// NotifyLoopModeChanged fans out a loop-mode change.
func (b *BaseController) NotifyLoopModeChanged(mode model.LoopMode) {
	for _, l := range b.snapshot() {
		l.OnLoopModeChanged(mode)
	}
}

// NotifyShuffleChanged fans out a shuffle-flag change.
func (b *BaseController) NotifyShuffleChanged(shuffle bool) {
	for _, l := range b.snapshot() {
		l.OnShuffleChanged(shuffle)
	}
}

// NotifyDatabaseUpdate fans out a library-update-progress event.
func (b *BaseController) NotifyDatabaseUpdate(progress *float64) {
	for _, l := range b.snapshot() {
		l.OnDatabaseUpdate(progress)
	}
}
