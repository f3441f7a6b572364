// Package activeplayer implements the active-player selector and
// audio-controller singleton (spec §4.9, C9): it picks one active
// controller among many, re-broadcasts its events, and routes
// commands to it.
package activeplayer

import (
	"sync"
	"time"

	"github.com/hifiberry/acr/internal/model"
	"github.com/hifiberry/acr/internal/player"
)

type registeredPlayer struct {
	name             string
	controller       player.Controller
	registrationSeq  int
	lastPlayingAt    time.Time
	lastNonStoppedAt time.Time
}

// Selector owns a list of named controllers and re-broadcasts the
// currently-active one's events to its own subscribers.
type Selector struct {
	player.BaseController

	mu       sync.RWMutex
	players  map[string]*registeredPlayer
	seq      int
	activeID string
	now      func() time.Time
}

// New builds an empty Selector.
func New() *Selector {
	return &Selector{players: make(map[string]*registeredPlayer), now: time.Now}
}

// Register adds a named controller and subscribes to its events so the
// selector can observe state transitions and re-elect the active
// player.
func (s *Selector) Register(name string, c player.Controller) {
	s.mu.Lock()
	s.seq++
	rp := &registeredPlayer{name: name, controller: c, registrationSeq: s.seq}
	s.players[name] = rp
	s.mu.Unlock()

	c.AddListener(&selectorListener{selector: s, name: name})
}

// selectorListener bridges one controller's events back into the
// Selector's re-election/rebroadcast logic.
type selectorListener struct {
	player.BaseListener
	selector *Selector
	name     string
}

func (l *selectorListener) OnStateChanged(state model.PlaybackState) {
	l.selector.onStateChanged(l.name, state)
}

func (l *selectorListener) OnSongChanged(song *model.Song) {
	l.selector.maybeRebroadcast(l.name, func() { l.selector.NotifySongChanged(song) })
}

func (l *selectorListener) OnPositionChanged(seconds float64) {
	l.selector.maybeRebroadcast(l.name, func() { l.selector.NotifyPositionChanged(seconds) })
}

func (l *selectorListener) OnQueueChanged(queue []model.Track) {
	l.selector.maybeRebroadcast(l.name, func() { l.selector.NotifyQueueChanged(queue) })
}

func (l *selectorListener) OnCapabilitiesChanged(caps map[model.Capability]struct{}) {
	l.selector.maybeRebroadcast(l.name, func() { l.selector.NotifyCapabilitiesChanged(caps) })
}

func (l *selectorListener) OnLoopModeChanged(mode model.LoopMode) {
	l.selector.maybeRebroadcast(l.name, func() { l.selector.NotifyLoopModeChanged(mode) })
}

func (l *selectorListener) OnShuffleChanged(shuffle bool) {
	l.selector.maybeRebroadcast(l.name, func() { l.selector.NotifyShuffleChanged(shuffle) })
}

// onStateChanged updates recency bookkeeping, re-elects the active
// player per spec §4.9's policy, and rebroadcasts if name is (still)
// active.
func (s *Selector) onStateChanged(name string, state model.PlaybackState) {
	s.mu.Lock()
	rp, ok := s.players[name]
	if !ok {
		s.mu.Unlock()
		return
	}
	now := s.now()
	if state == model.StatePlaying {
		rp.lastPlayingAt = now
	}
	if state != model.StateStopped {
		rp.lastNonStoppedAt = now
	}
	newActive := s.electLocked()
	changed := newActive != s.activeID
	s.activeID = newActive
	active := s.players[s.activeID]
	s.mu.Unlock()

	if changed && active != nil {
		s.rebroadcastAll(active.controller)
	} else if name == s.activeIDSnapshot() {
		s.NotifyStateChanged(state)
	}
}

func (s *Selector) activeIDSnapshot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// electLocked implements spec §4.9's policy: most-recently-transitioned
// -to-Playing wins; failing that, most-recently-non-Stopped; ties
// broken by registration order. Must be called with s.mu held.
func (s *Selector) electLocked() string {
	var best *registeredPlayer
	for _, rp := range s.players {
		if rp.lastPlayingAt.IsZero() {
			continue
		}
		if best == nil || rp.lastPlayingAt.After(best.lastPlayingAt) ||
			(rp.lastPlayingAt.Equal(best.lastPlayingAt) && rp.registrationSeq < best.registrationSeq) {
			best = rp
		}
	}
	if best != nil {
		return best.name
	}
	for _, rp := range s.players {
		if rp.lastNonStoppedAt.IsZero() {
			continue
		}
		if best == nil || rp.lastNonStoppedAt.After(best.lastNonStoppedAt) ||
			(rp.lastNonStoppedAt.Equal(best.lastNonStoppedAt) && rp.registrationSeq < best.registrationSeq) {
			best = rp
		}
	}
	if best != nil {
		return best.name
	}
	return ""
}

func (s *Selector) maybeRebroadcast(name string, emit func()) {
	if name == s.activeIDSnapshot() {
		emit()
	}
}

// rebroadcastAll re-emits the new active player's full current state
// to the selector's own subscribers, per spec §4.9.
func (s *Selector) rebroadcastAll(c player.Controller) {
	s.NotifyStateChanged(c.GetPlaybackState())
	s.NotifySongChanged(c.GetSong())
	s.NotifyPositionChanged(c.GetPosition())
	s.NotifyQueueChanged(c.GetQueue())
	s.NotifyCapabilitiesChanged(c.GetCapabilities())
	s.NotifyLoopModeChanged(c.GetLoopMode())
	s.NotifyShuffleChanged(c.GetShuffle())
}

// ActivePlayerName returns the currently-elected active player's name,
// or "" if none.
func (s *Selector) ActivePlayerName() string {
	return s.activeIDSnapshot()
}

func (s *Selector) activeController() player.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.players[s.activeID]
	if !ok {
		return nil
	}
	return rp.controller
}

// GetSong returns the active player's song, or nil if no player is active.
func (s *Selector) GetSong() *model.Song {
	if c := s.activeController(); c != nil {
		return c.GetSong()
	}
	return nil
}

// SendCommand routes cmd to the active player; returns false if none
// is active (spec §4.9).
func (s *Selector) SendCommand(cmd player.Command) bool {
	c := s.activeController()
	if c == nil {
		return false
	}
	return c.SendCommand(cmd)
}
