package player

import "github.com/hifiberry/acr/internal/model"

// BaseListener is a no-op Listener implementation; embed it to
// implement only the callbacks a given listener cares about, exactly
// as the teacher's handler packages embed shared small helpers rather
// than repeating boilerplate everywhere.
type BaseListener struct{}

func (BaseListener) OnStateChanged(model.PlaybackState)                 {}
func (BaseListener) OnSongChanged(*model.Song)                          {}
func (BaseListener) OnPositionChanged(float64)                          {}
func (BaseListener) OnQueueChanged([]model.Track)                       {}
func (BaseListener) OnCapabilitiesChanged(map[model.Capability]struct{}) {}
func (BaseListener) OnLoopModeChanged(model.LoopMode)                   {}
func (BaseListener) OnShuffleChanged(bool)                              {}
func (BaseListener) OnDatabaseUpdate(*float64)                          {}
