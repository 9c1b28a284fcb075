package playback_triggers

import "github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"

// PlaybackTrigger reacts to playback changes by issuing commands back to the player.
type PlaybackTrigger interface {
	Handler(change playback.Change) error
}

// Player is the subset of player commands issued by triggers.
type Player interface {
	ChangePause(paused bool) error
	ChangeVolume(volume float64) error
	Seek(time float64) error
}
