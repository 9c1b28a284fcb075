package api

import (
	playbackTriggers "github.com/sarpt/mpv-repeat-player/pkg/api/internal/playback_triggers"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
)

func (s *Server) addPlaybackTrigger(trigger playbackTriggers.PlaybackTrigger) func() {
	return s.statesRepository.Playback().Subscribe(func(change playback.Change) {
		err := trigger.Handler(change)
		if err != nil {
			s.errLog.Printf("playback trigger returned error: %s\n", err)
		}
	}, func(err error) {})
}

// handleMediaFileChange clears everything tied to the previous source when the loaded file changes.
// Player commands are issued asynchronously, since this runs while mpv events are being delivered.
func (s *Server) handleMediaFileChange(change playback.Change) {
	switch change.ChangeVariant {
	case playback.MediaFileChange:
		s.gestures.Reset()
		s.statesRepository.Recent().Open(change.Snapshot.MediaFilePath)
		go s.applyPlayerSettings(change.Snapshot)
	case playback.PlaybackStoppedChange:
		s.gestures.Reset()
	}
}

// applyPlayerSettings pushes volume and rate kept by the server to the player.
func (s *Server) applyPlayerSettings(snapshot playback.Snapshot) {
	err := s.mpvManager.ChangeSpeed(snapshot.Rate)
	if err != nil {
		s.errLog.Printf("could not apply playback rate %.2f: %s\n", snapshot.Rate, err)
	}

	err = s.mpvManager.ChangeVolume(snapshot.Volume)
	if err != nil {
		s.errLog.Printf("could not apply volume %.2f: %s\n", snapshot.Volume, err)
	}
}
