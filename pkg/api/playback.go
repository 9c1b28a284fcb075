package api

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/mpv"
	"github.com/sarpt/mpv-repeat-player/pkg/probe"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/media_files"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
)

var (
	// ErrPlayerNotReady occurs when a command is requested before connection to mpv is estabilished.
	ErrPlayerNotReady = errors.New("player is not ready")

	// ErrNoMediaLoaded occurs when an operation requires a loaded media file.
	ErrNoMediaLoaded = errors.New("no media file is loaded")
)

func (s *Server) ChangePause(paused bool) error {
	return s.playerCommand(func() error {
		return s.mpvManager.ChangePause(paused)
	})
}

// ChangeRate clamps and stores the playback rate, then applies it to the player when connected.
func (s *Server) ChangeRate(rate float64) (float64, error) {
	applied := s.statesRepository.Playback().SetRate(rate)
	if !s.mpvManager.Connected() {
		return applied, nil
	}

	return applied, s.playerCommand(func() error {
		return s.mpvManager.ChangeSpeed(applied)
	})
}

// ChangeVolume clamps and stores the user volume (0-1), then applies it to the player when connected.
func (s *Server) ChangeVolume(volume float64) (float64, error) {
	applied := s.statesRepository.Playback().SetVolume(volume)
	if !s.mpvManager.Connected() {
		return applied, nil
	}

	return applied, s.playerCommand(func() error {
		return s.mpvManager.ChangeVolume(applied)
	})
}

// ChangeZoom clamps and stores waveform zoom in pixels per second.
func (s *Server) ChangeZoom(zoom float64) float64 {
	return s.statesRepository.Playback().SetZoom(zoom)
}

// LoadFile validates that the file holds audio or video and instructs the player to play it.
func (s *Server) LoadFile(filePath string) error {
	if !s.statesRepository.MediaFiles().Exists(filePath) {
		result := s.prober(filePath)
		if !result.IsMediaFile() {
			return common.StatusError{
				Err:    fmt.Errorf("%w: %s", probe.ErrNotMediaFile, filePath),
				Status: 415,
			}
		}

		s.statesRepository.MediaFiles().Add(media_files.MapProbeResultToMediaFile(result))
	}

	s.outLog.Printf("loading file '%s'\n", filePath)
	return s.playerCommand(func() error {
		return s.mpvManager.LoadFile(filePath)
	})
}

// Seek moves playback to the time, clamped to the media duration.
func (s *Server) Seek(time float64) error {
	snapshot := s.statesRepository.Playback().Snapshot()
	if snapshot.Stopped {
		return ErrNoMediaLoaded
	}

	return s.playerCommand(func() error {
		return s.mpvManager.Seek(clampToDuration(time, snapshot))
	})
}

// SeekBy moves playback relative to the current position, never before the start.
func (s *Server) SeekBy(delta float64) error {
	return s.Seek(s.statesRepository.Playback().Snapshot().CurrentTime + delta)
}

func (s *Server) StopPlayback() error {
	return s.playerCommand(func() error {
		return s.mpvManager.Stop()
	})
}

// playerCommand runs a player command, reporting ErrPlayerNotReady when mpv is not connected.
func (s *Server) playerCommand(cmd func() error) error {
	if !s.mpvManager.Connected() {
		return common.StatusError{
			Err:    ErrPlayerNotReady,
			Status: 503,
		}
	}

	err := cmd()
	if errors.Is(err, mpv.ErrNotConnected) {
		return common.StatusError{
			Err:    fmt.Errorf("%w: %s", ErrPlayerNotReady, err),
			Status: 503,
		}
	}

	return err
}

func clampToDuration(time float64, snapshot playback.Snapshot) float64 {
	time = math.Max(0, time)
	if snapshot.Duration > 0 {
		time = math.Min(time, snapshot.Duration)
	}

	return loop.Snap(time)
}

// gesturesPlayer exposes server playback controls to gesture handling.
type gesturesPlayer struct {
	s *Server
}

func (p gesturesPlayer) Playback() playback.Snapshot {
	return p.s.statesRepository.Playback().Snapshot()
}

func (p gesturesPlayer) Seek(time float64) error {
	return p.s.Seek(time)
}

func (p gesturesPlayer) SetPause(paused bool) error {
	return p.s.ChangePause(paused)
}

func (p gesturesPlayer) SetRate(rate float64) error {
	_, err := p.s.ChangeRate(rate)
	return err
}

func (p gesturesPlayer) SetZoom(zoom float64) error {
	p.s.ChangeZoom(zoom)
	return nil
}
