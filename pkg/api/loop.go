package api

import (
	"fmt"
	"math"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

var (
	// ErrRegionTooShort occurs when an edited region is not longer than the minimum loop length.
	ErrRegionTooShort = fmt.Errorf("%w: region is not longer than %.2fs", common.ErrInvalidArgument, loop.MinLoopLength)

	// ErrTimeNotFinite occurs when a region endpoint is NaN or infinite.
	ErrTimeNotFinite = fmt.Errorf("%w: time is not a finite number", common.ErrInvalidArgument)
)

// EditRegion commits a region edited by a client as the loop range.
// Regions too short to loop are rejected and the current region is drawn again.
func (s *Server) EditRegion(start, end float64) (loop.Snapshot, error) {
	if !loop.Finite(start) || !loop.Finite(end) {
		s.statesRepository.Overlay().Redraw()
		return s.statesRepository.Loop().Snapshot(), ErrTimeNotFinite
	}

	start, end = s.clampToMedia(start), s.clampToMedia(end)
	if !loop.LongerThanMin(math.Abs(loop.Snap(end) - loop.Snap(start))) {
		s.statesRepository.Overlay().Redraw()
		return s.statesRepository.Loop().Snapshot(), ErrRegionTooShort
	}

	return s.statesRepository.Loop().SetRange(start, end), nil
}

// ResetLoop clears the loop range, pending restarts and any gesture in progress.
func (s *Server) ResetLoop() {
	s.gestures.Reset()
}

func (s *Server) SetLoopA(time *float64) loop.Snapshot {
	return s.statesRepository.Loop().SetA(s.clampPtrToMedia(time))
}

func (s *Server) SetLoopB(time *float64) loop.Snapshot {
	return s.statesRepository.Loop().SetB(s.clampPtrToMedia(time))
}

func (s *Server) SetLoopEnabled(enabled bool) loop.Snapshot {
	return s.statesRepository.Loop().SetEnabled(enabled)
}

func (s *Server) SetLoopRange(a, b float64) loop.Snapshot {
	return s.statesRepository.Loop().SetRange(s.clampToMedia(a), s.clampToMedia(b))
}

func (s *Server) SetRepeatTarget(target int) loop.Snapshot {
	return s.statesRepository.Loop().SetTarget(target)
}

func (s *Server) SetTiming(timing loop.Timing) loop.Snapshot {
	return s.statesRepository.Loop().SetTiming(timing)
}

// clampToMedia limits t to the loaded media, when its duration is known.
// Non-finite times are left for the loop storage to ignore.
func (s *Server) clampToMedia(t float64) float64 {
	if !loop.Finite(t) {
		return t
	}

	t = math.Max(0, t)
	if duration := s.statesRepository.Playback().Snapshot().Duration; duration > 0 {
		t = math.Min(t, duration)
	}

	return t
}

func (s *Server) clampPtrToMedia(t *float64) *float64 {
	if t == nil {
		return nil
	}

	clamped := s.clampToMedia(*t)
	return &clamped
}
