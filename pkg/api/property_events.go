package api

import (
	"errors"
	"strconv"

	"github.com/sarpt/mpv-repeat-player/pkg/mpv"
)

var (
	// ErrResponseDataNotString occurs when observe response data is not a string.
	ErrResponseDataNotString = errors.New("response data is not a string")

	// ErrPlaybackTimeNotFloat occurs when playback time is not a correct decimal number.
	ErrPlaybackTimeNotFloat = errors.New("playback time could not be converted to a float number")

	// ErrDurationNotFloat occurs when duration is not a correct decimal number.
	ErrDurationNotFloat = errors.New("duration could not be converted to a float number")
)

func (s *Server) handleDurationEvent(res mpv.ObservePropertyResponse) error {
	if res.Data == nil {
		s.statesRepository.Playback().SetDuration(0)
		return nil
	}

	duration, ok := res.Data.(string)
	if !ok {
		return ErrResponseDataNotString
	}

	if duration == "" {
		s.statesRepository.Playback().SetDuration(0)
		return nil
	}

	durationNum, err := strconv.ParseFloat(duration, 64)
	if err != nil {
		return ErrDurationNotFloat
	}

	s.statesRepository.Playback().SetDuration(durationNum)
	return nil
}

func (s *Server) handlePathEvent(res mpv.ObservePropertyResponse) error {
	if res.Data == nil {
		s.statesRepository.Playback().Stop()
		return nil
	}

	path, ok := res.Data.(string)
	if !ok {
		return ErrResponseDataNotString
	}

	s.statesRepository.Playback().SetMediaFile(path)
	return nil
}

func (s *Server) handlePauseEvent(res mpv.ObservePropertyResponse) error {
	paused, ok := res.Data.(string)
	if !ok {
		return ErrResponseDataNotString
	}

	s.statesRepository.Playback().SetPause(paused == mpv.YesValue)
	return nil
}

func (s *Server) handlePlaybackTimeEvent(res mpv.ObservePropertyResponse) error {
	if res.Data == nil {
		return nil
	}

	currentTime, ok := res.Data.(string)
	if !ok {
		return ErrResponseDataNotString
	}

	if currentTime == "" {
		s.statesRepository.Playback().SetPlaybackTime(0)
		return nil
	}

	currentTimeNum, err := strconv.ParseFloat(currentTime, 64)
	if err != nil {
		return ErrPlaybackTimeNotFloat
	}

	s.statesRepository.Playback().SetPlaybackTime(currentTimeNum)
	return nil
}
