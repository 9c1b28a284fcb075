package api

import (
	"errors"
	"fmt"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/api/internal/gestures"
)

// GestureKeys lists names of keys accepted by KeyPress.
func GestureKeys() []string {
	keys := make([]string, 0, len(gestures.Keys))
	for _, key := range gestures.Keys {
		keys = append(keys, string(key))
	}

	return keys
}

func (s *Server) CancelPointer() {
	s.gestures.CancelPointer()
}

// KeyPress handles a keyboard shortcut. Returns whether the key had any effect.
func (s *Server) KeyPress(key string, inTextInput bool) (bool, error) {
	handled, err := s.gestures.Key(gestures.Key(key), inTextInput)
	if errors.Is(err, gestures.ErrUnknownKey) {
		return false, fmt.Errorf("%w: %s", common.ErrInvalidArgument, err)
	}

	return handled, err
}

func (s *Server) PointerDown(pointer Pointer) error {
	return s.pointerErr(s.gestures.PointerDown(toGesturePointer(pointer)))
}

func (s *Server) PointerMove(pointer Pointer) error {
	return s.pointerErr(s.gestures.PointerMove(toGesturePointer(pointer)))
}

func (s *Server) PointerUp(pointer Pointer) error {
	return s.pointerErr(s.gestures.PointerUp(toGesturePointer(pointer)))
}

// SetPrimaryScrubs switches primary button drags between scrubbing and selecting.
func (s *Server) SetPrimaryScrubs(scrubs bool) {
	s.gestures.SetPrimaryScrubs(scrubs)
}

func (s *Server) pointerErr(err error) error {
	if errors.Is(err, gestures.ErrUnknownPointer) {
		return fmt.Errorf("%w: %s", common.ErrInvalidArgument, err)
	}

	return err
}

func toGesturePointer(pointer Pointer) gestures.Pointer {
	button := gestures.Button(pointer.Button)
	if button == "" {
		button = gestures.PrimaryButton
	}

	return gestures.Pointer{
		At:     pointer.At,
		Button: button,
		Time:   pointer.Time,
		X:      pointer.X,
		Y:      pointer.Y,
	}
}
