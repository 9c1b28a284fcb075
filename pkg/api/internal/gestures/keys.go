package gestures

import (
	"fmt"
	"math"

	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

// Key names a keyboard shortcut.
type Key string

const (
	KeyMarkA      Key = "a"
	KeyMarkB      Key = "b"
	KeyToggleLoop Key = "l"
	KeyLeft       Key = "left"
	KeyRight      Key = "right"
	KeyUp         Key = "up"
	KeyDown       Key = "down"
	KeyZoomIn     Key = "+"
	KeyZoomOut    Key = "-"
	KeySpace      Key = "space"
	KeyEscape     Key = "escape"

	SeekStep  = 3.0
	RateStep  = 0.05
	ZoomScale = 1.25
)

// Keys lists every handled key.
var Keys = []Key{
	KeyMarkA,
	KeyMarkB,
	KeyToggleLoop,
	KeyLeft,
	KeyRight,
	KeyUp,
	KeyDown,
	KeyZoomIn,
	KeyZoomOut,
	KeySpace,
	KeyEscape,
}

// Key handles a single key press. Presses made while a text input has focus
// are ignored and reported as not handled.
func (h *Handler) Key(key Key, inTextInput bool) (bool, error) {
	if inTextInput {
		return false, nil
	}

	var err error
	switch key {
	case KeyMarkA:
		t := h.player.Playback().CurrentTime
		h.loop.SetA(&t)
	case KeyMarkB:
		t := h.player.Playback().CurrentTime
		h.loop.SetBAndEnable(t)
	case KeyToggleLoop:
		snapshot := h.loop.Snapshot()
		if !snapshot.Loopable() {
			return false, nil
		}
		h.loop.SetEnabled(!snapshot.Enabled)
	case KeyLeft:
		err = h.seekBy(-SeekStep)
	case KeyRight:
		err = h.seekBy(SeekStep)
	case KeyUp:
		err = h.changeRate(RateStep)
	case KeyDown:
		err = h.changeRate(-RateStep)
	case KeyZoomIn:
		err = h.player.SetZoom(h.player.Playback().Zoom * ZoomScale)
	case KeyZoomOut:
		err = h.player.SetZoom(h.player.Playback().Zoom / ZoomScale)
	case KeySpace:
		err = h.player.SetPause(!h.player.Playback().Paused)
	case KeyEscape:
		h.Reset()
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if err != nil {
		return false, fmt.Errorf("could not handle key %s: %w", key, err)
	}

	return true, nil
}

func (h *Handler) changeRate(delta float64) error {
	rate := h.player.Playback().Rate + delta

	return h.player.SetRate(math.Round(rate*100) / 100)
}

func (h *Handler) seekBy(delta float64) error {
	snapshot := h.player.Playback()
	target := math.Max(0, snapshot.CurrentTime+delta)
	if snapshot.Duration > 0 {
		target = math.Min(target, snapshot.Duration)
	}

	return h.player.Seek(loop.Snap(target))
}
