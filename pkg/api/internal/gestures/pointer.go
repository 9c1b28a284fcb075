package gestures

import (
	"math"
	"time"

	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

const (
	// LongPressDelay is how long a touch has to be held before it resizes the loop.
	LongPressDelay = 450 * time.Millisecond

	// LongPressTolerance is the distance in pixels a touch can travel without canceling a long press.
	LongPressTolerance = 8.0
)

type Button string

const (
	PrimaryButton   Button = "primary"
	SecondaryButton Button = "secondary"
	TouchButton     Button = "touch"
)

// Pointer describes a pointer position over the waveform.
// Time is the media time under the pointer, X and Y are in pixels.
type Pointer struct {
	At     time.Time
	Button Button
	Time   float64
	X      float64
	Y      float64
}

type gestureMode int

const (
	selecting gestureMode = iota
	scrubbing
	pressing
	resizing
)

type resizedEndpoint int

const (
	endpointA resizedEndpoint = iota
	endpointB
)

type pointerGesture struct {
	anchor   float64
	endpoint resizedEndpoint
	mode     gestureMode
	pressAt  time.Time
	pressX   float64
	pressY   float64
}

// PointerDown starts a gesture. Mouse buttons start a selection or a scrub,
// a touch starts a press which can turn into a resize or a scrub.
func (h *Handler) PointerDown(p Pointer) error {
	p = h.stamp(p)
	anchor := loop.Snap(p.Time)

	h.lock.Lock()
	gesture := &pointerGesture{
		anchor:  anchor,
		pressAt: p.At,
		pressX:  p.X,
		pressY:  p.Y,
	}
	switch {
	case p.Button == TouchButton:
		gesture.mode = pressing
	case p.Button == PrimaryButton && h.primaryScrubs:
		gesture.mode = scrubbing
	default:
		gesture.mode = selecting
	}
	h.pointer = gesture
	h.lock.Unlock()

	switch gesture.mode {
	case scrubbing:
		return h.player.Seek(anchor)
	case selecting:
		h.overlay.SetSelection(anchor, anchor)
	}

	return nil
}

// PointerMove continues the gesture in progress.
func (h *Handler) PointerMove(p Pointer) error {
	p = h.stamp(p)
	t := loop.Snap(p.Time)

	h.lock.Lock()
	gesture := h.pointer
	if gesture == nil {
		h.lock.Unlock()
		return ErrUnknownPointer
	}

	if gesture.mode == pressing {
		h.resolvePress(gesture, p)
	}
	mode := gesture.mode
	anchor := gesture.anchor
	endpoint := gesture.endpoint
	h.lock.Unlock()

	switch mode {
	case selecting:
		h.overlay.SetSelection(anchor, t)
	case scrubbing:
		return h.player.Seek(t)
	case resizing:
		h.resize(endpoint, t)
	}

	return nil
}

// PointerUp finishes the gesture. A finished selection longer than the minimum
// loop length becomes the loop range and enables looping; a shorter one is discarded.
func (h *Handler) PointerUp(p Pointer) error {
	t := loop.Snap(p.Time)

	h.lock.Lock()
	gesture := h.pointer
	h.pointer = nil
	h.lock.Unlock()

	if gesture == nil {
		return ErrUnknownPointer
	}

	switch gesture.mode {
	case selecting:
		h.commitSelection(gesture.anchor, t)
	case scrubbing:
		return h.player.Seek(t)
	}

	return nil
}

// CancelPointer abandons the gesture in progress without committing it.
func (h *Handler) CancelPointer() {
	h.lock.Lock()
	gesture := h.pointer
	h.pointer = nil
	h.lock.Unlock()

	if gesture != nil && gesture.mode == selecting {
		h.overlay.ClearSelection()
		h.overlay.Redraw()
	}
}

func (h *Handler) commitSelection(anchor, t float64) {
	h.overlay.ClearSelection()

	if !loop.LongerThanMin(math.Abs(t - anchor)) {
		h.outLog.Printf("selection %.2f-%.2f too short, discarding\n", anchor, t)
		h.overlay.Redraw()
		return
	}

	h.loop.SetLoopingRange(anchor, t)
}

func (h *Handler) resize(endpoint resizedEndpoint, t float64) {
	a, b, ok := h.loop.Snapshot().Bounds()
	if !ok {
		return
	}

	if endpoint == endpointA {
		a = t
	} else {
		b = t
	}

	if !loop.LongerThanMin(math.Abs(b - a)) {
		return
	}
	h.loop.SetRange(a, b)
}

// resolvePress should be called with the lock held. A press held long enough
// resizes the endpoint nearest to where it started; one that moved too far first scrubs.
func (h *Handler) resolvePress(gesture *pointerGesture, p Pointer) {
	if p.At.Sub(gesture.pressAt) >= LongPressDelay {
		a, b, ok := h.loop.Snapshot().Bounds()
		if !ok {
			gesture.mode = scrubbing
			return
		}

		gesture.mode = resizing
		gesture.endpoint = endpointA
		if math.Abs(gesture.anchor-b) < math.Abs(gesture.anchor-a) {
			gesture.endpoint = endpointB
		}
		h.outLog.Printf("long press armed, resizing endpoint %d\n", gesture.endpoint)
		return
	}

	if math.Hypot(p.X-gesture.pressX, p.Y-gesture.pressY) > LongPressTolerance {
		gesture.mode = scrubbing
	}
}

func (h *Handler) stamp(p Pointer) Pointer {
	if p.At.IsZero() {
		p.At = h.now()
	}

	return p
}
