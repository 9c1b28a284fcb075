package loop

import (
	"encoding/json"
	"math"
)

const (
	// MinLoopLength is the shortest span, in seconds, that can be looped or committed as a range.
	MinLoopLength = 0.05

	// SnapStep is the time grid, in seconds, every stored endpoint is aligned to.
	SnapStep = 0.01

	DefaultPreRollSec = 0.15
	MaxPreRollSec     = 2.0

	DefaultFadeMs = 120
	MaxFadeMs     = 800

	DefaultAutoPauseMs = 0
	MaxAutoPauseMs     = 2000

	MaxRepeatTarget = 999

	snapDivisor = 1 / SnapStep
	timeEpsilon = 1e-9
)

// Timing holds adjustments applied by the restart sequence.
type Timing struct {
	PreRollSec  float64 `json:"PreRollSec"`
	FadeMs      int     `json:"FadeMs"`
	AutoPauseMs int     `json:"AutoPauseMs"`
}

// DefaultTiming returns timing used for a fresh player session.
func DefaultTiming() Timing {
	return Timing{
		PreRollSec:  DefaultPreRollSec,
		FadeMs:      DefaultFadeMs,
		AutoPauseMs: DefaultAutoPauseMs,
	}
}

// Clamped returns timing with every field limited to its allowed range.
func (t Timing) Clamped() Timing {
	return Timing{
		PreRollSec:  clampFloat(t.PreRollSec, 0, MaxPreRollSec),
		FadeMs:      clampInt(t.FadeMs, 0, MaxFadeMs),
		AutoPauseMs: clampInt(t.AutoPauseMs, 0, MaxAutoPauseMs),
	}
}

// Snapshot is a value copy of the loop state. Endpoints are nil when unset.
type Snapshot struct {
	A       *float64
	B       *float64
	Enabled bool
	Count   int
	Target  int
	Timing  Timing
}

type snapshotJSON struct {
	A        *float64 `json:"A"`
	B        *float64 `json:"B"`
	Enabled  bool     `json:"Enabled"`
	Loopable bool     `json:"Loopable"`
	OneShot  bool     `json:"OneShot"`
	Count    int      `json:"Count"`
	Target   int      `json:"Target"`
	Timing   Timing   `json:"Timing"`
}

// MarshalJSON satisfies json.Marshaller.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		A:        s.A,
		B:        s.B,
		Enabled:  s.Enabled,
		Loopable: s.Loopable(),
		OneShot:  s.OneShot(),
		Count:    s.Count,
		Target:   s.Target,
		Timing:   s.Timing,
	})
}

// Bounds returns ordered endpoints. ok is false unless both endpoints are set.
func (s Snapshot) Bounds() (a float64, b float64, ok bool) {
	if s.A == nil || s.B == nil {
		return 0, 0, false
	}

	return math.Min(*s.A, *s.B), math.Max(*s.A, *s.B), true
}

// Loopable informs whether both endpoints are set and span more than MinLoopLength.
func (s Snapshot) Loopable() bool {
	a, b, ok := s.Bounds()

	return ok && LongerThanMin(b-a)
}

// Looping informs whether the range should be repeated.
func (s Snapshot) Looping() bool {
	return s.Enabled && s.Loopable()
}

// OneShot informs whether the range should be played once and stopped at its end.
func (s Snapshot) OneShot() bool {
	return !s.Enabled && s.Loopable()
}

// TargetReached informs whether the repeat limit has been used up.
func (s Snapshot) TargetReached() bool {
	return s.Target > 0 && s.Count >= s.Target
}

// Snap aligns t to the SnapStep grid. Negative and non-finite times snap to 0.
func Snap(t float64) float64 {
	if t <= 0 || !Finite(t) {
		return 0
	}

	return math.Round(t*snapDivisor) / snapDivisor
}

// Finite informs whether t is neither NaN nor infinite.
func Finite(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0)
}

// LongerThanMin informs whether span exceeds MinLoopLength, ignoring float rounding noise.
func LongerThanMin(span float64) bool {
	return span-MinLoopLength > timeEpsilon
}

func clampFloat(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}

	return math.Max(min, math.Min(max, v))
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}
