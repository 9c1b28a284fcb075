package loop

import (
	"encoding/json"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/internal/revision"
)

const (
	// RangeChange notifies about endpoints being set, cleared or replaced.
	RangeChange common.ChangeVariant = "rangeChange"

	// EnabledChange notifies about looping being switched on or off.
	EnabledChange common.ChangeVariant = "enabledChange"

	// CountChange notifies about repeat counter increment or reset.
	CountChange common.ChangeVariant = "countChange"

	// TargetChange notifies about repeat target change.
	TargetChange common.ChangeVariant = "targetChange"

	// TimingChange notifies about pre-roll, fade or auto pause change.
	TimingChange common.ChangeVariant = "timingChange"

	// ResetChange notifies about the loop being cleared completely.
	ResetChange common.ChangeVariant = "reset"
)

type SubscriberCB = func(change Change)

// Change carries the full loop state as it was right after the mutation.
type Change struct {
	ChangeVariant common.ChangeVariant
	Revision      revision.Identifier
	Snapshot      Snapshot
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot)
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage owns the loop range, its repeat counter and timing adjustments.
// Both endpoints are always written in a single transition, so a snapshot never pairs a stale endpoint with a new one.
// Changes are sent after the lock is released: subscribers must rely on the snapshot in the change.
type Storage struct {
	a           *float64
	b           *float64
	broadcaster *common.ChangesBroadcaster[Change]
	count       int
	enabled     bool
	lock        *sync.RWMutex
	revision    *revision.Storage
	target      int
	timing      Timing
}

// NewStorage constructs an empty loop storage with default timing.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		lock:        &sync.RWMutex{},
		revision:    revision.NewStorage(),
		timing:      DefaultTiming(),
	}
}

// IncrementCount bumps the repeat counter and returns the snapshot after the increment.
func (s *Storage) IncrementCount() Snapshot {
	return s.mutate(CountChange, func() bool {
		s.count++
		return true
	})
}

// MarshalJSON satisifes json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Reset clears both endpoints, disables looping and zeroes the counter. Target and timing are kept.
func (s *Storage) Reset() Snapshot {
	return s.mutate(ResetChange, func() bool {
		s.a = nil
		s.b = nil
		s.enabled = false
		s.count = 0
		return true
	})
}

func (s *Storage) Revision() revision.Identifier {
	return s.revision.Revision()
}

// SetA sets or clears (nil) the A endpoint. When the new A would land after B, the endpoints are swapped.
// Non-finite times are ignored.
func (s *Storage) SetA(t *float64) Snapshot {
	return s.mutate(RangeChange, func() bool {
		if t != nil && !Finite(*t) {
			return false
		}

		s.a = snapPtr(t)
		s.normalize()
		s.count = 0
		return true
	})
}

// SetB sets or clears (nil) the B endpoint. When the new B would land before A, the endpoints are swapped.
// Non-finite times are ignored.
func (s *Storage) SetB(t *float64) Snapshot {
	return s.mutate(RangeChange, func() bool {
		if t != nil && !Finite(*t) {
			return false
		}

		s.b = snapPtr(t)
		s.normalize()
		s.count = 0
		return true
	})
}

// SetBAndEnable sets the B endpoint and enables looping in a single transition.
// Non-finite times are ignored.
func (s *Storage) SetBAndEnable(t float64) Snapshot {
	return s.mutate(RangeChange, func() bool {
		if !Finite(t) {
			return false
		}

		s.b = snapPtr(&t)
		s.normalize()
		s.enabled = true
		s.count = 0
		return true
	})
}

// SetEnabled switches looping of the range on or off.
func (s *Storage) SetEnabled(enabled bool) Snapshot {
	return s.mutate(EnabledChange, func() bool {
		s.enabled = enabled
		s.count = 0
		return true
	})
}

// SetRange replaces both endpoints at once, in ascending order. Non-finite endpoints are ignored.
func (s *Storage) SetRange(a, b float64) Snapshot {
	return s.mutate(RangeChange, func() bool {
		return s.setRange(a, b)
	})
}

// SetLoopingRange replaces both endpoints and enables looping in a single transition.
func (s *Storage) SetLoopingRange(a, b float64) Snapshot {
	return s.mutate(RangeChange, func() bool {
		if !s.setRange(a, b) {
			return false
		}

		s.enabled = true
		return true
	})
}

// SetTarget sets the repeat limit, 0 meaning unlimited. Values are clamped to 0-MaxRepeatTarget.
func (s *Storage) SetTarget(target int) Snapshot {
	return s.mutate(TargetChange, func() bool {
		s.target = clampInt(target, 0, MaxRepeatTarget)
		return true
	})
}

// SetTiming replaces timing adjustments, clamping every field.
func (s *Storage) SetTiming(timing Timing) Snapshot {
	return s.mutate(TimingChange, func() bool {
		s.timing = timing.Clamped()
		return true
	})
}

// Snapshot returns a copy of the current loop state.
func (s *Storage) Snapshot() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.snapshot()
}

func (s *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

// Timing returns current timing adjustments.
func (s *Storage) Timing() Timing {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.timing
}

func (s *Storage) mutate(variant common.ChangeVariant, apply func() bool) Snapshot {
	s.lock.Lock()
	changed := apply()
	snapshot := s.snapshot()
	var rev revision.Identifier
	if changed {
		rev = s.revision.Tick()
	}
	s.lock.Unlock()

	if !changed {
		return snapshot
	}

	s.broadcaster.Send(Change{
		ChangeVariant: variant,
		Revision:      rev,
		Snapshot:      snapshot,
	})

	return snapshot
}

// setRange should be called with the lock held.
func (s *Storage) setRange(a, b float64) bool {
	if !Finite(a) || !Finite(b) {
		return false
	}

	sa, sb := Snap(a), Snap(b)
	if sb < sa {
		sa, sb = sb, sa
	}

	s.a = &sa
	s.b = &sb
	s.count = 0
	return true
}

func (s *Storage) normalize() {
	if s.a != nil && s.b != nil && *s.b < *s.a {
		s.a, s.b = s.b, s.a
	}
}

func (s *Storage) snapshot() Snapshot {
	return Snapshot{
		A:       copyPtr(s.a),
		B:       copyPtr(s.b),
		Enabled: s.enabled,
		Count:   s.count,
		Target:  s.target,
		Timing:  s.timing,
	}
}

func copyPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}

	c := *v
	return &c
}

func snapPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}

	c := Snap(*v)
	return &c
}
