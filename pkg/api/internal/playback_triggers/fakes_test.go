package playback_triggers

import (
	"sync"
	"time"
)

type fakeTimer struct {
	at      time.Duration
	clock   *fakeClock
	fn      func()
	fired   bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.lock.Lock()
	defer t.clock.lock.Unlock()

	active := !t.fired && !t.stopped
	t.stopped = true
	return active
}

// fakeClock fires callbacks only when advanced.
type fakeClock struct {
	lock   sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.lock.Lock()
	defer c.lock.Unlock()

	timer := &fakeTimer{at: c.now + d, clock: c, fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) Advance(d time.Duration) {
	c.lock.Lock()
	target := c.now + d
	c.lock.Unlock()

	for {
		c.lock.Lock()
		var next *fakeTimer
		for _, timer := range c.timers {
			if timer.fired || timer.stopped || timer.at > target {
				continue
			}
			if next == nil || timer.at < next.at {
				next = timer
			}
		}
		if next == nil {
			c.now = target
			c.lock.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.lock.Unlock()

		next.fn()
	}
}

type playerCall struct {
	name  string
	value float64
}

type recordingPlayer struct {
	calls []playerCall
	lock  sync.Mutex
}

func (p *recordingPlayer) ChangePause(paused bool) error {
	value := 0.0
	if paused {
		value = 1
	}
	p.record("pause", value)
	return nil
}

func (p *recordingPlayer) ChangeVolume(volume float64) error {
	p.record("volume", volume)
	return nil
}

func (p *recordingPlayer) Seek(time float64) error {
	p.record("seek", time)
	return nil
}

func (p *recordingPlayer) Calls() []playerCall {
	p.lock.Lock()
	defer p.lock.Unlock()

	return append([]playerCall{}, p.calls...)
}

func (p *recordingPlayer) Named(name string) []playerCall {
	var named []playerCall
	for _, call := range p.Calls() {
		if call.name == name {
			named = append(named, call)
		}
	}

	return named
}

func (p *recordingPlayer) record(name string, value float64) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.calls = append(p.calls, playerCall{name: name, value: value})
}
