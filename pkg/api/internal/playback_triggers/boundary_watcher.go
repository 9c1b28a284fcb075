package playback_triggers

import (
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
)

const (
	boundaryWatcherLogPrefix = "playback_triggers.BoundaryWatcher#"

	// GuardEpsilon is the distance below b the position has to be observed at
	// before a pending restart stops suppressing further restarts.
	GuardEpsilon = 0.02

	// FadeStep is the interval between consecutive volume steps of a fade.
	FadeStep = 20 * time.Millisecond
)

// State is a phase of the boundary watcher.
type State int

const (
	Idle State = iota
	Playing
	RestartPending
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case RestartPending:
		return "restartPending"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// LoopSource provides the loop state at the moment the watcher needs it.
type LoopSource interface {
	IncrementCount() loop.Snapshot
	Snapshot() loop.Snapshot
}

// VolumeSource provides the user volume in the 0..1 range restored after fades.
type VolumeSource func() float64

type BoundaryWatcherConfig struct {
	Clock     Clock
	ErrWriter io.Writer
	Loop      LoopSource
	OutWriter io.Writer
	Player    Player
	Volume    VolumeSource
}

// BoundaryWatcher observes playback position and restarts the loop when the
// position reaches its end. At most one restart sequence is in flight at a
// time; every sequence carries an epoch and timers of stale epochs do nothing.
type BoundaryWatcher struct {
	clock         Clock
	epoch         uint64
	errLog        *log.Logger
	lock          *sync.Mutex
	loop          LoopSource
	outLog        *log.Logger
	pauseIssued   bool
	pendingB      float64
	playing       bool
	queue         *commandQueue
	restarting    bool
	seekIssued    bool
	state         State
	timers        []Timer
	volume        VolumeSource
	volumeChanged bool
}

func NewBoundaryWatcher(cfg BoundaryWatcherConfig) *BoundaryWatcher {
	errLog := log.New(cfg.ErrWriter, boundaryWatcherLogPrefix, log.LstdFlags)

	clock := cfg.Clock
	if clock == nil {
		clock = RealClock
	}

	volume := cfg.Volume
	if volume == nil {
		volume = func() float64 { return playback.DefaultVolume }
	}

	return &BoundaryWatcher{
		clock:  clock,
		errLog: errLog,
		lock:   &sync.Mutex{},
		loop:   cfg.Loop,
		outLog: log.New(cfg.OutWriter, boundaryWatcherLogPrefix, log.LstdFlags),
		queue:  newCommandQueue(cfg.Player, errLog),
		state:  Idle,
		volume: volume,
	}
}

// Handler feeds playback changes into the watcher. Satisfies PlaybackTrigger.
func (w *BoundaryWatcher) Handler(change playback.Change) error {
	switch change.ChangeVariant {
	case playback.PlaybackTimeChange, playback.PauseChange:
		w.Observe(change.Snapshot.CurrentTime, change.Snapshot.Playing())
	case playback.MediaFileChange, playback.PlaybackStoppedChange:
		w.Cancel()
	}

	return nil
}

// Observe evaluates a single position sample.
func (w *BoundaryWatcher) Observe(position float64, playing bool) {
	w.lock.Lock()
	playStart := playing && !w.playing
	w.playing = playing

	if !playing {
		w.pauseIssued = false
		if w.state != RestartPending {
			w.state = Paused
		}
		w.lock.Unlock()
		return
	}

	// positions reported before an issued pause takes effect
	if w.pauseIssued {
		w.lock.Unlock()
		return
	}

	if w.state == RestartPending {
		if w.seekIssued && position < w.pendingB-GuardEpsilon {
			w.state = Playing
		}
		w.lock.Unlock()
		return
	}
	w.state = Playing

	snapshot := w.loop.Snapshot()
	a, b, _ := snapshot.Bounds()

	var cmds []playerCommand
	var increment bool
	switch {
	case snapshot.Looping():
		if position < b {
			break
		}

		if snapshot.TargetReached() {
			w.outLog.Printf("repeat target %d reached, pausing\n", snapshot.Target)
			w.state = Paused
			w.pauseIssued = true
			cmds = append(cmds, pauseCommand(true))
			break
		}

		increment = true
		cmds = w.startRestart(b, snapshot.Timing)
	case snapshot.OneShot():
		if playStart {
			w.beginPending(b)
			w.seekIssued = true
			cmds = append(cmds, seekCommand(a))
			break
		}

		if position >= b {
			w.state = Paused
			w.pauseIssued = true
			cmds = append(cmds, pauseCommand(true), seekCommand(a))
		}
	}
	w.lock.Unlock()

	if increment {
		w.loop.IncrementCount()
	}
	w.queue.enqueue(cmds)
}

// Cancel aborts a pending restart sequence and its timers. Volume lowered by a
// fade is restored.
func (w *BoundaryWatcher) Cancel() {
	w.lock.Lock()
	w.stopTimers()
	w.epoch++
	w.pauseIssued = false
	w.restarting = false
	w.seekIssued = false
	w.state = Idle
	w.playing = false

	var cmds []playerCommand
	if w.volumeChanged {
		w.volumeChanged = false
		cmds = append(cmds, volumeCommand(w.volume()))
	}
	w.lock.Unlock()

	w.queue.enqueue(cmds)
}

// LoopHandler abandons a pending restart once the loop stops repeating.
// Playback is left where it is and volume lowered by a fade is restored.
func (w *BoundaryWatcher) LoopHandler(change loop.Change) {
	switch change.ChangeVariant {
	case loop.EnabledChange, loop.ResetChange, loop.RangeChange:
	default:
		return
	}

	if change.Snapshot.Looping() {
		return
	}

	w.lock.Lock()
	var cmds []playerCommand
	if w.state == RestartPending && w.restarting {
		w.outLog.Println("loop no longer repeats, abandoning restart")
		cmds = w.abandonRestart()
	}
	w.lock.Unlock()

	w.queue.enqueue(cmds)
}

// Close cancels pending work and stops executing commands.
func (w *BoundaryWatcher) Close() {
	w.Cancel()
	w.queue.flush()
	w.queue.close()
}

// Flush blocks until every command issued so far has been executed by the player.
func (w *BoundaryWatcher) Flush() {
	w.queue.flush()
}

// State returns the current phase of the watcher.
func (w *BoundaryWatcher) State() State {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.state
}

// beginPending should be called with the lock held.
func (w *BoundaryWatcher) beginPending(b float64) uint64 {
	w.stopTimers()
	w.epoch++
	w.pendingB = b
	w.restarting = false
	w.seekIssued = false
	w.state = RestartPending

	return w.epoch
}

// startRestart should be called with the lock held. It returns commands to issue immediately.
func (w *BoundaryWatcher) startRestart(b float64, timing loop.Timing) []playerCommand {
	epoch := w.beginPending(b)
	w.restarting = true
	timing = timing.Clamped()

	if timing.FadeMs <= 0 {
		return w.afterFadeOut(epoch, timing)
	}

	w.volumeChanged = true
	w.scheduleFade(epoch, timing.FadeMs, w.volume(), 0, func() []playerCommand {
		return w.afterFadeOut(epoch, timing)
	})

	return nil
}

// afterFadeOut should be called with the lock held.
func (w *BoundaryWatcher) afterFadeOut(epoch uint64, timing loop.Timing) []playerCommand {
	if timing.AutoPauseMs <= 0 {
		return w.restartSeek(epoch, timing, false)
	}

	w.schedule(epoch, time.Duration(timing.AutoPauseMs)*time.Millisecond, func() []playerCommand {
		return w.restartSeek(epoch, timing, true)
	})

	return []playerCommand{pauseCommand(true)}
}

// restartSeek should be called with the lock held. The loop start is read at
// the moment of seeking so edits made during the fade or pause are honoured.
// A loop disabled or cleared in the meantime abandons the restart.
func (w *BoundaryWatcher) restartSeek(epoch uint64, timing loop.Timing, resume bool) []playerCommand {
	var cmds []playerCommand

	snapshot := w.loop.Snapshot()
	if !snapshot.Looping() {
		w.outLog.Println("loop no longer repeats, abandoning restart")
		return w.abandonRestart()
	}
	a, _, _ := snapshot.Bounds()

	w.seekIssued = true
	cmds = append(cmds, seekCommand(math.Max(0, a-timing.PreRollSec)))
	if resume {
		cmds = append(cmds, pauseCommand(false))
	}

	if timing.FadeMs > 0 {
		w.scheduleFade(epoch, timing.FadeMs, 0, w.volume(), func() []playerCommand {
			w.volumeChanged = false
			return nil
		})
	}

	return cmds
}

// abandonRestart should be called with the lock held.
func (w *BoundaryWatcher) abandonRestart() []playerCommand {
	w.stopTimers()
	w.epoch++
	w.restarting = false
	w.seekIssued = false
	w.state = Playing
	if !w.playing {
		w.state = Paused
	}

	var cmds []playerCommand
	if w.volumeChanged {
		w.volumeChanged = false
		cmds = append(cmds, volumeCommand(w.volume()))
	}

	return cmds
}

// scheduleFade should be called with the lock held. Volume moves in FadeStep
// intervals from "from" to "to"; the last step sets "to" exactly and then done is run.
func (w *BoundaryWatcher) scheduleFade(epoch uint64, fadeMs int, from, to float64, done func() []playerCommand) {
	duration := time.Duration(fadeMs) * time.Millisecond
	steps := int(duration / FadeStep)
	if steps < 1 {
		steps = 1
	}
	interval := duration / time.Duration(steps)

	for step := 1; step <= steps; step++ {
		volume := from + (to-from)*float64(step)/float64(steps)
		last := step == steps
		w.schedule(epoch, interval*time.Duration(step), func() []playerCommand {
			cmds := []playerCommand{volumeCommand(volume)}
			if last {
				cmds = append(cmds, done()...)
			}
			return cmds
		})
	}
}

// schedule should be called with the lock held.
func (w *BoundaryWatcher) schedule(epoch uint64, d time.Duration, fn func() []playerCommand) {
	timer := w.clock.AfterFunc(d, func() {
		w.lock.Lock()
		if epoch != w.epoch {
			w.lock.Unlock()
			return
		}
		cmds := fn()
		w.lock.Unlock()

		w.queue.enqueue(cmds)
	})
	w.timers = append(w.timers, timer)
}

// stopTimers should be called with the lock held.
func (w *BoundaryWatcher) stopTimers() {
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.timers = nil
}
