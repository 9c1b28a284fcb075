package playback_triggers

import (
	"io"
	"testing"
	"time"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type watcherFixture struct {
	clock  *fakeClock
	loop   *loop.Storage
	player *recordingPlayer
	uut    *BoundaryWatcher
}

func newWatcherFixture(t *testing.T, timing loop.Timing, userVolume float64) watcherFixture {
	t.Helper()

	broadcaster := common.NewChangesBroadcaster[loop.Change]()
	broadcaster.Broadcast()
	t.Cleanup(broadcaster.Close)

	loopStorage := loop.NewStorage(broadcaster)
	loopStorage.SetTiming(timing)

	clock := &fakeClock{}
	player := &recordingPlayer{}
	uut := NewBoundaryWatcher(BoundaryWatcherConfig{
		Clock:     clock,
		ErrWriter: io.Discard,
		Loop:      loopStorage,
		OutWriter: io.Discard,
		Player:    player,
		Volume:    func() float64 { return userVolume },
	})
	t.Cleanup(uut.Close)

	return watcherFixture{
		clock:  clock,
		loop:   loopStorage,
		player: player,
		uut:    uut,
	}
}

func noTiming() loop.Timing {
	return loop.Timing{}
}

// playFromTo feeds positions from..to (in tenths of a second, inclusive) as playing.
func (f watcherFixture) playFromTo(fromTenths, toTenths int) {
	for i := fromTenths; i <= toTenths; i++ {
		f.uut.Observe(float64(i)/10, true)
	}
}

func TestObserve_RestartsExactlyOncePerCrossing(t *testing.T) {
	// given
	f := newWatcherFixture(t, noTiming(), 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)

	// when
	f.playFromTo(40, 55)
	f.uut.Flush()

	// then
	seeks := f.player.Named("seek")
	require.Len(t, seeks, 1)
	assert.Equal(t, 2.0, seeks[0].value)
	assert.Equal(t, 1, f.loop.Snapshot().Count)
	assert.Equal(t, RestartPending, f.uut.State())
}

func TestObserve_GuardClearsBelowBoundary(t *testing.T) {
	// given
	f := newWatcherFixture(t, noTiming(), 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.playFromTo(49, 50)

	// when
	f.uut.Observe(4.99, true)
	stateNearBoundary := f.uut.State()
	f.uut.Observe(2.0, true)
	stateAfterSeek := f.uut.State()
	f.playFromTo(49, 51)
	f.uut.Flush()

	// then
	assert.Equal(t, RestartPending, stateNearBoundary)
	assert.Equal(t, Playing, stateAfterSeek)
	assert.Len(t, f.player.Named("seek"), 2)
	assert.Equal(t, 2, f.loop.Snapshot().Count)
}

func TestObserve_NotPlayingDoesNothing(t *testing.T) {
	// given
	f := newWatcherFixture(t, noTiming(), 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)

	// when
	f.uut.Observe(5.5, false)
	f.uut.Flush()

	// then
	assert.Empty(t, f.player.Calls())
	assert.Equal(t, Paused, f.uut.State())
	assert.Equal(t, 0, f.loop.Snapshot().Count)
}

func TestObserve_IncompleteRangeDoesNothing(t *testing.T) {
	// given
	f := newWatcherFixture(t, noTiming(), 1)
	a := 2.0
	f.loop.SetA(&a)
	f.loop.SetEnabled(true)

	// when
	f.playFromTo(0, 60)
	f.uut.Flush()

	// then
	assert.Empty(t, f.player.Calls())
}

func TestObserve_PausesWhenRepeatTargetReached(t *testing.T) {
	// given
	f := newWatcherFixture(t, noTiming(), 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.loop.SetTarget(3)

	// when
	for repeat := 0; repeat < 4; repeat++ {
		f.playFromTo(48, 51)
		f.uut.Observe(2.0, true)
	}
	f.uut.Flush()

	// then
	assert.Len(t, f.player.Named("seek"), 3)
	pauses := f.player.Named("pause")
	require.Len(t, pauses, 1)
	assert.Equal(t, 1.0, pauses[0].value)
	assert.Equal(t, 3, f.loop.Snapshot().Count)
}

func TestObserve_OneShotJumpsToAAndRewindsAtB(t *testing.T) {
	// given
	f := newWatcherFixture(t, noTiming(), 1)
	f.loop.SetRange(2, 5)
	f.uut.Observe(0, false)

	// when
	f.uut.Observe(0, true)
	f.uut.Observe(0.1, true)
	f.playFromTo(20, 50)
	f.uut.Flush()

	// then
	assert.Equal(t, []playerCall{
		{name: "seek", value: 2},
		{name: "pause", value: 1},
		{name: "seek", value: 2},
	}, f.player.Calls())
	assert.Equal(t, Paused, f.uut.State())
	assert.Equal(t, 0, f.loop.Snapshot().Count)
}

func TestObserve_OneShotIgnoresStalePositionsAfterJump(t *testing.T) {
	// given
	f := newWatcherFixture(t, noTiming(), 1)
	f.loop.SetRange(2, 5)
	f.uut.Observe(7, false)

	// when
	f.uut.Observe(7, true)
	f.uut.Observe(7.05, true)
	f.uut.Flush()

	// then
	assert.Equal(t, []playerCall{{name: "seek", value: 2}}, f.player.Calls())
	assert.Equal(t, RestartPending, f.uut.State())
}

func TestRestartSequence_FadesPausesSeeksAndResumes(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{PreRollSec: 0.15, FadeMs: 100, AutoPauseMs: 200}, 0.8)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)

	// when
	f.uut.Observe(5.0, true)
	f.uut.Observe(5.02, true)
	f.clock.Advance(100 * time.Millisecond)
	f.uut.Flush()
	afterFadeOut := f.player.Calls()

	f.clock.Advance(200 * time.Millisecond)
	f.uut.Flush()
	afterPause := f.player.Calls()

	f.clock.Advance(100 * time.Millisecond)
	f.uut.Flush()
	calls := f.player.Calls()

	// then
	require.Len(t, afterFadeOut, 6)
	for _, call := range afterFadeOut[:5] {
		assert.Equal(t, "volume", call.name)
	}
	assert.Equal(t, 0.0, afterFadeOut[4].value)
	assert.Equal(t, playerCall{name: "pause", value: 1}, afterFadeOut[5])

	require.Len(t, afterPause, 8)
	assert.Equal(t, "seek", afterPause[6].name)
	assert.InDelta(t, 1.85, afterPause[6].value, 1e-9)
	assert.Equal(t, playerCall{name: "pause", value: 0}, afterPause[7])

	require.Len(t, calls, 13)
	for _, call := range calls[8:] {
		assert.Equal(t, "volume", call.name)
	}
	assert.InDelta(t, 0.8, calls[12].value, 1e-9)
	assert.Equal(t, 1, f.loop.Snapshot().Count)
}

func TestRestartSequence_PreRollClampedAtZero(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{PreRollSec: 1}, 1)
	f.loop.SetRange(0.5, 3)
	f.loop.SetEnabled(true)

	// when
	f.uut.Observe(3, true)
	f.uut.Flush()

	// then
	assert.Equal(t, []playerCall{{name: "seek", value: 0}}, f.player.Calls())
}

func TestRestartSequence_SeeksToLatestA(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{AutoPauseMs: 300}, 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.uut.Observe(5, true)

	// when
	f.loop.SetRange(1, 5)
	f.clock.Advance(300 * time.Millisecond)
	f.uut.Flush()

	// then
	seeks := f.player.Named("seek")
	require.Len(t, seeks, 1)
	assert.Equal(t, 1.0, seeks[0].value)
}

func TestRestartSequence_AbandonedWhenLoopDisabledDuringPause(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{AutoPauseMs: 1000}, 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.uut.Observe(5, true)
	f.uut.Observe(5, false)

	// when
	f.loop.SetEnabled(false)
	f.clock.Advance(2 * time.Second)
	f.uut.Flush()

	// then
	assert.Equal(t, []playerCall{{name: "pause", value: 1}}, f.player.Calls())
	assert.Equal(t, Paused, f.uut.State())
}

func TestLoopHandler_DisablingLoopStopsFadeAndRestoresVolume(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{FadeMs: 100, AutoPauseMs: 500}, 0.8)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.uut.Observe(5, true)
	f.clock.Advance(60 * time.Millisecond)

	// when
	snapshot := f.loop.SetEnabled(false)
	f.uut.LoopHandler(loop.Change{ChangeVariant: loop.EnabledChange, Snapshot: snapshot})
	f.clock.Advance(2 * time.Second)
	f.uut.Flush()

	// then
	assert.Empty(t, f.player.Named("seek"))
	assert.Empty(t, f.player.Named("pause"))
	volumes := f.player.Named("volume")
	require.NotEmpty(t, volumes)
	assert.Equal(t, 0.8, volumes[len(volumes)-1].value)
	assert.Equal(t, Playing, f.uut.State())
}

func TestLoopHandler_RangeEditKeepsRestart(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{AutoPauseMs: 300}, 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.uut.Observe(5, true)

	// when
	snapshot := f.loop.SetRange(3, 5)
	f.uut.LoopHandler(loop.Change{ChangeVariant: loop.RangeChange, Snapshot: snapshot})
	f.clock.Advance(300 * time.Millisecond)
	f.uut.Flush()

	// then
	seeks := f.player.Named("seek")
	require.Len(t, seeks, 1)
	assert.Equal(t, 3.0, seeks[0].value)
}

func TestCancel_StopsPendingRestartAndRestoresVolume(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{FadeMs: 120, AutoPauseMs: 500}, 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.uut.Observe(5, true)
	f.clock.Advance(60 * time.Millisecond)

	// when
	f.uut.Cancel()
	f.clock.Advance(2 * time.Second)
	f.uut.Flush()

	// then
	assert.Empty(t, f.player.Named("seek"))
	assert.Empty(t, f.player.Named("pause"))
	volumes := f.player.Named("volume")
	require.NotEmpty(t, volumes)
	assert.Equal(t, 1.0, volumes[len(volumes)-1].value)
	assert.Equal(t, Idle, f.uut.State())
}

func TestCancel_AfterLoopResetNothingFollows(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{AutoPauseMs: 500}, 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	f.uut.Observe(5, true)

	// when
	f.loop.Reset()
	f.uut.Cancel()
	f.clock.Advance(time.Second)
	f.playFromTo(0, 60)
	f.uut.Flush()

	// then
	assert.Equal(t, []playerCall{{name: "pause", value: 1}}, f.player.Calls())
	assert.Equal(t, 0, f.loop.Snapshot().Count)
}

func TestHandler_MediaFileChangeCancelsPendingRestart(t *testing.T) {
	// given
	f := newWatcherFixture(t, loop.Timing{AutoPauseMs: 500}, 1)
	f.loop.SetRange(2, 5)
	f.loop.SetEnabled(true)
	err := f.uut.Handler(playback.Change{
		ChangeVariant: playback.PlaybackTimeChange,
		Snapshot:      playback.Snapshot{CurrentTime: 5},
	})
	require.NoError(t, err)

	// when
	err = f.uut.Handler(playback.Change{ChangeVariant: playback.MediaFileChange})
	f.clock.Advance(time.Second)
	f.uut.Flush()

	// then
	require.NoError(t, err)
	assert.Empty(t, f.player.Named("seek"))
	assert.Equal(t, Idle, f.uut.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "restartPending", RestartPending.String())
	assert.Equal(t, "paused", Paused.String())
}
