package loop

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	broadcaster := common.NewChangesBroadcaster[Change]()
	broadcaster.Broadcast()
	t.Cleanup(broadcaster.Close)

	return NewStorage(broadcaster)
}

func ptr(v float64) *float64 {
	return &v
}

func TestSetRange_StoresAscending(t *testing.T) {
	cases := [][2]float64{
		{2, 5},
		{5, 2},
		{3.333, 3.331},
		{0, 0},
		{-1, 4},
	}

	for _, c := range cases {
		// given
		uut := newTestStorage(t)

		// when
		snapshot := uut.SetRange(c[0], c[1])

		// then
		require.NotNil(t, snapshot.A)
		require.NotNil(t, snapshot.B)
		assert.LessOrEqual(t, *snapshot.A, *snapshot.B, "range %v", c)
	}
}

func TestSetRange_SnapsToGrid(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// when
	snapshot := uut.SetRange(1.234, 2.0051)

	// then
	assert.Equal(t, 1.23, *snapshot.A)
	assert.Equal(t, 2.01, *snapshot.B)
}

func TestSetA_SwapsWhenInvertingOrder(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.SetRange(2, 5)

	// when
	snapshot := uut.SetA(ptr(6))

	// then
	assert.Equal(t, 5.0, *snapshot.A)
	assert.Equal(t, 6.0, *snapshot.B)
}

func TestSetB_SwapsWhenInvertingOrder(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.SetRange(2, 5)

	// when
	snapshot := uut.SetB(ptr(1))

	// then
	assert.Equal(t, 1.0, *snapshot.A)
	assert.Equal(t, 2.0, *snapshot.B)
}

func TestSetB_NilClearsEndpoint(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.SetRange(2, 5)

	// when
	snapshot := uut.SetB(nil)

	// then
	assert.Nil(t, snapshot.B)
	assert.Equal(t, 2.0, *snapshot.A)
	assert.Equal(t, MarkerARegion, Project(snapshot).Kind)
}

func TestMutations_ResetCountButNotTarget(t *testing.T) {
	mutations := map[string]func(s *Storage){
		"setRange":        func(s *Storage) { s.SetRange(1, 3) },
		"setA":            func(s *Storage) { s.SetA(ptr(1.5)) },
		"setB":            func(s *Storage) { s.SetB(ptr(4)) },
		"setBAndEnable":   func(s *Storage) { s.SetBAndEnable(4) },
		"setEnabled":      func(s *Storage) { s.SetEnabled(false) },
		"setLoopingRange": func(s *Storage) { s.SetLoopingRange(1, 3) },
		"reset":           func(s *Storage) { s.Reset() },
	}

	for name, mutate := range mutations {
		// given
		uut := newTestStorage(t)
		uut.SetRange(2, 5)
		uut.SetEnabled(true)
		uut.SetTarget(3)
		uut.IncrementCount()
		uut.IncrementCount()

		// when
		mutate(uut)

		// then
		snapshot := uut.Snapshot()
		assert.Equal(t, 0, snapshot.Count, name)
		assert.Equal(t, 3, snapshot.Target, name)
	}
}

func TestReset_ClearsRangeAndEnabled(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.SetRange(2, 5)
	uut.SetEnabled(true)
	uut.IncrementCount()

	// when
	snapshot := uut.Reset()

	// then
	assert.Nil(t, snapshot.A)
	assert.Nil(t, snapshot.B)
	assert.False(t, snapshot.Enabled)
	assert.Equal(t, 0, snapshot.Count)
	assert.Equal(t, NoRegion, Project(snapshot).Kind)
}

func TestSetTarget_Clamps(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// then
	assert.Equal(t, 0, uut.SetTarget(-4).Target)
	assert.Equal(t, MaxRepeatTarget, uut.SetTarget(5000).Target)
	assert.Equal(t, 7, uut.SetTarget(7).Target)
}

func TestSetTiming_ClampsEachFieldIndependently(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// when
	snapshot := uut.SetTiming(Timing{PreRollSec: 3.5, FadeMs: -10, AutoPauseMs: 700})

	// then
	assert.Equal(t, MaxPreRollSec, snapshot.Timing.PreRollSec)
	assert.Equal(t, 0, snapshot.Timing.FadeMs)
	assert.Equal(t, 700, snapshot.Timing.AutoPauseMs)
}

func TestLoopable_RequiresMinimumSpan(t *testing.T) {
	// given
	uut := newTestStorage(t)

	// then
	assert.False(t, uut.SetRange(2, 2.05).Loopable())
	assert.True(t, uut.SetRange(2, 2.06).Loopable())
	assert.False(t, uut.SetRange(3, 3).Loopable())
}

func TestSetRange_ObserversNeverSeeInvertedRange(t *testing.T) {
	// given
	uut := newTestStorage(t)
	received := make(chan Change, 1000)
	uut.Subscribe(func(change Change) {
		received <- change
	}, nil)

	wg := &sync.WaitGroup{}
	stopReading := make(chan struct{})
	inverted := make(chan Snapshot, 1)
	go func() {
		for {
			select {
			case <-stopReading:
				return
			default:
			}

			snapshot := uut.Snapshot()
			if snapshot.A != nil && snapshot.B != nil && *snapshot.A > *snapshot.B {
				select {
				case inverted <- snapshot:
				default:
				}
			}
		}
	}()

	// when
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				uut.SetRange(float64(i), float64(i)/2)
			} else {
				uut.SetA(ptr(float64(i) * 3))
				uut.SetB(ptr(float64(i)))
			}
		}(i)
	}
	wg.Wait()
	close(stopReading)

	// then
	select {
	case snapshot := <-inverted:
		t.Fatalf("Observed inverted snapshot: a=%v b=%v", *snapshot.A, *snapshot.B)
	default:
	}

	for len(received) > 0 {
		change := <-received
		if change.Snapshot.A != nil && change.Snapshot.B != nil {
			assert.LessOrEqual(t, *change.Snapshot.A, *change.Snapshot.B)
		}
	}
}

func TestChanges_CarryIncreasingRevisions(t *testing.T) {
	// given
	uut := newTestStorage(t)
	revisions := make(chan Change, 3)
	uut.Subscribe(func(change Change) {
		revisions <- change
	}, nil)

	// when
	uut.SetA(ptr(1))
	uut.SetB(ptr(2))
	uut.SetEnabled(true)

	// then
	first, second, third := <-revisions, <-revisions, <-revisions
	assert.Equal(t, RangeChange, first.Variant())
	assert.Equal(t, EnabledChange, third.Variant())
	assert.Less(t, first.Revision, second.Revision)
	assert.Less(t, second.Revision, third.Revision)
	assert.True(t, third.Snapshot.Looping())
}

func TestSetRange_IgnoresNonFiniteEndpoints(t *testing.T) {
	cases := map[string][2]float64{
		"positive infinity": {1, math.Inf(1)},
		"negative infinity": {math.Inf(-1), 3},
		"nan":               {math.NaN(), 3},
	}

	for name, c := range cases {
		// given
		uut := newTestStorage(t)
		uut.SetRange(2, 5)

		// when
		snapshot := uut.SetRange(c[0], c[1])

		// then
		require.NotNil(t, snapshot.A, name)
		require.NotNil(t, snapshot.B, name)
		assert.Equal(t, 2.0, *snapshot.A, name)
		assert.Equal(t, 5.0, *snapshot.B, name)

		_, err := json.Marshal(snapshot)
		assert.NoError(t, err, name)
		_, err = json.Marshal(Project(snapshot))
		assert.NoError(t, err, name)
	}
}

func TestSetB_IgnoresInfinity(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.SetA(ptr(1))

	// when
	snapshot := uut.SetB(ptr(math.Inf(1)))

	// then
	assert.Nil(t, snapshot.B)
	assert.False(t, snapshot.Loopable())
}

func TestSnap_NonFiniteIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Snap(math.Inf(1)))
	assert.Equal(t, 0.0, Snap(math.Inf(-1)))
	assert.Equal(t, 0.0, Snap(math.NaN()))
}

func TestSetLoopingRange_SingleTransition(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.SetRange(1, 2)
	changes := make(chan Change, 4)
	uut.Subscribe(func(change Change) {
		changes <- change
	}, nil)

	// when
	snapshot := uut.SetLoopingRange(6, 4)

	// then
	assert.True(t, snapshot.Looping())
	change := <-changes
	assert.Equal(t, RangeChange, change.Variant())
	assert.True(t, change.Snapshot.Looping())
	require.NotNil(t, change.Snapshot.A)
	assert.Equal(t, 4.0, *change.Snapshot.A)
	assert.Len(t, changes, 0)
}

func TestSetBAndEnable_SwapsAndEnablesAtOnce(t *testing.T) {
	// given
	uut := newTestStorage(t)
	uut.SetA(ptr(5))
	changes := make(chan Change, 4)
	uut.Subscribe(func(change Change) {
		changes <- change
	}, nil)

	// when
	snapshot := uut.SetBAndEnable(2)

	// then
	require.NotNil(t, snapshot.A)
	require.NotNil(t, snapshot.B)
	assert.Equal(t, 2.0, *snapshot.A)
	assert.Equal(t, 5.0, *snapshot.B)
	change := <-changes
	assert.True(t, change.Snapshot.Looping())
	assert.Len(t, changes, 0)
}
