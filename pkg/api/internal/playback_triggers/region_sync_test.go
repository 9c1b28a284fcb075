package playback_triggers

import (
	"testing"
	"time"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/overlay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncedStorages(t *testing.T) (*loop.Storage, *overlay.Storage) {
	t.Helper()

	loopBroadcaster := common.NewChangesBroadcaster[loop.Change]()
	loopBroadcaster.Broadcast()
	t.Cleanup(loopBroadcaster.Close)

	overlayBroadcaster := common.NewChangesBroadcaster[overlay.Change]()
	overlayBroadcaster.Broadcast()
	t.Cleanup(overlayBroadcaster.Close)

	loopStorage := loop.NewStorage(loopBroadcaster)
	overlayStorage := overlay.NewStorage(overlayBroadcaster)
	t.Cleanup(SyncRegion(loopStorage, overlayStorage))

	return loopStorage, overlayStorage
}

func TestSyncRegion_ProjectsRangeChanges(t *testing.T) {
	// given
	loopStorage, overlayStorage := newSyncedStorages(t)

	// when
	loopStorage.SetRange(5, 2)
	loopStorage.SetEnabled(true)

	// then
	require.Eventually(t, func() bool {
		region := overlayStorage.Snapshot().Region
		return region.Kind == loop.RangeRegion && region.Enabled
	}, time.Second, 5*time.Millisecond)

	region := overlayStorage.Snapshot().Region
	assert.Equal(t, 2.0, region.Start)
	assert.Equal(t, 5.0, region.End)
}

func TestSyncRegion_ResetClearsRegion(t *testing.T) {
	// given
	loopStorage, overlayStorage := newSyncedStorages(t)
	loopStorage.SetRange(2, 5)
	require.Eventually(t, func() bool {
		return overlayStorage.Snapshot().Region.Kind == loop.RangeRegion
	}, time.Second, 5*time.Millisecond)

	// when
	loopStorage.Reset()

	// then
	require.Eventually(t, func() bool {
		return overlayStorage.Snapshot().Region.Kind == loop.NoRegion
	}, time.Second, 5*time.Millisecond)
}

func TestSyncRegion_SingleMarker(t *testing.T) {
	// given
	loopStorage, overlayStorage := newSyncedStorages(t)
	b := 4.0

	// when
	loopStorage.SetB(&b)

	// then
	require.Eventually(t, func() bool {
		return overlayStorage.Snapshot().Region.Kind == loop.MarkerBRegion
	}, time.Second, 5*time.Millisecond)
}
