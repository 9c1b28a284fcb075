package playback_triggers

import (
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/overlay"
)

// SyncRegion keeps the overlay region a projection of the loop state.
// The current loop state is projected immediately; every later loop change
// replaces the region wholesale. Returned function stops the synchronization.
func SyncRegion(loopStorage *loop.Storage, overlayStorage *overlay.Storage) func() {
	overlayStorage.ReplaceRegion(loop.Project(loopStorage.Snapshot()), loopStorage.Revision())

	return loopStorage.Subscribe(func(change loop.Change) {
		switch change.ChangeVariant {
		case loop.CountChange, loop.TargetChange, loop.TimingChange:
			return
		}

		overlayStorage.ReplaceRegion(loop.Project(change.Snapshot), change.Revision)
	}, nil)
}
