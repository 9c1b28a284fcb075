package sse

import (
	"encoding/json"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/directories"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/media_files"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/overlay"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/recent"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/status"
)

const (
	bookmarksSSEChannelVariant   ChannelVariant = "bookmarks"
	directoriesSSEChannelVariant ChannelVariant = "directories"
	loopSSEChannelVariant        ChannelVariant = "loop"
	mediaFilesSSEChannelVariant  ChannelVariant = "mediaFiles"
	overlaySSEChannelVariant     ChannelVariant = "overlay"
	playbackSSEChannelVariant    ChannelVariant = "playback"
	recentSSEChannelVariant      ChannelVariant = "recent"
	statusSSEChannelVariant      ChannelVariant = "status"
)

type directoriesMapChange struct {
	Directories map[string]common.Directory
}

func (dmc directoriesMapChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(dmc.Directories)
}

type mediaFilesMapChange struct {
	MediaFiles map[string]media_files.Entry
}

func (mmc mediaFilesMapChange) MarshalJSON() ([]byte, error) {
	return json.Marshal(mmc.MediaFiles)
}

func newBookmarksChannel(storage *bookmarks.Storage) *stateChannel[bookmarks.Change] {
	return newStateChannel(bookmarksSSEChannelVariant, func() json.Marshaler {
		return storage
	}, changeAsPayload[bookmarks.Change])
}

func newDirectoriesChannel(storage *directories.Storage) *stateChannel[directories.Change] {
	return newStateChannel(directoriesSSEChannelVariant, func() json.Marshaler {
		return directoriesMapChange{Directories: storage.All()}
	}, changeAsPayload[directories.Change])
}

func newLoopChannel(storage *loop.Storage) *stateChannel[loop.Change] {
	return newStateChannel(loopSSEChannelVariant, func() json.Marshaler {
		return storage
	}, changeAsPayload[loop.Change])
}

func newMediaFilesChannel(storage *media_files.Storage) *stateChannel[media_files.Change] {
	return newStateChannel(mediaFilesSSEChannelVariant, func() json.Marshaler {
		return mediaFilesMapChange{MediaFiles: storage.All()}
	}, changeAsPayload[media_files.Change])
}

func newOverlayChannel(storage *overlay.Storage) *stateChannel[overlay.Change] {
	return newStateChannel(overlaySSEChannelVariant, func() json.Marshaler {
		return storage
	}, changeAsPayload[overlay.Change])
}

func newPlaybackChannel(storage *playback.Storage) *stateChannel[playback.Change] {
	return newStateChannel(playbackSSEChannelVariant, func() json.Marshaler {
		return storage
	}, changeAsPayload[playback.Change])
}

func newRecentChannel(storage *recent.Storage) *stateChannel[recent.Change] {
	return newStateChannel(recentSSEChannelVariant, func() json.Marshaler {
		return storage
	}, changeAsPayload[recent.Change])
}

// newStatusChannel sends whole status on every change, since status changes carry no payload.
func newStatusChannel(storage *status.Storage) *stateChannel[status.Change] {
	return newStateChannel(statusSSEChannelVariant, func() json.Marshaler {
		return storage
	}, func(status.Change) json.Marshaler {
		return storage
	})
}
