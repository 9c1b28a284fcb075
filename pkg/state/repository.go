package state

import (
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

// Repository gives access to every storage of a player session.
type Repository interface {
	Bookmarks() *bookmarks.Storage
	Directories() *directories.Storage
	Loop() *loop.Storage
	MediaFiles() *media_files.Storage
	Overlay() *overlay.Storage
	Playback() *playback.Storage
	Recent() *recent.Storage
	Status() *status.Storage
	Close()
}

type inMemoryRepository struct {
	bookmarks   *bookmarks.Storage
	closers     []func()
	directories *directories.Storage
	loop        *loop.Storage
	mediaFiles  *media_files.Storage
	overlay     *overlay.Storage
	playback    *playback.Storage
	recent      *recent.Storage
	status      *status.Storage
}

func (r *inMemoryRepository) Bookmarks() *bookmarks.Storage {
	return r.bookmarks
}

// Close stops broadcasting of all storages.
func (r *inMemoryRepository) Close() {
	for _, closer := range r.closers {
		closer()
	}
}

func (r *inMemoryRepository) Directories() *directories.Storage {
	return r.directories
}

func (r *inMemoryRepository) Loop() *loop.Storage {
	return r.loop
}

func (r *inMemoryRepository) MediaFiles() *media_files.Storage {
	return r.mediaFiles
}

func (r *inMemoryRepository) Overlay() *overlay.Storage {
	return r.overlay
}

func (r *inMemoryRepository) Playback() *playback.Storage {
	return r.playback
}

func (r *inMemoryRepository) Recent() *recent.Storage {
	return r.recent
}

func (r *inMemoryRepository) Status() *status.Storage {
	return r.status
}

func NewRepository() Repository {
	bookmarksBroadcaster := createAndInitChangesBroadcaster[bookmarks.Change]()
	directoriesBroadcaster := createAndInitChangesBroadcaster[directories.Change]()
	loopBroadcaster := createAndInitChangesBroadcaster[loop.Change]()
	mediaFilesBroadcaster := createAndInitChangesBroadcaster[media_files.Change]()
	overlayBroadcaster := createAndInitChangesBroadcaster[overlay.Change]()
	playbackBroadcaster := createAndInitChangesBroadcaster[playback.Change]()
	recentBroadcaster := createAndInitChangesBroadcaster[recent.Change]()
	statusBroadcaster := createAndInitChangesBroadcaster[status.Change]()

	return &inMemoryRepository{
		bookmarks: bookmarks.NewStorage(bookmarksBroadcaster),
		closers: []func(){
			bookmarksBroadcaster.Close,
			directoriesBroadcaster.Close,
			loopBroadcaster.Close,
			mediaFilesBroadcaster.Close,
			overlayBroadcaster.Close,
			playbackBroadcaster.Close,
			recentBroadcaster.Close,
			statusBroadcaster.Close,
		},
		directories: directories.NewStorage(directoriesBroadcaster),
		loop:        loop.NewStorage(loopBroadcaster),
		mediaFiles:  media_files.NewStorage(mediaFilesBroadcaster),
		overlay:     overlay.NewStorage(overlayBroadcaster),
		playback:    playback.NewStorage(playbackBroadcaster),
		recent:      recent.NewStorage(recentBroadcaster),
		status:      status.NewStorage(statusBroadcaster),
	}
}

func createAndInitChangesBroadcaster[Change common.Change]() *common.ChangesBroadcaster[Change] {
	broadcaster := common.NewChangesBroadcaster[Change]()
	broadcaster.Broadcast()

	return broadcaster
}
