package api

import (
	"log"
	"sync"
	"time"

	"github.com/sarpt/mpv-repeat-player/pkg/state"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/preferences"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/recent"
	"golang.org/x/time/rate"
)

const (
	lastTimeSaveInterval = 2 * time.Second
)

// persistence keeps the preferences store in sync with the state repository.
type persistence struct {
	errLog     *log.Logger
	limiter    *rate.Limiter
	lock       *sync.Mutex
	pending    *lastTime
	repository state.Repository
	store      *preferences.Store
}

type lastTime struct {
	path string
	time float64
}

func newPersistence(store *preferences.Store, repository state.Repository, errLog *log.Logger) *persistence {
	return &persistence{
		errLog:     errLog,
		limiter:    rate.NewLimiter(rate.Every(lastTimeSaveInterval), 1),
		lock:       &sync.Mutex{},
		repository: repository,
		store:      store,
	}
}

// restore loads persisted preferences into the repository.
func (p *persistence) restore() error {
	settings, err := p.store.Settings()
	if err != nil {
		return err
	}

	p.repository.Playback().SetRate(settings.PlaybackRate)
	p.repository.Playback().SetVolume(settings.Volume)
	p.repository.Playback().SetZoom(settings.Zoom)
	p.repository.Loop().SetTiming(settings.Timing)
	p.repository.Loop().SetTarget(settings.RepeatTarget)

	savedBookmarks, err := p.store.Bookmarks()
	if err != nil {
		return err
	}
	p.repository.Bookmarks().Load(savedBookmarks)

	recentItems, err := p.store.Recent()
	if err != nil {
		return err
	}
	p.repository.Recent().Load(recentItems)

	return nil
}

// subscribe starts saving changes of persisted state. Returned functions unsubscribe.
func (p *persistence) subscribe() []func() {
	return []func(){
		p.repository.Playback().Subscribe(p.handlePlaybackChange, func(err error) {}),
		p.repository.Loop().Subscribe(p.handleLoopChange, func(err error) {}),
		p.repository.Bookmarks().Subscribe(p.handleBookmarksChange, func(err error) {}),
		p.repository.Recent().Subscribe(p.handleRecentChange, func(err error) {}),
	}
}

// flush writes the last throttled playback position and all settings.
func (p *persistence) flush() {
	p.lock.Lock()
	pending := p.pending
	p.pending = nil
	p.lock.Unlock()

	if pending != nil {
		p.repository.Recent().UpdateLastTime(pending.path, pending.time)
		p.saveRecent()
	}

	p.saveSettings()
}

func (p *persistence) handlePlaybackChange(change playback.Change) {
	switch change.ChangeVariant {
	case playback.RateChange, playback.VolumeChange, playback.ZoomChange:
		p.saveSettings()
	case playback.PlaybackTimeChange:
		p.handlePlaybackTime(change.Snapshot)
	}
}

func (p *persistence) handlePlaybackTime(snapshot playback.Snapshot) {
	if snapshot.Stopped || snapshot.MediaFilePath == "" {
		return
	}

	if !p.limiter.Allow() {
		p.lock.Lock()
		p.pending = &lastTime{path: snapshot.MediaFilePath, time: snapshot.CurrentTime}
		p.lock.Unlock()

		return
	}

	p.lock.Lock()
	p.pending = nil
	p.lock.Unlock()

	p.repository.Recent().UpdateLastTime(snapshot.MediaFilePath, snapshot.CurrentTime)
}

func (p *persistence) handleLoopChange(change loop.Change) {
	switch change.ChangeVariant {
	case loop.TargetChange, loop.TimingChange:
		p.saveSettings()
	}
}

func (p *persistence) handleBookmarksChange(change bookmarks.Change) {
	if change.ChangeVariant == bookmarks.LoadedBookmarksChange {
		return
	}

	err := p.store.SaveBookmarks(p.repository.Bookmarks().All())
	if err != nil {
		p.errLog.Printf("could not save bookmarks: %s\n", err)
	}
}

func (p *persistence) handleRecentChange(change recent.Change) {
	if change.ChangeVariant == recent.LoadedChange {
		return
	}

	p.saveRecent()
}

func (p *persistence) saveRecent() {
	err := p.store.SaveRecent(p.repository.Recent().All())
	if err != nil {
		p.errLog.Printf("could not save recent files: %s\n", err)
	}
}

func (p *persistence) saveSettings() {
	playbackSnapshot := p.repository.Playback().Snapshot()
	loopSnapshot := p.repository.Loop().Snapshot()

	err := p.store.SaveSettings(preferences.Settings{
		PlaybackRate: playbackSnapshot.Rate,
		Volume:       playbackSnapshot.Volume,
		Zoom:         playbackSnapshot.Zoom,
		Timing:       loopSnapshot.Timing,
		RepeatTarget: loopSnapshot.Target,
	})
	if err != nil {
		p.errLog.Printf("could not save settings: %s\n", err)
	}
}
