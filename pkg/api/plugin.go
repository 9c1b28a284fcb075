package api

import (
	"net/http"
	"time"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

// Plugin is a transport exposing the player, mounted under its PathBase.
type Plugin interface {
	Handler() http.Handler
	Init(apiServer PluginApi) error
	Name() string
	PathBase() string
	Shutdown()
}

// Pointer describes a pointer gesture sample. Button is one of "primary", "secondary" or "touch".
type Pointer struct {
	At     time.Time
	Button string
	Time   float64
	X      float64
	Y      float64
}

// PluginApi lists operations available to plugins.
type PluginApi interface {
	AddPhraseBookmark(label string, tag string) (bookmarks.Bookmark, error)
	AddPointBookmark(label string, tag string) (bookmarks.Bookmark, error)
	AddRootDirectories(rootDirectories []common.Directory)
	CancelPointer()
	ChangePause(paused bool) error
	ChangeRate(rate float64) (float64, error)
	ChangeVolume(volume float64) (float64, error)
	ChangeZoom(zoom float64) float64
	EditRegion(start, end float64) (loop.Snapshot, error)
	JumpToBookmark(id string) error
	KeyPress(key string, inTextInput bool) (bool, error)
	LoadFile(filePath string) error
	PointerDown(pointer Pointer) error
	PointerMove(pointer Pointer) error
	PointerUp(pointer Pointer) error
	RemoveBookmark(id string) (bookmarks.Bookmark, error)
	ResetLoop()
	Seek(time float64) error
	SeekBy(delta float64) error
	SetLoopA(time *float64) loop.Snapshot
	SetLoopB(time *float64) loop.Snapshot
	SetLoopEnabled(enabled bool) loop.Snapshot
	SetLoopRange(a, b float64) loop.Snapshot
	SetPrimaryScrubs(scrubs bool)
	SetRepeatTarget(target int) loop.Snapshot
	SetTiming(timing loop.Timing) loop.Snapshot
	StopPlayback() error
	TakeDirectory(path string) (common.Directory, error)
	UpdateBookmark(id string, patch bookmarks.Patch) (bookmarks.Bookmark, error)
}
