package rest

import (
	"fmt"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/api"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

type apiCall struct {
	name string
	args []interface{}
}

// fakeApi records calls and answers with configured errors.
type fakeApi struct {
	calls  []apiCall
	errors map[string]error
	lock   sync.Mutex
}

var _ api.PluginApi = &fakeApi{}

func newFakeApi() *fakeApi {
	return &fakeApi{
		errors: map[string]error{},
	}
}

func (f *fakeApi) record(name string, args ...interface{}) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls = append(f.calls, apiCall{name: name, args: args})
	return f.errors[name]
}

func (f *fakeApi) Calls() []apiCall {
	f.lock.Lock()
	defer f.lock.Unlock()

	return append([]apiCall(nil), f.calls...)
}

func (f *fakeApi) AddPhraseBookmark(label string, tag string) (bookmarks.Bookmark, error) {
	err := f.record("AddPhraseBookmark", label, tag)
	return bookmarks.Bookmark{Type: bookmarks.RegionType, Label: label, Tag: tag}, err
}

func (f *fakeApi) AddPointBookmark(label string, tag string) (bookmarks.Bookmark, error) {
	err := f.record("AddPointBookmark", label, tag)
	return bookmarks.Bookmark{Type: bookmarks.PointType, Label: label, Tag: tag}, err
}

func (f *fakeApi) AddRootDirectories(rootDirectories []common.Directory) {
	f.record("AddRootDirectories", rootDirectories)
}

func (f *fakeApi) CancelPointer() {
	f.record("CancelPointer")
}

func (f *fakeApi) ChangePause(paused bool) error {
	return f.record("ChangePause", paused)
}

func (f *fakeApi) ChangeRate(rate float64) (float64, error) {
	return rate, f.record("ChangeRate", rate)
}

func (f *fakeApi) ChangeVolume(volume float64) (float64, error) {
	return volume, f.record("ChangeVolume", volume)
}

func (f *fakeApi) ChangeZoom(zoom float64) float64 {
	f.record("ChangeZoom", zoom)
	return zoom
}

func (f *fakeApi) EditRegion(start, end float64) (loop.Snapshot, error) {
	return loop.Snapshot{}, f.record("EditRegion", start, end)
}

func (f *fakeApi) JumpToBookmark(id string) error {
	return f.record("JumpToBookmark", id)
}

func (f *fakeApi) KeyPress(key string, inTextInput bool) (bool, error) {
	err := f.record("KeyPress", key, inTextInput)
	return err == nil && !inTextInput, err
}

func (f *fakeApi) LoadFile(filePath string) error {
	return f.record("LoadFile", filePath)
}

func (f *fakeApi) PointerDown(pointer api.Pointer) error {
	return f.record("PointerDown", pointer)
}

func (f *fakeApi) PointerMove(pointer api.Pointer) error {
	return f.record("PointerMove", pointer)
}

func (f *fakeApi) PointerUp(pointer api.Pointer) error {
	return f.record("PointerUp", pointer)
}

func (f *fakeApi) RemoveBookmark(id string) (bookmarks.Bookmark, error) {
	err := f.record("RemoveBookmark", id)
	return bookmarks.Bookmark{ID: id}, err
}

func (f *fakeApi) ResetLoop() {
	f.record("ResetLoop")
}

func (f *fakeApi) Seek(time float64) error {
	return f.record("Seek", time)
}

func (f *fakeApi) SeekBy(delta float64) error {
	return f.record("SeekBy", delta)
}

func (f *fakeApi) SetLoopA(time *float64) loop.Snapshot {
	f.record("SetLoopA", time)
	return loop.Snapshot{A: time}
}

func (f *fakeApi) SetLoopB(time *float64) loop.Snapshot {
	f.record("SetLoopB", time)
	return loop.Snapshot{B: time}
}

func (f *fakeApi) SetLoopEnabled(enabled bool) loop.Snapshot {
	f.record("SetLoopEnabled", enabled)
	return loop.Snapshot{Enabled: enabled}
}

func (f *fakeApi) SetLoopRange(a, b float64) loop.Snapshot {
	f.record("SetLoopRange", a, b)
	return loop.Snapshot{A: &a, B: &b}
}

func (f *fakeApi) SetPrimaryScrubs(scrubs bool) {
	f.record("SetPrimaryScrubs", scrubs)
}

func (f *fakeApi) SetRepeatTarget(target int) loop.Snapshot {
	f.record("SetRepeatTarget", target)
	return loop.Snapshot{Target: target}
}

func (f *fakeApi) SetTiming(timing loop.Timing) loop.Snapshot {
	f.record("SetTiming", timing)
	return loop.Snapshot{Timing: timing}
}

func (f *fakeApi) StopPlayback() error {
	return f.record("StopPlayback")
}

func (f *fakeApi) TakeDirectory(path string) (common.Directory, error) {
	err := f.record("TakeDirectory", path)
	if err != nil {
		return common.Directory{}, err
	}

	return common.Directory{Path: path}, nil
}

func (f *fakeApi) UpdateBookmark(id string, patch bookmarks.Patch) (bookmarks.Bookmark, error) {
	err := f.record("UpdateBookmark", id, patch)
	return bookmarks.Bookmark{ID: id}, err
}

func notFound(what string) error {
	return common.StatusError{Err: fmt.Errorf("%s not found", what), Status: 404}
}
