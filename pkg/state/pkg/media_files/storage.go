package media_files

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

var (
	ErrNoMediaFileAvailable = errors.New("media file with specified path does not exist")
)

const (
	// AddedMediaFilesChange notifies about addition of mediaFiles to the list of mediaFiles handled by the application.
	AddedMediaFilesChange common.ChangeVariant = "added"

	// RemovedMediaFilesChange notifies about removal of mediaFiles from the list.
	RemovedMediaFilesChange common.ChangeVariant = "removed"
)

type SubscriberCB = func(change Change)

// Change holds information about changes to the list of mediaFiles being served.
type Change struct {
	ChangeVariant common.ChangeVariant
	Items         map[string]Entry
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (mc Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(mc.Items)
}

func (mc Change) Variant() common.ChangeVariant {
	return mc.ChangeVariant
}

// Storage is an aggregate state of the media files being served by the server instance.
// Any modification done on the state should be done by exposed methods which should guarantee goroutine access safety.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	items       map[string]Entry
	lock        *sync.RWMutex
}

// NewStorage counstructs MediaFiles state.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		items:       map[string]Entry{},
		lock:        &sync.RWMutex{},
	}
}

// Add appends a mediaFile to the list of mediaFiles served on current server instance.
// Adding a path already present is a no-op.
func (m *Storage) Add(mediaFile Entry) {
	path := mediaFile.path

	m.lock.Lock()
	if _, ok := m.items[path]; ok {
		m.lock.Unlock()
		return
	}

	m.items[path] = mediaFile
	m.lock.Unlock()

	m.broadcaster.Send(Change{
		ChangeVariant: AddedMediaFilesChange,
		Items: map[string]Entry{
			path: mediaFile,
		},
	})
}

// All returns a copy of all MediaFiles being served by the instance of the server.
func (m *Storage) All() map[string]Entry {
	allMediaFiles := map[string]Entry{}

	m.lock.RLock()
	defer m.lock.RUnlock()

	for path, mediaFile := range m.items {
		allMediaFiles[path] = mediaFile
	}

	return allMediaFiles
}

// ByPath returns a MediaFile by a provided path.
// When media file cannot be found, the error is being reported.
func (m *Storage) ByPath(path string) (Entry, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	mediaFile, ok := m.items[path]
	if !ok {
		return Entry{}, ErrNoMediaFileAvailable
	}

	return mediaFile, nil
}

// ByUuid returns a MediaFile by its UUID.
func (m *Storage) ByUuid(id string) (Entry, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for _, mediaFile := range m.items {
		if mediaFile.uuid == id {
			return mediaFile, nil
		}
	}

	return Entry{}, ErrNoMediaFileAvailable
}

// Exists checks whether media file with provided path exists.
func (m *Storage) Exists(path string) bool {
	_, err := m.ByPath(path)

	return err == nil
}

// PathsUnderParent returns paths of media files under provided parent
// (path to directory).
func (m *Storage) PathsUnderParent(parentPath string) []string {
	parentPath = common.EnsureDirectoryPath(parentPath)

	m.lock.RLock()
	defer m.lock.RUnlock()

	var paths []string
	for _, mediaFile := range m.items {
		if strings.HasPrefix(mediaFile.path, parentPath) {
			paths = append(paths, mediaFile.path)
		}
	}

	return paths
}

func (m *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return m.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

// Take removes MediaFile by a provided path from the state,
// returning the object for use after removal.
// When media file cannot be found, the error is being reported.
func (m *Storage) Take(path string) (Entry, error) {
	taken, skipped := m.TakeMultiple([]string{path})
	if len(skipped) > 0 {
		return Entry{}, ErrNoMediaFileAvailable
	}

	return taken[0], nil
}

// TakeMultiple removed MediaFiles with provided paths from the state,
// returning objects for use after removal as first return value,
// and skipped paths (not found ones) as a second return value.
func (m *Storage) TakeMultiple(paths []string) ([]Entry, []string) {
	var skipped []string
	var taken []Entry

	change := Change{
		ChangeVariant: RemovedMediaFilesChange,
		Items:         map[string]Entry{},
	}

	m.lock.Lock()
	for _, path := range paths {
		mediaFile, ok := m.items[path]
		if !ok {
			skipped = append(skipped, path)
			continue
		}

		delete(m.items, path)
		taken = append(taken, mediaFile)
		change.Items[mediaFile.path] = mediaFile
	}
	m.lock.Unlock()

	if len(change.Items) > 0 {
		m.broadcaster.Send(change)
	}

	return taken, skipped
}
