package directories

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

var (
	ErrNoDirectoryAvailable = errors.New("directory does not exist")
)

const (
	// AddedDirectoriesChange notifies about addition of a media directory.
	AddedDirectoriesChange common.ChangeVariant = "added"

	// RemovedDirectoriesChange notifies about removal of a media directory.
	RemovedDirectoriesChange common.ChangeVariant = "removed"
)

type SubscriberCB = func(change Change)

// Entry describes a media directory with its watching mode.
type Entry = common.Directory

// Change holds information about changes to the collection of directories being handled.
type Change struct {
	variant common.ChangeVariant
	items   map[string]Entry
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (d Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.items)
}

func (d Change) Variant() common.ChangeVariant {
	return d.variant
}

// Items returns directories affected by the change.
func (d Change) Items() map[string]Entry {
	return d.items
}

// Storage keeps media directories scanned for playable files.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	items       map[string]Entry
	lock        *sync.RWMutex
}

// NewStorage counstructs Directories state.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		items:       map[string]Entry{},
		lock:        &sync.RWMutex{},
	}
}

// Add appends a directory to the collection of directories handled by current server instance.
// Returns false when the directory was already handled.
func (d *Storage) Add(dir Entry) bool {
	path := common.EnsureDirectoryPath(dir.Path)
	dir.Path = path

	d.lock.Lock()
	if _, ok := d.items[path]; ok {
		d.lock.Unlock()
		return false
	}

	d.items[path] = dir
	d.lock.Unlock()

	d.broadcaster.Send(Change{
		variant: AddedDirectoriesChange,
		items: map[string]Entry{
			path: dir,
		},
	})

	return true
}

// All returns a copy of all Directories being handled by the instance of the server.
func (d *Storage) All() map[string]Entry {
	allDirectories := map[string]Entry{}

	d.lock.RLock()
	defer d.lock.RUnlock()

	for path, dir := range d.items {
		allDirectories[path] = dir
	}

	return allDirectories
}

// ByPath returns a directory by a provided path.
// When directory cannot be found, the error is being reported.
func (d *Storage) ByPath(path string) (Entry, error) {
	keyPath := common.EnsureDirectoryPath(path)

	d.lock.RLock()
	defer d.lock.RUnlock()

	dir, ok := d.items[keyPath]
	if !ok {
		return Entry{}, ErrNoDirectoryAvailable
	}

	return dir, nil
}

// Exists checks wheter directory under path is handled.
func (d *Storage) Exists(path string) bool {
	_, err := d.ByPath(path)

	return err == nil
}

// ParentByPath returns direct parent of the path.
// If not found, returns error ErrNoDirectoryAvailable.
func (d *Storage) ParentByPath(path string) (Entry, error) {
	return d.ByPath(filepath.Dir(path))
}

func (d *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return d.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

// Take removes directory by a provided path from the state,
// returning the object for use after removal.
// When directory cannot be found, the error is being reported.
func (d *Storage) Take(path string) (Entry, error) {
	keyPath := common.EnsureDirectoryPath(path)

	d.lock.Lock()
	dir, ok := d.items[keyPath]
	if !ok {
		d.lock.Unlock()
		return Entry{}, ErrNoDirectoryAvailable
	}

	delete(d.items, keyPath)
	d.lock.Unlock()

	d.broadcaster.Send(Change{
		variant: RemovedDirectoriesChange,
		items: map[string]Entry{
			keyPath: dir,
		},
	})

	return dir, nil
}
