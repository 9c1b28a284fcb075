package recent

import (
	"encoding/json"
	"path/filepath"
	"sync"
	"time"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

// MaxItems is the length of the recent files list.
const MaxItems = 10

const (
	// OpenedChange notifies about a file being moved to the top of the list.
	OpenedChange common.ChangeVariant = "opened"

	// LastTimeChange notifies about playback position of a listed file being updated.
	LastTimeChange common.ChangeVariant = "lastTimeChange"

	// LoadedChange notifies about the list being replaced with the persisted one.
	LoadedChange common.ChangeVariant = "loaded"
)

type SubscriberCB = func(change Change)

// Item is a recently opened file with the position it was left at.
type Item struct {
	FileName     string    `json:"FileName"`
	Path         string    `json:"Path"`
	LastTime     float64   `json:"LastTime"`
	LastOpenedAt time.Time `json:"LastOpenedAt"`
}

// Change carries the whole list after the mutation.
type Change struct {
	ChangeVariant common.ChangeVariant
	Items         []Item
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items)
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage keeps recently opened files, most recent first, without duplicate paths.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	items       []Item
	lock        *sync.RWMutex
	now         func() time.Time
}

func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		lock:        &sync.RWMutex{},
		now:         time.Now,
	}
}

// All returns a copy of the list.
func (s *Storage) All() []Item {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]Item(nil), s.items...)
}

// ByPath returns the item of the path, if listed.
func (s *Storage) ByPath(path string) (Item, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, item := range s.items {
		if item.Path == path {
			return item, true
		}
	}

	return Item{}, false
}

// Load replaces the list with persisted items, keeping at most MaxItems.
func (s *Storage) Load(items []Item) {
	s.mutate(LoadedChange, func() bool {
		if len(items) > MaxItems {
			items = items[:MaxItems]
		}

		s.items = append([]Item(nil), items...)
		return true
	})
}

// MarshalJSON satisifes json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// Open moves the path to the top of the list, dropping the oldest item past MaxItems.
// Position stored for the path is kept.
func (s *Storage) Open(path string) {
	s.mutate(OpenedChange, func() bool {
		item := Item{
			FileName:     filepath.Base(path),
			Path:         path,
			LastOpenedAt: s.now(),
		}

		next := []Item{item}
		for _, existing := range s.items {
			if existing.Path == path {
				next[0].LastTime = existing.LastTime
				continue
			}

			next = append(next, existing)
		}

		if len(next) > MaxItems {
			next = next[:MaxItems]
		}

		s.items = next
		return true
	})
}

func (s *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

// UpdateLastTime stores playback position of a listed file. Unlisted paths are ignored.
func (s *Storage) UpdateLastTime(path string, lastTime float64) {
	s.mutate(LastTimeChange, func() bool {
		for idx := range s.items {
			if s.items[idx].Path == path {
				s.items[idx].LastTime = lastTime
				return true
			}
		}

		return false
	})
}

func (s *Storage) mutate(variant common.ChangeVariant, apply func() bool) {
	s.lock.Lock()
	changed := apply()
	items := append([]Item(nil), s.items...)
	s.lock.Unlock()

	if !changed {
		return
	}

	s.broadcaster.Send(Change{
		ChangeVariant: variant,
		Items:         items,
	})
}
