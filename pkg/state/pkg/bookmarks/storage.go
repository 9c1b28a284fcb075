package bookmarks

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/internal/revision"
)

const (
	// AddedBookmarksChange notifies about a new bookmark.
	AddedBookmarksChange common.ChangeVariant = "added"

	// UpdatedBookmarksChange notifies about label or tag edit of a bookmark.
	UpdatedBookmarksChange common.ChangeVariant = "updated"

	// RemovedBookmarksChange notifies about removal of a bookmark.
	RemovedBookmarksChange common.ChangeVariant = "removed"

	// LoadedBookmarksChange notifies about bookmarks being replaced with persisted ones.
	LoadedBookmarksChange common.ChangeVariant = "loaded"
)

var (
	ErrBookmarkNotFound = errors.New("bookmark with provided id does not exist")
	ErrEmptyPhrase      = errors.New("phrase end must be after its start")
)

type SubscriberCB = func(change Change)

// Change holds information about bookmarks affected by a mutation.
type Change struct {
	ChangeVariant common.ChangeVariant
	Items         map[string]Bookmark
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items)
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Filter narrows listed bookmarks. Query matches label or tag substrings, Tag matches the tag exactly; both ignore case.
type Filter struct {
	Query string
	Tag   string
}

// Patch changes label and/or tag of a bookmark. Nil fields are left untouched.
type Patch struct {
	Label *string
	Tag   *string
}

// Storage holds bookmarks of the player.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	items       map[string]Bookmark
	lock        *sync.RWMutex
	now         func() time.Time
	revision    *revision.Storage
}

func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		items:       map[string]Bookmark{},
		lock:        &sync.RWMutex{},
		now:         time.Now,
		revision:    revision.NewStorage(),
	}
}

// AddPoint saves a point bookmark at t. An empty label defaults to "Point @ m:ss".
func (s *Storage) AddPoint(t float64, label string, tag string) Bookmark {
	if label == "" {
		label = pointLabel(t)
	}

	return s.add(Bookmark{
		Type:  PointType,
		Time:  &t,
		Label: label,
		Tag:   strings.TrimSpace(tag),
	})
}

// AddRegion saves a phrase bookmark between start and end, in any order. An empty label defaults to "Phrase m:ss → m:ss".
func (s *Storage) AddRegion(start, end float64, label string, tag string) (Bookmark, error) {
	if end < start {
		start, end = end, start
	}

	if end <= start {
		return Bookmark{}, ErrEmptyPhrase
	}

	if label == "" {
		label = phraseLabel(start, end)
	}

	return s.add(Bookmark{
		Type:  RegionType,
		Start: &start,
		End:   &end,
		Label: label,
		Tag:   strings.TrimSpace(tag),
	}), nil
}

// All returns every bookmark, newest first.
func (s *Storage) All() []Bookmark {
	return s.List(Filter{})
}

// ByID returns a bookmark by its id.
func (s *Storage) ByID(id string) (Bookmark, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	bookmark, ok := s.items[id]
	if !ok {
		return Bookmark{}, ErrBookmarkNotFound
	}

	return bookmark, nil
}

// List returns bookmarks matching the filter, newest first.
func (s *Storage) List(filter Filter) []Bookmark {
	query := strings.ToLower(filter.Query)
	tag := strings.ToLower(filter.Tag)

	s.lock.RLock()
	result := make([]Bookmark, 0, len(s.items))
	for _, bookmark := range s.items {
		bookmarkTag := strings.ToLower(bookmark.Tag)
		hitQuery := query == "" || strings.Contains(strings.ToLower(bookmark.Label), query) || strings.Contains(bookmarkTag, query)
		hitTag := tag == "" || bookmarkTag == tag

		if hitQuery && hitTag {
			result = append(result, bookmark)
		}
	}
	s.lock.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}

		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

// Load replaces all bookmarks with the provided ones, skipping entries without id.
func (s *Storage) Load(items []Bookmark) {
	loaded := map[string]Bookmark{}
	for _, bookmark := range items {
		if bookmark.ID == "" {
			continue
		}

		loaded[bookmark.ID] = bookmark
	}

	s.lock.Lock()
	s.items = loaded
	change := Change{
		ChangeVariant: LoadedBookmarksChange,
		Items:         copyItems(loaded),
	}
	s.lock.Unlock()

	s.revision.Tick()
	s.broadcaster.Send(change)
}

// MarshalJSON satisifes json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// Remove deletes a bookmark by its id.
func (s *Storage) Remove(id string) (Bookmark, error) {
	s.lock.Lock()
	bookmark, ok := s.items[id]
	if !ok {
		s.lock.Unlock()
		return Bookmark{}, ErrBookmarkNotFound
	}

	delete(s.items, id)
	s.lock.Unlock()

	s.revision.Tick()
	s.broadcaster.Send(Change{
		ChangeVariant: RemovedBookmarksChange,
		Items: map[string]Bookmark{
			id: bookmark,
		},
	})

	return bookmark, nil
}

func (s *Storage) Revision() revision.Identifier {
	return s.revision.Revision()
}

func (s *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

// Tags returns distinct non-empty tags, sorted.
func (s *Storage) Tags() []string {
	s.lock.RLock()
	unique := map[string]bool{}
	for _, bookmark := range s.items {
		if bookmark.Tag != "" {
			unique[bookmark.Tag] = true
		}
	}
	s.lock.RUnlock()

	tags := make([]string, 0, len(unique))
	for tag := range unique {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

// Update applies the patch to a bookmark. Clearing the label restores the default one.
func (s *Storage) Update(id string, patch Patch) (Bookmark, error) {
	s.lock.Lock()
	bookmark, ok := s.items[id]
	if !ok {
		s.lock.Unlock()
		return Bookmark{}, ErrBookmarkNotFound
	}

	if patch.Label != nil {
		bookmark.Label = strings.TrimSpace(*patch.Label)
		if bookmark.Label == "" {
			bookmark.Label = defaultLabel(bookmark)
		}
	}

	if patch.Tag != nil {
		bookmark.Tag = strings.TrimSpace(*patch.Tag)
	}

	s.items[id] = bookmark
	s.lock.Unlock()

	s.revision.Tick()
	s.broadcaster.Send(Change{
		ChangeVariant: UpdatedBookmarksChange,
		Items: map[string]Bookmark{
			id: bookmark,
		},
	})

	return bookmark, nil
}

func (s *Storage) add(bookmark Bookmark) Bookmark {
	bookmark.ID = uuid.NewString()
	bookmark.CreatedAt = s.now()

	s.lock.Lock()
	s.items[bookmark.ID] = bookmark
	s.lock.Unlock()

	s.revision.Tick()
	s.broadcaster.Send(Change{
		ChangeVariant: AddedBookmarksChange,
		Items: map[string]Bookmark{
			bookmark.ID: bookmark,
		},
	})

	return bookmark
}

func copyItems(items map[string]Bookmark) map[string]Bookmark {
	result := make(map[string]Bookmark, len(items))
	for id, bookmark := range items {
		result[id] = bookmark
	}

	return result
}

func defaultLabel(bookmark Bookmark) string {
	if bookmark.Type == RegionType && bookmark.Start != nil && bookmark.End != nil {
		return phraseLabel(*bookmark.Start, *bookmark.End)
	}

	if bookmark.Time != nil {
		return pointLabel(*bookmark.Time)
	}

	return ""
}
