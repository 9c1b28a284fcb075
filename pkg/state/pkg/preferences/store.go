package preferences

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/recent"
)

var (
	settingsKey  = []byte("pref:settings")
	bookmarksKey = []byte("pref:bookmarks")
	recentKey    = []byte("pref:recent")
)

// Settings are scalar user preferences restored on start.
type Settings struct {
	PlaybackRate float64     `json:"playbackRate"`
	Volume       float64     `json:"volume"`
	Zoom         float64     `json:"zoom"`
	Timing       loop.Timing `json:"timing"`
	RepeatTarget int         `json:"repeatTarget"`
}

// DefaultSettings returns preferences of a first run.
func DefaultSettings() Settings {
	return Settings{
		PlaybackRate: playback.DefaultRate,
		Volume:       playback.DefaultVolume,
		Zoom:         playback.DefaultZoom,
		Timing:       loop.DefaultTiming(),
	}
}

// Config specifies where preferences are kept. Path is ignored when InMemory is set.
type Config struct {
	Path     string
	InMemory bool
}

// Store persists preferences as JSON values in a badger database.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the preferences database.
func Open(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open preferences database: %w", err)
	}

	return &Store{
		db: db,
	}, nil
}

// Bookmarks returns persisted bookmarks, or none when nothing was saved yet.
func (s *Store) Bookmarks() ([]bookmarks.Bookmark, error) {
	var items []bookmarks.Bookmark
	err := s.get(bookmarksKey, &items)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []bookmarks.Bookmark{}, nil
	}

	return items, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Recent returns persisted recent files, or none when nothing was saved yet.
func (s *Store) Recent() ([]recent.Item, error) {
	var items []recent.Item
	err := s.get(recentKey, &items)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []recent.Item{}, nil
	}

	return items, err
}

func (s *Store) SaveBookmarks(items []bookmarks.Bookmark) error {
	return s.set(bookmarksKey, items)
}

func (s *Store) SaveRecent(items []recent.Item) error {
	return s.set(recentKey, items)
}

func (s *Store) SaveSettings(settings Settings) error {
	return s.set(settingsKey, settings)
}

// Settings returns persisted settings. Fields missing from the stored value keep their defaults.
func (s *Store) Settings() (Settings, error) {
	settings := DefaultSettings()
	err := s.get(settingsKey, &settings)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return DefaultSettings(), nil
	}

	if err != nil {
		return DefaultSettings(), err
	}

	settings.Timing = settings.Timing.Clamped()
	return settings, nil
}

func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value of '%s': %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
