package api

import (
	"errors"
	"fmt"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
)

// AddPhraseBookmark saves the current loop range as a REGION bookmark.
func (s *Server) AddPhraseBookmark(label string, tag string) (bookmarks.Bookmark, error) {
	a, b, ok := s.statesRepository.Loop().Snapshot().Bounds()
	if !ok {
		return bookmarks.Bookmark{}, fmt.Errorf("%w: %s", common.ErrInvalidArgument, bookmarks.ErrEmptyPhrase)
	}

	bookmark, err := s.statesRepository.Bookmarks().AddRegion(a, b, label, tag)
	if errors.Is(err, bookmarks.ErrEmptyPhrase) {
		return bookmark, fmt.Errorf("%w: %s", common.ErrInvalidArgument, err)
	}

	return bookmark, err
}

// AddPointBookmark saves the current playback position as a POINT bookmark.
func (s *Server) AddPointBookmark(label string, tag string) (bookmarks.Bookmark, error) {
	snapshot := s.statesRepository.Playback().Snapshot()
	if snapshot.Stopped {
		return bookmarks.Bookmark{}, fmt.Errorf("%w: %s", common.ErrInvalidArgument, ErrNoMediaLoaded)
	}

	return s.statesRepository.Bookmarks().AddPoint(snapshot.CurrentTime, label, tag), nil
}

// JumpToBookmark seeks to a POINT bookmark, or loops a REGION bookmark from its start.
func (s *Server) JumpToBookmark(id string) error {
	bookmark, err := s.statesRepository.Bookmarks().ByID(id)
	if err != nil {
		return common.StatusError{Err: err, Status: 404}
	}

	if bookmark.Type == bookmarks.PointType && bookmark.Time != nil {
		return s.Seek(*bookmark.Time)
	}

	if bookmark.Start == nil || bookmark.End == nil {
		return fmt.Errorf("%w: bookmark %s has no range", common.ErrInvalidArgument, id)
	}

	s.statesRepository.Loop().SetLoopingRange(*bookmark.Start, *bookmark.End)
	return s.Seek(*bookmark.Start)
}

func (s *Server) RemoveBookmark(id string) (bookmarks.Bookmark, error) {
	bookmark, err := s.statesRepository.Bookmarks().Remove(id)
	if errors.Is(err, bookmarks.ErrBookmarkNotFound) {
		return bookmark, common.StatusError{Err: err, Status: 404}
	}

	return bookmark, err
}

func (s *Server) UpdateBookmark(id string, patch bookmarks.Patch) (bookmarks.Bookmark, error) {
	bookmark, err := s.statesRepository.Bookmarks().Update(id, patch)
	if errors.Is(err, bookmarks.ErrBookmarkNotFound) {
		return bookmark, common.StatusError{Err: err, Status: 404}
	}

	return bookmark, err
}
