package rest

import (
	"fmt"
	"net/http"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
)

const (
	idArg    = "id"
	labelArg = "label"
	queryArg = "q"
	tagArg   = "tag"
	typeArg  = "type"

	pointBookmark  = "point"
	phraseBookmark = "phrase"
)

type getBookmarksResponse struct {
	Bookmarks []bookmarks.Bookmark `json:"bookmarks"`
	Tags      []string             `json:"tags"`
}

type addBookmarkForm struct {
	Type  string `form:"type" validate:"required,oneof=point phrase"`
	Label string `form:"label" validate:"max=200"`
	Tag   string `form:"tag" validate:"max=64"`
}

type updateBookmarkForm struct {
	ID    string  `form:"id" validate:"required,uuid"`
	Label *string `form:"label" validate:"omitempty,max=200"`
	Tag   *string `form:"tag" validate:"omitempty,max=64"`
}

type bookmarkIDForm struct {
	ID string `form:"id" validate:"required,uuid"`
}

func (s *Server) getBookmarksHandler(res http.ResponseWriter, req *http.Request) {
	storage := s.statesRepository.Bookmarks()
	filter := bookmarks.Filter{
		Query: req.URL.Query().Get(queryArg),
		Tag:   req.URL.Query().Get(tagArg),
	}

	respondWithRevision(res, req, storage.Revision(), getBookmarksResponse{
		Bookmarks: storage.List(filter),
		Tags:      storage.Tags(),
	})
}

func (s *Server) postBookmarksHandler(res http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		common.RespondError(res, fmt.Errorf("%w: could not parse form data: %s", common.ErrInvalidArgument, err))
		return
	}

	form := addBookmarkForm{
		Type:  req.PostFormValue(typeArg),
		Label: req.PostFormValue(labelArg),
		Tag:   req.PostFormValue(tagArg),
	}
	if err := s.validator.Validate(form); err != nil {
		common.RespondError(res, err)
		return
	}

	var bookmark bookmarks.Bookmark
	var err error
	if form.Type == pointBookmark {
		bookmark, err = s.api.AddPointBookmark(form.Label, form.Tag)
	} else {
		bookmark, err = s.api.AddPhraseBookmark(form.Label, form.Tag)
	}

	if err != nil {
		common.RespondError(res, err)
		return
	}

	s.outLog.Printf("added bookmark '%s' due to request from %s\n", bookmark.Label, req.RemoteAddr)
	common.RespondJSON(res, bookmark)
}

func (s *Server) patchBookmarksHandler(res http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		common.RespondError(res, fmt.Errorf("%w: could not parse form data: %s", common.ErrInvalidArgument, err))
		return
	}

	form := updateBookmarkForm{
		ID:    req.PostFormValue(idArg),
		Label: formValuePtr(req, labelArg),
		Tag:   formValuePtr(req, tagArg),
	}
	if err := s.validator.Validate(form); err != nil {
		common.RespondError(res, err)
		return
	}

	bookmark, err := s.api.UpdateBookmark(form.ID, bookmarks.Patch{
		Label: form.Label,
		Tag:   form.Tag,
	})
	if err != nil {
		common.RespondError(res, err)
		return
	}

	common.RespondJSON(res, bookmark)
}

func (s *Server) deleteBookmarksHandler(res http.ResponseWriter, req *http.Request) {
	form := bookmarkIDForm{
		ID: req.URL.Query().Get(idArg),
	}
	if err := s.validator.Validate(form); err != nil {
		common.RespondError(res, err)
		return
	}

	bookmark, err := s.api.RemoveBookmark(form.ID)
	if err != nil {
		common.RespondError(res, err)
		return
	}

	s.outLog.Printf("removed bookmark '%s' due to request from %s\n", bookmark.Label, req.RemoteAddr)
	common.RespondJSON(res, bookmark)
}

func (s *Server) postBookmarksJumpHandler(res http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		common.RespondError(res, fmt.Errorf("%w: could not parse form data: %s", common.ErrInvalidArgument, err))
		return
	}

	form := bookmarkIDForm{
		ID: req.PostFormValue(idArg),
	}
	if err := s.validator.Validate(form); err != nil {
		common.RespondError(res, err)
		return
	}

	if err := s.api.JumpToBookmark(form.ID); err != nil {
		common.RespondError(res, err)
		return
	}

	common.RespondJSON(res, common.FormResponse{})
}

func formValuePtr(req *http.Request, arg string) *string {
	if _, ok := req.PostForm[arg]; !ok {
		return nil
	}

	value := req.PostFormValue(arg)
	return &value
}
