package rest

import (
	"net/http"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/media_files"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/recent"
)

type getMediaFilesRespone struct {
	MediaFiles map[string]media_files.Entry `json:"mediaFiles"`
}

type getRecentResponse struct {
	Recent []recent.Item `json:"recent"`
}

func (s *Server) getMediaFilesHandler(res http.ResponseWriter, req *http.Request) {
	common.RespondJSON(res, getMediaFilesRespone{
		MediaFiles: s.statesRepository.MediaFiles().All(),
	})
}

func (s *Server) getRecentHandler(res http.ResponseWriter, req *http.Request) {
	common.RespondJSON(res, getRecentResponse{
		Recent: s.statesRepository.Recent().All(),
	})
}
