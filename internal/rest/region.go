package rest

import (
	"net/http"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

const (
	endArg   = "end"
	startArg = "start"
)

func (s *Server) getRegionHandler(res http.ResponseWriter, req *http.Request) {
	common.RespondJSON(res, s.statesRepository.Overlay().Snapshot())
}

func (s *Server) regionHandler(res http.ResponseWriter, req *http.Request) error {
	start, err := parseFloat(req.PostFormValue(startArg))
	if err != nil {
		return err
	}

	end, err := parseFloat(req.PostFormValue(endArg))
	if err != nil {
		return err
	}

	_, err = s.api.EditRegion(start, end)
	return err
}

func (s *Server) putRegionFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		endArg: {
			Validate: validateFloatPair(startArg, endArg),
		},
		startArg: {
			Handle:   s.regionHandler,
			Validate: validateFloatPair(startArg, endArg),
		},
	}
}
