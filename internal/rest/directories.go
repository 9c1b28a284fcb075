package rest

import (
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

const (
	recursiveArg = "recursive"
	watchedArg   = "watched"
)

type getDirectoriesResponse struct {
	Directories map[string]common.Directory `json:"directories"`
}

func (s *Server) getDirectoriesHandler(res http.ResponseWriter, req *http.Request) {
	common.RespondJSON(res, getDirectoriesResponse{
		Directories: s.statesRepository.Directories().All(),
	})
}

func (s *Server) deleteDirectoriesHandler(res http.ResponseWriter, req *http.Request) {
	dir, err := s.api.TakeDirectory(req.URL.Query().Get(pathArg))
	if err != nil {
		common.RespondError(res, err)
		return
	}

	s.outLog.Printf("removed directory %s due to request from %s\n", dir.Path, req.RemoteAddr)
	common.RespondJSON(res, dir)
}

func (s *Server) directoriesPathHandler(res http.ResponseWriter, req *http.Request) error {
	dir := common.Directory{
		Path: req.PostFormValue(pathArg),
	}

	if value := req.PostFormValue(recursiveArg); value != "" {
		recursive, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		dir.Recursive = recursive
	}

	if value := req.PostFormValue(watchedArg); value != "" {
		watched, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		dir.Watched = watched
	}

	s.outLog.Printf("adding directory %s due to request from %s\n", dir.Path, req.RemoteAddr)
	s.api.AddRootDirectories([]common.Directory{dir})

	return nil
}

func (s *Server) putDirectoriesFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		pathArg: {
			Handle: s.directoriesPathHandler,
		},
		recursiveArg: {
			Validate: validateBool(recursiveArg),
		},
		watchedArg: {
			Validate: validateBool(watchedArg),
		},
	}
}
