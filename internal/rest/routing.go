package rest

import (
	"net/http"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

const (
	bookmarksPath     = "/rest/bookmarks"
	bookmarksJumpPath = "/rest/bookmarks/jump"
	directoriesPath   = "/rest/directories"
	gesturesPath      = "/rest/gestures"
	loopPath          = "/rest/loop"
	mediaFilesPath    = "/rest/media-files"
	playbackPath      = "/rest/playback"
	recentPath        = "/rest/recent"
	regionPath        = "/rest/region"
)

// Handler returns http.Handler responsible for REST handling subtree.
func (s *Server) Handler() http.Handler {
	playbackHandlers := common.MethodHandlers{
		http.MethodPost: common.CreateFormHandler(s.postPlaybackFormArgumentsHandlers()),
		http.MethodGet:  s.getPlaybackHandler,
	}

	loopHandlers := common.MethodHandlers{
		http.MethodPost: common.CreateFormHandler(s.postLoopFormArgumentsHandlers()),
		http.MethodGet:  s.getLoopHandler,
	}

	regionHandlers := common.MethodHandlers{
		http.MethodPut: common.CreateFormHandler(s.putRegionFormArgumentsHandlers()),
		http.MethodGet: s.getRegionHandler,
	}

	gesturesHandlers := common.MethodHandlers{
		http.MethodPost: common.CreateFormHandler(s.postGesturesFormArgumentsHandlers()),
	}

	bookmarksHandlers := common.MethodHandlers{
		http.MethodGet:    s.getBookmarksHandler,
		http.MethodPost:   s.postBookmarksHandler,
		http.MethodPatch:  s.patchBookmarksHandler,
		http.MethodDelete: s.deleteBookmarksHandler,
	}

	bookmarksJumpHandlers := common.MethodHandlers{
		http.MethodPost: s.postBookmarksJumpHandler,
	}

	mediaFilesHandlers := common.MethodHandlers{
		http.MethodGet: s.getMediaFilesHandler,
	}

	recentHandlers := common.MethodHandlers{
		http.MethodGet: s.getRecentHandler,
	}

	directoriesHandlers := common.MethodHandlers{
		http.MethodGet:    s.getDirectoriesHandler,
		http.MethodPut:    common.CreateFormHandler(s.putDirectoriesFormArgumentsHandlers()),
		http.MethodDelete: s.deleteDirectoriesHandler,
	}

	allHandlers := map[string]common.MethodHandlers{
		bookmarksPath:     bookmarksHandlers,
		bookmarksJumpPath: bookmarksJumpHandlers,
		directoriesPath:   directoriesHandlers,
		gesturesPath:      gesturesHandlers,
		loopPath:          loopHandlers,
		mediaFilesPath:    mediaFilesHandlers,
		playbackPath:      playbackHandlers,
		recentPath:        recentHandlers,
		regionPath:        regionHandlers,
	}

	mux := http.NewServeMux()
	for path, methodHandlers := range allHandlers {
		cfg := common.PathHandlerConfig{
			AllowCORS:      s.allowCORS,
			MethodHandlers: methodHandlers,
		}
		mux.HandleFunc(path, common.PathHandler(cfg))
	}

	return mux
}
