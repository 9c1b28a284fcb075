package rest

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

const (
	pathArg   = "path"
	pauseArg  = "pause"
	rateArg   = "rate"
	seekArg   = "seek"
	seekByArg = "seekBy"
	stopArg   = "stop"
	volumeArg = "volume"
	zoomArg   = "zoom"
)

var errNotFinite = errors.New("value is not a finite number")

func (s *Server) getPlaybackHandler(res http.ResponseWriter, req *http.Request) {
	playback := s.statesRepository.Playback()
	respondWithRevision(res, req, playback.Revision(), playback.Snapshot())
}

func (s *Server) pathHandler(res http.ResponseWriter, req *http.Request) error {
	filePath := req.PostFormValue(pathArg)

	s.outLog.Printf("loading file '%s' due to request from %s\n", filePath, req.RemoteAddr)
	return s.api.LoadFile(filePath)
}

func (s *Server) pauseHandler(res http.ResponseWriter, req *http.Request) error {
	pause, err := strconv.ParseBool(req.PostFormValue(pauseArg))
	if err != nil {
		return err
	}

	s.outLog.Printf("changing pause to %t due to request from %s\n", pause, req.RemoteAddr)
	return s.api.ChangePause(pause)
}

func (s *Server) rateHandler(res http.ResponseWriter, req *http.Request) error {
	rate, err := parseFloat(req.PostFormValue(rateArg))
	if err != nil {
		return err
	}

	applied, err := s.api.ChangeRate(rate)
	s.outLog.Printf("changing rate to %.2f due to request from %s\n", applied, req.RemoteAddr)

	return err
}

func (s *Server) seekHandler(res http.ResponseWriter, req *http.Request) error {
	time, err := parseFloat(req.PostFormValue(seekArg))
	if err != nil {
		return err
	}

	return s.api.Seek(time)
}

func (s *Server) seekByHandler(res http.ResponseWriter, req *http.Request) error {
	delta, err := parseFloat(req.PostFormValue(seekByArg))
	if err != nil {
		return err
	}

	return s.api.SeekBy(delta)
}

func (s *Server) stopHandler(res http.ResponseWriter, req *http.Request) error {
	stop, err := strconv.ParseBool(req.PostFormValue(stopArg))
	if err != nil {
		return err
	}

	if !stop {
		return nil
	}

	s.outLog.Printf("stopping playback due to request from %s\n", req.RemoteAddr)
	return s.api.StopPlayback()
}

func (s *Server) volumeHandler(res http.ResponseWriter, req *http.Request) error {
	volume, err := parseFloat(req.PostFormValue(volumeArg))
	if err != nil {
		return err
	}

	_, err = s.api.ChangeVolume(volume)
	return err
}

func (s *Server) zoomHandler(res http.ResponseWriter, req *http.Request) error {
	zoom, err := parseFloat(req.PostFormValue(zoomArg))
	if err != nil {
		return err
	}

	s.api.ChangeZoom(zoom)
	return nil
}

func (s *Server) postPlaybackFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		pathArg: {
			Handle: s.pathHandler,
		},
		pauseArg: {
			Handle:   s.pauseHandler,
			Validate: validateBool(pauseArg),
		},
		rateArg: {
			Handle:   s.rateHandler,
			Validate: validateFloat(rateArg),
		},
		seekArg: {
			Handle:   s.seekHandler,
			Validate: validateFloat(seekArg),
		},
		seekByArg: {
			Handle:   s.seekByHandler,
			Validate: validateFloat(seekByArg),
		},
		stopArg: {
			Handle:   s.stopHandler,
			Validate: validateBool(stopArg),
		},
		volumeArg: {
			Handle:   s.volumeHandler,
			Validate: validateFloat(volumeArg),
		},
		zoomArg: {
			Handle:   s.zoomHandler,
			Validate: validateFloat(zoomArg),
		},
	}
}

// parseFloat parses a decimal, rejecting NaN and infinities.
func parseFloat(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, fmt.Errorf("%w: %s", errNotFinite, value)
	}

	return parsed, nil
}

func validateBool(arg string) common.FormArgumentValidator {
	return func(req *http.Request) error {
		_, err := strconv.ParseBool(req.PostFormValue(arg))
		return err
	}
}

func validateFloat(arg string) common.FormArgumentValidator {
	return func(req *http.Request) error {
		_, err := parseFloat(req.PostFormValue(arg))
		return err
	}
}

func validateInt(arg string) common.FormArgumentValidator {
	return func(req *http.Request) error {
		_, err := strconv.Atoi(req.PostFormValue(arg))
		return err
	}
}

// validateOptionalFloat accepts an empty value, which clears the argument.
func validateOptionalFloat(arg string) common.FormArgumentValidator {
	return func(req *http.Request) error {
		if req.PostFormValue(arg) == "" {
			return nil
		}

		_, err := parseFloat(req.PostFormValue(arg))
		return err
	}
}
