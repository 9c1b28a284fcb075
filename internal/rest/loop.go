package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

const (
	aArg            = "a"
	autoPauseArg    = "autoPause"
	bArg            = "b"
	enabledArg      = "enabled"
	fadeArg         = "fade"
	preRollArg      = "preRoll"
	rangeEndArg     = "rangeEnd"
	rangeStartArg   = "rangeStart"
	repeatTargetArg = "repeatTarget"
	resetArg        = "reset"
)

func (s *Server) getLoopHandler(res http.ResponseWriter, req *http.Request) {
	loopStorage := s.statesRepository.Loop()
	respondWithRevision(res, req, loopStorage.Revision(), loopStorage.Snapshot())
}

func (s *Server) aHandler(res http.ResponseWriter, req *http.Request) error {
	time, err := optionalFloat(req.PostFormValue(aArg))
	if err != nil {
		return err
	}

	s.api.SetLoopA(time)
	return nil
}

func (s *Server) bHandler(res http.ResponseWriter, req *http.Request) error {
	time, err := optionalFloat(req.PostFormValue(bArg))
	if err != nil {
		return err
	}

	s.api.SetLoopB(time)
	return nil
}

func (s *Server) enabledHandler(res http.ResponseWriter, req *http.Request) error {
	enabled, err := strconv.ParseBool(req.PostFormValue(enabledArg))
	if err != nil {
		return err
	}

	s.api.SetLoopEnabled(enabled)
	return nil
}

func (s *Server) rangeHandler(res http.ResponseWriter, req *http.Request) error {
	start, err := parseFloat(req.PostFormValue(rangeStartArg))
	if err != nil {
		return err
	}

	end, err := parseFloat(req.PostFormValue(rangeEndArg))
	if err != nil {
		return err
	}

	s.outLog.Printf("setting loop range %.2f-%.2f due to request from %s\n", start, end, req.RemoteAddr)
	s.api.SetLoopRange(start, end)
	return nil
}

func (s *Server) repeatTargetHandler(res http.ResponseWriter, req *http.Request) error {
	target, err := strconv.Atoi(req.PostFormValue(repeatTargetArg))
	if err != nil {
		return err
	}

	s.api.SetRepeatTarget(target)
	return nil
}

func (s *Server) resetHandler(res http.ResponseWriter, req *http.Request) error {
	reset, err := strconv.ParseBool(req.PostFormValue(resetArg))
	if err != nil {
		return err
	}

	if reset {
		s.api.ResetLoop()
	}

	return nil
}

func (s *Server) timingHandler(update func(timing *loop.Timing, value string) error, arg string) common.FormArgumentHandler {
	return func(res http.ResponseWriter, req *http.Request) error {
		timing := s.statesRepository.Loop().Timing()
		err := update(&timing, req.PostFormValue(arg))
		if err != nil {
			return err
		}

		s.api.SetTiming(timing)
		return nil
	}
}

func (s *Server) postLoopFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		aArg: {
			Handle:   s.aHandler,
			Validate: validateOptionalFloat(aArg),
		},
		autoPauseArg: {
			Handle: s.timingHandler(func(timing *loop.Timing, value string) error {
				ms, err := strconv.Atoi(value)
				timing.AutoPauseMs = ms
				return err
			}, autoPauseArg),
			Validate: validateInt(autoPauseArg),
		},
		bArg: {
			Handle:   s.bHandler,
			Validate: validateOptionalFloat(bArg),
		},
		enabledArg: {
			Handle:   s.enabledHandler,
			Validate: validateBool(enabledArg),
		},
		fadeArg: {
			Handle: s.timingHandler(func(timing *loop.Timing, value string) error {
				ms, err := strconv.Atoi(value)
				timing.FadeMs = ms
				return err
			}, fadeArg),
			Validate: validateInt(fadeArg),
		},
		preRollArg: {
			Handle: s.timingHandler(func(timing *loop.Timing, value string) error {
				sec, err := parseFloat(value)
				timing.PreRollSec = sec
				return err
			}, preRollArg),
			Validate: validateFloat(preRollArg),
		},
		rangeEndArg: {
			Validate: validateFloatPair(rangeStartArg, rangeEndArg),
		},
		rangeStartArg: {
			Handle:   s.rangeHandler,
			Validate: validateFloatPair(rangeStartArg, rangeEndArg),
		},
		repeatTargetArg: {
			Handle:   s.repeatTargetHandler,
			Validate: validateInt(repeatTargetArg),
		},
		resetArg: {
			Handle:   s.resetHandler,
			Validate: validateBool(resetArg),
		},
	}
}

// validateFloatPair requires both arguments to be present and numeric.
func validateFloatPair(first, second string) common.FormArgumentValidator {
	return func(req *http.Request) error {
		for _, arg := range []string{first, second} {
			if _, ok := req.PostForm[arg]; !ok {
				return fmt.Errorf("both %s and %s are required", first, second)
			}

			if _, err := parseFloat(req.PostFormValue(arg)); err != nil {
				return err
			}
		}

		return nil
	}
}

func optionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := parseFloat(value)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}
