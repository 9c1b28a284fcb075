package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/api"
)

const (
	buttonArg        = "button"
	inTextInputArg   = "inTextInput"
	keyArg           = "key"
	pointerArg       = "pointer"
	primaryScrubsArg = "primaryScrubs"
	timeArg          = "time"
	xArg             = "x"
	yArg             = "y"

	pointerDown   = "down"
	pointerMove   = "move"
	pointerUp     = "up"
	pointerCancel = "cancel"
)

func (s *Server) keyHandler(res http.ResponseWriter, req *http.Request) error {
	var inTextInput bool
	if value := req.PostFormValue(inTextInputArg); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}

		inTextInput = parsed
	}

	_, err := s.api.KeyPress(req.PostFormValue(keyArg), inTextInput)
	return err
}

func (s *Server) pointerHandler(res http.ResponseWriter, req *http.Request) error {
	event := req.PostFormValue(pointerArg)
	if event == pointerCancel {
		s.api.CancelPointer()
		return nil
	}

	pointer, err := parsePointer(req)
	if err != nil {
		return err
	}

	switch event {
	case pointerDown:
		return s.api.PointerDown(pointer)
	case pointerMove:
		return s.api.PointerMove(pointer)
	case pointerUp:
		return s.api.PointerUp(pointer)
	default:
		return fmt.Errorf("%w: unknown pointer event %s", common.ErrInvalidArgument, event)
	}
}

func (s *Server) primaryScrubsHandler(res http.ResponseWriter, req *http.Request) error {
	scrubs, err := strconv.ParseBool(req.PostFormValue(primaryScrubsArg))
	if err != nil {
		return err
	}

	s.api.SetPrimaryScrubs(scrubs)
	return nil
}

func (s *Server) postGesturesFormArgumentsHandlers() map[string]common.FormArgument {
	return map[string]common.FormArgument{
		buttonArg: {},
		inTextInputArg: {
			Validate: validateBool(inTextInputArg),
		},
		keyArg: {
			Handle: s.keyHandler,
		},
		pointerArg: {
			Handle:   s.pointerHandler,
			Validate: validatePointer,
		},
		primaryScrubsArg: {
			Handle:   s.primaryScrubsHandler,
			Validate: validateBool(primaryScrubsArg),
		},
		timeArg: {
			Validate: validateFloat(timeArg),
		},
		xArg: {
			Validate: validateOptionalFloat(xArg),
		},
		yArg: {
			Validate: validateOptionalFloat(yArg),
		},
	}
}

func validatePointer(req *http.Request) error {
	switch req.PostFormValue(pointerArg) {
	case pointerCancel:
		return nil
	case pointerDown, pointerMove, pointerUp:
		if _, ok := req.PostForm[timeArg]; !ok {
			return fmt.Errorf("%s is required", timeArg)
		}

		return nil
	default:
		return fmt.Errorf("expected one of %s, %s, %s or %s", pointerDown, pointerMove, pointerUp, pointerCancel)
	}
}

// parsePointer reads a pointer sample. Requests carry no timestamp, so the sample is stamped on arrival.
func parsePointer(req *http.Request) (api.Pointer, error) {
	time, err := parseFloat(req.PostFormValue(timeArg))
	if err != nil {
		return api.Pointer{}, err
	}

	x, err := optionalFloat(req.PostFormValue(xArg))
	if err != nil {
		return api.Pointer{}, err
	}

	y, err := optionalFloat(req.PostFormValue(yArg))
	if err != nil {
		return api.Pointer{}, err
	}

	pointer := api.Pointer{
		Button: req.PostFormValue(buttonArg),
		Time:   time,
	}
	if x != nil {
		pointer.X = *x
	}
	if y != nil {
		pointer.Y = *y
	}

	return pointer, nil
}
