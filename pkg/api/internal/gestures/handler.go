package gestures

import (
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/overlay"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/playback"
)

const (
	logPrefix = "gestures.Handler#"
)

var (
	ErrUnknownKey     = errors.New("unknown key")
	ErrUnknownPointer = errors.New("pointer event without a matching press")
)

// Player is the subset of playback controls used by gestures.
type Player interface {
	Playback() playback.Snapshot
	Seek(time float64) error
	SetPause(paused bool) error
	SetRate(rate float64) error
	SetZoom(zoom float64) error
}

// RestartCanceler aborts pending loop restarts.
type RestartCanceler interface {
	Cancel()
}

type Config struct {
	ErrWriter io.Writer
	Loop      *loop.Storage
	Now       func() time.Time
	OutWriter io.Writer
	Overlay   *overlay.Storage
	Player    Player
	// PrimaryScrubs makes primary button drags seek instead of selecting a range.
	// Secondary button drags always select.
	PrimaryScrubs bool
	Restarts      RestartCanceler
}

// Handler translates key presses and pointer gestures into loop edits and playback commands.
type Handler struct {
	errLog        *log.Logger
	lock          *sync.Mutex
	loop          *loop.Storage
	now           func() time.Time
	outLog        *log.Logger
	overlay       *overlay.Storage
	player        Player
	pointer       *pointerGesture
	primaryScrubs bool
	restarts      RestartCanceler
}

func NewHandler(cfg Config) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Handler{
		errLog:        log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		lock:          &sync.Mutex{},
		loop:          cfg.Loop,
		now:           now,
		outLog:        log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		overlay:       cfg.Overlay,
		player:        cfg.Player,
		primaryScrubs: cfg.PrimaryScrubs,
		restarts:      cfg.Restarts,
	}
}

// Reset clears the loop, pending restarts, the selection and any gesture in progress.
func (h *Handler) Reset() {
	h.lock.Lock()
	h.pointer = nil
	h.lock.Unlock()

	if h.restarts != nil {
		h.restarts.Cancel()
	}
	h.loop.Reset()
	h.overlay.ClearSelection()
}

// SetPrimaryScrubs switches what primary button drags do.
func (h *Handler) SetPrimaryScrubs(scrubs bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.primaryScrubs = scrubs
}
