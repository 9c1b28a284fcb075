package sse

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/api"
	"github.com/sarpt/mpv-repeat-player/pkg/state"
)

const (
	logPrefix = "sse.Server#"

	name     = "SSE Server"
	pathBase = "sse"
)

var (
	registerPath = fmt.Sprintf("/%s/channels", pathBase)
)

// Server holds information about handled SSE connections and their observers.
type Server struct {
	cancel           context.CancelFunc
	channels         map[ChannelVariant]channel
	ctx              context.Context
	errLog           *log.Logger
	observersChanges chan ObserversChange
	outLog           *log.Logger
	statesRepository state.Repository
	unsubscribers    []func()
}

// Config controls behaviour of the SSE server.
type Config struct {
	ErrWriter        io.Writer
	OutWriter        io.Writer
	StatesRepository state.Repository
}

// NewServer prepares and returns SSE server to handle SSE connections and observers.
func NewServer(cfg Config) *Server {
	if cfg.OutWriter == nil {
		cfg.OutWriter = os.Stdout
	}
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cancel:           cancel,
		channels:         map[ChannelVariant]channel{},
		ctx:              ctx,
		errLog:           log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		observersChanges: make(chan ObserversChange),
		outLog:           log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		statesRepository: cfg.StatesRepository,
	}
}

// Handler returns map of HTTPs methods and their handlers.
func (s *Server) Handler() http.Handler {
	sseCfg := handlerConfig{
		Channels: s.channels,
	}

	mux := http.NewServeMux()
	mux.HandleFunc(registerPath, s.createSseRegisterHandler(sseCfg))

	return mux
}

// Init creates channels for every storage. SSE only reads state, so the api server is not used.
func (s *Server) Init(apiServer api.PluginApi) error {
	bookmarksChannel := newBookmarksChannel(s.statesRepository.Bookmarks())
	directoriesChannel := newDirectoriesChannel(s.statesRepository.Directories())
	loopChannel := newLoopChannel(s.statesRepository.Loop())
	mediaFilesChannel := newMediaFilesChannel(s.statesRepository.MediaFiles())
	overlayChannel := newOverlayChannel(s.statesRepository.Overlay())
	playbackChannel := newPlaybackChannel(s.statesRepository.Playback())
	recentChannel := newRecentChannel(s.statesRepository.Recent())
	statusChannel := newStatusChannel(s.statesRepository.Status())

	logDropped(bookmarksChannel, s.errLog)
	logDropped(directoriesChannel, s.errLog)
	logDropped(loopChannel, s.errLog)
	logDropped(mediaFilesChannel, s.errLog)
	logDropped(overlayChannel, s.errLog)
	logDropped(playbackChannel, s.errLog)
	logDropped(recentChannel, s.errLog)
	logDropped(statusChannel, s.errLog)

	s.channels[bookmarksSSEChannelVariant] = bookmarksChannel
	s.channels[directoriesSSEChannelVariant] = directoriesChannel
	s.channels[loopSSEChannelVariant] = loopChannel
	s.channels[mediaFilesSSEChannelVariant] = mediaFilesChannel
	s.channels[overlaySSEChannelVariant] = overlayChannel
	s.channels[playbackSSEChannelVariant] = playbackChannel
	s.channels[recentSSEChannelVariant] = recentChannel
	s.channels[statusSSEChannelVariant] = statusChannel

	s.unsubscribers = append(s.unsubscribers,
		s.statesRepository.Bookmarks().Subscribe(bookmarksChannel.BroadcastToChannelObservers, func(err error) {}),
		s.statesRepository.Directories().Subscribe(directoriesChannel.BroadcastToChannelObservers, func(err error) {}),
		s.statesRepository.Loop().Subscribe(loopChannel.BroadcastToChannelObservers, func(err error) {}),
		s.statesRepository.MediaFiles().Subscribe(mediaFilesChannel.BroadcastToChannelObservers, func(err error) {}),
		s.statesRepository.Overlay().Subscribe(overlayChannel.BroadcastToChannelObservers, func(err error) {}),
		s.statesRepository.Playback().Subscribe(playbackChannel.BroadcastToChannelObservers, func(err error) {}),
		s.statesRepository.Recent().Subscribe(recentChannel.BroadcastToChannelObservers, func(err error) {}),
		s.statesRepository.Status().Subscribe(statusChannel.BroadcastToChannelObservers, func(err error) {}),
	)

	go s.watchSSEObserversChanges()

	return nil
}

func (s *Server) Name() string {
	return name
}

func (s *Server) PathBase() string {
	return pathBase
}

func (s *Server) Shutdown() {
	for _, unsubscribe := range s.unsubscribers {
		unsubscribe()
	}

	s.cancel()
}

func logDropped[CT common.Change](sc *stateChannel[CT], errLog *log.Logger) {
	sc.dropped = func(address string, change CT) {
		errLog.Printf("dropped %s change on %s channel for %s\n", change.Variant(), sc.variant, address)
	}
}

func (s *Server) watchSSEObserversChanges() {
	for {
		select {
		case change := <-s.observersChanges:
			switch change.ChangeVariant {
			case ObserverAdded:
				s.statesRepository.Status().AddObservingAddress(change.RemoteAddr, string(change.ChannelVariant))
			case ObserverRemoved:
				s.statesRepository.Status().RemoveObservingAddress(change.RemoteAddr, string(change.ChannelVariant))
			}
		case <-s.ctx.Done():
			return
		}
	}
}
