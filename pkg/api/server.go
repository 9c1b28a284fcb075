package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sarpt/mpv-repeat-player/pkg/api/internal/gestures"
	playbackTriggers "github.com/sarpt/mpv-repeat-player/pkg/api/internal/playback_triggers"
	"github.com/sarpt/mpv-repeat-player/pkg/mpv"
	"github.com/sarpt/mpv-repeat-player/pkg/probe"
	"github.com/sarpt/mpv-repeat-player/pkg/state"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/preferences"
)

const (
	logPrefix = "api.Server#"

	connectionCheckInterval = time.Second
)

type observePropertyHandler = func(res mpv.ObservePropertyResponse) error

// Server is used to serve API and hold state accessible to the API.
type Server struct {
	address          string
	cancel           context.CancelFunc
	ctx              context.Context
	errLog           *log.Logger
	fsWatcher        *fsnotify.Watcher
	gestures         *gestures.Handler
	mpvManager       *mpv.Manager
	outLog           *log.Logger
	persistence      *persistence
	plugins          []Plugin
	preferences      *preferences.Store
	prober           probe.Prober
	statesRepository state.Repository
	unsubscribers    []func()
	watcher          *playbackTriggers.BoundaryWatcher
}

// Config controls behaviour of the api server.
type Config struct {
	Address                 string
	ErrWriter               io.Writer
	MpvSocketPath           string
	OutWriter               io.Writer
	Plugins                 []Plugin
	// Preferences are used to restore and persist user settings, bookmarks and recent files.
	// Nothing is persisted when nil.
	Preferences             *preferences.Store
	PrimaryScrubs           bool
	Prober                  probe.Prober
	RequestTimeout          time.Duration
	SocketConnectionTimeout time.Duration
	StartMpvInstance        bool
	StatesRepository        state.Repository
}

// NewServer prepares and returns a server that can be used to handle API calls.
func NewServer(cfg Config) (*Server, error) {
	if cfg.OutWriter == nil {
		cfg.OutWriter = os.Stdout
	}
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}
	if cfg.StatesRepository == nil {
		cfg.StatesRepository = state.NewRepository()
	}
	if cfg.Prober == nil {
		cfg.Prober = probe.File
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not initialize filesystem watcher: %w", err)
	}

	managerCfg := mpv.ManagerConfig{
		ErrWriter:               cfg.ErrWriter,
		MpvSocketPath:           cfg.MpvSocketPath,
		OutWriter:               cfg.OutWriter,
		RequestTimeout:          cfg.RequestTimeout,
		SocketConnectionTimeout: cfg.SocketConnectionTimeout,
		StartMpvInstance:        cfg.StartMpvInstance,
	}
	mpvManager := mpv.NewManager(managerCfg)

	ctx, cancel := context.WithCancel(context.Background())
	server := &Server{
		address:          cfg.Address,
		cancel:           cancel,
		ctx:              ctx,
		errLog:           log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		fsWatcher:        fsWatcher,
		mpvManager:       mpvManager,
		outLog:           log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		plugins:          cfg.Plugins,
		preferences:      cfg.Preferences,
		prober:           cfg.Prober,
		statesRepository: cfg.StatesRepository,
	}

	server.watcher = playbackTriggers.NewBoundaryWatcher(playbackTriggers.BoundaryWatcherConfig{
		ErrWriter: cfg.ErrWriter,
		Loop:      cfg.StatesRepository.Loop(),
		OutWriter: cfg.OutWriter,
		Player:    mpvManager,
		Volume: func() float64 {
			return cfg.StatesRepository.Playback().Snapshot().Volume
		},
	})
	server.gestures = gestures.NewHandler(gestures.Config{
		ErrWriter:     cfg.ErrWriter,
		Loop:          cfg.StatesRepository.Loop(),
		OutWriter:     cfg.OutWriter,
		Overlay:       cfg.StatesRepository.Overlay(),
		Player:        gesturesPlayer{server},
		PrimaryScrubs: cfg.PrimaryScrubs,
		Restarts:      server.watcher,
	})

	if cfg.Preferences != nil {
		server.persistence = newPersistence(cfg.Preferences, cfg.StatesRepository, server.errLog)
		err = server.persistence.restore()
		if err != nil {
			server.errLog.Printf("could not restore preferences: %s\n", err)
		}
	}

	err = server.initWatchers()
	if err != nil {
		return server, fmt.Errorf("could not start watching for properties: %w", err)
	}

	for _, plugin := range server.plugins {
		err := plugin.Init(server)
		if err != nil {
			return server, fmt.Errorf("could not initialize plugin %s: %w", plugin.Name(), err)
		}
	}

	return server, nil
}

// Serve starts handling API endpoints of every plugin.
// It also starts mpv manager.
// Blocks until either mpv manager or http server stops serving (with error or nil).
func (s *Server) Serve() error {
	s.watchForFsChanges()
	go s.watchMpvConnection()

	mpvManagerErr := make(chan error, 1)
	httpServErr := make(chan error, 1)

	serv := http.Server{
		Addr:    s.address,
		Handler: s.mainHandler(),
	}

	go func() {
		mpvManagerErr <- s.mpvManager.Serve()
	}()

	go func() {
		s.outLog.Printf("running server at %s\n", s.address)
		err := serv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}

		httpServErr <- err
	}()

	select {
	case err := <-mpvManagerErr:
		serv.Shutdown(context.Background())
		return err
	case err := <-httpServErr:
		s.mpvManager.Close()
		return err
	case <-s.ctx.Done():
		serv.Shutdown(context.Background())
		s.mpvManager.Close()
		return nil
	}
}

// Close stops serving and releases resources held by the server.
func (s *Server) Close() {
	s.cancel()

	for _, plugin := range s.plugins {
		plugin.Shutdown()
	}

	for _, unsubscribe := range s.unsubscribers {
		unsubscribe()
	}

	s.watcher.Close()
	if s.persistence != nil {
		s.persistence.flush()
	}
	s.fsWatcher.Close()
	s.mpvManager.Close()
	s.statesRepository.Close()
}

// StatesRepository gives read access to the player state.
func (s *Server) StatesRepository() state.Repository {
	return s.statesRepository
}

func (s *Server) mainHandler() http.Handler {
	mux := http.NewServeMux()
	for _, plugin := range s.plugins {
		pathBase := fmt.Sprintf("/%s/", plugin.PathBase())
		mux.Handle(pathBase, plugin.Handler())
		s.outLog.Printf("serving %s under %s\n", plugin.Name(), pathBase)
	}

	return mux
}

func (s *Server) initWatchers() error {
	s.unsubscribers = append(s.unsubscribers,
		s.addPlaybackTrigger(s.watcher),
		s.statesRepository.Loop().Subscribe(s.watcher.LoopHandler, func(err error) {}),
		playbackTriggers.SyncRegion(s.statesRepository.Loop(), s.statesRepository.Overlay()),
		s.statesRepository.Playback().Subscribe(s.handleMediaFileChange, func(err error) {}),
	)
	if s.persistence != nil {
		s.unsubscribers = append(s.unsubscribers, s.persistence.subscribe()...)
	}

	observePropertyResponses := make(chan mpv.ObservePropertyResponse)
	observePropertyHandlers := map[string]observePropertyHandler{
		mpv.DurationProperty:     s.handleDurationEvent,
		mpv.PathProperty:         s.handlePathEvent,
		mpv.PauseProperty:        s.handlePauseEvent,
		mpv.PlaybackTimeProperty: s.handlePlaybackTimeEvent,
	}
	go s.watchObservePropertyResponses(observePropertyHandlers, observePropertyResponses)

	return s.subscribeToMpvProperties(observePropertyResponses)
}

func (s *Server) watchMpvConnection() {
	ticker := time.NewTicker(connectionCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.statesRepository.Status().SetMpvConnected(s.mpvManager.Connected())
		case <-s.ctx.Done():
			return
		}
	}
}

// watchObservePropertyResponses keeps draining responses after the server is closed,
// since the dispatcher blocks on delivery to subscribed channels.
func (s *Server) watchObservePropertyResponses(handlers map[string]observePropertyHandler, responses chan mpv.ObservePropertyResponse) {
	for observePropertyResponse := range responses {
		if s.ctx.Err() != nil {
			continue
		}

		observeHandler, ok := handlers[observePropertyResponse.Property]
		if !ok {
			continue
		}

		err := observeHandler(observePropertyResponse)
		if err != nil {
			s.errLog.Printf("error during '%s' property observer handling: %s\n", observePropertyResponse.Property, err)
		}
	}
}

func (s *Server) subscribeToMpvProperties(observeResponses chan mpv.ObservePropertyResponse) error {
	for _, propertyName := range mpv.ObservableProperties {
		_, err := s.mpvManager.SubscribeToProperty(propertyName, observeResponses)
		if err != nil {
			return fmt.Errorf("could not initialize watchers due to error when observing property: %w", err)
		}
	}

	return nil
}
