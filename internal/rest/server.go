package rest

import (
	"io"
	"log"
	"os"

	"github.com/sarpt/mpv-repeat-player/internal/validation"
	"github.com/sarpt/mpv-repeat-player/pkg/api"
	"github.com/sarpt/mpv-repeat-player/pkg/state"
)

const (
	logPrefix = "rest.Server#"

	name     = "REST Server"
	pathBase = "rest"
)

// Config controls behaviour of the REST server.
type Config struct {
	AllowCORS        bool
	ErrWriter        io.Writer
	OutWriter        io.Writer
	StatesRepository state.Repository
}

// Server is responsible for creating REST handlers, argument parsing and validation.
// Commands are forwarded to the api server, while reads are served from the states repository.
type Server struct {
	allowCORS        bool
	api              api.PluginApi
	errLog           *log.Logger
	outLog           *log.Logger
	statesRepository state.Repository
	validator        *validation.Validator
}

// NewServer returns rest.Server instance.
func NewServer(cfg Config) *Server {
	if cfg.OutWriter == nil {
		cfg.OutWriter = os.Stdout
	}
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}

	return &Server{
		allowCORS:        cfg.AllowCORS,
		errLog:           log.New(cfg.ErrWriter, logPrefix, log.LstdFlags),
		outLog:           log.New(cfg.OutWriter, logPrefix, log.LstdFlags),
		statesRepository: cfg.StatesRepository,
		validator:        validation.New(),
	}
}

func (s *Server) Init(apiServer api.PluginApi) error {
	s.api = apiServer

	return nil
}

func (s *Server) Name() string {
	return name
}

func (s *Server) PathBase() string {
	return pathBase
}

func (s *Server) Shutdown() {}
