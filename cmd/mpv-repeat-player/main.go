package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sarpt/goutils/pkg/listflag"

	"github.com/sarpt/mpv-repeat-player/cmd/mpv-repeat-player/internal/utils"
	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/internal/rest"
	"github.com/sarpt/mpv-repeat-player/internal/sse"
	"github.com/sarpt/mpv-repeat-player/pkg/api"
	"github.com/sarpt/mpv-repeat-player/pkg/state"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/preferences"
)

const (
	defaultAddress       = "localhost:3001"
	defaultMpvSocketPath = "/tmp/mpvsocket"

	addrFlag          = "addr"
	allowCorsFlag     = "allow-cors"
	appDirFlag        = "app-dir"
	consoleFlag       = "console"
	dirFlag           = "dir"
	primaryScrubsFlag = "primary-scrubs"
	recursiveFlag     = "recursive"
	socketFlag        = "socket"
	startMpvFlag      = "start-mpv"
	watchFlag         = "watch"
)

var (
	address       *string
	allowCORS     *bool
	appDir        *string
	consoleMode   *bool
	dir           *listflag.StringList
	primaryScrubs *bool
	recursive     *bool
	socketPath    *string
	startMpv      *bool
	watch         *bool
)

func init() {
	dir = listflag.NewStringList([]string{})

	flag.Var(dir, dirFlag, "directory containing media files. when left empty, current working directory will be used")
	address = flag.String(addrFlag, defaultAddress, "address on which server should listen on")
	allowCORS = flag.Bool(allowCorsFlag, false, "when not provided, Cross Origin Site Requests will be rejected")
	appDir = flag.String(appDirFlag, "", "directory for preferences. when left empty, ~/.mrp is used")
	consoleMode = flag.Bool(consoleFlag, false, "read keyboard shortcuts and commands from the terminal")
	primaryScrubs = flag.Bool(primaryScrubsFlag, false, "primary button drag scrubs instead of selecting a loop range")
	recursive = flag.Bool(recursiveFlag, false, "read subdirectories of provided directories")
	socketPath = flag.String(socketFlag, defaultMpvSocketPath, "path of mpv JSON IPC socket")
	startMpv = flag.Bool(startMpvFlag, true, "start mpv instance listening on the socket")
	watch = flag.Bool(watchFlag, true, "watch provided directories for added and removed media files")
}

func main() {
	flag.Parse()

	appDirPath, err := utils.HandleAppDir(*appDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not prepare app directory: %s\n", err)

		return
	}

	store, err := preferences.Open(preferences.Config{
		Path: utils.PreferencesPath(appDirPath),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}
	defer store.Close()

	repository := state.NewRepository()
	restServer := rest.NewServer(rest.Config{
		AllowCORS:        *allowCORS,
		ErrWriter:        os.Stderr,
		OutWriter:        os.Stdout,
		StatesRepository: repository,
	})
	sseServer := sse.NewServer(sse.Config{
		ErrWriter:        os.Stderr,
		OutWriter:        os.Stdout,
		StatesRepository: repository,
	})

	cfg := api.Config{
		Address:          *address,
		ErrWriter:        os.Stderr,
		MpvSocketPath:    *socketPath,
		OutWriter:        os.Stdout,
		Plugins:          []api.Plugin{restServer, sseServer},
		Preferences:      store,
		PrimaryScrubs:    *primaryScrubs,
		StartMpvInstance: *startMpv,
		StatesRepository: repository,
	}
	server, err := api.NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}
	closeServer := sync.OnceFunc(server.Close)
	defer closeServer()

	var mediaDirectories []common.Directory
	dirPaths := dir.Values()
	if len(dirPaths) == 0 {
		wd, err := os.Getwd()
		if err == nil {
			dirPaths = append(dirPaths, wd)
		}
	}

	for _, dirPath := range dirPaths {
		mediaDirectories = append(mediaDirectories, common.Directory{
			Path:      dirPath,
			Recursive: *recursive,
			Watched:   *watch,
		})
	}

	fmt.Fprintf(os.Stdout, "directories being read for media files:\n%s\n", strings.Join(dirPaths, "\n"))
	server.AddRootDirectories(mediaDirectories)

	if *consoleMode {
		go func() {
			err := runConsole(server, repository)
			if err != nil {
				fmt.Fprintf(os.Stderr, "console stopped: %s\n", err)
			}

			closeServer()
		}()
	}

	err = server.Serve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)

		return
	}
}
