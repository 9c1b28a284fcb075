package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sarpt/mpv-repeat-player/pkg/api"
	"github.com/sarpt/mpv-repeat-player/pkg/state"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/bookmarks"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

const (
	consolePrompt = "mrp> "

	helpCommand   = "help"
	loadCommand   = "load"
	phraseCommand = "phrase"
	pointCommand  = "point"
	quitCommand   = "quit"
	rateCommand   = "rate"
	seekCommand   = "seek"
	statusCommand = "status"
	stopCommand   = "stop"
	targetCommand = "target"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errMissingArgs    = errors.New("missing arguments")
)

type consoleApi interface {
	AddPhraseBookmark(label string, tag string) (bookmarks.Bookmark, error)
	AddPointBookmark(label string, tag string) (bookmarks.Bookmark, error)
	ChangeRate(rate float64) (float64, error)
	KeyPress(key string, inTextInput bool) (bool, error)
	LoadFile(filePath string) error
	Seek(time float64) error
	SetRepeatTarget(target int) loop.Snapshot
	StopPlayback() error
}

// console maps lines typed in the terminal to keyboard shortcuts and player commands.
type console struct {
	api        consoleApi
	keys       map[string]bool
	out        io.Writer
	repository state.Repository
}

func newConsole(consoleApi consoleApi, repository state.Repository, out io.Writer) *console {
	keys := map[string]bool{}
	for _, key := range api.GestureKeys() {
		keys[key] = true
	}

	return &console{
		api:        consoleApi,
		keys:       keys,
		out:        out,
		repository: repository,
	}
}

func runConsole(server *api.Server, repository state.Repository) error {
	c := newConsole(server, repository, os.Stdout)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          consolePrompt,
		AutoComplete:    c.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       quitCommand,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	c.out = rl.Stdout()
	fmt.Fprintf(c.out, "type %s for available commands\n", helpCommand)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := c.execute(line)
		if err != nil {
			fmt.Fprintf(c.out, "%s\n", err)
		}
		if quit {
			return nil
		}
	}
}

// execute runs a single console line. Returns true when the console should quit.
func (c *console) execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	command, args := fields[0], fields[1:]
	if c.keys[command] && len(args) == 0 {
		_, err := c.api.KeyPress(command, false)
		return false, err
	}

	switch command {
	case helpCommand:
		c.printHelp()
	case loadCommand:
		if len(args) == 0 {
			return false, fmt.Errorf("%w: %s <path>", errMissingArgs, loadCommand)
		}

		return false, c.api.LoadFile(strings.Join(args, " "))
	case phraseCommand:
		bookmark, err := c.api.AddPhraseBookmark(strings.Join(args, " "), "")
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "saved %s\n", bookmark.Label)
	case pointCommand:
		bookmark, err := c.api.AddPointBookmark(strings.Join(args, " "), "")
		if err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "saved %s\n", bookmark.Label)
	case quitCommand:
		return true, nil
	case rateCommand:
		rate, err := floatArg(args, rateCommand)
		if err != nil {
			return false, err
		}

		applied, err := c.api.ChangeRate(rate)
		fmt.Fprintf(c.out, "rate %.2fx\n", applied)
		return false, err
	case seekCommand:
		time, err := floatArg(args, seekCommand)
		if err != nil {
			return false, err
		}

		return false, c.api.Seek(time)
	case statusCommand:
		c.printStatus()
	case stopCommand:
		return false, c.api.StopPlayback()
	case targetCommand:
		if len(args) == 0 {
			return false, fmt.Errorf("%w: %s <count>", errMissingArgs, targetCommand)
		}

		target, err := strconv.Atoi(args[0])
		if err != nil {
			return false, err
		}

		snapshot := c.api.SetRepeatTarget(target)
		fmt.Fprintf(c.out, "repeat target %d\n", snapshot.Target)
	default:
		return false, fmt.Errorf("%w: %s", errUnknownCommand, command)
	}

	return false, nil
}

func (c *console) completer() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(helpCommand),
		readline.PcItem(loadCommand, readline.PcItemDynamic(c.mediaFilePaths)),
		readline.PcItem(phraseCommand),
		readline.PcItem(pointCommand),
		readline.PcItem(quitCommand),
		readline.PcItem(rateCommand),
		readline.PcItem(seekCommand),
		readline.PcItem(statusCommand),
		readline.PcItem(stopCommand),
		readline.PcItem(targetCommand),
	}
	for _, key := range api.GestureKeys() {
		items = append(items, readline.PcItem(key))
	}

	return readline.NewPrefixCompleter(items...)
}

func (c *console) mediaFilePaths(string) []string {
	var paths []string
	for path := range c.repository.MediaFiles().All() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths
}

func (c *console) printHelp() {
	fmt.Fprintf(c.out, "keys: %s\n", strings.Join(api.GestureKeys(), " "))
	fmt.Fprintf(c.out, "commands: %s <path>, %s <sec>, %s <x>, %s <count>, %s [label], %s [label], %s, %s, %s\n",
		loadCommand, seekCommand, rateCommand, targetCommand, pointCommand, phraseCommand, stopCommand, statusCommand, quitCommand)
}

func (c *console) printStatus() {
	playback := c.repository.Playback().Snapshot()
	loopSnapshot := c.repository.Loop().Snapshot()

	if playback.Stopped {
		fmt.Fprintf(c.out, "stopped\n")
	} else {
		fmt.Fprintf(c.out, "%s %s / %s paused=%t rate=%.2fx\n",
			playback.FileName,
			bookmarks.FormatTime(playback.CurrentTime),
			bookmarks.FormatTime(playback.Duration),
			playback.Paused,
			playback.Rate,
		)
	}

	a, b, ok := loopSnapshot.Bounds()
	if !ok {
		fmt.Fprintf(c.out, "no loop range\n")

		return
	}

	fmt.Fprintf(c.out, "loop %s - %s enabled=%t count=%d target=%d\n",
		bookmarks.FormatTime(a),
		bookmarks.FormatTime(b),
		loopSnapshot.Enabled,
		loopSnapshot.Count,
		loopSnapshot.Target,
	)
}

func floatArg(args []string, command string) (float64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s <value>", errMissingArgs, command)
	}

	return strconv.ParseFloat(args[0], 64)
}
