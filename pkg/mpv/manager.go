package mpv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"
)

const (
	mpvName           = "mpv"
	idleArg           = "--idle"
	inputIpcServerArg = "--input-ipc-server"
	forceWindowArg    = "--force-window=no"

	managerLogPrefix = "mpv.Manager#"

	maxVolume = 100
)

type ManagerConfig struct {
	MpvSocketPath           string
	ErrWriter               io.Writer
	OutWriter               io.Writer
	RequestTimeout          time.Duration
	SocketConnectionTimeout time.Duration
	StartMpvInstance        bool
}

// Manager handles dispatching of commands, while exposing MPV command API as a facade.
type Manager struct {
	cd               *commandDispatcher
	errLog           *log.Logger
	mpvCmd           *exec.Cmd
	outLog           *log.Logger
	socketPath       string
	startMpvInstance bool
}

// NewManager starts mpv process and instantiates new command dispatcher, preparing new Manager for use.
func NewManager(cfg ManagerConfig) *Manager {
	errLog := log.New(cfg.ErrWriter, managerLogPrefix, log.LstdFlags)
	outLog := log.New(cfg.OutWriter, managerLogPrefix, log.LstdFlags)

	cdCfg := commandDispatcherConfig{
		connectionTimeout: cfg.SocketConnectionTimeout,
		errWriter:         errLog.Writer(),
		requestTimeout:    cfg.RequestTimeout,
		socketPath:        cfg.MpvSocketPath,
		outWriter:         outLog.Writer(),
	}

	return &Manager{
		cd:               newCommandDispatcher(cdCfg),
		errLog:           errLog,
		outLog:           outLog,
		socketPath:       cfg.MpvSocketPath,
		startMpvInstance: cfg.StartMpvInstance,
	}
}

// ChangePause instructs mpv to change the pause state.
// Paused argument specifies whether playback should be paused or unpaused.
func (m *Manager) ChangePause(paused bool) error {
	_, err := m.SetProperty(PauseProperty, paused)

	return err
}

// ChangeSpeed instructs mpv to change the playback rate multiplier.
func (m *Manager) ChangeSpeed(speed float64) error {
	_, err := m.SetProperty(SpeedProperty, speed)

	return err
}

// ChangeVolume instructs mpv to change the volume.
// Volume is provided as a fraction in range 0-1, as opposed to the mpv 0-100 scale.
func (m *Manager) ChangeVolume(volume float64) error {
	_, err := m.SetProperty(VolumeProperty, volume*maxVolume)

	return err
}

// Close cleans up manager's resources.
func (m *Manager) Close() {
	m.cd.Close()
}

// Connected informs whether requests can be made to the mpv instance.
func (m *Manager) Connected() bool {
	return m.cd.Connected()
}

// LoadFile instructs mpv to start playing the file from provided filepath, replacing current playback.
func (m *Manager) LoadFile(filePath string) error {
	cmd := command{
		name:     loadfileCommand,
		elements: []interface{}{filePath, ReplaceValue},
	}
	_, err := m.cd.Request(cmd)

	return err
}

// Seek instructs mpv to change the playback position to the provided time in seconds.
func (m *Manager) Seek(time float64) error {
	cmd := command{
		name:     seekCommand,
		elements: []interface{}{time, AbsoluteExactValue},
	}
	_, err := m.cd.Request(cmd)

	return err
}

// Serve starts handling requests to and responses from mpv.
// If necessary, Serve also spawns and handles mpv process lifetime.
func (m *Manager) Serve() error {
	mpvErrors := make(chan error, 1)
	cdErrors := make(chan error, 1)

	if m.startMpvInstance {
		go func() {
			mpvErrors <- m.manageOwnMpvProcess()
		}()
	}

	go func() {
		cdErrors <- m.serveCommandDispatcher()
	}()

	select {
	case err := <-mpvErrors:
		return err
	case err := <-cdErrors:
		return err
	}
}

// SetProperty sets the value of a property.
// Value is of any type since various mpv commands expect different types of values.
func (m *Manager) SetProperty(property string, value interface{}) (Response, error) {
	cmd := command{
		name:     setPropertyCommand,
		elements: []interface{}{property, value},
	}

	return m.cd.Request(cmd)
}

// Stop instructs mpv to stop the playback without quitting.
func (m *Manager) Stop() error {
	cmd := command{
		name:     stopCommand,
		elements: []interface{}{},
	}
	_, err := m.cd.Request(cmd)

	return err
}

// SubscribeToProperty instructs mpv to listen on property changes and send those changes on the out channel.
func (m *Manager) SubscribeToProperty(propertyName string, out chan<- ObservePropertyResponse) (int, error) {
	return m.cd.SubscribeToProperty(propertyName, out)
}

// UnsubscribeFromProperty stops sending changes of the property on the channel registered under the id.
func (m *Manager) UnsubscribeFromProperty(propertyName string, id int) error {
	return m.cd.UnobserveProperty(propertyName, id)
}

func (m *Manager) startMpv() error {
	cmd := exec.Command(mpvName, idleArg, forceWindowArg, fmt.Sprintf("%s=%s", inputIpcServerArg, m.socketPath))
	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start mpv process: %w", err)
	}

	m.mpvCmd = cmd
	return nil
}

func (m *Manager) manageOwnMpvProcess() error {
	var err error
	for {
		if m.mpvCmd != nil {
			m.outLog.Println("watching for mpv process exit...")

			err = m.mpvCmd.Wait()
			if err != nil {
				return fmt.Errorf("mpv process finished with error: %w", err)
			}

			m.outLog.Println("mpv process finished successfully (closed by user)")
			m.outLog.Println("restarting mpv process...")
		}

		err = m.startMpv()
		if err != nil {
			return fmt.Errorf("could not start mpv process due to error: %w", err)
		}
		m.outLog.Println("mpv process started")
	}
}

func (m *Manager) serveCommandDispatcher() error {
	var err error
	for {
		m.outLog.Println("connecting command dispatcher...")

		err = m.cd.Connect()
		if errors.Is(err, context.DeadlineExceeded) {
			continue
		} else if err != nil {
			return err
		}

		err = m.cd.Serve()
		m.cd.Close()
		if err != nil {
			return err
		}
	}
}
