package status

import (
	"encoding/json"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

type SubscriberCB = func(change Change)

const (
	// ClientObserverAdded notifies about addition of new client observer.
	ClientObserverAdded common.ChangeVariant = "client-observer-added"

	// ClientObserverRemoved notifies about removal of connected client observer.
	ClientObserverRemoved common.ChangeVariant = "client-observer-removed"

	// MPVConnectionChanged notifies about connection to mpv being estabilished or lost.
	MPVConnectionChanged common.ChangeVariant = "mpv-connection-changed"
)

// storageJSON is a status information in JSON form.
type storageJSON struct {
	MpvConnected       bool                `json:"MpvConnected"`
	ObservingAddresses map[string][]string `json:"ObservingAddresses"`
}

// Change holds information about changes to the server misc status.
type Change struct {
	ChangeVariant common.ChangeVariant
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage holds information about server misc status.
type Storage struct {
	broadcaster        *common.ChangesBroadcaster[Change]
	lock               *sync.RWMutex
	mpvConnected       bool
	observingAddresses map[string][]string
}

// NewStorage constructs Status state.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster:        broadcaster,
		lock:               &sync.RWMutex{},
		observingAddresses: map[string][]string{},
	}
}

// AddObservingAddress adds remote address listening on specific channel variant to the status state.
func (s *Storage) AddObservingAddress(remoteAddr string, channel string) {
	s.lock.Lock()
	s.observingAddresses[remoteAddr] = append(s.observingAddresses[remoteAddr], channel)
	s.lock.Unlock()

	s.broadcaster.Send(Change{
		ChangeVariant: ClientObserverAdded,
	})
}

// MarshalJSON satisfies json.Marshaller.
func (s *Storage) MarshalJSON() ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sJSON := storageJSON{
		MpvConnected:       s.mpvConnected,
		ObservingAddresses: s.observingAddresses,
	}
	return json.Marshal(&sJSON)
}

// MpvConnected informs whether requests can be sent to mpv.
func (s *Storage) MpvConnected() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.mpvConnected
}

// ObservingAddresses returns a copy of the mapping of a remote address to the channel variants.
func (s *Storage) ObservingAddresses() map[string][]string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	result := make(map[string][]string, len(s.observingAddresses))
	for addr, channels := range s.observingAddresses {
		result[addr] = append([]string(nil), channels...)
	}

	return result
}

// RemoveObservingAddress removes remote address listening on specific channel variant from the state.
func (s *Storage) RemoveObservingAddress(remoteAddr string, channel string) {
	s.lock.Lock()

	observers, ok := s.observingAddresses[remoteAddr]
	if !ok {
		s.lock.Unlock()
		return
	}

	filteredObservers := []string{}
	for _, observer := range observers {
		if observer != channel {
			filteredObservers = append(filteredObservers, observer)
		}
	}

	if len(filteredObservers) == 0 {
		delete(s.observingAddresses, remoteAddr)
	} else {
		s.observingAddresses[remoteAddr] = filteredObservers
	}

	s.lock.Unlock()

	s.broadcaster.Send(Change{
		ChangeVariant: ClientObserverRemoved,
	})
}

// SetMpvConnected records whether connection to mpv is estabilished.
func (s *Storage) SetMpvConnected(connected bool) {
	s.lock.Lock()
	if s.mpvConnected == connected {
		s.lock.Unlock()
		return
	}

	s.mpvConnected = connected
	s.lock.Unlock()

	s.broadcaster.Send(Change{
		ChangeVariant: MPVConnectionChanged,
	})
}

func (s *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return s.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}
