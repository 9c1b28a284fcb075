package sse

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
)

const (
	// observerBufferSize is the number of changes kept for an observer that has not written previous ones yet.
	observerBufferSize = 64

	replaySseEvent = "replay"
)

var (
	errNoObserver = errors.New("no observer found for provided address")
)

// ChannelVariant names a channel a client can observe.
type ChannelVariant string

type channel interface {
	AddObserver(address string)
	RemoveObserver(address string)
	Replay(res ResponseWriter) error
	ServeObserver(address string, res ResponseWriter, done <-chan struct{}) error
	Variant() ChannelVariant
}

// stateChannel distributes changes of a single storage to observers connected on the channel.
// Every observer has a buffered queue; changes that do not fit are dropped for that observer
// so a stalled client never blocks the storage.
type stateChannel[CT common.Change] struct {
	dropped   func(address string, change CT)
	lock      *sync.RWMutex
	observers map[string]chan CT
	payload   func(change CT) json.Marshaler
	replay    func() json.Marshaler
	variant   ChannelVariant
}

func newStateChannel[CT common.Change](variant ChannelVariant, replay func() json.Marshaler, payload func(change CT) json.Marshaler) *stateChannel[CT] {
	return &stateChannel[CT]{
		dropped:   func(string, CT) {},
		lock:      &sync.RWMutex{},
		observers: map[string]chan CT{},
		payload:   payload,
		replay:    replay,
		variant:   variant,
	}
}

func (sc *stateChannel[CT]) AddObserver(address string) {
	changes := make(chan CT, observerBufferSize)

	sc.lock.Lock()
	defer sc.lock.Unlock()

	sc.observers[address] = changes
}

func (sc *stateChannel[CT]) RemoveObserver(address string) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	changes, ok := sc.observers[address]
	if !ok {
		return
	}

	close(changes)
	delete(sc.observers, address)
}

func (sc *stateChannel[CT]) BroadcastToChannelObservers(change CT) {
	sc.lock.RLock()
	defer sc.lock.RUnlock()

	for address, observer := range sc.observers {
		select {
		case observer <- change:
		default:
			sc.dropped(address, change)
		}
	}
}

func (sc *stateChannel[CT]) Replay(res ResponseWriter) error {
	return res.SendChange(sc.replay(), sc.variant, replaySseEvent)
}

// ServeObserver writes changes to the observer until its queue is closed or done is closed.
func (sc *stateChannel[CT]) ServeObserver(address string, res ResponseWriter, done <-chan struct{}) error {
	sc.lock.RLock()
	changes, ok := sc.observers[address]
	sc.lock.RUnlock()
	if !ok {
		return errNoObserver
	}

	for {
		select {
		case change, more := <-changes:
			if !more {
				return nil
			}

			err := res.SendChange(sc.payload(change), sc.variant, string(change.Variant()))
			if err != nil {
				return err
			}
		case <-done:
			return nil
		}
	}
}

func (sc *stateChannel[CT]) Variant() ChannelVariant {
	return sc.variant
}

// changeAsPayload sends the change itself, for changes carrying their own JSON representation.
func changeAsPayload[CT interface {
	common.Change
	json.Marshaler
}](change CT) json.Marshaler {
	return change
}
