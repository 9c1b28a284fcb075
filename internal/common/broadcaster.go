package common

import (
	"sync"
)

type Subscriber[CT any] interface {
	Receive(change CT)
}

// Broadcaster fans out values sent on it to every subscriber.
// Subscribers are called sequentially from a single goroutine started by Broadcast,
// so a subscriber must never Send on the broadcaster it is subscribed to.
type Broadcaster[CT any] struct {
	changes          chan CT
	done             chan struct{}
	lock             *sync.RWMutex
	subscribers      map[int]Subscriber[CT]
	subscriptionID   int
	subscriptionLock *sync.Mutex
}

func NewBroadcaster[CT any]() *Broadcaster[CT] {
	return &Broadcaster[CT]{
		changes:          make(chan CT),
		done:             make(chan struct{}),
		lock:             &sync.RWMutex{},
		subscribers:      map[int]Subscriber[CT]{},
		subscriptionLock: &sync.Mutex{},
	}
}

// Subscribe registers a subscriber and returns a function removing it.
func (cb *Broadcaster[CT]) Subscribe(sub Subscriber[CT]) func() {
	cb.subscriptionLock.Lock()
	id := cb.subscriptionID
	cb.subscriptionID++
	cb.subscriptionLock.Unlock()

	cb.lock.Lock()
	cb.subscribers[id] = sub
	cb.lock.Unlock()

	return func() {
		cb.lock.Lock()
		defer cb.lock.Unlock()

		delete(cb.subscribers, id)
	}
}

// Send blocks until the broadcasting goroutine picks up the payload.
// Payloads sent after Close are dropped.
func (cb *Broadcaster[CT]) Send(payload CT) {
	select {
	case cb.changes <- payload:
	case <-cb.done:
	}
}

func (cb *Broadcaster[CT]) Broadcast() {
	go func() {
		for {
			select {
			case change := <-cb.changes:
				cb.lock.RLock()
				for _, subscriber := range cb.subscribers {
					subscriber.Receive(change)
				}
				cb.lock.RUnlock()
			case <-cb.done:
				return
			}
		}
	}()
}

// Close stops broadcasting. It is safe to call Close more than once.
func (cb *Broadcaster[CT]) Close() {
	cb.subscriptionLock.Lock()
	defer cb.subscriptionLock.Unlock()

	select {
	case <-cb.done:
	default:
		close(cb.done)
	}
}
