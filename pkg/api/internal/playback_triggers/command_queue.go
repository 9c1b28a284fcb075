package playback_triggers

import (
	"log"
	"sync"
)

type playerCommand struct {
	name string
	run  func(p Player) error
}

func pauseCommand(paused bool) playerCommand {
	return playerCommand{
		name: "pause",
		run: func(p Player) error {
			return p.ChangePause(paused)
		},
	}
}

func seekCommand(time float64) playerCommand {
	return playerCommand{
		name: "seek",
		run: func(p Player) error {
			return p.Seek(time)
		},
	}
}

func volumeCommand(volume float64) playerCommand {
	return playerCommand{
		name: "volume",
		run: func(p Player) error {
			return p.ChangeVolume(volume)
		},
	}
}

// commandQueue executes player commands in order on its own goroutine.
// Enqueue never blocks, so callers delivering player events cannot stall on a player request waiting for those events.
type commandQueue struct {
	closed  bool
	errLog  *log.Logger
	flushed []chan struct{}
	lock    *sync.Mutex
	notify  chan struct{}
	pending [][]playerCommand
	player  Player
}

func newCommandQueue(player Player, errLog *log.Logger) *commandQueue {
	q := &commandQueue{
		errLog: errLog,
		lock:   &sync.Mutex{},
		notify: make(chan struct{}, 1),
		player: player,
	}
	go q.run()

	return q
}

func (q *commandQueue) close() {
	q.lock.Lock()
	q.closed = true
	q.lock.Unlock()

	q.wake()
}

func (q *commandQueue) enqueue(cmds []playerCommand) {
	if len(cmds) == 0 {
		return
	}

	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return
	}
	q.pending = append(q.pending, cmds)
	q.lock.Unlock()

	q.wake()
}

// flush blocks until every command enqueued before the call has been executed.
func (q *commandQueue) flush() {
	done := make(chan struct{})

	q.lock.Lock()
	if q.closed {
		q.lock.Unlock()
		return
	}
	q.flushed = append(q.flushed, done)
	q.pending = append(q.pending, nil)
	q.lock.Unlock()

	q.wake()
	<-done
}

func (q *commandQueue) run() {
	for range q.notify {
		for {
			q.lock.Lock()
			if len(q.pending) == 0 {
				closed := q.closed
				q.lock.Unlock()
				if closed {
					return
				}
				break
			}

			batch := q.pending[0]
			q.pending = q.pending[1:]
			var done chan struct{}
			if batch == nil && len(q.flushed) > 0 {
				done = q.flushed[0]
				q.flushed = q.flushed[1:]
			}
			q.lock.Unlock()

			if done != nil {
				close(done)
				continue
			}

			for _, cmd := range batch {
				err := cmd.run(q.player)
				if err != nil {
					q.errLog.Printf("could not execute %s command: %s\n", cmd.name, err)
				}
			}
		}
	}
}

func (q *commandQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
