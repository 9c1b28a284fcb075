package revision

import "sync"

// Identifier grows monotonically with every change to a storage.
type Identifier = uint64

type Storage struct {
	lock     *sync.RWMutex
	revision Identifier
}

func NewStorage() *Storage {
	return &Storage{
		lock:     &sync.RWMutex{},
		revision: 0,
	}
}

func (rs *Storage) Revision() Identifier {
	rs.lock.RLock()
	defer rs.lock.RUnlock()

	return rs.revision
}

// Tick advances the revision and returns the new value.
func (rs *Storage) Tick() Identifier {
	rs.lock.Lock()
	defer rs.lock.Unlock()

	rs.revision += 1
	return rs.revision
}
