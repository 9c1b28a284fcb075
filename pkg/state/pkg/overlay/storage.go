package overlay

import (
	"encoding/json"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/internal/revision"
	"github.com/sarpt/mpv-repeat-player/pkg/state/pkg/loop"
)

const (
	// RegionChange notifies about the persistent region being redrawn from the loop range.
	RegionChange common.ChangeVariant = "regionChange"

	// SelectionChange notifies about the ephemeral gesture selection being drawn, moved or removed.
	SelectionChange common.ChangeVariant = "selectionChange"
)

type SubscriberCB = func(change Change)

// Selection is the temporary span drawn while a pointer gesture is in progress.
type Selection struct {
	Start float64 `json:"Start"`
	End   float64 `json:"End"`
}

// Snapshot is the whole overlay: at most one persistent region and at most one selection.
type Snapshot struct {
	Region    loop.Region `json:"Region"`
	Selection *Selection  `json:"Selection"`
}

// Change carries the complete overlay; clients replace what they draw instead of accumulating.
type Change struct {
	ChangeVariant common.ChangeVariant
	Snapshot      Snapshot
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot)
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage holds the overlay shown on top of the waveform.
type Storage struct {
	broadcaster    *common.ChangesBroadcaster[Change]
	lock           *sync.RWMutex
	region         loop.Region
	selection      *Selection
	sourceRevision revision.Identifier
}

func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		lock:        &sync.RWMutex{},
		region:      loop.Region{Kind: loop.NoRegion},
	}
}

// ClearSelection removes the gesture selection, if any.
func (o *Storage) ClearSelection() {
	o.lock.Lock()
	if o.selection == nil {
		o.lock.Unlock()
		return
	}

	o.selection = nil
	snapshot := o.snapshot()
	o.lock.Unlock()

	o.send(SelectionChange, snapshot)
}

// MarshalJSON satisifes json.Marshaller.
func (o *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Snapshot())
}

// Redraw re-publishes the current region unchanged.
func (o *Storage) Redraw() {
	o.lock.RLock()
	snapshot := o.snapshot()
	o.lock.RUnlock()

	o.send(RegionChange, snapshot)
}

// ReplaceRegion swaps the persistent region for the one projected from the loop state at sourceRevision.
// Projections older than the last applied one are dropped. Returns whether the region was replaced.
func (o *Storage) ReplaceRegion(region loop.Region, sourceRevision revision.Identifier) bool {
	o.lock.Lock()
	if sourceRevision < o.sourceRevision {
		o.lock.Unlock()
		return false
	}

	o.region = region
	o.sourceRevision = sourceRevision
	snapshot := o.snapshot()
	o.lock.Unlock()

	o.send(RegionChange, snapshot)
	return true
}

// SetSelection draws the gesture selection between start and end, in any order.
func (o *Storage) SetSelection(start, end float64) {
	if end < start {
		start, end = end, start
	}

	o.lock.Lock()
	o.selection = &Selection{Start: start, End: end}
	snapshot := o.snapshot()
	o.lock.Unlock()

	o.send(SelectionChange, snapshot)
}

// Snapshot returns a copy of the overlay.
func (o *Storage) Snapshot() Snapshot {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return o.snapshot()
}

func (o *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return o.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

func (o *Storage) send(variant common.ChangeVariant, snapshot Snapshot) {
	o.broadcaster.Send(Change{
		ChangeVariant: variant,
		Snapshot:      snapshot,
	})
}

func (o *Storage) snapshot() Snapshot {
	var selection *Selection
	if o.selection != nil {
		s := *o.selection
		selection = &s
	}

	return Snapshot{
		Region:    o.region,
		Selection: selection,
	}
}
