package playback

import (
	"encoding/json"
	"math"
	"path/filepath"
	"sync"

	"github.com/sarpt/mpv-repeat-player/internal/common"
	"github.com/sarpt/mpv-repeat-player/pkg/state/internal/revision"
)

const (
	DefaultRate   = 1.0
	MinRate       = 0.5
	MaxRate       = 2.0
	DefaultVolume = 1.0
	DefaultZoom   = 100.0
	MinZoom       = 10.0
	MaxZoom       = 1000.0
)

// RatePresets lists playback rates offered as one-click choices.
var RatePresets = []float64{0.75, 0.9, 1, 1.1, 1.25, 1.5}

type SubscriberCB = func(change Change)

const (
	// DurationChange notifies about duration of the loaded media file becoming known.
	DurationChange common.ChangeVariant = "durationChange"

	// MediaFileChange notifies about change of currently played mediaFile.
	MediaFileChange common.ChangeVariant = "mediaFileChange"

	// PauseChange notifies about change to the playback pause state.
	PauseChange common.ChangeVariant = "pauseChange"

	// PlaybackStoppedChange notifies about playback being stopped completely.
	PlaybackStoppedChange common.ChangeVariant = "playbackStoppedChange"

	// PlaybackTimeChange notifies about current timestamp change.
	PlaybackTimeChange common.ChangeVariant = "playbackTimeChange"

	// RateChange notifies about playback rate change.
	RateChange common.ChangeVariant = "rateChange"

	// VolumeChange notifies about user volume change.
	VolumeChange common.ChangeVariant = "volumeChange"

	// ZoomChange notifies about waveform zoom change.
	ZoomChange common.ChangeVariant = "zoomChange"
)

// Snapshot is a copy of the playback state.
type Snapshot struct {
	CurrentTime   float64 `json:"CurrentTime"`
	Duration      float64 `json:"Duration"`
	FileName      string  `json:"FileName"`
	MediaFilePath string  `json:"MediaFilePath"`
	Paused        bool    `json:"Paused"`
	Rate          float64 `json:"Rate"`
	Stopped       bool    `json:"Stopped"`
	Volume        float64 `json:"Volume"`
	Zoom          float64 `json:"Zoom"`
}

// Playing informs whether media is loaded and not paused.
func (s Snapshot) Playing() bool {
	return !s.Stopped && !s.Paused
}

// Change is used to inform about changes to the Playback.
type Change struct {
	ChangeVariant common.ChangeVariant
	Revision      revision.Identifier
	Snapshot      Snapshot
}

// MarshalJSON returns change items in JSON format. Satisfies json.Marshaller.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot)
}

func (c Change) Variant() common.ChangeVariant {
	return c.ChangeVariant
}

// Storage contains information about currently played media file.
// Volume and rate are the values requested by the user; fades applied during loop restarts do not change them.
type Storage struct {
	broadcaster *common.ChangesBroadcaster[Change]
	lock        *sync.RWMutex
	revision    *revision.Storage
	state       Snapshot
}

// NewStorage constructs Playback state.
func NewStorage(broadcaster *common.ChangesBroadcaster[Change]) *Storage {
	return &Storage{
		broadcaster: broadcaster,
		lock:        &sync.RWMutex{},
		revision:    revision.NewStorage(),
		state:       initialState(DefaultVolume, DefaultRate, DefaultZoom),
	}
}

// Clear clears all information about played media, keeping user volume, rate and zoom.
func (p *Storage) Clear() {
	p.mutate(PlaybackStoppedChange, func(s *Snapshot) bool {
		*s = initialState(s.Volume, s.Rate, s.Zoom)
		return true
	})
}

// MarshalJSON satisifes json.Marshaller.
func (p *Storage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Snapshot())
}

func (p *Storage) Revision() revision.Identifier {
	return p.revision.Revision()
}

// SetDuration changes duration of the loaded media file.
func (p *Storage) SetDuration(duration float64) {
	p.mutate(DurationChange, func(s *Snapshot) bool {
		if s.Duration == duration {
			return false
		}

		s.Duration = duration
		return true
	})
}

// SetMediaFile changes currently played mediaFile, changing playback to not stopped.
// Position and duration of the previous file are cleared.
func (p *Storage) SetMediaFile(path string) {
	p.mutate(MediaFileChange, func(s *Snapshot) bool {
		if s.MediaFilePath == path && !s.Stopped {
			return false
		}

		s.MediaFilePath = path
		s.FileName = filepath.Base(path)
		s.CurrentTime = 0
		s.Duration = 0
		s.Stopped = false
		return true
	})
}

// SetPause changes whether playback should paused.
func (p *Storage) SetPause(paused bool) {
	p.mutate(PauseChange, func(s *Snapshot) bool {
		if s.Paused == paused {
			return false
		}

		s.Paused = paused
		return true
	})
}

// SetPlaybackTime changes current time of a playback.
func (p *Storage) SetPlaybackTime(time float64) {
	p.mutate(PlaybackTimeChange, func(s *Snapshot) bool {
		s.CurrentTime = time
		return true
	})
}

// SetRate changes playback rate, clamped to MinRate-MaxRate. The applied rate is returned.
func (p *Storage) SetRate(rate float64) float64 {
	snapshot := p.mutate(RateChange, func(s *Snapshot) bool {
		s.Rate = clamp(rate, MinRate, MaxRate)
		return true
	})

	return snapshot.Rate
}

// SetVolume changes user volume, clamped to 0-1. The applied volume is returned.
func (p *Storage) SetVolume(volume float64) float64 {
	snapshot := p.mutate(VolumeChange, func(s *Snapshot) bool {
		s.Volume = clamp(volume, 0, 1)
		return true
	})

	return snapshot.Volume
}

// SetZoom changes waveform zoom in pixels per second, clamped to MinZoom-MaxZoom. The applied zoom is returned.
func (p *Storage) SetZoom(zoom float64) float64 {
	snapshot := p.mutate(ZoomChange, func(s *Snapshot) bool {
		s.Zoom = clamp(zoom, MinZoom, MaxZoom)
		return true
	})

	return snapshot.Zoom
}

// Snapshot returns a copy of the current playback state.
func (p *Storage) Snapshot() Snapshot {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.state
}

// Stop clears information related to played mediaFile and sets playback to stopped.
func (p *Storage) Stop() {
	p.Clear()
}

func (p *Storage) Subscribe(cb SubscriberCB, onError func(err error)) func() {
	return p.broadcaster.Subscribe(common.SubscriberFunc[Change](cb))
}

func (p *Storage) mutate(variant common.ChangeVariant, apply func(s *Snapshot) bool) Snapshot {
	p.lock.Lock()
	changed := apply(&p.state)
	snapshot := p.state
	var rev revision.Identifier
	if changed {
		rev = p.revision.Tick()
	}
	p.lock.Unlock()

	if changed {
		p.broadcaster.Send(Change{
			ChangeVariant: variant,
			Revision:      rev,
			Snapshot:      snapshot,
		})
	}

	return snapshot
}

func initialState(volume, rate, zoom float64) Snapshot {
	return Snapshot{
		Paused:  true,
		Rate:    rate,
		Stopped: true,
		Volume:  volume,
		Zoom:    zoom,
	}
}

func clamp(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return min
	}

	return math.Max(min, math.Min(max, v))
}
