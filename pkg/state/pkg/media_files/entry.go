package media_files

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sarpt/mpv-repeat-player/pkg/probe"
)

// Entry specifies information about a media file that can be played.
type Entry struct {
	artist         string
	audioStreams   []probe.AudioStream
	duration       float64
	formatName     string
	formatLongName string
	path           string
	title          string
	uuid           string
	videoStreams   []probe.VideoStream
}

type entryJSON struct {
	Artist         string              `json:"Artist"`
	AudioStreams   []probe.AudioStream `json:"AudioStreams"`
	Duration       float64             `json:"Duration"`
	FormatName     string              `json:"FormatName"`
	FormatLongName string              `json:"FormatLongName"`
	Path           string              `json:"Path"`
	Title          string              `json:"Title"`
	UUID           string              `json:"UUID"`
	VideoStreams   []probe.VideoStream `json:"VideoStreams"`
}

// MarshalJSON satisifes json.Marshaller.
func (m Entry) MarshalJSON() ([]byte, error) {
	mJSON := entryJSON{
		Artist:         m.artist,
		AudioStreams:   m.audioStreams,
		Duration:       m.duration,
		FormatName:     m.formatName,
		FormatLongName: m.formatLongName,
		Path:           m.path,
		Title:          m.title,
		UUID:           m.uuid,
		VideoStreams:   m.videoStreams,
	}

	return json.Marshal(mJSON)
}

// AudioOnly informs whether the file has no video streams.
func (m Entry) AudioOnly() bool {
	return len(m.videoStreams) == 0
}

// Duration returns length of the media file in seconds.
func (m Entry) Duration() float64 {
	return m.duration
}

// Path returns mediaFile path.
func (m Entry) Path() string {
	return m.path
}

// Title returns title read from the file metadata, if any.
func (m Entry) Title() string {
	return m.title
}

// Uuid returns mediaFile UUID.
func (m Entry) Uuid() string {
	return m.uuid
}

// MapProbeResultToMediaFile constructs new MediaFile from results returned by probing for media files.
func MapProbeResultToMediaFile(result probe.Result) Entry {
	return Entry{
		artist:         result.Artist,
		audioStreams:   result.AudioStreams,
		duration:       result.Format.Duration,
		formatName:     result.Format.Name,
		formatLongName: result.Format.LongName,
		path:           result.Path,
		title:          result.Format.Title,
		uuid:           uuid.NewString(),
		videoStreams:   result.VideoStreams,
	}
}
