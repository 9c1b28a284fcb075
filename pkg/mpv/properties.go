package mpv

const (
	// DurationProperty is used to inform about duration of currently loaded file in seconds.
	DurationProperty = "duration"

	// PathProperty is used to inform about path to file currently being played by mpv.
	PathProperty = "path"

	// PauseProperty is used for pausing or unpausing playback.
	PauseProperty = "pause"

	// PlaybackTimeProperty is used for reading and setting current time of playback in seconds.
	PlaybackTimeProperty = "playback-time"

	// SpeedProperty is used for reading and setting the playback rate multiplier.
	SpeedProperty = "speed"

	// VolumeProperty is used for reading and setting the software volume (0-100, may be amplified above 100).
	VolumeProperty = "volume"
)

var (
	// ObservableProperties specifies collection of properties that can be observed by 'property-change' event.
	// Volume and speed are owned by the server and only ever set, never observed,
	// since fades change the mpv volume temporarily.
	ObservableProperties = []string{
		DurationProperty,
		PathProperty,
		PauseProperty,
		PlaybackTimeProperty,
	}
)
