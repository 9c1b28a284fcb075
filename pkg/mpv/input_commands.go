package mpv

const (
	loadfileCommand        = "loadfile"
	observePropertyCommand = "observe_property_string"
	seekCommand            = "seek"
	setPropertyCommand     = "set_property"
	stopCommand            = "stop"
)
