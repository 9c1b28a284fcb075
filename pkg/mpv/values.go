package mpv

const (
	// AbsoluteExactValue specifies seek to an absolute position without snapping to keyframes.
	AbsoluteExactValue = "absolute+exact"
	// AppendValue specified loadfile command playlist append.
	AppendValue = "append"
	// NoValue is equivalent to false (where required by property).
	NoValue = "no"
	// ReplaceValue specifies loadfile command playback replacement.
	ReplaceValue = "replace"
	// YesValue is equivalent to true (where required by property).
	YesValue = "yes"
)
