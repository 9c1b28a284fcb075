package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

const (
	videoCodecType = "video"
	audioCodecType = "audio"

	ffprobeName    = "ffprobe"
	hideBannerArg  = "-hide_banner"
	logLevelArg    = "-loglevel"
	quietLogLevel  = "quiet"
	showErrorArg   = "-show_error"
	showStreamsArg = "-show_streams"
	showFormatArg  = "-show_format"
	outputArg      = "-of"
	jsonOutput     = "json"
)

var (
	// ErrNotMediaFile informs that the probed file has neither audio nor video streams.
	ErrNotMediaFile = errors.New("file contains neither audio nor video streams")
)

// AudioStream specifies information about audio the file includes
type AudioStream struct {
	AudioID  string `json:"AudioID"`
	Channels int    `json:"Channels"`
	Codec    string `json:"Codec"`
	Language string `json:"Language"`
}

// VideoStream specifies information about video the file includes
type VideoStream struct {
	Height int `json:"Height"`
	Width  int `json:"Width"`
}

// Format specifies general information about media container file
type Format struct {
	Name     string  `json:"Name"`
	LongName string  `json:"LongName"`
	Duration float64 `json:"Duration"`
	Title    string  `json:"Title"`
}

// Result contains information about the file
type Result struct {
	Path         string        `json:"Path"`
	Format       Format        `json:"Format"`
	Artist       string        `json:"Artist"`
	VideoStreams []VideoStream `json:"VideoStreams"`
	AudioStreams []AudioStream `json:"AudioStreams"`
	Err          error         `json:"-"`
}

// Prober returns probing results for a file path.
type Prober func(filepath string) Result

// File checks information about the file format, it's streams and whether it can be used as a media file.
// Format information is read with "ffprobe" ran as a separate process, while title and artist are taken from
// embedded tags when ffprobe does not report them.
func File(filepath string) Result {
	result := Result{
		Path:         filepath,
		Format:       Format{},
		VideoStreams: []VideoStream{},
		AudioStreams: []AudioStream{},
	}

	ffprobeResult, err := probeWithFfprobe(filepath)
	if err != nil {
		result.Err = fmt.Errorf("probing error: %w", err)

		return result
	}

	if ffprobeResult.ProbeError.Code != 0 {
		result.Err = fmt.Errorf("probing error from ffprobe: %d (%s)", ffprobeResult.ProbeError.Code, ffprobeResult.ProbeError.Message)

		return result
	}

	mapFfprobeResult(&result, ffprobeResult)
	if result.Err != nil {
		return result
	}

	if !result.IsMediaFile() {
		result.Err = ErrNotMediaFile

		return result
	}

	if result.Format.Title == "" {
		metadata, err := readTags(filepath)
		if err == nil {
			result.Format.Title = metadata.title
			result.Artist = metadata.artist
		}
	}

	return result
}

func mapFfprobeResult(result *Result, ffprobeResult ffprobeResult) {
	var duration float64
	if ffprobeResult.Format.Duration != "" {
		parsedDuration, err := strconv.ParseFloat(ffprobeResult.Format.Duration, 64)
		if err != nil {
			result.Err = fmt.Errorf("could not parse duration: %w", err)

			return
		}

		duration = parsedDuration
	}

	result.Format = Format{
		Name:     ffprobeResult.Format.Name,
		LongName: ffprobeResult.Format.LongName,
		Duration: duration,
		Title:    ffprobeResult.Format.Tags.Title,
	}

	for _, str := range ffprobeResult.Streams {
		switch str.CodecType {
		case videoCodecType:
			result.VideoStreams = append(result.VideoStreams, VideoStream{
				Width:  str.Width,
				Height: str.Height,
			})
		case audioCodecType:
			result.AudioStreams = append(result.AudioStreams, AudioStream{
				AudioID:  strconv.FormatInt(int64(len(result.AudioStreams)+1), 10),
				Channels: str.Channels,
				Codec:    str.CodecName,
				Language: str.Tags.Language,
			})
		}
	}
}

func probeWithFfprobe(filepath string) (ffprobeResult, error) {
	result := ffprobeResult{}

	ffprobeargs := []string{
		hideBannerArg,
		logLevelArg, quietLogLevel,
		showErrorArg,
		showStreamsArg,
		showFormatArg,
		outputArg, jsonOutput,
		filepath,
	}
	cmd := exec.Command(ffprobeName, ffprobeargs...)

	output, err := cmd.Output()
	if err != nil {
		return result, err
	}

	err = json.Unmarshal(output, &result)
	return result, err
}

// IsMediaFile checks whether parsing of file was successful, and whether any audio or video streams are present in the file.
func (res Result) IsMediaFile() bool {
	if res.Err != nil && !errors.Is(res.Err, ErrNotMediaFile) {
		return false
	}

	return len(res.VideoStreams) != 0 || len(res.AudioStreams) != 0
}
