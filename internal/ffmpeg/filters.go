package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Analysis filter constants.
const (
	// SceneThreshold is the select filter's scene score above which a frame is a cut.
	SceneThreshold = 0.3

	// SilenceDuration is the minimum silence length, in seconds, silencedetect reports.
	SilenceDuration = 0.25

	// InclusiveNoiseThreshold is the silencedetect noise level, in dB, used when no
	// volume threshold is given. Every sample is quieter than it, so the whole track
	// reads as one silence window and every cut survives.
	InclusiveNoiseThreshold = 1000.0
)

// FilterChain builds a comma separated filter chain.
type FilterChain struct {
	filters []string
}

// NewFilterChain creates a new empty filter chain.
func NewFilterChain() *FilterChain {
	return &FilterChain{}
}

// AddFilter adds a filter to the chain.
func (c *FilterChain) AddFilter(filter string) *FilterChain {
	if filter != "" {
		c.filters = append(c.filters, filter)
	}
	return c
}

// SceneSelect adds a select filter passing only frames whose scene score exceeds threshold.
func (c *FilterChain) SceneSelect(threshold float64) *FilterChain {
	return c.AddFilter(fmt.Sprintf("select='gt(scene,%s)'", formatNumber(threshold)))
}

// ShowInfo adds the showinfo filter, which logs pts_time for every frame it sees.
func (c *FilterChain) ShowInfo() *FilterChain {
	return c.AddFilter("showinfo")
}

// SilenceDetect adds a silencedetect filter with the noise level in dB and the
// minimum silence duration in seconds.
func (c *FilterChain) SilenceDetect(noiseDB, duration float64) *FilterChain {
	return c.AddFilter(fmt.Sprintf("silencedetect=n=%sdB:d=%s", formatNumber(noiseDB), formatNumber(duration)))
}

// VolumeDetect adds the volumedetect filter.
func (c *FilterChain) VolumeDetect() *FilterChain {
	return c.AddFilter("volumedetect")
}

// Build builds the filter chain into a single filter string.
// Returns empty string if no filters are present.
func (c *FilterChain) Build() string {
	if len(c.filters) == 0 {
		return ""
	}
	return strings.Join(c.filters, ",")
}

// AnalysisOptions configures the combined scene/silence pass.
type AnalysisOptions struct {
	SceneThreshold  float64
	SilenceDuration float64
	// NoiseDB is the silence threshold in dB; nil selects InclusiveNoiseThreshold.
	NoiseDB *float64
}

// DefaultAnalysisOptions returns the fixed detector settings.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		SceneThreshold:  SceneThreshold,
		SilenceDuration: SilenceDuration,
	}
}

// NoiseLevel returns the silencedetect noise level the options resolve to.
func (o AnalysisOptions) NoiseLevel() float64 {
	if o.NoiseDB == nil {
		return InclusiveNoiseThreshold
	}
	return *o.NoiseDB
}

// BuildAnalysisArgs returns ffmpeg arguments for a single decode pass that runs scene
// detection with showinfo on the video and silencedetect on the audio, discarding
// the output.
func BuildAnalysisArgs(input string, opts AnalysisOptions) []string {
	video := NewFilterChain().SceneSelect(opts.SceneThreshold).ShowInfo().Build()
	audio := NewFilterChain().SilenceDetect(opts.NoiseLevel(), opts.SilenceDuration).Build()
	graph := fmt.Sprintf("[0:v]%s[v];[0:a]%s[a]", video, audio)

	return []string{
		"-hide_banner",
		"-nostats",
		"-i", input,
		"-filter_complex", graph,
		"-map", "[v]",
		"-map", "[a]",
		"-f", "null",
		"-",
	}
}

// BuildVolumeArgs returns ffmpeg arguments measuring the audio volume of the window
// of the given length starting at start seconds.
func BuildVolumeArgs(input string, start, window float64) []string {
	if start < 0 {
		start = 0
	}
	return []string{
		"-hide_banner",
		"-nostats",
		"-ss", formatNumber(start),
		"-t", formatNumber(window),
		"-i", input,
		"-vn",
		"-af", NewFilterChain().VolumeDetect().Build(),
		"-f", "null",
		"-",
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
