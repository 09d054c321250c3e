package ffmpeg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// silenceWindowRegex captures everything silencedetect logged between a
	// silence_start and the next silence_end, across lines.
	silenceWindowRegex = regexp.MustCompile(`(?s)silence_start:(.*?)silence_end`)

	// showinfoPTSRegex captures the pts_time showinfo logs for each selected frame.
	showinfoPTSRegex = regexp.MustCompile(`Parsed_showinfo.+pts_time:(\S+)`)

	silenceStartRegex = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	silenceEndRegex   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)`)

	meanVolumeRegex = regexp.MustCompile(`mean_volume:\s*(-?(?:[0-9.]+|inf))\s*dB`)
	maxVolumeRegex  = regexp.MustCompile(`max_volume:\s*(-?(?:[0-9.]+|inf))\s*dB`)
)

// SilenceWindow is a span silencedetect reported as quieter than its noise level.
type SilenceWindow struct {
	Start float64
	End   float64
}

// VolumeStats holds volumedetect results in dB.
type VolumeStats struct {
	MeanVolume float64
	MaxVolume  float64
}

// ParseSilentShotChanges returns, in log order, the pts_time of every scene change
// showinfo reported inside a silence window. Only text between a silence_start and
// its matching silence_end is searched, so cuts logged while audio was above the
// noise level are dropped. An unterminated trailing silence_start contributes nothing.
func ParseSilentShotChanges(log string) []float64 {
	var sections []string
	for _, m := range silenceWindowRegex.FindAllStringSubmatch(log, -1) {
		sections = append(sections, m[1])
	}
	silent := strings.Join(sections, "\n")

	var timestamps []float64
	for _, m := range showinfoPTSRegex.FindAllStringSubmatch(silent, -1) {
		t, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, t)
	}
	return timestamps
}

// ParseShotChanges returns the pts_time of every scene change in the log,
// ignoring silence windows.
func ParseShotChanges(log string) []float64 {
	var timestamps []float64
	for _, m := range showinfoPTSRegex.FindAllStringSubmatch(log, -1) {
		if t, err := strconv.ParseFloat(m[1], 64); err == nil {
			timestamps = append(timestamps, t)
		}
	}
	return timestamps
}

// ParseSilenceWindows pairs every silence_start with the following silence_end.
func ParseSilenceWindows(log string) []SilenceWindow {
	var windows []SilenceWindow
	for _, m := range silenceWindowRegex.FindAllStringIndex(log, -1) {
		chunk := log[m[0]:]
		startMatch := silenceStartRegex.FindStringSubmatch(chunk)
		endMatch := silenceEndRegex.FindStringSubmatch(chunk)
		if startMatch == nil || endMatch == nil {
			continue
		}
		start, err1 := strconv.ParseFloat(startMatch[1], 64)
		end, err2 := strconv.ParseFloat(endMatch[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		windows = append(windows, SilenceWindow{Start: start, End: end})
	}
	return windows
}

// ParseVolumeDetect extracts mean and max volume from volumedetect output.
func ParseVolumeDetect(log string) (VolumeStats, error) {
	maxMatch := maxVolumeRegex.FindStringSubmatch(log)
	if maxMatch == nil {
		return VolumeStats{}, fmt.Errorf("volumedetect reported no max_volume")
	}

	var stats VolumeStats
	var err error
	if stats.MaxVolume, err = strconv.ParseFloat(maxMatch[1], 64); err != nil {
		return VolumeStats{}, fmt.Errorf("invalid max_volume %q: %w", maxMatch[1], err)
	}
	if meanMatch := meanVolumeRegex.FindStringSubmatch(log); meanMatch != nil {
		if stats.MeanVolume, err = strconv.ParseFloat(meanMatch[1], 64); err != nil {
			return VolumeStats{}, fmt.Errorf("invalid mean_volume %q: %w", meanMatch[1], err)
		}
	}
	return stats, nil
}
