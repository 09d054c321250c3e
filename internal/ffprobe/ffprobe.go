// Package ffprobe provides functions for extracting stream timing using ffprobe.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// StreamTiming contains the timing of the primary video stream.
type StreamTiming struct {
	StartTime  float64
	Duration   float64
	FrameCount uint64
}

// SecondsPerFrame returns the average frame duration in seconds.
func (t StreamTiming) SecondsPerFrame() float64 {
	if t.FrameCount == 0 {
		return 0
	}
	return t.Duration / float64(t.FrameCount)
}

// ffprobeOutput represents the JSON output from ffprobe.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	StartTime    string `json:"start_time"`
	Duration     string `json:"duration"`
	NbFrames     string `json:"nb_frames"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// Prober runs ffprobe against local files or URLs ffmpeg can open.
type Prober struct {
	binary string
	logger zerolog.Logger
}

// NewProber creates a Prober. An empty binary means "ffprobe" on PATH.
func NewProber(binary string, logger zerolog.Logger) *Prober {
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{
		binary: binary,
		logger: logger.With().Str("component", "ffprobe").Logger(),
	}
}

// ProbeTiming returns the start time, duration and frame count of the first video
// stream in input.
func (p *Prober) ProbeTiming(ctx context.Context, input string) (*StreamTiming, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		input,
	}
	p.logger.Debug().Str("cmd", p.binary).Strs("args", args).Msg("probing media")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, cperrors.WrapExecError(p.binary, err, strings.TrimSpace(stderr.String()))
	}

	timing, err := ParseTiming(output, input)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Float64("start_time", timing.StartTime).
		Float64("duration", timing.Duration).
		Uint64("frames", timing.FrameCount).
		Msg("media probed")

	return timing, nil
}

// ParseTiming extracts the primary video stream timing from ffprobe JSON output.
func ParseTiming(data []byte, input string) (*StreamTiming, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, cperrors.NewFFprobeParseError("failed to parse ffprobe output", err)
	}
	return extractTiming(&probe, input)
}

func extractTiming(probe *ffprobeOutput, input string) (*StreamTiming, error) {
	var video *ffprobeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			video = &probe.Streams[i]
			break
		}
	}
	if video == nil {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("no video stream found in %s", input), nil)
	}

	timing := &StreamTiming{}

	if video.StartTime != "" {
		start, err := strconv.ParseFloat(video.StartTime, 64)
		if err != nil {
			return nil, cperrors.NewFFprobeParseError(fmt.Sprintf("invalid start_time %q", video.StartTime), err)
		}
		timing.StartTime = start
	}

	// Matroska streams carry no duration; fall back to the container's.
	durationStr := video.Duration
	if durationStr == "" {
		durationStr = probe.Format.Duration
	}
	if durationStr == "" {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("no duration reported for %s", input), nil)
	}
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return nil, cperrors.NewFFprobeParseError(fmt.Sprintf("invalid duration %q", durationStr), err)
	}
	if duration <= 0 {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("non-positive duration %v for %s", duration, input), nil)
	}
	timing.Duration = duration

	if video.NbFrames != "" {
		frames, err := strconv.ParseUint(video.NbFrames, 10, 64)
		if err != nil {
			return nil, cperrors.NewFFprobeParseError(fmt.Sprintf("invalid nb_frames %q", video.NbFrames), err)
		}
		timing.FrameCount = frames
	} else if fps := parseFrameRate(video.AvgFrameRate); fps > 0 {
		timing.FrameCount = uint64(duration*fps + 0.5)
	}
	if timing.FrameCount == 0 {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("no frame count reported for %s", input), nil)
	}

	return timing, nil
}

// parseFrameRate parses frame rate from ffprobe format (e.g., "30000/1001").
func parseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
