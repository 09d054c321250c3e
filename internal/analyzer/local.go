package analyzer

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/cuepoint/internal/ffmpeg"
	"github.com/five82/cuepoint/internal/ffprobe"
	"github.com/five82/cuepoint/internal/segment"
	"github.com/five82/cuepoint/internal/util"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// TimingProber reports the timing of the primary video stream.
type TimingProber interface {
	ProbeTiming(ctx context.Context, input string) (*ffprobe.StreamTiming, error)
}

// Schemes ffmpeg can read progressively. Anything else with a scheme is rejected.
var remoteSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
}

// Streaming manifests need converting to a progressive format first.
var streamingExtensions = map[string]bool{
	".m3u8": true,
	".mpd":  true,
}

// Local detects shot changes with ffprobe and a single ffmpeg decode pass.
type Local struct {
	prober TimingProber
	runner ffmpeg.Runner
	opts   ffmpeg.AnalysisOptions
	window float64
	logger zerolog.Logger
}

// LocalOption configures a Local analyzer.
type LocalOption func(*Local)

// WithSceneThreshold overrides the scene change sensitivity.
func WithSceneThreshold(threshold float64) LocalOption {
	return func(l *Local) {
		if threshold > 0 {
			l.opts.SceneThreshold = threshold
		}
	}
}

// WithSilenceDuration overrides the minimum silence length.
func WithSilenceDuration(seconds float64) LocalOption {
	return func(l *Local) {
		if seconds > 0 {
			l.opts.SilenceDuration = seconds
		}
	}
}

// WithVolumeWindow sets the span MeasureVolume analyses around a timestamp.
func WithVolumeWindow(seconds float64) LocalOption {
	return func(l *Local) {
		if seconds > 0 {
			l.window = seconds
		}
	}
}

// NewLocal creates a Local analyzer.
func NewLocal(prober TimingProber, runner ffmpeg.Runner, logger zerolog.Logger, opts ...LocalOption) *Local {
	l := &Local{
		prober: prober,
		runner: runner,
		opts:   ffmpeg.DefaultAnalysisOptions(),
		window: ffmpeg.DefaultVolumeWindow,
		logger: logger.With().Str("component", "local-analyzer").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DetectShotChanges probes locator, runs the combined scene/silence pass, and keeps
// only the cuts that fall inside silence windows. Without a volume threshold the
// silence detector treats the whole track as silent, so every cut is kept.
func (l *Local) DetectShotChanges(ctx context.Context, locator string, volumeThreshold *float64) ([]segment.VideoSegment, error) {
	if err := checkLocalLocator(locator); err != nil {
		return nil, err
	}

	if !util.HasVideoExtension(locator) {
		l.logger.Warn().Str("input", locator).Msg("unrecognised video extension, relying on ffprobe")
	}

	timing, err := l.prober.ProbeTiming(ctx, locator)
	if err != nil {
		return nil, err
	}

	opts := l.opts
	opts.NoiseDB = volumeThreshold

	l.logger.Info().
		Str("input", locator).
		Float64("scene_threshold", opts.SceneThreshold).
		Float64("noise_db", opts.NoiseLevel()).
		Msg("detecting shot changes")

	output, err := l.runner.Run(ctx, ffmpeg.BuildAnalysisArgs(locator, opts))
	if err != nil {
		return nil, err
	}

	cuts := ffmpeg.ParseSilentShotChanges(output)
	l.logger.Debug().
		Int("shot_changes", len(ffmpeg.ParseShotChanges(output))).
		Int("silence_windows", len(ffmpeg.ParseSilenceWindows(output))).
		Int("silent_shot_changes", len(cuts)).
		Msg("parsed ffmpeg diagnostics")

	segs := BuildSegments(*timing, cuts)
	l.logger.Info().Int("segments", len(segs)).Msg("shot change detection complete")
	return segs, nil
}

// MeasureVolume returns the peak volume, in dB, around at seconds.
func (l *Local) MeasureVolume(ctx context.Context, locator string, at float64) (float64, error) {
	stats, err := ffmpeg.MeasureVolumeAt(ctx, l.runner, locator, at, l.window)
	if err != nil {
		return 0, err
	}
	return stats.MaxVolume, nil
}

// BuildSegments turns cut timestamps into segments. The stream start time is the
// first boundary. Each segment ends one frame before the next boundary so the
// changed frame opens the following segment; the last ends at the stream duration.
// No cuts yields a single segment from 0 to the duration.
func BuildSegments(timing ffprobe.StreamTiming, cuts []float64) []segment.VideoSegment {
	boundaries := []float64{timing.StartTime}
	sorted := make([]float64, len(cuts))
	copy(sorted, cuts)
	sort.Float64s(sorted)
	for _, c := range sorted {
		// A cut on the very first frame would produce an empty leading segment.
		if c > boundaries[len(boundaries)-1] {
			boundaries = append(boundaries, c)
		}
	}
	if len(boundaries) == 1 {
		return []segment.VideoSegment{segment.New(0.0, timing.Duration)}
	}

	spf := timing.SecondsPerFrame()
	segs := make([]segment.VideoSegment, 0, len(boundaries))
	for i, start := range boundaries {
		end := timing.Duration
		if i+1 < len(boundaries) {
			end = boundaries[i+1] - spf
		}
		segs = append(segs, segment.New(start, end))
	}
	return segs
}

func checkLocalLocator(locator string) error {
	if strings.TrimSpace(locator) == "" {
		return cperrors.NewInputError("video locator is empty")
	}
	if IsCloudLocator(locator) {
		return cperrors.NewInputError(fmt.Sprintf("%s is a cloud URI; use the cloud analyzer", locator))
	}

	ext := strings.ToLower(filepath.Ext(stripQuery(locator)))
	if streamingExtensions[ext] {
		return cperrors.NewInputError(fmt.Sprintf("streaming format %s is not supported; convert %s to a progressive file first", ext, locator))
	}

	if u, err := url.Parse(locator); err == nil && len(u.Scheme) > 1 {
		if !remoteSchemes[strings.ToLower(u.Scheme)] {
			return cperrors.NewInputError(fmt.Sprintf("unsupported scheme %q in %s", u.Scheme, locator))
		}
		return nil
	}

	if util.DirectoryExists(locator) {
		return cperrors.NewInputError(fmt.Sprintf("%s is a directory", locator))
	}
	if !util.FileExists(locator) {
		return cperrors.NewInputError(fmt.Sprintf("video file does not exist: %s", locator))
	}
	return nil
}

func stripQuery(locator string) string {
	if i := strings.IndexAny(locator, "?#"); i >= 0 {
		return locator[:i]
	}
	return locator
}
