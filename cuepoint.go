// Package cuepoint provides a Go library for choosing ad insertion points in video.
//
// Cuepoint finds shot changes, takes the gaps between shots as candidates and
// greedily keeps the ones that respect a minimum first offset and a minimum
// spacing. Shot changes come from the Google Video Intelligence API for gs://
// URIs and from ffmpeg for everything else.
//
// Basic usage:
//
//	engine, err := cuepoint.New(
//	    cuepoint.WithBetweenCues(60),
//	    cuepoint.WithVolumeThreshold(-30),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	result, err := engine.Determine(ctx, "episode.mp4")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(result.CuePoints)
package cuepoint

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/cuepoint/internal/analyzer"
	"github.com/five82/cuepoint/internal/config"
	"github.com/five82/cuepoint/internal/cues"
	"github.com/five82/cuepoint/internal/discovery"
	"github.com/five82/cuepoint/internal/ffmpeg"
	"github.com/five82/cuepoint/internal/ffprobe"
	"github.com/five82/cuepoint/internal/processing"
	"github.com/five82/cuepoint/internal/reporter"
	"github.com/five82/cuepoint/internal/segment"
)

// Re-exported types.
type (
	VideoSegment  = segment.VideoSegment
	VideoAnalyzer = analyzer.VideoAnalyzer
	VolumeMeter   = analyzer.VolumeMeter
	Params        = cues.Params
	Result        = processing.Result
	Reporter      = reporter.Reporter
)

// DefaultParams returns the default selection parameters: a cue may sit at 0.0
// and cues are at least 30 seconds apart.
func DefaultParams() Params {
	return cues.DefaultParams()
}

// NewFakeAnalyzer returns an analyzer that replays responses in order.
func NewFakeAnalyzer(responses ...[]VideoSegment) *analyzer.Fake {
	return analyzer.NewFake(responses...)
}

// Determine analyses locator with a and returns the selected cue points in
// ascending order. Any analyzer failure is returned unmodified with no cue points.
func Determine(ctx context.Context, a VideoAnalyzer, locator string, p Params, volumeThreshold *float64) ([]float64, error) {
	opts := processing.DefaultOptions()
	opts.Params = p
	opts.VolumeThreshold = volumeThreshold
	res, err := processing.DetermineCuePoints(ctx, a, locator, opts, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	return res.CuePoints, nil
}

// Engine determines cue points, choosing the analysis backend per locator.
type Engine struct {
	config   *config.Config
	analyzer VideoAnalyzer
	logger   zerolog.Logger
	reporter Reporter

	mu         sync.Mutex
	cloud      VideoAnalyzer
	closeCloud func() error
}

// BatchResult contains the result of a batch run.
type BatchResult = processing.BatchResult

// Option configures the engine.
type Option func(*Engine)

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config:   config.NewConfig(),
		logger:   zerolog.Nop(),
		reporter: reporter.NullReporter{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// WithConfig replaces the engine configuration.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		c := *cfg
		e.config = &c
	}
}

// WithAnalyzer uses a for every locator instead of choosing by scheme.
func WithAnalyzer(a VideoAnalyzer) Option {
	return func(e *Engine) {
		e.analyzer = a
	}
}

// WithParams sets both selection parameters.
func WithParams(p Params) Option {
	return func(e *Engine) {
		e.config.FirstCue = p.MinimumTimeForFirstCuePoint
		e.config.BetweenCues = p.MinimumTimeBetweenCuePoints
	}
}

// WithFirstCue sets the earliest offset, in seconds, a cue point may sit at.
func WithFirstCue(seconds float64) Option {
	return func(e *Engine) {
		e.config.FirstCue = seconds
	}
}

// WithBetweenCues sets the minimum spacing, in seconds, between cue points.
func WithBetweenCues(seconds float64) Option {
	return func(e *Engine) {
		e.config.BetweenCues = seconds
	}
}

// WithVolumeThreshold keeps only shot changes quieter than db. Ignored by the
// cloud backend.
func WithVolumeThreshold(db float64) Option {
	return func(e *Engine) {
		e.config.VolumeThreshold = &db
	}
}

// WithMaxVolume drops cue points louder than db. Local analysis only.
func WithMaxVolume(db float64) Option {
	return func(e *Engine) {
		e.config.MaxVolume = &db
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// Params returns the selection parameters in effect.
func (e *Engine) Params() Params {
	return Params{
		MinimumTimeForFirstCuePoint: e.config.FirstCue,
		MinimumTimeBetweenCuePoints: e.config.BetweenCues,
	}
}

func (e *Engine) options() processing.Options {
	return processing.Options{
		Params:          e.Params(),
		VolumeThreshold: e.config.VolumeThreshold,
		MaxVolume:       e.config.MaxVolume,
	}
}

// factory builds analyzers from the engine configuration. The cloud client is
// created on first use and shared.
func (e *Engine) factory() analyzer.Factory {
	if e.analyzer != nil {
		fixed := func(context.Context) (analyzer.VideoAnalyzer, error) { return e.analyzer, nil }
		return analyzer.Factory{Cloud: fixed, Local: fixed}
	}

	return analyzer.Factory{
		Cloud: func(ctx context.Context) (analyzer.VideoAnalyzer, error) {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.cloud == nil {
				c, closeFn, err := analyzer.NewCloudFromEnv(ctx, e.logger, analyzer.WithCloudTimeout(e.config.CloudTimeout))
				if err != nil {
					return nil, err
				}
				e.cloud, e.closeCloud = c, closeFn
			}
			return e.cloud, nil
		},
		Local: func(context.Context) (analyzer.VideoAnalyzer, error) {
			return analyzer.NewLocal(
				ffprobe.NewProber(e.config.FFprobePath, e.logger),
				ffmpeg.NewExecutor(e.config.FFmpegPath, e.logger),
				e.logger,
				analyzer.WithSceneThreshold(e.config.SceneThreshold),
				analyzer.WithSilenceDuration(e.config.SilenceDuration),
				analyzer.WithVolumeWindow(e.config.VolumeWindow),
			), nil
		},
	}
}

// Backend names the analyzer that would handle locator.
func (e *Engine) Backend(locator string) string {
	switch {
	case e.analyzer != nil:
		return "custom"
	case analyzer.IsCloudLocator(locator):
		return "cloud"
	default:
		return "local"
	}
}

// Determine finds the cue points of one video. On failure no result is returned.
func (e *Engine) Determine(ctx context.Context, locator string) (*Result, error) {
	e.reporter.AnalysisStarted(reporter.AnalysisInfo{
		Locator:         locator,
		Backend:         e.Backend(locator),
		FirstCue:        e.config.FirstCue,
		BetweenCues:     e.config.BetweenCues,
		VolumeThreshold: e.config.VolumeThreshold,
		MaxVolume:       e.config.MaxVolume,
	})

	a, err := e.factory().ForLocator(ctx, locator)
	if err != nil {
		return nil, err
	}

	res, err := processing.DetermineCuePoints(ctx, a, locator, e.options(), e.logger.With().Str("input", locator).Logger())
	if err != nil {
		return nil, err
	}

	e.reporter.CuePoints(reporter.CueResult{
		Locator:    locator,
		Segments:   len(res.Segments),
		Candidates: len(res.Candidates),
		CuePoints:  res.CuePoints,
		Elapsed:    res.Elapsed,
	})
	return res, nil
}

// DetermineBatch runs Determine for every locator with the configured number of
// workers. Per-file failures are recorded in the result, not returned.
func (e *Engine) DetermineBatch(ctx context.Context, locators []string) *BatchResult {
	return processing.ProcessVideos(ctx, locators, e.config.Workers, e.Determine, e.reporter, e.logger)
}

// FindVideos finds video files in a directory.
func FindVideos(dir string, recursive bool) ([]string, error) {
	res, err := discovery.FindVideoFiles(dir, discovery.Options{Recursive: recursive}, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// Close releases the cloud client if one was created.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closeCloud == nil {
		return nil
	}
	err := e.closeCloud()
	e.cloud, e.closeCloud = nil, nil
	return err
}
