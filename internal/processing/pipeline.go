// Package processing runs the cue point pipeline for single videos and batches.
package processing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/cuepoint/internal/analyzer"
	"github.com/five82/cuepoint/internal/cues"
	"github.com/five82/cuepoint/internal/segment"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// Options controls one cue point determination.
type Options struct {
	Params cues.Params
	// VolumeThreshold restricts cuts to spans quieter than this many dB.
	VolumeThreshold *float64
	// MaxVolume rejects candidates louder than this many dB. Needs an analyzer
	// that implements analyzer.VolumeMeter.
	MaxVolume *float64
}

// DefaultOptions returns default selection parameters with no loudness limits.
func DefaultOptions() Options {
	return Options{Params: cues.DefaultParams()}
}

// Result contains the outcome of one determination.
type Result struct {
	Locator    string
	Segments   []segment.VideoSegment
	Candidates []float64
	CuePoints  []float64
	Elapsed    time.Duration
}

// DetermineCuePoints analyses locator with a, derives candidates and selects cue
// points. Analyzer errors are returned unmodified. Nothing is returned on failure.
func DetermineCuePoints(ctx context.Context, a analyzer.VideoAnalyzer, locator string, opts Options, logger zerolog.Logger) (*Result, error) {
	start := time.Now()

	segs, err := a.DetectShotChanges(ctx, locator, opts.VolumeThreshold)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("analyzer returned no segments for %s", locator), nil)
	}

	sorted := make([]segment.VideoSegment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})
	if err := segment.Validate(sorted); err != nil {
		logger.Warn().Err(err).Str("input", locator).Msg("irregular segments from analyzer")
	}

	candidates := cues.Candidates(sorted)
	logger.Debug().
		Int("segments", len(sorted)).
		Int("candidates", len(candidates)).
		Msg("derived cue point candidates")

	var selected []float64
	if opts.MaxVolume != nil {
		selected, err = selectQuiet(ctx, a, locator, candidates, opts, logger)
		if err != nil {
			return nil, err
		}
	} else {
		selected = cues.Select(candidates, opts.Params)
	}

	return &Result{
		Locator:    locator,
		Segments:   sorted,
		Candidates: candidates,
		CuePoints:  selected,
		Elapsed:    time.Since(start),
	}, nil
}

// selectQuiet measures the volume at every candidate and drops the loud ones
// before spacing is applied. Backends that cannot measure volume fall back to
// plain selection.
func selectQuiet(ctx context.Context, a analyzer.VideoAnalyzer, locator string, candidates []float64, opts Options, logger zerolog.Logger) ([]float64, error) {
	meter, ok := a.(analyzer.VolumeMeter)
	if !ok {
		logger.Warn().Str("input", locator).Msg("analyzer cannot measure volume; max volume ignored")
		return cues.Select(candidates, opts.Params), nil
	}

	measured := make([]cues.Candidate, 0, len(candidates))
	for _, t := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, cperrors.NewCancelledError()
		}
		v, err := meter.MeasureVolume(ctx, locator, t)
		if err != nil {
			return nil, err
		}
		logger.Debug().Float64("time", t).Float64("max_volume", v).Msg("measured candidate volume")
		measured = append(measured, cues.Candidate{Time: t, Volume: &v})
	}
	return cues.SelectWithVolume(measured, opts.Params, *opts.MaxVolume), nil
}
