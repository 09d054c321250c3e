package reporter

import (
	"github.com/rs/zerolog"
)

// LogReporter records events as structured log lines, for run logs that should
// keep what the terminal showed.
type LogReporter struct {
	logger zerolog.Logger
}

// NewLogReporter creates a reporter that writes every event to logger.
func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With().Str("component", "reporter").Logger()}
}

func (r *LogReporter) AnalysisStarted(info AnalysisInfo) {
	ev := r.logger.Info().
		Str("locator", info.Locator).
		Str("backend", info.Backend).
		Float64("first_cue", info.FirstCue).
		Float64("between_cues", info.BetweenCues)
	if info.VolumeThreshold != nil {
		ev = ev.Float64("volume_threshold", *info.VolumeThreshold)
	}
	if info.MaxVolume != nil {
		ev = ev.Float64("max_volume", *info.MaxVolume)
	}
	ev.Msg("analysis started")
}

func (r *LogReporter) CuePoints(result CueResult) {
	r.logger.Info().
		Str("locator", result.Locator).
		Int("segments", result.Segments).
		Int("candidates", result.Candidates).
		Floats64("cue_points", result.CuePoints).
		Dur("elapsed", result.Elapsed).
		Msg("cue points selected")
}

func (r *LogReporter) Warning(message string) {
	r.logger.Warn().Msg(message)
}

func (r *LogReporter) Error(err ReporterError) {
	r.logger.Error().
		Str("title", err.Title).
		Str("context", err.Context).
		Str("suggestion", err.Suggestion).
		Msg(err.Message)
}

func (r *LogReporter) BatchStarted(info BatchStartInfo) {
	r.logger.Info().
		Int("total_files", info.TotalFiles).
		Int("workers", info.Workers).
		Str("hostname", info.Hostname).
		Msg("batch started")
}

func (r *LogReporter) BatchProgress(progress BatchProgress) {
	r.logger.Debug().
		Int("completed", progress.Completed).
		Int("total_files", progress.Total).
		Str("file", progress.File).
		Bool("failed", progress.Failed).
		Msg("batch progress")
}

func (r *LogReporter) BatchComplete(summary BatchSummary) {
	r.logger.Info().
		Int("successful", summary.SuccessfulCount).
		Int("total_files", summary.TotalFiles).
		Dur("duration", summary.TotalDuration).
		Msg("batch complete")
}
