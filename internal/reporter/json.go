package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONReporter outputs NDJSON events. Every event carries the run id so
// interleaved batch output can be correlated.
type JSONReporter struct {
	writer io.Writer
	runID  string
	mu     sync.Mutex
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer: w,
		runID:  uuid.NewString(),
	}
}

// RunID returns the identifier attached to every event.
func (r *JSONReporter) RunID() string {
	return r.runID
}

func (r *JSONReporter) write(eventType string, fields map[string]any) {
	fields["type"] = eventType
	fields["run_id"] = r.runID
	fields["timestamp"] = time.Now().Unix()

	data, err := json.Marshal(fields)
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) AnalysisStarted(info AnalysisInfo) {
	r.write("analysis_started", map[string]any{
		"locator":          info.Locator,
		"backend":          info.Backend,
		"first_cue":        info.FirstCue,
		"between_cues":     info.BetweenCues,
		"volume_threshold": info.VolumeThreshold,
		"max_volume":       info.MaxVolume,
	})
}

func (r *JSONReporter) CuePoints(result CueResult) {
	cues := result.CuePoints
	if cues == nil {
		cues = []float64{}
	}
	r.write("cue_points", map[string]any{
		"locator":         result.Locator,
		"segments":        result.Segments,
		"candidates":      result.Candidates,
		"cue_points":      cues,
		"elapsed_seconds": result.Elapsed.Seconds(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write("warning", map[string]any{
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write("error", map[string]any{
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write("batch_started", map[string]any{
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"workers":     info.Workers,
		"hostname":    info.Hostname,
	})
}

func (r *JSONReporter) BatchProgress(progress BatchProgress) {
	r.write("batch_progress", map[string]any{
		"completed":   progress.Completed,
		"total_files": progress.Total,
		"file":        progress.File,
		"failed":      progress.Failed,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]any, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		entry := map[string]any{"file": fr.Filename}
		if fr.Error != "" {
			entry["error"] = fr.Error
		} else {
			entry["cue_points"] = fr.CuePoints
		}
		results[i] = entry
	}

	r.write("batch_complete", map[string]any{
		"successful_count":       summary.SuccessfulCount,
		"total_files":            summary.TotalFiles,
		"total_duration_seconds": int64(summary.TotalDuration.Seconds()),
		"results":                results,
	})
}
