// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// AnalysisInfo describes one video before analysis starts.
type AnalysisInfo struct {
	Locator         string
	Backend         string
	FirstCue        float64
	BetweenCues     float64
	VolumeThreshold *float64
	MaxVolume       *float64
}

// CueResult contains the cue points chosen for one video.
type CueResult struct {
	Locator    string
	Segments   int
	Candidates int
	CuePoints  []float64
	Elapsed    time.Duration
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	Workers    int
	Hostname   string
}

// BatchProgress is emitted each time a file in a batch finishes.
type BatchProgress struct {
	Completed int
	Total     int
	File      string
	Failed    bool
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount int
	TotalFiles      int
	TotalDuration   time.Duration
	FileResults     []FileResult
}

// FileResult contains the per-file outcome of a batch.
type FileResult struct {
	Filename  string
	CuePoints []float64
	Error     string
}
