package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/cuepoint/internal/util"
)

// TerminalReporter outputs human-friendly text. It writes to stderr so stdout
// carries only cue points.
type TerminalReporter struct {
	mu       sync.Mutex
	w        io.Writer
	progress *progressbar.ProgressBar
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	magenta  *color.Color
	bold     *color.Color
}

// NewTerminalReporter creates a new terminal reporter writing to stderr.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterWithWriter(os.Stderr)
}

// NewTerminalReporterWithWriter creates a terminal reporter with a custom writer.
func NewTerminalReporterWithWriter(w io.Writer) *TerminalReporter {
	return &TerminalReporter{
		w:       w,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

// printLabel pads label to width before colouring it, since escape codes would
// otherwise count towards the padding.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.w, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) AnalysisStarted(info AnalysisInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		return
	}

	_, _ = fmt.Fprintln(r.w)
	_, _ = r.cyan.Fprintln(r.w, "VIDEO")
	r.printLabel(9, "File:", info.Locator)
	r.printLabel(9, "Backend:", info.Backend)
	r.printLabel(9, "First:", util.FormatTimestamp(info.FirstCue))
	r.printLabel(9, "Spacing:", fmt.Sprintf("%ss", util.FormatCuePoint(info.BetweenCues)))
	if info.VolumeThreshold != nil {
		r.printLabel(9, "Silence:", fmt.Sprintf("below %.1f dB", *info.VolumeThreshold))
	}
	if info.MaxVolume != nil {
		r.printLabel(9, "Max vol:", fmt.Sprintf("%.1f dB", *info.MaxVolume))
	}
}

func (r *TerminalReporter) CuePoints(result CueResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		return
	}

	_, _ = fmt.Fprintln(r.w)
	_, _ = r.cyan.Fprintln(r.w, "CUE POINTS")
	_, _ = fmt.Fprintf(r.w, "  %d shots, %d candidates, %s selected in %s\n",
		result.Segments, result.Candidates,
		r.bold.Sprint(len(result.CuePoints)), util.FormatElapsed(result.Elapsed))
	for _, cue := range result.CuePoints {
		_, _ = fmt.Fprintf(r.w, "  %s %s\n", r.magenta.Sprint("›"), util.FormatTimestamp(cue))
	}
}

func (r *TerminalReporter) Warning(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.w)
	_, _ = r.yellow.Fprintf(r.w, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.w)
	_, _ = r.red.Fprintf(r.w, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.w, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.w, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.w, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintln(r.w)
	_, _ = r.cyan.Fprintln(r.w, "BATCH")
	_, _ = fmt.Fprintf(r.w, "  Analysing %d files with %d workers\n", info.TotalFiles, info.Workers)
	if info.Hostname != "" {
		_, _ = fmt.Fprintf(r.w, "  Host: %s\n", info.Hostname)
	}
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.w, "  %d. %s\n", i+1, filepath.Base(name))
	}

	r.progress = progressbar.NewOptions(
		info.TotalFiles,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Analysing [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) BatchProgress(progress BatchProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}
	desc := filepath.Base(progress.File)
	if progress.Failed {
		desc = r.red.Sprint("failed ") + desc
	}
	r.progress.Describe(desc)
	_ = r.progress.Set(progress.Completed)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}

	_, _ = fmt.Fprintln(r.w)
	_, _ = r.cyan.Fprintln(r.w, "BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.w, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	_, _ = fmt.Fprintf(r.w, "  Time: %s\n", util.FormatElapsed(summary.TotalDuration))

	for _, result := range summary.FileResults {
		name := filepath.Base(result.Filename)
		if result.Error != "" {
			_, _ = fmt.Fprintf(r.w, "  %s %s: %s\n", r.red.Sprint("✗"), name, result.Error)
			continue
		}
		cues := make([]string, len(result.CuePoints))
		for i, c := range result.CuePoints {
			cues[i] = util.FormatCuePoint(c)
		}
		_, _ = fmt.Fprintf(r.w, "  %s %s: %s\n", r.green.Sprint("✓"), name, strings.Join(cues, ", "))
	}
}
