package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/cuepoint/internal/reporter"
	"github.com/five82/cuepoint/internal/util"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// RunFunc determines the cue points of one video.
type RunFunc func(ctx context.Context, locator string) (*Result, error)

// FileOutcome is the per-file result of a batch. Exactly one of Result and Err
// is set.
type FileOutcome struct {
	Locator string
	Result  *Result
	Err     error
}

// BatchResult contains the outcome of every file, in input order.
type BatchResult struct {
	Files           []FileOutcome
	SuccessfulCount int
	Duration        time.Duration
}

// ProcessVideos runs run for every file with at most workers in flight. A failed
// file is reported and recorded without stopping the others. Cancelling ctx
// stops new files from starting; files never started are recorded as cancelled.
func ProcessVideos(ctx context.Context, files []string, workers int, run RunFunc, rep reporter.Reporter, logger zerolog.Logger) *BatchResult {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	workers = max(workers, 1)
	start := time.Now()

	sys := util.GetSystemInfo()
	logger.Debug().Str("host", sys.Hostname).Int("cpus", sys.NumCPU).Str("os", sys.OS).Str("arch", sys.Arch).Msg("batch host")
	rep.BatchStarted(reporter.BatchStartInfo{
		TotalFiles: len(files),
		FileList:   files,
		Workers:    workers,
		Hostname:   sys.Hostname,
	})

	outcomes := make([]FileOutcome, len(files))
	var (
		mu        sync.Mutex
		completed int
	)

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, file := range files {
		outcomes[i] = FileOutcome{Locator: file, Err: cperrors.NewCancelledError()}
		if ctx.Err() != nil {
			continue
		}

		i, file := i, file
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fileLogger := logger.With().Str("file", file).Logger()
			fileLogger.Info().Msg("analysing")

			res, err := run(ctx, file)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if err != nil {
				outcomes[i] = FileOutcome{Locator: file, Err: err}
				fileLogger.Error().Err(err).Msg("cue point detection failed")
				rep.Error(reporter.ReporterError{
					Title:      "Analysis failed",
					Message:    err.Error(),
					Context:    fmt.Sprintf("File: %s", file),
					Suggestion: suggestionFor(err),
				})
			} else {
				outcomes[i] = FileOutcome{Locator: file, Result: res}
				fileLogger.Info().Int("cue_points", len(res.CuePoints)).Msg("done")
			}
			rep.BatchProgress(reporter.BatchProgress{
				Completed: completed,
				Total:     len(files),
				File:      file,
				Failed:    err != nil,
			})
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		rep.Warning(fmt.Sprintf("Batch cancelled: %v", ctx.Err()))
	}

	batch := &BatchResult{Files: outcomes, Duration: time.Since(start)}
	summary := reporter.BatchSummary{
		TotalFiles:    len(files),
		TotalDuration: batch.Duration,
	}
	for _, o := range outcomes {
		fr := reporter.FileResult{Filename: o.Locator}
		if o.Err != nil {
			fr.Error = o.Err.Error()
		} else {
			fr.CuePoints = o.Result.CuePoints
			batch.SuccessfulCount++
		}
		summary.FileResults = append(summary.FileResults, fr)
	}
	summary.SuccessfulCount = batch.SuccessfulCount
	rep.BatchComplete(summary)

	return batch
}

func suggestionFor(err error) string {
	var cmdErr *cperrors.CommandError
	switch {
	case cperrors.IsCancelled(err):
		return "Re-run the batch to analyse the remaining files"
	case cperrors.IsInput(err):
		return "Check the path or URI; cloud analysis needs gs://, local analysis needs a progressive file"
	case errors.As(err, &cmdErr) && !cmdErr.Started():
		return fmt.Sprintf("Check that %s is installed and on PATH", cmdErr.Command)
	case cmdErr != nil:
		return fmt.Sprintf("Check that %s can read the file", cmdErr.Command)
	case cperrors.IsAnalysis(err):
		return "Check that the file is a valid video with a video stream"
	default:
		return ""
	}
}
