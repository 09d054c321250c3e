// Package discovery finds the videos a batch run analyses.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/cuepoint/internal/util"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// Options controls directory scanning.
type Options struct {
	// Recursive descends into subdirectories. Hidden directories are skipped.
	Recursive bool
}

// Result contains discovered files with metadata.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles lists the video files under dir, sorted case-insensitively by
// path. Hidden files are ignored. No matches is a NoFilesFound error.
func FindVideoFiles(dir string, opts Options, logger zerolog.Logger) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, cperrors.NewInputError(fmt.Sprintf("directory does not exist: %s", dir))
	}
	if !info.IsDir() {
		return nil, cperrors.NewInputError(fmt.Sprintf("%s is not a directory", dir))
	}

	result := &Result{}
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if hidden || !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		if d.Type().IsRegular() && util.HasVideoExtension(path) {
			result.Files = append(result.Files, path)
		} else {
			result.SkippedCount++
		}
		return nil
	})
	if walkErr != nil {
		return nil, cperrors.NewInputError(fmt.Sprintf("cannot read directory %s: %v", dir, walkErr))
	}

	if len(result.Files) == 0 {
		return nil, cperrors.NewNoFilesFoundError(dir)
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return strings.ToLower(result.Files[i]) < strings.ToLower(result.Files[j])
	})

	logDiscoveredFiles(result, logger)
	return result, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *Result, logger zerolog.Logger) {
	logger.Info().Int("files", len(result.Files)).Int("skipped", result.SkippedCount).Msg("found video files")

	for _, f := range result.Files[:min(5, len(result.Files))] {
		logger.Debug().Str("file", filepath.Base(f)).Msg("discovered")
	}
	if len(result.Files) > 5 {
		logger.Debug().Msgf("... and %d more", len(result.Files)-5)
	}
}
