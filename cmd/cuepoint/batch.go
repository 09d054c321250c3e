package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/cuepoint"
	"github.com/five82/cuepoint/internal/config"
	"github.com/five82/cuepoint/internal/util"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Print the cue points of every video in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := commandConfig(cmd)
		if err != nil {
			return err
		}
		recursive, err := cmd.Flags().GetBool("recursive")
		if err != nil {
			return err
		}

		files, err := cuepoint.FindVideos(args[0], recursive)
		if cperrors.IsNoFilesFound(err) && !recursive {
			return fmt.Errorf("%w (use --recursive to search subdirectories)", err)
		}
		if err != nil {
			return err
		}

		stdout := cmd.OutOrStdout()
		rep := newReporter(cfg, stdout)
		engine, err := newEngine(cfg, rep)
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()

		batch := engine.DetermineBatch(cmd.Context(), files)

		if cfg.Output != config.OutputJSON {
			if err := writeBatch(stdout, batch); err != nil {
				return err
			}
		}

		if failed := len(batch.Files) - batch.SuccessfulCount; failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(batch.Files))
		}
		return nil
	},
}

// writeBatch prints "<file>\t<cue>,<cue>,..." for every file that succeeded.
func writeBatch(w io.Writer, batch *cuepoint.BatchResult) error {
	for _, f := range batch.Files {
		if f.Err != nil {
			continue
		}
		cues := make([]string, len(f.Result.CuePoints))
		for i, c := range f.Result.CuePoints {
			cues[i] = util.FormatCuePoint(c)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", f.Locator, strings.Join(cues, ",")); err != nil {
			return err
		}
	}
	return nil
}
