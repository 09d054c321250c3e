// Package main provides the CLI entry point for cuepoint.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/five82/cuepoint"
	"github.com/five82/cuepoint/internal/config"
	"github.com/five82/cuepoint/internal/logging"
	"github.com/five82/cuepoint/internal/reporter"
	"github.com/five82/cuepoint/internal/util"
)

const (
	appName    = "cuepoint"
	appVersion = "0.1.0"
)

var (
	cfgFile string
	verbose bool
	logDir  string
	runLog  *logging.RunLog
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = runLog.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Find ad insertion points at shot changes",
	Long:          "cuepoint detects shot changes in a video, optionally only during silence, and picks spaced cue points for ad insertion.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		runLog, err = logging.OpenRunLog(logDir)
		if err != nil {
			return err
		}
		logging.Init(verbose, runLog.Writer())
		if path := runLog.FilePath(); path != "" {
			log.Debug().Str("path", path).Msg("writing run log")
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cuepoint.yaml or ~/.cuepoint/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "write a run log to this directory")

	addSelectionFlags(cuesCmd.Flags())
	cuesCmd.Flags().Bool("json", false, "print NDJSON events instead of one cue point per line")

	addSelectionFlags(batchCmd.Flags())
	batchCmd.Flags().Bool("json", false, "print NDJSON events instead of per-file lines")
	batchCmd.Flags().IntP("workers", "w", 0, "videos analysed at once (default from config)")
	batchCmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(cuesCmd, batchCmd, configCmd, versionCmd)
}

func addSelectionFlags(fs *pflag.FlagSet) {
	fs.Float64P("first_cue", "f", config.DefaultFirstCue, "earliest cue point, in seconds")
	fs.Float64P("between_cues", "b", config.DefaultBetweenCues, "minimum seconds between cue points")
	fs.Float64P("volume_threshold", "v", 0, "only cut during silence below this many dB (ignored for gs:// URIs)")
	fs.Float64P("max_volume", "m", 0, "drop cue points louder than this many dB (local analysis only)")
}

// applyFlags overrides cfg with every flag the user set explicitly.
func applyFlags(cfg *config.Config, fs *pflag.FlagSet) error {
	var err error
	if fs.Changed("first_cue") {
		cfg.FirstCue, err = fs.GetFloat64("first_cue")
		if err != nil {
			return err
		}
	}
	if fs.Changed("between_cues") {
		cfg.BetweenCues, err = fs.GetFloat64("between_cues")
		if err != nil {
			return err
		}
	}
	if fs.Changed("volume_threshold") {
		v, err := fs.GetFloat64("volume_threshold")
		if err != nil {
			return err
		}
		cfg.VolumeThreshold = lo.ToPtr(v)
	}
	if fs.Changed("max_volume") {
		v, err := fs.GetFloat64("max_volume")
		if err != nil {
			return err
		}
		cfg.MaxVolume = lo.ToPtr(v)
	}
	if fs.Lookup("workers") != nil && fs.Changed("workers") {
		cfg.Workers, err = fs.GetInt("workers")
		if err != nil {
			return err
		}
	}
	if fs.Lookup("json") != nil && fs.Changed("json") {
		asJSON, err := fs.GetBool("json")
		if err != nil {
			return err
		}
		if asJSON {
			cfg.Output = config.OutputJSON
		} else {
			cfg.Output = config.OutputText
		}
	}
	return cfg.Validate()
}

// commandConfig returns a copy of the loaded config with flag overrides applied.
func commandConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := *config.FromContext(cmd.Context())
	if err := applyFlags(&cfg, cmd.Flags()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newReporter picks the terminal or JSON reporter and, when a run log is open,
// mirrors every event into it.
func newReporter(cfg *config.Config, stdout io.Writer) reporter.Reporter {
	var primary reporter.Reporter = reporter.NewTerminalReporter()
	if cfg.Output == config.OutputJSON {
		jr := reporter.NewJSONReporterWithWriter(stdout)
		log.Debug().Str("run_id", jr.RunID()).Msg("emitting NDJSON events")
		primary = jr
	}
	if runLog == nil {
		return primary
	}
	fileLogger := zerolog.New(runLog.Writer()).With().Timestamp().Logger()
	return reporter.NewCompositeReporter(primary, reporter.NewLogReporter(fileLogger))
}

func newEngine(cfg *config.Config, rep reporter.Reporter) (*cuepoint.Engine, error) {
	return cuepoint.New(
		cuepoint.WithConfig(cfg),
		cuepoint.WithLogger(logging.WithComponent("engine")),
		cuepoint.WithReporter(rep),
	)
}

func reportError(rep reporter.Reporter, locator string, err error) {
	rep.Error(reporter.ReporterError{
		Title:   "Analysis failed",
		Message: err.Error(),
		Context: fmt.Sprintf("File: %s", locator),
	})
}

// writeCues prints one cue point per line.
func writeCues(w io.Writer, cues []float64) error {
	for _, c := range cues {
		if _, err := fmt.Fprintln(w, util.FormatCuePoint(c)); err != nil {
			return err
		}
	}
	return nil
}

var cuesCmd = &cobra.Command{
	Use:   "cues <video>",
	Short: "Print the cue points of one video",
	Long:  "Print the cue points of a local file, a URL ffmpeg can read, or a gs:// URI analysed in the cloud.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := commandConfig(cmd)
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

		res, err := engine.Determine(cmd.Context(), args[0])
		if err != nil {
			reportError(rep, args[0], err)
			return err
		}

		if cfg.Output == config.OutputJSON {
			return nil
		}
		return writeCues(stdout, res.CuePoints)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(config.FromContext(cmd.Context()))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFileName
		if len(args) == 1 {
			path = args[0]
		}
		if util.FileExists(path) {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.NewConfig().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("wrote default configuration")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
	},
}
