// Package config provides configuration types and defaults for cuepoint.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/five82/cuepoint/internal/util"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// Default constants
const (
	// DefaultFirstCue is the earliest offset, in seconds, a cue point may sit at.
	DefaultFirstCue = 0.0

	// DefaultBetweenCues is the minimum spacing, in seconds, between cue points.
	DefaultBetweenCues = 30.0

	// DefaultSceneThreshold is the ffmpeg scene score above which a frame is a cut.
	DefaultSceneThreshold = 0.3

	// DefaultSilenceDuration is the shortest silence, in seconds, silencedetect reports.
	DefaultSilenceDuration = 0.25

	// DefaultVolumeWindow is the span, in seconds, measured around a candidate
	// when max_volume is set.
	DefaultVolumeWindow = 0.5

	// DefaultCloudTimeout bounds one remote annotation.
	DefaultCloudTimeout = 1000 * time.Second

	// DefaultFFmpegPath is the ffmpeg binary looked up on PATH.
	DefaultFFmpegPath = "ffmpeg"

	// DefaultFFprobePath is the ffprobe binary looked up on PATH.
	DefaultFFprobePath = "ffprobe"

	// MaxWorkers caps batch concurrency; each worker decodes a full video.
	MaxWorkers = 32

	// ConfigFileName is looked up in the working directory.
	ConfigFileName = "cuepoint.yaml"
)

type contextKey string

const configKey contextKey = "config"

// OutputFormat selects how cue points are written.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat parses a string into an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: text, json", ErrInvalidOutput, s)
	}
}

// Config holds all configuration for cue point detection.
type Config struct {
	// Selection
	FirstCue    float64 `yaml:"first_cue"`
	BetweenCues float64 `yaml:"between_cues"`

	// Loudness. VolumeThreshold restricts cuts to quieter spans; MaxVolume rejects
	// loud cue points. Nil disables either.
	VolumeThreshold *float64 `yaml:"volume_threshold"`
	MaxVolume       *float64 `yaml:"max_volume"`

	// Local analysis
	SceneThreshold  float64 `yaml:"scene_threshold"`
	SilenceDuration float64 `yaml:"silence_duration"`
	VolumeWindow    float64 `yaml:"volume_window"`
	FFmpegPath      string  `yaml:"ffmpeg_path"`
	FFprobePath     string  `yaml:"ffprobe_path"`

	// Cloud analysis
	CloudTimeout time.Duration `yaml:"cloud_timeout"`

	// Batch and output
	Workers int          `yaml:"workers"`
	Output  OutputFormat `yaml:"output"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		FirstCue:        DefaultFirstCue,
		BetweenCues:     DefaultBetweenCues,
		SceneThreshold:  DefaultSceneThreshold,
		SilenceDuration: DefaultSilenceDuration,
		VolumeWindow:    DefaultVolumeWindow,
		FFmpegPath:      DefaultFFmpegPath,
		FFprobePath:     DefaultFFprobePath,
		CloudTimeout:    DefaultCloudTimeout,
		Workers:         min(util.SuggestedWorkers(), MaxWorkers),
		Output:          OutputText,
	}
}

// Load reads the configuration file at path over the defaults. An empty path
// searches the default locations; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, cperrors.NewConfigError(fmt.Sprintf("failed to read %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, cperrors.NewConfigError(fmt.Sprintf("failed to parse %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, cperrors.NewConfigError(path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func findConfigFile() string {
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".cuepoint", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FirstCue < 0 {
		return fmt.Errorf("%w: first_cue must be >= 0, got %v", ErrInvalidSpacing, c.FirstCue)
	}

	if c.BetweenCues < 0 {
		return fmt.Errorf("%w: between_cues must be >= 0, got %v", ErrInvalidSpacing, c.BetweenCues)
	}

	if c.SceneThreshold <= 0 || c.SceneThreshold >= 1 {
		return fmt.Errorf("%w: scene_threshold must be between 0 and 1, got %v", ErrInvalidAnalysis, c.SceneThreshold)
	}

	if c.SilenceDuration <= 0 {
		return fmt.Errorf("%w: silence_duration must be > 0, got %v", ErrInvalidAnalysis, c.SilenceDuration)
	}

	if c.VolumeWindow <= 0 {
		return fmt.Errorf("%w: volume_window must be > 0, got %v", ErrInvalidAnalysis, c.VolumeWindow)
	}

	if c.CloudTimeout <= 0 {
		return fmt.Errorf("%w: cloud_timeout must be > 0, got %v", ErrInvalidAnalysis, c.CloudTimeout)
	}

	if c.Workers < 1 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: must be 1-%d, got %d", ErrInvalidWorkers, MaxWorkers, c.Workers)
	}

	if _, err := ParseOutputFormat(string(c.Output)); err != nil {
		return err
	}

	return nil
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves the config stored by WithConfig, or the defaults.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
