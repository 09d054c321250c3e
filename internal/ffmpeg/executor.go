package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// stderrTailLines bounds how much of ffmpeg's log is carried in command errors.
const stderrTailLines = 20

// Runner executes ffmpeg with the given arguments and returns its diagnostic output.
type Runner interface {
	Run(ctx context.Context, args []string) (string, error)
}

// Executor runs the ffmpeg binary.
type Executor struct {
	binary string
	logger zerolog.Logger
}

// NewExecutor creates an Executor. An empty binary means "ffmpeg" on PATH.
func NewExecutor(binary string, logger zerolog.Logger) *Executor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Executor{
		binary: binary,
		logger: logger.With().Str("component", "ffmpeg").Logger(),
	}
}

// Run executes ffmpeg to completion and returns everything it wrote to stderr,
// which is where filters such as showinfo and silencedetect report.
func (e *Executor) Run(ctx context.Context, args []string) (string, error) {
	e.logger.Debug().
		Str("cmd", e.binary).
		Strs("args", args).
		Msg("executing ffmpeg")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stderr.String()
	if err != nil {
		if ctx.Err() != nil {
			return output, fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return output, cperrors.WrapExecError(e.binary, err, tail(output, stderrTailLines))
	}

	e.logger.Debug().Int("stderr_bytes", len(output)).Msg("ffmpeg execution completed")
	return output, nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
