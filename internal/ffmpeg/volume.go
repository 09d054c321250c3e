package ffmpeg

import (
	"context"
	"fmt"
)

// DefaultVolumeWindow is the span, in seconds, centred on a timestamp that
// MeasureVolumeAt analyses.
const DefaultVolumeWindow = 0.5

// MeasureVolumeAt runs volumedetect over window seconds centred on at.
func MeasureVolumeAt(ctx context.Context, r Runner, input string, at, window float64) (VolumeStats, error) {
	if window <= 0 {
		window = DefaultVolumeWindow
	}
	output, err := r.Run(ctx, BuildVolumeArgs(input, at-window/2, window))
	if err != nil {
		return VolumeStats{}, fmt.Errorf("volume measurement at %.3fs failed: %w", at, err)
	}
	return ParseVolumeDetect(output)
}
