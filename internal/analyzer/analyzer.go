// Package analyzer provides the video analysis backends that report shot boundaries.
//
// Every backend implements VideoAnalyzer. A successful call returns segments that are
// ascending, non-overlapping and never empty: media with no detected cuts yields one
// segment spanning the whole duration.
package analyzer

import (
	"context"
	"strings"

	"github.com/five82/cuepoint/internal/segment"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// CloudScheme is the locator prefix that selects the cloud backend.
const CloudScheme = "gs://"

// VideoAnalyzer detects shot changes in the video at locator.
//
// volumeThreshold, in dB, restricts cuts to spans quieter than the threshold. Nil
// means no restriction. Backends without loudness input ignore it.
type VideoAnalyzer interface {
	DetectShotChanges(ctx context.Context, locator string, volumeThreshold *float64) ([]segment.VideoSegment, error)
}

// VolumeMeter is implemented by analyzers that can measure audio volume at a point
// in the media.
type VolumeMeter interface {
	// MeasureVolume returns the peak volume, in dB, around at seconds.
	MeasureVolume(ctx context.Context, locator string, at float64) (float64, error)
}

// IsCloudLocator reports whether locator addresses cloud storage.
func IsCloudLocator(locator string) bool {
	return strings.HasPrefix(locator, CloudScheme)
}

// Factory builds analyzers on demand so cloud credentials are only required when a
// cloud locator is analysed.
type Factory struct {
	Cloud func(ctx context.Context) (VideoAnalyzer, error)
	Local func(ctx context.Context) (VideoAnalyzer, error)
}

// ForLocator returns the cloud analyzer for gs:// locators and the local analyzer
// for everything else.
func (f Factory) ForLocator(ctx context.Context, locator string) (VideoAnalyzer, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, cperrors.NewInputError("video locator is empty")
	}
	if IsCloudLocator(locator) {
		if f.Cloud == nil {
			return nil, cperrors.NewInputError("no cloud analyzer configured for " + locator)
		}
		return f.Cloud(ctx)
	}
	if f.Local == nil {
		return nil, cperrors.NewInputError("no local analyzer configured for " + locator)
	}
	return f.Local(ctx)
}
