package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/five82/cuepoint/internal/segment"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// DefaultCloudTimeout bounds how long DetectShotChanges waits for the remote
// annotation operation.
const DefaultCloudTimeout = 1000 * time.Second

// Annotator submits an annotation request and waits for its result.
type Annotator interface {
	Annotate(ctx context.Context, req *videointelligencepb.AnnotateVideoRequest) (*videointelligencepb.AnnotateVideoResponse, error)
}

// ClientAnnotator adapts a Video Intelligence client to Annotator.
type ClientAnnotator struct {
	client *videointelligence.Client
}

// NewClientAnnotator wraps client.
func NewClientAnnotator(client *videointelligence.Client) *ClientAnnotator {
	return &ClientAnnotator{client: client}
}

// Annotate starts the long-running annotation and blocks until it completes or ctx ends.
func (a *ClientAnnotator) Annotate(ctx context.Context, req *videointelligencepb.AnnotateVideoRequest) (*videointelligencepb.AnnotateVideoResponse, error) {
	op, err := a.client.AnnotateVideo(ctx, req)
	if err != nil {
		return nil, err
	}
	return op.Wait(ctx)
}

// Close closes the underlying client.
func (a *ClientAnnotator) Close() error {
	return a.client.Close()
}

// Cloud detects shot changes with the Video Intelligence API.
type Cloud struct {
	annotator Annotator
	timeout   time.Duration
	logger    zerolog.Logger
}

// CloudOption configures a Cloud analyzer.
type CloudOption func(*Cloud)

// WithCloudTimeout overrides DefaultCloudTimeout.
func WithCloudTimeout(d time.Duration) CloudOption {
	return func(c *Cloud) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCloud creates a Cloud analyzer using annotator.
func NewCloud(annotator Annotator, logger zerolog.Logger, opts ...CloudOption) *Cloud {
	c := &Cloud{
		annotator: annotator,
		timeout:   DefaultCloudTimeout,
		logger:    logger.With().Str("component", "cloud-analyzer").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewCloudFromEnv dials the Video Intelligence service using Application Default
// Credentials. The returned close function releases the client.
func NewCloudFromEnv(ctx context.Context, logger zerolog.Logger, opts ...CloudOption) (*Cloud, func() error, error) {
	client, err := videointelligence.NewClient(ctx)
	if err != nil {
		return nil, nil, cperrors.NewAnalysisError("failed to create video intelligence client", err)
	}
	annotator := NewClientAnnotator(client)
	return NewCloud(annotator, logger, opts...), annotator.Close, nil
}

// DetectShotChanges requests shot change detection for the gs:// URI in locator.
// volumeThreshold is ignored: the remote shot detector has no loudness input.
func (c *Cloud) DetectShotChanges(ctx context.Context, locator string, volumeThreshold *float64) ([]segment.VideoSegment, error) {
	if !IsCloudLocator(locator) {
		return nil, cperrors.NewInputError(fmt.Sprintf("cloud analysis requires a %s URI, got %q", CloudScheme, locator))
	}
	if volumeThreshold != nil {
		c.logger.Debug().Float64("volume_threshold", *volumeThreshold).Msg("volume threshold ignored by cloud analysis")
	}

	req := shotChangeRequest(locator)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Info().Str("uri", locator).Dur("timeout", c.timeout).Msg("requesting shot change detection")
	resp, err := c.annotator.Annotate(ctx, req)
	if err != nil {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("shot change detection failed for %s", locator), err)
	}

	results := resp.GetAnnotationResults()
	if len(results) == 0 {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("no annotation results for %s", locator), nil)
	}
	if e := results[0].GetError(); e != nil {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("remote processing failed for %s: %s", locator, e.GetMessage()), nil)
	}

	shots := results[0].GetShotAnnotations()
	if len(shots) == 0 {
		return nil, cperrors.NewAnalysisError(fmt.Sprintf("no shots reported for %s", locator), nil)
	}

	segs := lo.Map(shots, func(shot *videointelligencepb.VideoSegment, _ int) segment.VideoSegment {
		return segment.New(offsetSeconds(shot.GetStartTimeOffset()), offsetSeconds(shot.GetEndTimeOffset()))
	})
	sort.SliceStable(segs, func(i, j int) bool {
		return segs[i].StartTime < segs[j].StartTime
	})

	c.logger.Info().Int("shots", len(segs)).Msg("shot change detection complete")
	return segs, nil
}

func shotChangeRequest(uri string) *videointelligencepb.AnnotateVideoRequest {
	return &videointelligencepb.AnnotateVideoRequest{
		InputUri: uri,
		Features: []videointelligencepb.Feature{videointelligencepb.Feature_SHOT_CHANGE_DETECTION},
	}
}

// offsetSeconds converts a protobuf duration to fractional seconds.
func offsetSeconds(d *durationpb.Duration) float64 {
	return float64(d.GetSeconds()) + float64(d.GetNanos())/1e9
}
