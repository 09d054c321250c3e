package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/five82/cuepoint/internal/segment"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

type fakeAnnotator struct {
	resp      *videointelligencepb.AnnotateVideoResponse
	err       error
	requests  []*videointelligencepb.AnnotateVideoRequest
	deadlines []time.Time
}

func (a *fakeAnnotator) Annotate(ctx context.Context, req *videointelligencepb.AnnotateVideoRequest) (*videointelligencepb.AnnotateVideoResponse, error) {
	a.requests = append(a.requests, req)
	deadline, _ := ctx.Deadline()
	a.deadlines = append(a.deadlines, deadline)
	return a.resp, a.err
}

func offset(seconds int64, nanos int32) *durationpb.Duration {
	return &durationpb.Duration{Seconds: seconds, Nanos: nanos}
}

func shotResponse(shots ...*videointelligencepb.VideoSegment) *videointelligencepb.AnnotateVideoResponse {
	return &videointelligencepb.AnnotateVideoResponse{
		AnnotationResults: []*videointelligencepb.VideoAnnotationResults{
			{InputUri: "/bucket/video.mp4", ShotAnnotations: shots},
		},
	}
}

func TestCloudDetectShotChanges(t *testing.T) {
	a := &fakeAnnotator{resp: shotResponse(
		&videointelligencepb.VideoSegment{StartTimeOffset: offset(15, 900_000_000), EndTimeOffset: offset(30, 100_000_000)},
		&videointelligencepb.VideoSegment{StartTimeOffset: offset(0, 0), EndTimeOffset: offset(15, 300_000_000)},
		&videointelligencepb.VideoSegment{StartTimeOffset: offset(30, 300_000_000), EndTimeOffset: offset(34, 500_000_000)},
	)}
	c := NewCloud(a, zerolog.Nop())

	got, err := c.DetectShotChanges(context.Background(), "gs://bucket/video.mp4", nil)
	if err != nil {
		t.Fatalf("DetectShotChanges() error = %v", err)
	}
	want := []segment.VideoSegment{
		{StartTime: 0, EndTime: 15.3},
		{StartTime: 15.9, EndTime: 30.1},
		{StartTime: 30.3, EndTime: 34.5},
	}
	if !approxSegments(got, want) {
		t.Errorf("DetectShotChanges() = %v, want %v", got, want)
	}

	wantReq := &videointelligencepb.AnnotateVideoRequest{
		InputUri: "gs://bucket/video.mp4",
		Features: []videointelligencepb.Feature{videointelligencepb.Feature_SHOT_CHANGE_DETECTION},
	}
	if len(a.requests) != 1 || !proto.Equal(a.requests[0], wantReq) {
		t.Errorf("requests = %v, want [%v]", a.requests, wantReq)
	}
}

func TestCloudDetectShotChanges_IgnoresVolumeThreshold(t *testing.T) {
	shot := &videointelligencepb.VideoSegment{StartTimeOffset: offset(0, 0), EndTimeOffset: offset(10, 0)}
	a := &fakeAnnotator{resp: shotResponse(shot)}
	c := NewCloud(a, zerolog.Nop())

	threshold := -30.0
	without, err := c.DetectShotChanges(context.Background(), "gs://bucket/a.mp4", nil)
	if err != nil {
		t.Fatalf("DetectShotChanges() error = %v", err)
	}
	with, err := c.DetectShotChanges(context.Background(), "gs://bucket/a.mp4", &threshold)
	if err != nil {
		t.Fatalf("DetectShotChanges() error = %v", err)
	}

	if !proto.Equal(a.requests[0], a.requests[1]) {
		t.Errorf("request with threshold %v differs from request without", a.requests[1])
	}
	if !approxSegments(without, with) {
		t.Errorf("segments with threshold = %v, want %v", with, without)
	}
}

func TestCloudDetectShotChanges_Timeout(t *testing.T) {
	a := &fakeAnnotator{resp: shotResponse(&videointelligencepb.VideoSegment{EndTimeOffset: offset(5, 0)})}

	before := time.Now()
	c := NewCloud(a, zerolog.Nop(), WithCloudTimeout(2*time.Minute))
	if _, err := c.DetectShotChanges(context.Background(), "gs://bucket/a.mp4", nil); err != nil {
		t.Fatalf("DetectShotChanges() error = %v", err)
	}

	deadline := a.deadlines[0]
	if deadline.IsZero() {
		t.Fatal("annotation context has no deadline")
	}
	if d := deadline.Sub(before); d < 2*time.Minute || d > 2*time.Minute+5*time.Second {
		t.Errorf("deadline %v after start, want about 2m", d)
	}

	if NewCloud(a, zerolog.Nop()).timeout != DefaultCloudTimeout {
		t.Errorf("default timeout = %v, want %v", NewCloud(a, zerolog.Nop()).timeout, DefaultCloudTimeout)
	}
}

func TestCloudDetectShotChanges_Errors(t *testing.T) {
	remoteErr := errors.New("rpc error: code = PermissionDenied")

	tests := []struct {
		name      string
		locator   string
		annotator *fakeAnnotator
		check     func(error) bool
	}{
		{
			name:      "local path",
			locator:   "/videos/a.mp4",
			annotator: &fakeAnnotator{},
			check:     cperrors.IsInput,
		},
		{
			name:      "remote error",
			locator:   "gs://bucket/a.mp4",
			annotator: &fakeAnnotator{err: remoteErr},
			check:     func(err error) bool { return cperrors.IsAnalysis(err) && errors.Is(err, remoteErr) },
		},
		{
			name:      "no results",
			locator:   "gs://bucket/a.mp4",
			annotator: &fakeAnnotator{resp: &videointelligencepb.AnnotateVideoResponse{}},
			check:     cperrors.IsAnalysis,
		},
		{
			name:    "result error",
			locator: "gs://bucket/a.mp4",
			annotator: &fakeAnnotator{resp: &videointelligencepb.AnnotateVideoResponse{
				AnnotationResults: []*videointelligencepb.VideoAnnotationResults{
					{Error: &status.Status{Code: 3, Message: "unsupported codec"}},
				},
			}},
			check: cperrors.IsAnalysis,
		},
		{
			name:      "no shots",
			locator:   "gs://bucket/a.mp4",
			annotator: &fakeAnnotator{resp: shotResponse()},
			check:     cperrors.IsAnalysis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCloud(tt.annotator, zerolog.Nop())
			segs, err := c.DetectShotChanges(context.Background(), tt.locator, nil)
			if err == nil {
				t.Fatalf("DetectShotChanges() = %v, want error", segs)
			}
			if !tt.check(err) {
				t.Errorf("DetectShotChanges() error = %v has wrong kind", err)
			}
		})
	}
}

func TestOffsetSeconds(t *testing.T) {
	if got := offsetSeconds(nil); got != 0 {
		t.Errorf("offsetSeconds(nil) = %v, want 0", got)
	}
	if got := offsetSeconds(offset(12, 500_000_000)); got != 12.5 {
		t.Errorf("offsetSeconds() = %v, want 12.5", got)
	}
}
