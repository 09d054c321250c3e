package processing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/five82/cuepoint/internal/analyzer"
	"github.com/five82/cuepoint/internal/cues"
	"github.com/five82/cuepoint/internal/segment"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

var testShots = []segment.VideoSegment{
	segment.New(0.0, 12.1),
	segment.New(12.3, 12.5),
	segment.New(12.7, 60.1),
	segment.New(60.3, 60.8),
	segment.New(65.3, 65.8),
}

func almostEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestDetermineCuePoints(t *testing.T) {
	tests := []struct {
		name   string
		params cues.Params
		want   []float64
	}{
		{"defaults", cues.DefaultParams(), []float64{0, 60.2}},
		{"first cue 10", cues.Params{MinimumTimeForFirstCuePoint: 10, MinimumTimeBetweenCuePoints: 30}, []float64{12.2, 60.2}},
		{"spacing 5", cues.Params{MinimumTimeBetweenCuePoints: 5}, []float64{0, 12.2, 60.2, 65.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := analyzer.NewFake(testShots)
			res, err := DetermineCuePoints(context.Background(), fake, "a.mp4", Options{Params: tt.params}, zerolog.Nop())
			if err != nil {
				t.Fatalf("DetermineCuePoints() error = %v", err)
			}
			if !almostEqual(res.CuePoints, tt.want) {
				t.Errorf("CuePoints = %v, want %v", res.CuePoints, tt.want)
			}
			if len(res.Candidates) != len(testShots)+1 {
				t.Errorf("len(Candidates) = %d, want %d", len(res.Candidates), len(testShots)+1)
			}
		})
	}
}

func TestDetermineCuePoints_PassesVolumeThreshold(t *testing.T) {
	fake := analyzer.NewFake(testShots)
	threshold := -28.0
	opts := DefaultOptions()
	opts.VolumeThreshold = &threshold

	if _, err := DetermineCuePoints(context.Background(), fake, "gs://b/a.mp4", opts, zerolog.Nop()); err != nil {
		t.Fatalf("DetermineCuePoints() error = %v", err)
	}
	calls := fake.Calls()
	if len(calls) != 1 || calls[0].Locator != "gs://b/a.mp4" || calls[0].VolumeThreshold == nil || *calls[0].VolumeThreshold != threshold {
		t.Errorf("Calls() = %+v", calls)
	}
}

func TestDetermineCuePoints_UnsortedSegments(t *testing.T) {
	shuffled := []segment.VideoSegment{testShots[3], testShots[0], testShots[4], testShots[2], testShots[1]}
	res, err := DetermineCuePoints(context.Background(), analyzer.NewFake(shuffled), "a.mp4", DefaultOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("DetermineCuePoints() error = %v", err)
	}
	if !almostEqual(res.CuePoints, []float64{0, 60.2}) {
		t.Errorf("CuePoints = %v, want [0 60.2]", res.CuePoints)
	}
}

func TestDetermineCuePoints_SingleSegment(t *testing.T) {
	fake := analyzer.NewFake([]segment.VideoSegment{segment.New(0, 100)})
	res, err := DetermineCuePoints(context.Background(), fake, "a.mp4", DefaultOptions(), zerolog.Nop())
	if err != nil {
		t.Fatalf("DetermineCuePoints() error = %v", err)
	}
	if !almostEqual(res.CuePoints, []float64{0, 100}) {
		t.Errorf("CuePoints = %v, want [0 100]", res.CuePoints)
	}
}

type failingAnalyzer struct{ err error }

func (f failingAnalyzer) DetectShotChanges(context.Context, string, *float64) ([]segment.VideoSegment, error) {
	return nil, f.err
}

func TestDetermineCuePoints_Errors(t *testing.T) {
	inputErr := cperrors.NewInputError("unsupported scheme")
	res, err := DetermineCuePoints(context.Background(), failingAnalyzer{err: inputErr}, "s3://a", DefaultOptions(), zerolog.Nop())
	if res != nil {
		t.Errorf("result = %v, want nil on failure", res)
	}
	if err != error(inputErr) {
		t.Errorf("error = %v, want analyzer error unmodified", err)
	}

	_, err = DetermineCuePoints(context.Background(), analyzer.NewFake([]segment.VideoSegment{}), "a.mp4", DefaultOptions(), zerolog.Nop())
	if !cperrors.IsAnalysis(err) {
		t.Errorf("empty segments error = %v, want analysis failure", err)
	}
}

// meteredFake adds volume measurement to the fake analyzer.
type meteredFake struct {
	*analyzer.Fake
	volumes map[float64]float64
	err     error
	calls   int
}

func (m *meteredFake) MeasureVolume(_ context.Context, _ string, at float64) (float64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	for t, v := range m.volumes {
		if math.Abs(t-at) < 1e-9 {
			return v, nil
		}
	}
	return -90, nil
}

func TestDetermineCuePoints_MaxVolume(t *testing.T) {
	m := &meteredFake{
		Fake: analyzer.NewFake(testShots),
		volumes: map[float64]float64{
			0.0:  -60,
			12.2: -10,
			12.6: -45,
			60.2: -5,
			65.8: -40,
		},
	}
	maxVolume := -30.0
	opts := Options{Params: cues.Params{MinimumTimeBetweenCuePoints: 5}, MaxVolume: &maxVolume}

	res, err := DetermineCuePoints(context.Background(), m, "a.mp4", opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("DetermineCuePoints() error = %v", err)
	}
	if !almostEqual(res.CuePoints, []float64{0, 12.6, 63.05}) {
		t.Errorf("CuePoints = %v, want [0 12.6 63.05]", res.CuePoints)
	}
	if m.calls != 6 {
		t.Errorf("MeasureVolume called %d times, want 6", m.calls)
	}
}

func TestDetermineCuePoints_MaxVolumeErrors(t *testing.T) {
	measureErr := errors.New("volumedetect failed")
	m := &meteredFake{Fake: analyzer.NewFake(testShots), err: measureErr}
	maxVolume := -30.0
	opts := DefaultOptions()
	opts.MaxVolume = &maxVolume

	res, err := DetermineCuePoints(context.Background(), m, "a.mp4", opts, zerolog.Nop())
	if res != nil || !errors.Is(err, measureErr) {
		t.Errorf("DetermineCuePoints() = %v, %v, want nil, %v", res, err, measureErr)
	}

	// Without a meter the limit is ignored.
	res, err = DetermineCuePoints(context.Background(), analyzer.NewFake(testShots), "a.mp4", opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("DetermineCuePoints() error = %v", err)
	}
	if !almostEqual(res.CuePoints, []float64{0, 60.2}) {
		t.Errorf("CuePoints = %v, want [0 60.2]", res.CuePoints)
	}
}
