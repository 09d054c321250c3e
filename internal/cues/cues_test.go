package cues

import (
	"math"
	"math/rand"
	"testing"

	"github.com/five82/cuepoint/internal/segment"
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

func ptr(v float64) *float64 { return &v }

func TestCandidates(t *testing.T) {
	got := Candidates(testShots)
	want := []float64{0.0, 12.2, 12.6, 60.2, 63.05, 65.8}
	if !almostEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}
}

func TestCandidatesSortsSegments(t *testing.T) {
	shuffled := []segment.VideoSegment{testShots[3], testShots[0], testShots[4], testShots[2], testShots[1]}
	got := Candidates(shuffled)
	want := Candidates(testShots)
	if !almostEqual(got, want) {
		t.Errorf("Candidates(shuffled) = %v, want %v", got, want)
	}
}

func TestCandidatesSingleSegment(t *testing.T) {
	got := Candidates([]segment.VideoSegment{segment.New(0, 100)})
	want := []float64{0.0, 100.0}
	if !almostEqual(got, want) {
		t.Errorf("Candidates() = %v, want %v", got, want)
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   []float64
	}{
		{
			name:   "defaults",
			params: DefaultParams(),
			want:   []float64{0.0, 60.2},
		},
		{
			name:   "first cue at 10s",
			params: Params{MinimumTimeForFirstCuePoint: 10.0, MinimumTimeBetweenCuePoints: 30.0},
			want:   []float64{12.2, 60.2},
		},
		{
			name:   "5s between cues",
			params: Params{MinimumTimeForFirstCuePoint: 0.0, MinimumTimeBetweenCuePoints: 5.0},
			want:   []float64{0.0, 12.2, 60.2, 65.8},
		},
		{
			name:   "first cue after the end",
			params: Params{MinimumTimeForFirstCuePoint: 100.0, MinimumTimeBetweenCuePoints: 30.0},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(Candidates(testShots), tt.params)
			if !almostEqual(got, tt.want) {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectRejectsDuplicates(t *testing.T) {
	got := Select([]float64{30, 0, 0, 30, 30.5}, Params{MinimumTimeBetweenCuePoints: 1})
	want := []float64{0, 30}
	if !almostEqual(got, want) {
		t.Errorf("Select() = %v, want %v", got, want)
	}
}

func TestSelectProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		// Random ascending, non-overlapping segments.
		n := 1 + rng.Intn(40)
		segs := make([]segment.VideoSegment, 0, n)
		cursor := 0.0
		for i := 0; i < n; i++ {
			start := cursor + rng.Float64()*0.5
			end := start + 0.1 + rng.Float64()*40
			segs = append(segs, segment.New(start, end))
			cursor = end
		}
		params := Params{
			MinimumTimeForFirstCuePoint: rng.Float64() * 60,
			MinimumTimeBetweenCuePoints: rng.Float64() * 90,
		}

		candidates := Candidates(segs)
		if len(candidates) != n+1 {
			t.Fatalf("len(Candidates()) = %d, want %d", len(candidates), n+1)
		}
		for i := 1; i < len(candidates); i++ {
			if candidates[i] < candidates[i-1] {
				t.Fatalf("candidates not ascending at %d: %v", i, candidates)
			}
		}

		got := Select(candidates, params)
		for i, c := range got {
			if c < params.MinimumTimeForFirstCuePoint {
				t.Fatalf("cue %v precedes first cue minimum %v", c, params.MinimumTimeForFirstCuePoint)
			}
			if i > 0 && c-got[i-1] < params.MinimumTimeBetweenCuePoints-1e-9 {
				t.Fatalf("cues %v and %v closer than %v", got[i-1], c, params.MinimumTimeBetweenCuePoints)
			}
		}

		again := Select(got, params)
		if !almostEqual(again, got) {
			t.Fatalf("Select() not idempotent: %v then %v", got, again)
		}
	}
}

func TestSelectWithVolume(t *testing.T) {
	candidates := []Candidate{
		{Time: 0.0, Volume: ptr(-60)},
		{Time: 12.2, Volume: ptr(-10)},
		{Time: 12.6, Volume: ptr(-45)},
		{Time: 60.2, Volume: ptr(-5)},
		{Time: 63.05},
		{Time: 65.8, Volume: ptr(-40)},
	}
	params := Params{MinimumTimeBetweenCuePoints: 5.0}

	got := SelectWithVolume(candidates, params, -30)
	want := []float64{0.0, 12.6, 63.05}
	if !almostEqual(got, want) {
		t.Errorf("SelectWithVolume() = %v, want %v", got, want)
	}

	// With a permissive maximum the result matches plain selection.
	loose := SelectWithVolume(candidates, params, 0)
	plain := Select([]float64{0.0, 12.2, 12.6, 60.2, 63.05, 65.8}, params)
	if !almostEqual(loose, plain) {
		t.Errorf("SelectWithVolume(max=0) = %v, want %v", loose, plain)
	}
}
