// Package cues derives ad insertion candidates from shot segments and reduces them
// to a spaced list of cue points.
package cues

import (
	"sort"

	"github.com/five82/cuepoint/internal/segment"
)

// Default selection constants.
const (
	// DefaultMinimumTimeForFirstCuePoint allows a pre-roll cue at 0.0.
	DefaultMinimumTimeForFirstCuePoint = 0.0

	// DefaultMinimumTimeBetweenCuePoints is the default spacing between accepted cues.
	DefaultMinimumTimeBetweenCuePoints = 30.0
)

// Params controls cue point selection. Values are passed explicitly on every call.
type Params struct {
	// MinimumTimeForFirstCuePoint is the earliest time, in seconds, a cue may occupy.
	MinimumTimeForFirstCuePoint float64
	// MinimumTimeBetweenCuePoints is the smallest gap, in seconds, between two cues.
	MinimumTimeBetweenCuePoints float64
}

// DefaultParams returns the default selection parameters.
func DefaultParams() Params {
	return Params{
		MinimumTimeForFirstCuePoint: DefaultMinimumTimeForFirstCuePoint,
		MinimumTimeBetweenCuePoints: DefaultMinimumTimeBetweenCuePoints,
	}
}

// Candidate is a possible cue point, optionally annotated with the audio volume
// measured around it.
type Candidate struct {
	Time   float64
	Volume *float64 // dB; nil when not measured
}

// Candidates turns N shot segments into N+1 candidate times: 0.0 for a pre-roll,
// the midpoint of every gap between adjacent segments, and the end of the last
// segment for a post-roll. The input is sorted by start time first; the result is
// ascending for any non-overlapping input.
func Candidates(segs []segment.VideoSegment) []float64 {
	sorted := make([]segment.VideoSegment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	candidates := make([]float64, 0, len(sorted)+1)
	candidates = append(candidates, 0.0)
	for i, s := range sorted {
		if i+1 < len(sorted) {
			candidates = append(candidates, s.Midpoint(sorted[i+1]))
		} else {
			candidates = append(candidates, s.EndTime)
		}
	}
	return candidates
}

// Select reduces candidates to cue points with a single ascending greedy pass.
// A candidate is accepted when it is not before the minimum first cue time and is at
// least the minimum spacing after the previously accepted cue. Earliest eligible wins.
func Select(candidates []float64, p Params) []float64 {
	sorted := make([]float64, len(candidates))
	copy(sorted, candidates)
	sort.Float64s(sorted)

	var cuePoints []float64
	for _, c := range sorted {
		if accept(cuePoints, c, p) {
			cuePoints = append(cuePoints, c)
		}
	}
	return cuePoints
}

// SelectWithVolume behaves like Select but first drops every candidate whose measured
// volume is louder than maximumVolume. Candidates without a measurement are kept.
func SelectWithVolume(candidates []Candidate, p Params, maximumVolume float64) []float64 {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	var cuePoints []float64
	for _, c := range sorted {
		if c.Volume != nil && *c.Volume > maximumVolume {
			continue
		}
		if accept(cuePoints, c.Time, p) {
			cuePoints = append(cuePoints, c.Time)
		}
	}
	return cuePoints
}

func accept(accepted []float64, t float64, p Params) bool {
	if t < p.MinimumTimeForFirstCuePoint {
		return false
	}
	if len(accepted) == 0 {
		return true
	}
	return t-p.MinimumTimeBetweenCuePoints >= accepted[len(accepted)-1]
}
