// Package segment defines the shot segment produced by video analysis.
package segment

import "fmt"

// VideoSegment is one continuous shot, in seconds from the start of the media.
type VideoSegment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// New creates a VideoSegment.
func New(start, end float64) VideoSegment {
	return VideoSegment{StartTime: start, EndTime: end}
}

// Duration returns the length of the segment in seconds.
func (s VideoSegment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// Midpoint returns the instant halfway between the end of s and the start of next.
func (s VideoSegment) Midpoint(next VideoSegment) float64 {
	return s.EndTime + (next.StartTime-s.EndTime)/2
}

func (s VideoSegment) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", s.StartTime, s.EndTime)
}

// Validate checks that segs is non-empty, ascending by start time and non-overlapping,
// and that every segment has a non-negative start before its end.
func Validate(segs []VideoSegment) error {
	if len(segs) == 0 {
		return fmt.Errorf("segment list is empty")
	}
	for i, s := range segs {
		if s.StartTime < 0 {
			return fmt.Errorf("segment %d starts before zero: %s", i, s)
		}
		if s.EndTime <= s.StartTime {
			return fmt.Errorf("segment %d ends before it starts: %s", i, s)
		}
		if i > 0 && s.StartTime < segs[i-1].EndTime {
			return fmt.Errorf("segment %d %s overlaps segment %d %s", i, s, i-1, segs[i-1])
		}
	}
	return nil
}
