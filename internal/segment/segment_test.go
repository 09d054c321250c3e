package segment

import (
	"math"
	"testing"
)

func TestDurationAndMidpoint(t *testing.T) {
	a := New(0.0, 12.1)
	b := New(12.3, 12.5)

	if got := a.Duration(); got != 12.1 {
		t.Errorf("Duration() = %v, want 12.1", got)
	}
	if got := a.Midpoint(b); math.Abs(got-12.2) > 1e-9 {
		t.Errorf("Midpoint() = %v, want 12.2", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		segs    []VideoSegment
		wantErr bool
	}{
		{
			name:    "empty",
			segs:    nil,
			wantErr: true,
		},
		{
			name: "single full span",
			segs: []VideoSegment{New(0, 100)},
		},
		{
			name: "ascending with gaps",
			segs: []VideoSegment{New(0, 12.1), New(12.3, 12.5), New(12.7, 60.1)},
		},
		{
			name: "touching boundaries",
			segs: []VideoSegment{New(0, 10), New(10, 20)},
		},
		{
			name:    "overlap",
			segs:    []VideoSegment{New(0, 10), New(9, 20)},
			wantErr: true,
		},
		{
			name:    "unsorted",
			segs:    []VideoSegment{New(10, 20), New(0, 5)},
			wantErr: true,
		},
		{
			name:    "inverted",
			segs:    []VideoSegment{New(5, 5)},
			wantErr: true,
		},
		{
			name:    "negative start",
			segs:    []VideoSegment{New(-1, 5)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.segs)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
