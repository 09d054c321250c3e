package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/five82/cuepoint/internal/segment"
)

// Call records the arguments of one DetectShotChanges invocation.
type Call struct {
	Locator         string
	VolumeThreshold *float64
}

// Fake is a VideoAnalyzer that returns canned responses in order, one per call.
// Once the responses are used up every call fails.
type Fake struct {
	mu        sync.Mutex
	responses [][]segment.VideoSegment
	next      int
	calls     []Call
}

// NewFake creates a Fake that returns responses in order.
func NewFake(responses ...[]segment.VideoSegment) *Fake {
	return &Fake{responses: responses}
}

// DetectShotChanges returns the next canned response.
func (f *Fake) DetectShotChanges(_ context.Context, locator string, volumeThreshold *float64) ([]segment.VideoSegment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Locator: locator, VolumeThreshold: volumeThreshold})
	if f.next >= len(f.responses) {
		return nil, fmt.Errorf("fake analyzer exhausted after %d responses", len(f.responses))
	}
	resp := f.responses[f.next]
	f.next++
	return resp, nil
}

// Calls returns the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}
