package ffprobe

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	cperrors "github.com/five82/cuepoint/internal/errors"
)

// loadTestData loads a JSON fixture from the testdata directory.
func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func TestParseTiming_MP4(t *testing.T) {
	timing, err := ParseTiming(loadTestData(t, "video_mp4.json"), "video.mp4")
	if err != nil {
		t.Fatalf("ParseTiming() error = %v", err)
	}

	if timing.StartTime != 0 {
		t.Errorf("StartTime = %v, want 0", timing.StartTime)
	}
	if timing.Duration != 100.0 {
		t.Errorf("Duration = %v, want 100.0", timing.Duration)
	}
	if timing.FrameCount != 400 {
		t.Errorf("FrameCount = %d, want 400", timing.FrameCount)
	}
	if got := timing.SecondsPerFrame(); got != 0.25 {
		t.Errorf("SecondsPerFrame() = %v, want 0.25", got)
	}
}

func TestParseTiming_MKVFallbacks(t *testing.T) {
	timing, err := ParseTiming(loadTestData(t, "video_mkv.json"), "video.mkv")
	if err != nil {
		t.Fatalf("ParseTiming() error = %v", err)
	}

	if timing.StartTime != 0.042 {
		t.Errorf("StartTime = %v, want 0.042", timing.StartTime)
	}
	if timing.Duration != 1501.5 {
		t.Errorf("Duration = %v, want container duration 1501.5", timing.Duration)
	}
	if timing.FrameCount != 36000 {
		t.Errorf("FrameCount = %d, want 36000 derived from avg_frame_rate", timing.FrameCount)
	}
}

func TestParseTiming_NoVideoStream(t *testing.T) {
	_, err := ParseTiming(loadTestData(t, "audio_only.json"), "song.mp3")
	if err == nil {
		t.Fatal("ParseTiming() expected error for audio-only input, got nil")
	}
	if !cperrors.IsKind(err, cperrors.KindAnalysis) {
		t.Errorf("error kind = %v, want analysis failure", err)
	}
}

func TestParseTiming_MalformedJSON(t *testing.T) {
	_, err := ParseTiming([]byte(`{"format": {"duration": "120.5"}, "streams": [}`), "bad.mp4")
	if err == nil {
		t.Fatal("ParseTiming() expected error for malformed JSON, got nil")
	}
	if !cperrors.IsKind(err, cperrors.KindFFprobeParse) {
		t.Errorf("error kind = %v, want ffprobe parse error", err)
	}
}

func TestParseTiming_InvalidFields(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad start", `{"streams":[{"codec_type":"video","start_time":"x","duration":"1","nb_frames":"1"}]}`},
		{"bad duration", `{"streams":[{"codec_type":"video","duration":"x","nb_frames":"1"}]}`},
		{"no duration", `{"streams":[{"codec_type":"video","nb_frames":"1"}],"format":{}}`},
		{"zero duration", `{"streams":[{"codec_type":"video","duration":"0","nb_frames":"1"}]}`},
		{"bad frames", `{"streams":[{"codec_type":"video","duration":"1","nb_frames":"x"}]}`},
		{"no frames", `{"streams":[{"codec_type":"video","duration":"1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTiming([]byte(tt.json), "in.mp4"); err == nil {
				t.Error("ParseTiming() expected error, got nil")
			}
		})
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"24000/1001", 23.976023976023978},
		{"0/0", 0},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStreamTimingSecondsPerFrameZeroFrames(t *testing.T) {
	if got := (StreamTiming{Duration: 10}).SecondsPerFrame(); got != 0 {
		t.Errorf("SecondsPerFrame() = %v, want 0", got)
	}
}

func TestProbeTiming_MissingBinary(t *testing.T) {
	p := NewProber("/nonexistent/ffprobe", zerolog.Nop())
	_, err := p.ProbeTiming(context.Background(), "video.mp4")
	if err == nil {
		t.Fatal("ProbeTiming() expected error for missing binary, got nil")
	}
	if !cperrors.IsAnalysis(err) {
		t.Errorf("IsAnalysis(%v) = false, want true", err)
	}
}

func TestProbeTiming_MissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
	p := NewProber("", zerolog.Nop())
	_, err := p.ProbeTiming(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Fatal("ProbeTiming() expected error for missing file, got nil")
	}
}
