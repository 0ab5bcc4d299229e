package profiler

import (
	"io"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	logger.SetOutput(io.Discard)
	now := time.Unix(0, 0)
	p := NewProfiler(WithInterval(100*time.Millisecond), WithClock(func() time.Time { return now }))

	frames := []time.Duration{10, 10, 30, 10, 10, 10, 10, 10}
	reported := 0
	for _, d := range frames {
		now = now.Add(d * time.Millisecond)
		if p.Tick() {
			reported++
		}
	}
	if reported != 1 {
		t.Fatalf("reported %d times, want 1", reported)
	}

	stats := p.Last()
	if stats.Frames != 8 {
		t.Fatalf("frames = %d, want 8", stats.Frames)
	}
	if math.Abs(stats.FPS-80) > 1e-9 {
		t.Fatalf("FPS = %v, want 80", stats.FPS)
	}
	if stats.MaxFrame != 30*time.Millisecond {
		t.Fatalf("max frame = %v, want 30ms", stats.MaxFrame)
	}
	if stats.AvgFrame != 12500*time.Microsecond {
		t.Fatalf("avg frame = %v, want 12.5ms", stats.AvgFrame)
	}

	now = now.Add(50 * time.Millisecond)
	if p.Tick() {
		t.Fatal("reported before the next interval elapsed")
	}
}
