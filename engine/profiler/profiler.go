// package profiler tracks frame timing for the host loop and reports it through the logger.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"
)

// Stats is one reporting window of frame statistics.
type Stats struct {
	// Frames is the number of frames in the window.
	Frames int
	// FPS is Frames divided by the window length.
	FPS float64
	// AvgFrame is the mean time between frames.
	AvgFrame time.Duration
	// MaxFrame is the longest time between two frames.
	MaxFrame time.Duration
	// HeapMB is the live heap at the end of the window.
	HeapMB float64
	// GCCount is the number of completed GC cycles.
	GCCount uint32
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at debug level once per interval.
type Profiler struct {
	clock          func() time.Time
	updateInterval time.Duration
	frameCount     int
	windowStart    time.Time
	lastFrame      time.Time
	maxFrame       time.Duration
	memStats       runtime.MemStats
	last           Stats
}

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets the reporting interval. Defaults to 1 second.
//
// Parameters:
//   - d: the interval; values below or equal to 0 are ignored
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a Profiler
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces time.Now, which tests use to drive the profiler.
//
// Parameters:
//   - clock: the time source
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the clock option to a Profiler
func WithClock(clock func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.clock = clock
	}
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		clock:          time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.windowStart = p.clock()
	p.lastFrame = p.windowStart
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	now := p.clock()
	p.frameCount++
	p.maxFrame = max(p.maxFrame, now.Sub(p.lastFrame))
	p.lastFrame = now

	elapsed := now.Sub(p.windowStart)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	p.last = Stats{
		Frames:   p.frameCount,
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		AvgFrame: elapsed / time.Duration(p.frameCount),
		MaxFrame: p.maxFrame,
		HeapMB:   float64(p.memStats.Alloc) / 1024 / 1024,
		GCCount:  p.memStats.NumGC,
	}
	logger.Debug("FPS: %.2f | frame: %s avg, %s max | Heap: %.2f MB | GC: %d",
		p.last.FPS, p.last.AvgFrame, p.last.MaxFrame, p.last.HeapMB, p.last.GCCount)

	p.frameCount = 0
	p.maxFrame = 0
	p.windowStart = now
	return true
}

// Last returns the statistics of the most recent completed window.
func (p *Profiler) Last() Stats {
	return p.last
}
