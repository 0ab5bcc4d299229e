package renderer

import (
	"slices"
	"sync"
)

// Recorder keeps a copy of every frame drawn by the headless backend.
type Recorder struct {
	mu         sync.Mutex
	frames     []FrameData
	configured [][2]int
	released   bool
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Frames returns copies of every recorded frame, oldest first.
func (r *Recorder) Frames() []FrameData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.frames)
}

// FrameCount returns the number of recorded frames.
func (r *Recorder) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// LastFrame returns the most recent frame and whether any frame was recorded.
func (r *Recorder) LastFrame() (FrameData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return FrameData{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Configured returns every drawing buffer size the backend was configured with.
func (r *Recorder) Configured() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.configured)
}

// Released reports whether the backend was released.
func (r *Recorder) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// headlessRendererBackend implements RendererBackend without a GPU.
type headlessRendererBackend struct {
	rec *Recorder
}

var _ RendererBackend = &headlessRendererBackend{}

func newHeadlessRendererBackend(rec *Recorder) *headlessRendererBackend {
	return &headlessRendererBackend{rec: rec}
}

func (b *headlessRendererBackend) Configure(width, height int) {
	b.rec.mu.Lock()
	defer b.rec.mu.Unlock()
	b.rec.configured = append(b.rec.configured, [2]int{width, height})
}

func (b *headlessRendererBackend) DrawFrame(frame *FrameData) error {
	f := *frame
	f.Lights = slices.Clone(frame.Lights)
	f.Draws = slices.Clone(frame.Draws)

	b.rec.mu.Lock()
	defer b.rec.mu.Unlock()
	b.rec.frames = append(b.rec.frames, f)
	return nil
}

func (b *headlessRendererBackend) Release() {
	b.rec.mu.Lock()
	defer b.rec.mu.Unlock()
	b.rec.released = true
}
