// package frame provides an owned, explicitly driven frame scheduler. Its owner requests
// one-shot frame callbacks and delayed tasks, and the host loop runs whatever is due by
// calling Flush once per display refresh.
package frame

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// Handle identifies a requested frame callback or delayed task. Handles are never reused.
type Handle uint64

// FrameCallback runs once on the flush after it was requested.
type FrameCallback func(now time.Time)

// Scheduler runs frame callbacks, delayed tasks and posted functions on the goroutine
// that calls Flush.
type Scheduler interface {
	// RequestFrame schedules cb for the next Flush. Callbacks requested while a Flush is
	// running wait for the following Flush.
	//
	// Parameters:
	//   - cb: the callback to run once
	//
	// Returns:
	//   - Handle: the handle to pass to Cancel
	RequestFrame(cb FrameCallback) Handle

	// After schedules fn to run on the first Flush at or after now+d.
	//
	// Parameters:
	//   - d: the delay
	//   - fn: the task to run once
	//
	// Returns:
	//   - Handle: the handle to pass to Cancel
	After(d time.Duration, fn func()) Handle

	// Post queues fn for the next Flush. It is safe to call from any goroutine and is how
	// background work hands results back to the frame thread.
	//
	// Parameters:
	//   - fn: the function to run once
	Post(fn func())

	// Cancel removes a pending frame callback or delayed task.
	//
	// Parameters:
	//   - h: the handle returned by RequestFrame or After
	//
	// Returns:
	//   - bool: false if h already ran, was cancelled, or never existed
	Cancel(h Handle) bool

	// Flush runs the due delayed tasks, then the posted functions, then the frame
	// callbacks requested before this call.
	//
	// Returns:
	//   - int: the number of frame callbacks that ran
	Flush() int

	// Pending returns the number of frame callbacks, delayed tasks and posted functions
	// still waiting to run.
	Pending() int
}

type timerEntry struct {
	handle Handle
	due    time.Time
	fn     func()
}

// schedulerImpl is the implementation of the Scheduler interface.
type schedulerImpl struct {
	mu    *sync.Mutex
	clock func() time.Time

	nextHandle Handle
	frames     map[Handle]FrameCallback
	frameOrder []Handle
	timers     map[Handle]timerEntry
	posted     []func()
}

var _ Scheduler = &schedulerImpl{}

// NewScheduler creates a Scheduler with the provided options.
//
// Parameters:
//   - options: variadic list of SchedulerBuilderOption functions
//
// Returns:
//   - Scheduler: the new scheduler
func NewScheduler(options ...SchedulerBuilderOption) Scheduler {
	s := &schedulerImpl{
		mu:     &sync.Mutex{},
		clock:  time.Now,
		frames: make(map[Handle]FrameCallback),
		timers: make(map[Handle]timerEntry),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *schedulerImpl) RequestFrame(cb FrameCallback) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	h := s.nextHandle
	s.frames[h] = cb
	s.frameOrder = append(s.frameOrder, h)
	return h
}

func (s *schedulerImpl) After(d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	h := s.nextHandle
	s.timers[h] = timerEntry{handle: h, due: s.clock().Add(d), fn: fn}
	return h
}

func (s *schedulerImpl) Post(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted = append(s.posted, fn)
}

func (s *schedulerImpl) Cancel(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.frames[h]; ok {
		delete(s.frames, h)
		return true
	}
	if _, ok := s.timers[h]; ok {
		delete(s.timers, h)
		return true
	}
	return false
}

func (s *schedulerImpl) Flush() int {
	s.mu.Lock()
	now := s.clock()
	due := make([]timerEntry, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.due.After(now) {
			due = append(due, t)
		}
	}
	posted := s.posted
	s.posted = nil
	frameOrder := s.frameOrder
	s.frameOrder = nil
	s.mu.Unlock()

	slices.SortFunc(due, func(a, b timerEntry) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.handle, b.handle)
	})
	for _, t := range due {
		if fn, ok := s.takeTimer(t.handle); ok {
			fn()
		}
	}

	for _, fn := range posted {
		fn()
	}

	ran := 0
	for _, h := range frameOrder {
		if cb, ok := s.takeFrame(h); ok {
			cb(now)
			ran++
		}
	}
	return ran
}

// takeFrame and takeTimer remove a pending entry under the lock, so anything cancelled by
// an earlier callback in the same Flush is skipped.
func (s *schedulerImpl) takeFrame(h Handle) (FrameCallback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cb, ok := s.frames[h]
	delete(s.frames, h)
	return cb, ok
}

func (s *schedulerImpl) takeTimer(h Handle) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[h]
	delete(s.timers, h)
	return t.fn, ok
}

func (s *schedulerImpl) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames) + len(s.timers) + len(s.posted)
}
