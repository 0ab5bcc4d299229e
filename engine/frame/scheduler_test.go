package frame

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestScheduler() (Scheduler, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	return NewScheduler(WithClock(clock.Now)), clock
}

func TestRequestFrameRunsOnce(t *testing.T) {
	s, _ := newTestScheduler()
	calls := 0
	s.RequestFrame(func(time.Time) { calls++ })

	if ran := s.Flush(); ran != 1 {
		t.Fatalf("first Flush ran %d callbacks, want 1", ran)
	}
	if ran := s.Flush(); ran != 0 {
		t.Fatalf("second Flush ran %d callbacks, want 0", ran)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestFrameRequestedDuringFlushWaitsForNextFlush(t *testing.T) {
	s, clock := newTestScheduler()
	var stamps []time.Time
	var loop FrameCallback
	loop = func(now time.Time) {
		stamps = append(stamps, now)
		s.RequestFrame(loop)
	}
	s.RequestFrame(loop)

	for i := 0; i < 3; i++ {
		if ran := s.Flush(); ran != 1 {
			t.Fatalf("flush %d ran %d callbacks, want 1", i, ran)
		}
		clock.Advance(16 * time.Millisecond)
	}
	if len(stamps) != 3 {
		t.Fatalf("loop ran %d times, want 3", len(stamps))
	}
	if d := stamps[2].Sub(stamps[1]); d != 16*time.Millisecond {
		t.Fatalf("frame spacing = %v", d)
	}
}

func TestCancelFrame(t *testing.T) {
	s, _ := newTestScheduler()
	h := s.RequestFrame(func(time.Time) { t.Fatal("cancelled frame ran") })
	if !s.Cancel(h) {
		t.Fatal("Cancel = false for a pending frame")
	}
	if s.Cancel(h) {
		t.Fatal("second Cancel should report false")
	}
	s.Flush()
	if s.Pending() != 0 {
		t.Fatalf("Pending = %d", s.Pending())
	}
}

func TestCancelFromEarlierCallbackInSameFlush(t *testing.T) {
	s, _ := newTestScheduler()
	var victim Handle
	s.Post(func() { s.Cancel(victim) })
	victim = s.RequestFrame(func(time.Time) { t.Fatal("frame cancelled by a posted function ran") })

	if ran := s.Flush(); ran != 0 {
		t.Fatalf("Flush ran %d callbacks, want 0", ran)
	}
}

func TestAfterFiresWhenDue(t *testing.T) {
	s, clock := newTestScheduler()
	fired := 0
	s.After(time.Second, func() { fired++ })

	s.Flush()
	clock.Advance(999 * time.Millisecond)
	s.Flush()
	if fired != 0 {
		t.Fatal("timer fired early")
	}

	clock.Advance(time.Millisecond)
	s.Flush()
	s.Flush()
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

func TestAfterOrdersByDueTime(t *testing.T) {
	s, clock := newTestScheduler()
	var order []string
	s.After(2*time.Second, func() { order = append(order, "late") })
	s.After(time.Second, func() { order = append(order, "early") })

	clock.Advance(3 * time.Second)
	s.Flush()
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Fatalf("order = %v", order)
	}
}

func TestCancelTimer(t *testing.T) {
	s, clock := newTestScheduler()
	h := s.After(time.Second, func() { t.Fatal("cancelled timer fired") })
	if !s.Cancel(h) {
		t.Fatal("Cancel = false for a pending timer")
	}
	clock.Advance(time.Hour)
	s.Flush()
}

func TestPostFromGoroutines(t *testing.T) {
	s, _ := newTestScheduler()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Post(func() {})
		}()
	}
	wg.Wait()

	if s.Pending() != 20 {
		t.Fatalf("Pending = %d, want 20", s.Pending())
	}
	s.Flush()
	if s.Pending() != 0 {
		t.Fatalf("Pending after Flush = %d", s.Pending())
	}
}

func TestFlushOrder(t *testing.T) {
	s, _ := newTestScheduler()
	var order []string
	s.RequestFrame(func(time.Time) { order = append(order, "frame") })
	s.Post(func() { order = append(order, "posted") })
	s.After(0, func() { order = append(order, "timer") })

	s.Flush()
	want := []string{"timer", "posted", "frame"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
