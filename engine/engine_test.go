package engine

import (
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/config"
	"github.com/Carmen-Shannon/oxy-showcase/engine/loader"
	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
	"github.com/Carmen-Shannon/oxy-showcase/engine/showcase"
	"github.com/Carmen-Shannon/oxy-showcase/engine/window"
)

type scriptedLoader struct {
	events []loader.LoadEvent
	fn     func(loader.LoadEvent)
	calls  int
	closed bool
}

func (l *scriptedLoader) Load(ctx context.Context, url string) iter.Seq[loader.LoadEvent] {
	return func(yield func(loader.LoadEvent) bool) {
		for _, ev := range l.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func (l *scriptedLoader) LoadAsync(ctx context.Context, url string, fn func(loader.LoadEvent)) {
	l.calls++
	l.fn = fn
	for ev := range l.Load(ctx, url) {
		fn(ev)
	}
}

func (l *scriptedLoader) Close() error {
	l.closed = true
	return nil
}

func newTestEngine(t *testing.T, ld loader.Loader, opts ...EngineBuilderOption) (Engine, window.Headless) {
	t.Helper()
	logger.SetOutput(io.Discard)
	win := window.NewHeadlessWindow(window.WithTitle("oxy-showcase"), window.WithSize(640, 480))
	base := []EngineBuilderOption{
		WithWindow(win),
		WithRendererBackend(renderer.BackendTypeHeadless),
		WithLoader(ld),
	}
	e, err := NewEngine(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, win
}

func TestTitleFollowsLoadState(t *testing.T) {
	ld := &scriptedLoader{}
	e, win := newTestEngine(t, ld)
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()

	if win.Title() != "Loading… 0%" {
		t.Fatalf("title = %q", win.Title())
	}

	ld.fn(loader.Loading{Progress: 0.42})
	e.Step()
	if win.Title() != "Loading… 42%" {
		t.Fatalf("title = %q", win.Title())
	}

	ld.fn(loader.Ready{Asset: &loader.Asset{Name: "model", Root: scene.NewNode()}})
	e.Step()
	if win.Title() != "oxy-showcase" {
		t.Fatalf("title after ready = %q", win.Title())
	}
}

func TestTitleShowsFailure(t *testing.T) {
	ld := &scriptedLoader{events: []loader.LoadEvent{loader.Failed{Err: errors.New("unexpected EOF")}}}
	e, win := newTestEngine(t, ld)
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()

	e.Step()
	if win.Title() != "failed to load 3D model: unexpected EOF" {
		t.Fatalf("title = %q", win.Title())
	}
}

func TestPanicFallback(t *testing.T) {
	e, win := newTestEngine(t, &scriptedLoader{})
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	mounted := e.Showcase()

	e.Scheduler().Post(func() { panic("boom") })
	if !e.Step() {
		t.Fatal("Step stopped the loop after a recovered panic")
	}

	if e.Failure() != "boom" || win.Title() != "Something went wrong: boom" {
		t.Fatalf("failure = %q, title = %q", e.Failure(), win.Title())
	}
	if e.Showcase() != nil || mounted.Alive() || !mounted.Renderer().Disposed() {
		t.Fatal("showcase not torn down by the fallback")
	}
	if got := win.ListenerCount(); got != 1 {
		t.Fatalf("listeners after fallback = %d, want only the key listener", got)
	}

	if err := e.Remount(); err != nil {
		t.Fatalf("Remount: %v", err)
	}
	defer e.Unmount()
	if e.Failure() != "" || e.Showcase() == nil {
		t.Fatal("Remount did not recover from the failure")
	}
}

func TestRemountIsIndependent(t *testing.T) {
	e, win := newTestEngine(t, &scriptedLoader{})
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := e.Mount(); !errors.Is(err, ErrAlreadyMounted) {
		t.Fatalf("second Mount = %v, want ErrAlreadyMounted", err)
	}
	first := e.Showcase()
	listeners := win.ListenerCount()

	for i := 0; i < 3; i++ {
		if err := e.Remount(); err != nil {
			t.Fatalf("Remount: %v", err)
		}
		if got := win.ListenerCount(); got != listeners {
			t.Fatalf("remount %d: listeners = %d, want %d", i, got, listeners)
		}
	}
	if e.Showcase().MountID() == first.MountID() || first.Alive() {
		t.Fatal("remount reused the previous mount")
	}
	if e.Mounts() != 4 {
		t.Fatalf("mounts = %d, want 4", e.Mounts())
	}

	e.Unmount()
	e.Unmount()
	if got := win.ListenerCount(); got != 1 {
		t.Fatalf("listeners after unmount = %d, want 1", got)
	}
}

func TestReloadKey(t *testing.T) {
	e, win := newTestEngine(t, &scriptedLoader{})
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()

	win.DispatchKey(common.KeyR)
	e.Step()
	if e.Mounts() != 2 {
		t.Fatalf("mounts after reload key = %d, want 2", e.Mounts())
	}
}

func TestRemountReloadsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "showcase.toml")
	if err := os.WriteFile(path, []byte("[window]\ntitle = \"first\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	ld := &scriptedLoader{events: []loader.LoadEvent{loader.Ready{Asset: &loader.Asset{Root: scene.NewNode()}}}}
	e, win := newTestEngine(t, ld, WithConfig(cfg), WithConfigPath(path))
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()
	e.Step()
	if win.Title() != "first" {
		t.Fatalf("title = %q, want first", win.Title())
	}

	if err := os.WriteFile(path, []byte("[window]\ntitle = \"second\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ld.events = []loader.LoadEvent{loader.Ready{Asset: &loader.Asset{Root: scene.NewNode()}}}
	if err := e.Remount(); err != nil {
		t.Fatalf("Remount: %v", err)
	}
	e.Step()
	if win.Title() != "second" {
		t.Fatalf("title after remount = %q, want second", win.Title())
	}
}

func TestWatchRemountsOnWrite(t *testing.T) {
	asset := filepath.Join(t.TempDir(), "model.glb")
	if err := os.WriteFile(asset, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, _ := newTestEngine(t, &scriptedLoader{})
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer e.Unmount()
	if err := e.Watch(asset); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer e.(*engine).stopWatching()

	if err := os.WriteFile(asset, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for e.Mounts() < 2 && time.Now().Before(deadline) {
		e.Step()
		time.Sleep(10 * time.Millisecond)
	}
	if e.Mounts() < 2 {
		t.Fatal("file change did not remount the showcase")
	}
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	ld := &scriptedLoader{}
	e, win := newTestEngine(t, ld, WithMaxFrames(3))
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if win.IsRunning() {
		t.Fatal("window still running")
	}
	if e.Showcase() != nil || e.Mounts() != 1 {
		t.Fatalf("showcase = %v, mounts = %d", e.Showcase(), e.Mounts())
	}
	if got := win.ListenerCount(); got != 0 {
		t.Fatalf("listeners after Run = %d, want 0", got)
	}
	if st := e.Status(); st.Frames != 3 || !st.Mounted || st.State != showcase.StateLoading || st.DrawCalls != 0 {
		t.Fatalf("status = %+v", st)
	}
	if !ld.closed {
		t.Fatal("loader not closed after Run")
	}
}

func TestMountsShareOneLoader(t *testing.T) {
	ld := &scriptedLoader{}
	e, _ := newTestEngine(t, ld)
	if err := e.Mount(); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := e.Remount(); err != nil {
			t.Fatalf("Remount %d: %v", i, err)
		}
	}
	e.Unmount()

	if ld.calls != 5 || e.Mounts() != 5 {
		t.Fatalf("loads = %d, mounts = %d, want 5 each", ld.calls, e.Mounts())
	}
	if ld.closed {
		t.Fatal("a teardown closed the shared loader")
	}
}
