// package engine hosts the showcase: it drives the window message loop, flushes the frame
// scheduler once per iteration, mirrors the load state in the window title, and mounts a
// fresh showcase whenever it is asked to remount.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/config"
	"github.com/Carmen-Shannon/oxy-showcase/engine/frame"
	"github.com/Carmen-Shannon/oxy-showcase/engine/loader"
	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"
	"github.com/Carmen-Shannon/oxy-showcase/engine/profiler"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer"
	"github.com/Carmen-Shannon/oxy-showcase/engine/showcase"
	"github.com/Carmen-Shannon/oxy-showcase/engine/window"

	"github.com/fsnotify/fsnotify"
)

// ErrAlreadyMounted is returned by Mount while a showcase is mounted.
var ErrAlreadyMounted = errors.New("showcase already mounted")

// Status is the state of the mounted showcase as of the last loop iteration.
type Status struct {
	// Frames is the number of loop iterations run.
	Frames int
	// Mounted reports whether a showcase was mounted.
	Mounted  bool
	State    showcase.State
	Progress float64
	// Message is the load failure or the recovered panic message.
	Message   string
	DrawCalls int
	Triangles int
}

// engine implements the Engine interface.
type engine struct {
	window    window.Window
	scheduler frame.Scheduler

	cfg             config.Config
	configPath      string
	showcaseOptions []showcase.ShowcaseBuilderOption
	rendererBackend renderer.RendererBackendType
	loader          loader.Loader

	current showcase.Showcase
	status  Status
	mounts  int
	failure string
	title   string
	keyID   window.ListenerID

	profiler         *profiler.Profiler
	profilingEnabled bool

	maxFrames        int
	frames           int
	renderFrameLimit time.Duration
	lastIteration    time.Time

	watcher       *fsnotify.Watcher
	watchDone     chan struct{}
	remountQueued bool
	watchMu       *sync.Mutex

	quitOnce sync.Once
}

// Engine is the host of the showcase. Every method except Quit must be called from the
// thread that runs the message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scheduler returns the frame scheduler flushed once per loop iteration.
	Scheduler() frame.Scheduler

	// Showcase returns the mounted showcase, or nil between mounts.
	Showcase() showcase.Showcase

	// Mounts returns the number of successful Mount calls.
	Mounts() int

	// Failure returns the message of the last recovered panic, or "".
	Failure() string

	// Status returns the showcase state recorded by the last Step. It survives Unmount.
	Status() Status

	// Mount creates a new showcase on the window and starts loading the configured asset.
	//
	// Returns:
	//   - error: ErrAlreadyMounted when a showcase is mounted, or the LoadAsset error
	Mount() error

	// Unmount tears the mounted showcase down. It does nothing between mounts.
	Unmount()

	// Remount reloads the config file, if any, and replaces the showcase with a new
	// independent mount. It also clears a previous failure.
	//
	// Returns:
	//   - error: the Mount error
	Remount() error

	// Watch remounts the showcase when any of the given files is written, created or renamed.
	// Events are delivered to the loop thread through the scheduler.
	//
	// Parameters:
	//   - paths: the files to watch; plain paths, not URLs
	//
	// Returns:
	//   - error: error if the watcher cannot be created or a directory cannot be watched
	Watch(paths ...string) error

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Step runs one loop iteration: flush the scheduler, update the title and tick the profiler.
	// A panic inside the iteration tears the showcase down and shows the fallback title.
	//
	// Returns:
	//   - bool: false once the frame limit set by WithMaxFrames is reached
	Step() bool

	// Run mounts the showcase if needed and runs the message loop until the window closes
	// or the frame limit is reached, then unmounts, stops watching and closes the loader.
	//
	// Returns:
	//   - error: the initial Mount error
	Run() error

	// Quit closes the window, which ends Run. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options. Without WithWindow a
// window is created from the configuration.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the window cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		cfg:             config.Default(),
		rendererBackend: renderer.BackendTypeWGPU,
		profiler:        profiler.NewProfiler(),
		watchMu:         &sync.Mutex{},
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		backend := window.BackendGLFW
		if e.rendererBackend == renderer.BackendTypeHeadless {
			backend = window.BackendHeadless
		}
		w, err := window.NewWindow(
			window.WithTitle(e.cfg.Window.Title),
			window.WithSize(e.cfg.Window.Width, e.cfg.Window.Height),
			window.WithBackend(backend),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create window: %w", err)
		}
		e.window = w
	}
	if e.scheduler == nil {
		e.scheduler = frame.NewScheduler()
	}
	if e.loader == nil {
		e.loader = loader.NewLoader(loader.BackendTypeGLTF)
	}

	e.title = e.window.Title()
	e.keyID = e.window.AddKeyListener(func(keyCode uint32) {
		if keyCode == common.KeyR {
			e.scheduler.Post(e.remountLogged)
		}
	})
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scheduler() frame.Scheduler {
	return e.scheduler
}

func (e *engine) Showcase() showcase.Showcase {
	return e.current
}

func (e *engine) Mounts() int {
	return e.mounts
}

func (e *engine) Failure() string {
	return e.failure
}

func (e *engine) Status() Status {
	return e.status
}

// recordStatus snapshots the showcase after a loop iteration.
func (e *engine) recordStatus() {
	st := Status{Frames: e.frames, Message: e.failure}
	if e.current != nil {
		info := e.current.Renderer().Info()
		st.Mounted = true
		st.State = e.current.State()
		st.Progress = e.current.Progress()
		st.DrawCalls = info.DrawCalls
		st.Triangles = info.Triangles
		if st.Message == "" {
			st.Message = e.current.ErrorMessage()
		}
	}
	e.status = st
}

// options builds the per-mount showcase options from the current configuration.
func (e *engine) options() []showcase.ShowcaseBuilderOption {
	presentMode := renderer.PresentModeVSync
	if !e.cfg.Window.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	opts := []showcase.ShowcaseBuilderOption{
		showcase.WithLoader(e.loader),
		showcase.WithRendererBackend(e.rendererBackend),
		showcase.WithRendererOptions(renderer.WithPresentMode(presentMode)),
		showcase.WithLoadTimeout(e.cfg.Asset.LoadTimeout.Std()),
		showcase.WithKeyLightDelay(e.cfg.Scene.KeyLightDelay.Std()),
		showcase.WithMaxPixelRatio(e.cfg.Scene.MaxPixelRatio),
	}
	return append(opts, e.showcaseOptions...)
}

func (e *engine) Mount() error {
	if e.current != nil {
		return ErrAlreadyMounted
	}
	e.failure = ""
	e.current = showcase.New(e.window, e.scheduler, e.options()...)
	e.mounts++
	if err := e.current.LoadAsset(e.cfg.Asset.URL); err != nil {
		return fmt.Errorf("failed to start asset load: %w", err)
	}
	e.updateTitle()
	return nil
}

func (e *engine) Unmount() {
	if e.current == nil {
		return
	}
	e.current.Teardown()
	e.current = nil
}

func (e *engine) Remount() error {
	if e.configPath != "" {
		cfg, err := config.Load(e.configPath)
		if err != nil {
			logger.Warn("keeping previous config: %v", err)
		} else {
			e.cfg = cfg
			logger.SetLevel(cfg.Log.Level)
		}
	}
	e.Unmount()
	return e.Mount()
}

func (e *engine) remountLogged() {
	if err := e.Remount(); err != nil {
		logger.Error("remount: %v", err)
	}
}

// updateTitle mirrors the showcase state in the window title.
func (e *engine) updateTitle() {
	title := e.cfg.Window.Title
	switch {
	case e.failure != "":
		title = "Something went wrong: " + e.failure
	case e.current == nil:
	case e.current.IsLoading():
		title = fmt.Sprintf("Loading… %d%%", int(e.current.Progress()*100))
	case e.current.HasError():
		title = e.current.ErrorMessage()
	}
	if title != e.title {
		e.title = title
		e.window.SetTitle(title)
	}
}

func (e *engine) Step() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.fail(fmt.Sprint(r))
			ok = e.maxFrames <= 0 || e.frames < e.maxFrames
		}
	}()

	e.frames++
	e.scheduler.Flush()
	e.updateTitle()
	e.recordStatus()
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return e.maxFrames <= 0 || e.frames < e.maxFrames
}

// fail is the error fallback: the showcase is torn down and the title shows the panic message.
func (e *engine) fail(msg string) {
	logger.Error("recovered from panic: %s", msg)
	e.failure = msg
	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("teardown after panic: %v", r)
			}
		}()
		e.Unmount()
	}()
	e.current = nil
	e.updateTitle()
	e.recordStatus()
}

func (e *engine) Run() error {
	if e.current == nil {
		if err := e.Mount(); err != nil {
			return err
		}
	}

	e.window.SetUpdateCallback(func() {
		if !e.Step() {
			e.Quit()
			return
		}
		e.limitFrameRate()
	})
	e.window.ProcessMessages()

	e.Unmount()
	e.window.RemoveListener(e.keyID)
	e.stopWatching()
	if err := e.loader.Close(); err != nil {
		logger.Warn("close loader: %v", err)
	}
	return nil
}

// limitFrameRate sleeps out the rest of the frame budget when a frame limit is set.
func (e *engine) limitFrameRate() {
	if e.renderFrameLimit <= 0 {
		return
	}
	if !e.lastIteration.IsZero() {
		if remaining := e.renderFrameLimit - time.Since(e.lastIteration); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	e.lastIteration = time.Now()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if err := e.window.Close(); err != nil {
			logger.Warn("close window: %v", err)
		}
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}
