package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/engine/config"
	"github.com/Carmen-Shannon/oxy-showcase/engine/frame"
	"github.com/Carmen-Shannon/oxy-showcase/engine/loader"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer"
	"github.com/Carmen-Shannon/oxy-showcase/engine/showcase"
	"github.com/Carmen-Shannon/oxy-showcase/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the configuration used for the window and every mount.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithLoader sets the loader shared by every mount. Run closes it on exit.
//
// Parameters:
//   - l: the asset loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithConfigPath sets the file Remount reloads the configuration from.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfigPath(path string) EngineBuilderOption {
	return func(e *engine) {
		e.configPath = path
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScheduler sets the frame scheduler, which tests use to inject a clock.
//
// Parameters:
//   - s: the scheduler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScheduler(s frame.Scheduler) EngineBuilderOption {
	return func(e *engine) {
		e.scheduler = s
	}
}

// WithRendererBackend selects the renderer backend for every mount. The headless backend
// also selects a headless window when no window is given.
//
// Parameters:
//   - backend: the renderer backend type
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererBackend(backend renderer.RendererBackendType) EngineBuilderOption {
	return func(e *engine) {
		e.rendererBackend = backend
	}
}

// WithShowcaseOptions appends options applied to every mount after the configured ones.
//
// Parameters:
//   - options: the showcase options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShowcaseOptions(options ...showcase.ShowcaseBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.showcaseOptions = append(e.showcaseOptions, options...)
	}
}

// WithMaxFrames stops Run after n loop iterations. 0 runs until the window closes.
//
// Parameters:
//   - n: the number of iterations
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n int) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = max(n, 0)
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
