package showcase

import (
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/engine/loader"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer"
)

// ShowcaseBuilderOption is a functional option applied to a showcase during construction via New.
type ShowcaseBuilderOption func(*showcase)

// WithLoader sets the loader used by LoadAsset. The caller keeps ownership and closes it.
// Without it the showcase creates a glTF loader and closes it on Teardown.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - ShowcaseBuilderOption: a function that applies the loader option to a showcase
func WithLoader(l loader.Loader) ShowcaseBuilderOption {
	return func(s *showcase) {
		s.loader = l
	}
}

// WithLoadTimeout fails the load when it has not finished after d. Zero, the default, waits forever.
//
// Parameters:
//   - d: the load timeout
//
// Returns:
//   - ShowcaseBuilderOption: a function that applies the timeout option to a showcase
func WithLoadTimeout(d time.Duration) ShowcaseBuilderOption {
	return func(s *showcase) {
		s.loadTimeout = d
	}
}

// WithKeyLightDelay sets how long after mount the key light is added. Defaults to 1s.
//
// Parameters:
//   - d: the delay
//
// Returns:
//   - ShowcaseBuilderOption: a function that applies the delay option to a showcase
func WithKeyLightDelay(d time.Duration) ShowcaseBuilderOption {
	return func(s *showcase) {
		s.keyLightDelay = d
	}
}

// WithMaxPixelRatio caps the renderer pixel ratio. Defaults to 2.
//
// Parameters:
//   - ratio: the cap; values below or equal to 0 are ignored
//
// Returns:
//   - ShowcaseBuilderOption: a function that applies the pixel ratio cap to a showcase
func WithMaxPixelRatio(ratio float32) ShowcaseBuilderOption {
	return func(s *showcase) {
		if ratio > 0 {
			s.maxPixelRatio = ratio
		}
	}
}

// WithRendererBackend selects the renderer backend. Defaults to WebGPU.
//
// Parameters:
//   - backend: the backend type
//
// Returns:
//   - ShowcaseBuilderOption: a function that applies the backend option to a showcase
func WithRendererBackend(backend renderer.RendererBackendType) ShowcaseBuilderOption {
	return func(s *showcase) {
		s.rendererBackend = backend
	}
}

// WithRendererOptions appends options passed to the renderer after the showcase's own
// clear color and pixel ratio.
//
// Parameters:
//   - options: the renderer options
//
// Returns:
//   - ShowcaseBuilderOption: a function that applies the renderer options to a showcase
func WithRendererOptions(options ...renderer.RendererBuilderOption) ShowcaseBuilderOption {
	return func(s *showcase) {
		s.rendererOptions = append(s.rendererOptions, options...)
	}
}
