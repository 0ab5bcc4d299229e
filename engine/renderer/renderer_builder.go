package renderer

import "github.com/Carmen-Shannon/oxy-showcase/common"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithRecorder sets the Recorder the headless backend writes frames into. Ignored by the WebGPU backend.
//
// Parameters:
//   - rec: the Recorder to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the recorder option to a renderer
func WithRecorder(rec *Recorder) RendererBuilderOption {
	return func(r *renderer) {
		r.recorder = rec
	}
}

// WithClearColor sets the initial clear color. The default is fully transparent.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithPixelRatio overrides the pixel ratio read from the window.
//
// Parameters:
//   - ratio: physical pixels per logical pixel; values below or equal to 0 are ignored
//
// Returns:
//   - RendererBuilderOption: a function that applies the pixel ratio option to a renderer
func WithPixelRatio(ratio float32) RendererBuilderOption {
	return func(r *renderer) {
		if ratio > 0 {
			r.pixelRatio = ratio
		}
	}
}

// WithFrustumCulling toggles frustum culling. Enabled by default.
//
// Parameters:
//   - enabled: whether meshes outside the camera frustum are skipped
//
// Returns:
//   - RendererBuilderOption: a function that applies the culling option to a renderer
func WithFrustumCulling(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.culling = enabled
	}
}
