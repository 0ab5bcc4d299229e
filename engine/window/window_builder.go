package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial logical size of the window.
//
// Parameters:
//   - width: initial width in logical pixels
//   - height: initial height in logical pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithBackend selects the platform implementation. The default is BackendGLFW.
//
// Parameters:
//   - backend: the backend to open the window with
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithBackend(backend Backend) WindowBuilderOption {
	return func(w *engineWindow) {
		w.backend = backend
	}
}

// WithPixelRatio sets the pixel ratio reported by headless windows.
// GLFW windows derive it from the framebuffer instead.
//
// Parameters:
//   - ratio: framebuffer pixels per logical pixel
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithPixelRatio(ratio float32) WindowBuilderOption {
	return func(w *engineWindow) {
		if ratio > 0 {
			w.pixelRatio = ratio
		}
	}
}
