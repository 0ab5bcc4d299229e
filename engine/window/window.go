package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Backend selects the platform implementation behind a Window.
type Backend int

const (
	// BackendGLFW opens a native window through GLFW.
	BackendGLFW Backend = iota
	// BackendHeadless has no native window. Events are injected with the Dispatch methods.
	BackendHeadless
)

// Window is the drawable surface the showcase borrows for one mount. It reports its logical
// size and pixel ratio, and fans pointer, resize and key events out to registered listeners.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// AddPointerMoveListener registers a listener for cursor movement.
	//
	// Parameters:
	//   - listener: receives the cursor position in logical pixels
	//
	// Returns:
	//   - ListenerID: the handle to pass to RemoveListener
	AddPointerMoveListener(listener PointerMoveListener) ListenerID

	// AddResizeListener registers a listener for surface size changes.
	//
	// Parameters:
	//   - listener: receives the new logical width and height
	//
	// Returns:
	//   - ListenerID: the handle to pass to RemoveListener
	AddResizeListener(listener ResizeListener) ListenerID

	// AddDragListener registers a listener for primary-button drags.
	//
	// Parameters:
	//   - listener: receives the drag delta in logical pixels
	//
	// Returns:
	//   - ListenerID: the handle to pass to RemoveListener
	AddDragListener(listener DragListener) ListenerID

	// AddKeyListener registers a listener for key presses.
	//
	// Parameters:
	//   - listener: receives the pressed key code
	//
	// Returns:
	//   - ListenerID: the handle to pass to RemoveListener
	AddKeyListener(listener KeyListener) ListenerID

	// RemoveListener unregisters the listener that produced id.
	//
	// Parameters:
	//   - id: a handle returned by one of the Add*Listener methods
	//
	// Returns:
	//   - bool: false if id was not registered
	RemoveListener(id ListenerID) bool

	// ListenerCount returns the number of listeners currently registered, across all kinds.
	//
	// Returns:
	//   - int: the registration count
	ListenerCount() int

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil for headless windows
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// SetTitle replaces the title bar text.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// Title returns the current title bar text.
	Title() string

	// IsRunning returns true until the window is closed.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error

	// ProcessMessages runs the window message loop until the window is closed,
	// calling the update callback once per iteration.
	ProcessMessages()

	// Width returns the logical width of the surface.
	Width() int

	// Height returns the logical height of the surface.
	Height() int

	// PixelRatio returns framebuffer pixels per logical pixel.
	PixelRatio() float32
}

// Headless is a Window without a native backing whose events are injected by the caller.
type Headless interface {
	Window

	// DispatchPointerMove delivers a cursor position to the pointer listeners.
	DispatchPointerMove(x, y float32)

	// DispatchResize updates the logical size and delivers it to the resize listeners.
	DispatchResize(width, height int)

	// DispatchDrag delivers a drag delta to the drag listeners.
	DispatchDrag(dx, dy float32)

	// DispatchKey delivers a key press to the key listeners.
	DispatchKey(keyCode uint32)

	// DispatchPixelRatio changes the pixel ratio, as moving to another display does, and
	// delivers the unchanged logical size to the resize listeners.
	DispatchPixelRatio(ratio float32)
}

// platform is the backend-specific part of a window.
type platform interface {
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	isRunning() bool
	close() error
	poll() bool
	setTitle(title string)
}

// engineWindow is the implementation of the Window and Headless interfaces.
type engineWindow struct {
	title      string
	width      int
	height     int
	pixelRatio float32
	backend    Backend

	listeners *listenerRegistry
	onUpdate  func()
	platform  platform
}

var _ Headless = &engineWindow{}

// NewWindow creates a window on the configured backend.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the opened window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	switch w.backend {
	case BackendHeadless:
		w.platform = &headlessPlatform{running: true}
	default:
		p, err := newGLFWPlatform(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create platform window: %w", err)
		}
		w.platform = p
	}
	return w, nil
}

// NewHeadlessWindow creates a window that never touches the display.
//
// Parameters:
//   - options: functional options to configure the window; WithBackend is ignored
//
// Returns:
//   - Headless: the window
func NewHeadlessWindow(options ...WindowBuilderOption) Headless {
	w := newEngineWindow(options...)
	w.backend = BackendHeadless
	w.platform = &headlessPlatform{running: true}
	return w
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:      "oxy-showcase",
		width:      1280,
		height:     720,
		pixelRatio: 1,
		listeners:  newListenerRegistry(),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) AddPointerMoveListener(listener PointerMoveListener) ListenerID {
	return w.listeners.add(listenerEntry{kind: listenerPointerMove, pointer: listener})
}

func (w *engineWindow) AddResizeListener(listener ResizeListener) ListenerID {
	return w.listeners.add(listenerEntry{kind: listenerResize, resize: listener})
}

func (w *engineWindow) AddDragListener(listener DragListener) ListenerID {
	return w.listeners.add(listenerEntry{kind: listenerDrag, drag: listener})
}

func (w *engineWindow) AddKeyListener(listener KeyListener) ListenerID {
	return w.listeners.add(listenerEntry{kind: listenerKey, key: listener})
}

func (w *engineWindow) RemoveListener(id ListenerID) bool {
	return w.listeners.remove(id)
}

func (w *engineWindow) ListenerCount() int {
	return w.listeners.count()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) SetTitle(title string) {
	if title == w.title {
		return
	}
	w.title = title
	if w.platform != nil {
		w.platform.setTitle(title)
	}
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && w.platform.isRunning()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window is not initialized")
	}
	return w.platform.close()
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if ok := w.platform.poll(); !ok {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) PixelRatio() float32 {
	return w.pixelRatio
}

func (w *engineWindow) DispatchPointerMove(x, y float32) {
	w.listeners.dispatchPointerMove(x, y)
}

func (w *engineWindow) DispatchResize(width, height int) {
	w.width = width
	w.height = height
	w.listeners.dispatchResize(width, height)
}

func (w *engineWindow) DispatchDrag(dx, dy float32) {
	w.listeners.dispatchDrag(dx, dy)
}

func (w *engineWindow) DispatchKey(keyCode uint32) {
	w.listeners.dispatchKey(keyCode)
}

func (w *engineWindow) DispatchPixelRatio(ratio float32) {
	w.applyPixelRatio(ratio)
}

// applyPixelRatio records a scale change and re-dispatches the current size so listeners
// that size buffers in framebuffer pixels pick it up.
func (w *engineWindow) applyPixelRatio(ratio float32) {
	if ratio <= 0 || ratio == w.pixelRatio {
		return
	}
	w.pixelRatio = ratio
	w.listeners.dispatchResize(w.width, w.height)
}

// headlessPlatform runs the message loop until Close is called.
type headlessPlatform struct {
	running bool
}

func (p *headlessPlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (p *headlessPlatform) isRunning() bool                             { return p.running }
func (p *headlessPlatform) poll() bool                                  { return p.running }
func (p *headlessPlatform) setTitle(string)                             {}

func (p *headlessPlatform) close() error {
	p.running = false
	return nil
}
