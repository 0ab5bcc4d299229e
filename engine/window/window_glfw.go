package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwPlatform holds the GLFW-specific window state.
type glfwPlatform struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool

	dragging     bool
	lastX, lastY float64
}

// newGLFWPlatform creates the GLFW window and routes its input callbacks into the
// parent's listener registry.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newGLFWPlatform(w *engineWindow) (*glfwPlatform, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so no OpenGL context is created.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	// The renderer clears to transparent, which only shows through with a transparent framebuffer.
	glfw.WindowHint(glfw.TransparentFramebuffer, glfw.True)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}

	p := &glfwPlatform{
		parent:  w,
		window:  win,
		running: true,
	}

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if uint32(key) == common.KeyEsc {
			p.running = false
			win.SetShouldClose(true)
			return
		}
		w.listeners.dispatchKey(uint32(key))
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		p.dragging = action == glfw.Press
		p.lastX, p.lastY = win.GetCursorPos()
	})

	// Cursor positions arrive in screen coordinates, which are the logical pixels listeners expect.
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.listeners.dispatchPointerMove(float32(xpos), float32(ypos))
		if p.dragging {
			w.listeners.dispatchDrag(float32(xpos-p.lastX), float32(ypos-p.lastY))
			p.lastX, p.lastY = xpos, ypos
		}
	})

	win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if ratio := p.framebufferRatio(); ratio > 0 {
			w.pixelRatio = ratio
		}
		w.listeners.dispatchResize(width, height)
	})

	// A framebuffer change without a size change means the window moved to a display
	// with a different scale.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		w.applyPixelRatio(p.framebufferRatio())
	})

	w.width, w.height = win.GetSize()
	if ratio := p.framebufferRatio(); ratio > 0 {
		w.pixelRatio = ratio
	}

	return p, nil
}

// framebufferRatio returns framebuffer pixels per screen coordinate, or 0 while minimised.
func (p *glfwPlatform) framebufferRatio() float32 {
	winWidth, _ := p.window.GetSize()
	fbWidth, _ := p.window.GetFramebufferSize()
	if winWidth <= 0 || fbWidth <= 0 {
		return 0
	}
	return float32(fbWidth) / float32(winWidth)
}

// surfaceDescriptor uses the wgpuglfw bridge, which has per-platform implementations
// (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (p *glfwPlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(p.window)
}

func (p *glfwPlatform) isRunning() bool {
	return p.running && !p.window.ShouldClose()
}

func (p *glfwPlatform) close() error {
	if !p.running && p.window == nil {
		return nil
	}
	p.running = false
	p.window.SetShouldClose(true)
	p.window.Destroy()
	p.window = nil
	glfw.Terminate()
	return nil
}

// poll processes pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (p *glfwPlatform) poll() bool {
	glfw.PollEvents()
	return p.isRunning()
}

func (p *glfwPlatform) setTitle(title string) {
	if p.window != nil {
		p.window.SetTitle(title)
	}
}
