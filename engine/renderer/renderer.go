// package renderer draws a scene graph through a pluggable backend. The Renderer walks
// the scene on the calling thread, frustum-culls meshes and hands the backend a flat
// FrameData; the WebGPU backend turns it into one render pass and the headless backend
// records it for inspection.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/camera"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
	"github.com/Carmen-Shannon/oxy-showcase/engine/window"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrRendererDisposed is returned by Render after Dispose.
var ErrRendererDisposed = errors.New("renderer disposed")

// Info is the statistics of the last rendered frame.
type Info struct {
	// Frames counts every successful Render call.
	Frames uint64
	// DrawCalls is the number of meshes drawn in the last frame.
	DrawCalls int
	// Triangles is the number of triangles drawn in the last frame.
	Triangles int
	// Culled is the number of meshes skipped by frustum culling in the last frame.
	Culled int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	width, height int
	pixelRatio    float32
	clearColor    common.Color
	culling       bool

	info     Info
	disposed bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	recorder             *Recorder
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API that draws a scene from a camera each frame. It owns the
// drawing surface configuration (logical size, pixel ratio, clear color) and implements
// a backend which allows for multiple backend API implementations to exist.
type Renderer interface {
	// SetSize sets the logical size of the drawing surface and reconfigures the backend.
	//
	// Parameters:
	//   - width: the logical width
	//   - height: the logical height
	SetSize(width, height int)

	// Size returns the logical size.
	//
	// Returns:
	//   - int: width
	//   - int: height
	Size() (int, int)

	// SetPixelRatio sets the number of physical pixels per logical pixel.
	//
	// Parameters:
	//   - ratio: the pixel ratio; values below or equal to 0 are ignored
	SetPixelRatio(ratio float32)

	// PixelRatio returns the pixel ratio.
	PixelRatio() float32

	// DrawingBufferSize returns the physical size: the logical size times the pixel ratio.
	//
	// Returns:
	//   - int: width in physical pixels
	//   - int: height in physical pixels
	DrawingBufferSize() (int, int)

	// SetClearColor sets the color the surface is cleared to each frame.
	//
	// Parameters:
	//   - c: the clear color; alpha 0 keeps the surface transparent
	SetClearColor(c common.Color)

	// ClearColor returns the clear color.
	ClearColor() common.Color

	// Render draws the scene from cam. A nil cam uses the scene's camera.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the camera to draw from
	//
	// Returns:
	//   - error: ErrRendererDisposed after Dispose, or a backend error
	Render(s scene.Scene, cam camera.Camera) error

	// Info returns the statistics of the last frame.
	Info() Info

	// Dispose releases the backend. Safe to call more than once.
	Dispose()

	// Disposed reports whether Dispose has been called.
	Disposed() bool
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type, bound to a window.
// The WebGPU backend creates its surface from the window's SurfaceDescriptor and panics if no
// adapter or device can be acquired.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., BackendTypeWGPU)
//   - win: the window providing the surface and its logical size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		width:       win.Width(),
		height:      win.Height(),
		pixelRatio:  max(win.PixelRatio(), 1),
		clearColor:  common.Transparent,
		culling:     true,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeHeadless:
		if r.recorder == nil {
			r.recorder = NewRecorder()
		}
		r.backend = newHeadlessRendererBackend(r.recorder)
	case BackendTypeWGPU:
		fallthrough
	default:
		mode := PresentModeVSync
		if r.pendingPresentMode != nil {
			mode = *r.pendingPresentMode
		}
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, mode)
	}

	r.backend.Configure(r.drawingBufferSize())
	return r
}

func (r *renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	if !r.disposed {
		r.backend.Configure(r.drawingBufferSize())
	}
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ratio == r.pixelRatio {
		return
	}
	r.pixelRatio = ratio
	if !r.disposed {
		r.backend.Configure(r.drawingBufferSize())
	}
}

func (r *renderer) PixelRatio() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

func (r *renderer) DrawingBufferSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawingBufferSize()
}

func (r *renderer) drawingBufferSize() (int, int) {
	return int(float32(r.width) * r.pixelRatio), int(float32(r.height) * r.pixelRatio)
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return ErrRendererDisposed
	}
	if s == nil {
		return fmt.Errorf("render: nil scene")
	}
	if cam == nil {
		cam = s.Camera()
	}
	if cam == nil {
		return fmt.Errorf("render: scene %q has no camera", s.Name())
	}

	frame, culled := r.buildFrame(s, cam)
	if err := r.backend.DrawFrame(frame); err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}

	r.info.Frames++
	r.info.DrawCalls = len(frame.Draws)
	r.info.Culled = culled
	r.info.Triangles = 0
	for _, d := range frame.Draws {
		r.info.Triangles += d.Triangles
	}
	return nil
}

// buildFrame flattens the scene into world-space draw items and light data.
func (r *renderer) buildFrame(s scene.Scene, cam camera.Camera) (*FrameData, int) {
	w, h := r.drawingBufferSize()
	frame := &FrameData{
		Width:          w,
		Height:         h,
		ClearColor:     r.clearColor,
		ViewProjection: cam.ViewProjectionMatrix(),
		CameraPosition: cam.Position(),
		Ambient:        s.AmbientColor(),
	}

	for _, l := range s.Lights() {
		if !l.Enabled() {
			continue
		}
		frame.Lights = append(frame.Lights, LightData{
			Position:  l.Position(),
			Color:     l.Color(),
			Intensity: l.Intensity(),
			Range:     l.Range(),
		})
	}

	frustum := common.FrustumFromViewProjection(frame.ViewProjection[:])
	culled := 0
	s.Traverse(func(n scene.Node) bool {
		mesh := n.Mesh()
		if mesh == nil {
			return true
		}
		geom := mesh.Geometry()
		if geom == nil || geom.Disposed() || geom.TriangleCount() == 0 {
			return true
		}

		world := n.WorldMatrix()
		if r.culling {
			center, radius := worldBounds(geom, world)
			if !frustum.IntersectsSphere(center, radius) {
				culled++
				return true
			}
		}

		item := DrawItem{
			Name:      n.Name(),
			Geometry:  geom,
			Model:     [16]float32(world),
			Color:     common.Color{1, 1, 1, 1},
			Triangles: geom.TriangleCount(),
		}
		if mats := mesh.Materials(); len(mats) > 0 && mats[0] != nil {
			item.Color = mats[0].Color()
			item.DoubleSided = mats[0].DoubleSided()
		}
		frame.Draws = append(frame.Draws, item)
		return true
	})
	return frame, culled
}

// worldBounds transforms a geometry's bounding sphere by a world matrix, scaling the
// radius by the largest axis scale.
func worldBounds(geom scene.Geometry, world mgl32.Mat4) ([3]float32, float32) {
	c, radius := geom.BoundingSphere()
	center := world.Mul4x1(mgl32.Vec4{c[0], c[1], c[2], 1}).Vec3()
	scale := max(world.Col(0).Vec3().Len(), world.Col(1).Vec3().Len(), world.Col(2).Vec3().Len())
	return center, radius * scale
}

func (r *renderer) Info() Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info
}

func (r *renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.disposed = true
	r.backend.Release()
}

func (r *renderer) Disposed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposed
}
