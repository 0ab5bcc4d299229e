package renderer

import (
	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless records frames in memory without touching a GPU.
	BackendTypeHeadless
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// maxLights is the number of lights the lit shader evaluates.
const maxLights = 4

// LightData is one light as seen by a backend.
type LightData struct {
	Position  [3]float32
	Color     common.Color
	Intensity float32
	// Range is the cutoff distance; 0 means infinite.
	Range float32
}

// DrawItem is one mesh draw in world space.
type DrawItem struct {
	Name        string
	Geometry    scene.Geometry
	Model       [16]float32
	Color       common.Color
	DoubleSided bool
	Triangles   int
}

// FrameData is everything a backend needs to draw one frame.
type FrameData struct {
	// Width and Height are the drawing buffer size in physical pixels.
	Width, Height  int
	ClearColor     common.Color
	ViewProjection [16]float32
	CameraPosition [3]float32
	Ambient        common.Color
	Lights         []LightData
	Draws          []DrawItem
}

// RendererBackend is the GPU-facing half of the Renderer. The Renderer walks the scene
// and hands each frame to the backend as plain data.
type RendererBackend interface {
	// Configure resizes the drawing surface and any size-dependent attachments.
	//
	// Parameters:
	//   - width: drawing buffer width in physical pixels
	//   - height: drawing buffer height in physical pixels
	Configure(width, height int)

	// DrawFrame clears the surface and draws every item.
	//
	// Parameters:
	//   - frame: the frame to draw
	//
	// Returns:
	//   - error: an error if the surface could not be acquired or submitted
	DrawFrame(frame *FrameData) error

	// Release frees every GPU object the backend created.
	Release()
}
