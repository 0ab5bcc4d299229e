package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/common"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera is a perspective camera looking from a position toward a target.
// Every setter recomputes the view, projection, and view-projection matrices.
// Thread-safe for concurrent access.
type Camera interface {
	// Position returns the camera's position in world space.
	//
	// Returns:
	//   - [3]float32: the eye position
	Position() [3]float32

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - x, y, z: the eye position in world space
	SetPosition(x, y, z float32)

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - [3]float32: the look-at point
	Target() [3]float32

	// SetTarget changes the point the camera looks at.
	//
	// Parameters:
	//   - x, y, z: the look-at point in world space
	SetTarget(x, y, z float32)

	// Up returns the camera's up direction.
	Up() [3]float32

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// SetFov sets the vertical field of view.
	//
	// Parameters:
	//   - fov: the field of view in radians
	SetFov(fov float32)

	// Aspect returns the viewport aspect ratio (width/height).
	Aspect() float32

	// SetAspect sets the viewport aspect ratio.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// Near returns the near clipping distance.
	Near() float32

	// Far returns the far clipping distance.
	Far() float32

	// ViewMatrix returns the world-to-view matrix (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the view-to-clip matrix (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix (column-major).
	ViewProjectionMatrix() [16]float32
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the provided options.
// Defaults to a 45 degree field of view, aspect 1, near 0.1, far 1000, positioned at
// (0, 0, 10) looking at the origin.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the newly created Camera instance
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: [3]float32{0, 0, 10},
		up:       [3]float32{0, 1, 0},
		fov:      45.0 * (math.Pi / 180.0),
		aspect:   1.0,
		near:     0.1,
		far:      1000.0,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) Target() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) Up() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

// updateMatrices recalculates the view, projection, and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.position, c.target, c.up)
	common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
