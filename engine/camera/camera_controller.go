package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/common"
)

// CameraController orbits a Camera around its target on a sphere. The polar angle is
// measured from +Y and the azimuth around Y from +Z, so a camera on the +Z axis has
// azimuth 0 and polar π/2. Both angles are clamped to the configured ranges.
// Thread-safe for concurrent access.
type CameraController interface {
	// Camera returns the controlled camera.
	Camera() Camera

	// Radius returns the distance from the camera to the target.
	Radius() float32

	// Azimuth returns the horizontal angle in radians.
	Azimuth() float32

	// Polar returns the angle from +Y in radians.
	Polar() float32

	// AzimuthRange returns the allowed azimuth range.
	//
	// Returns:
	//   - float32: the minimum azimuth
	//   - float32: the maximum azimuth
	AzimuthRange() (float32, float32)

	// PolarRange returns the allowed polar range.
	//
	// Returns:
	//   - float32: the minimum polar angle
	//   - float32: the maximum polar angle
	PolarRange() (float32, float32)

	// Rotate adds to the azimuth and polar angles, clamps them, and moves the camera.
	//
	// Parameters:
	//   - dAzimuth: the azimuth change in radians
	//   - dPolar: the polar change in radians
	Rotate(dAzimuth, dPolar float32)

	// Drag rotates by a pointer drag. A drag across the full viewport height turns a full circle.
	//
	// Parameters:
	//   - dx, dy: the pointer movement in logical pixels
	//   - viewportHeight: the viewport height in logical pixels
	Drag(dx, dy float32, viewportHeight int)

	// Zoom moves the camera toward (positive delta) or away from the target.
	//
	// Parameters:
	//   - delta: the zoom amount, in scroll-wheel steps
	//
	// Returns:
	//   - bool: false if zooming is disabled
	Zoom(delta float32) bool

	// ZoomEnabled reports whether Zoom has any effect.
	ZoomEnabled() bool

	// Enabled reports whether Rotate, Drag and Zoom have any effect.
	Enabled() bool

	// SetEnabled turns user control on or off.
	//
	// Parameters:
	//   - enabled: whether the controller responds to input
	SetEnabled(enabled bool)
}

// cameraControllerImpl is the implementation of the CameraController interface.
type cameraControllerImpl struct {
	mu  *sync.Mutex
	cam Camera

	radius  float32
	azimuth float32
	polar   float32

	minAzimuth float32
	maxAzimuth float32
	minPolar   float32
	maxPolar   float32
	minRadius  float32
	maxRadius  float32

	rotateSpeed float32
	zoomSpeed   float32
	zoomEnabled bool
	enabled     bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController attaches an orbit controller to cam. The starting spherical
// coordinates come from the camera's current position relative to its target and are
// clamped to the configured ranges, which may move the camera.
//
// Parameters:
//   - cam: the camera to control
//   - options: variadic list of CameraControllerOption functions
//
// Returns:
//   - CameraController: the new controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		cam:         cam,
		minAzimuth:  float32(math.Inf(-1)),
		maxAzimuth:  float32(math.Inf(1)),
		minPolar:    0,
		maxPolar:    math.Pi,
		minRadius:   0,
		maxRadius:   float32(math.Inf(1)),
		rotateSpeed: 1,
		zoomSpeed:   0.95,
		zoomEnabled: true,
		enabled:     true,
	}
	for _, option := range options {
		option(cc)
	}

	pos, target := cam.Position(), cam.Target()
	dx, dy, dz := pos[0]-target[0], pos[1]-target[1], pos[2]-target[2]
	cc.radius = float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	if cc.radius > 0 {
		cc.azimuth = float32(math.Atan2(float64(dx), float64(dz)))
		cc.polar = float32(math.Acos(float64(common.Clamp(dy/cc.radius, -1, 1))))
	}
	cc.clamp()
	cc.apply()
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.cam
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Polar() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.polar
}

func (cc *cameraControllerImpl) AzimuthRange() (float32, float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minAzimuth, cc.maxAzimuth
}

func (cc *cameraControllerImpl) PolarRange() (float32, float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minPolar, cc.maxPolar
}

func (cc *cameraControllerImpl) Rotate(dAzimuth, dPolar float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.enabled {
		return
	}
	cc.azimuth += dAzimuth
	cc.polar += dPolar
	cc.clamp()
	cc.apply()
}

func (cc *cameraControllerImpl) Drag(dx, dy float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	cc.mu.Lock()
	speed := cc.rotateSpeed
	cc.mu.Unlock()

	h := float32(viewportHeight)
	cc.Rotate(-2*math.Pi*dx/h*speed, -2*math.Pi*dy/h*speed)
}

func (cc *cameraControllerImpl) Zoom(delta float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.enabled || !cc.zoomEnabled {
		return false
	}
	cc.radius *= float32(math.Pow(float64(cc.zoomSpeed), float64(delta)))
	cc.clamp()
	cc.apply()
	return true
}

func (cc *cameraControllerImpl) ZoomEnabled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomEnabled
}

func (cc *cameraControllerImpl) Enabled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.enabled
}

func (cc *cameraControllerImpl) SetEnabled(enabled bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.enabled = enabled
}

// clamp keeps the spherical coordinates inside the configured ranges. A tiny epsilon keeps
// the polar angle off the poles where the view matrix degenerates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clamp() {
	const eps = 1e-6
	cc.azimuth = common.Clamp(cc.azimuth, cc.minAzimuth, cc.maxAzimuth)
	cc.polar = common.Clamp(cc.polar, max(cc.minPolar, eps), min(cc.maxPolar, math.Pi-eps))
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
}

// apply moves the camera to the current spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) apply() {
	sinPolar := float32(math.Sin(float64(cc.polar)))
	cosPolar := float32(math.Cos(float64(cc.polar)))
	sinAzim := float32(math.Sin(float64(cc.azimuth)))
	cosAzim := float32(math.Cos(float64(cc.azimuth)))

	t := cc.cam.Target()
	cc.cam.SetPosition(
		t[0]+cc.radius*sinPolar*sinAzim,
		t[1]+cc.radius*cosPolar,
		t[2]+cc.radius*sinPolar*cosAzim,
	)
}
