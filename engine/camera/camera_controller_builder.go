package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithAzimuthRange limits the horizontal angle.
//
// Parameters:
//   - minAzimuth: the smallest allowed azimuth in radians
//   - maxAzimuth: the largest allowed azimuth in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth range
func WithAzimuthRange(minAzimuth, maxAzimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minAzimuth = minAzimuth
		cc.maxAzimuth = maxAzimuth
	}
}

// WithPolarRange limits the angle from +Y. π/2 is the horizon.
//
// Parameters:
//   - minPolar: the smallest allowed polar angle in radians
//   - maxPolar: the largest allowed polar angle in radians
//
// Returns:
//   - CameraControllerOption: functional option to set the polar range
func WithPolarRange(minPolar, maxPolar float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minPolar = minPolar
		cc.maxPolar = maxPolar
	}
}

// WithRadiusRange limits how close and how far Zoom may move the camera.
//
// Parameters:
//   - minRadius: the closest allowed distance to the target
//   - maxRadius: the farthest allowed distance to the target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius range
func WithRadiusRange(minRadius, maxRadius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = minRadius
		cc.maxRadius = maxRadius
	}
}

// WithZoom turns zooming on or off.
//
// Parameters:
//   - enabled: whether Zoom has any effect
//
// Returns:
//   - CameraControllerOption: functional option to set zoom
func WithZoom(enabled bool) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomEnabled = enabled
	}
}

// WithRotateSpeed scales how far a pointer drag rotates the camera.
//
// Parameters:
//   - speed: the multiplier, 1 by default
//
// Returns:
//   - CameraControllerOption: functional option to set the rotate speed
func WithRotateSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotateSpeed = speed
	}
}
