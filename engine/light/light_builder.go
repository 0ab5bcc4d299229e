package light

import (
	"math"

	"github.com/Carmen-Shannon/oxy-showcase/common"
)

// LightBuilderOption is a functional option for configuring a Light.
type LightBuilderOption func(*lightImpl)

// WithName sets the light's name.
//
// Parameters:
//   - name: the name used in logs
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithName(name string) LightBuilderOption {
	return func(l *lightImpl) {
		l.name = name
	}
}

// WithPosition sets the light's position.
//
// Parameters:
//   - x, y, z: the position in world space
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithDirection sets the direction a directional light travels. The vector is normalized.
//
// Parameters:
//   - x, y, z: the direction
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
		if length > 0 {
			l.direction = [3]float32{x / length, y / length, z / length}
		}
	}
}

// WithColor sets the light's color.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithColor(c common.Color) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithIntensity sets the light's intensity.
//
// Parameters:
//   - intensity: the intensity
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange limits a point light's reach. Zero means unlimited.
//
// Parameters:
//   - lightRange: the cutoff distance
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithEnabled sets whether the light starts enabled.
//
// Parameters:
//   - enabled: whether the light contributes to shading
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
