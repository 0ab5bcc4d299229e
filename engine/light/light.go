package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/common"
)

// LightType selects how a light's position and direction are interpreted.
type LightType int

const (
	// LightTypePoint emits in all directions from Position with inverse-square falloff.
	LightTypePoint LightType = iota

	// LightTypeDirectional emits parallel rays along Direction with no falloff.
	LightTypeDirectional
)

// String returns the lower-case name of the light type.
func (t LightType) String() string {
	switch t {
	case LightTypePoint:
		return "point"
	case LightTypeDirectional:
		return "directional"
	default:
		return "unknown"
	}
}

type lightImpl struct {
	mu         *sync.Mutex
	name       string
	lightType  LightType
	position   [3]float32
	direction  [3]float32
	color      common.Color
	intensity  float32
	lightRange float32
	enabled    bool
}

// Light is a light source added to a scene. Intensity is in the same units as the
// renderer's inverse-square falloff, so a point light of intensity I lights a surface at
// distance d with I/d².
// Thread-safe for concurrent access.
type Light interface {
	// Name returns the light's name, used in logs.
	Name() string

	// Type returns the light's type.
	Type() LightType

	// Position returns the light's position in world space. Ignored by directional lights.
	Position() [3]float32

	// Direction returns the direction light travels. Ignored by point lights.
	Direction() [3]float32

	// Color returns the light's color.
	Color() common.Color

	// Intensity returns the light's intensity.
	Intensity() float32

	// Range returns the distance beyond which a point light has no effect. Zero means unlimited.
	Range() float32

	// Enabled reports whether the renderer should include the light.
	Enabled() bool

	// SetPosition moves the light.
	//
	// Parameters:
	//   - x, y, z: the position in world space
	SetPosition(x, y, z float32)

	// SetColor changes the light's color.
	//
	// Parameters:
	//   - c: the new color
	SetColor(c common.Color)

	// SetIntensity changes the light's intensity.
	//
	// Parameters:
	//   - intensity: the new intensity
	SetIntensity(intensity float32)

	// SetEnabled turns the light on or off.
	//
	// Parameters:
	//   - enabled: whether the light contributes to shading
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a white light of intensity 1 at the origin.
//
// Parameters:
//   - lightType: the type of light
//   - opts: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		lightType: lightType,
		direction: [3]float32{0, -1, 0},
		color:     common.Color{1, 1, 1, 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewPointLight creates a point light, the kind the showcase uses.
//
// Parameters:
//   - hex: the 0xRRGGBB color
//   - intensity: the light intensity
//   - opts: further options, typically WithPosition
//
// Returns:
//   - Light: the new light
func NewPointLight(hex uint32, intensity float32, opts ...LightBuilderOption) Light {
	base := []LightBuilderOption{WithColor(common.ColorFromHex(hex)), WithIntensity(intensity)}
	return NewLight(LightTypePoint, append(base, opts...)...)
}

func (l *lightImpl) Name() string {
	return l.name
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Direction() [3]float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Color() common.Color {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Range() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lightRange
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetColor(c common.Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}
