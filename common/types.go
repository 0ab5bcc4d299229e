// package common contains small value types and math helpers shared across the engine packages.
package common

// Color is a linear RGBA color with components in [0, 1].
type Color [4]float32

// Transparent is the fully transparent black clear color.
var Transparent = Color{0, 0, 0, 0}

// ColorFromHex converts a 0xRRGGBB value into an opaque Color.
//
// Parameters:
//   - hex: the packed 24-bit color
//
// Returns:
//   - Color: the color with alpha set to 1
func ColorFromHex(hex uint32) Color {
	return Color{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
		1,
	}
}

// Scale returns the color's RGB multiplied by s, keeping alpha.
func (c Color) Scale(s float32) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s, c[3]}
}
