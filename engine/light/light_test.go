package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-showcase/common"
)

func TestNewPointLight(t *testing.T) {
	l := NewPointLight(0xff0000, 150, WithPosition(0, 10, 0), WithName("key"))
	if l.Type() != LightTypePoint {
		t.Fatalf("Type = %v", l.Type())
	}
	if l.Color() != (common.Color{1, 0, 0, 1}) {
		t.Fatalf("Color = %v", l.Color())
	}
	if l.Intensity() != 150 {
		t.Fatalf("Intensity = %v", l.Intensity())
	}
	if l.Position() != [3]float32{0, 10, 0} {
		t.Fatalf("Position = %v", l.Position())
	}
	if l.Name() != "key" || !l.Enabled() {
		t.Fatalf("Name = %q Enabled = %v", l.Name(), l.Enabled())
	}
}

func TestWithDirectionNormalizes(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(0, -3, 4))
	d := l.Direction()
	if d != [3]float32{0, -0.6, 0.8} {
		t.Fatalf("Direction = %v", d)
	}
}

func TestSetters(t *testing.T) {
	l := NewLight(LightTypePoint)
	l.SetEnabled(false)
	l.SetIntensity(3)
	l.SetColor(common.ColorFromHex(0x0000ff))
	l.SetPosition(1, 2, 3)
	if l.Enabled() || l.Intensity() != 3 || l.Color()[2] != 1 || l.Position()[2] != 3 {
		t.Fatal("setters did not apply")
	}
	if LightTypeDirectional.String() != "directional" {
		t.Fatal("LightType.String")
	}
}
