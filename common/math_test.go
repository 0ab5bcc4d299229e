package common

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name            string
		v, low, high, w float32
	}{
		{"inside", 0.5, 0, 1, 0.5},
		{"below", -2, 0, 1, 0},
		{"above", 3, 0, 1, 1},
		{"on bound", 1, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.low, tt.high); got != tt.w {
				t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.low, tt.high, got, tt.w)
			}
		})
	}
	if got := Clamp(7, 1, 5); got != 5 {
		t.Fatalf("Clamp int = %d", got)
	}
}

func TestMul4ComposesTranslations(t *testing.T) {
	a := make([]float32, 16)
	b := make([]float32, 16)
	Identity(a)
	Identity(b)
	a[12], a[13], a[14] = 1, 2, 3
	b[12], b[13], b[14] = 4, 5, 6

	out := make([]float32, 16)
	Mul4(out, a, b)
	if out[12] != 5 || out[13] != 7 || out[14] != 9 || out[15] != 1 {
		t.Fatalf("translation = %v", out[12:])
	}

	// aliasing the output with an input is allowed
	Mul4(a, a, b)
	for i := range out {
		if a[i] != out[i] {
			t.Fatalf("aliased result[%d] = %v, want %v", i, a[i], out[i])
		}
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	m := make([]float32, 16)
	near, far := float32(0.1), float32(1000)
	Perspective(m, math.Pi/4, 16.0/9.0, near, far)

	depth := func(z float32) float32 {
		clipZ := m[10]*z + m[14]
		clipW := m[11] * z
		return clipZ / clipW
	}
	if d := depth(-near); math.Abs(float64(d)) > 1e-4 {
		t.Errorf("near plane depth = %v, want 0", d)
	}
	if d := depth(-far); math.Abs(float64(d-1)) > 1e-4 {
		t.Errorf("far plane depth = %v, want 1", d)
	}
}

func TestLookAtFromOrigin(t *testing.T) {
	m := make([]float32, 16)
	LookAt(m, [3]float32{0, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0})
	id := make([]float32, 16)
	Identity(id)
	for i := range m {
		if math.Abs(float64(m[i]-id[i])) > 1e-6 {
			t.Fatalf("view[%d] = %v, want %v", i, m[i], id[i])
		}
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	// looking down -Z from the origin, so view is identity and viewProj is the projection
	vp := make([]float32, 16)
	Perspective(vp, math.Pi/2, 1, 1, 10)
	f := FrustumFromViewProjection(vp)

	tests := []struct {
		name   string
		center [3]float32
		radius float32
		want   bool
	}{
		{"in front", [3]float32{0, 0, -5}, 0.5, true},
		{"behind camera", [3]float32{0, 0, 5}, 0.5, false},
		{"past far plane", [3]float32{0, 0, -20}, 1, false},
		{"off to the right", [3]float32{20, 0, -5}, 1, false},
		{"straddling near plane", [3]float32{0, 0, -0.5}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectsSphere(tt.center, tt.radius); got != tt.want {
				t.Fatalf("IntersectsSphere(%v, %v) = %v, want %v", tt.center, tt.radius, got, tt.want)
			}
		})
	}
}

func TestByteViews(t *testing.T) {
	if SliceToBytes([]float32{}) != nil {
		t.Fatal("empty slice should give nil")
	}
	if got := len(SliceToBytes([]float32{1, 2, 3})); got != 12 {
		t.Fatalf("len = %d, want 12", got)
	}
	v := struct{ A, B float32 }{1, 2}
	if got := len(StructToBytes(&v)); got != 8 {
		t.Fatalf("len = %d, want 8", got)
	}
}

func TestColorFromHex(t *testing.T) {
	if got := ColorFromHex(0xff0000); got != (Color{1, 0, 0, 1}) {
		t.Errorf("red = %v", got)
	}
	if got := ColorFromHex(0x0000ff); got != (Color{0, 0, 1, 1}) {
		t.Errorf("blue = %v", got)
	}
	if got := ColorFromHex(0x0000ff).Scale(0.5); got != (Color{0, 0, 0.5, 1}) {
		t.Errorf("scaled = %v", got)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "a", "b"); got != "a" {
		t.Errorf("Coalesce = %q", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("Coalesce = %q", got)
	}
}
