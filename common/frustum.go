package common

import (
	"math"
)

// Plane is ax + by + cz + d = 0 with (a, b, c) stored in Normal and d in Distance.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six inward-facing planes of a view volume.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromViewProjection extracts normalized frustum planes from a column-major
// view-projection matrix using the Gribb/Hartmann method.
//
// The near plane is taken from row 2 alone because the projection maps depth into [0, 1].
//
// Parameters:
//   - viewProj: 16 float32 values representing projection * view (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with unit-length plane normals
func FrustumFromViewProjection(viewProj []float32) Frustum {
	row := func(r int) [4]float32 {
		return [4]float32{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combos := [6][4]float32{}
	for i := 0; i < 4; i++ {
		combos[0][i] = r3[i] + r0[i]
		combos[1][i] = r3[i] - r0[i]
		combos[2][i] = r3[i] + r1[i]
		combos[3][i] = r3[i] - r1[i]
		combos[4][i] = r2[i]
		combos[5][i] = r3[i] - r2[i]
	}

	var f Frustum
	for i, c := range combos {
		p := Plane{Normal: [3]float32{c[0], c[1], c[2]}, Distance: c[3]}
		if l := float32(math.Sqrt(float64(dot3(p.Normal, p.Normal)))); l > 0 {
			p.Normal = [3]float32{p.Normal[0] / l, p.Normal[1] / l, p.Normal[2] / l}
			p.Distance /= l
		}
		f.Planes[i] = p
	}
	return f
}

// IntersectsSphere reports whether a bounding sphere is at least partially inside the frustum.
//
// Parameters:
//   - center: the sphere center in world space
//   - radius: the sphere radius
//
// Returns:
//   - bool: false only when the sphere lies entirely behind one of the planes
func (f Frustum) IntersectsSphere(center [3]float32, radius float32) bool {
	for _, p := range f.Planes {
		if dot3(p.Normal, center)+p.Distance < -radius {
			return false
		}
	}
	return true
}
