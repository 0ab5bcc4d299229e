package common

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Identity resets a 4x4 column-major matrix (flat slice) to the identity matrix.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Clamp limits v to the closed range [low, high].
//
// Parameters:
//   - v: the value to clamp
//   - low: the lower bound
//   - high: the upper bound
//
// Returns:
//   - T: low if v < low, high if v > high, v otherwise
func Clamp[T constraints.Ordered](v, low, high T) T {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// SliceToBytes returns a byte view of a slice for GPU buffer uploads.
// The returned slice shares memory with the input.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
}

// Mul4 multiplies two column-major 4x4 matrices: out = a * b.
// out may alias a or b.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective writes a perspective projection mapping depth into the WebGPU clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// LookAt writes a right-handed view matrix for an eye looking at center.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - center: the point being looked at
//   - up: the up direction, typically (0, 1, 0)
func LookAt(out []float32, eye, center, up [3]float32) {
	z := normalize3([3]float32{eye[0] - center[0], eye[1] - center[1], eye[2] - center[2]})
	x := normalize3(cross3(up, z))
	y := cross3(z, x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -dot3(x, eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -dot3(y, eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -dot3(z, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

func dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize3(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(dot3(v, v))))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
