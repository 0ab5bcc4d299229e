package scene

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/common"
)

// Vertex is the interleaved vertex layout shared by the loader and the renderer backends.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// Disposable is a resource that can release what it holds exactly once.
type Disposable interface {
	// Dispose releases the resource. Calling it again has no effect.
	Dispose()

	// Disposed reports whether Dispose has run.
	Disposed() bool

	// OnDispose registers fn to run when the resource is disposed. Renderers use it to free
	// the GPU buffers they created for the resource. If the resource is already disposed
	// fn runs immediately.
	//
	// Parameters:
	//   - fn: the release hook
	OnDispose(fn func())
}

// Geometry is an indexed triangle list.
type Geometry interface {
	Disposable

	// Vertices returns the vertex data. Callers must not modify it.
	Vertices() []Vertex

	// Indices returns the triangle indices. Callers must not modify it.
	Indices() []uint32

	// TriangleCount returns len(Indices())/3.
	TriangleCount() int

	// BoundingSphere returns a sphere in local space enclosing every vertex.
	//
	// Returns:
	//   - [3]float32: the sphere center
	//   - float32: the sphere radius
	BoundingSphere() ([3]float32, float32)
}

// Material describes how a surface is shaded.
type Material interface {
	Disposable

	// Name returns the material's name.
	Name() string

	// Color returns the base color, already tinted by any decoded base color texture.
	Color() common.Color

	// SetColor replaces the base color.
	SetColor(c common.Color)

	// DoubleSided reports whether back faces are drawn.
	DoubleSided() bool
}

// Mesh pairs a geometry with its materials.
type Mesh interface {
	// Geometry returns the mesh's geometry.
	Geometry() Geometry

	// Materials returns the mesh's materials. Most meshes have exactly one.
	Materials() []Material

	// Dispose disposes the geometry and every material.
	Dispose()
}

// disposer implements Disposable and is embedded by the resource types.
type disposer struct {
	mu       *sync.Mutex
	disposed bool
	hooks    []func()
}

func newDisposer() disposer {
	return disposer{mu: &sync.Mutex{}}
}

func (d *disposer) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	hooks := d.hooks
	d.hooks = nil
	d.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (d *disposer) Disposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

func (d *disposer) OnDispose(fn func()) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		fn()
		return
	}
	d.hooks = append(d.hooks, fn)
	d.mu.Unlock()
}

type geometryImpl struct {
	disposer
	vertices []Vertex
	indices  []uint32
	center   [3]float32
	radius   float32
}

var _ Geometry = &geometryImpl{}

// NewGeometry creates an indexed geometry. When indices is nil the vertices are taken as a
// plain triangle list.
//
// Parameters:
//   - vertices: the vertex data
//   - indices: the triangle indices, or nil
//
// Returns:
//   - Geometry: the geometry
func NewGeometry(vertices []Vertex, indices []uint32) Geometry {
	if indices == nil {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	g := &geometryImpl{
		disposer: newDisposer(),
		vertices: vertices,
		indices:  indices,
	}
	g.center, g.radius = boundingSphere(vertices)
	return g
}

func (g *geometryImpl) Vertices() []Vertex {
	return g.vertices
}

func (g *geometryImpl) Indices() []uint32 {
	return g.indices
}

func (g *geometryImpl) TriangleCount() int {
	return len(g.indices) / 3
}

func (g *geometryImpl) BoundingSphere() ([3]float32, float32) {
	return g.center, g.radius
}

// boundingSphere centers the sphere on the axis-aligned bounds, which is not minimal but is
// stable and cheap.
func boundingSphere(vertices []Vertex) ([3]float32, float32) {
	if len(vertices) == 0 {
		return [3]float32{}, 0
	}
	lo, hi := vertices[0].Position, vertices[0].Position
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	center := [3]float32{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2, (lo[2] + hi[2]) / 2}
	var r2 float32
	for _, v := range vertices {
		dx, dy, dz := v.Position[0]-center[0], v.Position[1]-center[1], v.Position[2]-center[2]
		r2 = max(r2, dx*dx+dy*dy+dz*dz)
	}
	return center, float32(math.Sqrt(float64(r2)))
}

type materialImpl struct {
	disposer
	name        string
	color       common.Color
	doubleSided bool
}

var _ Material = &materialImpl{}

// NewMaterial creates a flat material.
//
// Parameters:
//   - name: the material name
//   - color: the base color
//   - doubleSided: whether back faces are drawn
//
// Returns:
//   - Material: the material
func NewMaterial(name string, color common.Color, doubleSided bool) Material {
	return &materialImpl{
		disposer:    newDisposer(),
		name:        name,
		color:       color,
		doubleSided: doubleSided,
	}
}

func (m *materialImpl) Name() string {
	return m.name
}

func (m *materialImpl) Color() common.Color {
	return m.color
}

func (m *materialImpl) SetColor(c common.Color) {
	m.color = c
}

func (m *materialImpl) DoubleSided() bool {
	return m.doubleSided
}

type meshImpl struct {
	geometry  Geometry
	materials []Material
}

var _ Mesh = &meshImpl{}

// NewMesh pairs a geometry with materials.
//
// Parameters:
//   - geometry: the mesh geometry
//   - materials: one or more materials
//
// Returns:
//   - Mesh: the mesh
func NewMesh(geometry Geometry, materials ...Material) Mesh {
	return &meshImpl{geometry: geometry, materials: materials}
}

func (m *meshImpl) Geometry() Geometry {
	return m.geometry
}

func (m *meshImpl) Materials() []Material {
	return m.materials
}

func (m *meshImpl) Dispose() {
	if m.geometry != nil {
		m.geometry.Dispose()
	}
	for _, mat := range m.materials {
		mat.Dispose()
	}
}

// DisposeHierarchy disposes the mesh of root and of every descendant. Shared geometries
// and materials are disposed once.
//
// Parameters:
//   - root: the top of the subtree to release
//
// Returns:
//   - int: the number of meshes visited
func DisposeHierarchy(root Node) int {
	if root == nil {
		return 0
	}
	count := 0
	root.Traverse(func(n Node) bool {
		if m := n.Mesh(); m != nil {
			m.Dispose()
			count++
		}
		return true
	})
	return count
}
