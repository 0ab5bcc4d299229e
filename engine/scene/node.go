package scene

import (
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Node is a transformable element of the scene graph. Rotation is held as a quaternion;
// the Euler view of it (XYZ order) is cached when set directly so reads return exactly
// what was written.
type Node interface {
	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uuid.UUID: the identifier, stable for the node's lifetime
	ID() uuid.UUID

	// Name returns the node's name, which may be empty and need not be unique.
	Name() string

	// Parent returns the node this node is attached to, or nil.
	Parent() Node

	// Children returns a copy of the node's direct children in insertion order.
	Children() []Node

	// Add attaches child to this node, detaching it from any previous parent first.
	// Adding nil or the node itself is ignored.
	//
	// Parameters:
	//   - child: the node to attach
	Add(child Node)

	// Remove detaches child from this node.
	//
	// Parameters:
	//   - child: the node to detach
	//
	// Returns:
	//   - bool: false if child was not a direct child of this node
	Remove(child Node) bool

	// Position returns the local translation.
	Position() mgl32.Vec3

	// SetPosition sets the local translation.
	SetPosition(x, y, z float32)

	// Rotation returns the local rotation as XYZ Euler angles in radians.
	Rotation() mgl32.Vec3

	// SetRotation sets the local rotation from XYZ Euler angles in radians.
	SetRotation(x, y, z float32)

	// Quaternion returns the local rotation.
	Quaternion() mgl32.Quat

	// SetQuaternion sets the local rotation. The quaternion is normalized.
	SetQuaternion(q mgl32.Quat)

	// Scale returns the local scale.
	Scale() mgl32.Vec3

	// SetScale sets the local scale.
	SetScale(x, y, z float32)

	// SetMatrix decomposes a local TRS matrix into translation, rotation and scale.
	//
	// Parameters:
	//   - m: a column-major affine matrix without shear
	SetMatrix(m mgl32.Mat4)

	// LocalMatrix returns translation * rotation * scale.
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns the product of every ancestor's local matrix and this node's.
	WorldMatrix() mgl32.Mat4

	// Mesh returns the node's mesh, or nil for pure transform nodes.
	Mesh() Mesh

	// SetMesh attaches a mesh to the node.
	SetMesh(mesh Mesh)

	// Traverse visits this node and its descendants depth-first, parents before children.
	// Returning false from fn skips the visited node's children.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(n Node) bool)

	// FindByName returns the first node in Traverse order with the given name.
	//
	// Returns:
	//   - Node: the match, or nil
	FindByName(name string) Node

	setParent(parent Node)
}

// nodeImpl is the implementation of the Node interface.
type nodeImpl struct {
	id       uuid.UUID
	name     string
	parent   Node
	children []Node
	mesh     Mesh

	position   mgl32.Vec3
	quaternion mgl32.Quat
	scale      mgl32.Vec3

	euler      mgl32.Vec3
	eulerValid bool
}

var _ Node = &nodeImpl{}

// NewNode creates a Node at the origin with identity rotation and unit scale.
//
// Parameters:
//   - options: variadic list of NodeBuilderOption functions
//
// Returns:
//   - Node: the new node
func NewNode(options ...NodeBuilderOption) Node {
	n := &nodeImpl{
		id:         uuid.New(),
		quaternion: mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		eulerValid: true,
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *nodeImpl) ID() uuid.UUID {
	return n.id
}

func (n *nodeImpl) Name() string {
	return n.name
}

func (n *nodeImpl) Parent() Node {
	return n.parent
}

func (n *nodeImpl) Children() []Node {
	return slices.Clone(n.children)
}

func (n *nodeImpl) Add(child Node) {
	if child == nil || child == Node(n) {
		return
	}
	if old := child.Parent(); old != nil {
		old.Remove(child)
	}
	n.children = append(n.children, child)
	child.setParent(n)
}

func (n *nodeImpl) Remove(child Node) bool {
	idx := slices.Index(n.children, child)
	if idx < 0 {
		return false
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	child.setParent(nil)
	return true
}

func (n *nodeImpl) setParent(parent Node) {
	n.parent = parent
}

func (n *nodeImpl) Position() mgl32.Vec3 {
	return n.position
}

func (n *nodeImpl) SetPosition(x, y, z float32) {
	n.position = mgl32.Vec3{x, y, z}
}

func (n *nodeImpl) Rotation() mgl32.Vec3 {
	if !n.eulerValid {
		n.euler = quatToEulerXYZ(n.quaternion)
		n.eulerValid = true
	}
	return n.euler
}

func (n *nodeImpl) SetRotation(x, y, z float32) {
	n.euler = mgl32.Vec3{x, y, z}
	n.eulerValid = true
	n.quaternion = eulerXYZToQuat(x, y, z)
}

func (n *nodeImpl) Quaternion() mgl32.Quat {
	return n.quaternion
}

func (n *nodeImpl) SetQuaternion(q mgl32.Quat) {
	if q.Len() == 0 {
		q = mgl32.QuatIdent()
	}
	n.quaternion = q.Normalize()
	n.eulerValid = false
}

func (n *nodeImpl) Scale() mgl32.Vec3 {
	return n.scale
}

func (n *nodeImpl) SetScale(x, y, z float32) {
	n.scale = mgl32.Vec3{x, y, z}
}

func (n *nodeImpl) SetMatrix(m mgl32.Mat4) {
	n.position = m.Col(3).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}
	n.scale = mgl32.Vec3{sx, sy, sz}

	rot := mgl32.Ident4()
	if sx != 0 && sy != 0 && sz != 0 {
		rot.SetCol(0, m.Col(0).Mul(1/sx))
		rot.SetCol(1, m.Col(1).Mul(1/sy))
		rot.SetCol(2, m.Col(2).Mul(1/sz))
		rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	}
	n.SetQuaternion(mgl32.Mat4ToQuat(rot))
}

func (n *nodeImpl) LocalMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(n.position[0], n.position[1], n.position[2]).
		Mul4(n.quaternion.Mat4()).
		Mul4(mgl32.Scale3D(n.scale[0], n.scale[1], n.scale[2]))
}

func (n *nodeImpl) WorldMatrix() mgl32.Mat4 {
	if n.parent == nil {
		return n.LocalMatrix()
	}
	return n.parent.WorldMatrix().Mul4(n.LocalMatrix())
}

func (n *nodeImpl) Mesh() Mesh {
	return n.mesh
}

func (n *nodeImpl) SetMesh(mesh Mesh) {
	n.mesh = mesh
}

func (n *nodeImpl) Traverse(fn func(n Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Traverse(fn)
	}
}

func (n *nodeImpl) FindByName(name string) Node {
	var found Node
	n.Traverse(func(c Node) bool {
		if found != nil {
			return false
		}
		if c.Name() == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// eulerXYZToQuat composes rotations about X, then Y, then Z in the intrinsic XYZ order,
// matching R = Rx * Ry * Rz.
func eulerXYZToQuat(x, y, z float32) mgl32.Quat {
	qx := mgl32.QuatRotate(x, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(y, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(z, mgl32.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz)
}

// quatToEulerXYZ is the inverse of eulerXYZToQuat. Near the gimbal-lock pole the Z angle
// is folded into X.
func quatToEulerXYZ(q mgl32.Quat) mgl32.Vec3 {
	m := q.Mat4()
	m13 := m.At(0, 2)
	y := float32(math.Asin(float64(common.Clamp(m13, -1, 1))))
	if float32(math.Abs(float64(m13))) < 0.9999999 {
		x := float32(math.Atan2(float64(-m.At(1, 2)), float64(m.At(2, 2))))
		z := float32(math.Atan2(float64(-m.At(0, 1)), float64(m.At(0, 0))))
		return mgl32.Vec3{x, y, z}
	}
	x := float32(math.Atan2(float64(m.At(2, 1)), float64(m.At(1, 1))))
	return mgl32.Vec3{x, y, 0}
}
