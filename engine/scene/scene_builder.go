package scene

import (
	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/camera"
	"github.com/google/uuid"
)

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(n *nodeImpl)

// WithName sets the node's name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithName(name string) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.name = name
	}
}

// WithID replaces the generated identifier.
//
// Parameters:
//   - id: the identifier
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithID(id uuid.UUID) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.id = id
	}
}

// WithMesh attaches a mesh to the node.
//
// Parameters:
//   - mesh: the mesh
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMesh(mesh Mesh) NodeBuilderOption {
	return func(n *nodeImpl) {
		n.mesh = mesh
	}
}

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(s *sceneImpl)

// WithCamera attaches a camera at construction.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.cam = cam
	}
}

// WithAmbientColor sets the ambient color.
//
// Parameters:
//   - c: the ambient color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientColor(c common.Color) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.ambient = c
	}
}
