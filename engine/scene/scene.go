package scene

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/camera"
	"github.com/Carmen-Shannon/oxy-showcase/engine/light"
)

// Scene is the root of a scene graph. Top-level nodes are added with the embedded Node
// methods; the camera and the lights are held in their own slots so that Children only
// lists content nodes.
type Scene interface {
	Node

	// Camera returns the camera attached to the scene, or nil.
	Camera() camera.Camera

	// SetCamera attaches a camera to the scene.
	//
	// Parameters:
	//   - cam: the camera
	SetCamera(cam camera.Camera)

	// AddLight adds a light. Adding the same light twice has no effect.
	//
	// Parameters:
	//   - l: the light
	AddLight(l light.Light)

	// RemoveLight removes a light.
	//
	// Parameters:
	//   - l: the light
	//
	// Returns:
	//   - bool: false if the light was not in the scene
	RemoveLight(l light.Light) bool

	// Lights returns a copy of the scene's lights in insertion order.
	Lights() []light.Light

	// AmbientColor returns the color added to every lit surface.
	AmbientColor() common.Color

	// SetAmbientColor sets the ambient color.
	SetAmbientColor(c common.Color)
}

// sceneImpl is the implementation of the Scene interface.
type sceneImpl struct {
	*nodeImpl

	mu      *sync.Mutex
	cam     camera.Camera
	lights  []light.Light
	ambient common.Color
}

var _ Scene = &sceneImpl{}

// NewScene creates an empty scene.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &sceneImpl{
		nodeImpl: NewNode(WithName("scene")).(*nodeImpl),
		mu:       &sync.Mutex{},
		ambient:  common.Color{0.05, 0.05, 0.05, 1},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Add attaches a top-level node. It is redeclared so that the child's parent is the
// Scene itself rather than the embedded node.
func (s *sceneImpl) Add(child Node) {
	if child == nil || child == Node(s) {
		return
	}
	if old := child.Parent(); old != nil {
		old.Remove(child)
	}
	s.children = append(s.children, child)
	child.setParent(s)
}

func (s *sceneImpl) Traverse(fn func(n Node) bool) {
	if !fn(s) {
		return
	}
	for _, c := range s.Children() {
		c.Traverse(fn)
	}
}

func (s *sceneImpl) FindByName(name string) Node {
	if s.name == name {
		return s
	}
	for _, c := range s.Children() {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

func (s *sceneImpl) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *sceneImpl) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *sceneImpl) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil || slices.Contains(s.lights, l) {
		return
	}
	s.lights = append(s.lights, l)
}

func (s *sceneImpl) RemoveLight(l light.Light) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.Index(s.lights, l)
	if idx < 0 {
		return false
	}
	s.lights = slices.Delete(s.lights, idx, idx+1)
	return true
}

func (s *sceneImpl) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lights)
}

func (s *sceneImpl) AmbientColor() common.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ambient
}

func (s *sceneImpl) SetAmbientColor(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = c
}
