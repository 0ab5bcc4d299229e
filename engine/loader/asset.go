package loader

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/engine/animator"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
)

// Asset is an imported model: a node hierarchy with meshes plus the animation clips
// that target its nodes.
type Asset struct {
	// Name is the base name of the source URL.
	Name string
	// Root is the top of the imported hierarchy; attach it to a scene.
	Root scene.Node
	// Clips holds every animation in the file, in file order.
	Clips []*animator.Clip

	disposeOnce sync.Once
}

// Dispose releases every mesh in the hierarchy, detaching the root from its parent
// first. Safe to call more than once.
//
// Returns:
//   - int: the number of meshes disposed by the first call; 0 afterwards
func (a *Asset) Dispose() int {
	n := 0
	a.disposeOnce.Do(func() {
		if a.Root == nil {
			return
		}
		if parent := a.Root.Parent(); parent != nil {
			parent.Remove(a.Root)
		}
		n = scene.DisposeHierarchy(a.Root)
	})
	return n
}

// MeshCount returns the number of meshes in the hierarchy.
//
// Returns:
//   - int: mesh count
func (a *Asset) MeshCount() int {
	n := 0
	if a.Root == nil {
		return 0
	}
	a.Root.Traverse(func(node scene.Node) bool {
		if node.Mesh() != nil {
			n++
		}
		return true
	})
	return n
}
