package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/animator"
	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	parser gltfParser

	nodes      []scene.Node
	materials  []scene.Material
	fallback   scene.Material
	geometries map[[2]int]scene.Geometry
}

// gltfImporter turns a parsed glTF document into an Asset: a scene graph of nodes with
// meshes, flat-tinted materials, and node-targeted animation clips.
type gltfImporter interface {
	// Import parses data and builds the asset.
	//
	// Parameters:
	//   - name: the asset name, used for the root node
	//   - data: the glTF JSON or GLB payload
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if parsing or import fails
	Import(name string, data []byte) (*Asset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - resolve: resolver for external buffer and image URIs
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(resolve resourceResolver) gltfImporter {
	return &gltfImporterImpl{
		parser:     newGLTFParser(resolve),
		geometries: make(map[[2]int]scene.Geometry),
	}
}

func (imp *gltfImporterImpl) Import(name string, data []byte) (*Asset, error) {
	if err := imp.parser.Parse(data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	doc := imp.parser.Document()
	for _, ext := range doc.ExtensionsRequired {
		if ext != "EXT_texture_webp" {
			return nil, fmt.Errorf("required extension %q is not supported", ext)
		}
	}

	imp.importMaterials(doc)

	imp.nodes = make([]scene.Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		imp.nodes[i] = scene.NewNode(scene.WithName(n.Name))
	}
	for i, n := range doc.Nodes {
		if err := imp.importNode(doc, i, n); err != nil {
			return nil, err
		}
	}

	root := scene.NewNode(scene.WithName(name))
	for _, idx := range imp.rootNodes(doc) {
		root.Add(imp.nodes[idx])
	}

	clips := make([]*animator.Clip, 0, len(doc.Animations))
	for i, anim := range doc.Animations {
		clip, err := imp.importAnimation(i, anim)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}

	return &Asset{Name: name, Root: root, Clips: clips}, nil
}

// rootNodes returns the top-level node indices of the default scene, or every node
// that is nobody's child when the file declares no scenes.
func (imp *gltfImporterImpl) rootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		var out []int
		for _, idx := range doc.Scenes[s].Nodes {
			if idx >= 0 && idx < len(imp.nodes) {
				out = append(out, idx)
			}
		}
		return out
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var out []int
	for i, child := range isChild {
		if !child {
			out = append(out, i)
		}
	}
	return out
}

func (imp *gltfImporterImpl) importNode(doc *gltfDocument, index int, n gltfNode) error {
	node := imp.nodes[index]

	switch {
	case n.Matrix != nil:
		node.SetMatrix(mgl32.Mat4(*n.Matrix))
	default:
		if t := n.Translation; t != nil {
			node.SetPosition(t[0], t[1], t[2])
		}
		if r := n.Rotation; r != nil {
			node.SetQuaternion(mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}})
		}
		if s := n.Scale; s != nil {
			node.SetScale(s[0], s[1], s[2])
		}
	}

	for _, c := range n.Children {
		if c < 0 || c >= len(imp.nodes) || c == index {
			return fmt.Errorf("node %d has invalid child %d", index, c)
		}
		if imp.nodes[c].Parent() != nil {
			return fmt.Errorf("node %d is the child of more than one node", c)
		}
		node.Add(imp.nodes[c])
	}

	if n.Mesh == nil {
		return nil
	}
	if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
		return fmt.Errorf("node %d references missing mesh %d", index, *n.Mesh)
	}
	meshes, err := imp.importMesh(doc, *n.Mesh)
	if err != nil {
		return err
	}
	switch len(meshes) {
	case 0:
	case 1:
		node.SetMesh(meshes[0])
	default:
		// One child per primitive so each keeps its own material.
		for p, m := range meshes {
			node.Add(scene.NewNode(
				scene.WithName(fmt.Sprintf("%s_primitive_%d", node.Name(), p)),
				scene.WithMesh(m),
			))
		}
	}
	return nil
}

func (imp *gltfImporterImpl) importMesh(doc *gltfDocument, meshIndex int) ([]scene.Mesh, error) {
	var out []scene.Mesh
	for p, prim := range doc.Meshes[meshIndex].Primitives {
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			logger.Warn("skipping mesh %d primitive %d: mode %d is not triangles", meshIndex, p, *prim.Mode)
			continue
		}
		key := [2]int{meshIndex, p}
		geom, ok := imp.geometries[key]
		if !ok {
			var err error
			geom, err = imp.importGeometry(prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, p, err)
			}
			imp.geometries[key] = geom
		}

		mat := imp.fallbackMaterial()
		if prim.Material != nil {
			if *prim.Material < 0 || *prim.Material >= len(imp.materials) {
				return nil, fmt.Errorf("mesh %d primitive %d references missing material %d", meshIndex, p, *prim.Material)
			}
			mat = imp.materials[*prim.Material]
		}
		out = append(out, scene.NewMesh(geom, mat))
	}
	return out, nil
}

func (imp *gltfImporterImpl) importGeometry(prim gltfPrimitive) (scene.Geometry, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := imp.parser.ReadFloats(posIdx, 3)
	if err != nil {
		return nil, fmt.Errorf("POSITION: %w", err)
	}
	count := len(positions) / 3

	var normals, uvs []float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = imp.parser.ReadFloats(idx, 3); err != nil {
			return nil, fmt.Errorf("NORMAL: %w", err)
		}
		if len(normals) != len(positions) {
			return nil, fmt.Errorf("NORMAL count %d does not match POSITION count %d", len(normals)/3, count)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = imp.parser.ReadFloats(idx, 2); err != nil {
			return nil, fmt.Errorf("TEXCOORD_0: %w", err)
		}
		if len(uvs)/2 != count {
			uvs = nil
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = imp.parser.ReadIndices(*prim.Indices); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= count {
				return nil, fmt.Errorf("index %d out of range for %d vertices", i, count)
			}
		}
	}

	vertices := make([]scene.Vertex, count)
	for i := range vertices {
		v := &vertices[i]
		v.Position = [3]float32{positions[i*3], positions[i*3+1], positions[i*3+2]}
		if normals != nil {
			v.Normal = [3]float32{normals[i*3], normals[i*3+1], normals[i*3+2]}
		}
		if uvs != nil {
			v.UV = [2]float32{uvs[i*2], uvs[i*2+1]}
		}
	}
	if normals == nil {
		computeNormals(vertices, indices)
	}
	return scene.NewGeometry(vertices, indices), nil
}

// computeNormals fills smooth vertex normals by summing area-weighted face normals.
func computeNormals(vertices []scene.Vertex, indices []uint32) {
	tri := func(t int) (uint32, uint32, uint32) {
		if indices != nil {
			return indices[t*3], indices[t*3+1], indices[t*3+2]
		}
		return uint32(t * 3), uint32(t*3 + 1), uint32(t*3 + 2)
	}
	n := len(vertices) / 3
	if indices != nil {
		n = len(indices) / 3
	}
	acc := make([]mgl32.Vec3, len(vertices))
	for t := 0; t < n; t++ {
		a, b, c := tri(t)
		pa, pb, pc := mgl32.Vec3(vertices[a].Position), mgl32.Vec3(vertices[b].Position), mgl32.Vec3(vertices[c].Position)
		face := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(face)
		acc[b] = acc[b].Add(face)
		acc[c] = acc[c].Add(face)
	}
	for i, v := range acc {
		if v.Len() > 0 {
			vertices[i].Normal = v.Normalize()
		} else {
			vertices[i].Normal = [3]float32{0, 1, 0}
		}
	}
}

func (imp *gltfImporterImpl) fallbackMaterial() scene.Material {
	if imp.fallback == nil {
		imp.fallback = scene.NewMaterial("default", common.Color{1, 1, 1, 1}, false)
	}
	return imp.fallback
}

// importMaterials builds one flat material per glTF material. The color is the base
// color factor multiplied by the mean texel of the base color texture, if any.
func (imp *gltfImporterImpl) importMaterials(doc *gltfDocument) {
	imp.materials = make([]scene.Material, len(doc.Materials))
	for i, m := range doc.Materials {
		color := common.Color{1, 1, 1, 1}
		if pbr := m.PbrMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				color = common.Color(*f)
			}
			if pbr.BaseColorTexture != nil {
				tint, err := imp.textureTint(doc, pbr.BaseColorTexture.Index)
				if err != nil {
					logger.Warn("material %d (%s): base color texture ignored: %v", i, m.Name, err)
				} else {
					for c := range color {
						color[c] *= tint[c]
					}
				}
			}
		}
		imp.materials[i] = scene.NewMaterial(m.Name, color, m.DoubleSided)
	}
}

func (imp *gltfImporterImpl) textureTint(doc *gltfDocument, textureIndex int) (common.Color, error) {
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return common.Color{}, fmt.Errorf("texture %d out of range", textureIndex)
	}
	tex := doc.Textures[textureIndex]
	source := -1
	switch {
	case tex.Extensions.WebP != nil:
		source = tex.Extensions.WebP.Source
	case tex.Source != nil:
		source = *tex.Source
	}
	if source < 0 || source >= len(doc.Images) {
		return common.Color{}, fmt.Errorf("texture %d has no valid image source", textureIndex)
	}

	img := doc.Images[source]
	var data []byte
	var err error
	switch {
	case img.BufferView != nil:
		data, err = imp.parser.ReadBufferView(*img.BufferView)
	case img.URI != "":
		data, err = imp.parser.Resolve(img.URI)
	default:
		err = fmt.Errorf("image %d has neither a buffer view nor a URI", source)
	}
	if err != nil {
		return common.Color{}, err
	}
	tint, _, err := decodeMeanTexel(data)
	return tint, err
}

func (imp *gltfImporterImpl) importAnimation(index int, anim gltfAnimation) (*animator.Clip, error) {
	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", index)
	}

	tracks := make([]animator.Track, 0, len(anim.Channels))
	for c, ch := range anim.Channels {
		var path animator.TrackPath
		switch ch.Target.Path {
		case "translation":
			path = animator.PathTranslation
		case "rotation":
			path = animator.PathRotation
		case "scale":
			path = animator.PathScale
		default:
			logger.Debug("animation %q channel %d: path %q not supported", name, c, ch.Target.Path)
			continue
		}
		if ch.Target.Node == nil || *ch.Target.Node < 0 || *ch.Target.Node >= len(imp.nodes) {
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d references missing sampler %d", name, c, ch.Sampler)
		}
		sampler := anim.Samplers[ch.Sampler]

		times, err := imp.parser.ReadFloats(sampler.Input, 1)
		if err != nil {
			return nil, fmt.Errorf("animation %q sampler %d input: %w", name, ch.Sampler, err)
		}
		values, err := imp.parser.ReadFloats(sampler.Output, path.Components())
		if err != nil {
			return nil, fmt.Errorf("animation %q sampler %d output: %w", name, ch.Sampler, err)
		}

		interp := animator.InterpolationLinear
		switch sampler.Interpolation {
		case "STEP":
			interp = animator.InterpolationStep
		case "CUBICSPLINE":
			// Keep the value of each (in-tangent, value, out-tangent) triple.
			values = cubicSplineValues(values, path.Components())
		}

		tracks = append(tracks, animator.Track{
			Target:        imp.nodes[*ch.Target.Node].ID(),
			Path:          path,
			Interpolation: interp,
			Times:         times,
			Values:        values,
		})
	}
	return animator.NewClip(name, tracks), nil
}

func cubicSplineValues(values []float32, components int) []float32 {
	keys := len(values) / (components * 3)
	out := make([]float32, 0, keys*components)
	for k := 0; k < keys; k++ {
		start := (k*3 + 1) * components
		out = append(out, values[start:start+components]...)
	}
	return out
}
