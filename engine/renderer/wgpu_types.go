package renderer

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer/pipeline"

	"github.com/cogentcore/webgpu/wgpu"
)

// litShaderSource is the single lit shader used for every mesh. Group 0 holds per-frame
// globals and group 1 holds the per-draw object uniform.
const litShaderSource = `
struct PointLight {
    position: vec4<f32>,
    color: vec4<f32>,
};

struct Globals {
    view_proj: mat4x4<f32>,
    camera_pos: vec4<f32>,
    ambient: vec4<f32>,
    light_count: vec4<u32>,
    lights: array<PointLight, 4>,
};

struct Object {
    model: mat4x4<f32>,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> globals: Globals;
@group(1) @binding(0) var<uniform> obj: Object;

struct VertexOut {
    @builtin(position) clip: vec4<f32>,
    @location(0) world_pos: vec3<f32>,
    @location(1) normal: vec3<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) normal: vec3<f32>) -> VertexOut {
    var out: VertexOut;
    let world = obj.model * vec4<f32>(position, 1.0);
    out.clip = globals.view_proj * world;
    out.world_pos = world.xyz;
    out.normal = (obj.model * vec4<f32>(normal, 0.0)).xyz;
    return out;
}

@fragment
fn fs_main(frag: VertexOut, @builtin(front_facing) front: bool) -> @location(0) vec4<f32> {
    var n = normalize(frag.normal);
    if (!front) {
        n = -n;
    }
    var lit = globals.ambient.rgb;
    for (var i = 0u; i < globals.light_count.x; i = i + 1u) {
        let pl = globals.lights[i];
        let to_light = pl.position.xyz - frag.world_pos;
        let dist = length(to_light);
        let dir = to_light / max(dist, 0.0001);
        var atten = 1.0 / max(dist * dist, 0.0001);
        if (pl.position.w > 0.0) {
            let fade = clamp(1.0 - pow(dist / pl.position.w, 4.0), 0.0, 1.0);
            atten = atten * fade * fade;
        }
        lit = lit + pl.color.rgb * max(dot(n, dir), 0.0) * atten;
    }
    return vec4<f32>(obj.color.rgb * lit, obj.color.a);
}
`

// gpuLight mirrors PointLight: position.w is the range, color.rgb is pre-multiplied by intensity.
type gpuLight struct {
	Position [4]float32
	Color    [4]float32
}

// gpuGlobals mirrors the Globals uniform.
type gpuGlobals struct {
	ViewProj   [16]float32
	CameraPos  [4]float32
	Ambient    [4]float32
	LightCount [4]uint32
	Lights     [maxLights]gpuLight
}

// gpuObject mirrors the Object uniform.
type gpuObject struct {
	Model [16]float32
	Color [4]float32
}

const (
	// vertexStride is the size of scene.Vertex.
	vertexStride = 32

	globalsSize = 64 + 16*3 + 32*maxLights
	objectSize  = 64 + 16
)

// Pipeline keys.
const (
	pipelineLit           = "lit"
	pipelineLitDoubleSide = "lit_double_sided"
)

// vertexLayout matches scene.Vertex: position then normal, UV unused by the shader.
var vertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: vertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

func uniformLayout(label string, size uint64, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: visibility,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	}
}

// litPipelines returns the two descriptions the WebGPU backend compiles: back-face culled
// and double sided.
func litPipelines() []pipeline.Pipeline {
	groups := []wgpu.BindGroupLayoutDescriptor{
		uniformLayout("Globals", globalsSize, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment),
		uniformLayout("Object", objectSize, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment),
	}
	base := []pipeline.PipelineBuilderOption{
		pipeline.WithSource(litShaderSource, "vs_main", "fs_main"),
		pipeline.WithVertexLayouts(vertexLayout),
		pipeline.WithBindGroupLayouts(groups...),
	}
	return []pipeline.Pipeline{
		pipeline.NewPipeline(pipelineLit, base...),
		pipeline.NewPipeline(pipelineLitDoubleSide, append(base, pipeline.WithCullMode(wgpu.CullModeNone))...),
	}
}

// surfaceAlphaMode picks a compositing mode that lets the transparent clear color show the
// desktop through. Surfaces that only offer opaque modes get their first mode.
func surfaceAlphaMode(modes []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	for _, want := range []wgpu.CompositeAlphaMode{
		wgpu.CompositeAlphaModePremultiplied,
		wgpu.CompositeAlphaModeUnpremultiplied,
	} {
		if slices.Contains(modes, want) {
			return want
		}
	}
	if len(modes) == 0 {
		return wgpu.CompositeAlphaModeAuto
	}
	return modes[0]
}
