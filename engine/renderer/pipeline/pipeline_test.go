package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("lit")
	if p.PipelineKey() != "lit" {
		t.Fatalf("PipelineKey = %q", p.PipelineKey())
	}
	if p.VertexEntryPoint() != "vs_main" || p.FragmentEntryPoint() != "fs_main" {
		t.Errorf("entry points = %q, %q", p.VertexEntryPoint(), p.FragmentEntryPoint())
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() || !p.BlendEnabled() {
		t.Error("depth test, depth write and blending should default on")
	}
	if p.CullMode() != wgpu.CullModeBack || p.FrontFace() != wgpu.FrontFaceCCW {
		t.Error("default rasterizer state should cull back faces with CCW front faces")
	}
	if p.BlendState() == nil {
		t.Error("default blend state missing")
	}
	if p.RenderPipeline() != nil || p.BindGroupLayout(0) != nil {
		t.Error("GPU objects exist before creation")
	}
	p.Release()
}

func TestPipelineOptions(t *testing.T) {
	layout := wgpu.VertexBufferLayout{ArrayStride: 32, StepMode: wgpu.VertexStepModeVertex}
	p := NewPipeline("double",
		WithSource("// wgsl", "vert", "frag"),
		WithVertexLayouts(layout),
		WithBindGroupLayouts(wgpu.BindGroupLayoutDescriptor{Label: "g0"}, wgpu.BindGroupLayoutDescriptor{Label: "g1"}),
		WithCullMode(wgpu.CullModeNone),
		WithBlendEnabled(false),
	)
	if p.Source() != "// wgsl" || p.VertexEntryPoint() != "vert" || p.FragmentEntryPoint() != "frag" {
		t.Error("source option not applied")
	}
	if len(p.VertexLayouts()) != 1 || p.VertexLayouts()[0].ArrayStride != 32 {
		t.Error("vertex layout option not applied")
	}
	if len(p.BindGroupLayoutDescriptors()) != 2 {
		t.Error("bind group layout option not applied")
	}
	if p.CullMode() != wgpu.CullModeNone || p.BlendEnabled() {
		t.Error("rasterizer options not applied")
	}
}
