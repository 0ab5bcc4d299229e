package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the WGSL module source, the fixed-function state used to create the render
// pipeline, and the GPU objects once the backend has created them.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	source         string
	vertexEntry    string
	fragmentEntry  string
	vertexLayouts  []wgpu.VertexBufferLayout
	bindGroupDescs []wgpu.BindGroupLayoutDescriptor

	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes one render pipeline: a single WGSL module with vertex and fragment
// entry points, its vertex and bind group layouts, and the depth, blend, cull and
// topology state used when the backend creates it.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Source returns the WGSL source of the module.
	Source() string

	// VertexEntryPoint returns the name of the vertex stage entry point.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the fragment stage entry point.
	FragmentEntryPoint() string

	// VertexLayouts returns the vertex buffer layouts, one per vertex buffer slot.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptors returns the bind group layouts indexed by group.
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// RenderPipeline returns the created GPU pipeline, or nil before creation.
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayout returns the created layout for a group, or nil.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout or nil
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// SetRenderPipeline stores the created GPU pipeline and its bind group layouts.
	//
	// Parameters:
	//   - rp: the render pipeline
	//   - layouts: the bind group layouts indexed by group
	SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout)

	// Release releases the GPU pipeline and bind group layouts.
	Release()

	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask
	BlendState() *wgpu.BlendState
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description with depth testing and writing on,
// back-face culling, counter-clockwise front faces, triangle lists and alpha blending.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - options: a variadic list of PipelineBuilderOption functions to configure the Pipeline
//
// Returns:
//   - Pipeline: the configured pipeline
func NewPipeline(key string, options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       key,
		vertexEntry:       "vs_main",
		fragmentEntry:     "fs_main",
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Source() string {
	return p.source
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntry
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupDescs
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout) {
	p.renderPipeline = rp
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}
