package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed.
	// They are populated by the renderer backend, not by user-creation.

	bindGroup *wgpu.BindGroup
	buffers   map[int]*wgpu.Buffer

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int

	released bool
}

// BindGroupProvider holds the GPU resources that back one drawable: its vertex and index
// buffers and the uniform buffers and bind group used while drawing it. A scene geometry
// owns one provider for its mesh buffers and the renderer owns one per draw slot for
// uniforms.
//
// Usage pattern:
//  1. The backend creates a provider with a label when a geometry is first drawn
//  2. The backend uploads buffers and stores them with the setters
//  3. Draws read VertexBuffer/IndexBuffer/BindGroup
//  4. Release runs from the geometry's dispose hook or the renderer's Dispose
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider. Safe to call more than once.
	Release()

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true once released
	Released() bool

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer bound at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer or nil
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer or nil
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetBindGroup sets the bind group after GPU initialization.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores the buffer for a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetMeshBuffers stores the vertex and index buffers and the index count.
	//
	// Parameters:
	//   - vertex: the vertex buffer
	//   - index: the index buffer
	//   - indexCount: the number of indices
	SetMeshBuffers(vertex, index *wgpu.Buffer, indexCount int)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: the debug label
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Release() {
	if p.released {
		return
	}
	p.released = true

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for k, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, k)
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}

func (p *bindGroupProvider) Released() bool {
	return p.released
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetMeshBuffers(vertex, index *wgpu.Buffer, indexCount int) {
	p.vertexBuffer = vertex
	p.indexBuffer = index
	p.indexCount = indexCount
}
