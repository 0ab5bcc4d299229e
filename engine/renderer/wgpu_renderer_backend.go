package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"

	"github.com/cogentcore/webgpu/wgpu"
)

var errBackendReleased = errors.New("backend released")

// wgpuRendererBackendImpl draws frames with WebGPU. Mesh buffers are created the first time
// a geometry is drawn and released when the geometry is disposed.
type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat    *wgpu.TextureFormat
	presentMode      wgpu.PresentMode
	width, height    int
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	pipelines map[string]pipeline.Pipeline
	globals   bind_group_provider.BindGroupProvider
	objects   []bind_group_provider.BindGroupProvider
	meshes    map[scene.Geometry]bind_group_provider.BindGroupProvider

	// stale holds geometries disposed since the last frame; guarded by staleMu so dispose
	// hooks never wait on a frame in progress.
	staleMu *sync.Mutex
	stale   []scene.Geometry

	released bool
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, mode PresentMode) *wgpuRendererBackendImpl {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		staleMu:     &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		pipelines:   make(map[string]pipeline.Pipeline),
		meshes:      make(map[scene.Geometry]bind_group_provider.BindGroupProvider),
	}
	if mode == PresentModeUncapped {
		w.presentMode = wgpu.PresentModeImmediate
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w
}

func (b *wgpuRendererBackendImpl) Configure(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A minimised window reports a zero-sized surface, which cannot be configured.
	if b.released || width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   surfaceAlphaMode(capabilities.AlphaModes),
	})

	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	if len(b.pipelines) == 0 {
		if err := b.initPipelines(); err != nil {
			panic(err)
		}
	}
}

// initPipelines compiles the lit pipelines against the surface format and creates the
// globals bind group.
func (b *wgpuRendererBackendImpl) initPipelines() error {
	for _, p := range litPipelines() {
		if err := b.registerRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", p.PipelineKey(), err)
		}
		b.pipelines[p.PipelineKey()] = p
	}

	globals, err := b.newUniformProvider("Globals", b.pipelines[pipelineLit].BindGroupLayout(0), globalsSize)
	if err != nil {
		return err
	}
	b.globals = globals
	return nil
}

func (b *wgpuRendererBackendImpl) registerRenderPipeline(p pipeline.Pipeline) error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.PipelineKey(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	descs := p.BindGroupLayoutDescriptors()
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(descs))
	for g := range descs {
		layout, layoutErr := b.device.CreateBindGroupLayout(&descs[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: p.VertexEntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: p.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created, bindGroupLayouts)
	return nil
}

// newUniformProvider creates a provider holding one uniform buffer at binding 0 and its bind group.
func (b *wgpuRendererBackendImpl) newUniformProvider(label string, layout *wgpu.BindGroupLayout, size uint64) (bind_group_provider.BindGroupProvider, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}

	return bind_group_provider.NewBindGroupProvider(label,
		bind_group_provider.WithBuffer(0, buf),
		bind_group_provider.WithBindGroup(bindGroup),
	), nil
}

// meshProvider returns the vertex and index buffers for geom, uploading them on first use.
func (b *wgpuRendererBackendImpl) meshProvider(name string, geom scene.Geometry) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := b.meshes[geom]; ok {
		return p, nil
	}

	vertexData := common.SliceToBytes(geom.Vertices())
	indexData := common.SliceToBytes(geom.Indices())

	vertexBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vertexBuf, 0, vertexData)

	indexBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertexBuf.Release()
		return nil, err
	}
	b.queue.WriteBuffer(indexBuf, 0, indexData)

	p := bind_group_provider.NewBindGroupProvider(name)
	p.SetMeshBuffers(vertexBuf, indexBuf, len(geom.Indices()))
	b.meshes[geom] = p

	geom.OnDispose(func() {
		b.staleMu.Lock()
		b.stale = append(b.stale, geom)
		b.staleMu.Unlock()
	})
	return p, nil
}

// releaseStale frees the mesh buffers of geometries disposed since the last frame.
func (b *wgpuRendererBackendImpl) releaseStale() {
	b.staleMu.Lock()
	stale := b.stale
	b.stale = nil
	b.staleMu.Unlock()

	for _, geom := range stale {
		if p, ok := b.meshes[geom]; ok {
			p.Release()
			delete(b.meshes, geom)
		}
	}
}

// objectProvider returns the i-th per-draw uniform provider, growing the pool as needed.
func (b *wgpuRendererBackendImpl) objectProvider(i int) (bind_group_provider.BindGroupProvider, error) {
	for len(b.objects) <= i {
		p, err := b.newUniformProvider(fmt.Sprintf("Object %d", len(b.objects)), b.pipelines[pipelineLit].BindGroupLayout(1), objectSize)
		if err != nil {
			return nil, err
		}
		b.objects = append(b.objects, p)
	}
	return b.objects[i], nil
}

func (b *wgpuRendererBackendImpl) writeBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func globalsFromFrame(frame *FrameData) *gpuGlobals {
	g := &gpuGlobals{
		ViewProj:  frame.ViewProjection,
		CameraPos: [4]float32{frame.CameraPosition[0], frame.CameraPosition[1], frame.CameraPosition[2], 1},
		Ambient:   [4]float32(frame.Ambient),
	}
	n := min(len(frame.Lights), maxLights)
	g.LightCount[0] = uint32(n)
	for i, l := range frame.Lights[:n] {
		c := l.Color.Scale(l.Intensity)
		g.Lights[i] = gpuLight{
			Position: [4]float32{l.Position[0], l.Position[1], l.Position[2], l.Range},
			Color:    [4]float32(c),
		}
	}
	return g
}

func (b *wgpuRendererBackendImpl) DrawFrame(frame *FrameData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return errBackendReleased
	}
	b.releaseStale()
	if b.depthTextureView == nil || len(b.pipelines) == 0 {
		return nil
	}

	writes := []bind_group_provider.BufferWrite{{
		Provider: b.globals,
		Binding:  0,
		Data:     common.StructToBytes(globalsFromFrame(frame)),
	}}
	meshes := make([]bind_group_provider.BindGroupProvider, len(frame.Draws))
	for i, d := range frame.Draws {
		mesh, err := b.meshProvider(d.Name, d.Geometry)
		if err != nil {
			return fmt.Errorf("failed to upload mesh %q: %w", d.Name, err)
		}
		meshes[i] = mesh

		obj, err := b.objectProvider(i)
		if err != nil {
			return fmt.Errorf("failed to create object uniform: %w", err)
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: obj,
			Binding:  0,
			Data:     common.StructToBytes(&gpuObject{Model: d.Model, Color: [4]float32(d.Color)}),
		})
	}
	b.writeBuffers(writes)

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	cc := frame.ClearColor
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(cc[0]), G: float64(cc[1]), B: float64(cc[2]), A: float64(cc[3]),
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	pass.SetBindGroup(0, b.globals.BindGroup(), nil)
	for i, d := range frame.Draws {
		key := pipelineLit
		if d.DoubleSided {
			key = pipelineLitDoubleSide
		}
		pass.SetPipeline(b.pipelines[key].RenderPipeline())
		pass.SetBindGroup(1, b.objects[i].BindGroup(), nil)
		pass.SetVertexBuffer(0, meshes[i].VertexBuffer(), 0, wgpu.WholeSize)
		pass.SetIndexBuffer(meshes[i].IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(meshes[i].IndexCount()), 1, 0, 0, 0)
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return
	}
	b.released = true

	b.releaseStale()
	for geom, p := range b.meshes {
		p.Release()
		delete(b.meshes, geom)
	}
	for _, p := range b.objects {
		p.Release()
	}
	b.objects = nil
	if b.globals != nil {
		b.globals.Release()
	}
	for _, p := range b.pipelines {
		p.Release()
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
