package device

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group convention of the WebGPU device. WebGPU has no push constants, so uniform payloads pushed on a
// command buffer are turned into transient uniform buffers at draw time. Shaders written for this device
// declare their resources as follows:
//
//	@group(1) @binding(slot)        vertex uniform buffer
//	@group(2) @binding(2*slot)      fragment texture
//	@group(2) @binding(2*slot + 1)  fragment sampler
//	@group(3) @binding(slot)        fragment uniform buffer
const (
	groupVertexUniforms   uint32 = 1
	groupFragmentSamplers uint32 = 2
	groupFragmentUniforms uint32 = 3
)

type wgpuDevice struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	forceFallbackAdapter bool
	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	width                int
	height               int

	lastErr error
}

var _ Device = &wgpuDevice{}
var _ SurfaceConfigurer = &wgpuDevice{}

// NewWGPUDevice creates a WebGPU device presenting to the given surface. The calling goroutine is locked to
// its OS thread for the lifetime of the process, every frame must be driven from that goroutine.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor, usually obtained from the window
//   - options: WGPUDeviceBuilderOption functions applied before the adapter is requested
//
// Returns:
//   - Device: the created device, its surface already configured
//   - error: ErrNoSurface when no surface descriptor is given, or the adapter/device request error
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUDeviceBuilderOption) (Device, error) {
	if surfaceDescriptor == nil {
		return nil, ErrNoSurface
	}
	runtime.LockOSThread()

	d := &wgpuDevice{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(d)
	}

	d.surface = d.instance.CreateSurface(surfaceDescriptor)
	if d.surface == nil {
		d.instance.Release()
		return nil, ErrNoSurface
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.surface.Release()
		d.instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = a

	limits := wgpu.DefaultLimits()
	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		d.adapter.Release()
		d.surface.Release()
		d.instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	if d.width > 0 && d.height > 0 {
		d.ConfigureSurface(d.width, d.height)
	}

	common.Logger().Info("webgpu device created", "format", d.SwapchainFormat().String(), "width", d.width, "height", d.height)
	return d, nil
}

func (d *wgpuDevice) ConfigureSurface(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (d *wgpuDevice) SetVSync(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if enabled {
		d.presentMode = wgpu.PresentModeFifo
	} else {
		d.presentMode = wgpu.PresentModeImmediate
	}
}

func (d *wgpuDevice) SwapchainFormat() TextureFormat {
	return textureFormatFromWGPU(d.surfaceFormat)
}

func (d *wgpuDevice) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.lastErr
	d.lastErr = nil
	return err
}

func (d *wgpuDevice) recordError(err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	d.lastErr = errors.Join(d.lastErr, err)
	d.mu.Unlock()
}

func (d *wgpuDevice) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.surface.Release()
	d.instance.Release()
	d.queue, d.device, d.adapter, d.surface, d.instance = nil, nil, nil, nil, nil
}

func (d *wgpuDevice) AcquireCommandBuffer() (CommandBuffer, error) {
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}
	return &wgpuCommandBuffer{
		dev:      d,
		encoder:  encoder,
		uniforms: make(map[uniformSlot][]byte),
	}, nil
}

func (d *wgpuDevice) CreateShader(desc *ShaderDescriptor) (Shader, error) {
	module := &wgpu.ShaderModuleDescriptor{Label: desc.Label}
	switch desc.Format {
	case ShaderFormatWGSL:
		module.WGSLDescriptor = &wgpu.ShaderModuleWGSLDescriptor{Code: string(desc.Code)}
	default:
		module.SPIRVDescriptor = &wgpu.ShaderModuleSPIRVDescriptor{Code: desc.Code}
	}

	m, err := d.device.CreateShaderModule(module)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %q: %w", desc.Label, err)
	}
	return &wgpuShader{
		label:             desc.Label,
		module:            m,
		entryPoint:        common.Coalesce(desc.EntryPoint, "main"),
		stage:             desc.Stage,
		numUniformBuffers: desc.NumUniformBuffers,
		numSamplers:       desc.NumSamplers,
	}, nil
}

func (d *wgpuDevice) CreateTexture(desc *TextureDescriptor) (Texture, error) {
	usage := wgpu.TextureUsageCopyDst
	if desc.Usage&TextureUsageSampler != 0 {
		usage |= wgpu.TextureUsageTextureBinding
	}
	if desc.Usage&TextureUsageColorTarget != 0 {
		usage |= wgpu.TextureUsageRenderAttachment
	}

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        textureFormatToWGPU(desc.Format),
		MipLevelCount: common.Coalesce(desc.NumLevels, 1),
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create texture view %q: %w", desc.Label, err)
	}

	return &wgpuTexture{
		label:  desc.Label,
		tex:    tex,
		view:   view,
		width:  desc.Width,
		height: desc.Height,
	}, nil
}

func (d *wgpuDevice) CreateSampler(desc *SamplerDescriptor) (Sampler, error) {
	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  addressModeToWGPU(desc.AddressModeU),
		AddressModeV:  addressModeToWGPU(desc.AddressModeV),
		AddressModeW:  addressModeToWGPU(desc.AddressModeW),
		MagFilter:     filterToWGPU(desc.MagFilter),
		MinFilter:     filterToWGPU(desc.MinFilter),
		MipmapFilter:  mipmapModeToWGPU(desc.MipmapMode),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler %q: %w", desc.Label, err)
	}
	return &wgpuSampler{label: desc.Label, sampler: samp}, nil
}

func (d *wgpuDevice) CreateBuffer(desc *BufferDescriptor) (Buffer, error) {
	usage := wgpu.BufferUsageCopyDst
	if desc.Usage&BufferUsageVertex != 0 {
		usage |= wgpu.BufferUsageVertex
	}
	if desc.Usage&BufferUsageIndex != 0 {
		usage |= wgpu.BufferUsageIndex
	}

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             uint64(desc.Size),
		Usage:            usage,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
	}
	return &wgpuBuffer{label: desc.Label, buffer: buf, size: desc.Size}, nil
}

// CreateTransferBuffer returns host memory. Uploads from it go through the queue's write operations, which
// stage the data internally.
func (d *wgpuDevice) CreateTransferBuffer(desc *TransferBufferDescriptor) (TransferBuffer, error) {
	return &hostTransferBuffer{label: desc.Label, data: make([]byte, desc.Size)}, nil
}

func (d *wgpuDevice) CreateGraphicsPipeline(desc *PipelineDescriptor) (Pipeline, error) {
	vs, ok := desc.VertexShader.(*wgpuShader)
	if !ok || vs == nil {
		return nil, errors.New("vertex shader was not created by this device")
	}
	fs, ok := desc.FragmentShader.(*wgpuShader)
	if !ok || fs == nil {
		return nil, errors.New("fragment shader was not created by this device")
	}

	buffers := make([]wgpu.VertexBufferLayout, len(desc.VertexBuffers))
	for i, vb := range desc.VertexBuffers {
		stepMode := wgpu.VertexStepModeVertex
		if vb.InputRate == VertexInputRateInstance {
			stepMode = wgpu.VertexStepModeInstance
		}
		var attributes []wgpu.VertexAttribute
		for _, attr := range desc.VertexAttributes {
			if attr.BufferSlot != vb.Slot {
				continue
			}
			attributes = append(attributes, wgpu.VertexAttribute{
				Format:         vertexFormatToWGPU(attr.Format),
				Offset:         uint64(attr.Offset),
				ShaderLocation: attr.Location,
			})
		}
		buffers[i] = wgpu.VertexBufferLayout{
			ArrayStride: uint64(vb.Pitch),
			StepMode:    stepMode,
			Attributes:  attributes,
		}
	}

	targets := make([]wgpu.ColorTargetState, len(desc.ColorTargets))
	for i, ct := range desc.ColorTargets {
		targets[i] = wgpu.ColorTargetState{
			Format:    textureFormatToWGPU(ct.Format),
			WriteMask: wgpu.ColorWriteMaskAll,
		}
	}

	// A nil layout lets the implementation derive bind group layouts from the shaders.
	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: desc.Label,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: vs.entryPoint,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: fs.entryPoint,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  primitiveToWGPU(desc.PrimitiveType),
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render pipeline %q: %w", desc.Label, err)
	}
	return &wgpuPipeline{
		label:            desc.Label,
		pipeline:         created,
		vertexUniforms:   vs.numUniformBuffers,
		fragmentUniforms: fs.numUniformBuffers,
		samplers:         fs.numSamplers,
	}, nil
}

type uniformSlot struct {
	stage common.ShaderStage
	slot  uint32
}

type wgpuCommandBuffer struct {
	dev     *wgpuDevice
	encoder *wgpu.CommandEncoder

	swapchain *wgpuTexture
	uniforms  map[uniformSlot][]byte
	passOpen  bool
	submitted bool

	// per-draw objects, released once the command buffer is submitted
	transientBuffers    []*wgpu.Buffer
	transientBindGroups []*wgpu.BindGroup
}

func (c *wgpuCommandBuffer) WaitAndAcquireSwapchainTexture() (Texture, error) {
	if c.submitted {
		return nil, ErrAlreadySubmitted
	}
	if c.swapchain != nil {
		return c.swapchain, nil
	}

	surfaceTexture, err := c.dev.surface.GetCurrentTexture()
	if err != nil || surfaceTexture == nil {
		common.Logger().Debug("no swapchain texture available", "err", err)
		return nil, nil
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		common.Logger().Debug("failed to create swapchain view", "err", err)
		return nil, nil
	}

	c.swapchain = &wgpuTexture{
		label:  "Swapchain Texture",
		tex:    surfaceTexture,
		view:   view,
		width:  uint32(c.dev.width),
		height: uint32(c.dev.height),
	}
	return c.swapchain, nil
}

func (c *wgpuCommandBuffer) BeginRenderPass(targets ...ColorTarget) (RenderPass, error) {
	if c.submitted {
		return nil, ErrAlreadySubmitted
	}
	if c.passOpen {
		return nil, ErrPassOpen
	}

	attachments := make([]wgpu.RenderPassColorAttachment, 0, len(targets))
	for _, t := range targets {
		tex, ok := t.Texture.(*wgpuTexture)
		if !ok || tex == nil {
			return nil, errors.New("color target texture was not created by this device")
		}
		loadOp := wgpu.LoadOpClear
		if t.LoadOp == LoadOpLoad {
			loadOp = wgpu.LoadOpLoad
		}
		storeOp := wgpu.StoreOpStore
		if t.StoreOp == StoreOpDontCare {
			storeOp = wgpu.StoreOpDiscard
		}
		attachments = append(attachments, wgpu.RenderPassColorAttachment{
			View:    tex.view,
			LoadOp:  loadOp,
			StoreOp: storeOp,
			ClearValue: wgpu.Color{
				R: float64(t.ClearColor.R),
				G: float64(t.ClearColor.G),
				B: float64(t.ClearColor.B),
				A: float64(t.ClearColor.A),
			},
		})
	}

	pass := c.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: attachments,
	})
	c.passOpen = true
	return &wgpuRenderPass{cmd: c, pass: pass, samplers: make(map[uint32]TextureSamplerBinding)}, nil
}

func (c *wgpuCommandBuffer) BeginCopyPass() (CopyPass, error) {
	if c.submitted {
		return nil, ErrAlreadySubmitted
	}
	if c.passOpen {
		return nil, ErrPassOpen
	}
	c.passOpen = true
	return &wgpuCopyPass{cmd: c}, nil
}

func (c *wgpuCommandBuffer) PushUniformData(stage common.ShaderStage, slot uint32, data []byte) {
	payload := make([]byte, len(data))
	copy(payload, data)
	c.uniforms[uniformSlot{stage: stage, slot: slot}] = payload
}

// resetUniforms drops every pushed payload. Payloads belong to the pipeline bound after them.
func (c *wgpuCommandBuffer) resetUniforms() {
	clear(c.uniforms)
}

func (c *wgpuCommandBuffer) Submit() error {
	if c.submitted {
		return ErrAlreadySubmitted
	}
	c.submitted = true
	defer c.releaseTransients()

	commandBuffer, err := c.encoder.Finish(nil)
	if err != nil {
		c.encoder.Release()
		c.releaseSwapchain()
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}

	c.dev.queue.Submit(commandBuffer)
	commandBuffer.Release()
	c.encoder.Release()

	if c.swapchain != nil {
		c.dev.surface.Present()
		c.releaseSwapchain()
	}
	return nil
}

func (c *wgpuCommandBuffer) releaseSwapchain() {
	if c.swapchain == nil {
		return
	}
	c.swapchain.view.Release()
	c.swapchain.tex.Release()
	c.swapchain = nil
}

func (c *wgpuCommandBuffer) releaseTransients() {
	for _, bg := range c.transientBindGroups {
		bg.Release()
	}
	for _, buf := range c.transientBuffers {
		buf.Release()
	}
	c.transientBindGroups = nil
	c.transientBuffers = nil
}

type wgpuRenderPass struct {
	cmd      *wgpuCommandBuffer
	pass     *wgpu.RenderPassEncoder
	pipeline *wgpuPipeline
	samplers map[uint32]TextureSamplerBinding
	ended    bool
}

func (p *wgpuRenderPass) SetViewport(viewport common.Viewport) {
	p.pass.SetViewport(
		float32(viewport.Position.X),
		float32(viewport.Position.Y),
		float32(viewport.Size.Width),
		float32(viewport.Size.Height),
		0, 1,
	)
}

func (p *wgpuRenderPass) BindPipeline(pl Pipeline) {
	wp, ok := pl.(*wgpuPipeline)
	if !ok || wp == nil {
		p.cmd.dev.recordError(errors.New("pipeline was not created by this device"))
		return
	}
	p.pipeline = wp
	p.cmd.resetUniforms()
	p.pass.SetPipeline(wp.pipeline)
}

func (p *wgpuRenderPass) BindVertexBuffers(firstSlot uint32, bindings ...BufferBinding) {
	for i, b := range bindings {
		buf, ok := b.Buffer.(*wgpuBuffer)
		if !ok || buf == nil {
			p.cmd.dev.recordError(fmt.Errorf("vertex buffer at slot %d was not created by this device", firstSlot+uint32(i)))
			continue
		}
		p.pass.SetVertexBuffer(firstSlot+uint32(i), buf.buffer, uint64(b.Offset), wgpu.WholeSize)
	}
}

func (p *wgpuRenderPass) BindIndexBuffer(binding BufferBinding, size IndexElementSize) {
	buf, ok := binding.Buffer.(*wgpuBuffer)
	if !ok || buf == nil {
		p.cmd.dev.recordError(errors.New("index buffer was not created by this device"))
		return
	}
	format := wgpu.IndexFormatUint32
	if size == IndexElementSize16Bit {
		format = wgpu.IndexFormatUint16
	}
	p.pass.SetIndexBuffer(buf.buffer, format, uint64(binding.Offset), wgpu.WholeSize)
}

func (p *wgpuRenderPass) BindFragmentSamplers(firstSlot uint32, bindings ...TextureSamplerBinding) {
	for i, b := range bindings {
		p.samplers[firstSlot+uint32(i)] = b
	}
}

func (p *wgpuRenderPass) DrawIndexedPrimitives(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	if p.pipeline == nil {
		p.cmd.dev.recordError(errors.New("draw issued without a bound pipeline"))
		return
	}
	if err := p.flushBindGroups(); err != nil {
		p.cmd.dev.recordError(err)
		return
	}
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

// flushBindGroups turns the pushed uniforms and bound samplers into bind groups for the current pipeline.
// Slots the pipeline's shaders do not declare are left out, since the derived layouts have no entry for them.
func (p *wgpuRenderPass) flushBindGroups() error {
	dev := p.cmd.dev.device

	var vertexEntries, fragmentEntries, samplerEntries []wgpu.BindGroupEntry
	for key, data := range p.cmd.uniforms {
		if !p.pipeline.declaresUniform(key.stage, key.slot) {
			common.Logger().Debug("uniform slot not declared by pipeline", "pipeline", p.pipeline.label,
				"stage", key.stage.String(), "slot", key.slot)
			continue
		}
		buf, err := dev.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    fmt.Sprintf("%s Uniform %d", key.stage, key.slot),
			Contents: data,
			Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s uniform buffer for slot %d: %w", key.stage, key.slot, err)
		}
		p.cmd.transientBuffers = append(p.cmd.transientBuffers, buf)

		entry := wgpu.BindGroupEntry{
			Binding: key.slot,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}
		if key.stage == common.ShaderStageFragment {
			fragmentEntries = append(fragmentEntries, entry)
		} else {
			vertexEntries = append(vertexEntries, entry)
		}
	}

	for slot, b := range p.samplers {
		if !p.pipeline.declaresSampler(slot) {
			common.Logger().Debug("sampler slot not declared by pipeline", "pipeline", p.pipeline.label, "slot", slot)
			continue
		}
		tex, ok := b.Texture.(*wgpuTexture)
		if !ok || tex == nil {
			return fmt.Errorf("texture at sampler slot %d was not created by this device", slot)
		}
		samp, ok := b.Sampler.(*wgpuSampler)
		if !ok || samp == nil {
			return fmt.Errorf("sampler at slot %d was not created by this device", slot)
		}
		samplerEntries = append(samplerEntries,
			wgpu.BindGroupEntry{Binding: 2 * slot, TextureView: tex.view},
			wgpu.BindGroupEntry{Binding: 2*slot + 1, Sampler: samp.sampler},
		)
	}

	groups := []struct {
		index   uint32
		entries []wgpu.BindGroupEntry
	}{
		{groupVertexUniforms, vertexEntries},
		{groupFragmentSamplers, samplerEntries},
		{groupFragmentUniforms, fragmentEntries},
	}
	for _, g := range groups {
		if len(g.entries) == 0 {
			continue
		}
		sort.Slice(g.entries, func(i, j int) bool { return g.entries[i].Binding < g.entries[j].Binding })

		bindGroup, err := dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s Bind Group %d", p.pipeline.label, g.index),
			Layout:  p.pipeline.pipeline.GetBindGroupLayout(g.index),
			Entries: g.entries,
		})
		if err != nil {
			return fmt.Errorf("failed to create bind group %d: %w", g.index, err)
		}
		p.cmd.transientBindGroups = append(p.cmd.transientBindGroups, bindGroup)
		p.pass.SetBindGroup(g.index, bindGroup, nil)
	}
	return nil
}

func (p *wgpuRenderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.pass.End()
	p.pass.Release()
	p.cmd.passOpen = false
}

type wgpuCopyPass struct {
	cmd   *wgpuCommandBuffer
	ended bool
}

func (p *wgpuCopyPass) UploadToBuffer(src TransferBuffer, srcOffset uint32, dst Buffer, dstOffset, size uint32) {
	tb, ok := src.(*hostTransferBuffer)
	if !ok || tb == nil {
		p.cmd.dev.recordError(errors.New("transfer buffer was not created by this device"))
		return
	}
	buf, ok := dst.(*wgpuBuffer)
	if !ok || buf == nil {
		p.cmd.dev.recordError(errors.New("destination buffer was not created by this device"))
		return
	}
	p.cmd.dev.queue.WriteBuffer(buf.buffer, uint64(dstOffset), tb.data[srcOffset:srcOffset+size])
}

func (p *wgpuCopyPass) UploadToTexture(src TransferBuffer, srcOffset uint32, dst Texture, width, height uint32) {
	tb, ok := src.(*hostTransferBuffer)
	if !ok || tb == nil {
		p.cmd.dev.recordError(errors.New("transfer buffer was not created by this device"))
		return
	}
	tex, ok := dst.(*wgpuTexture)
	if !ok || tex == nil {
		p.cmd.dev.recordError(errors.New("destination texture was not created by this device"))
		return
	}

	p.cmd.dev.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		tb.data[srcOffset:],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (p *wgpuCopyPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.cmd.passOpen = false
}

type wgpuTexture struct {
	label    string
	tex      *wgpu.Texture
	view     *wgpu.TextureView
	width    uint32
	height   uint32
	released bool
}

func (t *wgpuTexture) Label() string  { return t.label }
func (t *wgpuTexture) Width() uint32  { return t.width }
func (t *wgpuTexture) Height() uint32 { return t.height }

func (t *wgpuTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.view.Release()
	t.tex.Release()
}

type wgpuSampler struct {
	label    string
	sampler  *wgpu.Sampler
	released bool
}

func (s *wgpuSampler) Label() string { return s.label }

func (s *wgpuSampler) Release() {
	if s.released {
		return
	}
	s.released = true
	s.sampler.Release()
}

type wgpuBuffer struct {
	label    string
	buffer   *wgpu.Buffer
	size     uint32
	released bool
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint32  { return b.size }

func (b *wgpuBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.buffer.Release()
}

type wgpuShader struct {
	label      string
	module     *wgpu.ShaderModule
	entryPoint string
	stage      common.ShaderStage
	released   bool

	numUniformBuffers uint32
	numSamplers       uint32
}

func (s *wgpuShader) Label() string              { return s.label }
func (s *wgpuShader) Stage() common.ShaderStage { return s.stage }

func (s *wgpuShader) Release() {
	if s.released {
		return
	}
	s.released = true
	s.module.Release()
}

type wgpuPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
	released bool

	// uniform and sampler slot counts declared by the vertex and fragment shaders
	vertexUniforms   uint32
	fragmentUniforms uint32
	samplers         uint32
}

func (p *wgpuPipeline) Label() string { return p.label }

// declaresUniform reports whether the shader of stage declares the uniform slot.
func (p *wgpuPipeline) declaresUniform(stage common.ShaderStage, slot uint32) bool {
	if stage == common.ShaderStageFragment {
		return slot < p.fragmentUniforms
	}
	return slot < p.vertexUniforms
}

// declaresSampler reports whether the fragment shader declares the texture sampler slot.
func (p *wgpuPipeline) declaresSampler(slot uint32) bool {
	return slot < p.samplers
}

func (p *wgpuPipeline) Release() {
	if p.released {
		return
	}
	p.released = true
	p.pipeline.Release()
}

// hostTransferBuffer is a transfer buffer backed by host memory.
type hostTransferBuffer struct {
	label    string
	data     []byte
	mapped   bool
	released bool
}

func (b *hostTransferBuffer) Label() string { return b.label }
func (b *hostTransferBuffer) Size() uint32  { return uint32(len(b.data)) }

func (b *hostTransferBuffer) Map() ([]byte, error) {
	if b.released {
		return nil, fmt.Errorf("transfer buffer %q is released", b.label)
	}
	if b.mapped {
		return nil, fmt.Errorf("transfer buffer %q is already mapped", b.label)
	}
	b.mapped = true
	return b.data, nil
}

func (b *hostTransferBuffer) Unmap() {
	b.mapped = false
}

func (b *hostTransferBuffer) Release() {
	b.released = true
	b.data = nil
}

func textureFormatFromWGPU(f wgpu.TextureFormat) TextureFormat {
	switch f {
	case wgpu.TextureFormatRGBA8Unorm:
		return TextureFormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return TextureFormatRGBA8UnormSrgb
	case wgpu.TextureFormatBGRA8Unorm:
		return TextureFormatBGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return TextureFormatBGRA8UnormSrgb
	default:
		return TextureFormatInvalid
	}
}

func textureFormatToWGPU(f TextureFormat) wgpu.TextureFormat {
	switch f {
	case TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case TextureFormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func vertexFormatToWGPU(f VertexElementFormat) wgpu.VertexFormat {
	switch f {
	case VertexElementFormatFloat2:
		return wgpu.VertexFormatFloat32x2
	case VertexElementFormatFloat4:
		return wgpu.VertexFormatFloat32x4
	default:
		return wgpu.VertexFormatFloat32x3
	}
}

func primitiveToWGPU(p PrimitiveType) wgpu.PrimitiveTopology {
	switch p {
	case PrimitiveTypeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case PrimitiveTypeLineList:
		return wgpu.PrimitiveTopologyLineList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func filterToWGPU(f Filter) wgpu.FilterMode {
	if f == FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapModeToWGPU(m SamplerMipmapMode) wgpu.MipmapFilterMode {
	if m == SamplerMipmapModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

func addressModeToWGPU(m SamplerAddressMode) wgpu.AddressMode {
	switch m {
	case SamplerAddressModeMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	case SamplerAddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	default:
		return wgpu.AddressModeRepeat
	}
}
