// Package device defines the explicit graphics API driven by the renderer: a device that creates GPU
// objects, single-use command buffers, render passes and copy passes. Two implementations are provided,
// a WebGPU backed device for real surfaces and a RecordingDevice that keeps every call in memory.
package device

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

var (
	// ErrNoSurface is returned when a device is created without a surface to render to.
	ErrNoSurface = errors.New("no surface to render to was given")

	// ErrAlreadySubmitted is returned when a command buffer is submitted more than once.
	ErrAlreadySubmitted = errors.New("command buffer already submitted")

	// ErrPassOpen is returned when a pass is begun while another pass of the same command buffer is still open.
	ErrPassOpen = errors.New("a pass is already open on this command buffer")
)

// TextureFormat is the texel format of a GPU texture or color target.
type TextureFormat int

const (
	TextureFormatInvalid TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
)

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case TextureFormatRGBA8UnormSrgb:
		return "RGBA8UnormSrgb"
	case TextureFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case TextureFormatBGRA8UnormSrgb:
		return "BGRA8UnormSrgb"
	default:
		return "Invalid"
	}
}

// TextureUsage is a bit set describing how a texture is used.
type TextureUsage uint32

const (
	// TextureUsageSampler allows the texture to be sampled from a shader.
	TextureUsageSampler TextureUsage = 1 << iota
	// TextureUsageColorTarget allows the texture to be rendered to.
	TextureUsageColorTarget
)

// BufferUsage is a bit set describing how a GPU buffer is used.
type BufferUsage uint32

const (
	// BufferUsageVertex marks a buffer as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << iota
	// BufferUsageIndex marks a buffer as an index buffer.
	BufferUsageIndex
)

// VertexElementFormat is the numeric format of a single vertex attribute.
type VertexElementFormat int

const (
	VertexElementFormatInvalid VertexElementFormat = iota
	VertexElementFormatFloat2
	VertexElementFormatFloat3
	VertexElementFormatFloat4
)

// Size returns the byte size of one attribute of this format.
func (f VertexElementFormat) Size() uint32 {
	switch f {
	case VertexElementFormatFloat2:
		return 8
	case VertexElementFormatFloat3:
		return 12
	case VertexElementFormatFloat4:
		return 16
	default:
		return 0
	}
}

// VertexInputRate selects whether a vertex buffer advances per vertex or per instance.
type VertexInputRate int

const (
	VertexInputRateVertex VertexInputRate = iota
	VertexInputRateInstance
)

// PrimitiveType is the primitive topology of a graphics pipeline.
type PrimitiveType int

const (
	PrimitiveTypeTriangleList PrimitiveType = iota
	PrimitiveTypeTriangleStrip
	PrimitiveTypeLineList
)

// LoadOp is what a render pass does with a color target's contents when it begins.
type LoadOp int

const (
	// LoadOpClear clears the target to the clear color.
	LoadOpClear LoadOp = iota
	// LoadOpLoad keeps the previous contents.
	LoadOpLoad
)

// StoreOp is what a render pass does with a color target's contents when it ends.
type StoreOp int

const (
	StoreOpStore StoreOp = iota
	StoreOpDontCare
)

// IndexElementSize is the width of one index in an index buffer.
type IndexElementSize int

const (
	IndexElementSize16Bit IndexElementSize = iota
	IndexElementSize32Bit
)

// Filter is a sampler min/mag filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// SamplerMipmapMode is the filter applied between mip levels.
type SamplerMipmapMode int

const (
	SamplerMipmapModeNearest SamplerMipmapMode = iota
	SamplerMipmapModeLinear
)

// SamplerAddressMode resolves texture coordinates outside [0, 1].
type SamplerAddressMode int

const (
	SamplerAddressModeRepeat SamplerAddressMode = iota
	SamplerAddressModeMirroredRepeat
	SamplerAddressModeClampToEdge
)

// ShaderFormat is the encoding of shader code handed to CreateShader.
type ShaderFormat int

const (
	// ShaderFormatSPIRV is SPIR-V bytecode.
	ShaderFormatSPIRV ShaderFormat = iota
	// ShaderFormatWGSL is WGSL source text.
	ShaderFormatWGSL
)

// ShaderDescriptor describes a native shader object.
type ShaderDescriptor struct {
	Label      string
	Code       []byte
	Format     ShaderFormat
	EntryPoint string
	Stage      common.ShaderStage

	NumSamplers        uint32
	NumUniformBuffers  uint32
	NumStorageBuffers  uint32
	NumStorageTextures uint32
}

// TextureDescriptor describes a 2D GPU texture.
type TextureDescriptor struct {
	Label     string
	Format    TextureFormat
	Usage     TextureUsage
	Width     uint32
	Height    uint32
	NumLevels uint32
}

// SamplerDescriptor describes a GPU sampler. Its state is immutable once created.
type SamplerDescriptor struct {
	Label        string
	MinFilter    Filter
	MagFilter    Filter
	MipmapMode   SamplerMipmapMode
	AddressModeU SamplerAddressMode
	AddressModeV SamplerAddressMode
	AddressModeW SamplerAddressMode
}

// BufferDescriptor describes a GPU-only buffer.
type BufferDescriptor struct {
	Label string
	Usage BufferUsage
	Size  uint32
}

// TransferBufferDescriptor describes a CPU-writable upload buffer.
type TransferBufferDescriptor struct {
	Label string
	Size  uint32
}

// VertexAttribute describes one attribute read by the vertex shader.
type VertexAttribute struct {
	Location   uint32
	BufferSlot uint32
	Format     VertexElementFormat
	Offset     uint32
}

// VertexBufferDescription describes one bound vertex buffer.
type VertexBufferDescription struct {
	Slot             uint32
	Pitch            uint32
	InputRate        VertexInputRate
	InstanceStepRate uint32
}

// ColorTargetDescription describes a color attachment format of a pipeline.
type ColorTargetDescription struct {
	Format TextureFormat
}

// PipelineDescriptor describes a graphics pipeline.
type PipelineDescriptor struct {
	Label          string
	VertexShader   Shader
	FragmentShader Shader
	PrimitiveType  PrimitiveType

	VertexAttributes []VertexAttribute
	VertexBuffers    []VertexBufferDescription
	ColorTargets     []ColorTargetDescription
}

// ColorTarget is a color attachment of a render pass.
type ColorTarget struct {
	Texture    Texture
	ClearColor common.Color
	LoadOp     LoadOp
	StoreOp    StoreOp
}

// BufferBinding binds a buffer at a byte offset.
type BufferBinding struct {
	Buffer Buffer
	Offset uint32
}

// TextureSamplerBinding pairs a texture with the sampler used to read it.
type TextureSamplerBinding struct {
	Texture Texture
	Sampler Sampler
}

// Resource is any GPU object owned by a Device.
type Resource interface {
	// Label returns the debug label given at creation.
	Label() string

	// Release releases the native object. Releasing twice is a no-op.
	Release()
}

// Texture is a GPU texture.
type Texture interface {
	Resource
	Width() uint32
	Height() uint32
}

// Sampler is a GPU sampler.
type Sampler interface {
	Resource
}

// Buffer is a GPU-only buffer.
type Buffer interface {
	Resource
	Size() uint32
}

// Shader is a native compiled shader.
type Shader interface {
	Resource
	Stage() common.ShaderStage
}

// Pipeline is a graphics pipeline.
type Pipeline interface {
	Resource
}

// TransferBuffer is CPU-writable memory used to stage uploads into GPU-only resources.
type TransferBuffer interface {
	Resource
	Size() uint32

	// Map returns the writable contents of the buffer. Unmap must be called before the buffer is
	// used by a copy pass.
	//
	// Returns:
	//   - []byte: the mapped memory, exactly Size() bytes long
	//   - error: an error if the buffer is already mapped or released
	Map() ([]byte, error)

	// Unmap ends a Map.
	Unmap()
}

// Device creates GPU objects and command buffers.
type Device interface {
	// AcquireCommandBuffer returns a fresh single-use command buffer. Every acquired command buffer
	// must be submitted exactly once, even when nothing was recorded into it.
	//
	// Returns:
	//   - CommandBuffer: the acquired command buffer
	//   - error: an error if the device could not allocate a command buffer
	AcquireCommandBuffer() (CommandBuffer, error)

	// CreateShader creates a native shader from compiled code.
	//
	// Parameters:
	//   - desc: the shader code and its stage metadata
	//
	// Returns:
	//   - Shader: the created shader
	//   - error: an error if the code was rejected
	CreateShader(desc *ShaderDescriptor) (Shader, error)

	// CreateTexture allocates a 2D texture.
	//
	// Parameters:
	//   - desc: the format, usage and dimensions of the texture
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: an error if allocation fails
	CreateTexture(desc *TextureDescriptor) (Texture, error)

	// CreateSampler creates an immutable sampler.
	//
	// Parameters:
	//   - desc: the filter and address modes of the sampler
	//
	// Returns:
	//   - Sampler: the created sampler
	//   - error: an error if creation fails
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)

	// CreateBuffer allocates a GPU-only buffer.
	//
	// Parameters:
	//   - desc: the usage and byte size of the buffer
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if allocation fails
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)

	// CreateTransferBuffer allocates an upload buffer.
	//
	// Parameters:
	//   - desc: the byte size of the buffer
	//
	// Returns:
	//   - TransferBuffer: the created transfer buffer
	//   - error: an error if allocation fails
	CreateTransferBuffer(desc *TransferBufferDescriptor) (TransferBuffer, error)

	// CreateGraphicsPipeline creates a graphics pipeline.
	//
	// Parameters:
	//   - desc: the shaders, vertex input state and color targets of the pipeline
	//
	// Returns:
	//   - Pipeline: the created pipeline
	//   - error: an error if the pipeline is invalid
	CreateGraphicsPipeline(desc *PipelineDescriptor) (Pipeline, error)

	// SwapchainFormat returns the texel format of the presentable images.
	SwapchainFormat() TextureFormat

	// LastError returns and clears the most recent asynchronous backend error, or nil.
	LastError() error

	// Destroy releases the device. Every resource created by the device must be released first.
	Destroy()
}

// SurfaceConfigurer is implemented by devices that present to a resizable surface.
type SurfaceConfigurer interface {
	// ConfigureSurface reconfigures the presentable images for a new size.
	ConfigureSurface(width, height int)

	// SetVSync switches between vertical-blank synchronized and immediate presentation.
	// Takes effect on the next ConfigureSurface.
	SetVSync(enabled bool)
}

// CommandBuffer records GPU work for a single frame.
type CommandBuffer interface {
	// WaitAndAcquireSwapchainTexture blocks until a presentable image is available.
	// A nil texture with a nil error means no image could be acquired for this frame.
	//
	// Returns:
	//   - Texture: the swapchain texture, or nil
	//   - error: an error if the command buffer was already submitted
	WaitAndAcquireSwapchainTexture() (Texture, error)

	// BeginRenderPass opens a render pass on the given color targets.
	//
	// Parameters:
	//   - targets: the color attachments of the pass
	//
	// Returns:
	//   - RenderPass: the open pass; End must be called before another pass begins
	//   - error: an error if another pass is open
	BeginRenderPass(targets ...ColorTarget) (RenderPass, error)

	// BeginCopyPass opens a copy pass for staged uploads.
	//
	// Returns:
	//   - CopyPass: the open pass; End must be called before another pass begins
	//   - error: an error if another pass is open
	BeginCopyPass() (CopyPass, error)

	// PushUniformData sets the uniform payload for a stage and slot. The payload applies to draw calls
	// recorded after the push with the pipeline bound at the time; binding another pipeline drops it.
	// Slots beyond the shader's NumUniformBuffers are ignored.
	//
	// Parameters:
	//   - stage: the shader stage the payload is visible to
	//   - slot: the uniform buffer slot
	//   - data: the raw uniform bytes
	PushUniformData(stage common.ShaderStage, slot uint32, data []byte)

	// Submit finishes recording and submits the command buffer to the GPU, presenting the
	// swapchain texture if one was acquired.
	//
	// Returns:
	//   - error: ErrAlreadySubmitted on a second call, or a backend error
	Submit() error
}

// RenderPass records draw commands against a set of color targets.
type RenderPass interface {
	SetViewport(viewport common.Viewport)
	BindPipeline(p Pipeline)
	BindVertexBuffers(firstSlot uint32, bindings ...BufferBinding)
	BindIndexBuffer(binding BufferBinding, size IndexElementSize)
	BindFragmentSamplers(firstSlot uint32, bindings ...TextureSamplerBinding)
	DrawIndexedPrimitives(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
	End()
}

// CopyPass records transfers from transfer buffers into GPU-only resources.
type CopyPass interface {
	// UploadToBuffer copies size bytes from src at srcOffset into dst at dstOffset.
	UploadToBuffer(src TransferBuffer, srcOffset uint32, dst Buffer, dstOffset, size uint32)

	// UploadToTexture copies tightly packed RGBA8 rows from src at srcOffset into the full extent of dst.
	UploadToTexture(src TransferBuffer, srcOffset uint32, dst Texture, width, height uint32)

	End()
}
