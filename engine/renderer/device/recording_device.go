package device

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

// Op names a recorded device call.
type Op string

const (
	OpAcquireCommandBuffer   Op = "AcquireCommandBuffer"
	OpAcquireSwapchain       Op = "AcquireSwapchain"
	OpSubmit                 Op = "Submit"
	OpBeginRenderPass        Op = "BeginRenderPass"
	OpEndRenderPass          Op = "EndRenderPass"
	OpBeginCopyPass          Op = "BeginCopyPass"
	OpEndCopyPass            Op = "EndCopyPass"
	OpUploadToBuffer         Op = "UploadToBuffer"
	OpUploadToTexture        Op = "UploadToTexture"
	OpPushUniformData        Op = "PushUniformData"
	OpSetViewport            Op = "SetViewport"
	OpBindPipeline           Op = "BindPipeline"
	OpBindVertexBuffers      Op = "BindVertexBuffers"
	OpBindIndexBuffer        Op = "BindIndexBuffer"
	OpBindFragmentSamplers   Op = "BindFragmentSamplers"
	OpDrawIndexed            Op = "DrawIndexed"
	OpCreateShader           Op = "CreateShader"
	OpCreateTexture          Op = "CreateTexture"
	OpCreateSampler          Op = "CreateSampler"
	OpCreateBuffer           Op = "CreateBuffer"
	OpCreateTransferBuffer   Op = "CreateTransferBuffer"
	OpCreateGraphicsPipeline Op = "CreateGraphicsPipeline"
	OpRelease                Op = "Release"
	OpConfigureSurface       Op = "ConfigureSurface"
)

// Call is one recorded device call. Only the fields relevant to Op are set.
type Call struct {
	Op    Op
	Label string

	Stage common.ShaderStage
	Slot  uint32
	Size  uint32
	Data  []byte

	LoadOp     LoadOp
	ClearColor common.Color
	Viewport   common.Viewport

	IndexCount    uint32
	InstanceCount uint32

	Width  uint32
	Height uint32

	Shader    *ShaderDescriptor
	Sampler   *SamplerDescriptor
	Pipeline  *PipelineDescriptor
	IndexSize IndexElementSize
	Bindings  int
}

// RecordingDevice is a Device that keeps every call in memory instead of talking to a GPU. It validates the
// command buffer lifecycle the way an explicit graphics API does and reports misuse as violations. It backs
// headless runs and tests.
type RecordingDevice struct {
	mu *sync.Mutex

	calls      []Call
	violations []error
	lastErr    error
	failures   map[Op]error

	swapchainAvailable bool
	swapchainFormat    TextureFormat
	width              uint32
	height             uint32
	vsync              bool

	nextID      int
	live        map[int]string
	openPasses  int
	openBuffers int
}

var _ Device = &RecordingDevice{}
var _ SurfaceConfigurer = &RecordingDevice{}

// NewRecordingDevice creates a RecordingDevice. By default a swapchain texture is always available and the
// swapchain format is BGRA8Unorm.
//
// Parameters:
//   - options: RecordingDeviceBuilderOption functions to configure the device
//
// Returns:
//   - *RecordingDevice: the created device
func NewRecordingDevice(options ...RecordingDeviceBuilderOption) *RecordingDevice {
	d := &RecordingDevice{
		mu:                 &sync.Mutex{},
		failures:           make(map[Op]error),
		swapchainAvailable: true,
		swapchainFormat:    TextureFormatBGRA8Unorm,
		width:              800,
		height:             600,
		vsync:              true,
		live:               make(map[int]string),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Calls returns a copy of every recorded call in order.
func (d *RecordingDevice) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// CallsOf returns the recorded calls of a single kind in order.
func (d *RecordingDevice) CallsOf(op Op) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Call
	for _, c := range d.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of recorded calls of a single kind.
func (d *RecordingDevice) Count(op Op) int {
	return len(d.CallsOf(op))
}

// Ops returns the kinds of every recorded call in order.
func (d *RecordingDevice) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Op, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Op
	}
	return out
}

// Reset forgets every recorded call and violation. Live resources are kept.
func (d *RecordingDevice) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = nil
	d.violations = nil
}

// Violations returns every lifecycle violation observed so far.
func (d *RecordingDevice) Violations() []error {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]error, len(d.violations))
	copy(out, d.violations)
	return out
}

// LiveResources returns the labels of every created resource that was not yet released, sorted.
func (d *RecordingDevice) LiveResources() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, 0, len(d.live))
	for _, label := range d.live {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// SetSwapchainAvailable controls whether WaitAndAcquireSwapchainTexture yields a texture.
func (d *RecordingDevice) SetSwapchainAvailable(available bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.swapchainAvailable = available
}

// Fail makes every following call of the given kind fail with err. A nil err removes the failure.
func (d *RecordingDevice) Fail(op Op, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		delete(d.failures, op)
		return
	}
	d.failures[op] = err
}

// SetLastError queues an asynchronous backend error to be returned by the next LastError call.
func (d *RecordingDevice) SetLastError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastErr = errors.Join(d.lastErr, err)
}

// VSync reports the last vsync setting.
func (d *RecordingDevice) VSync() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vsync
}

// SurfaceSize reports the last configured surface size.
func (d *RecordingDevice) SurfaceSize() (uint32, uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *RecordingDevice) record(c Call) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, c)
}

func (d *RecordingDevice) violate(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := fmt.Errorf(format, args...)
	d.violations = append(d.violations, err)
	d.lastErr = errors.Join(d.lastErr, err)
}

func (d *RecordingDevice) failure(op Op) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failures[op]
}

func (d *RecordingDevice) track(label string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	d.live[d.nextID] = label
	return d.nextID
}

func (d *RecordingDevice) untrack(id int, label string) {
	d.mu.Lock()
	delete(d.live, id)
	d.calls = append(d.calls, Call{Op: OpRelease, Label: label})
	d.mu.Unlock()
}

// checkNoPass flags resource creation while a pass is open.
func (d *RecordingDevice) checkNoPass(op Op, label string) {
	d.mu.Lock()
	open := d.openPasses
	d.mu.Unlock()
	if open > 0 {
		d.violate("%s %q called while a pass is open", op, label)
	}
}

func (d *RecordingDevice) ConfigureSurface(width, height int) {
	d.mu.Lock()
	if width > 0 && height > 0 {
		d.width, d.height = uint32(width), uint32(height)
	}
	d.mu.Unlock()
	d.record(Call{Op: OpConfigureSurface, Width: uint32(width), Height: uint32(height)})
}

func (d *RecordingDevice) SetVSync(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vsync = enabled
}

func (d *RecordingDevice) SwapchainFormat() TextureFormat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.swapchainFormat
}

func (d *RecordingDevice) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.lastErr
	d.lastErr = nil
	return err
}

func (d *RecordingDevice) Destroy() {
	d.mu.Lock()
	leaked := len(d.live)
	pending := d.openBuffers
	d.mu.Unlock()

	if leaked > 0 {
		d.violate("device destroyed with %d live resources: %v", leaked, d.LiveResources())
	}
	if pending > 0 {
		d.violate("device destroyed with %d unsubmitted command buffers", pending)
	}
}

func (d *RecordingDevice) AcquireCommandBuffer() (CommandBuffer, error) {
	if err := d.failure(OpAcquireCommandBuffer); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.openBuffers++
	d.mu.Unlock()

	d.record(Call{Op: OpAcquireCommandBuffer})
	return &recordingCommandBuffer{dev: d}, nil
}

func (d *RecordingDevice) CreateShader(desc *ShaderDescriptor) (Shader, error) {
	if err := d.failure(OpCreateShader); err != nil {
		return nil, err
	}
	if len(desc.Code) == 0 {
		return nil, fmt.Errorf("shader %q has no code", desc.Label)
	}
	d.checkNoPass(OpCreateShader, desc.Label)

	snapshot := *desc
	d.record(Call{Op: OpCreateShader, Label: desc.Label, Stage: desc.Stage, Shader: &snapshot})
	return &recordingShader{recordingResource: d.newResource(desc.Label), stage: desc.Stage}, nil
}

func (d *RecordingDevice) CreateTexture(desc *TextureDescriptor) (Texture, error) {
	if err := d.failure(OpCreateTexture); err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("texture %q has zero extent %dx%d", desc.Label, desc.Width, desc.Height)
	}
	d.checkNoPass(OpCreateTexture, desc.Label)

	d.record(Call{Op: OpCreateTexture, Label: desc.Label, Width: desc.Width, Height: desc.Height})
	return &recordingTexture{recordingResource: d.newResource(desc.Label), width: desc.Width, height: desc.Height}, nil
}

func (d *RecordingDevice) CreateSampler(desc *SamplerDescriptor) (Sampler, error) {
	if err := d.failure(OpCreateSampler); err != nil {
		return nil, err
	}

	snapshot := *desc
	d.record(Call{Op: OpCreateSampler, Label: desc.Label, Sampler: &snapshot})
	return &recordingSampler{recordingResource: d.newResource(desc.Label)}, nil
}

func (d *RecordingDevice) CreateBuffer(desc *BufferDescriptor) (Buffer, error) {
	if err := d.failure(OpCreateBuffer); err != nil {
		return nil, err
	}
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q has zero size", desc.Label)
	}
	d.checkNoPass(OpCreateBuffer, desc.Label)

	d.record(Call{Op: OpCreateBuffer, Label: desc.Label, Size: desc.Size})
	return &recordingBuffer{recordingResource: d.newResource(desc.Label), size: desc.Size}, nil
}

func (d *RecordingDevice) CreateTransferBuffer(desc *TransferBufferDescriptor) (TransferBuffer, error) {
	if err := d.failure(OpCreateTransferBuffer); err != nil {
		return nil, err
	}
	d.checkNoPass(OpCreateTransferBuffer, desc.Label)

	d.record(Call{Op: OpCreateTransferBuffer, Label: desc.Label, Size: desc.Size})
	return &recordingTransferBuffer{recordingResource: d.newResource(desc.Label), data: make([]byte, desc.Size)}, nil
}

func (d *RecordingDevice) CreateGraphicsPipeline(desc *PipelineDescriptor) (Pipeline, error) {
	if err := d.failure(OpCreateGraphicsPipeline); err != nil {
		return nil, err
	}
	if desc.VertexShader == nil || desc.FragmentShader == nil {
		return nil, fmt.Errorf("pipeline %q needs both a vertex and a fragment shader", desc.Label)
	}
	d.checkNoPass(OpCreateGraphicsPipeline, desc.Label)

	snapshot := *desc
	d.record(Call{Op: OpCreateGraphicsPipeline, Label: desc.Label, Pipeline: &snapshot})
	return &recordingPipeline{recordingResource: d.newResource(desc.Label)}, nil
}

func (d *RecordingDevice) newResource(label string) recordingResource {
	return recordingResource{dev: d, id: d.track(label), label: label}
}

type recordingCommandBuffer struct {
	dev       *RecordingDevice
	swapchain *recordingTexture
	passOpen  bool
	submitted bool
}

func (c *recordingCommandBuffer) WaitAndAcquireSwapchainTexture() (Texture, error) {
	if c.submitted {
		return nil, ErrAlreadySubmitted
	}
	c.dev.record(Call{Op: OpAcquireSwapchain})

	c.dev.mu.Lock()
	available := c.dev.swapchainAvailable
	w, h := c.dev.width, c.dev.height
	c.dev.mu.Unlock()

	if !available {
		return nil, nil
	}
	if c.swapchain == nil {
		c.swapchain = &recordingTexture{recordingResource: recordingResource{label: "Swapchain Texture"}, width: w, height: h}
	}
	return c.swapchain, nil
}

func (c *recordingCommandBuffer) BeginRenderPass(targets ...ColorTarget) (RenderPass, error) {
	if c.submitted {
		return nil, ErrAlreadySubmitted
	}
	if c.passOpen {
		c.dev.violate("render pass begun while another pass is open")
		return nil, ErrPassOpen
	}
	if err := c.dev.failure(OpBeginRenderPass); err != nil {
		return nil, err
	}
	if len(targets) == 0 || targets[0].Texture == nil {
		return nil, errors.New("render pass needs a color target")
	}

	c.openPass()
	c.dev.record(Call{Op: OpBeginRenderPass, LoadOp: targets[0].LoadOp, ClearColor: targets[0].ClearColor})
	return &recordingRenderPass{cmd: c}, nil
}

func (c *recordingCommandBuffer) BeginCopyPass() (CopyPass, error) {
	if c.submitted {
		return nil, ErrAlreadySubmitted
	}
	if c.passOpen {
		c.dev.violate("copy pass begun while another pass is open")
		return nil, ErrPassOpen
	}

	c.openPass()
	c.dev.record(Call{Op: OpBeginCopyPass})
	return &recordingCopyPass{cmd: c}, nil
}

func (c *recordingCommandBuffer) PushUniformData(stage common.ShaderStage, slot uint32, data []byte) {
	payload := make([]byte, len(data))
	copy(payload, data)
	c.dev.record(Call{Op: OpPushUniformData, Stage: stage, Slot: slot, Size: uint32(len(data)), Data: payload})
}

func (c *recordingCommandBuffer) Submit() error {
	if c.submitted {
		c.dev.violate("command buffer submitted twice")
		return ErrAlreadySubmitted
	}
	if c.passOpen {
		c.dev.violate("command buffer submitted with an open pass")
		c.closePass()
	}
	c.submitted = true

	c.dev.mu.Lock()
	c.dev.openBuffers--
	c.dev.mu.Unlock()

	c.dev.record(Call{Op: OpSubmit})
	return c.dev.failure(OpSubmit)
}

func (c *recordingCommandBuffer) openPass() {
	c.passOpen = true
	c.dev.mu.Lock()
	c.dev.openPasses++
	c.dev.mu.Unlock()
}

func (c *recordingCommandBuffer) closePass() {
	c.passOpen = false
	c.dev.mu.Lock()
	c.dev.openPasses--
	c.dev.mu.Unlock()
}

type recordingRenderPass struct {
	cmd      *recordingCommandBuffer
	pipeline bool
	ended    bool
}

func (p *recordingRenderPass) check(op Op) bool {
	if p.ended {
		p.cmd.dev.violate("%s recorded on an ended render pass", op)
		return false
	}
	return true
}

func (p *recordingRenderPass) SetViewport(viewport common.Viewport) {
	if p.check(OpSetViewport) {
		p.cmd.dev.record(Call{Op: OpSetViewport, Viewport: viewport})
	}
}

func (p *recordingRenderPass) BindPipeline(pl Pipeline) {
	if !p.check(OpBindPipeline) {
		return
	}
	if pl == nil {
		p.cmd.dev.violate("nil pipeline bound")
		return
	}
	p.pipeline = true
	p.cmd.dev.record(Call{Op: OpBindPipeline, Label: pl.Label()})
}

func (p *recordingRenderPass) BindVertexBuffers(firstSlot uint32, bindings ...BufferBinding) {
	if p.check(OpBindVertexBuffers) {
		label := ""
		if len(bindings) > 0 && bindings[0].Buffer != nil {
			label = bindings[0].Buffer.Label()
		}
		p.cmd.dev.record(Call{Op: OpBindVertexBuffers, Slot: firstSlot, Label: label, Bindings: len(bindings)})
	}
}

func (p *recordingRenderPass) BindIndexBuffer(binding BufferBinding, size IndexElementSize) {
	if p.check(OpBindIndexBuffer) {
		label := ""
		if binding.Buffer != nil {
			label = binding.Buffer.Label()
		}
		p.cmd.dev.record(Call{Op: OpBindIndexBuffer, Label: label, IndexSize: size})
	}
}

func (p *recordingRenderPass) BindFragmentSamplers(firstSlot uint32, bindings ...TextureSamplerBinding) {
	if !p.check(OpBindFragmentSamplers) {
		return
	}
	for i, b := range bindings {
		if b.Texture == nil || b.Sampler == nil {
			p.cmd.dev.violate("empty texture/sampler bound at fragment sampler slot %d", firstSlot+uint32(i))
		}
	}
	label := ""
	if len(bindings) > 0 && bindings[0].Texture != nil {
		label = bindings[0].Texture.Label()
	}
	p.cmd.dev.record(Call{Op: OpBindFragmentSamplers, Slot: firstSlot, Label: label, Bindings: len(bindings)})
}

func (p *recordingRenderPass) DrawIndexedPrimitives(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	if !p.check(OpDrawIndexed) {
		return
	}
	if !p.pipeline {
		p.cmd.dev.violate("draw issued without a bound pipeline")
	}
	p.cmd.dev.record(Call{Op: OpDrawIndexed, IndexCount: indexCount, InstanceCount: instanceCount})
}

func (p *recordingRenderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.cmd.closePass()
	p.cmd.dev.record(Call{Op: OpEndRenderPass})
}

type recordingCopyPass struct {
	cmd   *recordingCommandBuffer
	ended bool
}

func (p *recordingCopyPass) UploadToBuffer(src TransferBuffer, srcOffset uint32, dst Buffer, dstOffset, size uint32) {
	tb, ok := src.(*recordingTransferBuffer)
	if !ok || tb == nil || dst == nil {
		p.cmd.dev.violate("buffer upload with a foreign or nil resource")
		return
	}
	if tb.mapped {
		p.cmd.dev.violate("transfer buffer %q used while mapped", tb.label)
	}
	if srcOffset+size > uint32(len(tb.data)) || dstOffset+size > dst.Size() {
		p.cmd.dev.violate("buffer upload of %d bytes out of range", size)
		return
	}
	data := make([]byte, size)
	copy(data, tb.data[srcOffset:srcOffset+size])
	p.cmd.dev.record(Call{Op: OpUploadToBuffer, Label: dst.Label(), Size: size, Data: data})
}

func (p *recordingCopyPass) UploadToTexture(src TransferBuffer, srcOffset uint32, dst Texture, width, height uint32) {
	tb, ok := src.(*recordingTransferBuffer)
	if !ok || tb == nil || dst == nil {
		p.cmd.dev.violate("texture upload with a foreign or nil resource")
		return
	}
	if tb.mapped {
		p.cmd.dev.violate("transfer buffer %q used while mapped", tb.label)
	}
	size := width * height * 4
	if srcOffset+size > uint32(len(tb.data)) {
		p.cmd.dev.violate("texture upload of %d bytes out of range", size)
		return
	}
	data := make([]byte, size)
	copy(data, tb.data[srcOffset:srcOffset+size])
	p.cmd.dev.record(Call{Op: OpUploadToTexture, Label: dst.Label(), Size: size, Width: width, Height: height, Data: data})
}

func (p *recordingCopyPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.cmd.closePass()
	p.cmd.dev.record(Call{Op: OpEndCopyPass})
}

type recordingResource struct {
	dev      *RecordingDevice
	id       int
	label    string
	released bool
}

func (r *recordingResource) Label() string { return r.label }

func (r *recordingResource) Release() {
	if r.released || r.dev == nil {
		return
	}
	r.released = true
	r.dev.untrack(r.id, r.label)
}

type recordingTexture struct {
	recordingResource
	width, height uint32
}

func (t *recordingTexture) Width() uint32  { return t.width }
func (t *recordingTexture) Height() uint32 { return t.height }

type recordingSampler struct {
	recordingResource
}

type recordingBuffer struct {
	recordingResource
	size uint32
}

func (b *recordingBuffer) Size() uint32 { return b.size }

type recordingShader struct {
	recordingResource
	stage common.ShaderStage
}

func (s *recordingShader) Stage() common.ShaderStage { return s.stage }

type recordingPipeline struct {
	recordingResource
}

type recordingTransferBuffer struct {
	recordingResource
	data   []byte
	mapped bool
}

func (b *recordingTransferBuffer) Size() uint32 { return uint32(len(b.data)) }

func (b *recordingTransferBuffer) Map() ([]byte, error) {
	if b.released {
		return nil, fmt.Errorf("transfer buffer %q is released", b.label)
	}
	if b.mapped {
		return nil, fmt.Errorf("transfer buffer %q is already mapped", b.label)
	}
	b.mapped = true
	return b.data, nil
}

func (b *recordingTransferBuffer) Unmap() {
	b.mapped = false
}
