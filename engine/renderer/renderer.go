package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/texture"
)

var (
	// ErrFrameInProgress is returned by BeginFrame when the previous frame has not ended.
	ErrFrameInProgress = errors.New("frame already in progress")

	// ErrNoFrame is returned by Dispatch and EndFrame outside of a frame.
	ErrNoFrame = errors.New("no frame in progress")
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	// mu guards the configuration and the stats; frame state belongs to the render thread
	mu *sync.Mutex

	dev       device.Device
	textures  texture.Cache
	shaders   shader.Cache
	pipelines pipeline.Cache

	// Pre-creation config collected from builder options
	pipelineCache  bool
	textureOptions []texture.CacheBuilderOption
	shaderOptions  []shader.CacheBuilderOption

	viewport   common.Viewport
	resolution common.Size
	vsync      bool
	api        common.GraphicsAPI
	clearColor common.Color

	frame *frame
	ctx   drawContext
	stats Stats
}

// Renderer walks a frame's draw commands and turns them into GPU work on a device.
//
// Each frame acquires one command buffer and one swapchain texture, records every command in stream order
// and submits the command buffer exactly once. Shaders and textures are compiled and uploaded on first use
// and cached by ID. Pipelines and mesh buffers are built per draw unless the pipeline cache is enabled.
//
// Frame methods (Draw, BeginFrame, Dispatch, EndFrame, Shutdown) must all be called from the same goroutine.
type Renderer interface {
	// Draw renders one frame: BeginFrame, Dispatch for every command, then EndFrame. When no swapchain
	// texture is available the frame is skipped without dispatching anything.
	//
	// Parameters:
	//   - commands: the frame's commands in execution order
	//
	// Returns:
	//   - error: the joined errors of the commands that could not execute and of the submission
	Draw(commands draw.FrameBuffer) error

	// BeginFrame acquires a command buffer and waits for a swapchain texture. With a texture it clears it to
	// the clear color in the frame's first render pass. Without one the empty command buffer is submitted.
	//
	// Returns:
	//   - bool: true when a frame is open and commands may be dispatched
	//   - error: an error if the command buffer could not be acquired or the frame could not start
	BeginFrame() (bool, error)

	// Dispatch executes one command in the open frame.
	//
	// Texture load failures are not errors: the placeholder texture is bound instead and a warning logged.
	//
	// Parameters:
	//   - cmd: the command to execute
	//
	// Returns:
	//   - error: ErrNoFrame outside a frame, or the reason the command had no effect
	Dispatch(cmd draw.Command) error

	// EndFrame closes the open render pass and submits the frame. A backend error reported by the device
	// since the last frame is logged as a warning.
	//
	// Returns:
	//   - error: ErrNoFrame outside a frame, or the submission error
	EndFrame() error

	// Viewport returns the viewport applied to every render pass.
	Viewport() common.Viewport

	// SetViewport sets the viewport applied to the render passes opened from now on. A zero viewport covers
	// the whole target.
	SetViewport(viewport common.Viewport)

	// Resolution returns the configured target resolution.
	Resolution() common.Size

	// SetResolution stores the target resolution and reconfigures the device surface when it has one.
	SetResolution(size common.Size)

	// VSync reports whether presentation waits for vertical blank.
	VSync() bool

	// SetVSync switches vertical-blank synchronization on devices that present to a surface.
	SetVSync(enabled bool)

	// API returns the graphics API tag reported to the host.
	API() common.GraphicsAPI

	// SetAPI sets the graphics API tag. It is informational only.
	SetAPI(api common.GraphicsAPI)

	// ClearColor returns the color each frame's target is cleared to.
	ClearColor() common.Color

	// SetClearColor sets the color each frame's target is cleared to, starting with the next frame.
	SetClearColor(c common.Color)

	// Textures returns the texture cache, e.g. to preload textures before the first frame.
	Textures() texture.Cache

	// Shaders returns the shader cache.
	Shaders() shader.Cache

	// Stats returns a snapshot of the renderer counters. Safe for concurrent use.
	Stats() Stats

	// Shutdown ends a frame left open and releases every cached GPU object. It must be called before the
	// device is destroyed.
	Shutdown()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer drawing on the given device. The renderer does not own the device.
//
// Parameters:
//   - dev: the device to render with
//   - options: RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - Renderer: the created renderer
func NewRenderer(dev device.Device, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		dev:        dev,
		vsync:      true,
		clearColor: common.ColorCornflower,
	}

	for _, opt := range options {
		opt(r)
	}

	r.textures = texture.NewCache(dev, r.textureOptions...)
	r.shaders = shader.NewCache(dev, r.shaderOptions...)
	if r.pipelineCache {
		r.pipelines = pipeline.NewCache(dev)
	}

	if sc, ok := dev.(device.SurfaceConfigurer); ok {
		sc.SetVSync(r.vsync)
		if !r.resolution.IsZero() {
			sc.ConfigureSurface(r.resolution.Width, r.resolution.Height)
		}
	}

	common.Logger().Info("renderer created",
		"api", r.api.String(),
		"swapchain_format", dev.SwapchainFormat().String(),
		"pipeline_cache", r.pipelineCache,
	)
	return r
}

func (r *renderer) Draw(commands draw.FrameBuffer) error {
	ok, err := r.BeginFrame()
	if err != nil || !ok {
		return err
	}

	var errs []error
	for _, cmd := range commands {
		if err := r.Dispatch(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, r.EndFrame())
	return errors.Join(errs...)
}

func (r *renderer) BeginFrame() (bool, error) {
	if r.frame != nil {
		return false, ErrFrameInProgress
	}

	cmd, err := r.dev.AcquireCommandBuffer()
	if err != nil {
		return false, fmt.Errorf("failed to acquire command buffer: %w", err)
	}
	fr := newFrame(cmd)
	r.count(func(s *Stats) { s.Frames++ })

	swapchain, err := cmd.WaitAndAcquireSwapchainTexture()
	if err != nil || swapchain == nil {
		r.count(func(s *Stats) { s.SkippedFrames++ })
		closeErr := r.closeFrame(fr)
		if err != nil {
			return false, errors.Join(fmt.Errorf("failed to acquire swapchain texture: %w", err), closeErr)
		}
		common.Logger().Debug("no swapchain texture, frame skipped")
		return false, closeErr
	}

	fr.bind(swapchain, r.ClearColor())
	if _, err := r.openPass(fr); err != nil {
		return false, errors.Join(err, r.closeFrame(fr))
	}

	r.frame = fr
	return true, nil
}

func (r *renderer) Dispatch(cmd draw.Command) error {
	if r.frame == nil {
		return ErrNoFrame
	}

	ctx, err := r.dispatch(r.frame, r.ctx, cmd)
	r.ctx = ctx
	return err
}

func (r *renderer) EndFrame() error {
	fr := r.frame
	if fr == nil {
		return ErrNoFrame
	}
	r.frame = nil
	// the material carries over to the next frame, its uniforms do not
	r.ctx.uniforms = nil

	var errs []error
	if fr.clearPending {
		// a Clear with no draw after it still has to reach the target
		fr.closePass()
		if _, err := r.openPass(fr); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, r.closeFrame(fr))

	if err := r.dev.LastError(); err != nil {
		common.Logger().Warn("graphics backend reported an error", "error", err)
	}
	return errors.Join(errs...)
}

// openPass opens a render pass on the frame with the configured viewport.
func (r *renderer) openPass(fr *frame) (device.RenderPass, error) {
	pass, opened, err := fr.openPass(r.Viewport())
	if err != nil {
		return nil, fmt.Errorf("failed to begin render pass: %w", err)
	}
	if opened {
		r.count(func(s *Stats) { s.RenderPasses++ })
	}
	return pass, nil
}

// closeFrame submits the frame's command buffer.
func (r *renderer) closeFrame(fr *frame) error {
	if fr.submitted {
		return nil
	}
	err := fr.close()
	r.count(func(s *Stats) { s.Submissions++ })
	if err != nil {
		return fmt.Errorf("failed to submit command buffer: %w", err)
	}
	return nil
}

// count applies fn to the stats under the lock.
func (r *renderer) count(fn func(s *Stats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.stats)
}

func (r *renderer) Viewport() common.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewport
}

func (r *renderer) SetViewport(viewport common.Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = viewport
}

func (r *renderer) Resolution() common.Size {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolution
}

func (r *renderer) SetResolution(size common.Size) {
	r.mu.Lock()
	r.resolution = size
	r.mu.Unlock()

	if sc, ok := r.dev.(device.SurfaceConfigurer); ok && !size.IsZero() {
		sc.ConfigureSurface(size.Width, size.Height)
	}
}

func (r *renderer) VSync() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vsync
}

func (r *renderer) SetVSync(enabled bool) {
	r.mu.Lock()
	r.vsync = enabled
	size := r.resolution
	r.mu.Unlock()

	if sc, ok := r.dev.(device.SurfaceConfigurer); ok {
		sc.SetVSync(enabled)
		if !size.IsZero() {
			sc.ConfigureSurface(size.Width, size.Height)
		}
	}
}

func (r *renderer) API() common.GraphicsAPI {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.api
}

func (r *renderer) SetAPI(api common.GraphicsAPI) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.api = api
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) Textures() texture.Cache {
	return r.textures
}

func (r *renderer) Shaders() shader.Cache {
	return r.shaders
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *renderer) Shutdown() {
	if r.frame != nil {
		if err := r.EndFrame(); err != nil {
			common.Logger().Warn("failed to end frame on shutdown", "error", err)
		}
	}
	r.ctx = drawContext{}

	if r.pipelines != nil {
		r.pipelines.ReleaseAll()
	}
	r.textures.ReleaseAll()
	r.shaders.ReleaseAll()
	common.Logger().Info("renderer shut down")
}
