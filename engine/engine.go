package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/Carmen-Shannon/oxy-gpu/engine/window"
)

var (
	// ErrNoRenderer is returned by Run and RunFrames when the engine was built without a renderer.
	ErrNoRenderer = errors.New("engine has no renderer")

	// ErrNoWindow is returned by Run when the engine was built without a window.
	ErrNoWindow = errors.New("engine has no window")
)

// FrameSource builds the commands of the next frame.
type FrameSource func(deltaTime float32) draw.FrameBuffer

// engine implements the Engine interface.
// Drives the window message loop and hands one frame per iteration to the renderer.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool
	profilerOptions  []profiler.ProfilerBuilderOption

	source FrameSource

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	now              func() time.Time
	lastFrame        time.Time
	frames           uint64
}

// Engine is the host loop of the renderer.
// It owns the frame pacing: every iteration asks the frame source for a command list and draws it.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, nil for a headless engine
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	Renderer() renderer.Renderer

	// Profiler returns the profiler ticked once per drawn frame.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameSource registers the function building each frame's commands.
	//
	// Parameters:
	//   - source: called once per frame with the delta time in seconds since the previous frame
	SetFrameSource(source FrameSource)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns the number of frames handed to the renderer so far.
	Frames() uint64

	// Run runs the window message loop, drawing one frame per iteration, until the window closes or
	// Quit is called. The renderer is shut down before Run returns.
	//
	// Returns:
	//   - error: ErrNoWindow or ErrNoRenderer when the engine is missing either
	Run() error

	// RunFrames draws n frames without a message loop, or until Quit is called. The renderer is shut down
	// before RunFrames returns.
	//
	// Parameters:
	//   - n: the number of frames to draw
	//
	// Returns:
	//   - error: ErrNoRenderer when the engine has no renderer
	RunFrames(n int) error

	// Quit stops the loop after the current frame.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance.
//
// Parameters:
//   - options: EngineBuilderOption functions to configure the engine
//
// Returns:
//   - Engine: the created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		now:         time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	var profilerOptions []profiler.ProfilerBuilderOption
	if e.renderer != nil {
		profilerOptions = append(profilerOptions, profiler.WithStatsSource(e.renderer.Stats))
	}
	e.profiler = profiler.NewProfiler(append(profilerOptions, e.profilerOptions...)...)

	if e.window != nil && e.renderer != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.renderer.SetResolution(common.Size{Width: width, Height: height})
		})
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameSource(source FrameSource) {
	e.source = source
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	if e.renderer == nil {
		return ErrNoRenderer
	}
	defer e.renderer.Shutdown()

	common.Logger().Info("engine started", "mode", "windowed")
	e.lastFrame = e.now()
	e.window.SetUpdateCallback(func() {
		if e.quitting() {
			if err := e.window.Close(); err != nil {
				common.Logger().Warn("failed to close window", "error", err)
			}
			return
		}
		e.renderFrame()
	})
	e.window.ProcessMessages()

	common.Logger().Info("engine stopped", "frames", e.frames)
	return nil
}

func (e *engine) RunFrames(n int) error {
	if e.renderer == nil {
		return ErrNoRenderer
	}
	defer e.renderer.Shutdown()

	common.Logger().Info("engine started", "mode", "headless", "frames", n)
	e.lastFrame = e.now()
	for i := 0; i < n && !e.quitting(); i++ {
		e.renderFrame()
	}

	common.Logger().Info("engine stopped", "frames", e.frames)
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

// renderFrame draws one frame from the frame source, then ticks the profiler and sleeps off the rest of
// the frame budget.
func (e *engine) renderFrame() {
	start := e.now()
	dt := float32(start.Sub(e.lastFrame).Seconds())
	e.lastFrame = start

	var commands draw.FrameBuffer
	if e.source != nil {
		commands = e.source(dt)
	}
	if err := e.renderer.Draw(commands); err != nil {
		common.Logger().Warn("frame drawn with errors", "frame", e.frames, "error", err)
	}
	e.frames++

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}
