package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gpu/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow runs its message loop for a fixed number of iterations.
type fakeWindow struct {
	iterations int
	closed     bool
	onUpdate   func()
	onResize   func(width, height int)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(callback func())                    { w.onUpdate = callback }
func (w *fakeWindow) SetResizeCallback(callback func(width, height int))   { w.onResize = callback }
func (w *fakeWindow) SetKeyDownCallback(callback func(key common.KeyCode)) {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor           { return nil }
func (w *fakeWindow) IsRunning() bool                                      { return !w.closed }
func (w *fakeWindow) Size() common.Size                                    { return common.Size{Width: 64, Height: 64} }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < w.iterations && w.IsRunning(); i++ {
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

var compiler = shader.CompilerFunc(func(req shader.CompileRequest) ([]byte, error) {
	return []byte{0x03, 0x02, 0x23, 0x07}, nil
})

func quadFrame(float32) draw.FrameBuffer {
	layout := draw.NewBufferLayout(
		draw.BufferElement{Name: "a_Position", Type: draw.ElementTypeFloat3},
	)
	var fb draw.FrameBuffer
	fb.Add(
		draw.CompileMaterial{Material: draw.Material{Shader: draw.ShaderPair{
			Vertex:   draw.Shader{ID: "v", Stage: common.ShaderStageVertex, Source: "@vertex fn main() {}"},
			Fragment: draw.Shader{ID: "f", Stage: common.ShaderStageFragment, Source: "@fragment fn main() {}"},
		}}},
		draw.DrawMesh{Mesh: draw.Mesh{
			Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Indices:  []uint32{0, 1, 2},
			Layout:   layout,
		}},
	)
	return fb
}

func newHeadless(t *testing.T, options ...EngineBuilderOption) (*device.RecordingDevice, Engine) {
	t.Helper()
	dev := device.NewRecordingDevice()
	r := renderer.NewRenderer(dev, renderer.WithShaderCacheOptions(shader.WithCompiler(compiler)))
	return dev, NewEngine(append([]EngineBuilderOption{WithRenderer(r)}, options...)...)
}

func TestRunFramesDrawsEachFrame(t *testing.T) {
	dev, e := newHeadless(t)
	var deltas []float32
	e.SetFrameSource(func(dt float32) draw.FrameBuffer {
		deltas = append(deltas, dt)
		return quadFrame(dt)
	})

	require.NoError(t, e.RunFrames(3))

	assert.Equal(t, uint64(3), e.Frames())
	assert.Len(t, deltas, 3)
	assert.Equal(t, 3, dev.Count(device.OpSubmit))
	assert.Equal(t, 3, dev.Count(device.OpDrawIndexed))
	assert.Equal(t, uint64(3), e.Renderer().Stats().DrawCalls)
	assert.Empty(t, dev.LiveResources())
	assert.Empty(t, dev.Violations())
}

func TestRunFramesWithoutSourceSubmitsEmptyFrames(t *testing.T) {
	dev, e := newHeadless(t)

	require.NoError(t, e.RunFrames(2))

	assert.Equal(t, 2, dev.Count(device.OpSubmit))
	assert.Zero(t, dev.Count(device.OpDrawIndexed))
}

func TestQuitStopsRunFrames(t *testing.T) {
	dev, e := newHeadless(t)
	e.SetFrameSource(func(float32) draw.FrameBuffer {
		if e.Frames() == 1 {
			e.Quit()
		}
		return nil
	})

	require.NoError(t, e.RunFrames(10))

	assert.Equal(t, uint64(2), e.Frames())
	assert.Equal(t, 2, dev.Count(device.OpSubmit))
	assert.NotPanics(t, e.Quit)
}

func TestDeltaTimeFromClock(t *testing.T) {
	base := time.Unix(0, 0)
	ticks := 0
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * 250 * time.Millisecond)
	}

	var deltas []float32
	_, e := newHeadless(t, WithClock(clock), WithFrameSource(func(dt float32) draw.FrameBuffer {
		deltas = append(deltas, dt)
		return nil
	}))

	require.NoError(t, e.RunFrames(2))
	assert.Equal(t, []float32{0.25, 0.25}, deltas)
}

func TestRunRequiresWindowAndRenderer(t *testing.T) {
	assert.ErrorIs(t, NewEngine().RunFrames(1), ErrNoRenderer)

	_, e := newHeadless(t)
	assert.ErrorIs(t, e.Run(), ErrNoWindow)

	assert.ErrorIs(t, NewEngine(WithWindow(&fakeWindow{})).Run(), ErrNoRenderer)
}

func TestRunDrivesWindowLoop(t *testing.T) {
	w := &fakeWindow{iterations: 4}
	dev, e := newHeadless(t, WithWindow(w), WithFrameSource(quadFrame))

	require.NoError(t, e.Run())

	assert.Equal(t, uint64(4), e.Frames())
	assert.Equal(t, 4, dev.Count(device.OpSubmit))
	assert.Empty(t, dev.LiveResources())
}

func TestRunClosesWindowOnQuit(t *testing.T) {
	w := &fakeWindow{iterations: 10}
	_, e := newHeadless(t, WithWindow(w))
	e.SetFrameSource(func(float32) draw.FrameBuffer {
		e.Quit()
		return nil
	})

	require.NoError(t, e.Run())

	assert.True(t, w.closed)
	assert.Equal(t, uint64(1), e.Frames())
}

func TestResizeUpdatesResolution(t *testing.T) {
	w := &fakeWindow{}
	dev, e := newHeadless(t, WithWindow(w))
	require.NotNil(t, w.onResize)

	w.onResize(320, 240)

	assert.Equal(t, common.Size{Width: 320, Height: 240}, e.Renderer().Resolution())
	width, height := dev.SurfaceSize()
	assert.Equal(t, uint32(320), width)
	assert.Equal(t, uint32(240), height)
}

func TestRenderFrameLimit(t *testing.T) {
	_, e := newHeadless(t, WithRenderFrameLimit(0))
	assert.Zero(t, e.(*engine).renderFrameLimit)

	e.SetRenderFrameLimit(50)
	assert.Equal(t, 20*time.Millisecond, e.(*engine).renderFrameLimit)

	e.SetRenderFrameLimit(-1)
	assert.Zero(t, e.(*engine).renderFrameLimit)
}

func TestProfilerTicksPerFrame(t *testing.T) {
	_, e := newHeadless(t, WithProfiling(true))
	require.NoError(t, e.RunFrames(2))
	assert.NotNil(t, e.Profiler())

	e.DisableProfiler()
	assert.False(t, e.(*engine).profilingEnabled)
	e.EnableProfiler()
	assert.True(t, e.(*engine).profilingEnabled)
}

func TestProfilerReportsRendererStats(t *testing.T) {
	base := time.Unix(0, 0)
	ticks := 0
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}

	_, e := newHeadless(t,
		WithProfiling(true),
		WithFrameSource(quadFrame),
		WithProfilerOptions(profiler.WithClock(clock), profiler.WithInterval(time.Second)),
	)
	require.NoError(t, e.RunFrames(1))

	report := e.Profiler().LastReport()
	assert.Equal(t, uint64(1), report.Renderer.DrawCalls)
	assert.Equal(t, uint64(1), report.Renderer.Submissions)
}
