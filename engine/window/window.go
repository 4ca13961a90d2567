package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the interface for a platform window the renderer presents to.
//
// The window owns the native surface; the renderer only receives its surface descriptor. All methods must
// be called from the thread that created the window.
type Window interface {
	// SetUpdateCallback sets the function called once per iteration of the message loop. It is where the
	// host draws its frame.
	//
	// Parameters:
	//   - callback: the function to call every loop iteration
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: receives the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the function called when a key is pressed or repeats.
	//
	// Parameters:
	//   - callback: receives the pressed key
	SetKeyDownCallback(callback func(key common.KeyCode))

	// SurfaceDescriptor returns the WebGPU surface descriptor of the native window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil when the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the native window.
	//
	// Returns:
	//   - error: an error if the window was never created
	Close() error

	// ProcessMessages runs the message loop until the window closes, calling the update callback every
	// iteration.
	ProcessMessages()

	// Size returns the framebuffer size in pixels.
	Size() common.Size
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	// size limits applied to the native window, 0 means unlimited
	maxWidth, maxHeight int
	minWidth, minHeight int

	width, height int

	// internalWindow holds the platform-specific window state
	internalWindow any

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(key common.KeyCode)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a platform window.
//
// Parameters:
//   - options: WindowBuilderOption functions to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	common.Logger().Info("window created", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxydraw",
		maxWidth:  0,
		maxHeight: 0,
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key common.KeyCode)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Size() common.Size {
	return common.Size{Width: w.width, Height: w.height}
}
