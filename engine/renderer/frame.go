package renderer

import (
	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
)

// frame is the transient state of one frame, alive between BeginFrame and EndFrame. The command buffer it
// holds is submitted by close, exactly once, whatever path the frame ends on.
type frame struct {
	cmd       device.CommandBuffer
	swapchain device.Texture
	pass      device.RenderPass

	// target is the color target the next pass opens with
	target device.ColorTarget
	// clearPending is set until a pass has cleared target with its current clear color
	clearPending bool

	submitted bool
}

func newFrame(cmd device.CommandBuffer) *frame {
	return &frame{cmd: cmd}
}

// bind points the frame's color target at the acquired swapchain texture. The first pass opened afterwards
// clears it to clearColor.
func (f *frame) bind(swapchain device.Texture, clearColor common.Color) {
	f.swapchain = swapchain
	f.target = device.ColorTarget{
		Texture:    swapchain,
		ClearColor: clearColor,
		LoadOp:     device.LoadOpClear,
		StoreOp:    device.StoreOpStore,
	}
	f.clearPending = true
}

// setClearColor replaces the clear value of the pending color target. The next pass to open clears with it.
func (f *frame) setClearColor(c common.Color) {
	f.target.ClearColor = c
	f.clearPending = true
}

// openPass returns the open render pass, opening one if needed. A pass clears the target only while a
// clear is pending; otherwise it loads the contents left by the previous pass.
//
// Parameters:
//   - viewport: applied to a newly opened pass when non-zero
//
// Returns:
//   - device.RenderPass: the open pass
//   - bool: true when this call opened the pass
//   - error: the device error when the pass could not be opened
func (f *frame) openPass(viewport common.Viewport) (device.RenderPass, bool, error) {
	if f.pass != nil {
		return f.pass, false, nil
	}

	target := f.target
	if !f.clearPending {
		target.LoadOp = device.LoadOpLoad
	}
	pass, err := f.cmd.BeginRenderPass(target)
	if err != nil {
		return nil, false, err
	}
	f.clearPending = false
	if !viewport.IsZero() {
		pass.SetViewport(viewport)
	}
	f.pass = pass
	return pass, true, nil
}

// closePass ends the open render pass, if any.
func (f *frame) closePass() {
	if f.pass == nil {
		return
	}
	f.pass.End()
	f.pass = nil
}

// close ends the open pass and submits the command buffer. Calls after the first are no-ops.
func (f *frame) close() error {
	if f.submitted {
		return nil
	}
	f.closePass()
	f.submitted = true
	return f.cmd.Submit()
}
