package device

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingDeviceFrameLifecycle(t *testing.T) {
	dev := NewRecordingDevice()

	cmd, err := dev.AcquireCommandBuffer()
	require.NoError(t, err)

	swapchain, err := cmd.WaitAndAcquireSwapchainTexture()
	require.NoError(t, err)
	require.NotNil(t, swapchain)
	assert.EqualValues(t, 800, swapchain.Width())

	pass, err := cmd.BeginRenderPass(ColorTarget{Texture: swapchain, ClearColor: common.ColorBlack, LoadOp: LoadOpClear})
	require.NoError(t, err)
	pass.End()
	require.NoError(t, cmd.Submit())

	assert.Equal(t, []Op{OpAcquireCommandBuffer, OpAcquireSwapchain, OpBeginRenderPass, OpEndRenderPass, OpSubmit}, dev.Ops())
	assert.Empty(t, dev.Violations())
	assert.NoError(t, dev.LastError())
}

func TestRecordingDeviceSwapchainUnavailable(t *testing.T) {
	dev := NewRecordingDevice(WithSwapchainAvailable(false))

	cmd, err := dev.AcquireCommandBuffer()
	require.NoError(t, err)

	swapchain, err := cmd.WaitAndAcquireSwapchainTexture()
	assert.NoError(t, err)
	assert.Nil(t, swapchain)
	require.NoError(t, cmd.Submit())

	dev.SetSwapchainAvailable(true)
	cmd, err = dev.AcquireCommandBuffer()
	require.NoError(t, err)
	swapchain, err = cmd.WaitAndAcquireSwapchainTexture()
	assert.NoError(t, err)
	assert.NotNil(t, swapchain)
	require.NoError(t, cmd.Submit())
}

func TestRecordingDeviceViolations(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, dev *RecordingDevice)
	}{
		{
			name: "double submit",
			run: func(t *testing.T, dev *RecordingDevice) {
				cmd, _ := dev.AcquireCommandBuffer()
				require.NoError(t, cmd.Submit())
				assert.ErrorIs(t, cmd.Submit(), ErrAlreadySubmitted)
			},
		},
		{
			name: "second pass while one is open",
			run: func(t *testing.T, dev *RecordingDevice) {
				cmd, _ := dev.AcquireCommandBuffer()
				swapchain, _ := cmd.WaitAndAcquireSwapchainTexture()
				pass, err := cmd.BeginRenderPass(ColorTarget{Texture: swapchain})
				require.NoError(t, err)
				_, err = cmd.BeginCopyPass()
				assert.ErrorIs(t, err, ErrPassOpen)
				pass.End()
				require.NoError(t, cmd.Submit())
			},
		},
		{
			name: "buffer created mid pass",
			run: func(t *testing.T, dev *RecordingDevice) {
				cmd, _ := dev.AcquireCommandBuffer()
				swapchain, _ := cmd.WaitAndAcquireSwapchainTexture()
				pass, _ := cmd.BeginRenderPass(ColorTarget{Texture: swapchain})
				buf, err := dev.CreateBuffer(&BufferDescriptor{Label: "late", Usage: BufferUsageVertex, Size: 4})
				require.NoError(t, err)
				buf.Release()
				pass.End()
				require.NoError(t, cmd.Submit())
			},
		},
		{
			name: "draw without pipeline",
			run: func(t *testing.T, dev *RecordingDevice) {
				cmd, _ := dev.AcquireCommandBuffer()
				swapchain, _ := cmd.WaitAndAcquireSwapchainTexture()
				pass, _ := cmd.BeginRenderPass(ColorTarget{Texture: swapchain})
				pass.DrawIndexedPrimitives(3, 1, 0, 0, 0)
				pass.End()
				require.NoError(t, cmd.Submit())
			},
		},
		{
			name: "submit with open pass",
			run: func(t *testing.T, dev *RecordingDevice) {
				cmd, _ := dev.AcquireCommandBuffer()
				swapchain, _ := cmd.WaitAndAcquireSwapchainTexture()
				_, _ = cmd.BeginRenderPass(ColorTarget{Texture: swapchain})
				require.NoError(t, cmd.Submit())
			},
		},
		{
			name: "destroy with live resources",
			run: func(t *testing.T, dev *RecordingDevice) {
				_, err := dev.CreateSampler(&SamplerDescriptor{Label: "leaked"})
				require.NoError(t, err)
				assert.Equal(t, []string{"leaked"}, dev.LiveResources())
				dev.Destroy()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := NewRecordingDevice()
			tt.run(t, dev)
			assert.Len(t, dev.Violations(), 1)
			assert.Error(t, dev.LastError())
			assert.NoError(t, dev.LastError(), "LastError clears the pending error")
		})
	}
}

func TestRecordingDeviceFailureInjection(t *testing.T) {
	boom := errors.New("boom")
	dev := NewRecordingDevice(WithFailure(OpCreateShader, boom))

	_, err := dev.CreateShader(&ShaderDescriptor{Label: "vs", Code: []byte{1}})
	assert.ErrorIs(t, err, boom)

	dev.Fail(OpCreateShader, nil)
	s, err := dev.CreateShader(&ShaderDescriptor{Label: "vs", Code: []byte{1}, Stage: common.ShaderStageVertex})
	require.NoError(t, err)
	assert.Equal(t, common.ShaderStageVertex, s.Stage())

	s.Release()
	s.Release()
	assert.Equal(t, 1, dev.Count(OpRelease))
	assert.Empty(t, dev.LiveResources())
}

func TestRecordingDeviceCopyPassCapturesData(t *testing.T) {
	dev := NewRecordingDevice()

	buf, err := dev.CreateBuffer(&BufferDescriptor{Label: "vb", Usage: BufferUsageVertex, Size: 4})
	require.NoError(t, err)
	tb, err := dev.CreateTransferBuffer(&TransferBufferDescriptor{Label: "staging", Size: 4})
	require.NoError(t, err)

	mapped, err := tb.Map()
	require.NoError(t, err)
	copy(mapped, []byte{1, 2, 3, 4})
	_, err = tb.Map()
	assert.Error(t, err, "mapping twice fails")
	tb.Unmap()

	cmd, _ := dev.AcquireCommandBuffer()
	copyPass, err := cmd.BeginCopyPass()
	require.NoError(t, err)
	copyPass.UploadToBuffer(tb, 0, buf, 0, 4)
	copyPass.End()
	require.NoError(t, cmd.Submit())

	uploads := dev.CallsOf(OpUploadToBuffer)
	require.Len(t, uploads, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, uploads[0].Data)
	assert.Equal(t, "vb", uploads[0].Label)

	tb.Release()
	buf.Release()
	dev.Destroy()
	assert.Empty(t, dev.Violations())
}

func TestRecordingDeviceSurfaceConfigurer(t *testing.T) {
	dev := NewRecordingDevice()

	var configurer SurfaceConfigurer = dev
	configurer.SetVSync(false)
	configurer.ConfigureSurface(1280, 720)

	assert.False(t, dev.VSync())
	w, h := dev.SurfaceSize()
	assert.EqualValues(t, 1280, w)
	assert.EqualValues(t, 720, h)
}

func TestVertexElementFormatSize(t *testing.T) {
	assert.EqualValues(t, 8, VertexElementFormatFloat2.Size())
	assert.EqualValues(t, 12, VertexElementFormatFloat3.Size())
	assert.EqualValues(t, 16, VertexElementFormatFloat4.Size())
	assert.EqualValues(t, 0, VertexElementFormatInvalid.Size())
}
