package transfer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndUploadBuffer(t *testing.T) {
	dev := device.NewRecordingDevice()
	cmd, err := dev.AcquireCommandBuffer()
	require.NoError(t, err)

	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	buf, err := CreateAndUploadBuffer(dev, cmd, device.BufferUsageVertex, "Vertex Buffer", data)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), buf.Size())

	require.NoError(t, cmd.Submit())

	assert.Equal(t, []device.Op{
		device.OpAcquireCommandBuffer,
		device.OpCreateBuffer,
		device.OpCreateTransferBuffer,
		device.OpBeginCopyPass,
		device.OpUploadToBuffer,
		device.OpEndCopyPass,
		device.OpRelease,
		device.OpSubmit,
	}, dev.Ops())
	assert.Equal(t, data, dev.CallsOf(device.OpUploadToBuffer)[0].Data)
	assert.Equal(t, []string{"Vertex Buffer"}, dev.LiveResources(), "only the destination buffer survives")

	buf.Release()
	assert.Empty(t, dev.Violations())
}

func TestUploadTexture(t *testing.T) {
	dev := device.NewRecordingDevice()
	cmd, _ := dev.AcquireCommandBuffer()

	tex, err := dev.CreateTexture(&device.TextureDescriptor{Label: "white", Format: device.TextureFormatRGBA8Unorm, Usage: device.TextureUsageSampler, Width: 2, Height: 2})
	require.NoError(t, err)

	pixels := make([]byte, 16)
	for i := range pixels {
		pixels[i] = 0xFF
	}
	require.NoError(t, UploadTexture(dev, cmd, tex, pixels, 2, 2))
	require.NoError(t, cmd.Submit())

	uploads := dev.CallsOf(device.OpUploadToTexture)
	require.Len(t, uploads, 1)
	assert.Equal(t, pixels, uploads[0].Data)
	assert.EqualValues(t, 2, uploads[0].Width)

	tex.Release()
	assert.Empty(t, dev.LiveResources())
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name string
		run  func(dev *device.RecordingDevice, cmd device.CommandBuffer) error
		want error
	}{
		{
			name: "empty buffer upload",
			run: func(dev *device.RecordingDevice, cmd device.CommandBuffer) error {
				_, err := CreateAndUploadBuffer(dev, cmd, device.BufferUsageIndex, "ib", nil)
				return err
			},
			want: ErrEmptyUpload,
		},
		{
			name: "texture size mismatch",
			run: func(dev *device.RecordingDevice, cmd device.CommandBuffer) error {
				tex, _ := dev.CreateTexture(&device.TextureDescriptor{Label: "t", Width: 2, Height: 2})
				defer tex.Release()
				return UploadTexture(dev, cmd, tex, []byte{1, 2, 3}, 2, 2)
			},
		},
		{
			name: "oversized buffer upload",
			run: func(dev *device.RecordingDevice, cmd device.CommandBuffer) error {
				buf, _ := dev.CreateBuffer(&device.BufferDescriptor{Label: "b", Size: 2})
				defer buf.Release()
				return UploadBuffer(dev, cmd, buf, []byte{1, 2, 3})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := device.NewRecordingDevice()
			cmd, _ := dev.AcquireCommandBuffer()
			err := tt.run(dev, cmd)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			require.NoError(t, cmd.Submit())
			assert.Empty(t, dev.LiveResources())
		})
	}
}

func TestCreateAndUploadBufferReleasesOnStagingFailure(t *testing.T) {
	boom := errors.New("out of staging memory")
	dev := device.NewRecordingDevice(device.WithFailure(device.OpCreateTransferBuffer, boom))
	cmd, _ := dev.AcquireCommandBuffer()

	_, err := CreateAndUploadBuffer(dev, cmd, device.BufferUsageVertex, "vb", []byte{1, 2, 3, 4})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, dev.LiveResources())
	require.NoError(t, cmd.Submit())
}
