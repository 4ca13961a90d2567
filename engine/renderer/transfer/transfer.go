// Package transfer stages CPU data into GPU-only buffers and textures through a transfer buffer and a copy pass.
package transfer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
)

// ErrEmptyUpload is returned when there are no bytes to upload.
var ErrEmptyUpload = errors.New("nothing to upload")

// UploadBuffer copies data into the start of dst. The copy is recorded into cmd and executes when cmd is
// submitted. No pass may be open on cmd.
//
// Parameters:
//   - dev: the device that owns dst
//   - cmd: the command buffer the copy pass is recorded into
//   - dst: the destination buffer, at least len(data) bytes long
//   - data: the bytes to upload
//
// Returns:
//   - error: an error if staging fails
func UploadBuffer(dev device.Device, cmd device.CommandBuffer, dst device.Buffer, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyUpload
	}
	if uint32(len(data)) > dst.Size() {
		return fmt.Errorf("upload of %d bytes does not fit buffer %q of %d bytes", len(data), dst.Label(), dst.Size())
	}

	return stage(dev, cmd, dst.Label(), data, func(pass device.CopyPass, src device.TransferBuffer) {
		pass.UploadToBuffer(src, 0, dst, 0, uint32(len(data)))
	})
}

// UploadTexture copies tightly packed RGBA8 pixels into the full extent of dst.
//
// Parameters:
//   - dev: the device that owns dst
//   - cmd: the command buffer the copy pass is recorded into
//   - dst: the destination texture
//   - pixels: width*height*4 bytes of RGBA8 data
//   - width: the texture width in pixels
//   - height: the texture height in pixels
//
// Returns:
//   - error: an error if the pixel data has the wrong size or staging fails
func UploadTexture(dev device.Device, cmd device.CommandBuffer, dst device.Texture, pixels []byte, width, height uint32) error {
	if len(pixels) == 0 {
		return ErrEmptyUpload
	}
	if want := int(width) * int(height) * 4; len(pixels) != want {
		return fmt.Errorf("texture %q expects %d bytes of pixel data, got %d", dst.Label(), want, len(pixels))
	}

	return stage(dev, cmd, dst.Label(), pixels, func(pass device.CopyPass, src device.TransferBuffer) {
		pass.UploadToTexture(src, 0, dst, width, height)
	})
}

// CreateAndUploadBuffer creates a GPU-only buffer sized exactly to data and stages data into it.
//
// Parameters:
//   - dev: the device to create the buffer on
//   - cmd: the command buffer the copy pass is recorded into
//   - usage: the usage of the created buffer
//   - label: the debug label of the created buffer
//   - data: the buffer contents
//
// Returns:
//   - device.Buffer: the created buffer, owned by the caller
//   - error: an error if creation or staging fails, in which case nothing is leaked
func CreateAndUploadBuffer(dev device.Device, cmd device.CommandBuffer, usage device.BufferUsage, label string, data []byte) (device.Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	buf, err := dev.CreateBuffer(&device.BufferDescriptor{
		Label: label,
		Usage: usage,
		Size:  uint32(len(data)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}

	if err := UploadBuffer(dev, cmd, buf, data); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}

func stage(dev device.Device, cmd device.CommandBuffer, label string, data []byte, upload func(device.CopyPass, device.TransferBuffer)) error {
	src, err := dev.CreateTransferBuffer(&device.TransferBufferDescriptor{
		Label: label + " Staging",
		Size:  uint32(len(data)),
	})
	if err != nil {
		return fmt.Errorf("failed to create transfer buffer for %q: %w", label, err)
	}
	defer src.Release()

	mapped, err := src.Map()
	if err != nil {
		return fmt.Errorf("failed to map transfer buffer for %q: %w", label, err)
	}
	copy(mapped, data)
	src.Unmap()

	pass, err := cmd.BeginCopyPass()
	if err != nil {
		return fmt.Errorf("failed to begin copy pass for %q: %w", label, err)
	}
	upload(pass, src)
	pass.End()

	return nil
}
