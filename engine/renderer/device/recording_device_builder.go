package device

// RecordingDeviceBuilderOption is a functional option applied to a RecordingDevice during construction via NewRecordingDevice.
type RecordingDeviceBuilderOption func(*RecordingDevice)

// WithSwapchainAvailable controls whether a presentable image can be acquired.
//
// Parameters:
//   - available: whether WaitAndAcquireSwapchainTexture yields a texture
//
// Returns:
//   - RecordingDeviceBuilderOption: a function that applies the swapchain option to a device
func WithSwapchainAvailable(available bool) RecordingDeviceBuilderOption {
	return func(d *RecordingDevice) {
		d.swapchainAvailable = available
	}
}

// WithSwapchainFormat sets the format reported by SwapchainFormat.
//
// Parameters:
//   - format: the texel format of the presentable images
//
// Returns:
//   - RecordingDeviceBuilderOption: a function that applies the format option to a device
func WithSwapchainFormat(format TextureFormat) RecordingDeviceBuilderOption {
	return func(d *RecordingDevice) {
		d.swapchainFormat = format
	}
}

// WithRecordingSurfaceSize sets the size of the simulated presentable images.
//
// Parameters:
//   - width: the image width in pixels
//   - height: the image height in pixels
//
// Returns:
//   - RecordingDeviceBuilderOption: a function that applies the size option to a device
func WithRecordingSurfaceSize(width, height uint32) RecordingDeviceBuilderOption {
	return func(d *RecordingDevice) {
		d.width = width
		d.height = height
	}
}

// WithFailure makes every call of the given kind fail with err.
//
// Parameters:
//   - op: the call kind to fail
//   - err: the error returned by the call
//
// Returns:
//   - RecordingDeviceBuilderOption: a function that applies the failure option to a device
func WithFailure(op Op, err error) RecordingDeviceBuilderOption {
	return func(d *RecordingDevice) {
		d.failures[op] = err
	}
}
