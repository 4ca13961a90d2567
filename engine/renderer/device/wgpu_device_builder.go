package device

// WGPUDeviceBuilderOption is a functional option applied to the WebGPU device during construction via NewWGPUDevice.
type WGPUDeviceBuilderOption func(*wgpuDevice)

// WithForceFallbackAdapter requests the software fallback adapter instead of a hardware one.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the fallback adapter option to a device
func WithForceFallbackAdapter(force bool) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}

// WithSurfaceSize sets the initial size of the presentable images. When omitted the surface is left
// unconfigured until ConfigureSurface is called.
//
// Parameters:
//   - width: the surface width in pixels
//   - height: the surface height in pixels
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the surface size option to a device
func WithSurfaceSize(width, height int) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.width = width
		d.height = height
	}
}

// WithVSync selects vertical-blank synchronized presentation (the default) or immediate presentation.
//
// Parameters:
//   - enabled: whether presentation waits for vertical blank
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the vsync option to a device
func WithVSync(enabled bool) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.SetVSync(enabled)
	}
}
