package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// BackendType identifies the device implementation a renderer draws on.
type BackendType int

const (
	// BackendTypeWGPU selects the WebGPU device presenting to a window surface.
	BackendTypeWGPU BackendType = iota

	// BackendTypeHeadless selects the recording device, which keeps every call in memory and presents nothing.
	BackendTypeHeadless
)

// String returns the configuration name of the backend.
func (b BackendType) String() string {
	if b == BackendTypeHeadless {
		return "headless"
	}
	return "wgpu"
}

// API returns the graphics API tag matching the backend.
func (b BackendType) API() common.GraphicsAPI {
	if b == BackendTypeHeadless {
		return common.GraphicsAPINone
	}
	return common.GraphicsAPIWebGPU
}

// ParseBackendType maps a configuration name to a BackendType. Names are case-insensitive.
//
// Parameters:
//   - name: "wgpu" or "headless"
//
// Returns:
//   - BackendType: the matching backend
//   - error: an error if the name is unknown
func ParseBackendType(name string) (BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	case "headless":
		return BackendTypeHeadless, nil
	default:
		return BackendTypeWGPU, fmt.Errorf("unknown backend %q", name)
	}
}

// DeviceConfig is what NewDevice needs to open a backend.
type DeviceConfig struct {
	// Surface is the window surface of the WebGPU backend. Ignored by the headless backend.
	Surface *wgpu.SurfaceDescriptor
	Size    common.Size
	VSync   bool

	// ForceFallbackAdapter requests a CPU/software adapter from WebGPU.
	ForceFallbackAdapter bool
}

// NewDevice opens the device of the selected backend.
//
// Parameters:
//   - backend: the backend to open
//   - cfg: the surface, size and presentation settings
//
// Returns:
//   - device.Device: the opened device, owned by the caller
//   - error: an error if the device could not be created
func NewDevice(backend BackendType, cfg DeviceConfig) (device.Device, error) {
	switch backend {
	case BackendTypeHeadless:
		return device.NewRecordingDevice(
			device.WithRecordingSurfaceSize(uint32(max(cfg.Size.Width, 1)), uint32(max(cfg.Size.Height, 1))),
		), nil
	case BackendTypeWGPU:
		fallthrough
	default:
		if cfg.Surface == nil {
			return nil, device.ErrNoSurface
		}
		return device.NewWGPUDevice(cfg.Surface,
			device.WithSurfaceSize(cfg.Size.Width, cfg.Size.Height),
			device.WithVSync(cfg.VSync),
			device.WithForceFallbackAdapter(cfg.ForceFallbackAdapter),
		)
	}
}
