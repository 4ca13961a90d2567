// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// Color is a linear RGBA color with each channel in the range [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	// ColorBlack is opaque black.
	ColorBlack = Color{R: 0, G: 0, B: 0, A: 1}

	// ColorWhite is opaque white.
	ColorWhite = Color{R: 1, G: 1, B: 1, A: 1}

	// ColorCornflower is the default clear color used when none is configured.
	ColorCornflower = Color{R: 0.392, G: 0.584, B: 0.929, A: 1}
)

// Size is a width and height pair in pixels.
type Size struct {
	Width, Height int
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Position is a pixel offset from the top-left corner of a surface.
type Position struct {
	X, Y int
}

// Viewport is the region of the render target that draw calls are mapped to.
type Viewport struct {
	// Position is the origin of the viewport in pixels.
	Position Position
	// Size is the extent of the viewport in pixels.
	Size Size
}

// IsZero reports whether the viewport has no area configured.
func (v Viewport) IsZero() bool {
	return v.Size.IsZero()
}

// GraphicsAPI tags which graphics API the renderer reports to the host. It is informational only.
type GraphicsAPI int

const (
	// GraphicsAPINone means no API has been selected.
	GraphicsAPINone GraphicsAPI = iota
	// GraphicsAPIVulkan selects Vulkan.
	GraphicsAPIVulkan
	// GraphicsAPIMetal selects Metal.
	GraphicsAPIMetal
	// GraphicsAPIDirectX12 selects Direct3D 12.
	GraphicsAPIDirectX12
	// GraphicsAPIWebGPU selects WebGPU.
	GraphicsAPIWebGPU
)

// String returns the display name of the API.
func (a GraphicsAPI) String() string {
	switch a {
	case GraphicsAPIVulkan:
		return "Vulkan"
	case GraphicsAPIMetal:
		return "Metal"
	case GraphicsAPIDirectX12:
		return "DirectX12"
	case GraphicsAPIWebGPU:
		return "WebGPU"
	default:
		return "None"
	}
}

// ShaderStage identifies the programmable stage a shader or uniform payload targets.
type ShaderStage int

const (
	// ShaderStageVertex is the vertex processing stage.
	ShaderStageVertex ShaderStage = iota
	// ShaderStageFragment is the fragment processing stage.
	ShaderStageFragment
)

// String returns the lower-case stage name.
func (s ShaderStage) String() string {
	if s == ShaderStageFragment {
		return "fragment"
	}
	return "vertex"
}

// TextureFilter selects the minification and magnification filter of a sampler.
type TextureFilter int

const (
	// TextureFilterNearest samples the closest texel.
	TextureFilterNearest TextureFilter = iota
	// TextureFilterLinear blends the four closest texels.
	TextureFilterLinear
)

// TextureWrap selects how texture coordinates outside [0, 1] are resolved.
type TextureWrap int

const (
	// TextureWrapClampToEdge clamps coordinates to the edge texel.
	TextureWrapClampToEdge TextureWrap = iota
	// TextureWrapMirroredRepeat repeats the texture, mirroring every other tile.
	TextureWrapMirroredRepeat
	// TextureWrapRepeat tiles the texture.
	TextureWrapRepeat
)

// PixelFormat is the channel layout of CPU-side pixel data.
type PixelFormat int

const (
	// PixelFormatRGBA is 4 bytes per pixel: red, green, blue, alpha.
	PixelFormatRGBA PixelFormat = iota
	// PixelFormatRGB is 3 bytes per pixel: red, green, blue.
	PixelFormatRGB
)

// Channels returns the number of bytes per pixel for the format, or 0 for an unknown format.
func (f PixelFormat) Channels() int {
	switch f {
	case PixelFormatRGBA:
		return 4
	case PixelFormatRGB:
		return 3
	default:
		return 0
	}
}
