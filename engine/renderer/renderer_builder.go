package renderer

import (
	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/texture"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipelineCache makes the renderer reuse graphics pipelines across draws and frames, keyed by shader
// pair, vertex layout and target format. By default a pipeline is built and released for every draw.
//
// Parameters:
//   - enabled: true to cache pipelines
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline cache option to a renderer
func WithPipelineCache(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache = enabled
	}
}

// WithViewport sets the initial viewport.
//
// Parameters:
//   - viewport: the viewport applied to every render pass
//
// Returns:
//   - RendererBuilderOption: a function that applies the viewport option to a renderer
func WithViewport(viewport common.Viewport) RendererBuilderOption {
	return func(r *renderer) {
		r.viewport = viewport
	}
}

// WithResolution sets the initial target resolution. Devices with a surface are configured to it.
//
// Parameters:
//   - size: the resolution in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the resolution option to a renderer
func WithResolution(size common.Size) RendererBuilderOption {
	return func(r *renderer) {
		r.resolution = size
	}
}

// WithVSync sets whether presentation waits for vertical blank. Defaults to true.
//
// Parameters:
//   - enabled: true to synchronize with vertical blank
//
// Returns:
//   - RendererBuilderOption: a function that applies the vsync option to a renderer
func WithVSync(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.vsync = enabled
	}
}

// WithAPI sets the graphics API tag reported by the renderer.
//
// Parameters:
//   - api: the API tag
//
// Returns:
//   - RendererBuilderOption: a function that applies the API option to a renderer
func WithAPI(api common.GraphicsAPI) RendererBuilderOption {
	return func(r *renderer) {
		r.api = api
	}
}

// WithClearColor sets the color each frame is cleared to. Defaults to common.ColorCornflower.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithTextureCacheOptions passes options through to the renderer's texture cache.
//
// Parameters:
//   - options: the texture cache options
//
// Returns:
//   - RendererBuilderOption: a function that applies the texture cache options to a renderer
func WithTextureCacheOptions(options ...texture.CacheBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.textureOptions = append(r.textureOptions, options...)
	}
}

// WithShaderCacheOptions passes options through to the renderer's shader cache, e.g. a custom compiler.
//
// Parameters:
//   - options: the shader cache options
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader cache options to a renderer
func WithShaderCacheOptions(options ...shader.CacheBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderOptions = append(r.shaderOptions, options...)
	}
}
