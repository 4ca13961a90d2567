package pipeline

import (
	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
)

// Key identifies a pipeline by everything Build depends on.
type Key struct {
	VertexShaderID   string
	FragmentShaderID string
	LayoutShape      string
	Format           device.TextureFormat
}

// NewKey derives the key of the pipeline Build would create for the given inputs. Shaders are identified
// by their labels, which the shader cache sets to the shader ID.
func NewKey(vs, fs device.Shader, layout draw.BufferLayout, format device.TextureFormat) Key {
	return Key{
		VertexShaderID:   vs.Label(),
		FragmentShaderID: fs.Label(),
		LayoutShape:      layout.Shape(),
		Format:           format,
	}
}

type cache struct {
	dev     device.Device
	entries map[Key]device.Pipeline
}

// Cache memoizes pipelines by Key so that equal draws share one pipeline across frames. Pipelines it returns
// are owned by the cache and must not be released by the caller.
//
// The cache is not safe for concurrent use; it belongs to the render thread.
type Cache interface {
	// GetOrBuild returns the pipeline for the inputs' key, building it on a miss.
	//
	// Parameters:
	//   - vs: the vertex shader
	//   - fs: the fragment shader
	//   - layout: the vertex layout
	//   - format: the color target format
	//
	// Returns:
	//   - device.Pipeline: the cached pipeline
	//   - bool: true when the pipeline was built by this call
	//   - error: the Build error; nothing is cached in that case
	GetOrBuild(vs, fs device.Shader, layout draw.BufferLayout, format device.TextureFormat) (device.Pipeline, bool, error)

	// Len returns the number of cached pipelines.
	Len() int

	// ReleaseAll releases every cached pipeline and empties the cache.
	ReleaseAll()
}

var _ Cache = &cache{}

// NewCache creates an empty pipeline cache on the given device.
//
// Parameters:
//   - dev: the device pipelines are created on
//
// Returns:
//   - Cache: the created cache
func NewCache(dev device.Device) Cache {
	return &cache{
		dev:     dev,
		entries: make(map[Key]device.Pipeline),
	}
}

func (c *cache) GetOrBuild(vs, fs device.Shader, layout draw.BufferLayout, format device.TextureFormat) (device.Pipeline, bool, error) {
	key := NewKey(vs, fs, layout, format)
	if p, ok := c.entries[key]; ok {
		return p, false, nil
	}

	p, err := Build(c.dev, vs, fs, layout, format)
	if err != nil {
		return nil, false, err
	}
	c.entries[key] = p
	common.Logger().Debug("pipeline cached", "vertex", key.VertexShaderID, "fragment", key.FragmentShaderID, "layout", key.LayoutShape)
	return p, true, nil
}

func (c *cache) Len() int {
	return len(c.entries)
}

func (c *cache) ReleaseAll() {
	for key, p := range c.entries {
		p.Release()
		delete(c.entries, key)
	}
}
