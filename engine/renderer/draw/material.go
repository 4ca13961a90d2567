package draw

import (
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

// Shader describes one shader stage. Source holds WGSL text; Path names a file that is either WGSL
// (".wgsl" extension) or precompiled SPIR-V bytecode. Source wins when both are set.
type Shader struct {
	ID     string
	Stage  common.ShaderStage
	Source string
	Path   string
}

// Key returns the cache key of the shader: its ID, or its path and stage when no ID was given. A single
// source file declaring both entry points therefore yields one entry per stage.
func (s Shader) Key() string {
	if s.ID != "" || s.Path == "" {
		return s.ID
	}
	return s.Path + "#" + s.Stage.String()
}

// IsSourceFile reports whether Path names a shader source file that must be compiled.
func (s Shader) IsSourceFile() bool {
	return strings.EqualFold(filepath.Ext(s.Path), ".wgsl")
}

// ShaderPair is the vertex and fragment shader of a material.
type ShaderPair struct {
	Vertex   Shader
	Fragment Shader
}

// Texture describes a texture either by file path or by raw pixels. Pixels are tightly packed rows in
// Format; Width and Height are in pixels.
type Texture struct {
	ID string

	Path string

	Pixels []byte
	Width  int
	Height int
	Format common.PixelFormat

	Filter common.TextureFilter
	Wrap   common.TextureWrap
}

// Key returns the cache key of the texture: its ID, or its path when no ID was given.
func (t Texture) Key() string {
	return common.Coalesce(t.ID, t.Path)
}

// Material is a shader pair plus the textures bound, in order, to the fragment stage.
type Material struct {
	Shader   ShaderPair
	Textures []Texture
}

// ShaderData is a raw uniform payload for one stage and slot.
type ShaderData struct {
	Stage common.ShaderStage
	Slot  uint32
	Data  []byte
}

// NewShaderData builds a uniform payload from plain values, copying their memory.
//
// Parameters:
//   - stage: the shader stage the payload targets
//   - slot: the uniform slot within that stage
//   - values: the values to pack, in order
//
// Returns:
//   - ShaderData: the payload
func NewShaderData[T any](stage common.ShaderStage, slot uint32, values ...T) ShaderData {
	raw := common.SliceToBytes(values)
	data := make([]byte, len(raw))
	copy(data, raw)
	return ShaderData{Stage: stage, Slot: slot, Data: data}
}
