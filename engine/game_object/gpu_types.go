package game_object

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
)

// SpriteVertexSource is the default vertex shader of a sprite. It reads GPUTransform from vertex uniform slot 0.
//
//go:embed assets/sprite_vertex.wgsl
var SpriteVertexSource string

// SpriteFragmentSource is the default fragment shader of a sprite. It samples the material's first texture
// and multiplies it with the tint in fragment uniform slot 0.
//
//go:embed assets/sprite_fragment.wgsl
var SpriteFragmentSource string

// GPUTransform is the uniform layout of the Transform struct in SpriteVertexSource.
// Size: 32 bytes.
type GPUTransform struct {
	OffsetScale [4]float32 // offset  0: xy clip-space offset, zw scale (16 bytes)
	Rotation    [4]float32 // offset 16: x angle in radians, yzw padding (16 bytes)
}

// Size returns the size of the GPUTransform struct in bytes.
func (g *GPUTransform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// SpriteMaterial builds a material drawing with the default sprite shaders.
//
// Parameters:
//   - textures: the textures bound to the fragment stage, the first one is sampled
//
// Returns:
//   - draw.Material: the sprite material
func SpriteMaterial(textures ...draw.Texture) draw.Material {
	return draw.Material{
		Shader: draw.ShaderPair{
			Vertex:   draw.Shader{ID: "oxy:sprite.vert", Stage: common.ShaderStageVertex, Source: SpriteVertexSource},
			Fragment: draw.Shader{ID: "oxy:sprite.frag", Stage: common.ShaderStageFragment, Source: SpriteFragmentSource},
		},
		Textures: textures,
	}
}

// QuadMesh returns a unit quad centered on the origin with positions and texture coordinates.
func QuadMesh() draw.Mesh {
	return draw.Mesh{
		Vertices: []float32{
			-0.5, -0.5, 0, 0, 1,
			0.5, -0.5, 0, 1, 1,
			0.5, 0.5, 0, 1, 0,
			-0.5, 0.5, 0, 0, 0,
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
		Layout: draw.NewBufferLayout(
			draw.BufferElement{Name: "a_Position", Type: draw.ElementTypeFloat3},
			draw.BufferElement{Name: "a_TexCoord", Type: draw.ElementTypeFloat2},
		),
	}
}
