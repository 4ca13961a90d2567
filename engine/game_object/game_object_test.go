package game_object

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject()

	assert.True(t, obj.Enabled())
	assert.False(t, obj.Ephemeral())
	assert.Equal(t, common.ColorWhite, obj.Tint())
	sx, sy := obj.Scale()
	assert.Equal(t, [2]float32{1, 1}, [2]float32{sx, sy})
	assert.Equal(t, uint32(6), obj.Mesh().IndexCount())
}

func TestGameObjectOptions(t *testing.T) {
	mat := SpriteMaterial()
	obj := NewGameObject(
		WithID(7),
		WithEnabled(false),
		WithEphemeral(true),
		WithMaterial(mat),
		WithTint(common.ColorBlack),
		WithPosition(0.5, -0.25),
		WithScale(2, 3),
		WithRotation(1),
		WithRotationSpeed(0.5),
	)

	assert.Equal(t, uint64(7), obj.ID())
	assert.False(t, obj.Enabled())
	assert.True(t, obj.Ephemeral())
	assert.Equal(t, mat, obj.Material())
	assert.Equal(t, common.ColorBlack, obj.Tint())
	x, y := obj.Position()
	assert.Equal(t, [2]float32{0.5, -0.25}, [2]float32{x, y})
	assert.Equal(t, float32(1), obj.Rotation())
	assert.Equal(t, float32(0.5), obj.RotationSpeed())

	assert.Equal(t, GPUTransform{
		OffsetScale: [4]float32{0.5, -0.25, 2, 3},
		Rotation:    [4]float32{1},
	}, obj.TransformData())
}

func TestGPUTransformSize(t *testing.T) {
	var g GPUTransform
	assert.Equal(t, 32, g.Size())
}

func TestUniformsOrder(t *testing.T) {
	extra := draw.NewShaderData(common.ShaderStageFragment, 1, float32(0.5))
	obj := NewGameObject(WithTint(common.ColorBlack), WithUniforms(extra))

	uniforms := obj.Uniforms()
	require.Len(t, uniforms, 3)

	assert.Equal(t, common.ShaderStageVertex, uniforms[0].Stage)
	assert.Equal(t, uint32(0), uniforms[0].Slot)
	assert.Len(t, uniforms[0].Data, 32)

	assert.Equal(t, common.ShaderStageFragment, uniforms[1].Stage)
	assert.Equal(t, common.SliceToBytes([]common.Color{common.ColorBlack}), uniforms[1].Data)

	assert.Equal(t, extra, uniforms[2])
}

func TestUpdateWrapsRotation(t *testing.T) {
	obj := NewGameObject(WithRotationSpeed(math.Pi))

	obj.Update(1)
	assert.InDelta(t, math.Pi, obj.Rotation(), 1e-5)

	obj.Update(1.5)
	assert.InDelta(t, 0.5*math.Pi, obj.Rotation(), 1e-5)

	still := NewGameObject(WithRotation(2))
	still.Update(10)
	assert.Equal(t, float32(2), still.Rotation())
}

func TestSetters(t *testing.T) {
	obj := NewGameObject()
	mesh := draw.Mesh{Indices: []uint32{0, 1, 2}}

	obj.SetID(3)
	obj.SetEnabled(false)
	obj.SetMaterial(SpriteMaterial())
	obj.SetMesh(mesh)
	obj.SetTint(common.ColorCornflower)
	obj.SetPosition(1, 2)
	obj.SetRotation(0.25)
	obj.SetRotationSpeed(4)
	obj.SetScale(5, 6)

	assert.Equal(t, uint64(3), obj.ID())
	assert.False(t, obj.Enabled())
	assert.Equal(t, "oxy:sprite.vert", obj.Material().Shader.Vertex.ID)
	assert.Equal(t, mesh, obj.Mesh())
	assert.Equal(t, common.ColorCornflower, obj.Tint())
	assert.Equal(t, GPUTransform{
		OffsetScale: [4]float32{1, 2, 5, 6},
		Rotation:    [4]float32{0.25},
	}, obj.TransformData())
	assert.Equal(t, float32(4), obj.RotationSpeed())
}

func TestSpriteMaterial(t *testing.T) {
	tex := draw.Texture{ID: "t"}
	m := SpriteMaterial(tex)

	assert.Equal(t, common.ShaderStageVertex, m.Shader.Vertex.Stage)
	assert.Equal(t, common.ShaderStageFragment, m.Shader.Fragment.Stage)
	assert.Contains(t, m.Shader.Vertex.Source, "@vertex")
	assert.Contains(t, m.Shader.Fragment.Source, "@fragment")
	assert.Equal(t, []draw.Texture{tex}, m.Textures)
	assert.Equal(t, uint32(20), QuadMesh().Layout.Stride())
}
