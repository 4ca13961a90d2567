package draw

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/stretchr/testify/assert"
)

func TestBufferLayoutStrideAndOffsets(t *testing.T) {
	tests := []struct {
		name    string
		layout  BufferLayout
		stride  uint32
		offsets []uint32
		shape   string
	}{
		{
			name:    "position and uv",
			layout:  NewBufferLayout(BufferElement{"a_Position", ElementTypeFloat3}, BufferElement{"a_TexCoord", ElementTypeFloat2}),
			stride:  20,
			offsets: []uint32{0, 12},
			shape:   "Float3,Float2",
		},
		{
			name:    "position color",
			layout:  NewBufferLayout(BufferElement{"a_Position", ElementTypeFloat2}, BufferElement{"a_Color", ElementTypeFloat4}),
			stride:  24,
			offsets: []uint32{0, 8},
			shape:   "Float2,Float4",
		},
		{
			name:    "empty",
			layout:  BufferLayout{},
			stride:  0,
			offsets: []uint32{},
			shape:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stride, tt.layout.Stride())
			assert.Equal(t, tt.offsets, tt.layout.Offsets())
			assert.Equal(t, tt.shape, tt.layout.Shape())
		})
	}
}

func TestElementTypeSize(t *testing.T) {
	assert.EqualValues(t, 4, ElementTypeFloat.Size())
	assert.EqualValues(t, 36, ElementTypeMat3.Size())
	assert.EqualValues(t, 64, ElementTypeMat4.Size())
	assert.EqualValues(t, 1, ElementTypeBool.Size())
	assert.EqualValues(t, 0, ElementTypeNone.Size())
}

func TestFrameBufferKeepsOrder(t *testing.T) {
	var frame FrameBuffer
	frame.Add(Clear{Color: common.ColorBlack}, SetMaterial{})
	frame.Add(DrawMesh{})

	assert.Len(t, frame, 3)
	assert.IsType(t, Clear{}, frame[0])
	assert.IsType(t, SetMaterial{}, frame[1])
	assert.IsType(t, DrawMesh{}, frame[2])

	frame.Reset()
	assert.Empty(t, frame)
}

func TestKeysFallBackToPath(t *testing.T) {
	assert.Equal(t, "id", Shader{ID: "id", Path: "a.wgsl"}.Key())
	assert.Equal(t, "a.wgsl#vertex", Shader{Path: "a.wgsl"}.Key())
	assert.Equal(t, "a.wgsl#fragment", Shader{Path: "a.wgsl", Stage: common.ShaderStageFragment}.Key())
	assert.Empty(t, Shader{Stage: common.ShaderStageFragment}.Key())
	assert.Equal(t, "wood.bmp", Texture{Path: "wood.bmp"}.Key())

	assert.True(t, Shader{Path: "shaders/quad.WGSL"}.IsSourceFile())
	assert.False(t, Shader{Path: "shaders/quad.spv"}.IsSourceFile())
}

func TestMeshBytes(t *testing.T) {
	m := Mesh{Vertices: []float32{1, 2, 3}, Indices: []uint32{0, 1, 2}}
	assert.Len(t, m.VertexBytes(), 12)
	assert.Len(t, m.IndexBytes(), 12)
	assert.EqualValues(t, 3, m.IndexCount())
}

func TestNewShaderDataCopies(t *testing.T) {
	values := []float32{1, 0, 0, 1}
	d := NewShaderData(common.ShaderStageFragment, 0, values...)
	values[0] = 0

	assert.Equal(t, common.ShaderStageFragment, d.Stage)
	assert.Len(t, d.Data, 16)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, d.Data[:4])
}
