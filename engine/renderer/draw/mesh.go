package draw

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-gpu/common"
)

// ElementType is the data type of one vertex attribute.
type ElementType int

const (
	ElementTypeNone ElementType = iota
	ElementTypeFloat
	ElementTypeFloat2
	ElementTypeFloat3
	ElementTypeFloat4
	ElementTypeInt
	ElementTypeInt2
	ElementTypeInt3
	ElementTypeInt4
	ElementTypeMat3
	ElementTypeMat4
	ElementTypeBool
)

// Size returns the size of the element in bytes.
func (e ElementType) Size() uint32 {
	switch e {
	case ElementTypeFloat, ElementTypeInt:
		return 4
	case ElementTypeFloat2, ElementTypeInt2:
		return 8
	case ElementTypeFloat3, ElementTypeInt3:
		return 12
	case ElementTypeFloat4, ElementTypeInt4:
		return 16
	case ElementTypeMat3:
		return 36
	case ElementTypeMat4:
		return 64
	case ElementTypeBool:
		return 1
	default:
		return 0
	}
}

func (e ElementType) String() string {
	switch e {
	case ElementTypeFloat:
		return "Float"
	case ElementTypeFloat2:
		return "Float2"
	case ElementTypeFloat3:
		return "Float3"
	case ElementTypeFloat4:
		return "Float4"
	case ElementTypeInt:
		return "Int"
	case ElementTypeInt2:
		return "Int2"
	case ElementTypeInt3:
		return "Int3"
	case ElementTypeInt4:
		return "Int4"
	case ElementTypeMat3:
		return "Mat3"
	case ElementTypeMat4:
		return "Mat4"
	case ElementTypeBool:
		return "Bool"
	default:
		return "None"
	}
}

// BufferElement is one named attribute of a vertex.
type BufferElement struct {
	Name string
	Type ElementType
}

// BufferLayout is the ordered list of attributes that make up one vertex.
type BufferLayout struct {
	Elements []BufferElement
}

// NewBufferLayout builds a layout from elements in order.
func NewBufferLayout(elements ...BufferElement) BufferLayout {
	return BufferLayout{Elements: elements}
}

// Stride returns the byte size of one vertex.
func (l BufferLayout) Stride() uint32 {
	var stride uint32
	for _, e := range l.Elements {
		stride += e.Type.Size()
	}
	return stride
}

// Offsets returns the byte offset of each element within a vertex.
func (l BufferLayout) Offsets() []uint32 {
	offsets := make([]uint32, len(l.Elements))
	var offset uint32
	for i, e := range l.Elements {
		offsets[i] = offset
		offset += e.Type.Size()
	}
	return offsets
}

// Shape returns the element types joined by commas. Layouts with equal shapes produce equal vertex input state.
func (l BufferLayout) Shape() string {
	names := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		names[i] = e.Type.String()
	}
	return strings.Join(names, ",")
}

// Mesh is interleaved vertex data, 32-bit indices and the layout describing one vertex.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
	Layout   BufferLayout
}

// VertexBytes returns a byte view of the vertex data.
func (m Mesh) VertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

// IndexBytes returns a byte view of the index data.
func (m Mesh) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}

// IndexCount returns the number of indices drawn.
func (m Mesh) IndexCount() uint32 {
	return uint32(len(m.Indices))
}
