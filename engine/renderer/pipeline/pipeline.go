// Package pipeline turns a shader pair and a vertex layout into a device graphics pipeline.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
)

// ErrUnsupportedElementType is returned for a layout element that cannot be fed to the vertex stage.
var ErrUnsupportedElementType = errors.New("unsupported vertex element type")

// buildConfig holds the settings Build applies on top of the fixed single-target triangle pipeline.
type buildConfig struct {
	label         string
	primitiveType device.PrimitiveType
}

// Build creates a graphics pipeline with one color target of the given format, a single per-vertex buffer at
// slot 0 described by layout, and no depth or stencil state.
//
// Parameters:
//   - dev: the device the pipeline is created on
//   - vs: the vertex shader
//   - fs: the fragment shader
//   - layout: the layout of one vertex; only Float2, Float3 and Float4 elements are accepted
//   - format: the format of the color target, normally the swapchain format
//   - options: BuildOption functions to configure the pipeline
//
// Returns:
//   - device.Pipeline: the created pipeline, owned by the caller
//   - error: ErrUnsupportedElementType for an invalid layout, or the device error
func Build(dev device.Device, vs, fs device.Shader, layout draw.BufferLayout, format device.TextureFormat, options ...BuildOption) (device.Pipeline, error) {
	cfg := &buildConfig{primitiveType: device.PrimitiveTypeTriangleList}
	for _, opt := range options {
		opt(cfg)
	}
	if vs == nil || fs == nil {
		return nil, errors.New("pipeline needs a vertex and a fragment shader")
	}

	attributes, err := VertexAttributes(layout)
	if err != nil {
		return nil, err
	}

	label := common.Coalesce(cfg.label, vs.Label()+"+"+fs.Label())
	p, err := dev.CreateGraphicsPipeline(&device.PipelineDescriptor{
		Label:            label,
		VertexShader:     vs,
		FragmentShader:   fs,
		PrimitiveType:    cfg.primitiveType,
		VertexAttributes: attributes,
		VertexBuffers:    VertexBufferDescriptions(layout),
		ColorTargets:     []device.ColorTargetDescription{{Format: format}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline %q: %w", label, err)
	}

	common.Logger().Debug("pipeline built", "label", label, "layout", layout.Shape(), "format", format.String())
	return p, nil
}

// VertexAttributes maps a layout to vertex attributes: location is the element index, the buffer slot is 0
// and the offset is the running sum of the preceding element sizes.
//
// Parameters:
//   - layout: the vertex layout
//
// Returns:
//   - []device.VertexAttribute: one attribute per element
//   - error: ErrUnsupportedElementType when an element is not Float2, Float3 or Float4
func VertexAttributes(layout draw.BufferLayout) ([]device.VertexAttribute, error) {
	offsets := layout.Offsets()
	attributes := make([]device.VertexAttribute, len(layout.Elements))
	for i, e := range layout.Elements {
		format, err := vertexElementFormat(e.Type)
		if err != nil {
			return nil, fmt.Errorf("element %d (%q): %w", i, e.Name, err)
		}
		attributes[i] = device.VertexAttribute{
			Location:   uint32(i),
			BufferSlot: 0,
			Format:     format,
			Offset:     offsets[i],
		}
	}
	return attributes, nil
}

// VertexBufferDescriptions returns the single per-vertex buffer at slot 0 whose pitch is the layout stride.
//
// Parameters:
//   - layout: the vertex layout
//
// Returns:
//   - []device.VertexBufferDescription: the buffer description
func VertexBufferDescriptions(layout draw.BufferLayout) []device.VertexBufferDescription {
	return []device.VertexBufferDescription{{
		Slot:             0,
		Pitch:            layout.Stride(),
		InputRate:        device.VertexInputRateVertex,
		InstanceStepRate: 0,
	}}
}

func vertexElementFormat(t draw.ElementType) (device.VertexElementFormat, error) {
	switch t {
	case draw.ElementTypeFloat2:
		return device.VertexElementFormatFloat2, nil
	case draw.ElementTypeFloat3:
		return device.VertexElementFormatFloat3, nil
	case draw.ElementTypeFloat4:
		return device.VertexElementFormatFloat4, nil
	default:
		return device.VertexElementFormatInvalid, fmt.Errorf("%w: %s", ErrUnsupportedElementType, t)
	}
}
