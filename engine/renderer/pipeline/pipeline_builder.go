package pipeline

import "github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"

// BuildOption is a functional option used to configure a pipeline created by Build.
type BuildOption func(*buildConfig)

// WithLabel sets the debug label of the pipeline. Defaults to the two shader labels joined by "+".
//
// Parameters:
//   - label: the pipeline label
//
// Returns:
//   - BuildOption: a function that sets the label for this pipeline
func WithLabel(label string) BuildOption {
	return func(c *buildConfig) {
		c.label = label
	}
}

// WithPrimitiveType sets the primitive topology for this pipeline. Defaults to a triangle list.
//
// Parameters:
//   - primitiveType: the primitive topology to use for this pipeline
//
// Returns:
//   - BuildOption: a function that sets the primitive topology for this pipeline
func WithPrimitiveType(primitiveType device.PrimitiveType) BuildOption {
	return func(c *buildConfig) {
		c.primitiveType = primitiveType
	}
}
