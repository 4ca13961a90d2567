// Package draw holds the per-frame command list handed to the renderer and the value types those commands
// carry: materials, meshes, buffer layouts, uniform payloads, texture and shader descriptors.
package draw

import "github.com/Carmen-Shannon/oxy-gpu/common"

// Command is one entry of a FrameBuffer. The set of commands is closed, the renderer ignores any other
// implementation.
type Command interface {
	command()
}

// Clear replaces the clear color used the next time the frame's color target is cleared.
type Clear struct {
	Color common.Color
}

// CompileMaterial resolves the material's shaders and textures through the caches and makes it current.
type CompileMaterial struct {
	Material Material
}

// SetMaterial makes the material current and discards every pending uniform payload.
type SetMaterial struct {
	Material Material
}

// UploadShaderData queues a uniform payload for the next draw.
type UploadShaderData struct {
	Data ShaderData
}

// DrawMesh draws the mesh with the current material.
type DrawMesh struct {
	Mesh Mesh
}

func (Clear) command()            {}
func (CompileMaterial) command()  {}
func (SetMaterial) command()      {}
func (UploadShaderData) command() {}
func (DrawMesh) command()         {}

// FrameBuffer is the ordered command list of a single frame.
type FrameBuffer []Command

// Add appends commands to the frame in order.
func (f *FrameBuffer) Add(commands ...Command) {
	*f = append(*f, commands...)
}

// Reset empties the frame while keeping its capacity for the next one.
func (f *FrameBuffer) Reset() {
	clear(*f)
	*f = (*f)[:0]
}
