package game_object

import (
	"math"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
)

type gameObject struct {
	id        uint64
	enabled   atomic.Bool
	ephemeral bool

	material draw.Material
	mesh     draw.Mesh
	tint     common.Color
	uniforms []draw.ShaderData

	position      [2]float32
	scale         [2]float32
	rotation      float32
	rotationSpeed float32
}

// GameObject defines the interface for a scene entity: a mesh drawn with a material at a 2D transform.
// The transform is uploaded as GPUTransform to vertex uniform slot 0 and the tint to fragment uniform slot 0
// before every draw of the object.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether this object is ephemeral.
	// Ephemeral objects are drawn for a single frame and not persisted in the scene's registry.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Material returns the material the object is drawn with.
	Material() draw.Material

	// Mesh returns the mesh the object draws.
	Mesh() draw.Mesh

	// Tint returns the color the object's texture is multiplied with.
	Tint() common.Color

	// Position returns the clip-space offset of the object.
	//
	// Returns:
	//   - x, y: position components
	Position() (x, y float32)

	// Rotation returns the rotation angle in radians.
	Rotation() float32

	// RotationSpeed returns the rotation speed in radians per second.
	RotationSpeed() float32

	// Scale returns the scale factors.
	//
	// Returns:
	//   - sx, sy: scale components
	Scale() (sx, sy float32)

	// TransformData packs the transform into its uniform layout.
	//
	// Returns:
	//   - GPUTransform: the transform uploaded to vertex uniform slot 0
	TransformData() GPUTransform

	// Uniforms returns the uniform payloads uploaded before each draw of the object, in upload order:
	// the transform, the tint, then any extra payloads.
	//
	// Returns:
	//   - []draw.ShaderData: the payloads
	Uniforms() []draw.ShaderData

	// Update advances the rotation by the rotation speed.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetMaterial replaces the material the object is drawn with.
	SetMaterial(m draw.Material)

	// SetMesh replaces the mesh the object draws.
	SetMesh(m draw.Mesh)

	// SetTint sets the color the object's texture is multiplied with.
	SetTint(c common.Color)

	// SetPosition sets the clip-space offset of the object.
	//
	// Parameters:
	//   - x, y: new position components
	SetPosition(x, y float32)

	// SetRotation sets the rotation angle in radians.
	SetRotation(r float32)

	// SetRotationSpeed sets the rotation speed in radians per second.
	SetRotationSpeed(speed float32)

	// SetScale sets the scale factors.
	//
	// Parameters:
	//   - sx, sy: new scale factors
	SetScale(sx, sy float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options. Objects start enabled, with a
// sprite quad, unit scale and a white tint.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mesh:  QuadMesh(),
		tint:  common.ColorWhite,
		scale: [2]float32{1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Ephemeral() bool {
	return g.ephemeral
}

func (g *gameObject) Material() draw.Material {
	return g.material
}

func (g *gameObject) Mesh() draw.Mesh {
	return g.mesh
}

func (g *gameObject) Tint() common.Color {
	return g.tint
}

func (g *gameObject) Position() (x, y float32) {
	return g.position[0], g.position[1]
}

func (g *gameObject) Rotation() float32 {
	return g.rotation
}

func (g *gameObject) RotationSpeed() float32 {
	return g.rotationSpeed
}

func (g *gameObject) Scale() (sx, sy float32) {
	return g.scale[0], g.scale[1]
}

func (g *gameObject) TransformData() GPUTransform {
	return GPUTransform{
		OffsetScale: [4]float32{g.position[0], g.position[1], g.scale[0], g.scale[1]},
		Rotation:    [4]float32{g.rotation},
	}
}

func (g *gameObject) Uniforms() []draw.ShaderData {
	out := make([]draw.ShaderData, 0, 2+len(g.uniforms))
	out = append(out,
		draw.NewShaderData(common.ShaderStageVertex, 0, g.TransformData()),
		draw.NewShaderData(common.ShaderStageFragment, 0, g.tint),
	)
	return append(out, g.uniforms...)
}

func (g *gameObject) Update(deltaTime float32) {
	if g.rotationSpeed == 0 {
		return
	}
	g.rotation = float32(math.Mod(float64(g.rotation+g.rotationSpeed*deltaTime), 2*math.Pi))
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetMaterial(m draw.Material) {
	g.material = m
}

func (g *gameObject) SetMesh(m draw.Mesh) {
	g.mesh = m
}

func (g *gameObject) SetTint(c common.Color) {
	g.tint = c
}

func (g *gameObject) SetPosition(x, y float32) {
	g.position = [2]float32{x, y}
}

func (g *gameObject) SetRotation(r float32) {
	g.rotation = r
}

func (g *gameObject) SetRotationSpeed(speed float32) {
	g.rotationSpeed = speed
}

func (g *gameObject) SetScale(sx, sy float32) {
	g.scale = [2]float32{sx, sy}
}
