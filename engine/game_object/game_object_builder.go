package game_object

import (
	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithEphemeral marks the GameObject as ephemeral. Ephemeral objects are drawn by the next frame the scene
// records and then dropped.
//
// Parameters:
//   - ephemeral: true to mark as ephemeral
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Ephemeral flag
func WithEphemeral(ephemeral bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.ephemeral = ephemeral
	}
}

// WithMaterial sets the material the GameObject is drawn with.
//
// Parameters:
//   - m: the material, e.g. from SpriteMaterial
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the material
func WithMaterial(m draw.Material) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.material = m
	}
}

// WithMesh replaces the default quad mesh.
func WithMesh(m draw.Mesh) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mesh = m
	}
}

// WithTint sets the color the object's texture is multiplied with.
func WithTint(c common.Color) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.tint = c
	}
}

// WithUniforms appends uniform payloads uploaded after the transform and the tint.
//
// Parameters:
//   - data: the extra payloads, in upload order
//
// Returns:
//   - GameObjectBuilderOption: functional option to add the payloads
func WithUniforms(data ...draw.ShaderData) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.uniforms = append(obj.uniforms, data...)
	}
}

// WithPosition sets the initial clip-space position of the GameObject.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(x, y float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = [2]float32{x, y}
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - sx: the x scale factor
//   - sy: the y scale factor
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithScale(sx, sy float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = [2]float32{sx, sy}
	}
}

// WithRotation sets the initial rotation angle in radians.
func WithRotation(r float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = r
	}
}

// WithRotationSpeed sets the rotation speed in radians per second applied by Update.
func WithRotationSpeed(speed float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = speed
	}
}
