package main

import (
	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/Carmen-Shannon/oxy-gpu/engine/scene"
)

// spinSpeed is the rotation of the left sprite in radians per second.
const spinSpeed = 1.2

// demo is two checkerboard sprites sharing one material, the left one spinning.
type demo struct {
	scene   scene.Scene
	spinner game_object.GameObject
	paused  bool

	// clearColors are cycled through with the C key, starting at the configured one.
	clearColors []common.Color
	clearIndex  int
}

func newDemo(clearColor common.Color) *demo {
	mat := game_object.SpriteMaterial(checkerboard("checkerboard", 64, 8))

	spinner := game_object.NewGameObject(
		game_object.WithMaterial(mat),
		game_object.WithPosition(-0.45, 0),
		game_object.WithScale(0.7, 0.7),
		game_object.WithRotationSpeed(spinSpeed),
	)
	still := game_object.NewGameObject(
		game_object.WithMaterial(mat),
		game_object.WithPosition(0.45, 0),
		game_object.WithScale(0.7, 0.7),
		game_object.WithTint(common.Color{R: 1, G: 0.6, B: 0.3, A: 1}),
	)

	return &demo{
		scene:   scene.NewScene("oxydraw", scene.WithActive(true), scene.WithObjects(spinner, still)),
		spinner: spinner,
		clearColors: []common.Color{
			clearColor,
			{R: 0.08, G: 0.08, B: 0.1, A: 1},
			{R: 0.95, G: 0.9, B: 0.8, A: 1},
		},
	}
}

// Frame returns the commands of the next frame.
func (d *demo) Frame(dt float32) draw.FrameBuffer {
	return d.scene.Frame(dt)
}

// CycleClearColor switches to the next clear color and returns it.
func (d *demo) CycleClearColor() common.Color {
	d.clearIndex = (d.clearIndex + 1) % len(d.clearColors)
	return d.ClearColor()
}

// ClearColor returns the selected clear color.
func (d *demo) ClearColor() common.Color {
	return d.clearColors[d.clearIndex]
}

// TogglePause stops or resumes the spinning sprite.
func (d *demo) TogglePause() {
	d.paused = !d.paused
	if d.paused {
		d.spinner.SetRotationSpeed(0)
		return
	}
	d.spinner.SetRotationSpeed(spinSpeed)
}

// checkerboard builds a size x size RGB texture of cell x cell squares.
func checkerboard(id string, size, cell int) draw.Texture {
	pixels := make([]byte, 0, size*size*3)
	for y := range size {
		for x := range size {
			v := byte(0x30)
			if (x/cell+y/cell)%2 == 0 {
				v = 0xE0
			}
			pixels = append(pixels, v, v, v)
		}
	}
	return draw.Texture{
		ID:     id,
		Pixels: pixels,
		Width:  size,
		Height: size,
		Format: common.PixelFormatRGB,
		Filter: common.TextureFilterNearest,
		Wrap:   common.TextureWrapRepeat,
	}
}
