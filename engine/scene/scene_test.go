package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func material(fragmentID string) draw.Material {
	m := game_object.SpriteMaterial()
	m.Shader.Fragment.ID = fragmentID
	return m
}

// kinds returns the command types of fb as short names.
func kinds(fb draw.FrameBuffer) []string {
	out := make([]string, 0, len(fb))
	for _, cmd := range fb {
		switch cmd.(type) {
		case draw.Clear:
			out = append(out, "clear")
		case draw.CompileMaterial:
			out = append(out, "compile")
		case draw.SetMaterial:
			out = append(out, "set")
		case draw.UploadShaderData:
			out = append(out, "upload")
		case draw.DrawMesh:
			out = append(out, "draw")
		}
	}
	return out
}

func TestRegistry(t *testing.T) {
	s := NewScene("main", WithObjects(game_object.NewGameObject(), game_object.NewGameObject(game_object.WithID(10))))
	assert.Equal(t, 2, s.Count())
	assert.NotNil(t, s.Get(1))
	assert.NotNil(t, s.Get(10))

	id := s.Add(game_object.NewGameObject())
	assert.Equal(t, uint64(11), id)

	s.Add(game_object.NewGameObject(game_object.WithEphemeral(true)))
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 1, s.CountEphemeral())

	s.Remove(10)
	s.Remove(99)
	assert.Nil(t, s.Get(10))
	assert.Equal(t, 2, s.Count())

	s.Clear()
	assert.Zero(t, s.Count())
	assert.Zero(t, s.CountEphemeral())
}

func TestNameAndActive(t *testing.T) {
	s := NewScene("a")
	assert.Equal(t, "a", s.Name())
	assert.False(t, s.Active())

	s.SetName("b")
	s.SetActive(true)
	assert.Equal(t, "b", s.Name())
	assert.True(t, s.Active())

	_, ok := s.Background()
	assert.False(t, ok)
	s.SetBackground(common.ColorBlack)
	c, ok := s.Background()
	assert.True(t, ok)
	assert.Equal(t, common.ColorBlack, c)
}

func TestInactiveSceneRecordsNothing(t *testing.T) {
	s := NewScene("idle", WithObjects(game_object.NewGameObject(game_object.WithMaterial(material("f")))))
	assert.Empty(t, s.Frame(0.1))
}

func TestRecordCompilesOnceAndReselectsPerObject(t *testing.T) {
	s := NewScene("main", WithActive(true), WithBackground(common.ColorBlack), WithObjects(
		game_object.NewGameObject(game_object.WithMaterial(material("a"))),
		game_object.NewGameObject(game_object.WithMaterial(material("a"))),
		game_object.NewGameObject(game_object.WithMaterial(material("b"))),
		game_object.NewGameObject(game_object.WithMaterial(material("b")), game_object.WithEnabled(false)),
		game_object.NewGameObject(),
	))

	first := kinds(s.Frame(0))
	assert.Equal(t, []string{
		"clear",
		"compile", "upload", "upload", "draw",
		"set", "upload", "upload", "draw",
		"compile", "upload", "upload", "draw",
	}, first)

	second := kinds(s.Frame(0))
	assert.Equal(t, []string{
		"clear",
		"set", "upload", "upload", "draw",
		"set", "upload", "upload", "draw",
		"set", "upload", "upload", "draw",
	}, second)
}

func TestEphemeralObjectsDrawOnce(t *testing.T) {
	s := NewScene("main", WithActive(true))
	s.Add(game_object.NewGameObject(game_object.WithMaterial(material("f")), game_object.WithEphemeral(true)))

	var fb draw.FrameBuffer
	s.Record(&fb)
	assert.Equal(t, []string{"compile", "upload", "upload", "draw"}, kinds(fb))
	assert.Zero(t, s.CountEphemeral())

	fb.Reset()
	s.Record(&fb)
	assert.Empty(t, fb)
}

func TestFrameUpdatesObjects(t *testing.T) {
	obj := game_object.NewGameObject(game_object.WithMaterial(material("f")), game_object.WithRotationSpeed(1))
	s := NewScene("main", WithActive(true), WithObjects(obj))

	s.Frame(0.5)
	assert.InDelta(t, 0.5, obj.Rotation(), 1e-6)
}

func TestSceneDrawsThroughRenderer(t *testing.T) {
	dev := device.NewRecordingDevice()
	r := renderer.NewRenderer(dev, renderer.WithShaderCacheOptions(shader.WithCompiler(shader.CompilerFunc(
		func(shader.CompileRequest) ([]byte, error) { return []byte{0x03, 0x02, 0x23, 0x07}, nil },
	))))

	s := NewScene("main", WithActive(true), WithObjects(
		game_object.NewGameObject(game_object.WithMaterial(material("a")), game_object.WithPosition(-0.5, 0)),
		game_object.NewGameObject(game_object.WithMaterial(material("a")), game_object.WithPosition(0.5, 0)),
	))

	for range 2 {
		require.NoError(t, r.Draw(s.Frame(1.0/60)))
	}
	r.Shutdown()

	assert.Equal(t, 2, dev.Count(device.OpSubmit))
	assert.Equal(t, 4, dev.Count(device.OpDrawIndexed))
	assert.Equal(t, 2, dev.Count(device.OpCreateShader))
	assert.Empty(t, dev.LiveResources())
	assert.Empty(t, dev.Violations())
}

func TestSharedMaterialPushesOnlyOwnUniforms(t *testing.T) {
	tests := []struct {
		name    string
		objects int
	}{
		{name: "three sprites", objects: 3},
		{name: "hundred sprites", objects: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := device.NewRecordingDevice()
			r := renderer.NewRenderer(dev, renderer.WithShaderCacheOptions(shader.WithCompiler(shader.CompilerFunc(
				func(shader.CompileRequest) ([]byte, error) { return []byte{0x03, 0x02, 0x23, 0x07}, nil },
			))))

			s := NewScene("main", WithActive(true))
			for range tt.objects {
				s.Add(game_object.NewGameObject(game_object.WithMaterial(material("a"))))
			}

			require.NoError(t, r.Draw(s.Frame(0)))
			r.Shutdown()

			perObject := len(game_object.NewGameObject().Uniforms())
			assert.Equal(t, tt.objects, dev.Count(device.OpDrawIndexed))
			assert.Equal(t, tt.objects*perObject, dev.Count(device.OpPushUniformData))
			assert.Equal(t, 2, dev.Count(device.OpCreateShader))
			assert.Empty(t, dev.Violations())
		})
	}
}
