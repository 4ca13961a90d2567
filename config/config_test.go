package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fullConfig = `
backend: headless
log_level: debug
window:
  title: demo
  width: 640
  height: 480
renderer:
  pipeline_cache: true
  vsync: false
  clear_color: [0.1, 0.2, 0.3]
  frame_limit: 30
assets:
  textures_dir: textures
  preload_workers: 2
profiler:
  enabled: true
  interval: 500ms
`

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "headless", cfg.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, WindowConfig{Title: "demo", Width: 640, Height: 480}, cfg.Window)
	assert.True(t, cfg.Renderer.PipelineCache)
	require.NotNil(t, cfg.Renderer.VSync)
	assert.False(t, *cfg.Renderer.VSync)
	assert.Equal(t, Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, cfg.Renderer.ClearColor)
	assert.Equal(t, 30.0, cfg.Renderer.FrameLimit)
	assert.Equal(t, "textures", cfg.Assets.TexturesDir)
	assert.Equal(t, 2, cfg.Assets.PreloadWorkers)
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Profiler.Interval)

	backend, err := cfg.BackendType()
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendTypeHeadless, backend)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("window:\n  title: only-title\n"))
	require.NoError(t, err)

	want := Default()
	want.Window.Title = "only-title"
	assert.Equal(t, want, cfg)
	assert.Nil(t, cfg.Renderer.VSync)

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "unknown key", yaml: "colour: red\n", want: "colour"},
		{name: "unknown backend", yaml: "backend: metal\n", want: "metal"},
		{name: "unknown log level", yaml: "log_level: loud\n", want: "loud"},
		{name: "short clear color", yaml: "renderer:\n  clear_color: [1, 0]\n", want: "3 or 4 channels"},
		{name: "clear color not a list", yaml: "renderer:\n  clear_color: red\n", want: "list of numbers"},
		{name: "negative size", yaml: "window:\n  width: -1\n", want: "negative"},
		{name: "negative frame limit", yaml: "renderer:\n  frame_limit: -5\n", want: "frame limit"},
		{name: "negative workers", yaml: "assets:\n  preload_workers: -2\n", want: "preload workers"},
		{name: "bad interval", yaml: "profiler:\n  interval: soon\n", want: "time.Duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oxydraw.yml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	big := filepath.Join(dir, "big.yml")
	require.NoError(t, os.WriteFile(big, []byte("# "+strings.Repeat("x", maxFileSize)), 0o600))
	_, err = Load(big)
	assert.ErrorContains(t, err, "larger than")
}

func TestColorRoundTripsThroughYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		C Color `yaml:"c"`
	}{C: Color(common.ColorWhite)})
	require.NoError(t, err)
	assert.Equal(t, "c:\n    - 1\n    - 1\n    - 1\n    - 1\n", string(out))
}

func TestRendererOptionsConfigureRenderer(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	dev := device.NewRecordingDevice()
	r := renderer.NewRenderer(dev, cfg.RendererOptions()...)
	defer r.Shutdown()

	assert.False(t, r.VSync())
	assert.False(t, dev.VSync())
	assert.Equal(t, common.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, r.ClearColor())
	assert.Equal(t, common.Size{Width: 640, Height: 480}, r.Resolution())
	assert.Equal(t, common.GraphicsAPINone, r.API())

	width, height := dev.SurfaceSize()
	assert.Equal(t, uint32(640), width)
	assert.Equal(t, uint32(480), height)
}

func TestDeviceConfig(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.DeviceConfig().VSync)
	assert.Equal(t, common.Size{Width: 1280, Height: 720}, cfg.DeviceConfig().Size)

	off := false
	cfg.Renderer.VSync = &off
	cfg.Renderer.ForceFallbackAdapter = true
	assert.False(t, cfg.DeviceConfig().VSync)
	assert.True(t, cfg.DeviceConfig().ForceFallbackAdapter)
}

func TestWindowOptions(t *testing.T) {
	assert.Len(t, Default().WindowOptions(), 2)
}
