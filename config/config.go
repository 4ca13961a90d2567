// Package config loads the YAML file describing the window, the renderer backend and its caches, and maps it
// onto the builder options of those packages.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gpu/engine/window"
	"gopkg.in/yaml.v3"
)

// maxFileSize bounds the config files Load accepts.
const maxFileSize = 1 << 20

// Config is the parsed configuration file.
type Config struct {
	// Backend is "wgpu" or "headless".
	Backend  string         `yaml:"backend"`
	LogLevel string         `yaml:"log_level"`
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	Assets   AssetsConfig   `yaml:"assets"`
	Profiler ProfilerConfig `yaml:"profiler"`
}

// WindowConfig configures the native window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig configures the renderer and its device.
type RendererConfig struct {
	PipelineCache bool  `yaml:"pipeline_cache"`
	VSync         *bool `yaml:"vsync"` // nil keeps the renderer default
	ClearColor    Color `yaml:"clear_color"`
	// FrameLimit caps the frames drawn per second, 0 is uncapped.
	FrameLimit float64 `yaml:"frame_limit"`
	// ForceFallbackAdapter asks WebGPU for a software adapter.
	ForceFallbackAdapter bool `yaml:"force_fallback_adapter"`
	DebugShaders         bool `yaml:"debug_shaders"`
}

// AssetsConfig points the caches at the directories their file paths are resolved in.
type AssetsConfig struct {
	TexturesDir    string `yaml:"textures_dir"`
	ShadersDir     string `yaml:"shaders_dir"`
	PreloadWorkers int    `yaml:"preload_workers"`
}

// ProfilerConfig configures the frame statistics report.
type ProfilerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Color is a clear color written as a sequence of 3 or 4 channels in [0, 1]. Alpha defaults to 1.
type Color common.Color

// UnmarshalYAML decodes a [r, g, b] or [r, g, b, a] sequence.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var channels []float32
	if err := node.Decode(&channels); err != nil {
		return fmt.Errorf("line %d: clear color must be a list of numbers: %w", node.Line, err)
	}
	if len(channels) != 3 && len(channels) != 4 {
		return fmt.Errorf("line %d: clear color needs 3 or 4 channels, got %d", node.Line, len(channels))
	}
	if len(channels) == 3 {
		channels = append(channels, 1)
	}
	*c = Color{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}
	return nil
}

// MarshalYAML encodes the color as a 4-channel sequence.
func (c Color) MarshalYAML() (any, error) {
	return []float32{c.R, c.G, c.B, c.A}, nil
}

// Default returns the configuration used for every key the file leaves out.
func Default() Config {
	return Config{
		Backend:  renderer.BackendTypeWGPU.String(),
		LogLevel: "info",
		Window: WindowConfig{
			Title:  "oxydraw",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			ClearColor: Color(common.ColorCornflower),
		},
		Profiler: ProfilerConfig{
			Interval: time.Second,
		},
	}
}

// Load reads and parses a configuration file. An empty path returns Default.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - Config: the parsed configuration layered over Default
//   - error: an error if the file cannot be read, is too large, or is invalid
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if len(data) > maxFileSize {
		return Config{}, fmt.Errorf("config %s is larger than %d bytes", path, maxFileSize)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	common.Logger().Info("loaded config", "path", path, "backend", cfg.Backend)
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values a decoder cannot.
func (c Config) Validate() error {
	var errs []error
	if _, err := renderer.ParseBackendType(c.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is negative", c.Window.Width, c.Window.Height))
	}
	if c.Renderer.FrameLimit < 0 {
		errs = append(errs, fmt.Errorf("frame limit %v is negative", c.Renderer.FrameLimit))
	}
	if c.Assets.PreloadWorkers < 0 {
		errs = append(errs, fmt.Errorf("preload workers %d is negative", c.Assets.PreloadWorkers))
	}
	if c.Profiler.Interval < 0 {
		errs = append(errs, fmt.Errorf("profiler interval %v is negative", c.Profiler.Interval))
	}
	return errors.Join(errs...)
}

// BackendType returns the configured renderer backend.
func (c Config) BackendType() (renderer.BackendType, error) {
	return renderer.ParseBackendType(c.Backend)
}

// SlogLevel returns the configured log level. Unknown names fall back to info.
func (c Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Size returns the configured window size.
func (c Config) Size() common.Size {
	return common.Size{Width: c.Window.Width, Height: c.Window.Height}
}

// WindowOptions maps the window section onto window builder options.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
	}
}

// RendererOptions maps the renderer and assets sections onto renderer builder options.
//
// Returns:
//   - []renderer.RendererBuilderOption: the options to pass to renderer.NewRenderer
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	options := []renderer.RendererBuilderOption{
		renderer.WithPipelineCache(c.Renderer.PipelineCache),
		renderer.WithClearColor(common.Color(c.Renderer.ClearColor)),
		renderer.WithResolution(c.Size()),
	}
	if c.Renderer.VSync != nil {
		options = append(options, renderer.WithVSync(*c.Renderer.VSync))
	}
	if backend, err := c.BackendType(); err == nil {
		options = append(options, renderer.WithAPI(backend.API()))
	}

	var textureOptions []texture.CacheBuilderOption
	if c.Assets.TexturesDir != "" {
		textureOptions = append(textureOptions, texture.WithFS(os.DirFS(c.Assets.TexturesDir)))
	}
	if c.Assets.PreloadWorkers > 0 {
		textureOptions = append(textureOptions, texture.WithPreloadWorkers(c.Assets.PreloadWorkers))
	}
	if len(textureOptions) > 0 {
		options = append(options, renderer.WithTextureCacheOptions(textureOptions...))
	}

	shaderOptions := []shader.CacheBuilderOption{shader.WithDebug(c.Renderer.DebugShaders)}
	if c.Assets.ShadersDir != "" {
		shaderOptions = append(shaderOptions, shader.WithFS(os.DirFS(c.Assets.ShadersDir)))
	}
	return append(options, renderer.WithShaderCacheOptions(shaderOptions...))
}

// DeviceConfig returns the device settings for the configured window size. The caller fills in the surface.
func (c Config) DeviceConfig() renderer.DeviceConfig {
	vsync := true
	if c.Renderer.VSync != nil {
		vsync = *c.Renderer.VSync
	}
	return renderer.DeviceConfig{
		Size:                 c.Size(),
		VSync:                vsync,
		ForceFallbackAdapter: c.Renderer.ForceFallbackAdapter,
	}
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}
