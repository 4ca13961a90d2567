// Package shader compiles WGSL shaders and caches the resulting device shaders by shader ID.
package shader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
)

var (
	// ErrMissingID is returned for a shader with neither an ID nor a path.
	ErrMissingID = errors.New("shader has no id or path")

	// ErrNoSource is returned for a shader with neither source text nor a path.
	ErrNoSource = errors.New("shader has no source or path")

	// ErrWrongStage is returned when a shader is requested for a stage it was not declared for.
	ErrWrongStage = errors.New("shader stage mismatch")

	// ErrEmptyBytecode is returned when the compiler succeeds without producing any bytecode.
	ErrEmptyBytecode = errors.New("compiler produced no bytecode")

	// ErrNoEntryPoint is returned when WGSL source declares no entry point for the requested stage.
	ErrNoEntryPoint = errors.New("no entry point for stage")
)

// CompileError reports a shader that failed to compile. Diagnostic holds the compiler output.
type CompileError struct {
	ID         string
	Stage      common.ShaderStage
	Diagnostic string
	Err        error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader %q: %s", e.Stage, e.ID, e.Diagnostic)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// CachedShader wraps a device shader. The zero value is the empty entry returned for unknown IDs.
type CachedShader struct {
	Shader device.Shader
}

// IsEmpty reports whether the entry holds no shader.
func (c CachedShader) IsEmpty() bool {
	return c.Shader == nil
}

type cache struct {
	dev      device.Device
	compiler Compiler
	debug    bool
	fsys     fs.FS
	entries  map[string]CachedShader
}

// Cache maps shader IDs to device shaders. Creation is idempotent: the first shader created for an ID wins
// and later requests return it unchanged. Failed compilations are not cached, so a later request retries.
//
// The cache is not safe for concurrent use; it belongs to the render thread.
type Cache interface {
	// GetOrCreate returns the shader for the descriptor's ID, compiling and creating it on a miss.
	//
	// Parameters:
	//   - s: the shader descriptor
	//
	// Returns:
	//   - CachedShader: the cached entry
	//   - error: a *CompileError when compilation failed, or the device error when creation failed
	GetOrCreate(s draw.Shader) (CachedShader, error)

	// GetOrCreateVertex is GetOrCreate for a shader that must be a vertex shader.
	//
	// Parameters:
	//   - s: the shader descriptor
	//
	// Returns:
	//   - CachedShader: the cached entry
	//   - error: ErrWrongStage when s is not a vertex shader, otherwise as GetOrCreate
	GetOrCreateVertex(s draw.Shader) (CachedShader, error)

	// GetOrCreateFragment is GetOrCreate for a shader that must be a fragment shader.
	//
	// Parameters:
	//   - s: the shader descriptor
	//
	// Returns:
	//   - CachedShader: the cached entry
	//   - error: ErrWrongStage when s is not a fragment shader, otherwise as GetOrCreate
	GetOrCreateFragment(s draw.Shader) (CachedShader, error)

	// Get returns the entry for an ID, or the empty entry when the ID is unknown.
	Get(id string) CachedShader

	// Len returns the number of cached shaders.
	Len() int

	// ReleaseAll releases every cached shader and empties the cache.
	ReleaseAll()
}

var _ Cache = &cache{}

// NewCache creates an empty shader cache on the given device. Shaders are compiled with NagaCompiler
// unless WithCompiler says otherwise.
//
// Parameters:
//   - dev: the device shaders are created on
//   - options: CacheBuilderOption functions to configure the cache
//
// Returns:
//   - Cache: the created cache
func NewCache(dev device.Device, options ...CacheBuilderOption) Cache {
	c := &cache{
		dev:      dev,
		compiler: NagaCompiler{},
		entries:  make(map[string]CachedShader),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cache) GetOrCreateVertex(s draw.Shader) (CachedShader, error) {
	return c.getOrCreateStage(s, common.ShaderStageVertex)
}

func (c *cache) GetOrCreateFragment(s draw.Shader) (CachedShader, error) {
	return c.getOrCreateStage(s, common.ShaderStageFragment)
}

func (c *cache) getOrCreateStage(s draw.Shader, stage common.ShaderStage) (CachedShader, error) {
	if s.Stage != stage {
		return CachedShader{}, fmt.Errorf("shader %q is a %s shader, want %s: %w", s.Key(), s.Stage, stage, ErrWrongStage)
	}
	return c.GetOrCreate(s)
}

func (c *cache) GetOrCreate(s draw.Shader) (CachedShader, error) {
	id := s.Key()
	if id == "" {
		return CachedShader{}, ErrMissingID
	}
	if entry, ok := c.entries[id]; ok {
		if entry.Shader.Stage() != s.Stage {
			return CachedShader{}, fmt.Errorf("shader %q is cached as a %s shader: %w", id, entry.Shader.Stage(), ErrWrongStage)
		}
		return entry, nil
	}

	desc, err := c.describe(id, s)
	if err != nil {
		return CachedShader{}, err
	}

	sh, err := c.dev.CreateShader(desc)
	if err != nil {
		return CachedShader{}, fmt.Errorf("failed to create shader %q: %w", id, err)
	}

	entry := CachedShader{Shader: sh}
	c.entries[id] = entry
	common.Logger().Debug("shader cached", "id", id, "stage", s.Stage.String(), "bytes", len(desc.Code),
		"samplers", desc.NumSamplers, "uniform_buffers", desc.NumUniformBuffers)
	return entry, nil
}

// describe resolves a shader's code and resource counts into a device descriptor. Inline source and ".wgsl"
// files are compiled; any other file is handed to the device as precompiled SPIR-V.
func (c *cache) describe(id string, s draw.Shader) (*device.ShaderDescriptor, error) {
	desc := &device.ShaderDescriptor{
		Label:             id,
		Format:            device.ShaderFormatSPIRV,
		EntryPoint:        EntryPoint,
		Stage:             s.Stage,
		NumUniformBuffers: 1,
	}
	if s.Stage == common.ShaderStageFragment {
		desc.NumSamplers = 1
	}

	source := s.Source
	switch {
	case source != "":
	case s.Path == "":
		return nil, &CompileError{ID: id, Stage: s.Stage, Diagnostic: ErrNoSource.Error(), Err: ErrNoSource}
	case s.IsSourceFile():
		data, err := c.readFile(s.Path)
		if err != nil {
			return nil, &CompileError{ID: id, Stage: s.Stage, Diagnostic: err.Error(), Err: err}
		}
		source = string(data)
	default:
		code, err := c.readFile(s.Path)
		if err != nil {
			return nil, &CompileError{ID: id, Stage: s.Stage, Diagnostic: err.Error(), Err: err}
		}
		if len(code) == 0 {
			return nil, &CompileError{ID: id, Stage: s.Stage, Diagnostic: "empty bytecode file", Err: ErrEmptyBytecode}
		}
		desc.Code = code
		return desc, nil
	}

	refl := reflectWGSL(source)
	entry := refl.entryPoint(s.Stage)
	if entry == "" {
		return nil, &CompileError{
			ID:         id,
			Stage:      s.Stage,
			Diagnostic: fmt.Sprintf("no @%s entry point", s.Stage),
			Err:        ErrNoEntryPoint,
		}
	}
	desc.EntryPoint = entry
	desc.NumUniformBuffers = max(desc.NumUniformBuffers, refl.uniforms)
	desc.NumSamplers = max(desc.NumSamplers, refl.samplers)

	code, err := c.compiler.Compile(CompileRequest{
		Name:       id,
		Source:     source,
		Stage:      s.Stage,
		EntryPoint: entry,
		Debug:      c.debug,
	})
	if err != nil {
		return nil, &CompileError{ID: id, Stage: s.Stage, Diagnostic: err.Error(), Err: err}
	}
	if len(code) == 0 {
		return nil, &CompileError{ID: id, Stage: s.Stage, Diagnostic: ErrEmptyBytecode.Error(), Err: ErrEmptyBytecode}
	}
	desc.Code = code
	return desc, nil
}

func (c *cache) readFile(path string) ([]byte, error) {
	var (
		f   io.ReadCloser
		err error
	)
	if c.fsys != nil {
		f, err = c.fsys.Open(path)
	} else {
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open shader %q: %w", path, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (c *cache) Get(id string) CachedShader {
	return c.entries[id]
}

func (c *cache) Len() int {
	return len(c.entries)
}

func (c *cache) ReleaseAll() {
	for id, entry := range c.entries {
		entry.Shader.Release()
		delete(c.entries, id)
	}
}
