package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/transfer"
)

var (
	// ErrNoMaterial is returned for a DrawMesh issued before any material was set.
	ErrNoMaterial = errors.New("no material set")

	// ErrEmptyMesh is returned for a DrawMesh whose mesh has no vertices or no indices.
	ErrEmptyMesh = errors.New("mesh has no vertices or indices")
)

// PlaceholderTextureID is the texture cache ID of the 1x1 white texture bound in place of a texture that
// failed to load.
const PlaceholderTextureID = "oxy:placeholder"

// boundMaterial is a material and the GPU objects it resolved to. Shaders stay nil until both stages
// compiled; textures hold one entry per material texture, in order.
type boundMaterial struct {
	material draw.Material
	vs, fs   device.Shader
	textures []texture.CachedTexture
}

func (b *boundMaterial) resolved() bool {
	return b.vs != nil && b.fs != nil
}

// drawContext is the state the command stream builds up between draws: the current material and the
// uniform payloads pushed since it was set.
type drawContext struct {
	material *boundMaterial
	uniforms []draw.ShaderData
}

// withMaterial returns the context for a new current material. Pending uniforms belong to the previous
// material and are dropped.
func (c drawContext) withMaterial(m *boundMaterial) drawContext {
	return drawContext{material: m}
}

// withUniform returns the context with data appended to the pending uniforms. The list is appended in place,
// so the receiver must not be used afterwards.
func (c drawContext) withUniform(data draw.ShaderData) drawContext {
	c.uniforms = append(c.uniforms, data)
	return c
}

// dispatch executes one command against the open frame and returns the context the next command runs with.
// An error means the command had no effect on the GPU; the returned context is still valid.
func (r *renderer) dispatch(fr *frame, ctx drawContext, cmd draw.Command) (drawContext, error) {
	switch c := cmd.(type) {
	case draw.Clear:
		fr.setClearColor(c.Color)
		return ctx, nil

	case draw.CompileMaterial:
		fr.closePass()
		bm, err := r.resolve(fr.cmd, c.Material)
		return ctx.withMaterial(bm), err

	case draw.SetMaterial:
		return ctx.withMaterial(&boundMaterial{material: c.Material}), nil

	case draw.UploadShaderData:
		return ctx.withUniform(c.Data), nil

	case draw.DrawMesh:
		ctx, err := r.drawMesh(fr, ctx, c.Mesh)
		if err != nil {
			r.count(func(s *Stats) { s.SkippedDraws++ })
		}
		return ctx, err

	default:
		return ctx, nil
	}
}

// resolve compiles or fetches a material's shaders and uploads or fetches its textures. A texture that fails
// is replaced by the placeholder; a shader that fails leaves the material unresolved and is returned.
// Nothing may be recorded on an open render pass while resolving.
func (r *renderer) resolve(cmd device.CommandBuffer, m draw.Material) (*boundMaterial, error) {
	bm := &boundMaterial{material: m}

	for _, tex := range m.Textures {
		entry, err := r.textures.GetOrCreate(cmd, tex)
		if err != nil {
			common.Logger().Warn("texture failed to load, using placeholder", "id", tex.Key(), "error", err)
			entry, err = r.placeholder(cmd)
			if err != nil {
				common.Logger().Warn("placeholder texture failed to load", "error", err)
			} else {
				r.count(func(s *Stats) { s.PlaceholderTextures++ })
			}
		}
		bm.textures = append(bm.textures, entry)
	}

	vs, err := r.shaders.GetOrCreateVertex(m.Shader.Vertex)
	if err != nil {
		return bm, fmt.Errorf("failed to resolve vertex shader: %w", err)
	}
	fs, err := r.shaders.GetOrCreateFragment(m.Shader.Fragment)
	if err != nil {
		return bm, fmt.Errorf("failed to resolve fragment shader: %w", err)
	}
	bm.vs, bm.fs = vs.Shader, fs.Shader
	return bm, nil
}

func (r *renderer) placeholder(cmd device.CommandBuffer) (texture.CachedTexture, error) {
	return r.textures.GetOrCreate(cmd, draw.Texture{
		ID:     PlaceholderTextureID,
		Pixels: []byte{0xFF, 0xFF, 0xFF, 0xFF},
		Width:  1,
		Height: 1,
		Format: common.PixelFormatRGBA,
		Filter: common.TextureFilterNearest,
		Wrap:   common.TextureWrapRepeat,
	})
}

// drawMesh records one indexed draw of mesh with the current material. The pipeline and both buffers are
// created for this draw and released right after it is recorded, unless the pipeline came from the cache.
func (r *renderer) drawMesh(fr *frame, ctx drawContext, mesh draw.Mesh) (drawContext, error) {
	if ctx.material == nil {
		return ctx, ErrNoMaterial
	}
	if len(mesh.Vertices) == 0 || mesh.IndexCount() == 0 {
		return ctx, ErrEmptyMesh
	}

	// resources cannot be created or uploaded while a render pass is open
	fr.closePass()

	bm := ctx.material
	if !bm.resolved() {
		resolved, err := r.resolve(fr.cmd, bm.material)
		if err != nil {
			return ctx, err
		}
		bm = resolved
		ctx.material = bm
	}

	p, release, err := r.pipelineFor(bm, mesh.Layout)
	if err != nil {
		return ctx, err
	}
	defer release()

	vb, err := transfer.CreateAndUploadBuffer(r.dev, fr.cmd, device.BufferUsageVertex, "Vertex Buffer", mesh.VertexBytes())
	if err != nil {
		return ctx, fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	defer vb.Release()

	ib, err := transfer.CreateAndUploadBuffer(r.dev, fr.cmd, device.BufferUsageIndex, "Index Buffer", mesh.IndexBytes())
	if err != nil {
		return ctx, fmt.Errorf("failed to create index buffer: %w", err)
	}
	defer ib.Release()
	r.count(func(s *Stats) { s.BuffersCreated += 2 })

	pass, err := r.openPass(fr)
	if err != nil {
		return ctx, err
	}

	pass.BindPipeline(p)
	pass.BindVertexBuffers(0, device.BufferBinding{Buffer: vb})
	pass.BindIndexBuffer(device.BufferBinding{Buffer: ib}, device.IndexElementSize32Bit)

	for _, u := range ctx.uniforms {
		fr.cmd.PushUniformData(u.Stage, u.Slot, u.Data)
	}

	var slot uint32
	for _, t := range bm.textures {
		if t.IsEmpty() {
			continue
		}
		pass.BindFragmentSamplers(slot, device.TextureSamplerBinding{Texture: t.Texture, Sampler: t.Sampler})
		slot++
	}

	pass.DrawIndexedPrimitives(mesh.IndexCount(), 1, 0, 0, 0)
	r.count(func(s *Stats) { s.DrawCalls++ })
	return ctx, nil
}

// pipelineFor returns the pipeline for a material and layout together with the function that disposes of it
// after the draw. Cached pipelines outlive the draw, so their release function does nothing.
func (r *renderer) pipelineFor(bm *boundMaterial, layout draw.BufferLayout) (device.Pipeline, func(), error) {
	format := r.dev.SwapchainFormat()

	if r.pipelines != nil {
		p, built, err := r.pipelines.GetOrBuild(bm.vs, bm.fs, layout, format)
		if err != nil {
			return nil, nil, err
		}
		if built {
			r.count(func(s *Stats) { s.PipelinesBuilt++ })
		}
		return p, func() {}, nil
	}

	p, err := pipeline.Build(r.dev, bm.vs, bm.fs, layout, format)
	if err != nil {
		return nil, nil, err
	}
	r.count(func(s *Stats) { s.PipelinesBuilt++ })
	return p, p.Release, nil
}
