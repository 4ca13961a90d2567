package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unknownCommand satisfies draw.Command without being one of the known variants.
type unknownCommand struct {
	draw.Clear
}

func TestDrawContextUniforms(t *testing.T) {
	a := draw.NewShaderData(common.ShaderStageVertex, 0, float32(1))
	b := draw.NewShaderData(common.ShaderStageVertex, 1, float32(2))
	c := draw.NewShaderData(common.ShaderStageFragment, 0, float32(3))

	ctx := drawContext{}.withUniform(a)
	assert.Equal(t, []draw.ShaderData{a}, ctx.uniforms)

	ctx = ctx.withUniform(b).withUniform(c)
	assert.Equal(t, []draw.ShaderData{a, b, c}, ctx.uniforms)

	m := &boundMaterial{}
	switched := ctx.withMaterial(m)
	assert.Same(t, m, switched.material)
	assert.Empty(t, switched.uniforms)
}

func TestDispatchStateTransitions(t *testing.T) {
	dev, r := newTestRenderer(t, nil)
	rr := r.(*renderer)

	cmd, err := dev.AcquireCommandBuffer()
	require.NoError(t, err)
	fr := newFrame(cmd)
	swapchain, err := cmd.WaitAndAcquireSwapchainTexture()
	require.NoError(t, err)
	fr.bind(swapchain, common.ColorBlack)
	_, err = rr.openPass(fr)
	require.NoError(t, err)
	assert.False(t, fr.clearPending)

	ctx := drawContext{}
	ctx, err = rr.dispatch(fr, ctx, draw.Clear{Color: common.ColorWhite})
	require.NoError(t, err)
	assert.True(t, fr.clearPending)
	assert.Equal(t, common.ColorWhite, fr.target.ClearColor)
	assert.NotNil(t, fr.pass, "clear does not close the pass")

	ctx, err = rr.dispatch(fr, ctx, draw.SetMaterial{Material: testMaterial()})
	require.NoError(t, err)
	require.NotNil(t, ctx.material)
	assert.False(t, ctx.material.resolved())
	assert.NotNil(t, fr.pass, "set material does not touch the GPU")

	ctx, err = rr.dispatch(fr, ctx, draw.UploadShaderData{Data: draw.NewShaderData(common.ShaderStageVertex, 0, float32(1))})
	require.NoError(t, err)
	assert.Len(t, ctx.uniforms, 1)
	assert.Equal(t, 0, dev.Count(device.OpPushUniformData))

	before := ctx
	ctx, err = rr.dispatch(fr, ctx, unknownCommand{})
	require.NoError(t, err)
	assert.Equal(t, before, ctx)

	ctx, err = rr.dispatch(fr, ctx, draw.CompileMaterial{Material: testMaterial()})
	require.NoError(t, err)
	assert.True(t, ctx.material.resolved())
	assert.Empty(t, ctx.uniforms)
	assert.Nil(t, fr.pass, "compile material closes the pass")

	_, err = rr.dispatch(fr, ctx, draw.DrawMesh{Mesh: quad()})
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Count(device.OpDrawIndexed))

	require.NoError(t, fr.close())
	require.NoError(t, fr.close())
	assert.Equal(t, 1, dev.Count(device.OpSubmit))
	shutdownClean(t, dev, r)
}
