package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func whitePixels(n int) []byte {
	return bytes.Repeat([]byte{0xFF}, n)
}

func encodeBMP(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		w, h    int
		format  common.PixelFormat
		want    []byte
		wantErr error
	}{
		{
			name:   "rgb gets opaque alpha",
			data:   []byte{1, 2, 3, 4, 5, 6},
			w:      2,
			h:      1,
			format: common.PixelFormatRGB,
			want:   []byte{1, 2, 3, 255, 4, 5, 6, 255},
		},
		{
			name:   "rgba is copied",
			data:   []byte{1, 2, 3, 4},
			w:      1,
			h:      1,
			format: common.PixelFormatRGBA,
			want:   []byte{1, 2, 3, 4},
		},
		{
			name:    "short data",
			data:    []byte{1, 2, 3},
			w:       2,
			h:       1,
			format:  common.PixelFormatRGB,
			wantErr: ErrPixelDataSize,
		},
		{
			name:    "zero width",
			data:    []byte{1, 2, 3, 4},
			w:       0,
			h:       1,
			format:  common.PixelFormatRGBA,
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "unknown format",
			data:    []byte{1, 2, 3, 4},
			w:       1,
			h:       1,
			format:  common.PixelFormat(42),
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, err := Normalize(tt.data, tt.w, tt.h, tt.format)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, px.Data)
			assert.EqualValues(t, tt.w, px.Width)
			assert.EqualValues(t, tt.h, px.Height)
		})
	}
}

func TestDecodeBMP(t *testing.T) {
	px, err := Decode(bytes.NewReader(encodeBMP(t, 3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})))
	require.NoError(t, err)

	assert.EqualValues(t, 3, px.Width)
	assert.EqualValues(t, 2, px.Height)
	require.Len(t, px.Data, 3*2*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, px.Data[:4])
	assert.Equal(t, []byte{10, 20, 30, 255}, px.Data[len(px.Data)-4:])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestCacheRoundTripWhiteTexture(t *testing.T) {
	dev := device.NewRecordingDevice()
	c := NewCache(dev)
	cmd, _ := dev.AcquireCommandBuffer()

	entry, err := c.GetOrCreate(cmd, draw.Texture{
		ID:     "white",
		Pixels: whitePixels(16),
		Width:  2,
		Height: 2,
		Format: common.PixelFormatRGBA,
		Filter: common.TextureFilterNearest,
		Wrap:   common.TextureWrapRepeat,
	})
	require.NoError(t, err)
	require.NoError(t, cmd.Submit())

	assert.False(t, entry.IsEmpty())
	assert.False(t, c.Get("white").IsEmpty())
	assert.Equal(t, whitePixels(16), dev.CallsOf(device.OpUploadToTexture)[0].Data)

	samplers := dev.CallsOf(device.OpCreateSampler)
	require.Len(t, samplers, 1)
	assert.Equal(t, device.FilterNearest, samplers[0].Sampler.MinFilter)
	assert.Equal(t, device.FilterNearest, samplers[0].Sampler.MagFilter)
	assert.Equal(t, device.SamplerMipmapModeLinear, samplers[0].Sampler.MipmapMode)
	assert.Equal(t, device.SamplerAddressModeRepeat, samplers[0].Sampler.AddressModeU)
	assert.Equal(t, device.SamplerAddressModeRepeat, samplers[0].Sampler.AddressModeW)
}

func TestCacheIsIdempotent(t *testing.T) {
	dev := device.NewRecordingDevice()
	c := NewCache(dev)
	cmd, _ := dev.AcquireCommandBuffer()

	tex := draw.Texture{ID: "rgb", Pixels: []byte{255, 0, 0}, Width: 1, Height: 1, Format: common.PixelFormatRGB}
	first, err := c.GetOrCreate(cmd, tex)
	require.NoError(t, err)

	tex.Filter = common.TextureFilterNearest
	second, err := c.GetOrCreate(cmd, tex)
	require.NoError(t, err)
	require.NoError(t, cmd.Submit())

	assert.Same(t, first.Texture, second.Texture)
	assert.Same(t, first.Sampler, second.Sampler)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, dev.Count(device.OpCreateTexture))
	assert.Equal(t, 1, dev.Count(device.OpCreateSampler))
	assert.Equal(t, []byte{255, 0, 0, 255}, dev.CallsOf(device.OpUploadToTexture)[0].Data)
}

func TestCacheGetUnknownIsEmpty(t *testing.T) {
	c := NewCache(device.NewRecordingDevice())
	assert.True(t, c.Get("missing").IsEmpty())
	assert.Equal(t, 0, c.Len())
}

func TestCacheFailuresLeaveNothingBehind(t *testing.T) {
	boom := errors.New("sampler heap exhausted")

	tests := []struct {
		name    string
		options []device.RecordingDeviceBuilderOption
		tex     draw.Texture
		wantErr error
	}{
		{
			name:    "sampler creation fails",
			options: []device.RecordingDeviceBuilderOption{device.WithFailure(device.OpCreateSampler, boom)},
			tex:     draw.Texture{ID: "t", Pixels: whitePixels(4), Width: 1, Height: 1},
			wantErr: boom,
		},
		{
			name:    "no pixels and no path",
			tex:     draw.Texture{ID: "t"},
			wantErr: ErrNoPixels,
		},
		{
			name:    "no id",
			tex:     draw.Texture{Pixels: whitePixels(4), Width: 1, Height: 1},
			wantErr: ErrMissingID,
		},
		{
			name: "missing file",
			tex:  draw.Texture{Path: "nope.bmp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := device.NewRecordingDevice(tt.options...)
			c := NewCache(dev, WithFS(fstest.MapFS{}))
			cmd, _ := dev.AcquireCommandBuffer()

			entry, err := c.GetOrCreate(cmd, tt.tex)
			require.Error(t, err)
			var texErr *Error
			assert.ErrorAs(t, err, &texErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.True(t, entry.IsEmpty())
			assert.Equal(t, 0, c.Len())

			require.NoError(t, cmd.Submit())
			assert.Empty(t, dev.LiveResources())
		})
	}
}

func TestCachePreloadDecodesInParallel(t *testing.T) {
	fsys := fstest.MapFS{
		"a.bmp": {Data: encodeBMP(t, 4, 4, color.RGBA{R: 255, A: 255})},
		"b.bmp": {Data: encodeBMP(t, 2, 8, color.RGBA{G: 255, A: 255})},
	}
	dev := device.NewRecordingDevice()
	c := NewCache(dev, WithFS(fsys), WithPreloadWorkers(2))

	textures := []draw.Texture{{Path: "a.bmp"}, {Path: "b.bmp"}, {Path: "a.bmp"}}
	require.NoError(t, c.Preload(textures...))

	// the files are gone, so uploads must come from the preloaded pixels
	delete(fsys, "a.bmp")
	delete(fsys, "b.bmp")

	cmd, _ := dev.AcquireCommandBuffer()
	for _, tex := range textures {
		entry, err := c.GetOrCreate(cmd, tex)
		require.NoError(t, err)
		assert.False(t, entry.IsEmpty())
	}
	require.NoError(t, cmd.Submit())

	assert.Equal(t, 2, c.Len())
	assert.EqualValues(t, 2, c.Get("b.bmp").Texture.Width())
	assert.EqualValues(t, 8, c.Get("b.bmp").Texture.Height())

	c.ReleaseAll()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, dev.LiveResources())
}

func TestCachePreloadReportsMissingFiles(t *testing.T) {
	c := NewCache(device.NewRecordingDevice(), WithFS(fstest.MapFS{}))

	err := c.Preload(draw.Texture{Path: "missing.bmp"})
	require.Error(t, err)
	var texErr *Error
	require.ErrorAs(t, err, &texErr)
	assert.Equal(t, "missing.bmp", texErr.ID)
}
