package texture

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrInvalidDimensions is returned for pixel data with a zero or negative width or height.
	ErrInvalidDimensions = errors.New("texture dimensions must be positive")

	// ErrUnsupportedFormat is returned for a pixel format other than RGB or RGBA.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")

	// ErrPixelDataSize is returned when the pixel data is shorter than width*height*channels.
	ErrPixelDataSize = errors.New("pixel data does not match texture dimensions")
)

// Pixels is tightly packed RGBA8 image data, row-major from the top-left corner.
type Pixels struct {
	Data   []byte
	Width  uint32
	Height uint32
}

// Normalize converts raw RGB or RGBA pixel data to RGBA8. RGB input gets an opaque alpha channel; RGBA input
// is copied unchanged.
//
// Parameters:
//   - data: the source pixels, tightly packed rows of format
//   - width: the image width in pixels
//   - height: the image height in pixels
//   - format: the channel layout of data
//
// Returns:
//   - Pixels: a fresh RGBA8 copy of the image
//   - error: an error if the dimensions, format or data length are invalid
func Normalize(data []byte, width, height int, format common.PixelFormat) (Pixels, error) {
	if width <= 0 || height <= 0 {
		return Pixels{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	channels := format.Channels()
	if channels == 0 {
		return Pixels{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
	count := width * height
	if len(data) < count*channels {
		return Pixels{}, fmt.Errorf("%w: want %d bytes, got %d", ErrPixelDataSize, count*channels, len(data))
	}

	out := make([]byte, count*4)
	switch format {
	case common.PixelFormatRGBA:
		copy(out, data[:count*4])
	case common.PixelFormatRGB:
		for i := range count {
			out[i*4+0] = data[i*3+0]
			out[i*4+1] = data[i*3+1]
			out[i*4+2] = data[i*3+2]
			out[i*4+3] = 0xFF
		}
	}

	return Pixels{Data: out, Width: uint32(width), Height: uint32(height)}, nil
}

// FromImage converts any decoded image to RGBA8.
//
// Parameters:
//   - img: the decoded image
//
// Returns:
//   - Pixels: the image as RGBA8, its origin moved to (0, 0)
func FromImage(img image.Image) Pixels {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)

	return Pixels{Data: rgba.Pix, Width: uint32(bounds.Dx()), Height: uint32(bounds.Dy())}
}

// Decode reads an encoded image. BMP, PNG, JPEG, TIFF and WebP are supported.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - Pixels: the decoded image as RGBA8
//   - error: an error if the stream is not a supported image
func Decode(r io.Reader) (Pixels, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Pixels{}, fmt.Errorf("failed to decode image: %w", err)
	}
	px := FromImage(img)
	if px.Width == 0 || px.Height == 0 {
		return Pixels{}, ErrInvalidDimensions
	}
	return px, nil
}

// LoadFile opens and decodes an image file.
//
// Parameters:
//   - fsys: the filesystem to read from, or nil for the host filesystem
//   - path: the image path
//
// Returns:
//   - Pixels: the decoded image as RGBA8
//   - error: an error if the file cannot be opened or decoded
func LoadFile(fsys fs.FS, path string) (Pixels, error) {
	var (
		f   io.ReadCloser
		err error
	)
	if fsys != nil {
		f, err = fsys.Open(path)
	} else {
		f, err = os.Open(path)
	}
	if err != nil {
		return Pixels{}, fmt.Errorf("failed to open image %q: %w", path, err)
	}
	defer f.Close()

	px, err := Decode(f)
	if err != nil {
		return Pixels{}, fmt.Errorf("%s: %w", path, err)
	}
	return px, nil
}
