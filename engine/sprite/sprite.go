// Package sprite decodes Aseprite files into flattened RGBA rasters.
// A decode is a pure function from bytes to an Image; no state is kept
// between calls. Only the first frame of a document is considered,
// animation playback belongs to the renderer side of the world and is
// not supported here.
package sprite

import (
	"errors"
	"image"
)

var (
	// ErrEmptyFile is returned for zero-length input.
	ErrEmptyFile = errors.New("sprite: empty file")
	// ErrMalformedHeader is returned when the container structure is broken:
	// bad magic, impossible dimensions, truncated chunk tables.
	ErrMalformedHeader = errors.New("sprite: malformed header")
	// ErrUnsupportedColorDepth is returned for color depths outside
	// indexed/grayscale/RGBA.
	ErrUnsupportedColorDepth = errors.New("sprite: unsupported color depth")
	// ErrCorruptCel is returned when a cel payload cannot be decompressed or
	// does not match its declared size. The decode never yields a partial
	// raster in that case.
	ErrCorruptCel = errors.New("sprite: corrupt cel")
)

// ColorDepth is the per-pixel storage format declared in the header,
// expressed in bits per pixel.
type ColorDepth uint16

const (
	DepthIndexed   ColorDepth = 8
	DepthGrayscale ColorDepth = 16
	DepthRGBA      ColorDepth = 32
)

// BytesPerPixel returns the storage size of one pixel at this depth.
func (d ColorDepth) BytesPerPixel() int {
	return int(d) / 8
}

// Image is a decoded raster: 8-bit-per-channel RGBA, row-major, top to
// bottom. It owns its pixel buffer.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NRGBA adapts the raster to the stdlib image type the texture upload
// path consumes. The pixel buffer is shared, not copied.
func (im *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    im.Pix,
		Stride: im.Width * 4,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}

// document holds the parsed structure of one sprite file for the
// duration of a single decode call.
type document struct {
	width            int
	height           int
	depth            ColorDepth
	frames           int
	transparentIndex uint8
	palette          [256][4]uint8
	layers           []*layer
}

// layer carries the chunk fields that matter for compositing. Order of
// appearance in the file is z-order, back to front.
type layer struct {
	name    string
	visible bool
	group   bool
	opacity uint8
	blend   uint16
	cels    []*cel
}

// cel is one rectangle of pixel data placed on the canvas. pixels holds
// raw bytes at the document's color depth, already decompressed.
type cel struct {
	x, y          int
	width, height int
	opacity       uint8
	pixels        []byte
}
