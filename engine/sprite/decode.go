package sprite

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	headerSize  = 128
	headerMagic = 0xA5E0
	frameMagic  = 0xF1FA
)

// Chunk kinds recognized by the decoder. Anything else is skipped by
// length so files written by newer editors still decode.
const (
	chunkOldPalette  = 0x0004
	chunkOldPalette2 = 0x0011
	chunkLayer       = 0x2004
	chunkCel         = 0x2005
	chunkPalette     = 0x2019
)

const (
	celRaw        = 0
	celLinked     = 1
	celCompressed = 2
	celTilemap    = 3
)

const layerFlagVisible = 0x0001

// Decode parses an Aseprite document and flattens its first frame into
// an RGBA raster. It either returns a complete Image or a typed error,
// never a partial result.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.flatten(), nil
}

// byteReader is a little-endian cursor with a sticky error, so chunk
// parsing reads field-by-field and checks once at the end.
type byteReader struct {
	data []byte
	off  int
	err  error
}

func (r *byteReader) failed() bool { return r.err != nil }

func (r *byteReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.err = io.ErrUnexpectedEOF
		return false
	}
	return true
}

func (r *byteReader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *byteReader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *byteReader) i16() int16 {
	return int16(r.u16())
}

func (r *byteReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *byteReader) skip(n int) {
	if r.need(n) {
		r.off += n
	}
}

// str reads a length-prefixed UTF-8 string.
func (r *byteReader) str() string {
	n := int(r.u16())
	if !r.need(n) {
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// rest returns everything from the cursor to the end of the buffer.
func (r *byteReader) rest() []byte {
	if r.err != nil {
		return nil
	}
	return r.data[r.off:]
}

func parseDocument(data []byte) (*document, error) {
	r := &byteReader{data: data}

	r.u32() // declared file size, unreliable in the wild
	magic := r.u16()
	frames := r.u16()
	width := r.u16()
	height := r.u16()
	depth := r.u16()
	r.u32()    // flags
	r.u16()    // deprecated speed
	r.skip(8)  // two reserved dwords
	transparent := r.u8()
	r.skip(3)  // ignored
	r.u16()    // number of colors
	r.off = headerSize

	if r.failed() || magic != headerMagic || width == 0 || height == 0 || frames == 0 {
		return nil, fmt.Errorf("%w: magic=%#04x frames=%d canvas=%dx%d", ErrMalformedHeader, magic, frames, width, height)
	}
	switch ColorDepth(depth) {
	case DepthIndexed, DepthGrayscale, DepthRGBA:
	default:
		return nil, fmt.Errorf("%w: %d bpp", ErrUnsupportedColorDepth, depth)
	}

	doc := &document{
		width:            int(width),
		height:           int(height),
		depth:            ColorDepth(depth),
		frames:           int(frames),
		transparentIndex: transparent,
	}

	// First frame only.
	if err := doc.parseFrame(r); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *document) parseFrame(r *byteReader) error {
	r.u32() // frame byte count
	magic := r.u16()
	oldChunks := r.u16()
	r.u16()   // frame duration
	r.skip(2) // reserved
	chunks := int(r.u32())
	if chunks == 0 && oldChunks != 0xFFFF {
		chunks = int(oldChunks)
	}
	if r.failed() || magic != frameMagic {
		return fmt.Errorf("%w: bad frame header", ErrMalformedHeader)
	}

	for i := 0; i < chunks; i++ {
		size := int(r.u32())
		kind := r.u16()
		if r.failed() || size < 6 || !r.need(size-6) {
			return fmt.Errorf("%w: truncated chunk %d", ErrMalformedHeader, i)
		}
		payload := r.data[r.off : r.off+size-6]
		r.off += size - 6

		var err error
		switch kind {
		case chunkLayer:
			err = d.parseLayer(payload)
		case chunkCel:
			err = d.parseCel(payload)
		case chunkPalette:
			err = d.parsePalette(payload)
		case chunkOldPalette, chunkOldPalette2:
			err = d.parseOldPalette(payload)
		default:
			// Unknown chunk kinds are skipped by length, not fatal.
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *document) parseLayer(payload []byte) error {
	r := &byteReader{data: payload}
	flags := r.u16()
	layerType := r.u16()
	r.u16() // child level, nested groups are out of scope
	r.u16() // default width, ignored by the editor itself
	r.u16() // default height, ignored by the editor itself
	blend := r.u16()
	opacity := r.u8()
	r.skip(3)
	name := r.str()
	if r.failed() {
		return fmt.Errorf("%w: truncated layer chunk", ErrMalformedHeader)
	}

	d.layers = append(d.layers, &layer{
		name:    name,
		visible: flags&layerFlagVisible != 0,
		group:   layerType == 1,
		opacity: opacity,
		blend:   blend,
	})
	return nil
}

func (d *document) parseCel(payload []byte) error {
	r := &byteReader{data: payload}
	layerIndex := int(r.u16())
	x := int(r.i16())
	y := int(r.i16())
	opacity := r.u8()
	celType := r.u16()
	r.i16()   // z-index
	r.skip(5) // reserved
	if r.failed() {
		return fmt.Errorf("%w: truncated cel chunk", ErrMalformedHeader)
	}
	if layerIndex >= len(d.layers) {
		return fmt.Errorf("%w: cel references layer %d of %d", ErrMalformedHeader, layerIndex, len(d.layers))
	}

	switch celType {
	case celLinked, celTilemap:
		// A link target cannot exist in the first frame and tilemaps are
		// outside the recognized set. Validated, never composited.
		return nil
	case celRaw, celCompressed:
	default:
		return fmt.Errorf("%w: unknown cel type %d", ErrCorruptCel, celType)
	}

	width := int(r.u16())
	height := int(r.u16())
	if r.failed() {
		return fmt.Errorf("%w: truncated cel bounds", ErrCorruptCel)
	}

	want := width * height * d.depth.BytesPerPixel()
	var pixels []byte
	if celType == celRaw {
		raw := r.rest()
		if len(raw) < want {
			return fmt.Errorf("%w: raw cel holds %d of %d bytes", ErrCorruptCel, len(raw), want)
		}
		pixels = raw[:want]
	} else {
		zr, err := zlib.NewReader(bytes.NewReader(r.rest()))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptCel, err)
		}
		defer zr.Close()
		pixels = make([]byte, want)
		if _, err := io.ReadFull(zr, pixels); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptCel, err)
		}
	}

	d.layers[layerIndex].cels = append(d.layers[layerIndex].cels, &cel{
		x:       x,
		y:       y,
		width:   width,
		height:  height,
		opacity: opacity,
		pixels:  pixels,
	})
	return nil
}

func (d *document) parsePalette(payload []byte) error {
	r := &byteReader{data: payload}
	size := int(r.u32())
	first := int(r.u32())
	r.u32()   // last index, implied by size
	r.skip(8) // reserved
	for i := 0; i < size; i++ {
		// size is untrusted; stop as soon as the payload runs out.
		if r.failed() {
			break
		}
		flags := r.u16()
		red := r.u8()
		green := r.u8()
		blue := r.u8()
		alpha := r.u8()
		if flags&0x1 != 0 {
			r.str() // entry name
		}
		if idx := first + i; idx >= 0 && idx < 256 {
			d.palette[idx] = [4]uint8{red, green, blue, alpha}
		}
	}
	if r.failed() {
		return fmt.Errorf("%w: truncated palette chunk", ErrMalformedHeader)
	}
	return nil
}

// parseOldPalette handles the legacy packet-based palette chunk still
// written for palettes that fit in 256 opaque colors.
func (d *document) parseOldPalette(payload []byte) error {
	r := &byteReader{data: payload}
	packets := int(r.u16())
	idx := 0
	for p := 0; p < packets; p++ {
		if r.failed() {
			break
		}
		idx += int(r.u8())
		count := int(r.u8())
		if count == 0 {
			count = 256
		}
		for i := 0; i < count; i++ {
			red := r.u8()
			green := r.u8()
			blue := r.u8()
			if idx >= 0 && idx < 256 {
				d.palette[idx] = [4]uint8{red, green, blue, 0xFF}
			}
			idx++
		}
	}
	if r.failed() {
		return fmt.Errorf("%w: truncated palette chunk", ErrMalformedHeader)
	}
	return nil
}
