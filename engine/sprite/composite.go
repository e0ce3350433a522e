package sprite

// flatten composites every visible layer onto a transparent canvas in
// back-to-front order and returns the result. Invisible layers and
// group layers contribute nothing; their cels were still parsed, so a
// corrupt payload fails the whole decode regardless of visibility.
func (d *document) flatten() *Image {
	img := &Image{
		Width:  d.width,
		Height: d.height,
		Pix:    make([]byte, d.width*d.height*4),
	}

	for _, l := range d.layers {
		if !l.visible || l.group {
			continue
		}
		for _, c := range l.cels {
			d.blitCel(img, l, c)
		}
	}
	return img
}

// blitCel draws one cel onto the accumulator at its offset using
// source-over blending scaled by layer and cel opacity. Cel pixels that
// fall outside the canvas are clipped.
func (d *document) blitCel(img *Image, l *layer, c *cel) {
	bpp := d.depth.BytesPerPixel()
	for cy := 0; cy < c.height; cy++ {
		py := c.y + cy
		if py < 0 || py >= img.Height {
			continue
		}
		for cx := 0; cx < c.width; cx++ {
			px := c.x + cx
			if px < 0 || px >= img.Width {
				continue
			}

			sr, sg, sb, sa, ok := d.pixelRGBA(c.pixels[(cy*c.width+cx)*bpp:])
			if !ok {
				continue
			}
			sa = mulUn8(mulUn8(sa, uint32(l.opacity)), uint32(c.opacity))

			blendOver(img.Pix[(py*img.Width+px)*4:], sr, sg, sb, sa)
		}
	}
}

// pixelRGBA converts one stored pixel to RGBA channels. The boolean is
// false for the transparent index of an indexed document, which has no
// color at all rather than a color with zero alpha.
func (d *document) pixelRGBA(p []byte) (r, g, b, a uint32, ok bool) {
	switch d.depth {
	case DepthRGBA:
		return uint32(p[0]), uint32(p[1]), uint32(p[2]), uint32(p[3]), true
	case DepthGrayscale:
		v := uint32(p[0])
		return v, v, v, uint32(p[1]), true
	default: // DepthIndexed
		if p[0] == d.transparentIndex {
			return 0, 0, 0, 0, false
		}
		entry := d.palette[p[0]]
		return uint32(entry[0]), uint32(entry[1]), uint32(entry[2]), uint32(entry[3]), true
	}
}

// blendOver applies standard over-compositing of a straight-alpha
// source pixel onto dst (4 bytes, modified in place). A fully
// transparent destination takes the source channels verbatim, which
// keeps a lossless round trip for a single fully weighted layer.
func blendOver(dst []byte, sr, sg, sb, sa uint32) {
	da := uint32(dst[3])
	if da == 0 {
		dst[0] = byte(sr)
		dst[1] = byte(sg)
		dst[2] = byte(sb)
		dst[3] = byte(sa)
		return
	}
	if sa == 0 {
		return
	}

	outA := sa + mulUn8(da, 255-sa)
	dst[0] = byte((sr*sa + uint32(dst[0])*mulUn8(da, 255-sa)) / outA)
	dst[1] = byte((sg*sa + uint32(dst[1])*mulUn8(da, 255-sa)) / outA)
	dst[2] = byte((sb*sa + uint32(dst[2])*mulUn8(da, 255-sa)) / outA)
	dst[3] = byte(outA)
}

// mulUn8 multiplies two 8-bit fractions with rounding, the way pixel
// editors combine opacities.
func mulUn8(a, b uint32) uint32 {
	t := a*b + 0x80
	return ((t >> 8) + t) >> 8
}
