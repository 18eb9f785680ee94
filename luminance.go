package qrscan

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// PixelFormat identifies the layout of the raw pixel buffer passed to
// Detect/DetectInto (spec.md §6).
type PixelFormat int

const (
	// FormatGray8 is 8-bit luminance, row-major, one byte per pixel.
	FormatGray8 PixelFormat = iota
	// FormatRGB24 is 24-bit RGB, row-major, three bytes per pixel.
	FormatRGB24
	// FormatRGBA32 is 32-bit RGBA, row-major, four bytes per pixel.
	FormatRGBA32
)

// bytesPerPixel returns the stride of one pixel for the format, or 0 for an
// unrecognized format.
func (f PixelFormat) bytesPerPixel() int {
	switch f {
	case FormatGray8:
		return 1
	case FormatRGB24:
		return 3
	case FormatRGBA32:
		return 4
	default:
		return 0
	}
}

// Luminance is an 8-bit grayscale plane, row-major. It is the universal
// input to the binarizer bank (spec.md §3).
type Luminance struct {
	Width, Height int
	Pix           []byte
}

// At returns the luminance sample at (x, y), clamping out-of-range indices
// to the image border (spec.md §7: "out-of-range indices during sampling
// clamp to the image border rather than fault").
func (l *Luminance) At(x, y int) byte {
	if x < 0 {
		x = 0
	} else if x >= l.Width {
		x = l.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= l.Height {
		y = l.Height - 1
	}
	return l.Pix[y*l.Width+x]
}

// newLuminance allocates a Luminance, preferring a pooled buffer from
// scratch when it is large enough (spec.md §3: "reused via external
// buffer pool").
func newLuminance(scratch *Scratch, width, height int) *Luminance {
	pix := scratch.takeLuminance(width * height)
	return &Luminance{Width: width, Height: height, Pix: pix}
}

// toLuminance converts the raw pixel buffer to grayscale at its native
// size; downscaling to Config.MaxDimension is done afterwards by
// scaleToMax. This is the "pixel preprocessor" stage of spec.md §2.1. Grayscale conversion is partitioned across rows on a
// work-stealing pool (spec.md §5's preprocessing concurrency boundary),
// grounded on the errgroup fan-out dfbb-im2code's dependency graph pulls
// in via golang.org/x/sync.
func toLuminance(scratch *Scratch, pixels []byte, width, height int, format PixelFormat) (*Luminance, error) {
	bpp := format.bytesPerPixel()
	if bpp == 0 {
		return nil, ErrUnsupportedFormat
	}
	if width == 0 || height == 0 {
		return nil, ErrZeroDimension
	}
	if len(pixels) != width*height*bpp {
		return nil, ErrBufferSize
	}

	lum := newLuminance(scratch, width, height)
	if format == FormatGray8 {
		copy(lum.Pix, pixels)
		return lum, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	if workers < 1 {
		workers = 1
	}
	rowsPerWorker := (height + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > height {
			endRow = height
		}
		if startRow >= endRow {
			continue
		}
		g.Go(func() error {
			grayscaleRows(lum.Pix, pixels, width, startRow, endRow, bpp, format == FormatRGBA32)
			return nil
		})
	}
	_ = g.Wait()

	return lum, nil
}

// grayscaleRows converts rows [startRow, endRow) using the standard
// luminance-preserving weights (ITU-R BT.601).
func grayscaleRows(dst, src []byte, width, startRow, endRow, bpp int, hasAlpha bool) {
	for y := startRow; y < endRow; y++ {
		rowOff := y * width * bpp
		dstOff := y * width
		for x := 0; x < width; x++ {
			o := rowOff + x*bpp
			r, gCh, b := src[o], src[o+1], src[o+2]
			gray := (299*int(r) + 587*int(gCh) + 114*int(b)) / 1000
			dst[dstOff+x] = byte(gray)
		}
	}
}

// downscale builds a half-resolution Luminance by 2x2 box averaging. The
// detect pipeline does not call it: Config.MaxDimension handling uses
// scaleToMax's nearest-neighbour sampling, and the finder's pyramid
// (spec.md §4.2) halves the bit-plane with downscaleBitMatrix.
func downscale(src *Luminance, scratch *Scratch) *Luminance {
	dw, dh := (src.Width+1)/2, (src.Height+1)/2
	dst := newLuminance(scratch, dw, dh)
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			sx, sy := x*2, y*2
			sum := int(src.At(sx, sy)) + int(src.At(sx+1, sy)) + int(src.At(sx, sy+1)) + int(src.At(sx+1, sy+1))
			dst.Pix[y*dw+x] = byte(sum / 4)
		}
	}
	return dst
}

// scaleToMax downscales lum, preserving aspect ratio, so that
// max(width,height) <= maxDim. maxDim == 0 disables downscaling. Returns
// the same Luminance (unscaled) if already within bounds.
func scaleToMax(lum *Luminance, maxDim int, scratch *Scratch) (*Luminance, float64) {
	if maxDim <= 0 {
		return lum, 1.0
	}
	longest := lum.Width
	if lum.Height > longest {
		longest = lum.Height
	}
	if longest <= maxDim {
		return lum, 1.0
	}
	scale := float64(maxDim) / float64(longest)
	dw := int(float64(lum.Width) * scale)
	dh := int(float64(lum.Height) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := newLuminance(scratch, dw, dh)
	for y := 0; y < dh; y++ {
		sy := int(float64(y) / scale)
		for x := 0; x < dw; x++ {
			sx := int(float64(x) / scale)
			dst.Pix[y*dw+x] = lum.At(sx, sy)
		}
	}
	return dst, scale
}
