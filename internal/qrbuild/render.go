package qrbuild

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// RenderGray8 rasterizes the symbol to an 8-bit grayscale buffer (255 =
// white, 0 = black), scale pixels per module plus a quiet-zone border of
// border modules on each side — the direct input shape qrscan.Detect
// expects, skipping any image codec round trip.
func (sym *Symbol) RenderGray8(scale, border int) (pix []byte, width, height int) {
	if scale < 1 {
		scale = 1
	}
	if border < 0 {
		border = 0
	}
	dim := (sym.Size + 2*border) * scale
	pix = make([]byte, dim*dim)
	for i := range pix {
		pix[i] = 255
	}
	for r := 0; r < sym.Size; r++ {
		for c := 0; c < sym.Size; c++ {
			if !sym.Modules[r][c] {
				continue
			}
			startX := (c + border) * scale
			startY := (r + border) * scale
			for y := 0; y < scale; y++ {
				rowOff := (startY + y) * dim
				for x := 0; x < scale; x++ {
					pix[rowOff+startX+x] = 0
				}
			}
		}
	}
	return pix, dim, dim
}

// RenderImage builds an image.Image from the symbol, for tests that
// exercise the image.Image -> pixel-buffer bridge in internal/hostio.
func (sym *Symbol) RenderImage(scale, border int) image.Image {
	pix, dim, _ := sym.RenderGray8(scale, border)
	img := image.NewGray(image.Rect(0, 0, dim, dim))
	copy(img.Pix, pix)
	return img
}

// WritePNG encodes the symbol as a paletted black-and-white PNG, the
// original encoder's writer.go behavior, unchanged.
func (sym *Symbol) WritePNG(w io.Writer, scale int) error {
	if scale < 1 {
		scale = 1
	}
	border := 4
	dim := (sym.Size + 2*border) * scale

	img := image.NewPaletted(image.Rect(0, 0, dim, dim), color.Palette{
		color.White, color.Black,
	})
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	for r := 0; r < sym.Size; r++ {
		for c := 0; c < sym.Size; c++ {
			if !sym.Modules[r][c] {
				continue
			}
			startX := (c + border) * scale
			startY := (r + border) * scale
			for y := 0; y < scale; y++ {
				for x := 0; x < scale; x++ {
					img.SetColorIndex(startX+x, startY+y, 1)
				}
			}
		}
	}
	return png.Encode(w, img)
}
