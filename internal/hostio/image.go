// Package hostio bridges decoded image.Image values to the raw pixel
// buffers qrscan.Detect expects. It owns no image codecs itself — callers
// register whichever decoders they need (image/png, golang.org/x/image/
// bmp, golang.org/x/image/tiff) via blank imports before calling Decode.
package hostio

import (
	"fmt"
	"image"

	"github.com/ashokshau/qrscan"
)

// ToLuminance converts an arbitrary image.Image to a tightly packed
// FormatGray8 buffer, sampling through the image's own color model rather
// than assuming RGBA (spec.md §6: "the core is pixel-format agnostic; host
// code owns the conversion from whatever codec it used").
func ToLuminance(img image.Image) (pix []byte, width, height int) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pix = make([]byte, width*height)

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			srcOff := y * gray.Stride
			copy(pix[y*width:(y+1)*width], gray.Pix[srcOff:srcOff+width])
		}
		return pix, width, height
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA() returns 16-bit-scaled channels; reduce to 8-bit before
			// applying the same BT.601 weights the core's grayscaleRows uses.
			gray := (299*int(r>>8) + 587*int(g>>8) + 114*int(b>>8)) / 1000
			pix[i] = byte(gray)
			i++
		}
	}
	return pix, width, height
}

// Decode reads an image via the standard image package's registered
// decoders and converts it straight to a Detect call.
func Decode(r ImageReader, opts ...qrscan.Option) (qrscan.DetectReport, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return qrscan.DetectReport{}, fmt.Errorf("hostio: decoding image (detected format %q): %w", format, err)
	}
	pix, w, h := ToLuminance(img)
	return qrscan.Detect(pix, w, h, qrscan.FormatGray8, opts...)
}

// ImageReader is the minimal interface image.Decode needs; defined here so
// callers don't need to import "io" just to call Decode.
type ImageReader interface {
	Read(p []byte) (n int, err error)
}
