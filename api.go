package qrscan

// Detect locates and decodes every QR symbol it can find in a raw pixel
// buffer (spec.md §6's "detect" entry point). pixels must be exactly
// width*height*bytesPerPixel(format) bytes, row-major.
//
// Detect never returns an error for "no symbol found" — that outcome is
// reported via an empty Results slice and Telemetry.Failure ==
// FailureNoFinders (spec.md §7: "absence of a symbol is not a fatal
// error"). The returned error is reserved for fatal-to-call validation
// failures: a malformed buffer, a zero dimension, or an unsupported pixel
// format.
func Detect(pixels []byte, width, height int, format PixelFormat, opts ...Option) (DetectReport, error) {
	return DetectInto(nil, pixels, width, height, format, opts...)
}

// DetectInto is Detect with an explicit Scratch pool (spec.md §3): each
// luminance plane and bit matrix is taken from scratch when it holds a
// large enough buffer. The pipeline does not hand its buffers back to
// scratch, so a pool that starts empty stays empty and every buffer is
// freshly allocated. scratch may be nil, with the same effect.
func DetectInto(scratch *Scratch, pixels []byte, width, height int, format PixelFormat, opts ...Option) (DetectReport, error) {
	if width == 0 || height == 0 {
		return DetectReport{}, ErrZeroDimension
	}
	if format.bytesPerPixel() == 0 {
		return DetectReport{}, ErrUnsupportedFormat
	}
	if len(pixels) != width*height*format.bytesPerPixel() {
		return DetectReport{}, ErrBufferSize
	}

	cfg := resolve(opts)
	ctrl := newController(cfg, scratch, nil)
	report := ctrl.detect(pixels, width, height, format)
	return report, nil
}

// DecodeMatrix decodes an already-located, already-sampled module grid
// directly (spec.md §6's "decode_matrix" entry point), bypassing
// detection entirely. This is the entry point the strict round-trip tests
// use: render a known grid, decode it, compare payloads.
func DecodeMatrix(bitsPerRow [][]int, opts ...Option) (DecodeResult, FailureReason, error) {
	cfg := resolve(opts)
	dimension := len(bitsPerRow)
	bits := newBitMatrix(nil, dimension, dimension)
	confidence := make([]float64, dimension*dimension)
	for y, row := range bitsPerRow {
		for x, v := range row {
			bits.Set(x, y, v != 0)
			confidence[y*dimension+x] = 1.0
		}
	}
	grid := &ModuleGrid{Dimension: dimension, Bits: bits, Confidence: confidence}
	decoder := newMatrixDecoder(cfg)
	return decoder.Decode(grid)
}
