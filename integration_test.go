package qrscan

import (
	"strconv"
	"testing"

	"github.com/ashokshau/qrscan/internal/qrbuild"
)

// bitWriter is a minimal MSB-first bit packer for the hand-rolled numeric
// segment in TestGoldenMatrixNumericPayload; qrbuild's own bitBuffer is
// unexported and byte-mode only, so the golden-matrix fixture (which needs
// numeric mode) packs its bits directly here.
type bitWriter struct{ bits []bool }

func (w *bitWriter) put(v, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, (v>>uint(i))&1 == 1)
	}
}

func (w *bitWriter) codewords(total int) []int {
	for len(w.bits)%8 != 0 {
		w.bits = append(w.bits, false)
	}
	padBytes := []int{0xEC, 0x11}
	idx := 0
	for len(w.bits) < total*8 {
		w.put(padBytes[idx], 8)
		idx = (idx + 1) % 2
	}
	out := make([]int, total)
	for i := 0; i < total; i++ {
		v := 0
		for j := 0; j < 8; j++ {
			bit := 0
			if w.bits[i*8+j] {
				bit = 1
			}
			v = (v << 1) | bit
		}
		out[i] = v
	}
	return out
}

func modulesToBitRows(sym *qrbuild.Symbol) [][]int {
	rows := make([][]int, sym.Size)
	for y, row := range sym.Modules {
		r := make([]int, sym.Size)
		for x, dark := range row {
			if dark {
				r[x] = 1
			}
		}
		rows[y] = r
	}
	return rows
}

// TestGoldenMatrixNumericPayload is spec.md §8 seed scenario 1: the exact
// 21x21 grid encoding numeric payload "4376471154038" at EC level Q, mask
// pattern 2, fed directly to DecodeMatrix.
func TestGoldenMatrixNumericPayload(t *testing.T) {
	const payload = "4376471154038"
	const totalCodewords = 26
	const eccCodewords = 13
	const dataCodewords = totalCodewords - eccCodewords

	var bw bitWriter
	bw.put(int(modeNumeric), 4)
	bw.put(len(payload), 10) // v1 numeric char-count indicator is 10 bits

	i := 0
	for ; i+3 <= len(payload); i += 3 {
		v, err := strconv.Atoi(payload[i : i+3])
		if err != nil {
			t.Fatal(err)
		}
		bw.put(v, 10)
	}
	switch len(payload) - i {
	case 2:
		v, _ := strconv.Atoi(payload[i:])
		bw.put(v, 7)
	case 1:
		v, _ := strconv.Atoi(payload[i:])
		bw.put(v, 4)
	}

	remaining := dataCodewords*8 - len(bw.bits)
	term := 4
	if term > remaining {
		term = remaining
	}
	bw.put(0, term)

	dataBytes := bw.codewords(dataCodewords)
	ecc := qrbuild.ComputeECC(dataBytes, eccCodewords)
	message := append(append([]int{}, dataBytes...), ecc...)

	sym := qrbuild.PlaceSymbol(1, qrbuild.LevelQ, 2, message)
	if sym.Size != 21 {
		t.Fatalf("expected a 21x21 v1 symbol, got size %d", sym.Size)
	}

	result, failure, err := DecodeMatrix(modulesToBitRows(sym))
	if err != nil {
		t.Fatalf("DecodeMatrix failed (%s): %v", failure, err)
	}
	if result.Payload.Text != payload {
		t.Fatalf("payload = %q, want %q", result.Payload.Text, payload)
	}
	if result.Version != 1 {
		t.Fatalf("version = %d, want 1", result.Version)
	}
	if result.ECLevel != ECLevelQ {
		t.Fatalf("ECLevel = %v, want Q", result.ECLevel)
	}
	if result.MaskPattern != 2 {
		t.Fatalf("mask = %d, want 2", result.MaskPattern)
	}
}

// buildHelloSymbol renders spec.md §8 seed scenario 2's v1-M byte-mode
// "HELLO" fixture as an 8-bit luminance buffer with a quiet zone border.
func buildHelloSymbol(t *testing.T, mask int) (pix []byte, width, height int) {
	t.Helper()
	sym, err := qrbuild.Build("HELLO", qrbuild.LevelM, mask)
	if err != nil {
		t.Fatalf("qrbuild.Build: %v", err)
	}
	pix, width, height = sym.RenderGray8(10, 10)
	return pix, width, height
}

// TestSyntheticV1ByteHello is spec.md §8 seed scenario 2.
func TestSyntheticV1ByteHello(t *testing.T) {
	pix, width, height := buildHelloSymbol(t, 0)
	report, err := Detect(pix, width, height, FormatGray8)
	if err != nil {
		t.Fatalf("Detect returned a fatal error: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("got %d results (%s), want exactly 1", len(report.Results), report.Telemetry.Signature())
	}
	if got := report.Results[0].Payload.Text; got != "HELLO" {
		t.Fatalf("payload = %q, want %q", got, "HELLO")
	}
}

// rotate90CW rotates a row-major 8-bit luminance buffer 90 degrees
// clockwise: the pixel at (x,y) in the source lands at (h-1-y, x) in the
// destination.
func rotate90CW(pix []byte, w, h int) ([]byte, int, int) {
	dw, dh := h, w
	out := make([]byte, dw*dh)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := h - 1 - y
			dy := x
			out[dy*dw+dx] = pix[y*w+x]
		}
	}
	return out, dw, dh
}

// TestRotationInvariance90 is spec.md §8 seed scenario 3: the scenario-2
// image rotated 90 degrees clockwise must still decode to "HELLO".
func TestRotationInvariance90(t *testing.T) {
	pix, width, height := buildHelloSymbol(t, 0)
	rotated, rw, rh := rotate90CW(pix, width, height)

	report, err := Detect(rotated, rw, rh, FormatGray8)
	if err != nil {
		t.Fatalf("Detect returned a fatal error: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("got %d results (%s), want exactly 1", len(report.Results), report.Telemetry.Signature())
	}
	if got := report.Results[0].Payload.Text; got != "HELLO" {
		t.Fatalf("payload = %q, want %q", got, "HELLO")
	}
}

// TestBurstCorruptionRecovers is spec.md §8 seed scenario 4: v1-M provides
// 10 ECC bytes per block (corrects up to 5 byte errors); flipping 4
// consecutive data bytes must still decode to "HELLO".
func TestBurstCorruptionRecovers(t *testing.T) {
	version, message, err := qrbuild.EncodeMessage("HELLO", qrbuild.LevelM)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	// v1-M: 16 data codewords, 10 ecc codewords (versionTable in qrbuild).
	dataLen := len(message) - 10
	for i := 0; i < 4 && i < dataLen; i++ {
		message[i] ^= 0xFF
	}

	sym := qrbuild.PlaceSymbol(version, qrbuild.LevelM, 0, message)
	result, failure, err := DecodeMatrix(modulesToBitRows(sym))
	if err != nil {
		t.Fatalf("expected recovery from a 4-byte burst within ECC capacity, got (%s): %v", failure, err)
	}
	if result.Payload.Text != "HELLO" {
		t.Fatalf("payload = %q, want %q", result.Payload.Text, "HELLO")
	}
}

// TestUnrecoverableCorruption is spec.md §8 seed scenario 5: flipping 6
// data bytes exceeds v1-M's correction capacity and must fail, not
// silently miscorrect.
func TestUnrecoverableCorruption(t *testing.T) {
	version, message, err := qrbuild.EncodeMessage("HELLO", qrbuild.LevelM)
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	dataLen := len(message) - 10
	for i := 0; i < 6 && i < dataLen; i++ {
		message[i] ^= 0xFF
	}

	sym := qrbuild.PlaceSymbol(version, qrbuild.LevelM, 0, message)
	_, failure, err := DecodeMatrix(modulesToBitRows(sym))
	if err == nil {
		t.Fatal("expected a decode failure for corruption beyond ECC capacity")
	}
	if failure != FailureRSUnrecoverable && failure != FailureFormatUnrecoverable {
		t.Fatalf("failure = %v, want rs_unrecoverable (or a format-level rejection of the corrupted grid)", failure)
	}
}

// composeCanvas pastes src onto a white dst luminance buffer at (ox, oy).
func composeCanvas(dst []byte, dw int, src []byte, sw, sh, ox, oy int) {
	for y := 0; y < sh; y++ {
		copy(dst[(oy+y)*dw+ox:(oy+y)*dw+ox+sw], src[y*sw:(y+1)*sw])
	}
}

// TestMultiSymbolImage is spec.md §8 seed scenario 6: three non-overlapping
// v1 symbols on one canvas must all decode, as the unordered set
// {"A","B","C"}.
func TestMultiSymbolImage(t *testing.T) {
	const canvasDim = 600
	canvas := make([]byte, canvasDim*canvasDim)
	for i := range canvas {
		canvas[i] = 255
	}

	positions := [3][2]int{{20, 20}, {320, 20}, {170, 320}}
	payloads := [3]string{"A", "B", "C"}
	for i, text := range payloads {
		sym, err := qrbuild.Build(text, qrbuild.LevelM, 0)
		if err != nil {
			t.Fatalf("qrbuild.Build(%q): %v", text, err)
		}
		pix, w, h := sym.RenderGray8(8, 4)
		composeCanvas(canvas, canvasDim, pix, w, h, positions[i][0], positions[i][1])
	}

	report, err := Detect(canvas, canvasDim, canvasDim, FormatGray8, WithFallbacks(true, false, false))
	if err != nil {
		t.Fatalf("Detect returned a fatal error: %v", err)
	}

	got := map[string]bool{}
	for _, r := range report.Results {
		got[r.Payload.Text] = true
	}
	for _, want := range payloads {
		if !got[want] {
			t.Fatalf("missing payload %q among results %v (%s)", want, report.Results, report.Telemetry.Signature())
		}
	}
	if len(report.Results) != 3 {
		t.Fatalf("got %d results, want exactly 3: %v", len(report.Results), report.Results)
	}
}

// TestEmptyInputNoPanic is spec.md §8's "Empty input" boundary: a
// zero-byte image of declared width/height yields an empty payload list
// and no panic.
func TestEmptyInputNoPanic(t *testing.T) {
	_, err := Detect(nil, 10, 10, FormatGray8)
	if err == nil {
		t.Fatal("expected a buffer-size validation error for a 10x10 request with a nil buffer")
	}

	report, err := Detect(make([]byte, 0), 0, 0, FormatGray8)
	if err == nil {
		t.Fatal("expected ErrZeroDimension for width=height=0")
	}
	if len(report.Results) != 0 {
		t.Fatalf("expected no results, got %d", len(report.Results))
	}
}
