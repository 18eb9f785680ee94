package qrscan

// MatrixDecoder ties together format/version extraction, unmasking,
// zigzag codeword traversal, deinterleaving, and per-block Reed-Solomon
// correction (spec.md §4.6, all steps).
type MatrixDecoder struct {
	cfg Config
}

func newMatrixDecoder(cfg Config) *MatrixDecoder {
	return &MatrixDecoder{cfg: cfg}
}

// DecodeResult is the outcome of decoding one sampled grid.
type DecodeResult struct {
	Payload     Payload
	Version     int
	ECLevel     ECLevel
	MaskPattern int
}

// Decode runs the full matrix decode pipeline on a sampled module grid
// (spec.md §4.6 steps 1-7).
func (d *MatrixDecoder) Decode(grid *ModuleGrid) (DecodeResult, FailureReason, error) {
	size := grid.Dimension
	version := versionForDimension(size)

	formatInfo, ok := d.readFormatInfo(grid, size)
	if !ok {
		return DecodeResult{}, FailureFormatUnrecoverable, &decodeErr{"format: format info unrecoverable"}
	}

	if version >= 7 {
		if v, ok := d.readVersionInfo(grid, size); ok {
			version = v
		}
	}

	fn := functionModuleMask(size, version)
	unmask(grid.Bits, formatInfo.MaskPattern, fn)

	rawBits, rawConf := zigzagTraverse(grid, size, fn)
	rawCodewords, byteConf := packBits(rawBits, rawConf)

	layout := layoutFor(version, formatInfo.ECLevel)
	if len(rawCodewords) < layout.TotalCodewords {
		return DecodeResult{}, FailureFormatUnrecoverable, &decodeErr{"format: insufficient codewords for declared version"}
	}

	blocksData, blocksEcc, confData, confEcc := deinterleave(rawCodewords, byteConf, layout)

	var dataOut []int
	for b := 0; b < layout.NumBlocks; b++ {
		codeword := append(append([]int{}, blocksData[b]...), blocksEcc[b]...)
		conf := append(append([]float64{}, confData[b]...), confEcc[b]...)

		var erasures []int
		for i, c := range conf {
			if c < d.cfg.ErasureThreshold {
				erasures = append(erasures, i)
			}
		}

		corrected, err := rsDecodeBlock(codeword, layout.ECCPerBlock, erasures)
		if err != nil {
			return DecodeResult{}, FailureRSUnrecoverable, err
		}
		dataOut = append(dataOut, corrected...)
	}

	dataBytes := make([]byte, len(dataOut))
	for i, v := range dataOut {
		dataBytes[i] = byte(v)
	}

	payload, err := parsePayload(dataBytes, version)
	if err != nil {
		return DecodeResult{}, FailurePayloadMalformed, err
	}

	return DecodeResult{
		Payload:     payload,
		Version:     version,
		ECLevel:     formatInfo.ECLevel,
		MaskPattern: formatInfo.MaskPattern,
	}, FailureNone, nil
}

// readFormatInfo reads both format-info copies (spec.md §4.6 step 1) and
// returns the first that BCH-corrects.
func (d *MatrixDecoder) readFormatInfo(grid *ModuleGrid, size int) (FormatInfo, bool) {
	bit := func(x, y int) int {
		if grid.Bits.Get(x, y) {
			return 1
		}
		return 0
	}

	var a int
	for i := 0; i <= 5; i++ {
		a |= bit(8, i) << uint(i)
	}
	a |= bit(8, 7) << 6
	a |= bit(8, 8) << 7
	a |= bit(7, 8) << 8
	for i := 9; i < 15; i++ {
		a |= bit(14-i, 8) << uint(i)
	}
	if fi, ok := decodeFormatInfo(a); ok {
		return fi, true
	}

	var b int
	for i := 0; i < 8; i++ {
		b |= bit(size-1-i, 8) << uint(i)
	}
	for i := 8; i < 15; i++ {
		b |= bit(8, size-15+i) << uint(i)
	}
	return decodeFormatInfo(b)
}

// readVersionInfo reads both version-info blocks (spec.md §4.6 step 2).
func (d *MatrixDecoder) readVersionInfo(grid *ModuleGrid, size int) (int, bool) {
	bit := func(x, y int) int {
		if grid.Bits.Get(x, y) {
			return 1
		}
		return 0
	}

	var v1, v2 int
	for i := 0; i < 18; i++ {
		a := size - 11 + i%3
		b := i / 3
		v1 |= bit(a, b) << uint(i)
		v2 |= bit(b, a) << uint(i)
	}
	if ver, ok := decodeVersionInfo(v1); ok {
		return ver, true
	}
	return decodeVersionInfo(v2)
}

// functionModuleMask returns a predicate identifying reserved (non-data)
// modules for a given symbol size/version (spec.md §4.6 step 3's "function
// pattern" exclusion set).
func functionModuleMask(size, version int) func(x, y int) bool {
	aligns := alignmentPatternPositions(version)
	alignSet := map[[2]int]bool{}
	for _, ax := range aligns {
		for _, ay := range aligns {
			if (ax <= 8 && ay <= 8) || (ax <= 8 && ay >= size-9) || (ax >= size-9 && ay <= 8) {
				continue // overlaps a finder corner, not a real alignment pattern
			}
			alignSet[[2]int{ax, ay}] = true
		}
	}

	return func(x, y int) bool {
		if (x < 9 && y < 9) || (x < 9 && y >= size-8) || (x >= size-8 && y < 9) {
			return true
		}
		if x == 6 || y == 6 {
			return true
		}
		if version >= 7 {
			if (x < 6 && y >= size-11) || (y < 6 && x >= size-11) {
				return true
			}
		}
		for ax := range alignSet {
			if x >= ax[0]-2 && x <= ax[0]+2 && y >= ax[1]-2 && y <= ax[1]+2 {
				return true
			}
		}
		return false
	}
}

// zigzagTraverse walks the data area in the standard two-columns-at-a-time
// upward/downward zigzag (spec.md §4.6 step 3), skipping function modules
// and column 6, returning bits and their per-bit confidence in stream
// order.
func zigzagTraverse(grid *ModuleGrid, size int, isFunction func(x, y int) bool) ([]int, []float64) {
	var bitsOut []int
	var confOut []float64

	upward := true
	for right := size - 1; right >= 1; right -= 2 {
		if right == 6 {
			right = 5
		}
		for vert := 0; vert < size; vert++ {
			var y int
			if upward {
				y = size - 1 - vert
			} else {
				y = vert
			}
			for j := 0; j < 2; j++ {
				x := right - j
				if isFunction(x, y) {
					continue
				}
				bit := 0
				if grid.Bits.Get(x, y) {
					bit = 1
				}
				bitsOut = append(bitsOut, bit)
				confOut = append(confOut, grid.confidenceAt(x, y))
			}
		}
		upward = !upward
	}
	return bitsOut, confOut
}

// packBits packs a bit stream (MSB-first within each byte) into codewords,
// and each codeword's confidence as the minimum over its 8 constituent
// bits (spec.md §4.6 step 6's erasure conversion needs a conservative,
// not averaged, signal).
func packBits(bits []int, conf []float64) ([]int, []float64) {
	n := len(bits) / 8
	out := make([]int, n)
	confOut := make([]float64, n)
	for i := 0; i < n; i++ {
		v := 0
		minConf := 1.0
		for j := 0; j < 8; j++ {
			v = (v << 1) | bits[i*8+j]
			if conf[i*8+j] < minConf {
				minConf = conf[i*8+j]
			}
		}
		out[i] = v
		confOut[i] = minConf
	}
	return out, confOut
}

// deinterleave reverses the round-robin block interleaving (spec.md §4.6
// step 5), reading codewords in the same traversal order the encoder
// writes them.
func deinterleave(codewords []int, conf []float64, layout blockLayout) (data, ecc [][]int, dataConf, eccConf [][]float64) {
	numBlocks := layout.NumBlocks
	shortDataLen := layout.ShortBlockLen - layout.ECCPerBlock
	data = make([][]int, numBlocks)
	dataConf = make([][]float64, numBlocks)
	ecc = make([][]int, numBlocks)
	eccConf = make([][]float64, numBlocks)

	pos := 0
	longDataLen := shortDataLen + 1
	for i := 0; i < longDataLen; i++ {
		for b := 0; b < numBlocks; b++ {
			blockDataLen := shortDataLen
			if b >= layout.NumShortBlocks {
				blockDataLen = longDataLen
			}
			if i < blockDataLen {
				data[b] = append(data[b], codewords[pos])
				dataConf[b] = append(dataConf[b], conf[pos])
				pos++
			}
		}
	}
	for i := 0; i < layout.ECCPerBlock; i++ {
		for b := 0; b < numBlocks; b++ {
			ecc[b] = append(ecc[b], codewords[pos])
			eccConf[b] = append(eccConf[b], conf[pos])
			pos++
		}
	}
	return data, ecc, dataConf, eccConf
}
