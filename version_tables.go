package qrscan

// ECLevel is the error-correction capability tier (spec.md GLOSSARY).
// Values match the teacher's encoder.go bit encoding (L=1, M=0, Q=3, H=2)
// so FormatInfo's EC field round-trips through the same BCH format data
// the teacher writes.
type ECLevel int

const (
	ECLevelM ECLevel = 0
	ECLevelL ECLevel = 1
	ECLevelH ECLevel = 2
	ECLevelQ ECLevel = 3
)

func (l ECLevel) String() string {
	switch l {
	case ECLevelL:
		return "L"
	case ECLevelM:
		return "M"
	case ECLevelQ:
		return "Q"
	case ECLevelH:
		return "H"
	default:
		return "?"
	}
}

// ecOrdinal maps an ECLevel to the row index nayuki's per-version tables
// use (Low, Medium, Quartile, High).
func ecOrdinal(l ECLevel) int {
	switch l {
	case ECLevelL:
		return 0
	case ECLevelM:
		return 1
	case ECLevelQ:
		return 2
	case ECLevelH:
		return 3
	default:
		return 1
	}
}

// dimensionForVersion returns n = 17 + 4*version (spec.md GLOSSARY).
func dimensionForVersion(version int) int { return 17 + 4*version }

// versionForDimension inverts dimensionForVersion, clamped to [1,40] per
// spec.md §4.4 step 1.
func versionForDimension(n int) int {
	v := (n - 17) / 4
	if v < 1 {
		v = 1
	}
	if v > 40 {
		v = 40
	}
	return v
}

// alignmentPatternPositions returns the ascending list of alignment-pattern
// center positions for a version, per spec.md §4.4 step 3 / §8's universal
// invariant. Grounded on nayuki's getAlignmentPatternPositions, which
// implements the same "ends at n-7, step evenly spaced" rule spec.md
// describes in prose.
func alignmentPatternPositions(version int) []int {
	if version == 1 {
		return nil
	}
	n := dimensionForVersion(version)
	numAlign := version/7 + 2
	var step int
	if version == 32 {
		step = 26
	} else {
		step = (version*4 + numAlign*2 + 1) / (numAlign*2 - 2) * 2
	}
	result := make([]int, numAlign)
	for i := 0; i < numAlign-1; i++ {
		result[i] = n - 7 - i*step
	}
	result[numAlign-1] = 6

	// Reverse into ascending order.
	out := make([]int, numAlign)
	for i, v := range result {
		out[numAlign-1-i] = v
	}
	return out
}

// eccCodewordsPerBlock[ecOrdinal][version] is the number of error
// correction codewords per block (teacher/nayuki table; version index 0
// unused).
var eccCodewordsPerBlock = [4][41]int{
	{-1, 7, 10, 15, 20, 26, 18, 20, 24, 30, 18, 20, 24, 26, 30, 22, 24, 28, 30, 28, 28, 28, 28, 30, 30, 26, 28, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
	{-1, 10, 16, 26, 18, 24, 16, 18, 22, 22, 26, 30, 22, 22, 24, 24, 28, 28, 26, 26, 26, 26, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28},
	{-1, 13, 22, 18, 26, 18, 24, 18, 22, 20, 24, 28, 26, 24, 20, 30, 24, 28, 28, 26, 30, 28, 30, 30, 30, 30, 28, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
	{-1, 17, 28, 22, 16, 22, 28, 26, 26, 24, 28, 24, 28, 22, 24, 24, 30, 28, 28, 26, 28, 30, 24, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
}

var numErrorCorrectionBlocks = [4][41]int{
	{-1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 4, 4, 4, 4, 4, 6, 6, 6, 6, 7, 8, 8, 9, 9, 10, 12, 12, 12, 13, 14, 15, 16, 17, 18, 19, 19, 20, 21, 22, 24, 25},
	{-1, 1, 1, 1, 2, 2, 4, 4, 4, 5, 5, 5, 8, 9, 9, 10, 10, 11, 13, 14, 16, 17, 17, 18, 20, 21, 23, 25, 26, 28, 29, 31, 33, 35, 37, 38, 40, 43, 45, 47, 49},
	{-1, 1, 1, 2, 2, 4, 4, 6, 6, 8, 8, 8, 10, 12, 16, 12, 17, 16, 18, 21, 20, 23, 23, 25, 27, 29, 34, 34, 35, 38, 40, 43, 45, 48, 51, 53, 56, 59, 62, 65, 68},
	{-1, 1, 1, 2, 4, 4, 4, 5, 6, 8, 8, 11, 11, 16, 16, 18, 16, 19, 21, 25, 25, 25, 34, 30, 32, 35, 37, 40, 42, 45, 48, 51, 54, 57, 60, 63, 66, 70, 74, 77, 81},
}

// rawDataModules returns the number of bits (data + ecc) available in the
// data area of a symbol of this version, before splitting into codewords
// (nayuki's getNumRawDataModules).
func rawDataModules(version int) int {
	v := version
	result := (16*v+128)*v + 64
	if v >= 2 {
		numAlign := v/7 + 2
		result -= (25*numAlign-10)*numAlign - 55
		if v >= 7 {
			result -= 36
		}
	}
	return result
}

// blockLayout describes how a version/ECLevel's codewords split into
// Reed-Solomon blocks (spec.md §4.6 step 5).
type blockLayout struct {
	NumBlocks      int
	ECCPerBlock    int
	ShortBlockLen  int // total length (data+ecc) of a "short" block
	NumShortBlocks int // blocks with one fewer data byte than the rest
	TotalDataLen   int
	TotalCodewords int
}

func layoutFor(version int, ecl ECLevel) blockLayout {
	row := ecOrdinal(ecl)
	numBlocks := numErrorCorrectionBlocks[row][version]
	eccPerBlock := eccCodewordsPerBlock[row][version]
	rawCodewords := rawDataModules(version) / 8
	shortBlockLen := rawCodewords / numBlocks
	numShortBlocks := numBlocks - (rawCodewords % numBlocks)

	return blockLayout{
		NumBlocks:      numBlocks,
		ECCPerBlock:    eccPerBlock,
		ShortBlockLen:  shortBlockLen,
		NumShortBlocks: numShortBlocks,
		TotalDataLen:   rawCodewords - eccPerBlock*numBlocks,
		TotalCodewords: rawCodewords,
	}
}

// charCountBits returns the bit width of the character-count indicator for
// a mode, which depends on the version band (spec.md §4.6 step 7).
func charCountBits(mode dataMode, version int) int {
	switch {
	case version <= 9:
		switch mode {
		case modeNumeric:
			return 10
		case modeAlphanumeric:
			return 9
		case modeByte:
			return 8
		case modeKanji:
			return 8
		}
	case version <= 26:
		switch mode {
		case modeNumeric:
			return 12
		case modeAlphanumeric:
			return 11
		case modeByte:
			return 16
		case modeKanji:
			return 10
		}
	default:
		switch mode {
		case modeNumeric:
			return 14
		case modeAlphanumeric:
			return 13
		case modeByte:
			return 16
		case modeKanji:
			return 12
		}
	}
	return 8
}
