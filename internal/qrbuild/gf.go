// Package qrbuild synthesizes valid QR Model 2 symbols for use as test
// fixtures. It is adapted from the teacher encoder this project's decode
// pipeline replaced: the same matrix construction, the same Reed-Solomon
// encoder, generalized to emit any of the 8 mask patterns instead of only
// mask 0, since the decode side must be exercised against all of them.
package qrbuild

// GF(256) arithmetic and Reed-Solomon encoding, ported from the original
// encoder's reedsolomon.go with names kept as-is.

var (
	expTable [256]int
	logTable [256]int
)

func init() {
	val := 1
	for i := 0; i < 255; i++ {
		expTable[i] = val
		logTable[val] = i
		val *= 2
		if val >= 256 {
			val ^= 0x11D
		}
	}
}

func gfMul(x, y int) int {
	if x == 0 || y == 0 {
		return 0
	}
	return expTable[(logTable[x]+logTable[y])%255]
}

func gfPolyMul(p, q []int) []int {
	res := make([]int, len(p)+len(q)-1)
	for i := 0; i < len(p); i++ {
		for j := 0; j < len(q); j++ {
			res[i+j] ^= gfMul(p[i], q[j])
		}
	}
	return res
}

// generateGeneratorPoly creates a generator polynomial for the given
// number of error correction codewords.
func generateGeneratorPoly(numECCodewords int) []int {
	gen := []int{1}
	for i := 0; i < numECCodewords; i++ {
		gen = gfPolyMul(gen, []int{1, expTable[i]})
	}
	return gen
}

// ComputeECC is calculateECCodewords exported for callers (tests in the
// qrscan package) that build a non-byte-mode data stream by hand and need
// the matching ECC bytes before calling PlaceSymbol.
func ComputeECC(data []int, numECCodewords int) []int {
	return calculateECCodewords(data, numECCodewords)
}

// calculateECCodewords generates error correction codewords for data via
// polynomial long division by the generator, keeping only the remainder.
func calculateECCodewords(data []int, numECCodewords int) []int {
	generator := generateGeneratorPoly(numECCodewords)

	remainder := make([]int, len(data)+numECCodewords)
	copy(remainder, data)

	for i := 0; i < len(data); i++ {
		coef := remainder[i]
		if coef != 0 {
			for j := 0; j < len(generator); j++ {
				remainder[i+j] ^= gfMul(generator[j], coef)
			}
		}
	}

	return remainder[len(data):]
}
