package qrscan

// GF(256) arithmetic for QR's Reed-Solomon codec, primitive polynomial
// x^8 + x^4 + x^3 + x^2 + 1 (0x11D), exactly as the teacher's
// reedsolomon.go builds its log/exp tables — kept verbatim in spirit,
// generalized here to also serve the decode-side syndrome/Forney math
// spec.md §4.6 step 6 needs, which the teacher (an encoder-only repo)
// never required.
const gfPrimitive = 0x11D

var (
	gfExp [512]int // doubled so gfExp[log1+log2] never needs a modulo on the hot path
	gfLog [256]int
)

func init() {
	val := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = val
		gfLog[val] = i
		val <<= 1
		if val >= 256 {
			val ^= gfPrimitive
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

// gfPow reduces its integer exponent mod 255 internally (spec.md §8:
// "alpha^255 = 1 and alpha^256 = alpha; pow reduces mod 255").
func gfPow(base, exp int) int {
	if exp < 0 {
		exp = 255 - ((-exp) % 255)
	}
	exp %= 255
	if base == 0 {
		if exp == 0 {
			return 1
		}
		return 0
	}
	return gfExp[(gfLog[base]*exp)%255]
}

func gfMul(x, y int) int {
	if x == 0 || y == 0 {
		return 0
	}
	return gfExp[gfLog[x]+gfLog[y]]
}

func gfDiv(x, y int) int {
	if y == 0 {
		panic("qrscan: GF(256) division by zero")
	}
	if x == 0 {
		return 0
	}
	return gfExp[gfLog[x]+255-gfLog[y]]
}

func gfInv(x int) int {
	return gfExp[255-gfLog[x]]
}

func gfAdd(x, y int) int { return x ^ y }

// gfPolyMul multiplies two polynomials given in descending-power
// coefficient order (same convention as the teacher's gfPolyMul).
func gfPolyMul(p, q []int) []int {
	res := make([]int, len(p)+len(q)-1)
	for i := range p {
		for j := range q {
			res[i+j] ^= gfMul(p[i], q[j])
		}
	}
	return res
}

// gfPolyEval evaluates a polynomial (descending powers, constant term
// last) at x using Horner's method.
func gfPolyEval(p []int, x int) int {
	result := 0
	for _, c := range p {
		result = gfMul(result, x) ^ c
	}
	return result
}

// generatorPoly returns the Reed-Solomon generator polynomial of the given
// degree, product_{i=0}^{degree-1}(x - alpha^i), in descending-power order
// with leading coefficient 1 — the teacher's GenerateGeneratorPoly,
// unchanged. The decoder in rs_decode.go does not call it; the
// Reed-Solomon tests use it to build valid codewords.
func generatorPoly(degree int) []int {
	gen := []int{1}
	for i := 0; i < degree; i++ {
		gen = gfPolyMul(gen, []int{1, gfExp[i]})
	}
	return gen
}
