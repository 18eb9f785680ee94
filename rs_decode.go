package qrscan

// Reed-Solomon decode over GF(256), spec.md §4.6 step 6: syndromes in the
// descending convention the spec prescribes, Berlekamp-style key equation
// solved via the extended Euclidean algorithm (Sugiyama's method, the
// standard generalization that folds erasures into the same recurrence),
// Chien search for error locations, Forney's formula for magnitudes.
//
// Polynomials in this file are ascending-power: p[i] is the coefficient of
// x^i. (gf256.go's helpers are descending-power, used by the generator
// polynomial and by the syndrome evaluation of the received codeword; the
// two conventions don't mix within a single function.)

// decodeErr is the shared error type for every per-symbol decode failure
// this package returns (reed-solomon, format/version, payload parsing);
// reason already carries its own subsystem prefix (e.g. "payload: ...").
type decodeErr struct{ reason string }

func (e *decodeErr) Error() string { return "qrscan: " + e.reason }

// rsDecodeBlock corrects a single interleaved block, working on a copy
// (codeword itself is left unchanged). codeword is
// ordered [data..., ecc...] (descending powers when read as a polynomial:
// codeword[0] is the highest-degree coefficient). erasurePositions are
// indices into codeword flagged low-confidence by the sampler (spec.md
// §4.6 step 6: "convert low-confidence cells to erasures").
//
// Returns the corrected data portion (len(codeword)-eccLen bytes), or an
// error if the block is uncorrectable — 2*errors+erasures > eccLen, or the
// post-correction syndromes are non-zero (a would-be silent miscorrection,
// spec.md §8).
func rsDecodeBlock(codeword []int, eccLen int, erasurePositions []int) ([]int, error) {
	n := len(codeword)
	r := eccLen
	if r == 0 {
		return append([]int{}, codeword...), nil
	}

	synd := rsSyndromes(codeword, r)
	if allZero(synd) {
		if len(erasurePositions) == 0 {
			return append([]int{}, codeword[:n-r]...), nil
		}
		// Erasures with zero syndrome still decode cleanly: the flagged
		// cells happened to sample correctly.
		return append([]int{}, codeword[:n-r]...), nil
	}

	e := len(erasurePositions)
	if e > r {
		return nil, &decodeErr{"reed-solomon: more erasures than ecc capacity"}
	}

	gamma := erasureLocator(codeword, erasurePositions)

	tpoly := ascTruncate(ascMul(gamma, synd), r)

	sigma, omega := solveKeyEquation(r, e, tpoly)

	lambda := ascMul(gamma, sigma)

	maxErrors := (r - e) / 2
	if ascDegree(sigma) > maxErrors {
		return nil, &decodeErr{"reed-solomon: too many errors for ecc capacity"}
	}

	errorPositions, err := chienSearch(lambda, n)
	if err != nil {
		return nil, err
	}
	if len(errorPositions) != ascDegree(lambda) {
		return nil, &decodeErr{"reed-solomon: chien search found wrong number of roots"}
	}

	lambdaDeriv := formalDerivative(lambda)

	corrected := append([]int{}, codeword...)
	for _, pos := range errorPositions {
		x := gfPow(2, n-1-pos)
		xInv := gfInv(x)
		numerator := gfMul(x, ascEval(omega, xInv))
		denominator := ascEval(lambdaDeriv, xInv)
		if denominator == 0 {
			return nil, &decodeErr{"reed-solomon: forney: zero derivative"}
		}
		magnitude := gfDiv(numerator, denominator)
		corrected[pos] ^= magnitude
	}

	if finalSynd := rsSyndromes(corrected, r); !allZero(finalSynd) {
		return nil, &decodeErr{"reed-solomon: correction failed syndrome check"}
	}

	return corrected[:n-r], nil
}

// rsSyndromes evaluates the received codeword polynomial at alpha^0..
// alpha^(r-1), the 2t syndromes of spec.md §4.6 step 6.
func rsSyndromes(codeword []int, r int) []int {
	synd := make([]int, r)
	for i := 0; i < r; i++ {
		synd[i] = gfPolyEval(codeword, gfPow(2, i))
	}
	return synd
}

func allZero(p []int) bool {
	for _, v := range p {
		if v != 0 {
			return false
		}
	}
	return true
}

// erasureLocator builds Gamma(x) = prod (1 - X_l x) over the erasure
// positions, ascending-power, where X_l = alpha^(n-1-pos) is the locator
// value for codeword index pos (spec.md §4.6 step 6).
func erasureLocator(codeword []int, positions []int) []int {
	n := len(codeword)
	gamma := []int{1}
	for _, pos := range positions {
		x := gfPow(2, n-1-pos)
		gamma = ascMul(gamma, []int{1, x})
	}
	return gamma
}

// ascMul multiplies two ascending-power polynomials.
func ascMul(a, b []int) []int {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	res := make([]int, len(a)+len(b)-1)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			res[i+j] ^= gfMul(av, bv)
		}
	}
	return res
}

// ascAdd adds (XORs) two ascending-power polynomials.
func ascAdd(a, b []int) []int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	res := make([]int, n)
	copy(res, a)
	for i, v := range b {
		res[i] ^= v
	}
	return res
}

// ascTruncate returns the low n coefficients of p (mod x^n), zero-padded.
func ascTruncate(p []int, n int) []int {
	out := make([]int, n)
	m := len(p)
	if m > n {
		m = n
	}
	copy(out, p[:m])
	return out
}

// ascDegree returns the degree of an ascending-power polynomial, or -1 for
// the zero polynomial.
func ascDegree(p []int) int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return -1
}

// ascEval evaluates an ascending-power polynomial at x via Horner's method.
func ascEval(p []int, x int) int {
	result := 0
	for i := len(p) - 1; i >= 0; i-- {
		result = gfMul(result, x) ^ p[i]
	}
	return result
}

// ascDivMod divides ascending-power polynomial a by b, returning quotient
// and remainder.
func ascDivMod(a, b []int) (quot, rem []int) {
	db := ascDegree(b)
	if db < 0 {
		panic("qrscan: reed-solomon: division by zero polynomial")
	}
	rem = append([]int{}, a...)
	da := ascDegree(rem)
	if da < db {
		return []int{0}, rem
	}
	quot = make([]int, da-db+1)
	invLead := gfInv(b[db])
	for {
		curDeg := ascDegree(rem)
		if curDeg < db {
			break
		}
		coeff := gfMul(rem[curDeg], invLead)
		shift := curDeg - db
		quot[shift] = coeff
		for i := 0; i <= db; i++ {
			rem[shift+i] ^= gfMul(coeff, b[i])
		}
	}
	return quot, rem
}

// solveKeyEquation runs the extended Euclidean algorithm on (x^r, T(x))
// and stops once the remainder's degree drops below (r+e)/2, returning the
// Bezout coefficient sigma (the error-only locator) and the matching
// remainder omega (the error evaluator), per Sugiyama's errors-and-erasures
// decoding method (spec.md §4.6 step 6: "Berlekamp-Massey with a scalar
// discrepancy tracker" — the Euclidean form of the same key equation).
func solveKeyEquation(r, e int, t []int) (sigma, omega []int) {
	a := make([]int, r+1)
	a[r] = 1
	b := ascTruncate(t, r)

	r0, r1 := a, b
	t0, t1 := []int{0}, []int{1}

	stopDeg := (r + e) / 2
	for ascDegree(r1) >= stopDeg {
		q, rem := ascDivMod(r0, r1)
		newT := ascAdd(t0, ascMul(q, t1))
		r0, r1 = r1, rem
		t0, t1 = t1, newT
	}

	// Normalize so sigma(0) == 1.
	sigma = t1
	omega = r1
	if len(sigma) > 0 && sigma[0] != 0 && sigma[0] != 1 {
		inv := gfInv(sigma[0])
		for i := range sigma {
			sigma[i] = gfMul(sigma[i], inv)
		}
		for i := range omega {
			omega[i] = gfMul(omega[i], inv)
		}
	}
	return sigma, omega
}

// chienSearch finds the codeword positions where lambda's reciprocal root
// condition holds: lambda(alpha^-(n-1-pos)) == 0 (spec.md §4.6 step 6).
func chienSearch(lambda []int, n int) ([]int, error) {
	var positions []int
	for pos := 0; pos < n; pos++ {
		x := gfPow(2, n-1-pos)
		if ascEval(lambda, gfInv(x)) == 0 {
			positions = append(positions, pos)
		}
	}
	if len(positions) == 0 && ascDegree(lambda) > 0 {
		return nil, &decodeErr{"reed-solomon: chien search found no roots for a non-trivial locator"}
	}
	return positions, nil
}

// formalDerivative returns Lambda'(x) over GF(2^8): the derivative keeps
// only odd-degree terms, each shifted down by one power (even-degree terms
// vanish because their coefficient multiple, the degree itself, is 0 mod
// 2).
func formalDerivative(p []int) []int {
	if len(p) <= 1 {
		return []int{0}
	}
	out := make([]int, len(p)-1)
	for i := 1; i < len(p); i++ {
		if i%2 == 1 {
			out[i-1] = p[i]
		}
	}
	return out
}
