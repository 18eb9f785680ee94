package qrscan

// The 8 data-mask predicates (spec.md §4.6 step 3), ported from nayuki's
// applyMask switch. Each reports whether module (x,y) should be flipped.
func maskPredicate(pattern int, x, y int) bool {
	switch pattern {
	case 0:
		return (x+y)%2 == 0
	case 1:
		return y%2 == 0
	case 2:
		return x%3 == 0
	case 3:
		return (x+y)%3 == 0
	case 4:
		return (x/3+y/2)%2 == 0
	case 5:
		return x*y%2+x*y%3 == 0
	case 6:
		return (x*y%2+x*y%3)%2 == 0
	case 7:
		return ((x+y)%2+x*y%3)%2 == 0
	default:
		return false
	}
}

// unmask XORs every data-area module with the mask predicate for the given
// pattern, skipping modules the function-pattern mask marks as reserved
// (spec.md §4.6 step 3: "unmasking must not touch finder/alignment/timing/
// format/version modules").
func unmask(bits *BitMatrix, pattern int, isFunctionModule func(x, y int) bool) {
	for y := 0; y < bits.Height; y++ {
		for x := 0; x < bits.Width; x++ {
			if isFunctionModule(x, y) {
				continue
			}
			if maskPredicate(pattern, x, y) {
				bits.Set(x, y, !bits.Get(x, y))
			}
		}
	}
}
