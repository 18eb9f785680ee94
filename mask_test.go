package qrscan

import "testing"

func TestMaskPredicateDistinctAcrossPatterns(t *testing.T) {
	// Each pattern should flip a different set of modules: every pair of
	// distinct patterns must disagree somewhere within a typical symbol's
	// data area.
	for a := 0; a < 8; a++ {
		for b := a + 1; b < 8; b++ {
			agree := 0
			total := 0
			for y := 0; y < 21; y++ {
				for x := 0; x < 21; x++ {
					total++
					if maskPredicate(a, x, y) == maskPredicate(b, x, y) {
						agree++
					}
				}
			}
			if agree == total {
				t.Fatalf("mask patterns %d and %d never disagree over a 21x21 grid", a, b)
			}
		}
	}
}

func TestUnmaskIsInvolution(t *testing.T) {
	bits := newBitMatrix(nil, 21, 21)
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			bits.Set(x, y, (x*7+y*3)%2 == 0)
		}
	}
	isFunction := func(x, y int) bool { return x < 9 && y < 9 }

	original := make([]bool, 21*21)
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			original[y*21+x] = bits.Get(x, y)
		}
	}

	unmask(bits, 3, isFunction)
	unmask(bits, 3, isFunction)

	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			if bits.Get(x, y) != original[y*21+x] {
				t.Fatalf("(%d,%d): applying the same mask twice did not restore the original bit", x, y)
			}
		}
	}
}

func TestUnmaskSkipsFunctionModules(t *testing.T) {
	bits := newBitMatrix(nil, 21, 21)
	bits.Set(0, 0, true)
	isFunction := func(x, y int) bool { return x < 9 && y < 9 }
	unmask(bits, 0, isFunction)
	if !bits.Get(0, 0) {
		t.Fatal("unmask modified a function module")
	}
}
