package qrscan

import "testing"

func TestGFPowWrapsAt255(t *testing.T) {
	t.Helper()
	if gfPow(2, 0) != 1 {
		t.Fatalf("alpha^0 = %d, want 1", gfPow(2, 0))
	}
	if gfPow(2, 255) != gfPow(2, 0) {
		t.Fatalf("alpha^255 = %d, want alpha^0 = %d", gfPow(2, 255), gfPow(2, 0))
	}
	if gfPow(2, 256) != gfPow(2, 1) {
		t.Fatalf("alpha^256 = %d, want alpha^1 = %d", gfPow(2, 256), gfPow(2, 1))
	}
}

func TestGFMulDivRoundTrip(t *testing.T) {
	for x := 1; x < 256; x++ {
		for _, y := range []int{1, 2, 3, 17, 200, 255} {
			product := gfMul(x, y)
			if got := gfDiv(product, y); got != x {
				t.Fatalf("gfDiv(gfMul(%d,%d), %d) = %d, want %d", x, y, y, got, x)
			}
		}
	}
}

func TestGFInv(t *testing.T) {
	for x := 1; x < 256; x++ {
		if gfMul(x, gfInv(x)) != 1 {
			t.Fatalf("x=%d: x * inv(x) != 1", x)
		}
	}
}

func TestGFDivByZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on division by zero")
		}
	}()
	gfDiv(5, 0)
}
