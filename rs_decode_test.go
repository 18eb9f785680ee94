package qrscan

import "testing"

// buildCodeword encodes data with eccLen ECC bytes via the same GF(256)
// generator-polynomial machinery rs_decode.go's decoder assumes.
func buildCodeword(data []int, eccLen int) []int {
	gen := generatorPoly(eccLen)
	msg := make([]int, len(data)+eccLen)
	copy(msg, data)
	remainder := append([]int{}, msg...)
	for i := 0; i < len(data); i++ {
		coef := remainder[i]
		if coef == 0 {
			continue
		}
		for j, g := range gen {
			remainder[i+j] ^= gfMul(g, coef)
		}
	}
	codeword := append([]int{}, data...)
	codeword = append(codeword, remainder[len(data):]...)
	return codeword
}

func TestRSDecodeCleanCodeword(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	eccLen := 8
	codeword := buildCodeword(data, eccLen)

	out, err := rsDecodeBlock(codeword, eccLen, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(data) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(data))
	}
	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], data[i])
		}
	}
}

func TestRSDecodeCorrectsErrorsWithinCapacity(t *testing.T) {
	data := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	eccLen := 8 // corrects up to 4 errors
	codeword := buildCodeword(data, eccLen)

	corrupted := append([]int{}, codeword...)
	corrupted[0] ^= 0xFF
	corrupted[3] ^= 0x11
	corrupted[15] ^= 0x01 // inside the ecc region

	out, err := rsDecodeBlock(corrupted, eccLen, nil)
	if err != nil {
		t.Fatalf("unexpected error correcting within capacity: %v", err)
	}
	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], data[i])
		}
	}
}

func TestRSDecodeFailsBeyondCapacity(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	eccLen := 8 // corrects up to 4 errors
	codeword := buildCodeword(data, eccLen)

	corrupted := append([]int{}, codeword...)
	for i := 0; i < 6; i++ {
		corrupted[i] ^= 0xFF
	}

	_, err := rsDecodeBlock(corrupted, eccLen, nil)
	if err == nil {
		t.Fatal("expected an error for corruption beyond correction capacity, got nil")
	}
}

func TestRSDecodeWithErasuresExtendsCapacity(t *testing.T) {
	data := []int{5, 10, 15, 20, 25, 30, 35, 40, 42, 44}
	eccLen := 8
	codeword := buildCodeword(data, eccLen)

	corrupted := append([]int{}, codeword...)
	erasurePositions := []int{1, 4, 9, 12, 14}
	for _, pos := range erasurePositions {
		corrupted[pos] ^= 0xAA
	}

	out, err := rsDecodeBlock(corrupted, eccLen, erasurePositions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], data[i])
		}
	}
}
