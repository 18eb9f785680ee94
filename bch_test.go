package qrscan

import "testing"

func TestFormatInfoRoundTrip(t *testing.T) {
	for ecl := ECLevel(0); ecl <= 3; ecl++ {
		for mask := 0; mask < 8; mask++ {
			encoded := encodeFormatInfo(ecl, mask)
			got, ok := decodeFormatInfo(encoded)
			if !ok {
				t.Fatalf("ecl=%v mask=%d: decodeFormatInfo rejected a clean codeword", ecl, mask)
			}
			if got.ECLevel != ecl || got.MaskPattern != mask {
				t.Fatalf("ecl=%v mask=%d: got %+v", ecl, mask, got)
			}
		}
	}
}

func TestFormatInfoCorrectsUpToThreeBitErrors(t *testing.T) {
	encoded := encodeFormatInfo(ECLevelQ, 2)
	for _, corruption := range []int{0x1, 0x5, 0x15} { // 1, 2, 3 bit flips
		corrupted := encoded ^ corruption
		got, ok := decodeFormatInfo(corrupted)
		if !ok {
			t.Fatalf("corruption %#x: decodeFormatInfo rejected a correctable codeword", corruption)
		}
		if got.ECLevel != ECLevelQ || got.MaskPattern != 2 {
			t.Fatalf("corruption %#x: got %+v", corruption, got)
		}
	}
}

func TestVersionInfoRoundTrip(t *testing.T) {
	for v := 7; v <= 40; v++ {
		encoded := encodeVersionInfo(v)
		got, ok := decodeVersionInfo(encoded)
		if !ok || got != v {
			t.Fatalf("version %d: got %d, ok=%v", v, got, ok)
		}
	}
}

func TestVersionInfoCorrectsBitErrors(t *testing.T) {
	encoded := encodeVersionInfo(21)
	corrupted := encoded ^ 0x30001 // 3 bit flips, within BCH(18,6)'s correction radius
	got, ok := decodeVersionInfo(corrupted)
	if !ok || got != 21 {
		t.Fatalf("got %d, ok=%v, want 21", got, ok)
	}
}
