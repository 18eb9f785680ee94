package qrscan

import "testing"

func TestDimensionForVersionRoundTrip(t *testing.T) {
	for v := 1; v <= 40; v++ {
		n := dimensionForVersion(v)
		if got := versionForDimension(n); got != v {
			t.Fatalf("version %d -> dimension %d -> version %d", v, n, got)
		}
	}
}

func TestAlignmentPatternPositionsVersion1Empty(t *testing.T) {
	if got := alignmentPatternPositions(1); got != nil {
		t.Fatalf("version 1 should have no alignment patterns, got %v", got)
	}
}

func TestAlignmentPatternPositionsAscending(t *testing.T) {
	for v := 2; v <= 40; v++ {
		positions := alignmentPatternPositions(v)
		for i := 1; i < len(positions); i++ {
			if positions[i] <= positions[i-1] {
				t.Fatalf("version %d: positions not strictly ascending: %v", v, positions)
			}
		}
		last := positions[len(positions)-1]
		if want := dimensionForVersion(v) - 7; last != want {
			t.Fatalf("version %d: last alignment position = %d, want %d", v, last, want)
		}
	}
}

func TestLayoutForTotalsMatchRawDataModules(t *testing.T) {
	for v := 1; v <= 10; v++ {
		for _, ecl := range []ECLevel{ECLevelL, ECLevelM, ECLevelQ, ECLevelH} {
			layout := layoutFor(v, ecl)
			if layout.TotalCodewords != rawDataModules(v)/8 {
				t.Fatalf("version %d ecl %v: TotalCodewords = %d, want %d", v, ecl, layout.TotalCodewords, rawDataModules(v)/8)
			}
			if layout.TotalDataLen+layout.ECCPerBlock*layout.NumBlocks != layout.TotalCodewords {
				t.Fatalf("version %d ecl %v: data+ecc does not add up to total codewords", v, ecl)
			}
		}
	}
}
