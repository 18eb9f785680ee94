package qrscan

import "math"

// BinarizerKind enumerates the strategies in the binarizer bank
// (spec.md §4.1). The strategy controller is a loop over these enum
// values rather than a polymorphic dispatch (spec.md §9).
type BinarizerKind int

const (
	BinarizerOtsu BinarizerKind = iota
	BinarizerSauvola
	BinarizerAdaptiveMean
)

func (k BinarizerKind) String() string {
	switch k {
	case BinarizerOtsu:
		return "otsu"
	case BinarizerSauvola:
		return "sauvola"
	case BinarizerAdaptiveMean:
		return "adaptive-mean"
	default:
		return "unknown"
	}
}

const (
	sauvolaK = 0.2
	sauvolaR = 128.0
)

// binarize dispatches to the requested strategy. estimatedModuleSize is
// used by Sauvola to re-derive its window side (spec.md §4.1:
// "w = max(31, 7*module_size)"); pass 0 when no estimate is available yet,
// which falls back to the default window of 31.
func binarize(lum *Luminance, kind BinarizerKind, estimatedModuleSize float64, scratch *Scratch) *BitMatrix {
	switch kind {
	case BinarizerSauvola:
		return binarizeSauvola(lum, estimatedModuleSize, scratch)
	case BinarizerAdaptiveMean:
		return binarizeAdaptiveMean(lum, scratch)
	default:
		return binarizeOtsu(lum, scratch)
	}
}

// binarizeOtsu computes a single global threshold that maximizes
// between-class variance over a 256-bin histogram (spec.md §4.1).
func binarizeOtsu(lum *Luminance, scratch *Scratch) *BitMatrix {
	threshold := otsuThreshold(lum, 0)
	return applyGlobalThreshold(lum, threshold, scratch)
}

// otsuThresholdVariants returns Otsu's threshold and the two fallback
// thresholds the strategy controller may try per spec.md §4.1: the lower
// one is 10% below the base value, the upper one is the base raised by 10%
// of its distance to 255.
func otsuThresholdVariants(lum *Luminance) [3]int {
	base := otsuThreshold(lum, 0)
	lo := base - base/10
	hi := base + (255-base)/10
	if lo < 0 {
		lo = 0
	}
	if hi > 255 {
		hi = 255
	}
	return [3]int{base, lo, hi}
}

func otsuThreshold(lum *Luminance, _ int) int {
	var hist [256]int
	for _, v := range lum.Pix {
		hist[v]++
	}
	total := len(lum.Pix)
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var sumB, wB float64
	var best float64 = -1
	bestT := 127
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			bestT = t
		}
	}
	// bestT separates the histogram into [0,bestT] and [bestT+1,255]; shift
	// by one so that classification ("value < threshold") puts the lower
	// class on the dark side.
	threshold := bestT + 1
	if threshold > 255 {
		threshold = 255
	}
	return threshold
}

func applyGlobalThreshold(lum *Luminance, threshold int, scratch *Scratch) *BitMatrix {
	bm := newBitMatrix(scratch, lum.Width, lum.Height)
	for y := 0; y < lum.Height; y++ {
		for x := 0; x < lum.Width; x++ {
			if int(lum.At(x, y)) < threshold {
				bm.Set(x, y, true)
			}
		}
	}
	return bm
}

// binarizeSauvola applies the local-contrast threshold from spec.md §4.1
// using a pair of integral images computed once.
func binarizeSauvola(lum *Luminance, estimatedModuleSize float64, scratch *Scratch) *BitMatrix {
	window := 31
	if estimatedModuleSize > 0 {
		w := int(7 * estimatedModuleSize)
		if w > window {
			window = w
		}
	}
	half := window / 2
	ii := buildIntegralImages(lum)
	bm := newBitMatrix(scratch, lum.Width, lum.Height)

	for y := 0; y < lum.Height; y++ {
		for x := 0; x < lum.Width; x++ {
			sum, sumSq, n := ii.rect(x-half, y-half, x+half+1, y+half+1)
			if n == 0 {
				continue
			}
			mean := float64(sum) / float64(n)
			variance := float64(sumSq)/float64(n) - mean*mean
			if variance < 0 {
				variance = 0
			}
			stddev := math.Sqrt(variance)
			var threshold float64
			if stddev == 0 {
				// Flat window: Sauvola's formula collapses to 0 when the
				// local mean is 0, misclassifying uniformly dark regions.
				// Fall back to a fixed midpoint split.
				threshold = 128
			} else {
				threshold = mean * (1 + sauvolaK*(stddev/sauvolaR-1))
			}
			if float64(lum.At(x, y)) < threshold {
				bm.Set(x, y, true)
			}
		}
	}
	return bm
}

// binarizeAdaptiveMean thresholds each pixel against the local mean over
// the same integral-image machinery as Sauvola (spec.md §4.1).
func binarizeAdaptiveMean(lum *Luminance, scratch *Scratch) *BitMatrix {
	const window = 31
	half := window / 2
	ii := buildIntegralImages(lum)
	bm := newBitMatrix(scratch, lum.Width, lum.Height)

	for y := 0; y < lum.Height; y++ {
		for x := 0; x < lum.Width; x++ {
			sum, sumSq, n := ii.rect(x-half, y-half, x+half+1, y+half+1)
			if n == 0 {
				continue
			}
			mean := float64(sum) / float64(n)
			variance := float64(sumSq)/float64(n) - mean*mean
			v := float64(lum.At(x, y))
			if variance <= 0 {
				// Flat window: fall back to a fixed midpoint so a uniformly
				// dark or light neighborhood still classifies correctly.
				if v < 128 {
					bm.Set(x, y, true)
				}
				continue
			}
			if v < mean {
				bm.Set(x, y, true)
			}
		}
	}
	return bm
}

// isBinaryAlready reports whether lum only contains values 0 and 255 (the
// input of the binarizer-idempotence invariant in spec.md §8). The detect
// pipeline does not call it.
func isBinaryAlready(lum *Luminance) bool {
	for _, v := range lum.Pix {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}
