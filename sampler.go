package qrscan

import "math"

// ModuleGrid is a sampled symbol: one bit and one confidence score per
// module (spec.md §4.5).
type ModuleGrid struct {
	Dimension   int
	Bits        *BitMatrix
	Confidence  []float64 // len == Dimension*Dimension, row-major
}

func (g *ModuleGrid) confidenceAt(x, y int) float64 {
	return g.Confidence[y*g.Dimension+x]
}

// sampleGrid walks every module center through the transform, bilinearly
// interpolates the source luminance around it, and thresholds it against
// the fixed midpoint 128; no per-row or block-local threshold is derived
// from the sampled grid (spec.md §4.5 steps 1-3). lowConfidence cells
// (spec.md §4.5 step 4) are later converted to Reed-Solomon erasures.
func sampleGrid(lum *Luminance, transform PerspectiveTransform, dimension int, scratch *Scratch) (*ModuleGrid, error) {
	if dimension <= 0 {
		return nil, ErrZeroDimension
	}
	bits := newBitMatrix(scratch, dimension, dimension)
	confidence := make([]float64, dimension*dimension)

	for my := 0; my < dimension; my++ {
		for mx := 0; mx < dimension; mx++ {
			px, py := transform.transformPoint(float64(mx)+0.5, float64(my)+0.5)
			if px < 0 || py < 0 || px >= float64(lum.Width) || py >= float64(lum.Height) {
				confidence[my*dimension+mx] = 0
				continue
			}
			value, conf := sampleBilinearWithConfidence(lum, px, py)
			bits.Set(mx, my, value < 128)
			confidence[my*dimension+mx] = conf
		}
	}

	return &ModuleGrid{Dimension: dimension, Bits: bits, Confidence: confidence}, nil
}

// sampleBilinearWithConfidence interpolates luminance at (x,y) and derives
// a confidence score from how close the interpolated value is to either
// extreme (spec.md §4.5 step 3: "confidence low when the sampled value
// sits near the black/white midpoint").
func sampleBilinearWithConfidence(lum *Luminance, x, y float64) (float64, float64) {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	v00 := float64(lum.At(x0, y0))
	v10 := float64(lum.At(x0+1, y0))
	v01 := float64(lum.At(x0, y0+1))
	v11 := float64(lum.At(x0+1, y0+1))

	top := v00*(1-fx) + v10*fx
	bot := v01*(1-fx) + v11*fx
	value := top*(1-fy) + bot*fy

	confidence := math.Abs(value-128) / 128
	return value, confidence
}
