package qrscan

// integralImages holds the summed-area tables for pixel values and squared
// pixel values, computed once per grayscale plane and shared by the
// Sauvola and adaptive-mean binarizers (spec.md §4.1). Both tables are
// (width+1) x (height+1) so that a rectangle sum is four lookups with no
// bounds special-casing.
type integralImages struct {
	width, height int
	sum           []int64
	sumSq         []int64
}

func buildIntegralImages(lum *Luminance) *integralImages {
	w, h := lum.Width, lum.Height
	stride := w + 1
	ii := &integralImages{
		width:  w,
		height: h,
		sum:    make([]int64, stride*(h+1)),
		sumSq:  make([]int64, stride*(h+1)),
	}
	for y := 0; y < h; y++ {
		var rowSum, rowSumSq int64
		for x := 0; x < w; x++ {
			v := int64(lum.Pix[y*w+x])
			rowSum += v
			rowSumSq += v * v
			above := ii.sum[y*stride+(x+1)]
			aboveSq := ii.sumSq[y*stride+(x+1)]
			ii.sum[(y+1)*stride+(x+1)] = above + rowSum
			ii.sumSq[(y+1)*stride+(x+1)] = aboveSq + rowSumSq
		}
	}
	return ii
}

// rect returns (sum, sumSq, count) over [x0,x1) x [y0,y1), clamped
// to image bounds.
func (ii *integralImages) rect(x0, y0, x1, y1 int) (int64, int64, int) {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > ii.width {
		x1 = ii.width
	}
	if y1 > ii.height {
		y1 = ii.height
	}
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0
	}
	stride := ii.width + 1
	sum := ii.sum[y1*stride+x1] - ii.sum[y0*stride+x1] - ii.sum[y1*stride+x0] + ii.sum[y0*stride+x0]
	sumSq := ii.sumSq[y1*stride+x1] - ii.sumSq[y0*stride+x1] - ii.sumSq[y1*stride+x0] + ii.sumSq[y0*stride+x0]
	count := (x1 - x0) * (y1 - y0)
	return sum, sumSq, count
}
