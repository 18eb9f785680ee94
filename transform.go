package qrscan

import "math"

// PerspectiveTransform maps unit-square ("module grid") coordinates to
// image-pixel coordinates via a 3x3 projective matrix. Ported from
// zxinggo's PerspectiveTransform (detector.go), the classic Heckbert
// quad-to-quad construction: a square-to-quadrilateral transform and its
// adjoint (quadrilateral-to-square) compose into any quad-to-quad mapping.
type PerspectiveTransform struct {
	a11, a21, a31 float64
	a12, a22, a32 float64
	a13, a23, a33 float64
}

func squareToQuadrilateral(x0, y0, x1, y1, x2, y2, x3, y3 float64) PerspectiveTransform {
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		return PerspectiveTransform{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a13: 0, a23: 0, a33: 1,
		}
	}
	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2
	denominator := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / denominator
	a23 := (dx1*dy3 - dx3*dy1) / denominator
	return PerspectiveTransform{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}
}

// buildAdjoint returns the classical adjoint of the 3x3 matrix, which for
// a homogeneous transform serves as its (scale-ambiguous) inverse.
func (t PerspectiveTransform) buildAdjoint() PerspectiveTransform {
	return PerspectiveTransform{
		a11: t.a22*t.a33 - t.a23*t.a32,
		a21: t.a23*t.a31 - t.a21*t.a33,
		a31: t.a21*t.a32 - t.a22*t.a31,
		a12: t.a13*t.a32 - t.a12*t.a33,
		a22: t.a11*t.a33 - t.a13*t.a31,
		a32: t.a12*t.a31 - t.a11*t.a32,
		a13: t.a12*t.a23 - t.a13*t.a22,
		a23: t.a13*t.a21 - t.a11*t.a23,
		a33: t.a11*t.a22 - t.a12*t.a21,
	}
}

func quadrilateralToSquare(x0, y0, x1, y1, x2, y2, x3, y3 float64) PerspectiveTransform {
	return squareToQuadrilateral(x0, y0, x1, y1, x2, y2, x3, y3).buildAdjoint()
}

func (t PerspectiveTransform) times(o PerspectiveTransform) PerspectiveTransform {
	return PerspectiveTransform{
		a11: t.a11*o.a11 + t.a21*o.a12 + t.a31*o.a13,
		a21: t.a11*o.a21 + t.a21*o.a22 + t.a31*o.a23,
		a31: t.a11*o.a31 + t.a21*o.a32 + t.a31*o.a33,
		a12: t.a12*o.a11 + t.a22*o.a12 + t.a32*o.a13,
		a22: t.a12*o.a21 + t.a22*o.a22 + t.a32*o.a23,
		a32: t.a12*o.a31 + t.a22*o.a32 + t.a32*o.a33,
		a13: t.a13*o.a11 + t.a23*o.a12 + t.a33*o.a13,
		a23: t.a13*o.a21 + t.a23*o.a22 + t.a33*o.a23,
		a33: t.a13*o.a31 + t.a23*o.a32 + t.a33*o.a33,
	}
}

// transformPoint maps a single (x,y) through the projective matrix.
func (t PerspectiveTransform) transformPoint(x, y float64) (float64, float64) {
	denom := t.a13*x + t.a23*y + t.a33
	return (t.a11*x + t.a21*y + t.a31) / denom, (t.a12*x + t.a22*y + t.a32) / denom
}

// quadrilateralToQuadrilateral builds the transform mapping source quad
// (x0,y0)...(x3,y3) to destination quad (x0p,y0p)...(x3p,y3p), corners
// given in TL,TR,BR,BL order.
func quadrilateralToQuadrilateral(
	x0, y0, x1, y1, x2, y2, x3, y3 float64,
	x0p, y0p, x1p, y1p, x2p, y2p, x3p, y3p float64,
) PerspectiveTransform {
	qToS := quadrilateralToSquare(x0, y0, x1, y1, x2, y2, x3, y3)
	sToQ := squareToQuadrilateral(x0p, y0p, x1p, y1p, x2p, y2p, x3p, y3p)
	return sToQ.times(qToS)
}

// buildTransform constructs the module-grid-to-image-pixel transform for a
// located symbol (spec.md §4.4 step 1). bottomRight is the image-space
// estimate of the 4th corner: either a confirmed alignment-pattern center
// (step 3) or the parallelogram completion topRight-topLeft+bottomLeft
// (step 2's fallback for small symbols without an alignment pattern).
func buildTransform(topLeft, topRight, bottomLeft FinderCandidate, bottomRight point, dimension int, hasAlignment bool) PerspectiveTransform {
	dimMinusThree := float64(dimension) - 3.5
	var sourceBRX, sourceBRY float64
	if hasAlignment {
		sourceBRX = dimMinusThree - 3
		sourceBRY = sourceBRX
	} else {
		sourceBRX = dimMinusThree
		sourceBRY = dimMinusThree
	}
	return quadrilateralToQuadrilateral(
		3.5, 3.5,
		dimMinusThree, 3.5,
		sourceBRX, sourceBRY,
		3.5, dimMinusThree,
		topLeft.X, topLeft.Y,
		topRight.X, topRight.Y,
		bottomRight.X, bottomRight.Y,
		bottomLeft.X, bottomLeft.Y,
	)
}

type point struct{ X, Y float64 }

// parallelogramBottomRight completes the 4th corner of the finder-pattern
// parallelogram when no alignment pattern confirms it (spec.md §4.4
// step 2).
func parallelogramBottomRight(topLeft, topRight, bottomLeft FinderCandidate) point {
	return point{
		X: topRight.X - topLeft.X + bottomLeft.X,
		Y: topRight.Y - topLeft.Y + bottomLeft.Y,
	}
}

// validateTimingPattern samples along the timing row/column (module row 6)
// and checks it alternates dark/light as expected (spec.md §4.4 step 4).
// Returns the fraction of modules that matched the expected alternation.
// The detect pipeline does not call it, so no transform is rejected on its
// timing pattern.
func validateTimingPattern(sample func(moduleX, moduleY int) int, dimension int) float64 {
	total := dimension - 16 // exclude the finder+separator border on both ends
	if total <= 0 {
		return 0
	}
	matches := 0
	for i := 0; i < total; i++ {
		moduleX := 8 + i
		expected := 1 - (i % 2) // alternating, starting dark (module value 1)
		if sample(moduleX, 6) == expected {
			matches++
		}
	}
	rowScore := float64(matches) / float64(total)

	matches = 0
	for i := 0; i < total; i++ {
		moduleY := 8 + i
		expected := 1 - (i % 2)
		if sample(6, moduleY) == expected {
			matches++
		}
	}
	colScore := float64(matches) / float64(total)

	return math.Min(rowScore, colScore)
}
