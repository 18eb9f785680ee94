package qrscan

import (
	"math"
	"sort"
)

// Orientation records which scan direction produced a FinderCandidate
// (spec.md §3).
type Orientation int

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

// FinderCandidate is a provisional finder-pattern center with an estimated
// module size (spec.md §3). Ephemeral: built by the finder, consumed by
// the grouper.
type FinderCandidate struct {
	X, Y        float64
	ModuleSize  float64
	Score       int // confirmation count; higher means more scan lines agreed
	Orientation Orientation
}

const (
	pyramidThreshold = 1600 // spec.md §4.2: longer dimension above which pyramid acceleration kicks in
	fastRejectStride = 4
	fastRejectMinTransitions = 2
)

// findFinderCandidates runs the row scan, column scan, and (for large
// images) pyramid acceleration described in spec.md §4.2, merging
// duplicate detections from every pass.
func findFinderCandidates(bits *BitMatrix, tryHarder bool) []FinderCandidate {
	longest := bits.Width
	if bits.Height > longest {
		longest = bits.Height
	}

	var candidates []FinderCandidate
	if longest > pyramidThreshold && !tryHarder {
		candidates = findViaPyramid(bits)
	} else {
		candidates = scanRows(bits)
		candidates = mergeCandidates(candidates, scanColumns(bits))
	}
	return candidates
}

// scanRows implements spec.md §4.2's row-scan contract: walk each
// (optionally strided) row maintaining the last five monochrome run
// lengths, fast-rejecting rows with too few transitions, and at every
// 1:1:3:1:1 match emitting a candidate refined by a vertical cross-check.
func scanRows(bits *BitMatrix) []FinderCandidate {
	var out []FinderCandidate
	for y := 0; y < bits.Height; y++ {
		if bits.transitionsInRow(y, fastRejectStride) < fastRejectMinTransitions {
			continue
		}
		out = append(out, scanLine(bits, y, true)...)
	}
	return out
}

// scanColumns is scanRows transposed, catching symbols rotated near 90°
// (spec.md §4.2).
func scanColumns(bits *BitMatrix) []FinderCandidate {
	var out []FinderCandidate
	for x := 0; x < bits.Width; x++ {
		out = append(out, scanLine(bits, x, false)...)
	}
	return out
}

// runState holds the five run lengths (dark, light, dark, light, dark) of a
// candidate 1:1:3:1:1 pattern under construction.
type runState struct {
	counts [5]int
}

func (r *runState) shift() {
	r.counts[0] = r.counts[2]
	r.counts[1] = r.counts[3]
	r.counts[2] = r.counts[4]
	r.counts[3] = 1
	r.counts[4] = 0
}

// matchesPattern checks the 1:1:3:1:1 ratio within the tolerance spec.md
// §4.2 specifies: outer runs within +-50% of the module size, center run
// within +-25% of 3x the module size.
func (r *runState) matchesPattern() (moduleSize float64, ok bool) {
	total := 0
	for _, c := range r.counts {
		if c == 0 {
			return 0, false
		}
		total += c
	}
	moduleSize = float64(total) / 7.0
	outerTol := moduleSize * 0.5
	centerTol := moduleSize * 3 * 0.25
	if math.Abs(moduleSize-float64(r.counts[0])) > outerTol {
		return 0, false
	}
	if math.Abs(moduleSize-float64(r.counts[1])) > outerTol {
		return 0, false
	}
	if math.Abs(3*moduleSize-float64(r.counts[2])) > centerTol {
		return 0, false
	}
	if math.Abs(moduleSize-float64(r.counts[3])) > outerTol {
		return 0, false
	}
	if math.Abs(moduleSize-float64(r.counts[4])) > outerTol {
		return 0, false
	}
	return moduleSize, true
}

// scanLine walks a single row (horizontal=true) or column (horizontal=false)
// at the given fixed coordinate and returns every confirmed candidate.
func scanLine(bits *BitMatrix, fixed int, horizontal bool) []FinderCandidate {
	get := func(i int) bool {
		if horizontal {
			return bits.Get(i, fixed)
		}
		return bits.Get(fixed, i)
	}
	length := bits.Width
	if !horizontal {
		length = bits.Height
	}

	var out []FinderCandidate
	var rs runState
	state := 0
	rs.counts[0] = 0

	for i := 0; i < length; i++ {
		dark := get(i)
		if (state%2 == 0) == dark {
			// Continuing the current run color.
			rs.counts[state]++
			continue
		}
		// Transition.
		if state < 4 {
			state++
			rs.counts[state] = 1
			continue
		}
		// state == 4 and the run just ended: evaluate.
		if moduleSize, ok := rs.matchesPattern(); ok {
			center := float64(i) - float64(rs.counts[4]) - float64(rs.counts[3]) - float64(rs.counts[2])/2.0
			if cand, confirmed := crossCheck(bits, fixed, center, moduleSize, horizontal); confirmed {
				out = append(out, cand)
			}
		}
		rs.shift()
		state = 3
	}
	if moduleSize, ok := rs.matchesPattern(); ok {
		center := float64(length) - float64(rs.counts[4]) - float64(rs.counts[3]) - float64(rs.counts[2])/2.0
		if cand, confirmed := crossCheck(bits, fixed, center, moduleSize, horizontal); confirmed {
			out = append(out, cand)
		}
	}
	return out
}

// crossCheck walks perpendicular to the scan direction through the
// candidate center looking for the same 1:1:3:1:1 pattern (spec.md §4.2).
// The accepted candidate's module size is the mean of both directions;
// candidates whose perpendicular module size disagrees by more than 2x are
// rejected.
func crossCheck(bits *BitMatrix, fixed int, center float64, lineModuleSize float64, horizontal bool) (FinderCandidate, bool) {
	var x, y int
	if horizontal {
		x, y = int(center+0.5), fixed
	} else {
		x, y = fixed, int(center+0.5)
	}

	perpLength := bits.Height
	if !horizontal {
		perpLength = bits.Width
	}
	get := func(i int) bool {
		if horizontal {
			return bits.Get(x, i)
		}
		return bits.Get(i, y)
	}
	fixedCoord := y
	if !horizontal {
		fixedCoord = x
	}

	moduleSize, perpCenter, ok := crossCheckLine(get, perpLength, fixedCoord)
	if !ok {
		return FinderCandidate{}, false
	}
	if moduleSize > lineModuleSize*2 || lineModuleSize > moduleSize*2 {
		return FinderCandidate{}, false
	}

	avg := (lineModuleSize + moduleSize) / 2.0
	var cx, cy float64
	if horizontal {
		cx, cy = center, perpCenter
	} else {
		cx, cy = perpCenter, center
	}
	orientation := OrientationHorizontal
	if !horizontal {
		orientation = OrientationVertical
	}
	return FinderCandidate{X: cx, Y: cy, ModuleSize: avg, Score: 1, Orientation: orientation}, true
}

// crossCheckLine scans outward from `around` in both directions along a
// single dimension looking for the 1:1:3:1:1 pattern centered there.
func crossCheckLine(get func(int) bool, length, around int) (moduleSize, center float64, ok bool) {
	i := around
	var counts [5]int
	// Walk up (toward 0) through the center dark run, then light, then dark.
	for i >= 0 && get(i) {
		counts[2]++
		i--
	}
	if counts[2] == 0 {
		return 0, 0, false
	}
	for i >= 0 && !get(i) {
		counts[1]++
		i--
	}
	for i >= 0 && get(i) {
		counts[0]++
		i--
	}
	topIndex := i

	i = around + 1
	for i < length && get(i) {
		counts[2]++
		i++
	}
	for i < length && !get(i) {
		counts[3]++
		i++
	}
	for i < length && get(i) {
		counts[4]++
		i++
	}

	if counts[0] == 0 || counts[1] == 0 || counts[3] == 0 || counts[4] == 0 {
		return 0, 0, false
	}

	var rs runState
	rs.counts = counts
	ms, matched := rs.matchesPattern()
	if !matched {
		return 0, 0, false
	}
	c := float64(topIndex+1) + float64(counts[0]) + float64(counts[1]) + float64(counts[2])/2.0
	return ms, c, true
}

// mergeCandidates collapses two candidates into one when their centers are
// within 5*moduleSize of each other (spec.md §4.2): the merged candidate's
// center and module size are the score-weighted averages of the two, and
// its score is their sum, reflecting multiple confirmations.
func mergeCandidates(a, b []FinderCandidate) []FinderCandidate {
	all := append(append([]FinderCandidate{}, a...), b...)
	var merged []FinderCandidate
	used := make([]bool, len(all))
	for i := range all {
		if used[i] {
			continue
		}
		cur := all[i]
		for j := i + 1; j < len(all); j++ {
			if used[j] {
				continue
			}
			if sameFinderPattern(cur, all[j]) {
				cur = combineFinderPattern(cur, all[j])
				used[j] = true
			}
		}
		merged = append(merged, cur)
	}
	return merged
}

func sameFinderPattern(a, b FinderCandidate) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	avgModule := (a.ModuleSize + b.ModuleSize) / 2
	return dist < 5*avgModule
}

func combineFinderPattern(a, b FinderCandidate) FinderCandidate {
	n := float64(a.Score + b.Score)
	return FinderCandidate{
		X:          (a.X*float64(a.Score) + b.X*float64(b.Score)) / n,
		Y:          (a.Y*float64(a.Score) + b.Y*float64(b.Score)) / n,
		ModuleSize: (a.ModuleSize*float64(a.Score) + b.ModuleSize*float64(b.Score)) / n,
		Score:      a.Score + b.Score,
		Orientation: a.Orientation,
	}
}

// findViaPyramid implements spec.md §4.2's pyramid acceleration: build 2x
// and 4x downscaled planes, detect on the 4x plane only, then refine by
// rescanning a small window around each coarse hit at native resolution.
func findViaPyramid(bits *BitMatrix) []FinderCandidate {
	half := downscaleBitMatrix(bits)
	quarter := downscaleBitMatrix(half)

	coarse := scanRows(quarter)
	coarse = mergeCandidates(coarse, scanColumns(quarter))

	var refined []FinderCandidate
	seen := map[[2]int]bool{}
	for _, c := range coarse {
		// Undo the 4x downscale to get an approximate native-resolution
		// window center.
		cx, cy := c.X*4, c.Y*4
		ms := c.ModuleSize * 4
		window := int(ms * 10)
		if window < 20 {
			window = 20
		}
		x0, y0 := int(cx)-window, int(cy)-window
		x1, y1 := int(cx)+window, int(cy)+window
		if x0 < 0 {
			x0 = 0
		}
		if y0 < 0 {
			y0 = 0
		}
		if x1 > bits.Width {
			x1 = bits.Width
		}
		if y1 > bits.Height {
			y1 = bits.Height
		}
		key := [2]int{x0, y0}
		if seen[key] {
			continue
		}
		seen[key] = true
		refined = append(refined, scanWindow(bits, x0, y0, x1, y1)...)
	}
	if len(refined) == 0 {
		// Fall back to a native full scan if the pyramid refinement found
		// nothing usable (e.g. a very sparse symbol).
		refined = scanRows(bits)
		refined = mergeCandidates(refined, scanColumns(bits))
	}
	return refined
}

// scanWindow restricts the row/column scan to a sub-rectangle.
func scanWindow(bits *BitMatrix, x0, y0, x1, y1 int) []FinderCandidate {
	var out []FinderCandidate
	for y := y0; y < y1; y++ {
		out = append(out, scanLineWindow(bits, y, x0, x1, true)...)
	}
	for x := x0; x < x1; x++ {
		out = append(out, scanLineWindow(bits, x, y0, y1, false)...)
	}
	return mergeCandidates(out, nil)
}

// scanLineWindow is scanLine restricted to [lo, hi) along the scanned axis.
func scanLineWindow(bits *BitMatrix, fixed, lo, hi int, horizontal bool) []FinderCandidate {
	get := func(i int) bool {
		if horizontal {
			return bits.Get(i, fixed)
		}
		return bits.Get(fixed, i)
	}
	var out []FinderCandidate
	var rs runState
	state := 0
	rs.counts[0] = 0
	for i := lo; i < hi; i++ {
		dark := get(i)
		if (state%2 == 0) == dark {
			rs.counts[state]++
			continue
		}
		if state < 4 {
			state++
			rs.counts[state] = 1
			continue
		}
		if moduleSize, ok := rs.matchesPattern(); ok {
			center := float64(i) - float64(rs.counts[4]) - float64(rs.counts[3]) - float64(rs.counts[2])/2.0
			if cand, confirmed := crossCheck(bits, fixed, center, moduleSize, horizontal); confirmed {
				out = append(out, cand)
			}
		}
		rs.shift()
		state = 3
	}
	return out
}

// downscaleBitMatrix halves both dimensions via 2x2 majority voting
// (spec.md §4.2).
func downscaleBitMatrix(bits *BitMatrix) *BitMatrix {
	dw, dh := (bits.Width+1)/2, (bits.Height+1)/2
	dst := newBitMatrix(nil, dw, dh)
	for y := 0; y < dh; y++ {
		sy := y * 2
		for x := 0; x < dw; x++ {
			sx := x * 2
			votes := 0
			if bits.Get(sx, sy) {
				votes++
			}
			if bits.Get(sx+1, sy) {
				votes++
			}
			if bits.Get(sx, sy+1) {
				votes++
			}
			if bits.Get(sx+1, sy+1) {
				votes++
			}
			if votes >= 2 {
				dst.Set(x, y, true)
			}
		}
	}
	return dst
}

// sortByModuleSize sorts candidates ascending by estimated module size
// (grounded on zxinggo's finder-pattern selection). groupTriplets does not
// call it: its enumeration tries every triplet regardless of input order.
func sortByModuleSize(c []FinderCandidate) {
	sort.Slice(c, func(i, j int) bool { return c[i].ModuleSize < c[j].ModuleSize })
}
