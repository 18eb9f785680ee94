package qrscan

import (
	"math"
	"sort"
)

// FinderTriplet is three ordered candidates labeled TL/TR/BL plus a derived
// module size (spec.md §3). Built by the grouper, consumed by the
// transform builder.
type FinderTriplet struct {
	TopLeft, TopRight, BottomLeft FinderCandidate
	ModuleSize                    float64
	Score                         float64
}

const (
	moduleSizeRatioMax = 2.0
	legSymmetryMax     = 0.4
	legAngleCosMax     = 0.4
	minLegModules      = 3.0
)

// groupTriplets enumerates candidate triplets per spec.md §4.3, ranks
// them, and returns the top-K by score. Already-used candidates are not
// consumed, matching spec.md's explicit "a given candidate may appear in
// several triplets."
func groupTriplets(candidates []FinderCandidate, topK int) []FinderTriplet {
	n := len(candidates)
	var triplets []FinderTriplet
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				if t, ok := tryTriplet(candidates[i], candidates[j], candidates[k]); ok {
					triplets = append(triplets, t)
				}
			}
		}
	}
	sort.Slice(triplets, func(i, j int) bool { return triplets[i].Score > triplets[j].Score })
	if topK > 0 && len(triplets) > topK {
		triplets = triplets[:topK]
	}
	return triplets
}

func dist(a, b FinderCandidate) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// tryTriplet validates the three module-size/right-angle/scale constraints
// of spec.md §4.3 and, if they hold, labels and scores the triplet.
func tryTriplet(a, b, c FinderCandidate) (FinderTriplet, bool) {
	minMS := math.Min(a.ModuleSize, math.Min(b.ModuleSize, c.ModuleSize))
	maxMS := math.Max(a.ModuleSize, math.Max(b.ModuleSize, c.ModuleSize))
	if minMS <= 0 || maxMS/minMS > moduleSizeRatioMax {
		return FinderTriplet{}, false
	}

	dab, dbc, dac := dist(a, b), dist(b, c), dist(a, c)

	// Identify the hypotenuse (longest side) and the shared vertex of the
	// two legs (the opposite point is the right-angle vertex, i.e. TL).
	var tl, p1, p2 FinderCandidate
	var leg1, leg2 float64
	switch {
	case dab >= dbc && dab >= dac: // AB is hypotenuse -> shared vertex is C
		tl, p1, p2 = c, a, b
		leg1, leg2 = dac, dbc
	case dac >= dab && dac >= dbc: // AC is hypotenuse -> shared vertex is B
		tl, p1, p2 = b, a, c
		leg1, leg2 = dab, dbc
	default: // BC is hypotenuse -> shared vertex is A
		tl, p1, p2 = a, b, c
		leg1, leg2 = dab, dac
	}

	maxLeg := math.Max(leg1, leg2)
	if maxLeg == 0 {
		return FinderTriplet{}, false
	}
	if math.Abs(leg1-leg2)/maxLeg > legSymmetryMax {
		return FinderTriplet{}, false
	}

	meanModule := (a.ModuleSize + b.ModuleSize + c.ModuleSize) / 3.0
	if math.Min(leg1, leg2) < minLegModules*meanModule {
		return FinderTriplet{}, false
	}

	// cos(theta) between the two legs at the shared vertex TL.
	v1x, v1y := p1.X-tl.X, p1.Y-tl.Y
	v2x, v2y := p2.X-tl.X, p2.Y-tl.Y
	dot := v1x*v2x + v1y*v2y
	n1 := math.Sqrt(v1x*v1x + v1y*v1y)
	n2 := math.Sqrt(v2x*v2x + v2y*v2y)
	if n1 == 0 || n2 == 0 {
		return FinderTriplet{}, false
	}
	cosTheta := dot / (n1 * n2)
	if math.Abs(cosTheta) > legAngleCosMax {
		return FinderTriplet{}, false
	}

	// Label p1/p2 as TR/BL so that (TR-TL) x (BL-TL) > 0 (image y-axis
	// points down, so a clockwise TL->TR->BL winding is positive).
	tr, bl := p1, p2
	cross := v1x*v2y - v1y*v2x
	if cross < 0 {
		tr, bl = bl, tr
	}

	score := tripletScore(a, b, c, tl, tr, bl, leg1, leg2, meanModule)

	return FinderTriplet{
		TopLeft:     tl,
		TopRight:    tr,
		BottomLeft:  bl,
		ModuleSize:  meanModule,
		Score:       score,
	}, true
}

// tripletScore weights module-size variance, leg symmetry, angular
// deviation from 90 degrees, and candidate evidence strength (spec.md
// §4.3), the last grounded on zxinggo's FinderPattern.Count confirmation
// field (higher Score on a FinderCandidate means more scan lines agreed).
func tripletScore(a, b, c FinderCandidate, tl, tr, bl FinderCandidate, leg1, leg2, meanModule float64) float64 {
	sizeVariance := math.Abs(a.ModuleSize-meanModule) + math.Abs(b.ModuleSize-meanModule) + math.Abs(c.ModuleSize-meanModule)
	legSymmetry := math.Abs(leg1-leg2) / math.Max(leg1, leg2)

	v1x, v1y := tr.X-tl.X, tr.Y-tl.Y
	v2x, v2y := bl.X-tl.X, bl.Y-tl.Y
	dot := v1x*v2x + v1y*v2y
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	angleDeviation := 0.0
	if n1 > 0 && n2 > 0 {
		angleDeviation = math.Abs(dot / (n1 * n2))
	}

	evidence := float64(a.Score + b.Score + c.Score)

	return evidence*10 - sizeVariance*5 - legSymmetry*20 - angleDeviation*20
}

// clusterTriplets groups triplets into spatially disjoint clusters: two
// triplets are in the same cluster if they share a candidate center within
// one module size of each other. Each cluster is an independent symbol
// candidate (spec.md §4.3's multi-symbol handling).
func clusterTriplets(triplets []FinderTriplet) [][]FinderTriplet {
	n := len(triplets)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	overlaps := func(t1, t2 FinderTriplet) bool {
		pts1 := [3]FinderCandidate{t1.TopLeft, t1.TopRight, t1.BottomLeft}
		pts2 := [3]FinderCandidate{t2.TopLeft, t2.TopRight, t2.BottomLeft}
		for _, p1 := range pts1 {
			for _, p2 := range pts2 {
				if dist(p1, p2) < math.Max(p1.ModuleSize, p2.ModuleSize) {
					return true
				}
			}
		}
		return false
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if overlaps(triplets[i], triplets[j]) {
				union(i, j)
			}
		}
	}

	groups := map[int][]FinderTriplet{}
	for i, t := range triplets {
		root := find(i)
		groups[root] = append(groups[root], t)
	}

	var clusters [][]FinderTriplet
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].Score > g[j].Score })
		clusters = append(clusters, g)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0].Score > clusters[j][0].Score })
	return clusters
}
