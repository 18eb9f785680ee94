package qrscan

import "log/slog"

// Result is one located-and-decoded symbol, spec.md §3 data model.
type Result struct {
	Payload     Payload
	Version     int
	ECLevel     ECLevel
	MaskPattern int
	TopLeft     FinderCandidate
	TopRight    FinderCandidate
	BottomLeft  FinderCandidate
}

// DetectReport is the outcome of a full detect call: zero or more results
// plus the telemetry spec.md §6 requires regardless of outcome.
type DetectReport struct {
	Results   []Result
	Telemetry Telemetry
}

// controller implements spec.md §5's strategy dispatch: try the strict
// (cheap) path first, widen to fallback binarizers and tryHarder scanning
// only as the budget allows, deduplicate by decoded payload, and classify
// any terminal failure into the closed FailureReason set.
type controller struct {
	cfg     Config
	scratch *Scratch
	logger  *slog.Logger
}

func newController(cfg Config, scratch *Scratch, logger *slog.Logger) *controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &controller{cfg: cfg, scratch: scratch, logger: logger}
}

// strategyStep is one entry in the ordered plan the controller walks
// through until it finds results or exhausts its budget (spec.md §5: "the
// controller is enum-driven dispatch, not polymorphism").
type strategyStep struct {
	binarizer  BinarizerKind
	tryHarder  bool
	multiSymbol bool
}

func defaultStrategyPlan(enableFallbacks bool) []strategyStep {
	plan := []strategyStep{
		{binarizer: BinarizerOtsu, tryHarder: false, multiSymbol: false},
	}
	if enableFallbacks {
		plan = append(plan,
			strategyStep{binarizer: BinarizerSauvola, tryHarder: false, multiSymbol: false},
			strategyStep{binarizer: BinarizerOtsu, tryHarder: true, multiSymbol: true},
			strategyStep{binarizer: BinarizerAdaptiveMean, tryHarder: true, multiSymbol: true},
		)
	}
	return plan
}

// detect runs the full pipeline: preprocess once, then walk the strategy
// plan, spending budget per step, until a step that is not a multi-symbol
// step yields results or the plan (and budget) is exhausted (spec.md §4,
// §5, §6). Multi-symbol steps keep the walk going after they find results.
func (c *controller) detect(pixels []byte, width, height int, format PixelFormat) DetectReport {
	telemetry := Telemetry{}
	budget := c.cfg.Budget

	lum, err := toLuminance(c.scratch, pixels, width, height, format)
	if err != nil {
		telemetry.Failure = FailureNoFinders
		telemetry.Err = err
		return DetectReport{Telemetry: telemetry}
	}

	scale := 1.0
	if c.cfg.MaxDimension > 0 {
		lum, scale = scaleToMax(lum, c.cfg.MaxDimension, c.scratch)
	}
	telemetry.Scale = scale

	seen := map[string]bool{}
	var results []Result

	plan := defaultStrategyPlan(c.cfg.EnableContourFallback || c.cfg.EnableMeshWarp || c.cfg.EnableDeskew)
	for _, step := range plan {
		if budget <= 0 {
			telemetry.Failure = FailureBudgetExhausted
			break
		}
		stepResults, spent := c.runStep(lum, step)
		budget -= spent
		telemetry.StepsRun++
		if c.cfg.Debug {
			c.logger.Info("strategy step",
				"binarizer", step.binarizer.String(),
				"try_harder", step.tryHarder,
				"spent", spent,
				"remaining_budget", budget,
				"found", len(stepResults),
			)
		}

		for _, r := range stepResults {
			key := r.Payload.Text
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, r)
		}

		if len(results) > 0 && !step.multiSymbol {
			break
		}
	}

	if len(results) == 0 && telemetry.Failure == FailureNone {
		telemetry.Failure = FailureNoFinders
	}
	telemetry.ResultCount = len(results)

	return DetectReport{Results: results, Telemetry: telemetry}
}

// runStep binarizes once under the step's policy and attempts to locate
// and decode every plausible symbol candidate, returning decoded results
// and an approximate cost spent (spec.md §5's budget accounting).
func (c *controller) runStep(lum *Luminance, step strategyStep) ([]Result, int) {
	bits := binarize(lum, step.binarizer, 0, c.scratch)

	candidates := findFinderCandidates(bits, step.tryHarder)
	if len(candidates) < 3 {
		return nil, len(candidates) + 1
	}

	triplets := groupTriplets(candidates, c.cfg.TopKTriplets)
	if len(triplets) == 0 {
		return nil, len(candidates)
	}

	// Every cluster is a spatially independent symbol candidate (spec.md
	// §4.3's multi-symbol handling): try each one regardless of which
	// strategy step found it. step.multiSymbol only gates whether the
	// controller keeps widening to further steps after this one succeeds.
	clusters := clusterTriplets(triplets)

	var results []Result
	var decoded []FinderCandidate
	cost := len(candidates) + len(triplets)
	for _, cluster := range clusters {
		// Triplets spanning neighbouring symbols can join them into one
		// cluster: skip any triplet reusing a finder of a decoded symbol.
		for _, t := range cluster {
			reused := false
			for _, d := range decoded {
				reused = reused || d == t.TopLeft || d == t.TopRight || d == t.BottomLeft
			}
			if reused {
				continue
			}
			result, ok := c.decodeTriplet(lum, t)
			cost++
			if ok {
				results = append(results, result)
				decoded = append(decoded, t.TopLeft, t.TopRight, t.BottomLeft)
			}
		}
	}
	return results, cost
}

// decodeTriplet builds the transform, samples the grid, and runs the
// matrix decoder for one finder triplet (spec.md §4.4-§4.6). The bottom-
// right corner is always the parallelogram completion: no alignment-pattern
// search refines it, and the timing pattern is not checked before
// sampling.
func (c *controller) decodeTriplet(lum *Luminance, t FinderTriplet) (Result, bool) {
	dimension := estimateDimension(t.ModuleSize, lum, t)
	bottomRight := parallelogramBottomRight(t.TopLeft, t.TopRight, t.BottomLeft)
	transform := buildTransform(t.TopLeft, t.TopRight, t.BottomLeft, bottomRight, dimension, false)

	grid, err := sampleGrid(lum, transform, dimension, c.scratch)
	if err != nil {
		return Result{}, false
	}

	decoder := newMatrixDecoder(c.cfg)
	decoded, _, err := decoder.Decode(grid)
	if err != nil {
		return Result{}, false
	}

	return Result{
		Payload:     decoded.Payload,
		Version:     decoded.Version,
		ECLevel:     decoded.ECLevel,
		MaskPattern: decoded.MaskPattern,
		TopLeft:     t.TopLeft,
		TopRight:    t.TopRight,
		BottomLeft:  t.BottomLeft,
	}, true
}

// estimateDimension derives a provisional symbol dimension from the
// triplet's module size (spec.md §4.4 step 1), clamped to the valid
// version range; the matrix decoder's version-info read (for v7+) may
// later correct it.
func estimateDimension(moduleSize float64, lum *Luminance, t FinderTriplet) int {
	topDist := dist(t.TopLeft, t.TopRight)
	sideDist := dist(t.TopLeft, t.BottomLeft)
	avgModules := (topDist/moduleSize + sideDist/moduleSize) / 2
	dimension := int(avgModules+0.5) + 7
	if dimension < 21 {
		dimension = 21
	}
	if dimension > 177 {
		dimension = 177
	}
	// Round to the nearest valid 4k+17 dimension (versionForDimension
	// floors, so shift by half a version step first).
	version := versionForDimension(dimension + 2)
	return dimensionForVersion(version)
}
