package qrscan

// Telemetry records what a detect call actually did, independent of
// whether it succeeded (spec.md §6: "telemetry is emitted on every call,
// not just failures").
type Telemetry struct {
	StepsRun    int
	ResultCount int
	Scale       float64
	Failure     FailureReason
	Err         error
}

// Signature returns the closed-set telemetry tag for this call's outcome
// (spec.md §6), suitable for use as a metrics label.
func (t Telemetry) Signature() string { return t.Failure.signatureTag() }
