package predictor

import "github.com/kilianp07/trafficd/core/schema"

// Predictor is the trained-model capability: one estimate per validated
// record. Implementations are loaded once at process start and must be safe
// for concurrent use without synchronization; nothing in the request path
// mutates them.
type Predictor interface {
	// Estimate returns the raw regression output for the record. The value
	// may be negative or fractional; shaping it into a vehicle count is the
	// caller's concern.
	Estimate(rec schema.FeatureRecord) (float64, error)

	// Version identifies the trained artifact that produced the estimates.
	Version() string
}
