package inference

import (
	"math"

	"github.com/kilianp07/trafficd/core/logger"
	"github.com/kilianp07/trafficd/core/predictor"
	"github.com/kilianp07/trafficd/core/schema"
)

// Result is the outcome of one prediction request. Constructed once, never
// mutated, discarded after the response is sent.
type Result struct {
	Volume       int    `json:"predicted_traffic_volume"`
	ModelVersion string `json:"model_version"`
}

// Engine turns validated feature records into traffic-volume results. The
// predictor reference is fixed at construction; a nil predictor means the
// artifact was missing at startup and every Predict call fails with
// ErrModelUnavailable. Engines are safe for concurrent use.
type Engine struct {
	pred predictor.Predictor
	log  logger.Logger
}

// NewEngine builds an engine around the predictor, which may be nil when the
// model artifact could not be loaded.
func NewEngine(pred predictor.Predictor, log logger.Logger) *Engine {
	return &Engine{pred: pred, log: log}
}

// Loaded reports whether a predictor is available.
func (e *Engine) Loaded() bool { return e.pred != nil }

// Predict runs a single synchronous inference. The raw regression output is
// truncated toward zero and clamped at zero: a trained regressor may emit
// fractional or negative values that have no physical meaning for a vehicle
// count. No retries; a single inference call is deterministic and
// side-effect-free, so retrying here would be pointless.
func (e *Engine) Predict(rec schema.FeatureRecord) (Result, error) {
	if e.pred == nil {
		return Result{}, ErrModelUnavailable
	}

	raw, err := e.pred.Estimate(rec)
	if err != nil {
		e.log.Errorf("predictor estimate: %v", err)
		return Result{}, predictionFailed("%v", err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		e.log.Errorf("predictor returned non-finite estimate %g", raw)
		return Result{}, predictionFailed("non-finite estimate %g", raw)
	}
	// A finite estimate at or beyond MaxInt64 would flip sign in the int
	// conversion below; it is as meaningless as NaN and gets the same
	// treatment.
	if raw >= math.MaxInt64 {
		e.log.Errorf("predictor returned implausible estimate %g", raw)
		return Result{}, predictionFailed("estimate %g exceeds representable volume", raw)
	}

	// Negative estimates clamp to zero before conversion; traffic volume
	// cannot be negative.
	volume := 0
	if raw > 0 {
		volume = int(raw) // truncation toward zero, never rounding up
	}
	return Result{Volume: volume, ModelVersion: e.pred.Version()}, nil
}
