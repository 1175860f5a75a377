package metrics

import "time"

// Outcome classifies how a prediction request ended.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeValidationError  Outcome = "validation_error"
	OutcomeModelUnavailable Outcome = "model_unavailable"
	OutcomePredictionFailed Outcome = "prediction_failed"
	OutcomeMalformedRequest Outcome = "malformed_request"
)

// PredictionEvent is the per-request record forwarded to the sinks.
type PredictionEvent struct {
	RequestID    string
	Outcome      Outcome
	Volume       int
	ModelVersion string
	Latency      time.Duration
	Time         time.Time
}

// MetricsSink records prediction events for observability purposes.
type MetricsSink interface {
	RecordPrediction(ev PredictionEvent) error
}

// ModelStateRecorder is implemented by sinks that expose the loaded flag.
type ModelStateRecorder interface {
	RecordModelLoaded(loaded bool) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionEvent) error { return nil }

// Ensure NopSink implements ModelStateRecorder.
func (NopSink) RecordModelLoaded(bool) error { return nil }
