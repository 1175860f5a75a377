package inference

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned when no predictor was loaded at process
// start. It signals a deployment problem, not a client error, and is not
// retryable within the same process lifetime.
var ErrModelUnavailable = errors.New("model not loaded")

// PredictionError reports an unexpected failure during inference. It carries
// the underlying cause message for diagnostics but never the predictor's
// internal error value, so capability internals cannot leak across the
// boundary.
type PredictionError struct {
	Msg string
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %s", e.Msg)
}

func predictionFailed(format string, args ...any) *PredictionError {
	return &PredictionError{Msg: fmt.Sprintf(format, args...)}
}
