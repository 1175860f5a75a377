package predictor

import (
	"github.com/kilianp07/trafficd/core/schema"
)

// MockPredictor returns a fixed raw estimate or error. Used by engine and
// handler tests.
type MockPredictor struct {
	Raw          float64
	Err          error
	ModelVersion string

	// Calls records every record the mock saw, in order.
	Calls []schema.FeatureRecord
}

// Estimate records the call and returns the configured value or error.
func (m *MockPredictor) Estimate(rec schema.FeatureRecord) (float64, error) {
	m.Calls = append(m.Calls, rec)
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Raw, nil
}

// Version returns the configured version or "mock".
func (m *MockPredictor) Version() string {
	if m.ModelVersion == "" {
		return "mock"
	}
	return m.ModelVersion
}
