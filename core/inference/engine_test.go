package inference

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/kilianp07/trafficd/core/predictor"
	"github.com/kilianp07/trafficd/core/schema"
	"github.com/kilianp07/trafficd/infra/logger"
)

func TestPredictModelUnavailable(t *testing.T) {
	eng := NewEngine(nil, logger.NopLogger{})
	if eng.Loaded() {
		t.Fatal("engine should report unloaded")
	}
	_, err := eng.Predict(schema.Defaults())
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestPredictTruncatesAndClamps(t *testing.T) {
	cases := []struct {
		raw  float64
		want int
	}{
		{3456.9, 3456},
		{3456.1, 3456},
		{0.99, 0},
		{0, 0},
		{-0.4, 0},
		{-812.7, 0},
		{-1e19, 0},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("raw=%g", c.raw), func(t *testing.T) {
			mock := &predictor.MockPredictor{Raw: c.raw, ModelVersion: "1.0.0"}
			eng := NewEngine(mock, logger.NopLogger{})
			res, err := eng.Predict(schema.Defaults())
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			if res.Volume != c.want {
				t.Fatalf("volume = %d, want %d", res.Volume, c.want)
			}
			if res.ModelVersion != "1.0.0" {
				t.Fatalf("model version = %q", res.ModelVersion)
			}
		})
	}
}

func TestPredictWrapsCapabilityErrors(t *testing.T) {
	mock := &predictor.MockPredictor{Err: errors.New("matrix dimension mismatch")}
	eng := NewEngine(mock, logger.NopLogger{})
	_, err := eng.Predict(schema.Defaults())
	var perr *PredictionError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PredictionError, got %T", err)
	}
	if !strings.Contains(perr.Msg, "matrix dimension mismatch") {
		t.Fatalf("cause message lost: %q", perr.Msg)
	}
	// The capability's error value must not cross the boundary.
	if errors.Is(err, mock.Err) {
		t.Fatal("internal error value leaked through PredictionError")
	}
}

func TestPredictRejectsOverflowingEstimates(t *testing.T) {
	// A finite estimate beyond MaxInt64 must fail like NaN does, not flip
	// sign in the int conversion and collapse to zero traffic.
	for _, raw := range []float64{1e19, math.MaxFloat64, float64(math.MaxInt64)} {
		mock := &predictor.MockPredictor{Raw: raw, ModelVersion: "1.0.0"}
		eng := NewEngine(mock, logger.NopLogger{})
		res, err := eng.Predict(schema.Defaults())
		var perr *PredictionError
		if !errors.As(err, &perr) {
			t.Fatalf("raw %g: expected PredictionError, got result %+v err %v", raw, res, err)
		}
	}
}

func TestPredictRejectsNonFiniteEstimates(t *testing.T) {
	for _, raw := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		mock := &predictor.MockPredictor{Raw: raw}
		eng := NewEngine(mock, logger.NopLogger{})
		_, err := eng.Predict(schema.Defaults())
		var perr *PredictionError
		if !errors.As(err, &perr) {
			t.Fatalf("raw %g: expected PredictionError, got %v", raw, err)
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	mock := &predictor.MockPredictor{Raw: 2741.3, ModelVersion: "1.0.0"}
	eng := NewEngine(mock, logger.NopLogger{})
	rec := schema.Defaults()
	a, err := eng.Predict(rec)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	b, err := eng.Predict(rec)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if a != b {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
	if len(mock.Calls) != 2 || mock.Calls[0] != rec {
		t.Fatalf("unexpected capability calls: %+v", mock.Calls)
	}
}
