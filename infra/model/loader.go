// Package model loads the trained regression artifact from disk. A missing
// artifact is an expected deployment shape: the caller keeps the process up
// in the unloaded state instead of crashing.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kilianp07/trafficd/core/predictor"
)

// Load reads the JSON artifact at path and constructs the predictor. The
// returned error distinguishes a missing file (os.IsNotExist) from a corrupt
// one so the caller can log them differently; in both cases the service
// starts unloaded.
func Load(path string) (*predictor.LinearPredictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w predictor.Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	p, err := predictor.NewLinear(w)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return p, nil
}
