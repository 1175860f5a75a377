// Package predictor defines the trained-model capability consumed by the
// inference engine and provides the linear implementation loaded from a JSON
// artifact. Encoding of open-vocabulary categorical features, including the
// unknown-category fallback, lives here rather than in the validator.
package predictor
