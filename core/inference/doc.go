// Package inference orchestrates the prediction request lifecycle: invoking
// the predictor capability, shaping its raw output into a non-negative
// vehicle count and classifying every failure into the service's error
// taxonomy.
package inference
