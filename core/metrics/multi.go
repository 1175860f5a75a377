package metrics

// MultiSink fans prediction events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordPrediction(ev PredictionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordModelLoaded forwards the loaded flag when supported by the sink.
func (m *MultiSink) RecordModelLoaded(loaded bool) error {
	for _, s := range m.Sinks {
		if mr, ok := s.(ModelStateRecorder); ok {
			if err := mr.RecordModelLoaded(loaded); err != nil {
				return err
			}
		}
	}
	return nil
}
