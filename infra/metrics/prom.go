package metrics

import (
	coremetrics "github.com/kilianp07/trafficd/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records prediction events in Prometheus metrics.
type PromSink struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	volume   prometheus.Histogram
	loaded   prometheus.Gauge
}

// NewPromSink registers prediction metrics on the default Prometheus
// registerer. The Prometheus server is started separately on
// cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_requests_total",
		Help: "Total number of prediction requests by outcome",
	}, []string{"outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prediction_latency_seconds",
		Help:    "Time spent handling a prediction request",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	volume := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "predicted_traffic_volume",
		Help:    "Distribution of predicted hourly vehicle counts",
		Buckets: prometheus.LinearBuckets(0, 1000, 8),
	})
	loaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "model_loaded",
		Help: "Whether the predictor capability was loaded at startup",
	})

	if err := reg.Register(requests); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			requests = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(volume); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			volume = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(loaded); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			loaded = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{requests: requests, latency: latency, volume: volume, loaded: loaded}, nil
}

// RecordPrediction increments the outcome counter and observes latency; the
// volume histogram only moves on successful predictions.
func (s *PromSink) RecordPrediction(ev coremetrics.PredictionEvent) error {
	s.requests.WithLabelValues(string(ev.Outcome)).Inc()
	s.latency.WithLabelValues(string(ev.Outcome)).Observe(ev.Latency.Seconds())
	if ev.Outcome == coremetrics.OutcomeOK {
		s.volume.Observe(float64(ev.Volume))
	}
	return nil
}

// RecordModelLoaded sets the loaded gauge.
func (s *PromSink) RecordModelLoaded(loaded bool) error {
	if loaded {
		s.loaded.Set(1)
	} else {
		s.loaded.Set(0)
	}
	return nil
}
