package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kilianp07/trafficd/api/traffic"
	"github.com/kilianp07/trafficd/config"
	"github.com/kilianp07/trafficd/core/health"
	"github.com/kilianp07/trafficd/core/inference"
	coremetrics "github.com/kilianp07/trafficd/core/metrics"
	"github.com/kilianp07/trafficd/core/predictor"
	"github.com/kilianp07/trafficd/infra/logger"
	"github.com/kilianp07/trafficd/infra/metrics"
	"github.com/kilianp07/trafficd/infra/model"
	"github.com/kilianp07/trafficd/infra/mqtt"
	"github.com/kilianp07/trafficd/internal/eventbus"
)

// Version is the service API version reported by the root endpoint.
const Version = "1.0.0"

// Service wires the engine, readiness state, sinks and HTTP listener.
type Service struct {
	Engine *inference.Engine
	State  *health.State

	cfg  *config.Config
	bus  *eventbus.Bus
	sink coremetrics.MetricsSink
	pub  *mqtt.Publisher
	log  logger.Logger
}

// New creates a Service from the configuration. A missing or corrupt model
// artifact does not fail construction: the service starts in the unloaded
// state and reports unhealthy, which is an operational signal rather than a
// crash loop.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var pred predictor.Predictor
	if p, err := model.Load(cfg.Model.Path); err != nil {
		if os.IsNotExist(err) {
			logg.Warnf("model artifact %s not found; starting unloaded", cfg.Model.Path)
		} else {
			logg.Errorf("model artifact unusable: %v; starting unloaded", err)
		}
	} else {
		pred = p
		logg.Infof("model %s loaded from %s", p.Version(), cfg.Model.Path)
	}

	engine := inference.NewEngine(pred, logg)
	state := health.NewState(engine.Loaded())

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}
	if mr, ok := sink.(coremetrics.ModelStateRecorder); ok {
		if err := mr.RecordModelLoaded(engine.Loaded()); err != nil {
			logg.Warnf("record model state: %v", err)
		}
	}

	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled {
		p, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}

	return &Service{
		Engine: engine,
		State:  state,
		cfg:    cfg,
		bus:    eventbus.New(),
		sink:   sink,
		pub:    pub,
		log:    logg,
	}, nil
}

// Run starts the event consumer, the optional Prometheus server and the API
// listener, then blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	sub := s.bus.Subscribe()
	go func() {
		for ev := range sub {
			if err := s.sink.RecordPrediction(ev); err != nil {
				s.log.Warnf("record prediction: %v", err)
			}
			if s.pub != nil {
				if err := s.pub.PublishPrediction(ev); err != nil {
					s.log.Warnf("publish prediction: %v", err)
				}
			}
		}
	}()

	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := traffic.NewMux(s.Engine, s.State, s.bus, Version, logger.New("api"))
	srv := &http.Server{Addr: s.cfg.Server.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return nil
}
