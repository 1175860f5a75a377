// Package mqtt publishes prediction events to an MQTT broker for downstream
// consumers (dashboards, archival pipelines). The publisher is optional and
// sits behind the event bus, never on the request path.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/trafficd/core/metrics"
	"github.com/kilianp07/trafficd/infra/logger"
)

// Config defines the connection parameters for the prediction publisher.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Topic     string `json:"topic"`
	QoS       byte   `json:"qos"`
	TimeoutMS int    `json:"timeout_ms"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "trafficd"
	}
	if c.Topic == "" {
		c.Topic = "trafficd/predictions"
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 5000
	}
}

// Validate checks mandatory fields when the publisher is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("broker is required when mqtt is enabled")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends prediction events to a single topic over Eclipse Paho.
type Publisher struct {
	cli     pahoClient
	topic   string
	qos     byte
	timeout time.Duration
	log     logger.Logger
}

// NewPublisher connects to the broker and returns the publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	cli := newMQTTClient(opts)
	tok := cli.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect timeout after %s", timeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &Publisher{
		cli:     cli,
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		timeout: timeout,
		log:     logger.New("mqtt-publisher"),
	}, nil
}

// predictionMessage is the wire shape published per event.
type predictionMessage struct {
	RequestID    string `json:"request_id"`
	Outcome      string `json:"outcome"`
	Volume       int    `json:"predicted_traffic_volume"`
	ModelVersion string `json:"model_version,omitempty"`
	LatencyMS    int64  `json:"latency_ms"`
	Time         string `json:"time"`
}

// PublishPrediction sends the event as JSON. Failures are logged and
// returned; the caller decides whether they matter.
func (p *Publisher) PublishPrediction(ev coremetrics.PredictionEvent) error {
	msg := predictionMessage{
		RequestID:    ev.RequestID,
		Outcome:      string(ev.Outcome),
		Volume:       ev.Volume,
		ModelVersion: ev.ModelVersion,
		LatencyMS:    ev.Latency.Milliseconds(),
		Time:         ev.Time.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal prediction message: %w", err)
	}
	tok := p.cli.Publish(p.topic, p.qos, false, payload)
	if !tok.WaitTimeout(p.timeout) {
		p.log.Errorf("publish timeout on %s", p.topic)
		return fmt.Errorf("publish timeout on %s", p.topic)
	}
	if err := tok.Error(); err != nil {
		p.log.Errorf("publish on %s: %v", p.topic, err)
		return err
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
