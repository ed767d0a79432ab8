package sink

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/infra/logger"
)

// MQTTConfig defines the connection parameters for the telemetry publisher.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"` // defaults to battsim/<device>/state
	QoS      byte   `json:"qos"`
}

// MQTTSink publishes state records as JSON telemetry messages, mimicking a
// battery management system pushing live signals to a broker.
type MQTTSink struct {
	client paho.Client
	topic  string
	qos    byte
	log    logger.Logger
}

// NewMQTTSink connects to the broker. The device name fills the default
// topic when none is configured.
func NewMQTTSink(cfg MQTTConfig, device string) (*MQTTSink, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt sink: broker is required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "battsim/" + device + "/state"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "battsim-" + device
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt sink connect: %w", token.Error())
	}
	return &MQTTSink{client: cli, topic: topic, qos: cfg.QoS, log: logger.New("mqtt-sink")}, nil
}

// Write publishes the record. Publishing is fire-and-forget: a broker
// hiccup is logged but never aborts the simulation.
func (s *MQTTSink) Write(rec model.StateRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("mqtt sink marshal: %w", err)
	}
	token := s.client.Publish(s.topic, s.qos, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			s.log.Warnf("publish step %d: %v", rec.Step, token.Error())
		}
	}()
	return nil
}

// Flush is a no-op; messages are handed to the paho client immediately.
func (s *MQTTSink) Flush() error { return nil }

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
