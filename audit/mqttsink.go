package audit

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/bridgemesh/core/errs"
	"github.com/bridgemesh/core/identifier"
)

// MQTTSink publishes events as JSON to a fixed topic over the teacher's
// eclipse/paho.mqtt.golang client (declared in go.mod, unused in the
// retrieved source) - one concrete pack-grounded transport an external
// collector can subscribe to, per §6's "sinking is delegated" contract.
type MQTTSink struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTSink connects to broker (e.g. "tcp://localhost:1883") and returns a
// sink publishing to topic at qos.
func NewMQTTSink(broker, clientID, topic string, qos byte) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, errs.Wrap("audit.mqttsink", errs.CodeBridgeCallFailed, "mqtt connect failed", token.Error())
	}
	return &MQTTSink{client: client, topic: topic, qos: qos}, nil
}

type wireEvent struct {
	ID     string         `json:"id"`
	Point  Point          `json:"point"`
	Fields map[string]any `json:"fields,omitempty"`
}

func (s *MQTTSink) Emit(event Event) error {
	payload, err := json.Marshal(wireEvent{
		ID:     event.ID.Render(identifier.FormatUUIDUpper),
		Point:  event.Point,
		Fields: event.Fields,
	})
	if err != nil {
		return errs.Wrap("audit.mqttsink", errs.CodeInvalidFormat, "event marshal failed", err)
	}
	token := s.client.Publish(s.topic, s.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return errs.Wrap("audit.mqttsink", errs.CodeBridgeCallFailed, "mqtt publish failed", token.Error())
	}
	return nil
}

// Close disconnects the underlying MQTT client.
func (s *MQTTSink) Close() {
	s.client.Disconnect(250)
}
