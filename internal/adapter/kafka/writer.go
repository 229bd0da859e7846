// Package kafka publishes decoded station messages to a Kafka topic for
// downstream consumers that want the full message stream rather than
// point-in-time metrics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/tempest-exporter/internal/config"
	"github.com/couchcryptid/tempest-exporter/internal/domain"
)

// Writer produces decoded messages to the configured topic. It implements
// pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg config.KafkaConfig, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &Writer{writer: w, logger: logger}
}

// HandleMessage serializes and publishes one decoded message. Failures are
// logged and dropped; a telemetry broadcast has no replay to retry from.
func (w *Writer) HandleMessage(ctx context.Context, msg domain.Message) {
	kmsg, err := serializeToMessage(msg)
	if err != nil {
		w.logger.Error("kafka serialize failed", "type", msg.Kind(), "error", err)
		return
	}
	if err := w.writer.WriteMessages(ctx, kmsg); err != nil {
		w.logger.Error("kafka write failed", "type", msg.Kind(), "error", err)
	}
}

// Close flushes and closes the underlying producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// envelope is the wire form: the variant tag plus the message payload.
type envelope struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

// serializeToMessage marshals a decoded message into a Kafka message keyed
// by serial number so per-station ordering survives partitioning.
func serializeToMessage(msg domain.Message) (kafkago.Message, error) {
	data, err := json.Marshal(envelope{Type: msg.Kind(), Message: msg})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s: %w", msg.Kind(), err)
	}
	return kafkago.Message{
		Key:   []byte(serialNumber(msg)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "message_type", Value: []byte(msg.Kind())},
			{Key: "published_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}

func serialNumber(msg domain.Message) string {
	switch m := msg.(type) {
	case domain.PrecipEvent:
		return m.SerialNumber
	case domain.StrikeEvent:
		return m.SerialNumber
	case domain.RapidWind:
		return m.SerialNumber
	case domain.Observation:
		return m.SerialNumber
	case domain.DeviceStatus:
		return m.SerialNumber
	case domain.HubStatus:
		return m.SerialNumber
	default:
		return ""
	}
}
