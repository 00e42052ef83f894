// Package kafka publishes tracker events to a Kafka topic as JSON, one
// message per event, tagged with the run that produced them.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/logger"
)

// RunIDHeader carries the run ID of the context an event was published from.
const RunIDHeader = "run_id"

// Event is keyed by source file so every event for a file lands on the same
// partition.
type Event struct {
	Key   string
	Value any
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer writes synchronously with LZ4-compressed batches and waits for
// all in-sync replicas.
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			Compression:  kafka.Lz4,
			BatchTimeout: 10 * time.Millisecond,
			MaxAttempts:  3,
			RequiredAcks: kafka.RequireAll,
		},
		topic: topic,
	}
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	return p.PublishBatch(ctx, []Event{event})
}

// PublishBatch writes events in one call. Nothing is written if any event
// fails to encode.
func (p *Producer) PublishBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs, err := messages(ctx, events)
	if err != nil {
		return err
	}
	log := logger.WithComponent(ctx, "kafka-producer").With("topic", p.topic)
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		log.Error("failed to publish events", "count", len(msgs), "error", err)
		return fmt.Errorf("publishing %d events to %s: %w", len(msgs), p.topic, err)
	}
	log.Debug("events published", "count", len(msgs))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func messages(ctx context.Context, events []Event) ([]kafka.Message, error) {
	runID := logger.RunID(ctx)
	out := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(event.Value)
		if err != nil {
			return nil, fmt.Errorf("marshaling event %q: %w", event.Key, err)
		}
		msg := kafka.Message{
			Key:   []byte(event.Key),
			Value: value,
		}
		if runID != "" {
			msg.Headers = []kafka.Header{{Key: RunIDHeader, Value: []byte(runID)}}
		}
		out = append(out, msg)
	}
	return out, nil
}
