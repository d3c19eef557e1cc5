// Package publisher delivers created-document notifications to a broker.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/eventquote/internal/config"
	"github.com/okian/eventquote/internal/domain/model"
)

// Publisher delivers a notification downstream.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes notifications to a Kafka topic keyed by document id.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher builds a synchronous writer for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, writeTimeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: writeTimeout,
		},
	}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, n model.Notification) error { //nolint:gocritic // hugeParam: matches worker interface
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPublish, err)
	}
	msg := kafka.Message{
		Key:   []byte(n.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "collection", Value: []byte(n.Collection)},
		},
		Time: n.CreatedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrPublish, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards notifications.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, model.Notification) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// Open returns a KafkaPublisher when notifications are enabled and a
// NopPublisher otherwise.
func Open(cfg config.Notifier) Publisher {
	if !cfg.Enabled {
		return NopPublisher{}
	}
	return NewKafkaPublisher(cfg.Brokers, cfg.Topic, cfg.WriteTimeout)
}
