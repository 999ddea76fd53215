// Package kafka publishes order lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/pkg/reqmeta"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const headerEventType = "event-type"

// message is the wire form of an order event.
type message struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurredAt"`
	RequestID  string    `json:"requestId,omitempty"`
}

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ ports.EventPublisher = (*Publisher)(nil)

// NewProducerConfig returns the producer settings used in every environment.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "storefront"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.Partitioner = sarama.NewHashPartitioner
	return config
}

// NewPublisher dials the brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("kafka: create producer: %w", err)
	}
	return NewPublisherFromProducer(producer, topic), nil
}

func NewPublisherFromProducer(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Publish sends evt keyed by order id so events of one order keep their
// relative order within a partition.
func (p *Publisher) Publish(ctx context.Context, evt entity.Event) error {
	body, err := json.Marshal(message{
		Type:       evt.Type,
		OrderID:    evt.OrderID,
		UserID:     evt.UserID,
		Total:      evt.Total,
		OccurredAt: evt.OccurredAt.UTC(),
		RequestID:  reqmeta.RequestID(ctx),
	})
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", evt.Type, err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.OrderID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte(headerEventType), Value: []byte(evt.Type)},
		},
	})
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(evt.Type, "error").Inc()
		return fmt.Errorf("kafka: send %s for order %s: %w", evt.Type, evt.OrderID, err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(evt.Type, "ok").Inc()
	slog.DebugContext(ctx, "order event published",
		"type", evt.Type,
		"order_id", evt.OrderID,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
