// Package kafka handles event emission for guest lifecycle changes.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/stadlerhof/clover/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// GuestEvent represents an event about a canonical guest
type GuestEvent struct {
	EventType      string    `json:"event_type"` // guest.created, guest.updated
	GuestID        string    `json:"guest_id"`
	CustomerNumber int64     `json:"customer_number"`
	MergeKeyKind   string    `json:"merge_key_kind"`
	SourceGuestIDs []int64   `json:"source_guest_ids,omitempty"`
	TotalBookings  int       `json:"total_bookings"`
	Timestamp      time.Time `json:"timestamp"`
}

// PublishGuestEvent publishes a guest event to Kafka
func (p *Producer) PublishGuestEvent(ctx context.Context, event *GuestEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishGuestEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.GuestID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": event.EventType,
			"guest_id":   event.GuestID,
		}).Error("Failed to publish guest event")
		return err
	}

	return nil
}
