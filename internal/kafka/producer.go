package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/eod-connector/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes connector sync events to Kafka
type Producer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		now:    time.Now,
	}
}

// PublishSymbolSynced publishes a symbol synced event
func (p *Producer) PublishSymbolSynced(ctx context.Context, symbol string, rowsWritten int, watermark time.Time) error {
	event := models.SyncEvent{
		EventType:   models.EventSymbolSynced,
		Symbol:      symbol,
		RowsWritten: rowsWritten,
		Timestamp:   p.now().UTC(),
	}
	if !watermark.IsZero() {
		event.Watermark = watermark.Format(models.DateLayout)
	}
	return p.publish(ctx, symbol, event)
}

// PublishSymbolSkipped publishes a symbol skipped event
func (p *Producer) PublishSymbolSkipped(ctx context.Context, symbol string, cause error) error {
	event := models.SyncEvent{
		EventType: models.EventSymbolSkipped,
		Symbol:    symbol,
		Error:     cause.Error(),
		Timestamp: p.now().UTC(),
	}
	return p.publish(ctx, symbol, event)
}

// PublishRunAborted publishes a run aborted event
func (p *Producer) PublishRunAborted(ctx context.Context, symbol string, cause error) error {
	event := models.SyncEvent{
		EventType: models.EventRunAborted,
		Symbol:    symbol,
		Error:     cause.Error(),
		Timestamp: p.now().UTC(),
	}
	return p.publish(ctx, symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.SyncEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
