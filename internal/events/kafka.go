package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"log/slog"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/hostline/hostbot/core/logger"
)

// KafkaPublisher publishes order events through a synchronous sarama producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a sync producer that waits for all replicas to
// acknowledge each message.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	if topic == "" {
		topic = TopicOrderCreated
	}

	logger.EVT.Info("kafka producer ready",
		slog.String("event", "connect"),
		slog.String("brokers", logger.Sanitize(fmt.Sprintf("%v", brokers))),
		slog.String("topic", topic),
	)

	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

// PublishOrderCreated sends the event keyed by order id so messages for the
// same order land on one partition in order.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, evt OrderCreated) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(evt.OrderID, 10)),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}

	logger.Debug(ctx, "events", "order_created.published",
		slog.String("topic", p.topic),
		slog.Int64("order_id", evt.OrderID),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

// Close shuts the underlying producer down.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
