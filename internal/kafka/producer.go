package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"chat-presence/internal/presence"
)

// NewSyncProducer builds a sarama producer tuned for small, ordered
// presence events. The hash partitioner keys on user ID so a single
// user's transitions stay in order on one partition.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "chat-presence"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return producer, nil
}

// StatusProducer publishes presence status updates to a kafka topic
// for downstream consumers. It implements presence.StatusPublisher.
type StatusProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewStatusProducer(producer sarama.SyncProducer, topic string) *StatusProducer {
	return &StatusProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *StatusProducer) PublishStatusUpdate(_ context.Context, update presence.StatusUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal status update: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(update.UserID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish status update: %w", err)
	}
	return nil
}

func (p *StatusProducer) Close() error {
	return p.producer.Close()
}
