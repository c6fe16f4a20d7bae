package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

type SyncProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewSyncProducer connects a sarama producer that waits for every
// in-sync replica.
func NewSyncProducer(brokers []string, topic string) (*SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return WrapSyncProducer(producer, topic), nil
}

// WrapSyncProducer adapts an existing sarama producer.
func WrapSyncProducer(p sarama.SyncProducer, topic string) *SyncProducer {
	return &SyncProducer{producer: p, topic: topic}
}

// Publish sends one message. sarama has no per-call context, so ctx is
// only checked before sending.
func (p *SyncProducer) Publish(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return err
}

func (p *SyncProducer) Close() error {
	return p.producer.Close()
}
