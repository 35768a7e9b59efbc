package repository

import (
	"context"

	"MarketBoard/internal/domain/models"
	"MarketBoard/internal/domain/repository"
	pkgkafka "MarketBoard/pkg/kafka"
)

// KafkaSnapshotPublisher fans refreshed snapshots out on a topic, one
// message per instrument keyed by symbol so downstream consumers partition
// naturally.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSnapshotPublisher creates a Kafka snapshot publisher.
func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.SnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil || len(snap.Data) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(snap.Data))
	for _, m := range snap.Data {
		last, ok := m.LastRecord()
		if !ok {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{
			Key: []byte(m.Symbol),
			Value: map[string]interface{}{
				"symbol":      m.Symbol,
				"description": m.Description,
				"fetched_at":  snap.FetchedAt,
				"last":        last,
			},
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSnapshotPublisher) Close() error {
	return p.producer.Close()
}
