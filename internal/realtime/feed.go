package realtime

import (
	"context"

	"assetbook/pkg/kafka"
	"assetbook/pkg/logger"
	"assetbook/pkg/model"
)

const feedSource = "assetbook"

// ChangeFeed tees committed usage changes onto a Kafka topic for external
// consumers (audit, sync). Keyed by asset id so one asset's events stay in
// commit order on a single partition. Best-effort, like the live fan-out.
type ChangeFeed struct {
	producer *kafka.Producer
}

func NewChangeFeed(brokers []string, topic string, log *logger.Logger) (*ChangeFeed, error) {
	producer, err := kafka.NewProducer(brokers, topic, log)
	if err != nil {
		return nil, err
	}
	return &ChangeFeed{producer: producer}, nil
}

func (f *ChangeFeed) Publish(ctx context.Context, assetID string, change model.UsageChange) error {
	msg := kafka.NewMessage().
		WithKey(assetID).
		WithValue(change).
		WithEventType("usage." + change.Action).
		WithSource(feedSource).
		Build()

	return f.producer.Publish(ctx, msg)
}

func (f *ChangeFeed) Close() error {
	return f.producer.Close()
}
