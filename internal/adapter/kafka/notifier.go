package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/marine-obs-maps/internal/config"
	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/observability"
)

// publishBatchTimeout bounds how long a lone artifact message waits for
// companions before the writer flushes it.
const publishBatchTimeout = 10 * time.Millisecond

// Notifier announces saved map images on a Kafka topic.
// It implements pipeline.Notifier.
type Notifier struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewNotifier creates a Kafka producer for the configured artifact topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Notifier {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaArtifactTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           publishBatchTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Notifier{writer: w, logger: logger, metrics: metrics}
}

// Publish writes one artifact message, keyed by its output path so updates
// to the same image land on the same partition.
func (n *Notifier) Publish(ctx context.Context, a domain.Artifact) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		n.metrics.NotificationsPublished.WithLabelValues("error").Inc()
		return err
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.metrics.NotificationsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish artifact %s: %w", a.Path, err)
	}
	n.metrics.NotificationsPublished.WithLabelValues("success").Inc()
	n.logger.Debug("artifact published", "topic", n.writer.Topic, "path", a.Path)
	return nil
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals an Artifact into a Kafka message.
func serializeToMessage(a domain.Artifact) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize artifact: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.Path),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(a.Kind)},
			{Key: "rendered_at", Value: []byte(a.RenderedAt.Format(time.RFC3339))},
		},
	}, nil
}
