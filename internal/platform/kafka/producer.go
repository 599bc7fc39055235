// Package kafka publishes pipeline events to a Kafka topic. Delivery is
// best-effort: the primary aggregate write has already succeeded when an
// event is emitted, and the pipeline makes no exactly-once promises to
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"talentgate/internal/platform/config"
	audit "talentgate/pkg/platform/audit"
)

// Producer implements audit.Publisher over a Kafka topic.
type Producer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewProducer builds a Kafka producer from configuration.
// Returns nil if no brokers are configured (Kafka not in use).
func NewProducer(cfg config.Kafka, logger *slog.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	return &Producer{client: client, topic: cfg.Topic, logger: logger}, nil
}

type eventPayload struct {
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	CandidateID string `json:"candidate_id,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Action      string `json:"action"`
	ActorID     string `json:"actor_id,omitempty"`
	Decision    string `json:"decision,omitempty"`
	Reason      string `json:"reason,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// Emit publishes an event keyed by candidate ID so per-candidate ordering is
// preserved within a partition. Produce errors are logged, never returned to
// the request path.
func (p *Producer) Emit(ctx context.Context, event audit.Event) error {
	payload := eventPayload{
		Category:    string(audit.AuditEvent(event.Action).Category()),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		CandidateID: event.CandidateID,
		Subject:     event.Subject,
		Action:      event.Action,
		ActorID:     event.ActorID,
		Decision:    event.Decision,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal pipeline event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.CandidateID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("pipeline event publish failed",
				"action", event.Action,
				"candidate_id", event.CandidateID,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (p *Producer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
