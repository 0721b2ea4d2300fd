package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"votecast/pkg/requestcontext"
)

// KafkaSink publishes security events to a Kafka topic for downstream SIEM
// consumers, in addition to whatever store the local publisher writes. Emit
// is fire-and-forget: a broker hiccup must never fail a vote or login, so
// produce errors are logged, not returned.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	next   Emitter
	logger *slog.Logger
}

// NewKafkaSink connects to the brokers, ensures the topic exists, and chains
// onto next so local persistence still happens.
func NewKafkaSink(ctx context.Context, brokers []string, topic string, next Emitter, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &KafkaSink{client: client, topic: topic, next: next, logger: logger}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	responses, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, response := range responses {
		if response.Err != nil && !errors.Is(response.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %q: %w", response.Topic, response.Err)
		}
	}
	return nil
}

func (s *KafkaSink) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Kind),
		Value: value,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil && s.logger != nil {
			s.logger.Warn("audit event produce failed", "kind", event.Kind, "error", err)
		}
	})

	if s.next != nil {
		return s.next.Emit(ctx, event)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (s *KafkaSink) Close(ctx context.Context) error {
	err := s.client.Flush(ctx)
	s.client.Close()
	return err
}
