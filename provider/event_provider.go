package provider

import (
	"context"
	"fmt"

	"github.com/Digital-Creators-Team/lucky-draw-module/pkg/providers"
	"github.com/rs/zerolog"
)

// Publisher is the part of the Kafka producer the event provider needs.
type Publisher interface {
	Publish(topic, key string, value interface{}) error
}

// AuditEvent is the Kafka envelope of a reel event.
type AuditEvent struct {
	SourceService string               `json:"source_service"`
	Action        string               `json:"action"`
	OperatorID    string               `json:"operator_id,omitempty"`
	TraceID       string               `json:"trace_id,omitempty"`
	Result        string               `json:"result"`
	Details       *providers.ReelEvent `json:"details"`
}

// KafkaEventProvider implements providers.EventProvider using Kafka.
// Events are keyed by reel code so one reel's events stay ordered.
type KafkaEventProvider struct {
	producer Publisher
	topic    string
	service  string
	logger   zerolog.Logger
}

// NewKafkaEventProvider creates a Kafka event provider.
func NewKafkaEventProvider(producer Publisher, topic, service string, logger zerolog.Logger) *KafkaEventProvider {
	if service == "" {
		service = "lucky-draw"
	}
	return &KafkaEventProvider{
		producer: producer,
		topic:    topic,
		service:  service,
		logger:   logger.With().Str("component", "event_provider").Logger(),
	}
}

// Publish queues ev on the events topic.
func (p *KafkaEventProvider) Publish(_ context.Context, ev *providers.ReelEvent) error {
	if p.producer == nil {
		p.logger.Warn().Msg("Kafka producer not configured, skipping reel event")
		return nil
	}

	audit := AuditEvent{
		SourceService: p.service,
		Action:        ev.Type,
		TraceID:       ev.ID,
		Result:        "success",
		Details:       ev,
	}
	if ev.ErrorCode != 0 {
		audit.Result = "failed"
	}
	if ev.Operator != nil {
		audit.OperatorID = ev.Operator.ID
	}

	if err := p.producer.Publish(p.topic, ev.ReelCode, audit); err != nil {
		p.logger.Error().Err(err).Str("type", ev.Type).Msg("Failed to send reel event to Kafka")
		return fmt.Errorf("failed to publish reel event: %w", err)
	}
	return nil
}
