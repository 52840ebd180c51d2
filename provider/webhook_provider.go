package provider

import (
	"context"

	"github.com/Digital-Creators-Team/lucky-draw-module/errors"
	"github.com/Digital-Creators-Team/lucky-draw-module/httpclient"
	"github.com/Digital-Creators-Team/lucky-draw-module/pkg/providers"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// WebhookEventProvider implements providers.EventProvider by POSTing events
// to a URL. Only the configured event types are sent; spin.completed when
// none are configured.
type WebhookEventProvider struct {
	client *httpclient.Client
	events []string
	logger zerolog.Logger
}

// NewWebhookEventProvider creates a webhook provider posting to client's base URL.
func NewWebhookEventProvider(client *httpclient.Client, events []string, logger zerolog.Logger) *WebhookEventProvider {
	if len(events) == 0 {
		events = []string{reel.EventSpinCompleted}
	}
	return &WebhookEventProvider{
		client: client,
		events: lo.Uniq(events),
		logger: logger.With().Str("component", "webhook_provider").Logger(),
	}
}

// Accepts reports whether events of type t are sent.
func (p *WebhookEventProvider) Accepts(t string) bool {
	return lo.Contains(p.events, t)
}

// Publish posts ev when its type is accepted.
func (p *WebhookEventProvider) Publish(ctx context.Context, ev *providers.ReelEvent) error {
	if !p.Accepts(ev.Type) {
		return nil
	}

	headers := map[string]string{
		"X-Reel-Event": ev.Type,
		"X-Event-ID":   ev.ID,
	}
	if err := p.client.PostJSON(ctx, "", ev, headers, nil); err != nil {
		p.logger.Error().Err(err).Str("type", ev.Type).Str("reel_code", ev.ReelCode).Msg("Webhook delivery failed")
		return errors.Wrap(err, errors.ErrWebhookError, "webhook delivery failed")
	}
	return nil
}
