// Package notifier adapts external event sinks to the LedgerEventNotifier
// port. Delivery is best effort everywhere; a failed notification never
// blocks a ledger operation.
package notifier

import (
	"context"
	"log/slog"

	portssvc "github.com/bankchen1/fo3-ledger-core/internal/core/ports/services"
	"github.com/posthog/posthog-go"
)

// PosthogNotifier publishes ledger events to PostHog. A nil inner client
// (empty API key or failed setup) turns every call into a no-op, so callers
// never need to guard against a missing sink.
type PosthogNotifier struct {
	client posthog.Client
	logger *slog.Logger
}

var _ portssvc.LedgerEventNotifier = (*PosthogNotifier)(nil)

// NewPosthogNotifier creates a notifier for the given API key. An empty key
// returns a disabled notifier.
func NewPosthogNotifier(apiKey string, logger *slog.Logger) *PosthogNotifier {
	n := &PosthogNotifier{logger: logger}
	if apiKey == "" {
		logger.Warn("PostHog API key is empty, ledger event notifications are disabled")
		return n
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: "https://eu.i.posthog.com"})
	if err != nil {
		logger.Error("Failed to initialize PostHog client, notifications are disabled", slog.String("error", err.Error()))
		return n
	}
	n.client = client
	return n
}

// Notify enqueues the event with the caller as the distinct ID.
func (n *PosthogNotifier) Notify(_ context.Context, userID string, event string, properties map[string]any) {
	if n.client == nil {
		return
	}
	err := n.client.Enqueue(posthog.Capture{
		DistinctId: userID,
		Event:      event,
		Properties: properties,
	})
	if err != nil && n.logger != nil {
		n.logger.Warn("Failed to enqueue ledger event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Close flushes buffered events and releases the client.
func (n *PosthogNotifier) Close() error {
	if n.client == nil {
		return nil
	}
	return n.client.Close()
}
