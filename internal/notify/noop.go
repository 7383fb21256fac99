package notify

import (
	"context"
	"log/slog"

	"github.com/donaldgifford/cartsync/internal/events"
)

// NoOpNotifier implements Notifier by logging discarded events. It is used
// when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards events with a log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Send logs and discards an event.
func (n *NoOpNotifier) Send(_ context.Context, ev events.Event) error {
	n.log.Debug("notification discarded (no backend configured)",
		"kind", ev.Kind,
		"mini_cart_id", ev.MiniCartID,
	)
	return nil
}
