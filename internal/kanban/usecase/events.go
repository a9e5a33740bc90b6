package usecase

import (
	"context"

	log "github.com/sirupsen/logrus"

	"kanladin-backend/pkg/events"
)

// notifier publishes change events; failures never fail the mutation
type notifier struct {
	pub events.Publisher
}

func newNotifier(pub events.Publisher) notifier {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return notifier{pub: pub}
}

func (n notifier) emit(ctx context.Context, eventType, id string, payload interface{}) {
	if err := n.pub.Publish(ctx, events.Event{Type: eventType, ID: id, Payload: payload}); err != nil {
		log.WithFields(log.Fields{
			"component": "events",
			"event":     eventType,
			"id":        id,
		}).Warnf("failed to publish event: %v", err)
	}
}
