package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"staybook/internal/app/policies"
	"staybook/internal/domain/shared/events"
	"staybook/internal/infra/obs"
)

const (
	HeaderEventName   = "event_name"
	HeaderRequestID   = "request_id"
	HeaderContentType = "content_type"
)

type sender interface {
	Send(ctx context.Context, r Record) (Delivery, error)
}

// Notifier publishes domain events to a single topic, keyed by aggregate id
// so every event of one booking lands on the same partition.
type Notifier struct {
	Producer sender
	Topic    string
	Logger   *slog.Logger
}

func (n Notifier) Notify(ctx context.Context, event events.DomainEvent) error {
	if n.Producer == nil {
		return errors.New("kafka: producer not configured")
	}
	if event == nil {
		return errors.New("kafka: nil event")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", event.EventName(), err)
	}
	headers := map[string]string{
		HeaderEventName:   event.EventName(),
		HeaderContentType: "application/json",
	}
	if id := obs.RequestIDFromContext(ctx); id != "" {
		headers[HeaderRequestID] = id
	}
	d, err := n.Producer.Send(ctx, Record{
		Topic:   n.Topic,
		Key:     event.AggregateID(),
		Value:   payload,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("kafka: publish %s: %w", event.EventName(), err)
	}
	if n.Logger != nil {
		n.Logger.Debug("event published", "event", event.EventName(), "key", event.AggregateID(), "partition", d.Partition, "offset", d.Offset)
	}
	return nil
}

var _ policies.Notifier = Notifier{}
