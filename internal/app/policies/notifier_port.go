package policies

import (
	"context"

	"staybook/internal/domain/shared/events"
)

// Notifier publishes domain events to interested parties. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, event events.DomainEvent) error
}
