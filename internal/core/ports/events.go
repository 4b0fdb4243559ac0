package ports

import (
	"context"

	"github.com/farmguardian/farm-guardian/internal/core/domain"
)

// EventPublisher delivers a domain event to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// EventEmitter accepts events without blocking the caller on delivery.
type EventEmitter interface {
	Emit(event domain.Event)
}
