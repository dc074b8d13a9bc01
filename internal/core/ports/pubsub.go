package ports

import (
	"context"

	"github.com/tdex-network/tdex-escrow/internal/core/domain"
)

// EventPublisher notifies external indexers about registry events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
