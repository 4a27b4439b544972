package providers

import (
	"context"

	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// EventBus broadcasts recorded interactions to downstream consumers
// (trend aggregation, analytics) off the scoring path.
type EventBus interface {
	Publish(ctx context.Context, channel string, interaction *entities.Interaction) error
	Subscribe(ctx context.Context, channel string) (<-chan *entities.Interaction, error)
	Close() error
}
