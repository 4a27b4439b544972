package repositories

import (
	"context"

	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// BusinessInteraction is the per-business view of the interaction log,
// used for neighbor discovery and popularity counting.
type BusinessInteraction struct {
	UserID    string  `json:"user_id"`
	Rating    float64 `json:"rating"`
	Timestamp int64   `json:"timestamp"`
}

// InteractionRepository is the append-only interaction log over the
// shared key-value backend. Record failures must never abort the
// caller's primary flow; callers treat them as soft failures.
type InteractionRepository interface {
	// Record appends an interaction. Idempotent per interaction ID.
	Record(ctx context.Context, interaction *entities.Interaction) error

	// History returns up to limit interactions for a user, most recent first.
	History(ctx context.Context, userID string, limit int) ([]*entities.Interaction, error)

	// UsersByBusiness returns the users who interacted with a business.
	UsersByBusiness(ctx context.Context, businessID string) ([]BusinessInteraction, error)

	// InteractionCount returns the global interaction count for a business.
	InteractionCount(ctx context.Context, businessID string) (int64, error)

	// IncrementTrend atomically bumps the decayed counter for a
	// normalized query. Intentionally additive under retries.
	IncrementTrend(ctx context.Context, query string) error

	// TopTrends returns the highest decayed counters, descending.
	TopTrends(ctx context.Context, limit int) ([]*entities.TrendCounter, error)
}
