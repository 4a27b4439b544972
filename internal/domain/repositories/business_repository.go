package repositories

import (
	"context"

	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// BusinessFilter holds filtering options for listing businesses
type BusinessFilter struct {
	Category string
	Tags     []string
	IsActive *bool
	Limit    int
	Offset   int
}

// BusinessRepository is the persistent record store for business
// metadata, consulted when candidates arrive without category/tags.
type BusinessRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Business, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error)
	List(ctx context.Context, filter BusinessFilter) ([]*entities.Business, error)
	Upsert(ctx context.Context, business *entities.Business) error
}
