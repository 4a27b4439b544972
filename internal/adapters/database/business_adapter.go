package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	"github.com/nearspot/business-discovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
)

const businessColumns = "id, name, category, tags, latitude, longitude, rating, review_count, is_active, created_at, updated_at"

// BusinessAdapter implements the BusinessRepository interface
type BusinessAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBusinessAdapter creates a new business adapter
func NewBusinessAdapter(client *postgres.Client) repositories.BusinessRepository {
	return &BusinessAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a business by ID
func (a *BusinessAdapter) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	query, args, err := a.selectBusinesses().
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	business, err := a.scanBusiness(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("business with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get business", err)
	}
	return business, nil
}

// GetByIDs retrieves several businesses at once; missing IDs are omitted
func (a *BusinessAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Business, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := a.selectBusinesses().
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryBusinesses(ctx, query, args...)
}

// List retrieves businesses matching the filter
func (a *BusinessAdapter) List(ctx context.Context, filter repositories.BusinessFilter) ([]*entities.Business, error) {
	ds := a.selectBusinesses()

	if filter.Category != "" {
		ds = ds.Where(goqu.L("LOWER(category)").Eq(strings.ToLower(filter.Category)))
	}
	if filter.IsActive != nil {
		ds = ds.Where(goqu.Ex{"is_active": *filter.IsActive})
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.Order(goqu.I("name").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	businesses, err := a.queryBusinesses(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	// Tag filtering is done in-process: tags are stored as a comma
	// separated text column, matching the upstream dataset.
	if len(filter.Tags) > 0 {
		filtered := businesses[:0]
		for _, b := range businesses {
			if matchesAnyTag(b.Tags, filter.Tags) {
				filtered = append(filtered, b)
			}
		}
		businesses = filtered
	}

	return businesses, nil
}

// Upsert inserts or updates a business record
func (a *BusinessAdapter) Upsert(ctx context.Context, business *entities.Business) error {
	now := time.Now()
	if business.CreatedAt.IsZero() {
		business.CreatedAt = now
	}
	business.UpdatedAt = now

	record := goqu.Record{
		"id":           business.ID,
		"name":         business.Name,
		"category":     business.Category,
		"tags":         strings.Join(business.Tags, ","),
		"latitude":     business.Location.Latitude,
		"longitude":    business.Location.Longitude,
		"rating":       business.Rating,
		"review_count": business.ReviewCount,
		"is_active":    business.IsActive,
		"created_at":   business.CreatedAt,
		"updated_at":   business.UpdatedAt,
	}

	query, args, err := a.db.Insert("businesses").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to upsert business", err)
	}
	return nil
}

func (a *BusinessAdapter) selectBusinesses() *goqu.SelectDataset {
	return a.db.Select(
		"id", "name", "category", "tags", "latitude", "longitude",
		"rating", "review_count", "is_active", "created_at", "updated_at",
	).From("businesses")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *BusinessAdapter) scanBusiness(row rowScanner) (*entities.Business, error) {
	business := &entities.Business{}
	var tags sql.NullString

	err := row.Scan(
		&business.ID,
		&business.Name,
		&business.Category,
		&tags,
		&business.Location.Latitude,
		&business.Location.Longitude,
		&business.Rating,
		&business.ReviewCount,
		&business.IsActive,
		&business.CreatedAt,
		&business.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tags.Valid && tags.String != "" {
		business.Tags = splitTags(tags.String)
	}
	return business, nil
}

func (a *BusinessAdapter) queryBusinesses(ctx context.Context, query string, args ...interface{}) ([]*entities.Business, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query businesses", err)
	}
	defer rows.Close()

	var businesses []*entities.Business
	for rows.Next() {
		business, err := a.scanBusiness(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan business", err)
		}
		businesses = append(businesses, business)
	}
	return businesses, nil
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func matchesAnyTag(tags []string, wanted []string) bool {
	for _, tag := range tags {
		for _, w := range wanted {
			if strings.EqualFold(tag, w) {
				return true
			}
		}
	}
	return false
}
