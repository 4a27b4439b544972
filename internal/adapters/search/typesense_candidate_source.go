package search

import (
	"context"
	"fmt"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/providers"
	tsclient "github.com/nearspot/business-discovery/internal/infrastructure/clients/typesense"
	"github.com/nearspot/business-discovery/pkg/geo"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

// TypesenseCandidateSource implements the external retrieval boundary:
// it turns a free-text query into a raw candidate list carrying a base
// relevance per hit. The scoring engine never looks inside Typesense
// scores beyond this mapping.
type TypesenseCandidateSource struct {
	client *tsclient.Client
}

var _ providers.CandidateSource = (*TypesenseCandidateSource)(nil)

// NewTypesenseCandidateSource creates a new Typesense candidate source
func NewTypesenseCandidateSource(client *tsclient.Client) *TypesenseCandidateSource {
	return &TypesenseCandidateSource{client: client}
}

// Index upserts a business document into the search collection.
func (s *TypesenseCandidateSource) Index(ctx context.Context, business *entities.Business) error {
	document := map[string]interface{}{
		"id":           business.ID,
		"name":         business.Name,
		"category":     business.Category,
		"tags":         business.Tags,
		"is_active":    business.IsActive,
		"location":     []float64{business.Location.Latitude, business.Location.Longitude},
		"rating":       business.Rating,
		"review_count": business.ReviewCount,
		"created_at":   business.CreatedAt.Unix(),
	}

	_, err := s.client.Client().Collection(tsclient.BusinessesCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to index business %s", business.ID), err)
	}
	return nil
}

// Delete removes a business from the search collection.
func (s *TypesenseCandidateSource) Delete(ctx context.Context, id string) error {
	_, err := s.client.Client().Collection(tsclient.BusinessesCollection).Document(id).Delete(ctx)
	if err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to delete business %s from index", id), err)
	}
	return nil
}

// Search retrieves candidates for a query around a location.
func (s *TypesenseCandidateSource) Search(ctx context.Context, query string, location entities.Location, radiusKm float64, limit int) ([]entities.Candidate, error) {
	if limit <= 0 {
		limit = 20
	}

	q := query
	if q == "" {
		q = "*"
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(q),
		QueryBy:  pointer.String("name,category,tags"),
		FilterBy: pointer.String(fmt.Sprintf("is_active:=true && location:(%f, %f, %f km)", location.Latitude, location.Longitude, radiusKm)),
		SortBy:   pointer.String(fmt.Sprintf("location(%f, %f):asc", location.Latitude, location.Longitude)),
		PerPage:  pointer.Int(limit),
	}

	result, err := s.client.Client().Collection(tsclient.BusinessesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search candidates", err)
	}

	if result.Hits == nil {
		return nil, nil
	}

	candidates := make([]entities.Candidate, 0, len(*result.Hits))
	for rank, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		candidate := entities.Candidate{
			// Base relevance keeps the retrieval ordering: lower is
			// more relevant, so rank position serves directly.
			BaseRelevance: float64(rank + 1),
		}
		if id, ok := doc["id"].(string); ok {
			candidate.BusinessID = id
		}
		if name, ok := doc["name"].(string); ok {
			candidate.Name = name
		}
		if category, ok := doc["category"].(string); ok {
			candidate.Category = category
		}
		if rawTags, ok := doc["tags"].([]interface{}); ok {
			for _, t := range rawTags {
				if tag, ok := t.(string); ok {
					candidate.Tags = append(candidate.Tags, tag)
				}
			}
		}
		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			if lat, ok := loc[0].(float64); ok {
				candidate.Location.Latitude = lat
			}
			if lng, ok := loc[1].(float64); ok {
				candidate.Location.Longitude = lng
			}
			candidate.DistanceKm = geo.Distance(
				location.Latitude, location.Longitude,
				candidate.Location.Latitude, candidate.Location.Longitude,
			)
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}
