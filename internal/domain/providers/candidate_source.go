package providers

import (
	"context"

	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// CandidateSource is the external retrieval subsystem that supplies the
// initial candidate list with a base relevance per candidate (lower =
// more relevant). This engine never computes semantic relevance itself.
type CandidateSource interface {
	Search(ctx context.Context, query string, location entities.Location, radiusKm float64, limit int) ([]entities.Candidate, error)
}
