package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plansift/internal/domain"
	"plansift/internal/index"
	"plansift/internal/port"
)

// QueryService resolves lookups against a project's rebuilt indices.
// Business-logic non-matches are never hard failures: a project with no
// index or criteria matching nothing both yield an empty result.
type QueryService struct {
	objects port.ObjectRepository
	indices port.IndexRepository
	logger  *zap.Logger
}

// NewQueryService creates a QueryService.
func NewQueryService(objects port.ObjectRepository, indices port.IndexRepository, logger *zap.Logger) *QueryService {
	return &QueryService{objects: objects, indices: indices, logger: logger}
}

// Query unions objects matching any supplied criterion. When more than
// one object matches, Ambiguous is set and every match is returned —
// objects sharing a printed number in different visual contexts are
// surfaced together, never silently collapsed.
func (s *QueryService) Query(ctx context.Context, projectID uuid.UUID, criteria domain.QueryCriteria) (*domain.QueryResult, error) {
	empty := &domain.QueryResult{Matches: []domain.ExtractedObject{}, Reasons: map[string][]string{}}
	if criteria.Empty() {
		return empty, nil
	}

	idx, err := s.indices.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			s.logger.Debug("no index for project", zap.Stringer("project_id", projectID))
			return empty, nil
		}
		return nil, fmt.Errorf("queryService.Query: %w", err)
	}

	res := index.Resolve(idx, criteria)

	matches := make([]domain.ExtractedObject, 0, len(res.IDs))
	for _, id := range res.IDs {
		obj, err := s.objects.GetByID(ctx, projectID, id)
		if err != nil {
			if errors.Is(err, domain.ErrObjectNotFound) {
				// Index and store can skew if a run is interrupted
				// between page replace and index rebuild; the next run
				// heals it.
				s.logger.Warn("indexed object missing from store",
					zap.Stringer("project_id", projectID),
					zap.String("object_id", id))
				continue
			}
			return nil, fmt.Errorf("queryService.Query: %w", err)
		}
		matches = append(matches, *obj)
	}

	return &domain.QueryResult{
		Matches:   matches,
		Ambiguous: res.Ambiguous,
		Reasons:   res.Reasons,
	}, nil
}
