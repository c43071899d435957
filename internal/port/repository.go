package port

import (
	"context"

	"github.com/google/uuid"

	"plansift/internal/domain"
)

// ObjectRepository defines the contract for extracted object persistence.
// IDs are content addresses, so ReplacePage is an idempotent upsert:
// re-running a page writes the same rows and a crashed run can simply be
// re-run. Hash collisions are last-write-wins.
type ObjectRepository interface {
	ReplacePage(ctx context.Context, page domain.PageRef, objects []domain.ExtractedObject) error
	GetByID(ctx context.Context, projectID uuid.UUID, id string) (*domain.ExtractedObject, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ExtractedObject, error)
	ListByPage(ctx context.Context, projectID uuid.UUID, pageID string) ([]domain.ExtractedObject, error)
}

// IndexRepository defines the contract for project index persistence.
// Indices are rebuilt wholesale per run and replaced, never merged.
type IndexRepository interface {
	Replace(ctx context.Context, idx *domain.Index) error
	Get(ctx context.Context, projectID uuid.UUID) (*domain.Index, error)
}
