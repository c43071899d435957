package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"plansift/internal/domain"
	"plansift/internal/port"
)

type objectRepo struct {
	db *sqlx.DB
}

// NewObjectRepo creates a PostgreSQL-backed ObjectRepository.
func NewObjectRepo(db *sqlx.DB) port.ObjectRepository {
	return &objectRepo{db: db}
}

// objectRow is the flat persistence shape of an ExtractedObject. The
// bbox keeps its uniform [x, y, w, h] JSON form in a jsonb column.
type objectRow struct {
	ID         string          `db:"id"`
	ProjectID  uuid.UUID       `db:"project_id"`
	PDFID      string          `db:"pdf_id"`
	PageID     string          `db:"page_id"`
	PageNumber int             `db:"page_number"`
	WidthPX    int             `db:"width_px"`
	HeightPX   int             `db:"height_px"`
	ObjectType string          `db:"object_type"`
	Label      string          `db:"label"`
	Name       string          `db:"name"`
	Number     string          `db:"number"`
	BBox       json.RawMessage `db:"bbox"`
	Confidence float64         `db:"confidence"`
	Provenance json.RawMessage `db:"provenance"`
	RunID      uuid.UUID       `db:"run_id"`
	CreatedAt  sql.NullTime    `db:"created_at"`
}

func toRow(obj *domain.ExtractedObject) (*objectRow, error) {
	bbox, err := domain.MarshalBBox(obj.BBox)
	if err != nil {
		return nil, fmt.Errorf("marshaling bbox: %w", err)
	}
	provenance, err := json.Marshal(obj.Provenance)
	if err != nil {
		return nil, fmt.Errorf("marshaling provenance: %w", err)
	}
	return &objectRow{
		ID:         obj.ID,
		ProjectID:  obj.Page.ProjectID,
		PDFID:      obj.Page.PDFID,
		PageID:     obj.Page.PageID,
		PageNumber: obj.Page.Number,
		WidthPX:    obj.Page.WidthPX,
		HeightPX:   obj.Page.HeightPX,
		ObjectType: string(obj.Type),
		Label:      obj.Label,
		Name:       obj.Name,
		Number:     obj.Number,
		BBox:       bbox,
		Confidence: obj.Confidence,
		Provenance: provenance,
		RunID:      obj.RunID,
		CreatedAt:  sql.NullTime{Time: obj.CreatedAt, Valid: !obj.CreatedAt.IsZero()},
	}, nil
}

func (r *objectRow) toDomain() (*domain.ExtractedObject, error) {
	var bbox domain.BBox
	if err := json.Unmarshal(r.BBox, &bbox); err != nil {
		return nil, fmt.Errorf("unmarshaling bbox for %s: %w", r.ID, err)
	}
	var provenance []string
	if len(r.Provenance) > 0 {
		if err := json.Unmarshal(r.Provenance, &provenance); err != nil {
			return nil, fmt.Errorf("unmarshaling provenance for %s: %w", r.ID, err)
		}
	}
	return &domain.ExtractedObject{
		ID: r.ID,
		Page: domain.PageRef{
			ProjectID: r.ProjectID,
			PDFID:     r.PDFID,
			PageID:    r.PageID,
			Number:    r.PageNumber,
			WidthPX:   r.WidthPX,
			HeightPX:  r.HeightPX,
		},
		Type:       domain.ObjectType(r.ObjectType),
		Label:      r.Label,
		Name:       r.Name,
		Number:     r.Number,
		BBox:       bbox,
		Confidence: r.Confidence,
		Provenance: provenance,
		RunID:      r.RunID,
		CreatedAt:  r.CreatedAt.Time,
	}, nil
}

// ReplacePage deletes the page's previous objects and inserts the new
// set in one transaction. Content-addressed IDs make the insert an
// upsert; a duplicate ID from hash truncation is last-write-wins.
func (r *objectRepo) ReplacePage(ctx context.Context, page domain.PageRef, objects []domain.ExtractedObject) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("objectRepo.ReplacePage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM extracted_objects WHERE project_id = $1 AND page_id = $2",
		page.ProjectID, page.PageID)
	if err != nil {
		return fmt.Errorf("objectRepo.ReplacePage: delete: %w", err)
	}

	const insert = `INSERT INTO extracted_objects (
		id, project_id, pdf_id, page_id, page_number, width_px, height_px,
		object_type, label, name, number, bbox, confidence, provenance,
		run_id, created_at
	) VALUES (
		:id, :project_id, :pdf_id, :page_id, :page_number, :width_px, :height_px,
		:object_type, :label, :name, :number, :bbox, :confidence, :provenance,
		:run_id, :created_at
	) ON CONFLICT (id) DO UPDATE SET
		bbox = EXCLUDED.bbox,
		confidence = EXCLUDED.confidence,
		provenance = EXCLUDED.provenance,
		run_id = EXCLUDED.run_id,
		created_at = EXCLUDED.created_at`

	for i := range objects {
		row, err := toRow(&objects[i])
		if err != nil {
			return fmt.Errorf("objectRepo.ReplacePage: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			return fmt.Errorf("objectRepo.ReplacePage: insert %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("objectRepo.ReplacePage: commit: %w", err)
	}
	return nil
}

func (r *objectRepo) GetByID(ctx context.Context, projectID uuid.UUID, id string) (*domain.ExtractedObject, error) {
	var row objectRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM extracted_objects WHERE project_id = $1 AND id = $2",
		projectID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("objectRepo.GetByID: %w", err)
	}
	return row.toDomain()
}

func (r *objectRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ExtractedObject, error) {
	var rows []objectRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM extracted_objects WHERE project_id = $1 ORDER BY id",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("objectRepo.ListByProject: %w", err)
	}
	return rowsToDomain(rows)
}

func (r *objectRepo) ListByPage(ctx context.Context, projectID uuid.UUID, pageID string) ([]domain.ExtractedObject, error) {
	var rows []objectRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM extracted_objects WHERE project_id = $1 AND page_id = $2 ORDER BY id",
		projectID, pageID)
	if err != nil {
		return nil, fmt.Errorf("objectRepo.ListByPage: %w", err)
	}
	return rowsToDomain(rows)
}

func rowsToDomain(rows []objectRow) ([]domain.ExtractedObject, error) {
	out := make([]domain.ExtractedObject, 0, len(rows))
	for i := range rows {
		obj, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, *obj)
	}
	return out, nil
}
