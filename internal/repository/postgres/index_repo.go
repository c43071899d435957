package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"plansift/internal/domain"
	"plansift/internal/port"
)

type indexRepo struct {
	db *sqlx.DB
}

// NewIndexRepo creates a PostgreSQL-backed IndexRepository.
func NewIndexRepo(db *sqlx.DB) port.IndexRepository {
	return &indexRepo{db: db}
}

const (
	kindNumber = "number"
	kindName   = "name"
	kindType   = "type"
)

type indexRow struct {
	ProjectID uuid.UUID       `db:"project_id"`
	Kind      string          `db:"kind"`
	Key       string          `db:"key"`
	ObjectIDs json.RawMessage `db:"object_ids"`
}

// Replace swaps out a project's index entries in one transaction.
// Indices are rebuilt wholesale each run; there is no incremental merge.
func (r *indexRepo) Replace(ctx context.Context, idx *domain.Index) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("indexRepo.Replace: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM project_index_entries WHERE project_id = $1", idx.ProjectID)
	if err != nil {
		return fmt.Errorf("indexRepo.Replace: delete: %w", err)
	}

	const insert = `INSERT INTO project_index_entries (project_id, kind, key, object_ids)
		VALUES ($1, $2, $3, $4)`

	writeMap := func(kind string, m map[string][]string) error {
		for key, ids := range m {
			payload, err := json.Marshal(ids)
			if err != nil {
				return fmt.Errorf("marshaling ids for %s/%s: %w", kind, key, err)
			}
			if _, err := tx.ExecContext(ctx, insert, idx.ProjectID, kind, key, payload); err != nil {
				return fmt.Errorf("insert %s/%s: %w", kind, key, err)
			}
		}
		return nil
	}

	if err := writeMap(kindNumber, idx.ByNumber); err != nil {
		return fmt.Errorf("indexRepo.Replace: %w", err)
	}
	if err := writeMap(kindName, idx.ByName); err != nil {
		return fmt.Errorf("indexRepo.Replace: %w", err)
	}
	if err := writeMap(kindType, idx.ByType); err != nil {
		return fmt.Errorf("indexRepo.Replace: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("indexRepo.Replace: commit: %w", err)
	}
	return nil
}

func (r *indexRepo) Get(ctx context.Context, projectID uuid.UUID) (*domain.Index, error) {
	var rows []indexRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT project_id, kind, key, object_ids FROM project_index_entries WHERE project_id = $1",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("indexRepo.Get: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrIndexNotFound
	}

	idx := domain.NewIndex(projectID)
	for _, row := range rows {
		var ids []string
		if err := json.Unmarshal(row.ObjectIDs, &ids); err != nil {
			return nil, fmt.Errorf("indexRepo.Get: unmarshaling %s/%s: %w", row.Kind, row.Key, err)
		}
		switch row.Kind {
		case kindNumber:
			idx.ByNumber[row.Key] = ids
		case kindName:
			idx.ByName[row.Key] = ids
		case kindType:
			idx.ByType[row.Key] = ids
		}
	}
	return idx, nil
}
