// Package memory provides in-memory implementations of the object and
// index repositories, used in tests and single-process runs. Stores are
// explicit values owned by the caller, not process-wide singletons.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"plansift/internal/domain"
	"plansift/internal/port"
)

// ObjectStore is a mutex-guarded ObjectRepository.
type ObjectStore struct {
	mu sync.RWMutex
	// objects[projectID][objectID]
	objects map[uuid.UUID]map[string]domain.ExtractedObject
}

// NewObjectStore creates an empty ObjectStore.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[uuid.UUID]map[string]domain.ExtractedObject)}
}

var _ port.ObjectRepository = (*ObjectStore)(nil)

// ReplacePage swaps out every object previously stored for the page.
func (s *ObjectStore) ReplacePage(_ context.Context, page domain.PageRef, objects []domain.ExtractedObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := s.objects[page.ProjectID]
	if project == nil {
		project = make(map[string]domain.ExtractedObject)
		s.objects[page.ProjectID] = project
	}
	for id, obj := range project {
		if obj.Page.PageID == page.PageID {
			delete(project, id)
		}
	}
	for _, obj := range objects {
		project[obj.ID] = obj
	}
	return nil
}

func (s *ObjectStore) GetByID(_ context.Context, projectID uuid.UUID, id string) (*domain.ExtractedObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[projectID][id]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return &obj, nil
}

func (s *ObjectStore) ListByProject(_ context.Context, projectID uuid.UUID) ([]domain.ExtractedObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ExtractedObject, 0, len(s.objects[projectID]))
	for _, obj := range s.objects[projectID] {
		out = append(out, obj)
	}
	sortByID(out)
	return out, nil
}

func (s *ObjectStore) ListByPage(_ context.Context, projectID uuid.UUID, pageID string) ([]domain.ExtractedObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ExtractedObject
	for _, obj := range s.objects[projectID] {
		if obj.Page.PageID == pageID {
			out = append(out, obj)
		}
	}
	sortByID(out)
	return out, nil
}

func sortByID(objects []domain.ExtractedObject) {
	sort.Slice(objects, func(i, j int) bool { return objects[i].ID < objects[j].ID })
}

// IndexStore is a mutex-guarded IndexRepository.
type IndexStore struct {
	mu      sync.RWMutex
	indices map[uuid.UUID]*domain.Index
}

// NewIndexStore creates an empty IndexStore.
func NewIndexStore() *IndexStore {
	return &IndexStore{indices: make(map[uuid.UUID]*domain.Index)}
}

var _ port.IndexRepository = (*IndexStore)(nil)

// Replace installs a freshly built index, discarding the previous one.
func (s *IndexStore) Replace(_ context.Context, idx *domain.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[idx.ProjectID] = idx
	return nil
}

func (s *IndexStore) Get(_ context.Context, projectID uuid.UUID) (*domain.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indices[projectID]
	if !ok {
		return nil, domain.ErrIndexNotFound
	}
	return idx, nil
}
