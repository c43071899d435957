// Package index builds per-project reverse lookup maps over extracted
// objects and resolves queries against them without ever collapsing
// ambiguity: identical printed text in different visual contexts stays
// distinct, and multi-match lookups are reported as ambiguous.
package index

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"plansift/internal/domain"
)

// Build constructs the three lookup maps in a single pass. Ids within
// each entry are sorted so rebuilds are byte-stable. The result fully
// replaces any previous index for the project.
func Build(projectID uuid.UUID, objects []domain.ExtractedObject) *domain.Index {
	idx := domain.NewIndex(projectID)
	for i := range objects {
		obj := &objects[i]
		if number := strings.TrimSpace(obj.Number); number != "" {
			idx.ByNumber[number] = append(idx.ByNumber[number], obj.ID)
		}
		if name := strings.TrimSpace(obj.Name); name != "" {
			idx.ByName[name] = append(idx.ByName[name], obj.ID)
		}
		idx.ByType[string(obj.Type)] = append(idx.ByType[string(obj.Type)], obj.ID)
	}
	for _, m := range []map[string][]string{idx.ByNumber, idx.ByName, idx.ByType} {
		for k := range m {
			sort.Strings(m[k])
		}
	}
	return idx
}
