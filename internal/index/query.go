package index

import (
	"sort"

	"plansift/internal/domain"
)

// Match reasons reported per object id.
const (
	ReasonRoomNumberMatch = "room_number_match"
	ReasonRoomNameMatch   = "room_name_match"
	ReasonTypeMatch       = "type_match"
	ReasonUniqueMatch     = "unique_match"
)

// Resolution is the raw outcome of resolving criteria against an index.
type Resolution struct {
	IDs       []string
	Ambiguous bool
	Reasons   map[string][]string
}

// Resolve unions the ids matching any supplied criterion (OR semantics).
// More than one match sets Ambiguous; the resolver never tie-breaks by
// recency or confidence — callers must handle multiplicity explicitly.
func Resolve(idx *domain.Index, criteria domain.QueryCriteria) Resolution {
	reasons := make(map[string][]string)

	collect := func(ids []string, reason string) {
		for _, id := range ids {
			reasons[id] = append(reasons[id], reason)
		}
	}

	if criteria.RoomNumber != nil {
		collect(idx.ByNumber[*criteria.RoomNumber], ReasonRoomNumberMatch)
	}
	if criteria.RoomName != nil {
		collect(idx.ByName[*criteria.RoomName], ReasonRoomNameMatch)
	}
	if criteria.Type != nil {
		collect(idx.ByType[*criteria.Type], ReasonTypeMatch)
	}

	ids := make([]string, 0, len(reasons))
	for id := range reasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) == 1 {
		reasons[ids[0]] = append(reasons[ids[0]], ReasonUniqueMatch)
	}

	return Resolution{
		IDs:       ids,
		Ambiguous: len(ids) > 1,
		Reasons:   reasons,
	}
}
