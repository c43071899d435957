package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PageRef identifies a single floor-plan page within a project.
type PageRef struct {
	ProjectID uuid.UUID `db:"project_id" json:"project_id"`
	PDFID     string    `db:"pdf_id" json:"pdf_id"`
	PageID    string    `db:"page_id" json:"page_id"`
	Number    int       `db:"page_number" json:"page_number"`
	WidthPX   int       `db:"width_px" json:"width_px"`
	HeightPX  int       `db:"height_px" json:"height_px"`
}

// TextToken is a recognized text fragment with its bounding box.
// Tokens are immutable once produced by a provider.
type TextToken struct {
	Text       string      `json:"text"`
	BBox       BBox        `json:"bbox"`
	Confidence float64     `json:"confidence"`
	Source     TokenSource `json:"source"`
	Page       PageRef     `json:"page"`
}

// SyntheticBlock is a labeled region built from one or two paired tokens.
type SyntheticBlock struct {
	BBox         BBox     `json:"bbox"`
	Text         string   `json:"text"`
	NameValue    string   `json:"name_value"`
	NumberValue  *string  `json:"number_value,omitempty"`
	Confidence   float64  `json:"confidence"`
	Constituents []string `json:"constituents"`
}

// Paired reports whether the block carries both a name and a number token.
func (b *SyntheticBlock) Paired() bool {
	return b.NumberValue != nil
}

// ExtractedObject is a typed semantic object produced by an extraction run.
// Its ID is a content address: re-extracting the same object yields the
// same ID, so writes are idempotent upserts.
type ExtractedObject struct {
	ID         string     `db:"id" json:"id"`
	Page       PageRef    `json:"page"`
	Type       ObjectType `db:"object_type" json:"object_type"`
	Label      string     `db:"label" json:"label"`
	Name       string     `db:"name" json:"name"`
	Number     string     `db:"number" json:"number"`
	BBox       BBox       `db:"-" json:"bbox"`
	Confidence float64    `db:"confidence" json:"confidence"`
	Provenance []string   `db:"-" json:"provenance"`
	RunID      uuid.UUID  `db:"run_id" json:"run_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// ConfidenceLevel derives the three-tier level from the numeric confidence.
func (o *ExtractedObject) ConfidenceLevel() ConfidenceLevel {
	return LevelForConfidence(o.Confidence)
}

// Index holds the per-project reverse lookup maps. It is rebuilt wholesale
// on every extraction run; there is no incremental merge.
type Index struct {
	ProjectID uuid.UUID           `json:"project_id"`
	ByNumber  map[string][]string `json:"by_number"`
	ByName    map[string][]string `json:"by_name"`
	ByType    map[string][]string `json:"by_type"`
}

// NewIndex creates an empty index for a project.
func NewIndex(projectID uuid.UUID) *Index {
	return &Index{
		ProjectID: projectID,
		ByNumber:  make(map[string][]string),
		ByName:    make(map[string][]string),
		ByType:    make(map[string][]string),
	}
}

// QueryCriteria selects objects by any combination of printed number,
// printed name, and object type. Criteria combine with OR semantics.
type QueryCriteria struct {
	RoomNumber *string `json:"room_number,omitempty"`
	RoomName   *string `json:"room_name,omitempty"`
	Type       *string `json:"type,omitempty"`
}

// Empty reports whether no criterion is set.
func (c QueryCriteria) Empty() bool {
	return c.RoomNumber == nil && c.RoomName == nil && c.Type == nil
}

// QueryResult carries every matching object plus explainability reasons.
// Ambiguous is set whenever more than one object matches; the resolver
// never tie-breaks by recency or confidence.
type QueryResult struct {
	Matches   []ExtractedObject   `json:"matches"`
	Ambiguous bool                `json:"ambiguous"`
	Reasons   map[string][]string `json:"reasons"`
}

// ExtractionStats reports per-page observability counters.
type ExtractionStats struct {
	PageID          string `json:"page_id"`
	TokenCount      int    `json:"token_count"`
	MergedOut       int    `json:"merged_out"`
	BlockCount      int    `json:"block_count"`
	ObjectCount     int    `json:"object_count"`
	DroppedNameOnly int    `json:"dropped_name_only"`
	SkippedRules    int    `json:"skipped_rules"`
}

// MarshalBBox encodes a bbox for persistence; kept beside the model so the
// storage format stays uniform across repositories.
func MarshalBBox(b BBox) (json.RawMessage, error) {
	return json.Marshal(b)
}
