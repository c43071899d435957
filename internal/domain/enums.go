package domain

// TokenSource identifies which provider produced a text token.
type TokenSource string

const (
	SourceVector TokenSource = "vector"
	SourceModel  TokenSource = "model"
	SourceOCR    TokenSource = "ocr"
)

// SourcePriority ranks token sources; lower is more trusted.
// Vector text is exact, model detections approximate, OCR noisiest.
var SourcePriority = map[TokenSource]int{
	SourceVector: 0,
	SourceModel:  1,
	SourceOCR:    2,
}

// ObjectType is the kind of semantic object an extraction run produces.
type ObjectType string

const (
	TypeRoom          ObjectType = "room"
	TypeDoor          ObjectType = "door"
	TypeScheduleTable ObjectType = "schedule_table"
)

// ConfidenceLevel buckets a numeric confidence into three tiers.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// LevelForConfidence derives the tier from a numeric confidence using the
// fixed 0.8/0.5 thresholds. The tier is always computed, never stored.
func LevelForConfidence(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.8:
		return ConfidenceHigh
	case confidence >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ExtractionPolicy selects the provenance tag attached to extracted objects.
// Policies do not change matching logic or thresholds.
type ExtractionPolicy string

const (
	PolicyConservative ExtractionPolicy = "conservative"
	PolicyRelaxed      ExtractionPolicy = "relaxed"
)

// ProvenanceTag returns the ruleset tag for this policy.
func (p ExtractionPolicy) ProvenanceTag() string {
	return "ruleset:" + string(p)
}

// Provenance tags shared by the assembler.
const (
	ProvenancePaired   = "paired"
	ProvenanceNameOnly = "name_only"
)
