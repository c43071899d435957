package extract

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"plansift/internal/domain"
	"plansift/internal/ident"
	"plansift/internal/rules"
)

// pairedConfidenceBoost rewards corroboration: a block whose name and
// number were found together is more trustworthy than either alone.
const pairedConfidenceBoost = 0.1

// Input carries one page's blocks into assembly.
type Input struct {
	Page     domain.PageRef
	Blocks   []domain.SyntheticBlock
	Payloads []rules.Payload
	Type     domain.ObjectType
	Source   domain.TokenSource
	Policy   domain.ExtractionPolicy
	RunID    uuid.UUID
}

// Result is the assembled object set plus observability counters.
type Result struct {
	Objects         []domain.ExtractedObject
	DroppedNameOnly int
}

// Assembler converts synthetic blocks into typed extracted objects under
// the active policy. Policies differ solely in the provenance tag they
// stamp; matching logic and thresholds are identical.
type Assembler struct {
	ident  *ident.Generator
	logger *zap.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(gen *ident.Generator, logger *zap.Logger) *Assembler {
	return &Assembler{ident: gen, logger: logger}
}

// Assemble builds extracted objects from blocks.
//
// When the payload set includes a pairing rule, the project defines rooms
// as name+number pairs, so a name-only block is dropped and counted
// rather than emitted. Without a pairing rule name-only blocks are
// accepted as-is. Paired blocks get a +0.1 confidence boost, capped at 1.
func (a *Assembler) Assemble(in Input) Result {
	requirePair := rules.FirstPairing(in.Payloads) != nil
	now := time.Now().UTC()

	var res Result
	for _, block := range in.Blocks {
		if requirePair && !block.Paired() {
			res.DroppedNameOnly++
			continue
		}

		confidence := block.Confidence
		pairTag := domain.ProvenanceNameOnly
		label := block.NameValue
		number := ""
		if block.Paired() {
			confidence += pairedConfidenceBoost
			if confidence > 1.0 {
				confidence = 1.0
			}
			pairTag = domain.ProvenancePaired
			number = *block.NumberValue
			label = number
		}

		obj := domain.ExtractedObject{
			ID:         a.ident.GenerateID(in.Page.PageID, in.Type, label, block.BBox, ""),
			Page:       in.Page,
			Type:       in.Type,
			Label:      label,
			Name:       block.NameValue,
			Number:     number,
			BBox:       block.BBox,
			Confidence: confidence,
			Provenance: []string{
				in.Policy.ProvenanceTag(),
				pairTag,
				"source:" + string(in.Source),
			},
			RunID:     in.RunID,
			CreatedAt: now,
		}
		res.Objects = append(res.Objects, obj)
	}

	if res.DroppedNameOnly > 0 {
		a.logger.Info("dropped name-only blocks under pairing rule",
			zap.String("page_id", in.Page.PageID),
			zap.Int("dropped", res.DroppedNameOnly))
	}
	return res
}
