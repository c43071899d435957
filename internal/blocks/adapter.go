package blocks

import (
	"sort"
	"strings"

	"plansift/internal/domain"
	"plansift/internal/rules"
)

// DefaultRelationTolerancePX is the slack allowed when testing the
// spatial relation between a name token and a number candidate.
const DefaultRelationTolerancePX = 50.0

// Adapter classifies tokens into roles and pairs them into synthetic
// labeled blocks. It is pure and deterministic: identical inputs yield
// byte-identical output, which the identifier generator depends on.
type Adapter struct {
	tolerancePX float64
}

// NewAdapter creates a token-block adapter. A non-positive tolerance
// falls back to the 50px default.
func NewAdapter(tolerancePX float64) *Adapter {
	if tolerancePX <= 0 {
		tolerancePX = DefaultRelationTolerancePX
	}
	return &Adapter{tolerancePX: tolerancePX}
}

// CreateBlocks partitions tokens by the detector payloads and greedily
// pairs each name token with its nearest compatible number token.
//
// Names are visited in stable reading order (top-to-bottom, then
// left-to-right); each consumes at most one number token and a consumed
// number is never re-paired. Unpaired names still emit a name-only block:
// partial emission is preferred over silent loss, and the assembler
// decides whether such blocks survive.
func (a *Adapter) CreateBlocks(tokens []domain.TextToken, payloads []rules.Payload) []domain.SyntheticBlock {
	detectors := rules.Detectors(payloads)
	if len(detectors) == 0 {
		return nil
	}

	pairing := rules.FirstPairing(payloads)
	relation := rules.DefaultRelation
	maxDistance := rules.DefaultMaxDistancePX
	if pairing != nil {
		relation = pairing.Relation
		maxDistance = pairing.MaxDistancePX
	}

	names, numbers := a.partition(tokens, detectors, pairing)
	sortReadingOrder(names)
	sortReadingOrder(numbers)

	blocks := make([]domain.SyntheticBlock, 0, len(names))
	consumed := make([]bool, len(numbers))

	for _, name := range names {
		best := -1
		bestDist := 0.0
		for i, number := range numbers {
			if consumed[i] {
				continue
			}
			if !a.relationHolds(relation, name.BBox, number.BBox) {
				continue
			}
			d := name.BBox.CenterDistance(number.BBox)
			if d > maxDistance {
				continue
			}
			if best == -1 || d < bestDist {
				best = i
				bestDist = d
			}
		}

		if best >= 0 {
			consumed[best] = true
			blocks = append(blocks, pairedBlock(name, numbers[best]))
		} else {
			blocks = append(blocks, nameOnlyBlock(name))
		}
	}
	return blocks
}

// partition assigns each token its first matching detector role and
// splits the result into name and number candidates.
func (a *Adapter) partition(tokens []domain.TextToken, detectors []*rules.TokenDetector, pairing *rules.Pairing) (names, numbers []domain.TextToken) {
	for _, tok := range tokens {
		role, ok := rules.AssignRole(detectors, tok.Text)
		if !ok {
			continue
		}
		switch {
		case pairing != nil && role == pairing.NameRole:
			names = append(names, tok)
		case pairing != nil && role == pairing.NumberRole:
			numbers = append(numbers, tok)
		case pairing == nil && rules.IsNameRole(role):
			names = append(names, tok)
		case pairing == nil:
			numbers = append(numbers, tok)
		}
	}
	return names, numbers
}

// relationHolds tests the direction constraint with tolerance. "below"
// means the candidate's top edge sits at or under the name's top edge
// minus tolerance; the other directions swap axis and sign.
func (a *Adapter) relationHolds(relation rules.Relation, name, candidate domain.BBox) bool {
	t := a.tolerancePX
	switch relation {
	case rules.RelationBelow:
		return candidate.Y >= name.Y-t
	case rules.RelationAbove:
		return candidate.Y <= name.Y+t
	case rules.RelationRight:
		return candidate.X >= name.X-t
	case rules.RelationLeft:
		return candidate.X <= name.X+t
	default:
		return false
	}
}

func pairedBlock(name, number domain.TextToken) domain.SyntheticBlock {
	nameText := strings.TrimSpace(name.Text)
	numberText := strings.TrimSpace(number.Text)
	conf := name.Confidence
	if number.Confidence < conf {
		conf = number.Confidence
	}
	return domain.SyntheticBlock{
		BBox:         name.BBox.Union(number.BBox),
		Text:         nameText + "\n" + numberText,
		NameValue:    nameText,
		NumberValue:  &numberText,
		Confidence:   conf,
		Constituents: []string{nameText, numberText},
	}
}

func nameOnlyBlock(name domain.TextToken) domain.SyntheticBlock {
	nameText := strings.TrimSpace(name.Text)
	return domain.SyntheticBlock{
		BBox:         name.BBox,
		Text:         nameText,
		NameValue:    nameText,
		Confidence:   name.Confidence,
		Constituents: []string{nameText},
	}
}

// sortReadingOrder orders tokens top-to-bottom, then left-to-right.
func sortReadingOrder(tokens []domain.TextToken) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].BBox.Y != tokens[j].BBox.Y {
			return tokens[i].BBox.Y < tokens[j].BBox.Y
		}
		return tokens[i].BBox.X < tokens[j].BBox.X
	})
}
