package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"plansift/internal/domain"
)

// PayloadKind discriminates the closed set of rule payload variants.
type PayloadKind string

const (
	KindTokenDetector PayloadKind = "token_detector"
	KindPairing       PayloadKind = "pairing"
)

// DetectorMethod selects how a TokenDetector matches token text.
type DetectorMethod string

const (
	MethodRegex  DetectorMethod = "regex"
	MethodLength DetectorMethod = "length"
)

// Relation is the spatial relation a pairing rule requires between the
// number token and the name token.
type Relation string

const (
	RelationBelow Relation = "below"
	RelationAbove Relation = "above"
	RelationLeft  Relation = "left"
	RelationRight Relation = "right"
)

// Defaults applied when a pairing payload omits optional fields.
const (
	DefaultRelation      = RelationBelow
	DefaultMaxDistancePX = 200.0
)

// TokenDetector classifies tokens into a semantic role. Detectors are
// opaque, externally supplied configuration; this package carries no
// project vocabulary of its own.
type TokenDetector struct {
	Role      string         `json:"role"`
	Method    DetectorMethod `json:"method"`
	Pattern   string         `json:"pattern,omitempty"`
	MinLength int            `json:"min_length,omitempty"`

	re *regexp.Regexp
}

// Pairing declares which two roles combine, in what spatial relation,
// within what center distance.
type Pairing struct {
	NameRole      string   `json:"name_role"`
	NumberRole    string   `json:"number_role"`
	Relation      Relation `json:"relation,omitempty"`
	MaxDistancePX float64  `json:"max_distance_px,omitempty"`
}

// Payload is the tagged variant TokenDetector | Pairing.
type Payload struct {
	Kind     PayloadKind
	Detector *TokenDetector
	Pairing  *Pairing
}

// rawPayload mirrors the external JSON shape before variant dispatch.
type rawPayload struct {
	Type          string  `json:"type"`
	Role          string  `json:"role"`
	Method        string  `json:"method"`
	Pattern       string  `json:"pattern"`
	MinLength     int     `json:"min_length"`
	NameRole      string  `json:"name_role"`
	NumberRole    string  `json:"number_role"`
	Relation      string  `json:"relation"`
	MaxDistancePX float64 `json:"max_distance_px"`
}

// SkippedRule records why a malformed payload was dropped.
type SkippedRule struct {
	Position int
	Reason   string
}

// ParsePayloads decodes an externally supplied ordered payload list.
// Malformed entries (schema violations, invalid regexes) are skipped and
// reported; parsing never fails the page.
func ParsePayloads(data []byte) ([]Payload, []SkippedRule, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, fmt.Errorf("rules.ParsePayloads: payload list is not a JSON array: %w", err)
	}

	payloads := make([]Payload, 0, len(raws))
	var skipped []SkippedRule
	for i, raw := range raws {
		p, err := parsePayload(raw)
		if err != nil {
			skipped = append(skipped, SkippedRule{Position: i, Reason: err.Error()})
			continue
		}
		payloads = append(payloads, p)
	}
	return payloads, skipped, nil
}

func parsePayload(raw json.RawMessage) (Payload, error) {
	if err := validateAgainstSchema(raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", domain.ErrMalformedRule, err)
	}

	var rp rawPayload
	if err := json.Unmarshal(raw, &rp); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", domain.ErrMalformedRule, err)
	}

	switch PayloadKind(rp.Type) {
	case KindTokenDetector:
		det := &TokenDetector{
			Role:      rp.Role,
			Method:    DetectorMethod(rp.Method),
			Pattern:   rp.Pattern,
			MinLength: rp.MinLength,
		}
		if det.Method == MethodRegex {
			re, err := compileFullMatch(det.Pattern)
			if err != nil {
				return Payload{}, fmt.Errorf("%w: invalid pattern %q: %v", domain.ErrMalformedRule, det.Pattern, err)
			}
			det.re = re
		}
		return Payload{Kind: KindTokenDetector, Detector: det}, nil

	case KindPairing:
		pairing := &Pairing{
			NameRole:      rp.NameRole,
			NumberRole:    rp.NumberRole,
			Relation:      Relation(rp.Relation),
			MaxDistancePX: rp.MaxDistancePX,
		}
		if pairing.Relation == "" {
			pairing.Relation = DefaultRelation
		}
		if pairing.MaxDistancePX <= 0 {
			pairing.MaxDistancePX = DefaultMaxDistancePX
		}
		return Payload{Kind: KindPairing, Pairing: pairing}, nil

	default:
		return Payload{}, fmt.Errorf("%w: unknown payload type %q", domain.ErrMalformedRule, rp.Type)
	}
}

// compileFullMatch anchors a payload pattern so matching is a
// case-insensitive full match over the stripped token text.
func compileFullMatch(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)^(?:" + pattern + ")$")
}

// Detectors returns the detector payloads in their original order.
func Detectors(payloads []Payload) []*TokenDetector {
	var out []*TokenDetector
	for _, p := range payloads {
		if p.Kind == KindTokenDetector && p.Detector != nil {
			out = append(out, p.Detector)
		}
	}
	return out
}

// FirstPairing returns the first pairing payload, or nil when the rule set
// defines none. A present pairing means this project defines rooms as
// name+number pairs, which makes the assembler drop name-only blocks.
func FirstPairing(payloads []Payload) *Pairing {
	for _, p := range payloads {
		if p.Kind == KindPairing && p.Pairing != nil {
			return p.Pairing
		}
	}
	return nil
}

// IsNameRole reports whether a detector role is name-like. The length
// method only applies its alphabetic/uppercase constraint to name roles,
// and the adapter uses the same split when no pairing payload names the
// roles explicitly.
func IsNameRole(role string) bool {
	return strings.Contains(strings.ToLower(role), "name")
}
