// Package ident generates deterministic, collision-resistant identifiers
// for extracted objects. An identifier is a content address: a pure
// function of (page id, object type, normalized label, bucketed bbox,
// optional qualifier). Re-extracting the same object yields the same ID,
// so storage writes are safe upserts with no separate allocator.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strings"

	"plansift/internal/domain"
)

// DefaultBucketPX is the grid the bbox corners snap to before hashing.
// 50px absorbs rendering jitter across re-rasterizations while still
// separating genuinely different objects.
const DefaultBucketPX = 50.0

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]`)
)

// Generator produces content-addressed object identifiers.
type Generator struct {
	bucketPX float64
}

// NewGenerator creates a Generator. A non-positive bucket size falls back
// to the 50px default.
func NewGenerator(bucketPX float64) *Generator {
	if bucketPX <= 0 {
		bucketPX = DefaultBucketPX
	}
	return &Generator{bucketPX: bucketPX}
}

// GenerateID builds the identifier for one object. The qualifier
// distinguishes objects sharing a printed label within the same visual
// context (e.g. door leaf suffixes); pass "" when unused.
func (g *Generator) GenerateID(pageID string, objType domain.ObjectType, label string, bbox domain.BBox, qualifier string) string {
	normalized := NormalizeLabel(label)
	x1, y1 := g.bucket(bbox.X), g.bucket(bbox.Y)
	x2, y2 := g.bucket(bbox.X+bbox.W), g.bucket(bbox.Y+bbox.H)

	input := fmt.Sprintf("%s|%s|%s|%d,%d,%d,%d", pageID, objType, normalized, x1, y1, x2, y2)
	if qualifier != "" {
		input += "|" + qualifier
	}

	sum := sha256.Sum256([]byte(input))
	return typePrefix(objType) + hex.EncodeToString(sum[:8])
}

// typePrefix maps the object type to its short id prefix.
func typePrefix(objType domain.ObjectType) string {
	if objType == domain.TypeScheduleTable {
		return "schedule_"
	}
	return string(objType) + "_"
}

// GenerateRoomID builds a room identifier.
func (g *Generator) GenerateRoomID(pageID, label string, bbox domain.BBox, qualifier string) string {
	return g.GenerateID(pageID, domain.TypeRoom, label, bbox, qualifier)
}

// GenerateDoorID builds a door identifier.
func (g *Generator) GenerateDoorID(pageID, label string, bbox domain.BBox, qualifier string) string {
	return g.GenerateID(pageID, domain.TypeDoor, label, bbox, qualifier)
}

// GenerateScheduleID builds a schedule-table identifier.
func (g *Generator) GenerateScheduleID(pageID, label string, bbox domain.BBox, qualifier string) string {
	return g.GenerateID(pageID, domain.TypeScheduleTable, label, bbox, qualifier)
}

// NormalizeLabel lowercases, trims, collapses whitespace, and strips
// non-alphanumerics so cosmetic label variants hash identically.
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = whitespaceRe.ReplaceAllString(s, " ")
	return nonAlnumRe.ReplaceAllString(s, "")
}

// bucket floors a coordinate onto the bucket grid.
func (g *Generator) bucket(v float64) int {
	return int(math.Floor(v/g.bucketPX) * g.bucketPX)
}
