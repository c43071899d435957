package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// BBox is an axis-aligned bounding box in page-pixel space.
// It serializes uniformly as the JSON array [x, y, width, height].
type BBox struct {
	X float64
	Y float64
	W float64
	H float64
}

// NewBBox builds a bbox from origin and dimensions.
func NewBBox(x, y, w, h float64) BBox {
	return BBox{X: x, Y: y, W: w, H: h}
}

// Valid reports whether the box has positive dimensions.
func (b BBox) Valid() bool {
	return b.W > 0 && b.H > 0
}

// Area returns the box area in square pixels.
func (b BBox) Area() float64 {
	if !b.Valid() {
		return 0
	}
	return b.W * b.H
}

// CenterX returns the x coordinate of the box center.
func (b BBox) CenterX() float64 { return b.X + b.W/2 }

// CenterY returns the y coordinate of the box center.
func (b BBox) CenterY() float64 { return b.Y + b.H/2 }

// CenterDistance returns the Euclidean distance between the centers of two boxes.
func (b BBox) CenterDistance(other BBox) float64 {
	dx := b.CenterX() - other.CenterX()
	dy := b.CenterY() - other.CenterY()
	return math.Hypot(dx, dy)
}

// Union returns the smallest box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	x1 := math.Min(b.X, other.X)
	y1 := math.Min(b.Y, other.Y)
	x2 := math.Max(b.X+b.W, other.X+other.W)
	y2 := math.Max(b.Y+b.H, other.Y+other.H)
	return BBox{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// IoU returns the intersection-over-union of two boxes, in [0, 1].
func (b BBox) IoU(other BBox) float64 {
	x1 := math.Max(b.X, other.X)
	y1 := math.Max(b.Y, other.Y)
	x2 := math.Min(b.X+b.W, other.X+other.W)
	y2 := math.Min(b.Y+b.H, other.Y+other.H)
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// MarshalJSON encodes the box as [x, y, width, height].
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.W, b.H})
}

// UnmarshalJSON decodes the [x, y, width, height] array form.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var arr [4]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("bbox must be a [x, y, width, height] array: %w", err)
	}
	b.X, b.Y, b.W, b.H = arr[0], arr[1], arr[2], arr[3]
	return nil
}
