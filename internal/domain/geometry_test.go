package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"plansift/internal/domain"
)

func TestBBox_IoU_Overlapping(t *testing.T) {
	a := domain.NewBBox(0, 0, 100, 100)
	b := domain.NewBBox(50, 0, 100, 100)

	// Intersection 50x100, union 15000.
	assert.InDelta(t, 5000.0/15000.0, a.IoU(b), 1e-9)
	assert.InDelta(t, a.IoU(b), b.IoU(a), 1e-9)
}

func TestBBox_IoU_Disjoint(t *testing.T) {
	a := domain.NewBBox(0, 0, 10, 10)
	b := domain.NewBBox(100, 100, 10, 10)

	assert.Equal(t, 0.0, a.IoU(b))
}

func TestBBox_IoU_Identical(t *testing.T) {
	a := domain.NewBBox(10, 20, 30, 40)

	assert.InDelta(t, 1.0, a.IoU(a), 1e-9)
}

func TestBBox_Union(t *testing.T) {
	a := domain.NewBBox(100, 100, 50, 20)
	b := domain.NewBBox(100, 130, 30, 20)

	u := a.Union(b)
	assert.Equal(t, domain.NewBBox(100, 100, 50, 50), u)
}

func TestBBox_CenterDistance(t *testing.T) {
	a := domain.NewBBox(0, 0, 10, 10)  // center (5, 5)
	b := domain.NewBBox(0, 30, 10, 10) // center (5, 35)

	assert.InDelta(t, 30.0, a.CenterDistance(b), 1e-9)
}

func TestBBox_Valid(t *testing.T) {
	assert.True(t, domain.NewBBox(0, 0, 1, 1).Valid())
	assert.False(t, domain.NewBBox(0, 0, 0, 1).Valid())
	assert.False(t, domain.NewBBox(0, 0, 1, -1).Valid())
}

func TestBBox_JSONRoundTrip(t *testing.T) {
	b := domain.NewBBox(12.5, 30, 100, 40)

	data, err := json.Marshal(b)
	assert.NoError(t, err)
	assert.JSONEq(t, `[12.5, 30, 100, 40]`, string(data))

	var decoded domain.BBox
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)
}

func TestBBox_UnmarshalJSON_Invalid(t *testing.T) {
	var b domain.BBox
	err := json.Unmarshal([]byte(`{"x": 1}`), &b)
	assert.Error(t, err)
}
