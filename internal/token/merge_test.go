package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansift/internal/domain"
	"plansift/internal/token"
)

func tok(text string, source domain.TokenSource, bbox domain.BBox, conf float64) domain.TextToken {
	return domain.TextToken{Text: text, Source: source, BBox: bbox, Confidence: conf}
}

func TestMerge_DropsOverlappingDuplicate(t *testing.T) {
	box := domain.NewBBox(100, 100, 60, 20)
	tokens := []domain.TextToken{
		tok("203", domain.SourceOCR, box, 0.6),
		tok("203", domain.SourceVector, box, 1.0),
	}

	merged := token.Merge(tokens)
	require.Len(t, merged, 1)
	assert.Equal(t, domain.SourceVector, merged[0].Source, "higher-priority source wins")
}

func TestMerge_SubstringCountsAsDuplicate(t *testing.T) {
	tokens := []domain.TextToken{
		tok("CLASSE", domain.SourceVector, domain.NewBBox(100, 100, 60, 20), 1.0),
		tok("classe 203", domain.SourceModel, domain.NewBBox(102, 101, 62, 21), 0.8),
	}

	merged := token.Merge(tokens)
	require.Len(t, merged, 1)
	assert.Equal(t, "CLASSE", merged[0].Text)
}

func TestMerge_SameTextDifferentLocationKept(t *testing.T) {
	tokens := []domain.TextToken{
		tok("203", domain.SourceVector, domain.NewBBox(100, 100, 30, 20), 1.0),
		tok("203", domain.SourceVector, domain.NewBBox(900, 600, 30, 20), 1.0),
	}

	merged := token.Merge(tokens)
	assert.Len(t, merged, 2, "identical text in different places is two tokens")
}

func TestMerge_LowOverlapKept(t *testing.T) {
	tokens := []domain.TextToken{
		tok("203", domain.SourceVector, domain.NewBBox(100, 100, 30, 20), 1.0),
		tok("203", domain.SourceModel, domain.NewBBox(125, 100, 30, 20), 0.7),
	}

	// IoU of the two boxes is 5/55 ≈ 0.09, well under the threshold.
	merged := token.Merge(tokens)
	assert.Len(t, merged, 2)
}

func TestMerge_DifferentTextOverlappingKept(t *testing.T) {
	box := domain.NewBBox(100, 100, 60, 20)
	tokens := []domain.TextToken{
		tok("203", domain.SourceVector, box, 1.0),
		tok("BUREAU", domain.SourceModel, box, 0.8),
	}

	merged := token.Merge(tokens)
	assert.Len(t, merged, 2, "unrelated texts never merge regardless of overlap")
}

func TestMerge_StableWithinSource(t *testing.T) {
	tokens := []domain.TextToken{
		tok("A", domain.SourceVector, domain.NewBBox(0, 0, 10, 10), 1.0),
		tok("B", domain.SourceVector, domain.NewBBox(100, 0, 10, 10), 1.0),
		tok("C", domain.SourceVector, domain.NewBBox(200, 0, 10, 10), 1.0),
	}

	merged := token.Merge(tokens)
	require.Len(t, merged, 3)
	assert.Equal(t, "A", merged[0].Text)
	assert.Equal(t, "B", merged[1].Text)
	assert.Equal(t, "C", merged[2].Text)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, token.Merge(nil))
}
