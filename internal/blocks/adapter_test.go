package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansift/internal/blocks"
	"plansift/internal/domain"
	"plansift/internal/rules"
)

func roomPayloads(t *testing.T) []rules.Payload {
	t.Helper()
	payloads, skipped, err := rules.ParsePayloads([]byte(`[
		{"type": "token_detector", "role": "room_number", "method": "regex", "pattern": "\\d{3}"},
		{"type": "token_detector", "role": "room_name", "method": "length", "min_length": 4},
		{"type": "pairing", "name_role": "room_name", "number_role": "room_number", "relation": "below", "max_distance_px": 200}
	]`))
	require.NoError(t, err)
	require.Empty(t, skipped)
	return payloads
}

func textToken(text string, x, y, w, h float64) domain.TextToken {
	return domain.TextToken{Text: text, BBox: domain.NewBBox(x, y, w, h), Confidence: 1.0, Source: domain.SourceVector}
}

func TestCreateBlocks_PairsNameWithNumberBelow(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("CLASSE", 100, 100, 50, 20),
		textToken("203", 100, 130, 30, 20),
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 1)

	b := out[0]
	assert.True(t, b.Paired())
	assert.Equal(t, "CLASSE", b.NameValue)
	assert.Equal(t, "203", *b.NumberValue)
	assert.Equal(t, "CLASSE\n203", b.Text)
	assert.Equal(t, domain.NewBBox(100, 100, 50, 50), b.BBox)
	assert.Equal(t, []string{"CLASSE", "203"}, b.Constituents)
}

func TestCreateBlocks_BeyondMaxDistanceStaysUnpaired(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("CLASSE", 100, 100, 50, 20),
		textToken("203", 100, 500, 30, 20),
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 1)
	assert.False(t, out[0].Paired())
	assert.Equal(t, "CLASSE", out[0].NameValue)
}

func TestCreateBlocks_NumberAboveViolatesRelation(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("CLASSE", 100, 300, 50, 20),
		textToken("203", 100, 100, 30, 20),
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 1)
	assert.False(t, out[0].Paired())
}

func TestCreateBlocks_ToleranceAdmitsSlightlyHigherNumber(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("CLASSE", 100, 100, 50, 20),
		textToken("203", 100, 70, 30, 20), // 30px above the name, inside 50px slack
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 1)
	assert.True(t, out[0].Paired())
}

func TestCreateBlocks_NumberConsumedOnce(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("CLASSE", 100, 100, 50, 20),
		textToken("BUREAU", 300, 100, 50, 20),
		textToken("203", 100, 130, 30, 20),
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 2)

	paired := 0
	for _, b := range out {
		if b.Paired() {
			paired++
			assert.Equal(t, "CLASSE", b.NameValue, "the nearer name takes the number")
		}
	}
	assert.Equal(t, 1, paired)
}

func TestCreateBlocks_NearestNumberWins(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("CLASSE", 100, 100, 50, 20),
		textToken("204", 100, 180, 30, 20),
		textToken("203", 100, 130, 30, 20),
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 1)
	require.True(t, out[0].Paired())
	assert.Equal(t, "203", *out[0].NumberValue)
}

func TestCreateBlocks_ReadingOrderIsDeterministic(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("BUREAU", 300, 100, 50, 20),
		textToken("CLASSE", 100, 100, 50, 20),
		textToken("ATELIER", 100, 400, 60, 20),
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 3)
	assert.Equal(t, "CLASSE", out[0].NameValue)
	assert.Equal(t, "BUREAU", out[1].NameValue)
	assert.Equal(t, "ATELIER", out[2].NameValue)
}

func TestCreateBlocks_PairedConfidenceIsMin(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		{Text: "CLASSE", BBox: domain.NewBBox(100, 100, 50, 20), Confidence: 0.9, Source: domain.SourceModel},
		{Text: "203", BBox: domain.NewBBox(100, 130, 30, 20), Confidence: 0.6, Source: domain.SourceModel},
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	require.Len(t, out, 1)
	assert.Equal(t, 0.6, out[0].Confidence)
}

func TestCreateBlocks_NoDetectors(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{textToken("CLASSE", 100, 100, 50, 20)}

	assert.Nil(t, a.CreateBlocks(tokens, nil))
}

func TestCreateBlocks_UnmatchedTokensIgnored(t *testing.T) {
	a := blocks.NewAdapter(50)
	tokens := []domain.TextToken{
		textToken("x", 100, 100, 10, 10), // matches no detector
		textToken("203", 100, 130, 30, 20),
	}

	out := a.CreateBlocks(tokens, roomPayloads(t))
	assert.Empty(t, out, "numbers without any name emit no block")
}
