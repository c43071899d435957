package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansift/internal/rules"
)

func TestParsePayloads_DetectorsAndPairing(t *testing.T) {
	data := []byte(`[
		{"type": "token_detector", "role": "room_number", "method": "regex", "pattern": "\\d{3}"},
		{"type": "token_detector", "role": "room_name", "method": "length", "min_length": 4},
		{"type": "pairing", "name_role": "room_name", "number_role": "room_number", "relation": "below", "max_distance_px": 150}
	]`)

	payloads, skipped, err := rules.ParsePayloads(data)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, payloads, 3)

	assert.Equal(t, rules.KindTokenDetector, payloads[0].Kind)
	assert.Equal(t, "room_number", payloads[0].Detector.Role)
	assert.Equal(t, rules.MethodRegex, payloads[0].Detector.Method)

	assert.Equal(t, rules.KindTokenDetector, payloads[1].Kind)
	assert.Equal(t, rules.MethodLength, payloads[1].Detector.Method)
	assert.Equal(t, 4, payloads[1].Detector.MinLength)

	require.Equal(t, rules.KindPairing, payloads[2].Kind)
	assert.Equal(t, rules.RelationBelow, payloads[2].Pairing.Relation)
	assert.Equal(t, 150.0, payloads[2].Pairing.MaxDistancePX)
}

func TestParsePayloads_PairingDefaults(t *testing.T) {
	data := []byte(`[{"type": "pairing", "name_role": "room_name", "number_role": "room_number"}]`)

	payloads, skipped, err := rules.ParsePayloads(data)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, payloads, 1)

	assert.Equal(t, rules.DefaultRelation, payloads[0].Pairing.Relation)
	assert.Equal(t, rules.DefaultMaxDistancePX, payloads[0].Pairing.MaxDistancePX)
}

func TestParsePayloads_SkipsMalformedEntries(t *testing.T) {
	data := []byte(`[
		{"type": "token_detector", "role": "room_number", "method": "regex", "pattern": "\\d{3}"},
		{"type": "token_detector", "role": "broken", "method": "regex", "pattern": "("},
		{"type": "mystery"},
		{"type": "token_detector", "role": "no_pattern", "method": "regex"},
		{"type": "token_detector", "role": "room_name", "method": "length", "min_length": 4}
	]`)

	payloads, skipped, err := rules.ParsePayloads(data)
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	require.Len(t, skipped, 3)

	assert.Equal(t, 1, skipped[0].Position)
	assert.Equal(t, 2, skipped[1].Position)
	assert.Equal(t, 3, skipped[2].Position)
	assert.NotEmpty(t, skipped[0].Reason)
}

func TestParsePayloads_NotAnArray(t *testing.T) {
	_, _, err := rules.ParsePayloads([]byte(`{"type": "pairing"}`))
	assert.Error(t, err)
}

func TestDetectors_PreservesOrder(t *testing.T) {
	data := []byte(`[
		{"type": "pairing", "name_role": "a", "number_role": "b"},
		{"type": "token_detector", "role": "first", "method": "length", "min_length": 1},
		{"type": "token_detector", "role": "second", "method": "length", "min_length": 2}
	]`)

	payloads, _, err := rules.ParsePayloads(data)
	require.NoError(t, err)

	detectors := rules.Detectors(payloads)
	require.Len(t, detectors, 2)
	assert.Equal(t, "first", detectors[0].Role)
	assert.Equal(t, "second", detectors[1].Role)
}

func TestFirstPairing_NonePresent(t *testing.T) {
	data := []byte(`[{"type": "token_detector", "role": "r", "method": "length", "min_length": 1}]`)

	payloads, _, err := rules.ParsePayloads(data)
	require.NoError(t, err)
	assert.Nil(t, rules.FirstPairing(payloads))
}

func TestIsNameRole(t *testing.T) {
	assert.True(t, rules.IsNameRole("room_name"))
	assert.True(t, rules.IsNameRole("NAME"))
	assert.False(t, rules.IsNameRole("room_number"))
}
