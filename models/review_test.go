package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewDataRoundTripsUnknownKeys(t *testing.T) {
	raw := []byte(`{
		"rank": 4,
		"status": "screen",
		"notes": {"general": "solid"},
		"legacyScore": 87,
		"tags": ["a", "b"]
	}`)

	var review ReviewData
	require.NoError(t, json.Unmarshal(raw, &review))

	require.NotNil(t, review.Rank)
	assert.Equal(t, 4, *review.Rank)
	assert.Equal(t, "screen", review.Status)
	assert.Equal(t, "solid", review.Notes["general"])
	assert.Equal(t, float64(87), review.Extra["legacyScore"])

	out, err := json.Marshal(review)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, float64(87), decoded["legacyScore"], "unknown keys survive the round trip")
	assert.Equal(t, []interface{}{"a", "b"}, decoded["tags"])
	assert.Equal(t, float64(4), decoded["rank"])
}

func TestReviewDataEmpty(t *testing.T) {
	review, err := ParseReviewData(nil)
	require.NoError(t, err)

	out, err := json.Marshal(review)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(out))
}
