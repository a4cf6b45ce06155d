package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roofscope/internal/domain"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func TestParseBoxedEnvelope(t *testing.T) {
	text := `{
		"detections": [
			{
				"label": "Shingle bundle",
				"category": "material",
				"confidence": 85,
				"boundingBox": {"left": 0.1, "top": 0.2, "width": 0.3, "height": 0.2},
				"count": 5
			},
			{
				"label": "Hail damage",
				"category": "damage",
				"confidence": 75,
				"boundingBox": {"left": 0.4, "top": 0.3, "width": 0.2, "height": 0.15}
			}
		],
		"analysis": {"damageAssessment": {"severity": "moderate"}}
	}`

	result, err := ParseBoxedEnvelope(text)
	require.NoError(t, err)
	require.Len(t, result.Detections, 2)

	bundle := result.Detections[0]
	assert.Equal(t, "Shingle bundle", bundle.Label)
	assert.Equal(t, domain.CategoryMaterial, bundle.Category)
	assert.Equal(t, f(85.0), bundle.Confidence)
	assert.Equal(t, i(5), bundle.Count)
	assert.Equal(t, &domain.BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.2}, bundle.BoundingBox)

	hail := result.Detections[1]
	assert.Equal(t, domain.CategoryDamage, hail.Category)
	assert.Nil(t, hail.Count)

	da, ok := result.Summary.DamageAssessment()
	require.True(t, ok)
	assert.Equal(t, "moderate", da.Severity)
}

func TestParseBoxedEnvelopeMalformed(t *testing.T) {
	for _, text := range []string{"", "not json at all", `"just a string"`, `[1,2,3]`} {
		_, err := ParseBoxedEnvelope(text)
		var malformed *MalformedResponseError
		assert.ErrorAs(t, err, &malformed, "text %q", text)
	}
}

func TestParseBoxedEnvelopeIgnoresUnknownFields(t *testing.T) {
	result, err := ParseBoxedEnvelope(`{
		"detections": [{"label": "Tarp", "category": "other", "confidence": 50, "wild": true}],
		"analysis": {},
		"extra": "ignored"
	}`)
	require.NoError(t, err)
	require.Len(t, result.Detections, 1)
	assert.Equal(t, domain.CategoryOther, result.Detections[0].Category)
}

func TestNormalizeClampsOutOfRangeValues(t *testing.T) {
	result := NormalizeEnvelope(Envelope{Detections: []RawDetection{{
		Label:       "Hail damage",
		Category:    "damage",
		Confidence:  f(130),
		BoundingBox: &RawBox{Left: 0.9, Top: -0.1, Width: 0.5, Height: 0.3},
	}}})

	d := result.Detections[0]
	assert.Equal(t, f(100.0), d.Confidence)
	assert.Equal(t, &domain.BoundingBox{Left: 0.9, Top: 0, Width: 0.1, Height: 0.3}, d.BoundingBox)
}

func TestNormalizeUnknownCategoryFallsBackToOther(t *testing.T) {
	result := NormalizeEnvelope(Envelope{Detections: []RawDetection{{Label: "Something", Category: "debris"}}})
	assert.Equal(t, domain.CategoryOther, result.Detections[0].Category)
}

// Volume fields never survive on detections outside loose_material, and only
// when the provider supplied an estimate.
func TestNormalizeVolumeFieldRules(t *testing.T) {
	result := NormalizeEnvelope(Envelope{Detections: []RawDetection{
		{
			Label:            "Shingle bundle",
			Category:         "material",
			VolumeEstimate:   f(3.5),
			VolumeUnit:       "cubic_yards",
			VolumeConfidence: "medium",
		},
		{
			Label:    "Gravel pile",
			Category: "loose_material",
		},
		{
			Label:            "Mulch pile",
			Category:         "loose_material",
			VolumeEstimate:   f(2.25),
			VolumeConfidence: "bogus",
			VolumeReference:  "standard pallet",
		},
	}})

	material := result.Detections[0]
	assert.Nil(t, material.VolumeEstimate)
	assert.Empty(t, material.VolumeUnit)
	assert.Empty(t, material.VolumeConfidence)

	noEstimate := result.Detections[1]
	assert.Nil(t, noEstimate.VolumeEstimate)
	assert.Empty(t, noEstimate.VolumeUnit)

	mulch := result.Detections[2]
	require.NotNil(t, mulch.VolumeEstimate)
	assert.Equal(t, 2.25, *mulch.VolumeEstimate)
	assert.Equal(t, "cubic_yards", mulch.VolumeUnit)
	assert.Equal(t, domain.VolumeConfidenceLow, mulch.VolumeConfidence)
	assert.Equal(t, "standard pallet", mulch.VolumeReference)
}

func TestNormalizeBlankLabelDefaultsToUnknown(t *testing.T) {
	result := NormalizeEnvelope(Envelope{Detections: []RawDetection{{Label: "  ", Category: "damage"}}})
	assert.Equal(t, "Unknown", result.Detections[0].Label)
}

func TestNormalizeEmptyAnalysisDefaultsToEmptyObject(t *testing.T) {
	result := NormalizeEnvelope(Envelope{})
	assert.Equal(t, domain.AnalysisSummary("{}"), result.Summary)
	assert.Empty(t, result.Detections)
}

func TestNormalizeNonPositiveCountDropped(t *testing.T) {
	result := NormalizeEnvelope(Envelope{Detections: []RawDetection{
		{Label: "Plywood sheet", Category: "material", Count: i(0)},
		{Label: "Plywood sheet", Category: "material", Count: i(-2)},
	}})
	assert.Nil(t, result.Detections[0].Count)
	assert.Nil(t, result.Detections[1].Count)
}
