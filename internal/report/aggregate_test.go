package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roofscope/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func loosePhoto(estimate, override *float64) PhotoData {
	return PhotoData{
		Detections: []domain.Detection{{
			Label:              "Gravel pile",
			Category:           domain.CategoryLooseMaterial,
			VolumeEstimate:     estimate,
			UserVolumeOverride: override,
		}},
	}
}

func TestSummarizeTotalVolume(t *testing.T) {
	photos := []PhotoData{
		loosePhoto(floatPtr(3.5), nil),
		loosePhoto(floatPtr(2.0), floatPtr(1.0)),
	}

	summary := Summarize(photos)
	assert.Equal(t, 2, summary.PhotoCount)
	assert.Equal(t, 2, summary.LooseMaterialCount)
	assert.Equal(t, 4.5, summary.TotalVolume, "override replaces the estimate, not adds to it")
}

func TestSummarizeOverridePrecedence(t *testing.T) {
	summary := Summarize([]PhotoData{loosePhoto(floatPtr(3.5), floatPtr(5.0))})
	assert.Equal(t, 5.0, summary.TotalVolume)
}

func TestSummarizeExcludesVolumelessDetections(t *testing.T) {
	summary := Summarize([]PhotoData{loosePhoto(nil, nil)})
	assert.Equal(t, 1, summary.LooseMaterialCount)
	assert.Equal(t, 0.0, summary.TotalVolume)
}

func TestSummarizeCategoryCounts(t *testing.T) {
	photos := []PhotoData{{
		Detections: []domain.Detection{
			{Label: "Hail damage", Category: domain.CategoryDamage},
			{Label: "Missing shingles", Category: domain.CategoryDamage},
			{Label: "Shingle bundle", Category: domain.CategoryMaterial},
			{Label: "Ladder", Category: domain.CategoryOther},
		},
	}}

	summary := Summarize(photos)
	assert.Equal(t, 2, summary.DamageCount)
	assert.Equal(t, 1, summary.MaterialCount)
	assert.Equal(t, 0, summary.LooseMaterialCount)
}

func TestSummarizeSeverityBuckets(t *testing.T) {
	photos := []PhotoData{
		{Summary: domain.AnalysisSummary(`{"damageAssessment": {"severity": "severe"}}`)},
		{Summary: domain.AnalysisSummary(`{"damageAssessment": {"severity": "minor"}}`)},
		{Summary: domain.AnalysisSummary(`{"damageAssessment": {"severity": "catastrophic"}}`)},
		{Summary: domain.AnalysisSummary(`not json at all`)},
		{},
	}

	summary := Summarize(photos)
	assert.Equal(t, 1, summary.SeverityCounts[domain.SeveritySevere])
	assert.Equal(t, 1, summary.SeverityCounts[domain.SeverityMinor])
	assert.Equal(t, 0, summary.SeverityCounts[domain.SeverityModerate])
	assert.Equal(t, 0, summary.SeverityCounts[domain.SeverityNone])
}

func TestSummarizeOrderIndependent(t *testing.T) {
	photos := []PhotoData{
		loosePhoto(floatPtr(3.5), nil),
		loosePhoto(floatPtr(2.0), floatPtr(1.0)),
		{Detections: []domain.Detection{{Label: "Hail damage", Category: domain.CategoryDamage}}},
	}
	reversed := []PhotoData{photos[2], photos[1], photos[0]}

	assert.Equal(t, Summarize(photos), Summarize(reversed))
}
