package report

import (
	"roofscope/internal/domain"
)

// PhotoData is everything the report needs for one photo: the raw image, its
// canonical detections, and the provider's analysis payload.
type PhotoData struct {
	Image      []byte
	Filename   string
	Detections []domain.Detection
	Summary    domain.AnalysisSummary
}

// Summary holds the report-wide statistics computed across all photos.
type Summary struct {
	PhotoCount         int
	DamageCount        int
	MaterialCount      int
	LooseMaterialCount int
	TotalVolume        float64
	SeverityCounts     map[string]int
}

// Summarize computes the executive-summary statistics for a set of photos.
// Total volume sums each loose-material detection's effective volume; photos
// whose analysis payload is unparsable contribute to no severity bucket.
func Summarize(photos []PhotoData) Summary {
	summary := Summary{
		PhotoCount: len(photos),
		SeverityCounts: map[string]int{
			domain.SeverityNone:     0,
			domain.SeverityMinor:    0,
			domain.SeverityModerate: 0,
			domain.SeveritySevere:   0,
		},
	}

	for _, photo := range photos {
		for _, d := range photo.Detections {
			switch d.Category {
			case domain.CategoryDamage:
				summary.DamageCount++
			case domain.CategoryMaterial:
				summary.MaterialCount++
			case domain.CategoryLooseMaterial:
				summary.LooseMaterialCount++
				if volume, ok := d.EffectiveVolume(); ok {
					summary.TotalVolume += volume
				}
			}
		}

		if da, ok := photo.Summary.DamageAssessment(); ok {
			if _, known := summary.SeverityCounts[da.Severity]; known {
				summary.SeverityCounts[da.Severity]++
			}
		}
	}

	summary.TotalVolume = domain.Round2(summary.TotalVolume)
	return summary
}
