package domain

import (
	"math"
	"time"
)

// Category classifies what a detection represents.
type Category string

const (
	CategoryDamage        Category = "damage"
	CategoryMaterial      Category = "material"
	CategoryLooseMaterial Category = "loose_material"
	CategoryOther         Category = "other"
)

// ParseCategory maps a provider-supplied category string onto the known set,
// falling back to CategoryOther for anything unrecognised.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryDamage, CategoryMaterial, CategoryLooseMaterial, CategoryOther:
		return Category(s)
	default:
		return CategoryOther
	}
}

// AnalysisStatus is the lifecycle state of an analysis record. Completed and
// failed are terminal.
type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// Damage severity buckets reported in a provider's damage assessment.
const (
	SeverityNone     = "none"
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// Volume confidence levels for loose-material estimates.
const (
	VolumeConfidenceHigh   = "high"
	VolumeConfidenceMedium = "medium"
	VolumeConfidenceLow    = "low"
	VolumeConfidenceNone   = "none"
)

// BoundingBox locates a detection within its photo. Coordinates are
// normalized to [0,1] relative to the image dimensions, origin top-left.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp forces the box into the unit square and rounds each component to four
// decimal places. Providers occasionally return boxes that spill past the
// image edge; those are clamped, not rejected.
func (b BoundingBox) Clamp() BoundingBox {
	b.Left = clamp01(Round4(b.Left))
	b.Top = clamp01(Round4(b.Top))
	b.Width = clamp01(Round4(b.Width))
	b.Height = clamp01(Round4(b.Height))
	if b.Left+b.Width > 1 {
		b.Width = Round4(1 - b.Left)
	}
	if b.Top+b.Height > 1 {
		b.Height = Round4(1 - b.Top)
	}
	return b
}

// Detection is one identified object or region in a photo, normalized into
// the canonical schema shared by every provider adapter. Optional fields are
// pointers so that "not provided" stays distinguishable from zero.
type Detection struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`

	// Confidence is 0-100. Absent for providers that do not report it.
	Confidence  *float64     `json:"confidence,omitempty"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`

	// Count is a discrete material quantity.
	Count *int `json:"count,omitempty"`

	// Volume fields are populated only for loose_material detections that
	// carry a provider estimate.
	VolumeEstimate   *float64 `json:"volumeEstimate,omitempty"`
	VolumeUnit       string   `json:"volumeUnit,omitempty"`
	VolumeConfidence string   `json:"volumeConfidence,omitempty"`
	VolumeReference  string   `json:"volumeReference,omitempty"`
	VolumeNotes      string   `json:"volumeNotes,omitempty"`

	// UserVolumeOverride is set by a human reviewer after analysis. When
	// present it takes precedence over VolumeEstimate everywhere downstream.
	UserVolumeOverride *float64 `json:"userVolumeOverride,omitempty"`
}

// EffectiveVolume returns the volume to use for aggregation and display: the
// user override when present, otherwise the provider estimate. The second
// return value is false when neither is available.
func (d Detection) EffectiveVolume() (float64, bool) {
	if d.UserVolumeOverride != nil {
		return *d.UserVolumeOverride, true
	}
	if d.VolumeEstimate != nil {
		return *d.VolumeEstimate, true
	}
	return 0, false
}

// AnalysisRecord is the durable result of analyzing a single photo.
type AnalysisRecord struct {
	AnalysisID   string
	PhotoID      string
	PropertyID   string
	Status       AnalysisStatus
	Detections   []Detection
	Summary      AnalysisSummary
	ErrorMessage string
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// PhotoRecord references an uploaded photo in object storage. It is owned by
// the photo catalog and immutable once analysis begins.
type PhotoRecord struct {
	PhotoID    string
	PropertyID string
	Bucket     string
	StorageKey string
	Filename   string
	UploadedAt time.Time
}

// Round2 rounds to two decimal places. Confidence and volume values are
// coerced through this before persisting so they stay stable across JSON
// round-trips.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to four decimal places, used for bounding-box components.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
