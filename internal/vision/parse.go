package vision

import (
	"encoding/json"
	"strings"

	"roofscope/internal/domain"
)

// RawDetection is one detection as the boxed-coordinate providers are
// prompted to return it. Provider output is untrusted: unknown fields are
// ignored by the decoder, optional fields stay nil, and numeric values are
// clamped during normalization.
type RawDetection struct {
	Label       string   `json:"label"`
	Category    string   `json:"category"`
	Confidence  *float64 `json:"confidence"`
	BoundingBox *RawBox  `json:"boundingBox"`
	Count       *int     `json:"count"`

	VolumeEstimate   *float64 `json:"volumeEstimate"`
	VolumeUnit       string   `json:"volumeUnit"`
	VolumeConfidence string   `json:"volumeConfidence"`
	VolumeReference  string   `json:"volumeReference"`
	VolumeNotes      string   `json:"volumeNotes"`
}

type RawBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Envelope is the JSON document both prompts ask for: a detections array plus
// an opaque analysis payload.
type Envelope struct {
	Detections []RawDetection  `json:"detections"`
	Analysis   json.RawMessage `json:"analysis"`
}

// ParseBoxedEnvelope decodes a boxed-coordinate provider reply and normalizes
// it into the canonical model. Returns a MalformedResponseError when the text
// is not the expected envelope.
func ParseBoxedEnvelope(text string) (*Result, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	return NormalizeEnvelope(env), nil
}

// NormalizeEnvelope converts an already-decoded envelope into the canonical
// model, applying category fallback, clamping, and the loose-material volume
// rules. Variants with their own wire shape convert to Envelope first.
func NormalizeEnvelope(env Envelope) *Result {
	detections := make([]domain.Detection, 0, len(env.Detections))
	for _, raw := range env.Detections {
		detections = append(detections, normalizeDetection(raw))
	}

	summary := domain.AnalysisSummary(env.Analysis)
	if len(summary) == 0 || string(summary) == "null" {
		summary = domain.AnalysisSummary("{}")
	}

	return &Result{Detections: detections, Summary: summary}
}

func normalizeDetection(raw RawDetection) domain.Detection {
	label := strings.TrimSpace(raw.Label)
	if label == "" {
		label = "Unknown"
	}

	d := domain.Detection{
		Label:    label,
		Category: domain.ParseCategory(raw.Category),
	}

	if raw.Confidence != nil {
		c := domain.Round2(clampRange(*raw.Confidence, 0, 100))
		d.Confidence = &c
	}

	if raw.BoundingBox != nil {
		b := domain.BoundingBox{
			Left:   raw.BoundingBox.Left,
			Top:    raw.BoundingBox.Top,
			Width:  raw.BoundingBox.Width,
			Height: raw.BoundingBox.Height,
		}.Clamp()
		d.BoundingBox = &b
	}

	if raw.Count != nil && *raw.Count > 0 {
		count := *raw.Count
		d.Count = &count
	}

	// Volume fields are carried only for loose materials the provider
	// actually estimated.
	if d.Category == domain.CategoryLooseMaterial && raw.VolumeEstimate != nil {
		v := domain.Round2(*raw.VolumeEstimate)
		if v < 0 {
			v = 0
		}
		d.VolumeEstimate = &v
		d.VolumeUnit = raw.VolumeUnit
		if d.VolumeUnit == "" {
			d.VolumeUnit = "cubic_yards"
		}
		d.VolumeConfidence = parseVolumeConfidence(raw.VolumeConfidence)
		d.VolumeReference = raw.VolumeReference
		d.VolumeNotes = raw.VolumeNotes
	}

	return d
}

func parseVolumeConfidence(s string) string {
	switch s {
	case domain.VolumeConfidenceHigh, domain.VolumeConfidenceMedium,
		domain.VolumeConfidenceLow, domain.VolumeConfidenceNone:
		return s
	default:
		return domain.VolumeConfidenceLow
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
