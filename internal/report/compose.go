package report

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"roofscope/internal/domain"
)

// ErrNoAnalyzablePhotos is returned when a report has nothing to render.
var ErrNoAnalyzablePhotos = errors.New("no analyzable photos")

const (
	pageMargin    = 12.7  // 0.5in in mm
	maxImageWidth = 152.4 // 6in in mm
)

// Compose lays out the full inspection report as a PDF: title block, executive
// summary table, then one section per photo in input order. A photo whose
// image cannot be annotated loses only its image; a photo whose analysis
// payload is unparsable loses only its AI-assessment block.
func Compose(propertyName string, generatedAt time.Time, photos []PhotoData) ([]byte, error) {
	if len(photos) == 0 {
		return nil, ErrNoAnalyzablePhotos
	}

	summary := Summarize(photos)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "Roof Inspection Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, "Property: "+propertyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, "Generated: "+generatedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	writeSummaryTable(pdf, summary)
	pdf.Ln(10)

	for i, photo := range photos {
		writePhotoSection(pdf, i+1, photo)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummaryTable(pdf *fpdf.Fpdf, summary Summary) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, "Executive Summary", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	volume := "N/A"
	if summary.TotalVolume > 0 {
		volume = fmt.Sprintf("%.1f cubic yards", summary.TotalVolume)
	}

	rows := [][2]string{
		{"Total Photos Analyzed", strconv.Itoa(summary.PhotoCount)},
		{"Damage Detections", strconv.Itoa(summary.DamageCount)},
		{"Material Detections", strconv.Itoa(summary.MaterialCount)},
		{"Loose Material Detections", strconv.Itoa(summary.LooseMaterialCount)},
		{"Estimated Total Volume", volume},
		{"Severe Damage Photos", strconv.Itoa(summary.SeverityCounts[domain.SeveritySevere])},
		{"Moderate Damage Photos", strconv.Itoa(summary.SeverityCounts[domain.SeverityModerate])},
		{"Minor Damage Photos", strconv.Itoa(summary.SeverityCounts[domain.SeverityMinor])},
	}

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetDrawColor(200, 200, 200)
	for _, row := range rows {
		pdf.CellFormat(76.2, 9, row[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(50.8, 9, row[1], "1", 1, "L", true, 0, "")
	}
}

func writePhotoSection(pdf *fpdf.Fpdf, number int, photo PhotoData) {
	pdf.SetFont("Helvetica", "B", 16)
	filename := photo.Filename
	if filename == "" {
		filename = "Unknown"
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Photo %d: %s", number, filename), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(photo.Image) > 0 {
		writeAnnotatedImage(pdf, number, photo)
	}

	pdf.SetFont("Helvetica", "", 12)

	var damage, materials, loose []domain.Detection
	for _, d := range photo.Detections {
		switch d.Category {
		case domain.CategoryDamage:
			damage = append(damage, d)
		case domain.CategoryMaterial:
			materials = append(materials, d)
		case domain.CategoryLooseMaterial:
			loose = append(loose, d)
		}
	}

	if len(damage) > 0 {
		pdf.CellFormat(0, 6, "Damage Detected:", "", 1, "L", false, 0, "")
		for _, d := range damage {
			pdf.CellFormat(0, 6, "  - "+d.Label, "", 1, "L", false, 0, "")
		}
	}

	if len(materials) > 0 {
		pdf.CellFormat(0, 6, "Materials Detected:", "", 1, "L", false, 0, "")
		for _, d := range materials {
			count := 1
			if d.Count != nil {
				count = *d.Count
			}
			pdf.CellFormat(0, 6, fmt.Sprintf("  - %s: %d unit(s)", d.Label, count), "", 1, "L", false, 0, "")
		}
	}

	if len(loose) > 0 {
		pdf.CellFormat(0, 6, "Loose Materials Detected:", "", 1, "L", false, 0, "")
		for _, d := range loose {
			pdf.CellFormat(0, 6, "  - "+formatLooseMaterial(d), "", 1, "L", false, 0, "")
		}
	}

	writeAssessment(pdf, photo.Summary)
	pdf.Ln(8)
}

func writeAnnotatedImage(pdf *fpdf.Fpdf, number int, photo PhotoData) {
	annotated, err := Annotate(photo.Image, photo.Detections, DefaultJPEGQuality)
	if err != nil {
		slog.Error("failed to annotate photo, omitting image", "filename", photo.Filename, "error", err)
		return
	}

	name := fmt.Sprintf("photo-%d", number)
	opts := fpdf.ImageOptions{ImageType: "JPEG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(annotated))
	pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), maxImageWidth, 0, true, opts, 0, "")
	pdf.Ln(4)
}

// formatLooseMaterial renders a loose-material line: a user-confirmed volume,
// an AI estimate with its confidence, or a no-volume fallback.
func formatLooseMaterial(d domain.Detection) string {
	volume, ok := d.EffectiveVolume()
	if !ok {
		return d.Label + ": Volume could not be estimated"
	}

	unit := d.VolumeUnit
	if unit == "" {
		unit = "cubic_yards"
	}
	unit = strings.ReplaceAll(unit, "_", " ")

	if d.UserVolumeOverride != nil {
		return fmt.Sprintf("%s: ~%.1f %s (confirmed)", d.Label, volume, unit)
	}
	if d.VolumeConfidence != "" {
		return fmt.Sprintf("%s: ~%.1f %s [%s confidence]", d.Label, volume, unit, d.VolumeConfidence)
	}
	return fmt.Sprintf("%s: ~%.1f %s", d.Label, volume, unit)
}

func writeAssessment(pdf *fpdf.Fpdf, summary domain.AnalysisSummary) {
	da, ok := summary.DamageAssessment()
	if ok {
		pdf.CellFormat(0, 6, "AI Assessment:", "", 1, "L", false, 0, "")

		severity := da.Severity
		if severity == "" {
			severity = "unknown"
		}
		pdf.CellFormat(0, 6, "  Severity: "+strings.ToUpper(severity), "", 1, "L", false, 0, "")
		if da.Description != "" {
			pdf.MultiCell(0, 6, "  "+da.Description, "", "L", false)
		}
	}

	if rec, found := summary.Recommendations(); found {
		pdf.MultiCell(0, 6, "  Recommendation: "+rec, "", "L", false)
	}
}
