package vision

import (
	"context"

	"roofscope/internal/domain"
)

// Analyzer is the contract every vision provider adapter implements. The
// returned detections are already normalized into the canonical model; the
// summary is the provider's analysis payload carried verbatim.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mediaType string) (*Result, error)
}

// Result is the normalized output of one provider call.
type Result struct {
	Detections []domain.Detection
	Summary    domain.AnalysisSummary
}

// BoxedPrompt instructs providers that report bounding boxes already
// normalized to [0,1] as left/top/width/height, with a 0-100 confidence per
// detection.
const BoxedPrompt = `Analyze this roof/construction image for damage, materials, and loose material volumes.

TASK 1 - OBJECT DETECTION:
Identify all visible items and provide bounding boxes. For each detection:
- label: What you see (e.g., "Hail damage", "Missing shingles", "Shingle bundle", "Plywood sheet")
- category: One of "damage", "material", "loose_material", or "other"
- confidence: Your confidence 0-100 (be conservative - use 60-80 for uncertain items)
- boundingBox: Normalized coordinates (0-1 scale) with left, top, width, height
- count: For discrete materials, how many of this item are visible

TASK 2 - DAMAGE ASSESSMENT:
Evaluate any roof damage visible:
- severity: "none", "minor", "moderate", or "severe"
- damageTypes: Array of damage types found (e.g., ["hail", "wind", "missing_shingles"])
- description: Brief description of damage observed

TASK 3 - MATERIAL INVENTORY:
Count visible construction materials (shingle bundles, plywood sheets, and
other roofing materials), with any brand/type visible.

TASK 4 - LOOSE MATERIAL VOLUME ESTIMATION:
For loose materials like gravel, mulch, sand, dirt, or stone piles, use
reference objects in the image (vehicles, pallets, wheelbarrows, buckets,
people) to estimate volume in cubic yards. For each loose material detection
include:
- volumeEstimate: Estimated volume as a number (in cubic yards), or null if it cannot be estimated
- volumeUnit: "cubic_yards"
- volumeConfidence: "high", "medium", "low", or "none"
- volumeReference: What reference object was used for scale, or "no_reference"
- volumeNotes: Explanation of the estimate or why it could not be calculated

Respond ONLY with valid JSON in this exact format:
{
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
    "analysis": {
        "damageAssessment": {
            "severity": "moderate",
            "description": "Multiple hail impact marks visible on shingles",
            "damageTypes": ["hail"]
        },
        "materials": {
            "detected": ["Shingle bundles", "Plywood sheets"],
            "description": "5 shingle bundles and 3 plywood sheets visible"
        },
        "overallConfidence": "high",
        "recommendations": "Professional inspection recommended"
    }
}`

// GridPrompt instructs providers that report bounding boxes as
// [ymin, xmin, ymax, xmax] on an integer 0-1000 grid and no confidence.
const GridPrompt = `Analyze this roof/construction image for damage, materials, and loose material volumes.

TASK 1 - OBJECT DETECTION WITH BOUNDING BOXES:
Detect all visible items. For each detection include:
- box_2d: Bounding box as [ymin, xmin, ymax, xmax] normalized to 0-1000
- label: What you see (e.g., "Hail damage", "Missing shingles", "Shingle bundle", "Gravel pile")
- category: One of "damage", "material", "loose_material", or "other"
- count: For discrete materials, how many of this item are visible (default 1)

TASK 2 - DAMAGE ASSESSMENT:
Evaluate any roof damage visible:
- severity: "none", "minor", "moderate", or "severe"
- damageTypes: Array of damage types found (e.g., ["hail", "wind", "missing_shingles"])
- description: Brief description of damage observed

TASK 3 - MATERIAL INVENTORY:
Count visible construction materials, with any brand/type visible.

TASK 4 - LOOSE MATERIAL VOLUME ESTIMATION:
For loose materials like gravel, mulch, sand, dirt, or stone piles, use
reference objects in the image for scale. For each loose material detection
include:
- volumeEstimate: Estimated volume as a number (in cubic yards), or null if it cannot be estimated
- volumeUnit: "cubic_yards"
- volumeConfidence: "high", "medium", "low", or "none"
- volumeReference: What reference object was used for scale, or "no_reference"
- volumeNotes: Explanation of the estimate or why it could not be calculated

Respond with valid JSON in this exact format:
{
    "detections": [
        {
            "box_2d": [100, 200, 400, 600],
            "label": "Shingle bundle",
            "category": "material",
            "count": 5
        },
        {
            "box_2d": [50, 300, 500, 800],
            "label": "Gravel pile",
            "category": "loose_material",
            "volumeEstimate": 3.5,
            "volumeUnit": "cubic_yards",
            "volumeConfidence": "medium",
            "volumeReference": "pickup truck bed visible for scale",
            "volumeNotes": "Estimated based on comparison to standard 6-foot truck bed"
        }
    ],
    "analysis": {
        "damageAssessment": {
            "severity": "moderate",
            "description": "Multiple hail impact marks visible on shingles",
            "damageTypes": ["hail"]
        },
        "overallConfidence": "high",
        "recommendations": "Professional inspection recommended"
    }
}`
