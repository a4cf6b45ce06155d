package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	_ "github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"roofscope/internal/domain"
)

// DefaultJPEGQuality is the encode quality for annotated images.
const DefaultJPEGQuality = 90

const outlineThickness = 3

var categoryColors = map[domain.Category]color.NRGBA{
	domain.CategoryDamage:        {R: 255, A: 255},
	domain.CategoryMaterial:      {G: 255, A: 255},
	domain.CategoryLooseMaterial: {R: 255, G: 191, A: 255},
	domain.CategoryOther:         {R: 255, G: 165, A: 255},
}

// Annotate draws each detection's bounding box and label onto the image and
// returns the result re-encoded as JPEG. Detections without a bounding box
// are skipped; an image with zero drawable detections is still re-encoded.
func Annotate(imageBytes []byte, detections []domain.Detection, quality int) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := imaging.Clone(src)
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	for _, d := range detections {
		if d.BoundingBox == nil {
			continue
		}

		left := int(d.BoundingBox.Left * float64(width))
		top := int(d.BoundingBox.Top * float64(height))
		boxWidth := int(d.BoundingBox.Width * float64(width))
		boxHeight := int(d.BoundingBox.Height * float64(height))

		c, ok := categoryColors[d.Category]
		if !ok {
			c = categoryColors[domain.CategoryOther]
		}

		drawOutline(img, image.Rect(left, top, left+boxWidth, top+boxHeight), c)
		drawLabel(img, d.Label, left, top)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func drawOutline(img *image.NRGBA, box image.Rectangle, c color.NRGBA) {
	t := outlineThickness
	strips := []image.Rectangle{
		image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+t),
		image.Rect(box.Min.X, box.Max.Y-t, box.Max.X, box.Max.Y),
		image.Rect(box.Min.X, box.Min.Y, box.Min.X+t, box.Max.Y),
		image.Rect(box.Max.X-t, box.Min.Y, box.Max.X, box.Max.Y),
	}
	for _, strip := range strips {
		draw.Draw(img, strip.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
	}
}

// drawLabel renders the label above the box on a dark backing so it stays
// readable over busy roof textures.
func drawLabel(img *image.NRGBA, label string, x, y int) {
	if label == "" {
		return
	}

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, label).Ceil()

	labelTop := y - 20
	if labelTop < 0 {
		labelTop = 0
	}

	backing := image.Rect(x, labelTop, x+textWidth+8, labelTop+16)
	draw.Draw(img, backing.Intersect(img.Bounds()), image.NewUniform(color.NRGBA{A: 180}), image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
		Dot:  fixed.P(x+4, labelTop+12),
	}
	drawer.DrawString(label)
}
