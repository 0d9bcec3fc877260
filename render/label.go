package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/stormcast-io/wxgrid/style"
)

// LabelPoint is one lattice point at which a numeric label is drawn.
type LabelPoint struct {
	X, Y  int
	Value float64 // raw grid value; DrawLabels applies the style's Transform
}

// DrawLabels writes a numeric label at each point of pts onto an RGBA
// image, applying decimals digits of precision and style's pre-display
// transform for unit conversion, per spec.md §4.11. Uses the stdlib basic
// bitmap font (golang.org/x/image/font/basicfont), the same
// no-external-asset approach golang.org/x/image affords weather/flight
// visualization tools in this corpus that need simple overlay text without
// shipping font files.
func DrawLabels(img *image.RGBA, pts []LabelPoint, s *style.Style, decimals int, textColor color.Color) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: face,
	}

	for _, p := range pts {
		v := p.Value
		if s != nil && s.Transform != nil {
			v = s.Transform(v)
		}
		text := fmt.Sprintf("%.*f", decimals, v)
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(p.X),
			Y: fixed.I(p.Y),
		}
		drawer.DrawString(text)
	}
}

// NewRGBACanvas allocates a transparent width x height RGBA image.
func NewRGBACanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
	return img
}
