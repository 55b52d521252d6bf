package visualization

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
	colorful "github.com/lucasb-eyer/go-colorful"

	"sparams/pkg/extrema"
)

// heatStops run from low (dark blue) to high (pale yellow)
var heatStops = []colorful.Color{
	{R: 0.05, G: 0.03, B: 0.35},
	{R: 0.45, G: 0.10, B: 0.55},
	{R: 0.85, G: 0.30, B: 0.30},
	{R: 0.98, G: 0.65, B: 0.15},
	{R: 0.99, G: 0.95, B: 0.65},
}

// Heat maps t in [0, 1] onto the heat palette, blending stops in Lab space
func Heat(t float64) color.RGBA {
	if t <= 0 {
		return toRGBA(heatStops[0])
	}
	if t >= 1 {
		return toRGBA(heatStops[len(heatStops)-1])
	}
	pos := t * float64(len(heatStops)-1)
	i := int(pos)
	c := heatStops[i].BlendLab(heatStops[i+1], pos-float64(i))
	return toRGBA(c)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ToHeatmap is ToImage with the heat palette instead of gray levels
func ToHeatmap(data []float64, dim int) (*image.RGBA, error) {
	if dim <= 0 || len(data) != dim*dim {
		return nil, fmt.Errorf("field has %d values, expected %dx%d", len(data), dim, dim)
	}

	norm := Normalize(data)
	img := image.NewRGBA(image.Rect(0, 0, dim, dim))
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			img.SetRGBA(x, y, Heat(norm[y*dim+x]))
		}
	}
	return img, nil
}

// Marker colours of the extrema overlay
var (
	PeakColor = color.RGBA{R: 230, G: 30, B: 30, A: 255}
	PitColor  = color.RGBA{R: 30, G: 90, B: 230, A: 255}
)

// OverlayExtrema paints the local maxima and minima of set onto a copy of
// base
func OverlayExtrema(base image.Image, set extrema.Set) *image.RGBA {
	img := clone.AsRGBA(base)
	b := img.Bounds()
	for _, p := range set.Maxima {
		img.SetRGBA(b.Min.X+p.Col, b.Min.Y+p.Row, PeakColor)
	}
	for _, p := range set.Minima {
		img.SetRGBA(b.Min.X+p.Col, b.Min.Y+p.Row, PitColor)
	}
	return img
}
