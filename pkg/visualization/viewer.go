// Package visualization renders the intermediary fields of an extraction
// (detrended surface, amplitude spectrum, autocorrelation and extrema) as
// images for inspection.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"

	"sparams/internal/models"
	"sparams/pkg/extraction"
)

// Stage directories under the output directory
const (
	StageFitted   = "fitted"
	StageSpectrum = "spectrum"
	StageACF      = "acf"
	StageExtrema  = "extrema"
)

// Viewer writes the fields of built caches to image files
type Viewer struct {
	// outputDir holds one sub-directory per stage
	outputDir string

	// ext selects the encoder: ".png" keeps 16 bits, ".jpg" is lossy
	ext string

	// heat renders spectrum and ACF with the heat palette
	heat bool

	// minSize upscales smaller fields (nearest neighbour) so single
	// samples stay visible; 0 keeps the native size
	minSize int

	logger *log.Logger
}

// NewViewer creates a viewer that writes PNG images below outputDir
func NewViewer(outputDir string, logger *log.Logger) *Viewer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Viewer{
		outputDir: outputDir,
		ext:       ".png",
		logger:    logger,
	}
}

// SetFormat switches between "png" and "jpg" output
func (v *Viewer) SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "png":
		v.ext = ".png"
	case "jpg", "jpeg":
		v.ext = ".jpg"
	default:
		return fmt.Errorf("invalid image format: %s (must be png or jpg)", format)
	}
	return nil
}

// SetColormap toggles the heat palette for the spectrum and ACF stages
func (v *Viewer) SetColormap(heat bool) {
	v.heat = heat
}

// SetMinSize sets the smallest side length of written images
func (v *Viewer) SetMinSize(size int) {
	if size < 0 {
		size = 0
	}
	v.minSize = size
}

// Normalize maps data linearly onto [0, 1]. A constant field maps to zeros.
// Non-finite values are treated as the minimum.
func Normalize(data []float64) []float64 {
	out := make([]float64, len(data))
	finite := make([]float64, 0, len(data))
	for _, x := range data {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	if len(finite) == 0 {
		return out
	}

	lo, hi := floats.Min(finite), floats.Max(finite)
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, x := range data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		out[i] = (x - lo) / span
	}
	return out
}

// LogScale compresses the dynamic range of a non-negative field such as an
// amplitude spectrum. Values are offset by a millionth of the maximum so
// zeros stay finite.
func LogScale(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	floor := floats.Max(data) * 1e-6
	if floor <= 0 {
		return out
	}
	for i, x := range data {
		out[i] = math.Log10(math.Max(x, 0) + floor)
	}
	return out
}

// ToImage converts a row-major dim×dim field into a 16-bit grayscale image,
// normalising it first
func ToImage(data []float64, dim int) (*image.Gray16, error) {
	if dim <= 0 || len(data) != dim*dim {
		return nil, fmt.Errorf("field has %d values, expected %dx%d", len(data), dim, dim)
	}

	norm := Normalize(data)
	img := image.NewGray16(image.Rect(0, 0, dim, dim))
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			value := uint16(math.Max(0, math.Min(65535, math.Round(norm[y*dim+x]*65535))))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img, nil
}

// RenderFitted draws the surface the cache was built on after detrending
func RenderFitted(cache *extraction.Cache) (*image.Gray16, error) {
	return ToImage(cache.Fitted(), cache.HeightMap().Dim)
}

// RenderSpectrum draws the centred amplitude spectrum on a log scale
func RenderSpectrum(cache *extraction.Cache) (*image.Gray16, error) {
	s := cache.Spectrum()
	return ToImage(LogScale(s.Amplitude), s.Dim)
}

// RenderACF draws the centred autocorrelation field
func RenderACF(cache *extraction.Cache) (*image.Gray16, error) {
	a := cache.ACF()
	return ToImage(a.Values, a.Dim)
}

// RenderExtrema marks the peaks and pits found on the fitted surface
func RenderExtrema(cache *extraction.Cache) (*image.RGBA, error) {
	base, err := RenderFitted(cache)
	if err != nil {
		return nil, err
	}
	return OverlayExtrema(base, cache.Extrema()), nil
}

// SaveImage encodes img into filename; the extension picks the format
func SaveImage(img image.Image, filename string) error {
	return imaging.Save(img, filename, imaging.JPEGQuality(90))
}

func (v *Viewer) render(stage string, cache *extraction.Cache) (image.Image, error) {
	switch stage {
	case StageFitted:
		return RenderFitted(cache)
	case StageSpectrum:
		if v.heat {
			s := cache.Spectrum()
			return ToHeatmap(LogScale(s.Amplitude), s.Dim)
		}
		return RenderSpectrum(cache)
	case StageACF:
		if v.heat {
			a := cache.ACF()
			return ToHeatmap(a.Values, a.Dim)
		}
		return RenderACF(cache)
	case StageExtrema:
		return RenderExtrema(cache)
	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}
}

func (v *Viewer) scale(img image.Image) image.Image {
	b := img.Bounds()
	if v.minSize == 0 || b.Dx() >= v.minSize {
		return img
	}
	factor := (v.minSize + b.Dx() - 1) / b.Dx()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}

// SaveCache writes the stage images of one surface and returns their paths
// in stage order: fitted, spectrum, acf, extrema. index is the surface's
// position in its batch and names surfaces that have no name.
func (v *Viewer) SaveCache(index int, hm models.HeightMap, cache *extraction.Cache) ([]string, error) {
	stages := []string{StageFitted, StageSpectrum, StageACF, StageExtrema}

	base := fileStem(hm.Name, index)
	paths := make([]string, 0, len(stages))
	for _, stage := range stages {
		stageDir := filepath.Join(v.outputDir, stage)
		if err := os.MkdirAll(stageDir, 0755); err != nil {
			return paths, fmt.Errorf("failed to create intermediary directory: %w", err)
		}

		img, err := v.render(stage, cache)
		if err != nil {
			return paths, fmt.Errorf("failed to render %s: %w", stage, err)
		}

		filename := filepath.Join(stageDir, base+v.ext)
		if err := SaveImage(v.scale(img), filename); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", filename, err)
		}
		paths = append(paths, filename)
	}
	return paths, nil
}

// Hook adapts the viewer to the extractor's cache hook. Failures are logged
// and never affect the extracted parameters.
func (v *Viewer) Hook() extraction.CacheHook {
	return func(index int, hm models.HeightMap, cache *extraction.Cache) {
		if _, err := v.SaveCache(index, hm, cache); err != nil {
			v.logger.Printf("intermediary images for %s: %v", hm.Name, err)
		}
	}
}

// fileStem turns a surface name into a safe file name. The source
// extension and any region suffix are kept, so "scan.npy" and "scan.txt"
// from one directory do not overwrite each other's images.
func fileStem(name string, index int) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	if stem == "" {
		return fmt.Sprintf("surface_%04d", index)
	}
	return stem
}
