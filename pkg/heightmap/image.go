package heightmap

import (
	"image"

	"github.com/disintegration/imaging"
)

// loadImage decodes a PNG, JPEG, TIFF, BMP or GIF file, honouring the EXIF
// orientation of camera exports
func loadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	return img, nil
}

// ImageToRows converts an image to heights in the 0-1 range, one row per
// image line. Color images contribute their luminance.
func ImageToRows(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	rows := make([][]float64, height)

	for y := 0; y < height; y++ {
		rows[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Convert 16-bit color to float64 (0-1 range)
			rows[y][x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
		}
	}

	return rows
}

func loadImageRows(path string) ([][]float64, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return ImageToRows(img), nil
}
