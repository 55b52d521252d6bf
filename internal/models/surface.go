package models

import "fmt"

// HeightMap represents a square grid of surface-height samples with metadata
type HeightMap struct {
	// Data holds the height samples in row-major order (Dim*Dim values)
	Data []float64

	// Dim is the side length of the grid in samples
	Dim int

	// Dx and Dy are the physical sample spacings along columns and rows
	Dx, Dy float64

	// Name identifies the surface in result tables (usually the source file)
	Name string
}

// NewHeightMap wraps row-major data of side length dim.
// The data slice is not copied.
func NewHeightMap(data []float64, dim int, dx, dy float64) HeightMap {
	return HeightMap{Data: data, Dim: dim, Dx: dx, Dy: dy}
}

// FromRows builds a height map from a 2D slice. Rows of unequal length
// are reported as an error; non-square grids are left to the extraction
// engine to reject.
func FromRows(rows [][]float64, dx, dy float64) (HeightMap, error) {
	if len(rows) == 0 {
		return HeightMap{Dx: dx, Dy: dy}, nil
	}
	width := len(rows[0])
	data := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return HeightMap{}, fmt.Errorf("row %d has %d values, expected %d", i, len(row), width)
		}
		data = append(data, row...)
	}
	hm := HeightMap{Data: data, Dim: len(rows), Dx: dx, Dy: dy}
	if width != len(rows) {
		// Dim only describes square grids; keep the mismatch visible
		hm.Dim = -1
	}
	return hm, nil
}

// At returns the sample at the given row and column
func (h HeightMap) At(row, col int) float64 {
	return h.Data[row*h.Dim+col]
}

// IsSquare reports whether Data holds exactly Dim*Dim samples
func (h HeightMap) IsSquare() bool {
	return h.Dim > 0 && len(h.Data) == h.Dim*h.Dim
}

// Region copies the size×size sub-grid whose top-left corner is (row, col).
// This is how interactive callers cut a patch out of a larger scan.
func (h HeightMap) Region(row, col, size int) (HeightMap, error) {
	if size <= 0 {
		return HeightMap{}, fmt.Errorf("region size must be positive")
	}
	if row < 0 || col < 0 || row+size > h.Dim || col+size > h.Dim {
		return HeightMap{}, fmt.Errorf("region %dx%d at (%d,%d) extends beyond %dx%d grid",
			size, size, row, col, h.Dim, h.Dim)
	}

	data := make([]float64, size*size)
	for r := 0; r < size; r++ {
		copy(data[r*size:(r+1)*size], h.Data[(row+r)*h.Dim+col:(row+r)*h.Dim+col+size])
	}

	return HeightMap{
		Data: data,
		Dim:  size,
		Dx:   h.Dx,
		Dy:   h.Dy,
		Name: fmt.Sprintf("%s[%d:%d,%d:%d]", h.Name, row, row+size, col, col+size),
	}, nil
}

// Point is a grid coordinate
type Point struct {
	Row, Col int
}
