package spectral

import (
	"fmt"
	"math"
	"strings"
)

// Interpolator returns a value of a grid at a fractional (row, col) index
type Interpolator interface {
	At(row, col float64) float64
}

// InterpolatorFactory builds an interpolator over a spectrum. It is the
// configuration hook that replaces the default bilinear strategy.
type InterpolatorFactory func(s *Spectrum) Interpolator

// Names accepted by FactoryByName
const (
	BilinearName = "bilinear"
	NearestName  = "nearest"
)

// FactoryByName resolves a configured interpolation strategy
func FactoryByName(name string) (InterpolatorFactory, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BilinearName:
		return NewBilinear, nil
	case NearestName:
		return NewNearest, nil
	default:
		return nil, fmt.Errorf("unknown interpolator %q (must be %s or %s)", name, BilinearName, NearestName)
	}
}

type bilinear struct {
	values []float64
	dim    int
}

// NewBilinear returns the default interpolator: bilinear over the four
// surrounding samples, with coordinates clamped to the grid edges
func NewBilinear(s *Spectrum) Interpolator {
	return bilinear{values: s.Amplitude, dim: s.Dim}
}

func (b bilinear) At(row, col float64) float64 {
	return bilinearAt(b.values, b.dim, row, col)
}

type nearest struct {
	values []float64
	dim    int
}

// NewNearest returns a nearest-neighbour interpolator
func NewNearest(s *Spectrum) Interpolator {
	return nearest{values: s.Amplitude, dim: s.Dim}
}

func (n nearest) At(row, col float64) float64 {
	if math.IsNaN(row) || math.IsNaN(col) {
		return math.NaN()
	}
	r := clampIndex(int(math.Round(row)), n.dim)
	c := clampIndex(int(math.Round(col)), n.dim)
	return n.values[r*n.dim+c]
}

// bilinearAt samples a row-major dim×dim grid at a fractional index.
// Out-of-range coordinates are clamped (replicate padding).
func bilinearAt(values []float64, dim int, row, col float64) float64 {
	if math.IsNaN(row) || math.IsNaN(col) {
		return math.NaN()
	}
	maxIdx := float64(dim - 1)
	row = math.Max(0, math.Min(maxIdx, row))
	col = math.Max(0, math.Min(maxIdx, col))

	r0 := int(math.Floor(row))
	c0 := int(math.Floor(col))
	r1 := clampIndex(r0+1, dim)
	c1 := clampIndex(c0+1, dim)
	fr := row - float64(r0)
	fc := col - float64(c0)

	top := values[r0*dim+c0]*(1-fc) + values[r0*dim+c1]*fc
	bottom := values[r1*dim+c0]*(1-fc) + values[r1*dim+c1]*fc
	return top*(1-fr) + bottom*fr
}

func clampIndex(i, dim int) int {
	if i < 0 {
		return 0
	}
	if i >= dim {
		return dim - 1
	}
	return i
}
