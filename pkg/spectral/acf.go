package spectral

import (
	"github.com/mjibson/go-dsp/fft"

	"sparams/internal/models"
)

// ACF is the 2D autocorrelation field of a surface, centred so that
// ZeroLag is the zero-offset sample
type ACF struct {
	Values  []float64
	Dim     int
	ZeroLag models.Point
}

// NewACF derives the autocorrelation from an amplitude spectrum through the
// Wiener–Khinchin relation: the inverse transform of the power spectrum.
// The result is shifted so that zero lag sits at (Dim/2, Dim/2).
func NewACF(s *Spectrum) *ACF {
	dim := s.Dim
	power := unshift(s.Amplitude, dim)

	grid := make([][]complex128, dim)
	for i := range grid {
		grid[i] = make([]complex128, dim)
		for j := range grid[i] {
			a := power[i*dim+j]
			grid[i][j] = complex(a*a, 0)
		}
	}

	inv := fft.IFFT2(grid)

	values := make([]float64, dim*dim)
	for i := range inv {
		for j := range inv[i] {
			values[i*dim+j] = real(inv[i][j])
		}
	}

	cRow, cCol := s.Center()
	return &ACF{
		Values:  shift(values, dim),
		Dim:     dim,
		ZeroLag: models.Point{Row: cRow, Col: cCol},
	}
}

// ZeroLagValue is the autocorrelation at zero offset (the surface variance
// up to a constant factor)
func (a *ACF) ZeroLagValue() float64 {
	return a.Values[a.ZeroLag.Row*a.Dim+a.ZeroLag.Col]
}

// Sample returns the bilinearly interpolated ACF at a fractional lag
// (rows, cols) measured from the zero-lag index
func (a *ACF) Sample(rowLag, colLag float64) float64 {
	return bilinearAt(a.Values, a.Dim, float64(a.ZeroLag.Row)+rowLag, float64(a.ZeroLag.Col)+colLag)
}

// MaxLag is the largest lag, in samples, that stays inside the field in
// every direction
func (a *ACF) MaxLag() float64 {
	// the shorter side of the centred field
	lag := a.Dim - 1 - a.ZeroLag.Row
	if a.ZeroLag.Row < lag {
		lag = a.ZeroLag.Row
	}
	return float64(lag)
}
