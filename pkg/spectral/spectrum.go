// Package spectral holds the frequency-domain artifacts of a detrended
// surface: the centred amplitude spectrum, interpolators over it, the
// directional amplitude integrals and the autocorrelation field.
package spectral

import (
	"fmt"
	"math/cmplx"
)

// Spectrum is the centred 2D amplitude spectrum of a square surface.
//
// Amplitude[row*Dim+col] is |F|/Dim² with the DC term at (Dim/2, Dim/2).
// XF[col] and YF[row] give the spatial frequency of each index in cycles
// per sample; divide by the pixel spacing for physical frequencies.
type Spectrum struct {
	Amplitude []float64
	Dim       int
	XF        []float64
	YF        []float64
}

// NewSpectrum computes the amplitude spectrum of a row-major dim×dim surface
func NewSpectrum(surface []float64, dim int) (*Spectrum, error) {
	if dim <= 0 || len(surface) != dim*dim {
		return nil, fmt.Errorf("spectrum needs a non-empty square grid, got %d samples for side %d", len(surface), dim)
	}

	coeffs := fft2D(surface, dim)

	norm := float64(dim * dim)
	amplitude := make([]float64, len(coeffs))
	for i, c := range coeffs {
		amplitude[i] = cmplx.Abs(c) / norm
	}

	return &Spectrum{
		Amplitude: shift(amplitude, dim),
		Dim:       dim,
		XF:        Frequencies(dim),
		YF:        Frequencies(dim),
	}, nil
}

// Frequencies returns the centred frequency axis for n samples with unit
// spacing: index k maps to (k - n/2)/n cycles per sample.
func Frequencies(n int) []float64 {
	f := make([]float64, n)
	for k := range f {
		f[k] = float64(k-n/2) / float64(n)
	}
	return f
}

// At returns the amplitude at an integer index
func (s *Spectrum) At(row, col int) float64 {
	return s.Amplitude[row*s.Dim+col]
}

// Center returns the index of the zero-frequency term
func (s *Spectrum) Center() (row, col int) {
	return s.Dim / 2, s.Dim / 2
}

// MaxRadius is the largest integer radius that stays inside the spectrum
// along the axes
func (s *Spectrum) MaxRadius() int {
	return s.Dim / 2
}
