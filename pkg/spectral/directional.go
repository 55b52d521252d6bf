package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Polar converts a polar offset from the spectrum centre into a fractional
// grid index. Angles are measured counter-clockwise from the +x (column)
// axis, so rows decrease as the angle approaches π/2.
func (s *Spectrum) Polar(radius, angle float64) (row, col float64) {
	cRow, cCol := s.Center()
	return float64(cRow) - radius*math.Sin(angle), float64(cCol) + radius*math.Cos(angle)
}

// Ray samples the spectrum along the ray at the given angle, at integer
// radii 1..Dim/2. Element k holds the amplitude at radius k+1.
func Ray(s *Spectrum, interp Interpolator, angle float64) []float64 {
	n := s.MaxRadius()
	out := make([]float64, n)
	for r := 1; r <= n; r++ {
		row, col := s.Polar(float64(r), angle)
		out[r-1] = interp.At(row, col)
	}
	return out
}

// AngularAmplitudeSum integrates the amplitude along one ray with unit
// radial step
func AngularAmplitudeSum(s *Spectrum, interp Interpolator, angle float64) float64 {
	return floats.Sum(Ray(s, interp, angle))
}

// RadialAmplitudeSum integrates the amplitude along the upper semicircle of
// the given radius. The arc is sampled roughly once per pixel of arc length
// and the sum is weighted by the arc step, so results at different radii
// are comparable line integrals.
func RadialAmplitudeSum(s *Spectrum, interp Interpolator, radius float64) float64 {
	if radius <= 0 {
		return 0
	}
	n := int(math.Ceil(math.Pi * radius))
	if n < 2 {
		n = 2
	}
	step := math.Pi / float64(n)

	sum := 0.0
	for j := 0; j < n; j++ {
		row, col := s.Polar(radius, float64(j)*step)
		sum += interp.At(row, col)
	}
	return sum * radius * step
}

// AngularAmplitudes integrates the spectrum along m rays at angles i·π/m,
// i = 0..m-1. Index order follows increasing angle.
func AngularAmplitudes(s *Spectrum, interp Interpolator, m int) []float64 {
	out := make([]float64, m)
	for i := range out {
		out[i] = AngularAmplitudeSum(s, interp, float64(i)*math.Pi/float64(m))
	}
	return out
}

// Radii returns count radii linearly spaced from 1 to dim/2 inclusive
func Radii(dim, count int) []float64 {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []float64{1}
	}
	return floats.Span(make([]float64, count), 1, float64(dim/2))
}

// RadialAmplitudes integrates the spectrum over m/2 semicircles whose radii
// are Radii(dim, m/2). Index order follows increasing radius.
func RadialAmplitudes(s *Spectrum, interp Interpolator, m int) []float64 {
	radii := Radii(s.Dim, m/2)
	out := make([]float64, len(radii))
	for i, r := range radii {
		out[i] = RadialAmplitudeSum(s, interp, r)
	}
	return out
}
