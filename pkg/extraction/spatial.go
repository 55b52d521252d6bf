package extraction

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sparams/pkg/spectral"
)

const (
	// summitDensityScale converts summits per µm² into summits per mm²
	summitDensityScale = 1e6

	// correlationDirections is the number of half-plane directions searched
	// for correlation lengths; the ACF is point symmetric
	correlationDirections = 16

	// correlationStep is the radial search step in samples
	correlationStep = 0.5
)

// summitDensity is S_ds, the number of local maxima per unit area
func summitDensity(summits, dim int, dx, dy float64) float64 {
	return ratio(float64(summits), projectedArea(dim, dx, dy)) * summitDensityScale
}

// textureDirection is S_td in degrees: the angle of the ray with the
// largest integrated amplitude, refined by a parabola through the peak and
// its two angular neighbours. Angles are periodic in 180°.
func textureDirection(angular []float64) float64 {
	m := len(angular)
	if m == 0 {
		return math.NaN()
	}
	i := floats.MaxIdx(angular)
	if !(angular[i] > 0) {
		return math.NaN()
	}

	prev := angular[(i-1+m)%m]
	next := angular[(i+1)%m]
	offset := 0.0
	if denom := prev - 2*angular[i] + next; denom < 0 {
		offset = math.Max(-0.5, math.Min(0.5, 0.5*(prev-next)/denom))
	}

	deg := (float64(i) + offset) * 180 / float64(m)
	return math.Mod(deg+180, 180)
}

// dominanceIndex is mean/max of a set of directional amplitudes: 1 for a
// perfectly even distribution, approaching 1/n for a single spike. Used for
// both S_tdi and S_rwi.
func dominanceIndex(amplitudes []float64) float64 {
	if len(amplitudes) == 0 {
		return math.NaN()
	}
	return ratio(stat.Mean(amplitudes, nil), floats.Max(amplitudes))
}

// wavelength converts a spectrum radius (in frequency samples) into a
// physical wavelength along x
func wavelength(dim int, dx, radius float64) float64 {
	return ratio(float64(dim)*dx, radius)
}

// radialWavelength is S_rw, the wavelength of the semicircle carrying the
// largest amplitude
func radialWavelength(radial []float64, dim int, dx float64) float64 {
	if len(radial) == 0 || !(floats.Max(radial) > 0) {
		return math.NaN()
	}
	radii := spectral.Radii(dim, len(radial))
	return wavelength(dim, dx, radii[floats.MaxIdx(radial)])
}

// halfWavelength is S_hw, the wavelength of the radius at which the
// cumulative radial amplitude first reaches half its total. The crossing
// radius is interpolated linearly between sampled radii.
func halfWavelength(radial []float64, dim int, dx float64) float64 {
	if len(radial) == 0 {
		return math.NaN()
	}
	cum := floats.CumSum(make([]float64, len(radial)), radial)
	total := cum[len(cum)-1]
	if !(total > 0) {
		return math.NaN()
	}
	half := total / 2
	radii := spectral.Radii(dim, len(radial))

	for k, c := range cum {
		if c < half {
			continue
		}
		if k == 0 {
			return wavelength(dim, dx, radii[0])
		}
		t := (half - cum[k-1]) / (c - cum[k-1])
		return wavelength(dim, dx, radii[k-1]+t*(radii[k]-radii[k-1]))
	}
	return math.NaN()
}

// fractalDimension is S_fd. Along each of m rays the amplitude is regressed
// against frequency in log-log space; a decay slope s corresponds to a
// fractal dimension of 4+s for an fBm-like surface. The per-ray estimates
// are averaged and clamped to the physical range [2, 3].
func fractalDimension(s *spectral.Spectrum, interp spectral.Interpolator, m int) float64 {
	if s == nil || interp == nil || m <= 0 || s.Dim < 2 {
		return math.NaN()
	}

	step := s.XF[1] - s.XF[0]

	var dims []float64
	for i := 0; i < m; i++ {
		ray := spectral.Ray(s, interp, float64(i)*math.Pi/float64(m))

		var logF, logA []float64
		for k, a := range ray {
			if a > 0 && !math.IsInf(a, 0) {
				logF = append(logF, math.Log(float64(k+1)*step))
				logA = append(logA, math.Log(a))
			}
		}
		if len(logF) < 3 {
			continue
		}
		_, slope := stat.LinearRegression(logF, logA, nil, false)
		if !math.IsNaN(slope) && !math.IsInf(slope, 0) {
			dims = append(dims, 4+slope)
		}
	}
	if len(dims) == 0 {
		return math.NaN()
	}
	return math.Max(2, math.Min(3, stat.Mean(dims, nil)))
}

// correlationLengths searches the normalised ACF outward from zero lag
// along correlationDirections directions in [0, π) and returns, for each,
// the physical distance at which it first drops below threshold. The
// crossing is interpolated between the two bracketing samples. Directions
// that never drop below threshold inside the field report the search
// radius, so a lower threshold can never give a shorter length.
// Returns nil when the ACF has no usable zero-lag value.
func correlationLengths(acf *spectral.ACF, dx, dy, threshold float64) []float64 {
	if acf == nil {
		return nil
	}
	zero := acf.ZeroLagValue()
	maxLag := acf.MaxLag()
	if !(zero > 0) || math.IsInf(zero, 0) || maxLag <= 0 {
		return nil
	}

	lengths := make([]float64, correlationDirections)
	for k := range lengths {
		theta := float64(k) * math.Pi / correlationDirections
		cos, sin := math.Cos(theta), math.Sin(theta)

		lag := maxLag
		prevT, prevV := 0.0, 1.0
		for t := correlationStep; t <= maxLag+1e-9; t += correlationStep {
			v := acf.Sample(-t*sin, t*cos) / zero
			if v < threshold {
				lag = prevT + correlationStep*(prevV-threshold)/(prevV-v)
				break
			}
			prevT, prevV = t, v
		}

		lengths[k] = math.Hypot(lag*cos*dx, lag*sin*dy)
	}
	return lengths
}

// autocorrelationLength is S_cl: the shortest correlation length over all
// directions
func autocorrelationLength(acf *spectral.ACF, dx, dy, threshold float64) float64 {
	lengths := correlationLengths(acf, dx, dy, threshold)
	if len(lengths) == 0 {
		return math.NaN()
	}
	return floats.Min(lengths)
}

// textureAspectRatio is S_tr: shortest over longest correlation length,
// in (0, 1] with 1 for an isotropic surface
func textureAspectRatio(acf *spectral.ACF, dx, dy, threshold float64) float64 {
	lengths := correlationLengths(acf, dx, dy, threshold)
	if len(lengths) == 0 {
		return math.NaN()
	}
	return ratio(floats.Min(lengths), floats.Max(lengths))
}
