package extraction

import "sparams/pkg/spectral"

// Parameters whose computed values feed other formulas
const (
	nameSq  = "S_q"
	nameS2a = "S_2a"
	nameS3a = "S_3a"
)

// DisabledBand is the material-ratio band that is reported with the
// placeholder value unless explicitly enabled
const DisabledBand = "S_dc50-95"

// needGrid is the statistical surface together with its spacing
const needGrid = NeedSurface | NeedDx | NeedDy

// DefaultRegistry holds every parameter in canonical row order: amplitude,
// hybrid, functional, then spatial.
var DefaultRegistry = MustRegistry(defaultFormulas())

func defaultFormulas() []Formula {
	return []Formula{
		// Amplitude
		{Name: "S_a", Group: Amplitude, Needs: NeedSurface, Eval: func(in *Inputs, _ Values) float64 {
			return arithmeticMeanHeight(in.Surface)
		}},
		{Name: nameSq, Group: Amplitude, Needs: NeedSurface, Eval: func(in *Inputs, _ Values) float64 {
			return rootMeanSquareHeight(in.Surface)
		}},
		{Name: "S_sk", Group: Amplitude, Needs: NeedSurface, Deps: []string{nameSq}, Eval: func(in *Inputs, d Values) float64 {
			return skewness(in.Surface, d[nameSq])
		}},
		{Name: "S_ku", Group: Amplitude, Needs: NeedSurface, Deps: []string{nameSq}, Eval: func(in *Inputs, d Values) float64 {
			return kurtosis(in.Surface, d[nameSq])
		}},
		{Name: "S_z", Group: Amplitude, Needs: NeedSurface, Eval: func(in *Inputs, _ Values) float64 {
			return maxHeight(in.Surface)
		}},
		{Name: "S_10z", Group: Amplitude, Needs: NeedSurface | NeedExtrema, Eval: func(in *Inputs, _ Values) float64 {
			return tenPointHeight(in.Surface, in.Dim, in.Extrema.Maxima, in.Extrema.Minima)
		}},
		{Name: "S_v", Group: Amplitude, Needs: NeedSurface, Eval: func(in *Inputs, _ Values) float64 {
			return maxPitDepth(in.Surface)
		}},
		{Name: "S_p", Group: Amplitude, Needs: NeedSurface, Eval: func(in *Inputs, _ Values) float64 {
			return maxPeakHeight(in.Surface)
		}},
		{Name: "S_mean", Group: Amplitude, Needs: NeedRaw, Eval: func(in *Inputs, _ Values) float64 {
			return rawMean(in.Raw)
		}},

		// Hybrid
		{Name: "S_sc", Group: Hybrid, Needs: needGrid | NeedExtrema, Eval: func(in *Inputs, _ Values) float64 {
			return summitCurvature(in.Surface, in.Dim, in.Dx, in.Dy, in.Extrema.Maxima)
		}},
		{Name: nameS2a, Group: Hybrid, Needs: NeedDx | NeedDy, Eval: func(in *Inputs, _ Values) float64 {
			return projectedArea(in.Dim, in.Dx, in.Dy)
		}},
		{Name: nameS3a, Group: Hybrid, Needs: needGrid, Eval: func(in *Inputs, _ Values) float64 {
			return surfaceArea(in.Surface, in.Dim, in.Dx, in.Dy)
		}},
		{Name: "S_dr", Group: Hybrid, Deps: []string{nameS2a, nameS3a}, Eval: func(_ *Inputs, d Values) float64 {
			return developedAreaRatio(d[nameS2a], d[nameS3a])
		}},
		{Name: "S_dq", Group: Hybrid, Needs: needGrid, Eval: func(in *Inputs, _ Values) float64 {
			return rmsGradient(in.Surface, in.Dim, in.Dx, in.Dy)
		}},
		{Name: "S_dq6", Group: Hybrid, Needs: needGrid, Eval: func(in *Inputs, _ Values) float64 {
			return rmsGradientSixPoint(in.Surface, in.Dim, in.Dx, in.Dy)
		}},

		// Functional
		{Name: "S_bi", Group: Functional, Needs: NeedBearing, Deps: []string{nameSq}, Eval: func(in *Inputs, d Values) float64 {
			return surfaceBearingIndex(in.Bearing, d[nameSq])
		}},
		{Name: "S_ci", Group: Functional, Needs: NeedBearing, Deps: []string{nameSq}, Eval: func(in *Inputs, d Values) float64 {
			return coreFluidRetentionIndex(in.Bearing, d[nameSq])
		}},
		{Name: "S_vi", Group: Functional, Needs: NeedBearing, Deps: []string{nameSq}, Eval: func(in *Inputs, d Values) float64 {
			return valleyFluidRetentionIndex(in.Bearing, d[nameSq])
		}},
		{Name: "S_pk", Group: Functional, Needs: NeedBearing, Eval: func(in *Inputs, _ Values) float64 {
			return reducedPeakHeight(in.Bearing)
		}},
		{Name: "S_vk", Group: Functional, Needs: NeedBearing, Eval: func(in *Inputs, _ Values) float64 {
			return reducedValleyDepth(in.Bearing)
		}},
		{Name: "S_k", Group: Functional, Needs: NeedBearing, Eval: func(in *Inputs, _ Values) float64 {
			return coreRoughnessDepth(in.Bearing)
		}},
		{Name: "S_mr1", Group: Functional, Needs: NeedBearing, Eval: func(in *Inputs, _ Values) float64 {
			return peakMaterialRatio(in.Bearing)
		}},
		{Name: "S_mr2", Group: Functional, Needs: NeedBearing, Eval: func(in *Inputs, _ Values) float64 {
			return valleyMaterialRatio(in.Bearing)
		}},
		heightBand("S_dc0-5", 0, 5),
		heightBand("S_dc5-10", 5, 10),
		heightBand("S_dc10-50", 10, 50),
		heightBand(DisabledBand, 50, 95),
		heightBand("S_dc50-100", 50, 100),

		// Spatial
		{Name: "S_ds", Group: Spatial, Needs: NeedExtrema | NeedDx | NeedDy, Eval: func(in *Inputs, _ Values) float64 {
			return summitDensity(len(in.Extrema.Maxima), in.Dim, in.Dx, in.Dy)
		}},
		{Name: "S_td", Group: Spatial, Needs: NeedAngular, Eval: func(in *Inputs, _ Values) float64 {
			return textureDirection(in.Angular)
		}},
		{Name: "S_tdi", Group: Spatial, Needs: NeedAngular, Eval: func(in *Inputs, _ Values) float64 {
			return dominanceIndex(in.Angular)
		}},
		{Name: "S_rw", Group: Spatial, Needs: NeedRadial | NeedDx, Eval: func(in *Inputs, _ Values) float64 {
			return radialWavelength(in.Radial, in.Dim, in.Dx)
		}},
		{Name: "S_rwi", Group: Spatial, Needs: NeedRadial, Eval: func(in *Inputs, _ Values) float64 {
			return dominanceIndex(in.Radial)
		}},
		{Name: "S_hw", Group: Spatial, Needs: NeedRadial | NeedDx, Eval: func(in *Inputs, _ Values) float64 {
			return halfWavelength(in.Radial, in.Dim, in.Dx)
		}},
		{Name: "S_fd", Group: Spatial, Needs: NeedSpectrum | NeedInterpolator | NeedM, Eval: func(in *Inputs, _ Values) float64 {
			return fractalDimension(in.Spectrum, in.Interp, in.M)
		}},
		correlation("S_cl20", 0.20, autocorrelationLength),
		correlation("S_cl37", 0.37, autocorrelationLength),
		correlation("S_tr20", 0.20, textureAspectRatio),
		correlation("S_tr37", 0.37, textureAspectRatio),
	}
}

// heightBand builds an S_dc formula for the material ratio band [low%, high%]
func heightBand(name string, low, high float64) Formula {
	return Formula{
		Name:  name,
		Group: Functional,
		Needs: NeedBearing,
		Eval: func(in *Inputs, _ Values) float64 {
			return in.Bearing.HeightDifference(low, high)
		},
	}
}

func correlation(name string, threshold float64, fn func(acf *spectral.ACF, dx, dy, threshold float64) float64) Formula {
	return Formula{
		Name:  name,
		Group: Spatial,
		Needs: NeedACF | NeedDx | NeedDy,
		Eval: func(in *Inputs, _ Values) float64 {
			return fn(in.ACF, in.Dx, in.Dy, threshold)
		},
	}
}
