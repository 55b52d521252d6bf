package extraction

import (
	"fmt"

	"sparams/internal/models"
	"sparams/pkg/extrema"
	"sparams/pkg/preprocess"
	"sparams/pkg/spectral"
)

// Cache bundles every expensive artifact that the parameter formulas share
// for one surface. It is built once by BuildCache, never modified
// afterwards, and discarded once the parameter row has been produced.
//
// Slices returned by the accessors belong to the cache and must not be
// modified by callers.
type Cache struct {
	heightMap models.HeightMap
	m         int

	fitted   []float64
	spectrum *spectral.Spectrum
	interp   spectral.Interpolator

	angular []float64
	radial  []float64

	acf *spectral.ACF

	extrema extrema.Set
}

type cacheConfig struct {
	interpolator spectral.InterpolatorFactory
	detrendOrder int
}

// CacheOption customises BuildCache
type CacheOption func(*cacheConfig)

// WithInterpolator replaces the default bilinear spectrum interpolator
func WithInterpolator(factory spectral.InterpolatorFactory) CacheOption {
	return func(c *cacheConfig) {
		if factory != nil {
			c.interpolator = factory
		}
	}
}

// WithDetrendOrder selects the polynomial order of the trend surface
// (preprocess.Plane or preprocess.Quadratic)
func WithDetrendOrder(order int) CacheOption {
	return func(c *cacheConfig) {
		if order > 0 {
			c.detrendOrder = order
		}
	}
}

// BuildCache computes the shared artifacts of one surface in dependency
// order:
//  1. detrended (fitted) surface
//  2. centred amplitude spectrum and its frequency axes
//  3. spectrum interpolator
//  4. m angular and m/2 radial amplitude integrals
//  5. autocorrelation field and its zero-lag index
//  6. local maxima and minima of the fitted surface
//
// BuildCache has no side effects and shares no state between calls, so it
// is safe to run concurrently for independent surfaces. The height map is
// never modified.
func BuildCache(hm models.HeightMap, m int, opts ...CacheOption) (*Cache, error) {
	if err := validateGrid(hm, m); err != nil {
		return nil, err
	}

	cfg := cacheConfig{
		interpolator: spectral.NewBilinear,
		detrendOrder: preprocess.Plane,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	dim := hm.Dim

	fitted, err := preprocess.Detrend(hm.Data, dim, cfg.detrendOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to detrend surface: %w", err)
	}

	spectrum, err := spectral.NewSpectrum(fitted, dim)
	if err != nil {
		return nil, fmt.Errorf("failed to compute spectrum: %w", err)
	}

	interp := cfg.interpolator(spectrum)

	return &Cache{
		heightMap: hm,
		m:         m,
		fitted:    fitted,
		spectrum:  spectrum,
		interp:    interp,
		angular:   spectral.AngularAmplitudes(spectrum, interp, m),
		radial:    spectral.RadialAmplitudes(spectrum, interp, m),
		acf:       spectral.NewACF(spectrum),
		extrema:   extrema.Find(fitted, dim),
	}, nil
}

// HeightMap returns the raw surface the cache was built from
func (c *Cache) HeightMap() models.HeightMap { return c.heightMap }

// M returns the angular resolution the directional artifacts were built with
func (c *Cache) M() int { return c.m }

// Fitted returns the detrended surface
func (c *Cache) Fitted() []float64 { return c.fitted }

// Spectrum returns the centred amplitude spectrum of the fitted surface
func (c *Cache) Spectrum() *spectral.Spectrum { return c.spectrum }

// Interpolator returns the interpolator built over Spectrum
func (c *Cache) Interpolator() spectral.Interpolator { return c.interp }

// AngularAmplitudes returns the M ray integrals, angle i·π/M at index i
func (c *Cache) AngularAmplitudes() []float64 { return c.angular }

// RadialAmplitudes returns the M/2 semicircle integrals, radius increasing
func (c *Cache) RadialAmplitudes() []float64 { return c.radial }

// ACF returns the autocorrelation field and its zero-lag index
func (c *Cache) ACF() *spectral.ACF { return c.acf }

// Extrema returns the local maxima and minima of the fitted surface
func (c *Cache) Extrema() extrema.Set { return c.extrema }
