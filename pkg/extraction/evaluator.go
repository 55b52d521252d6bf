package extraction

import (
	"math"

	"sparams/internal/models"
)

const (
	// Sentinel replaces any NaN or infinite formula result
	Sentinel = 0.0

	// Placeholder is reported for parameters that are disabled
	Placeholder = 0.0
)

// Options control how a parameter row is evaluated
type Options struct {
	// UseRaw makes the amplitude, hybrid and functional groups read the raw
	// height map instead of the detrended surface. Spatial parameters always
	// come from the cached spectrum and ACF of the detrended surface, and
	// S_mean always reads the raw heights.
	UseRaw bool

	// Disabled lists parameters reported as Placeholder without being
	// evaluated. Their dependents still run and see the placeholder.
	Disabled []string
}

// DefaultOptions evaluates on the detrended surface with the 50-95% height
// band disabled
func DefaultOptions() Options {
	return Options{Disabled: []string{DisabledBand}}
}

// sanitize maps NaN and ±Inf onto the sentinel
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Sentinel
	}
	return v
}

// sameSamples reports whether a and b hold bit-identical samples. Slices
// sharing a backing array are accepted without scanning.
func sameSamples(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 || &a[0] == &b[0] {
		return true
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

// Evaluate computes every parameter of the default registry for one surface
// from its prebuilt cache
func Evaluate(hm models.HeightMap, dx, dy float64, m int, cache *Cache, opts Options) (Row, error) {
	return DefaultRegistry.Evaluate(hm, dx, dy, m, cache, opts)
}

// Evaluate runs every formula of the registry in dependency order and
// returns the row in canonical order. Degenerate results never fail the
// evaluation; they are reported as Sentinel. The only errors are
// *InvalidInputError values for bad inputs or a cache that was built for a
// different surface or resolution. A cache matches when it was built with
// the same M from the same height samples; a copy of the samples is
// accepted.
func (r *Registry) Evaluate(hm models.HeightMap, dx, dy float64, m int, cache *Cache, opts Options) (Row, error) {
	if err := validateGrid(hm, m); err != nil {
		return nil, err
	}
	if err := validateSpacing(dx, dy); err != nil {
		return nil, err
	}
	if cache == nil {
		return nil, invalid("cache", "is nil")
	}
	if cache.M() != m {
		return nil, invalid("cache", "built with M=%d, evaluating with M=%d", cache.M(), m)
	}
	built := cache.HeightMap()
	if built.Dim != hm.Dim || len(built.Data) != len(hm.Data) {
		return nil, invalid("cache", "built for a %dx%d grid, evaluating a %dx%d grid", built.Dim, built.Dim, hm.Dim, hm.Dim)
	}
	if !sameSamples(built.Data, hm.Data) {
		return nil, invalid("cache", "built from different height samples than %q", hm.Name)
	}

	surface := cache.Fitted()
	if opts.UseRaw {
		surface = hm.Data
	}

	in := &Inputs{
		Dim:      hm.Dim,
		Surface:  surface,
		Raw:      hm.Data,
		Dx:       dx,
		Dy:       dy,
		M:        m,
		Extrema:  cache.Extrema(),
		Spectrum: cache.Spectrum(),
		Interp:   cache.Interpolator(),
		Angular:  cache.AngularAmplitudes(),
		Radial:   cache.RadialAmplitudes(),
		ACF:      cache.ACF(),
		Bearing:  NewBearingCurve(surface),
	}

	disabled := make(map[string]bool, len(opts.Disabled))
	for _, name := range opts.Disabled {
		disabled[name] = true
	}

	computed := make(Values, len(r.formulas))
	for _, idx := range r.order {
		f := r.formulas[idx]
		if disabled[f.Name] {
			computed[f.Name] = Placeholder
			continue
		}

		deps := make(Values, len(f.Deps))
		for _, dep := range f.Deps {
			deps[dep] = computed[dep]
		}
		computed[f.Name] = sanitize(f.Eval(in.view(f.Needs), deps))
	}

	row := make(Row, len(r.formulas))
	for i, f := range r.formulas {
		row[i] = Param{Name: f.Name, Value: computed[f.Name]}
	}
	return row, nil
}
