package extraction

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Material ratios used by the functional indices
const (
	bearingPeakRatio   = 0.05
	bearingValleyRatio = 0.80

	// coreWindow is the material-ratio span of the minimum-slope secant
	coreWindow = 0.40
)

// BearingCurve is the cumulative height distribution of a surface
// (the Abbott–Firestone curve). Heights are taken about the mean and kept
// sorted ascending, so lookups are monotonic in the material ratio.
type BearingCurve struct {
	heights []float64

	fit     *coreFit
	fitDone bool
}

// NewBearingCurve sorts a copy of z about its mean
func NewBearingCurve(z []float64) *BearingCurve {
	mean := stat.Mean(z, nil)
	heights := make([]float64, len(z))
	for i, v := range z {
		heights[i] = v - mean
	}
	sort.Float64s(heights)
	return &BearingCurve{heights: heights}
}

// Len returns the number of samples behind the curve
func (b *BearingCurve) Len() int { return len(b.heights) }

// HeightAt returns the height c(mr) above which a fraction mr of the
// surface lies. mr is clamped to [0, 1]; HeightAt(0) is the highest
// sample and HeightAt(1) the lowest.
func (b *BearingCurve) HeightAt(mr float64) float64 {
	if len(b.heights) == 0 || math.IsNaN(mr) {
		return math.NaN()
	}
	mr = math.Max(0, math.Min(1, mr))
	return stat.Quantile(1-mr, stat.LinInterp, b.heights, nil)
}

// VoidVolume returns the void volume per unit area at material ratio mr:
// the mean depth of the empty space below c(mr)
func (b *BearingCurve) VoidVolume(mr float64) float64 {
	c := b.HeightAt(mr)
	if math.IsNaN(c) {
		return c
	}
	sum := 0.0
	for _, h := range b.heights {
		if h >= c {
			break
		}
		sum += c - h
	}
	return sum / float64(len(b.heights))
}

// HeightDifference is S_dc: c(low%) - c(high%)
func (b *BearingCurve) HeightDifference(lowPercent, highPercent float64) float64 {
	return b.HeightAt(lowPercent/100) - b.HeightAt(highPercent/100)
}

// coreFit is the result of the 40% minimum-secant construction on the
// material ratio curve
type coreFit struct {
	// c1 and c2 are the core line heights at 0% and 100% material ratio
	c1, c2 float64

	// mr1 and mr2 are the fractions of the surface above c1 and above c2
	mr1, mr2 float64

	// peakArea and valleyArea are the areas of the curve above c1 and
	// below c2, in height×ratio units
	peakArea, valleyArea float64
}

// coreLine returns the core fit, computing it on first use. The curve is
// not safe for concurrent use.
func (b *BearingCurve) coreLine() *coreFit {
	if !b.fitDone {
		b.fit = fitCore(b.heights)
		b.fitDone = true
	}
	return b.fit
}

// fitCore finds the secant spanning 40% of the material ratio with the
// smallest height drop, extends it to 0% and 100%, and measures the peak
// and valley areas outside the core. Returns nil for fewer than three
// samples.
func fitCore(ascending []float64) *coreFit {
	n := len(ascending)
	if n < 3 {
		return nil
	}

	// descending heights, material ratio (i+0.5)/n
	desc := make([]float64, n)
	for i, h := range ascending {
		desc[n-1-i] = h
	}
	mr := func(i int) float64 { return (float64(i) + 0.5) / float64(n) }

	w := int(math.Round(coreWindow * float64(n)))
	if w < 1 {
		w = 1
	}

	best := 0
	bestDrop := math.Inf(1)
	for i := 0; i+w < n; i++ {
		if drop := desc[i] - desc[i+w]; drop < bestDrop {
			bestDrop = drop
			best = i
		}
	}

	slope := (desc[best+w] - desc[best]) / (mr(best+w) - mr(best))
	c1 := desc[best] - slope*mr(best)
	c2 := c1 + slope

	fit := &coreFit{c1: c1, c2: c2}
	for _, h := range desc {
		if h > c1 {
			fit.mr1++
			fit.peakArea += h - c1
		}
		if h > c2 {
			fit.mr2++
		}
		if h < c2 {
			fit.valleyArea += c2 - h
		}
	}
	fit.mr1 /= float64(n)
	fit.mr2 /= float64(n)
	fit.peakArea /= float64(n)
	fit.valleyArea /= float64(n)

	return fit
}

// surfaceBearingIndex is S_bi = S_q / c(5%)
func surfaceBearingIndex(b *BearingCurve, sq float64) float64 {
	return ratio(sq, b.HeightAt(bearingPeakRatio))
}

// coreFluidRetentionIndex is S_ci = (Vv(5%) - Vv(80%)) / S_q
func coreFluidRetentionIndex(b *BearingCurve, sq float64) float64 {
	return ratio(b.VoidVolume(bearingPeakRatio)-b.VoidVolume(bearingValleyRatio), sq)
}

// valleyFluidRetentionIndex is S_vi = Vv(80%) / S_q
func valleyFluidRetentionIndex(b *BearingCurve, sq float64) float64 {
	return ratio(b.VoidVolume(bearingValleyRatio), sq)
}

// coreRoughnessDepth is S_k
func coreRoughnessDepth(b *BearingCurve) float64 {
	fit := b.coreLine()
	if fit == nil {
		return math.NaN()
	}
	return fit.c1 - fit.c2
}

// reducedPeakHeight is S_pk: the height of the triangle whose base is
// Smr1 and whose area equals the peak area above the core
func reducedPeakHeight(b *BearingCurve) float64 {
	fit := b.coreLine()
	if fit == nil {
		return math.NaN()
	}
	if fit.mr1 == 0 {
		return 0
	}
	return 2 * fit.peakArea / fit.mr1
}

// reducedValleyDepth is S_vk, the valley counterpart of S_pk
func reducedValleyDepth(b *BearingCurve) float64 {
	fit := b.coreLine()
	if fit == nil {
		return math.NaN()
	}
	if fit.mr2 == 1 {
		return 0
	}
	return 2 * fit.valleyArea / (1 - fit.mr2)
}

// peakMaterialRatio is S_mr1 in percent
func peakMaterialRatio(b *BearingCurve) float64 {
	fit := b.coreLine()
	if fit == nil {
		return math.NaN()
	}
	return fit.mr1 * 100
}

// valleyMaterialRatio is S_mr2 in percent
func valleyMaterialRatio(b *BearingCurve) float64 {
	fit := b.coreLine()
	if fit == nil {
		return math.NaN()
	}
	return fit.mr2 * 100
}
