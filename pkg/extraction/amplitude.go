package extraction

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sparams/internal/models"
)

// Amplitude parameters are height moments of the statistical surface taken
// about its mean, so a raw (not detrended) surface still yields zero
// roughness when it is flat.

// tenPointCount is the number of summits and pits averaged by S_10z
const tenPointCount = 5

// ratio divides a by b, returning NaN for a zero denominator so the
// evaluator substitutes the sentinel
func ratio(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}

// centralMoment returns the mean of (z-mean)^k
func centralMoment(z []float64, k float64) float64 {
	mean := stat.Mean(z, nil)
	sum := 0.0
	for _, v := range z {
		sum += math.Pow(v-mean, k)
	}
	return sum / float64(len(z))
}

// arithmeticMeanHeight is S_a, the mean absolute deviation from the mean
func arithmeticMeanHeight(z []float64) float64 {
	mean := stat.Mean(z, nil)
	sum := 0.0
	for _, v := range z {
		sum += math.Abs(v - mean)
	}
	return sum / float64(len(z))
}

// rootMeanSquareHeight is S_q, the population standard deviation
func rootMeanSquareHeight(z []float64) float64 {
	_, std := stat.PopMeanStdDev(z, nil)
	return std
}

// skewness is S_sk given a previously computed S_q
func skewness(z []float64, sq float64) float64 {
	return ratio(centralMoment(z, 3), sq*sq*sq)
}

// kurtosis is S_ku (not excess) given a previously computed S_q
func kurtosis(z []float64, sq float64) float64 {
	return ratio(centralMoment(z, 4), sq*sq*sq*sq)
}

// maxPeakHeight is S_p
func maxPeakHeight(z []float64) float64 {
	return floats.Max(z) - stat.Mean(z, nil)
}

// maxPitDepth is S_v, reported as a positive depth
func maxPitDepth(z []float64) float64 {
	return stat.Mean(z, nil) - floats.Min(z)
}

// maxHeight is S_z, the peak-to-valley range
func maxHeight(z []float64) float64 {
	return floats.Max(z) - floats.Min(z)
}

// rawMean is S_mean, the mean height of the untouched height map
func rawMean(z []float64) float64 {
	return stat.Mean(z, nil)
}

// tenPointHeight is S_10z: the mean height of the five highest local maxima
// plus the mean depth of the five lowest local minima. Fewer extrema are
// averaged when fewer exist; none at all is degenerate.
func tenPointHeight(z []float64, dim int, maxima, minima []models.Point) float64 {
	if len(maxima) == 0 || len(minima) == 0 {
		return math.NaN()
	}
	peaks := heightsAt(z, dim, maxima)
	pits := heightsAt(z, dim, minima)

	sort.Sort(sort.Reverse(sort.Float64Slice(peaks)))
	sort.Float64s(pits)

	peaks = peaks[:min(tenPointCount, len(peaks))]
	pits = pits[:min(tenPointCount, len(pits))]

	// the mean cancels between S5p and S5v
	return stat.Mean(peaks, nil) - stat.Mean(pits, nil)
}

func heightsAt(z []float64, dim int, points []models.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = z[p.Row*dim+p.Col]
	}
	return out
}
