package preprocess

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"
)

// VariogramModel selects the semivariogram used by FillMissing
type VariogramModel int

const (
	Spherical VariogramModel = iota
	Exponential
	Gaussian
)

// FillParams controls the reconstruction of missing samples
type FillParams struct {
	// Neighbors is the number of nearest valid samples each estimate uses
	Neighbors int

	// Model is the variogram shape
	Model VariogramModel

	// Range is the correlation length in samples; 0 means dim/8 (at least 2)
	Range float64

	// Nugget is the variogram offset at non-zero lag, as a fraction of the
	// sill
	Nugget float64
}

// DefaultFillParams returns the settings used by the command line tool
func DefaultFillParams() FillParams {
	return FillParams{
		Neighbors: 16,
		Model:     Spherical,
	}
}

// IsMissing reports whether a sample was not measured (NaN or ±Inf)
func IsMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// CountMissing returns the number of missing samples in data
func CountMissing(data []float64) int {
	n := 0
	for _, v := range data {
		if IsMissing(v) {
			n++
		}
	}
	return n
}

// gridPoint is a valid sample in grid coordinates
type gridPoint struct {
	Row, Col float64
	index    int
}

// Compare implements the kdtree.Comparable interface
func (p gridPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(gridPoint)
	switch d {
	case 0:
		return p.Row - q.Row
	case 1:
		return p.Col - q.Col
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p gridPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two points
func (p gridPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(gridPoint)
	dr := p.Row - q.Row
	dc := p.Col - q.Col
	return dr*dr + dc*dc
}

// gridPoints satisfies kdtree.Interface
type gridPoints []gridPoint

func (p gridPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p gridPoints) Len() int                              { return len(p) }
func (p gridPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot sorts along d and takes the middle element. The kdtree selection
// helpers draw random pivots, which would make the neighbour sets of
// equidistant samples differ between runs.
func (p gridPoints) Pivot(d kdtree.Dim) int {
	sort.Stable(pointPlane{gridPoints: p, Dim: d})
	return len(p) / 2
}

// pointPlane sorts gridPoints along one dimension
type pointPlane struct {
	gridPoints
	kdtree.Dim
}

// Less orders along the plane's dimension, then by grid index
func (p pointPlane) Less(i, j int) bool {
	a, b := p.gridPoints[i], p.gridPoints[j]
	switch p.Dim {
	case 0:
		if a.Row != b.Row {
			return a.Row < b.Row
		}
	case 1:
		if a.Col != b.Col {
			return a.Col < b.Col
		}
	default:
		panic("illegal dimension")
	}
	return a.index < b.index
}

func (p pointPlane) Swap(i, j int) {
	p.gridPoints[i], p.gridPoints[j] = p.gridPoints[j], p.gridPoints[i]
}

// FillMissing returns a copy of the row-major dim×dim grid in which every
// missing sample is replaced by an ordinary kriging estimate from its
// nearest valid neighbours. It also returns the number of samples filled.
// Estimates only use measured samples, never earlier estimates.
func FillMissing(data []float64, dim int, p FillParams) ([]float64, int, error) {
	if dim <= 0 || len(data) != dim*dim {
		return nil, 0, fmt.Errorf("fill needs a non-empty square grid, got %d samples for side %d", len(data), dim)
	}

	out := append([]float64(nil), data...)

	var (
		points  gridPoints
		values  []float64
		missing []int
	)
	for i, v := range data {
		if IsMissing(v) {
			missing = append(missing, i)
			continue
		}
		points = append(points, gridPoint{Row: float64(i / dim), Col: float64(i % dim), index: i})
		values = append(values, v)
	}
	if len(missing) == 0 {
		return out, 0, nil
	}
	if len(points) == 0 {
		return nil, 0, fmt.Errorf("grid has no measured samples")
	}

	sill := stat.Variance(values, nil)
	if len(values) < 2 || sill == 0 || math.IsNaN(sill) {
		// a constant surface is its own best estimate
		mean := stat.Mean(values, nil)
		for _, i := range missing {
			out[i] = mean
		}
		return out, len(missing), nil
	}

	k := p.Neighbors
	if k <= 0 {
		k = DefaultFillParams().Neighbors
	}
	if k > len(points) {
		k = len(points)
	}
	rng := p.Range
	if rng <= 0 {
		rng = math.Max(2, float64(dim)/8)
	}
	v := variogram{model: p.Model, rng: rng, sill: sill, nugget: p.Nugget * sill}

	tree := kdtree.New(append(gridPoints(nil), points...), false)
	for _, i := range missing {
		q := gridPoint{Row: float64(i / dim), Col: float64(i % dim)}

		keeper := kdtree.NewNKeeper(k)
		tree.NearestSet(keeper, q)

		var near []gridPoint
		for _, item := range keeper.Heap {
			// Skip the sentinel value
			if item.Comparable == nil {
				continue
			}
			near = append(near, item.Comparable.(gridPoint))
		}
		sortByDistance(q, near)
		out[i] = krige(q, near, data, v)
	}
	return out, len(missing), nil
}

// sortByDistance orders neighbours by distance from q, then by grid index,
// so the kriging sums always run in the same order
func sortByDistance(q gridPoint, near []gridPoint) {
	sort.Slice(near, func(i, j int) bool {
		di, dj := q.Distance(near[i]), q.Distance(near[j])
		if di != dj {
			return di < dj
		}
		return near[i].index < near[j].index
	})
}

type variogram struct {
	model             VariogramModel
	rng, sill, nugget float64
}

// at evaluates the semivariance at lag h (in samples)
func (v variogram) at(h float64) float64 {
	if h == 0 {
		return 0
	}

	gamma := v.nugget
	switch v.model {
	case Spherical:
		if h < v.rng {
			r := h / v.rng
			gamma += v.sill * (1.5*r - 0.5*r*r*r)
		} else {
			gamma += v.sill
		}
	case Exponential:
		gamma += v.sill * (1 - math.Exp(-3*h/v.rng))
	case Gaussian:
		gamma += v.sill * (1 - math.Exp(-3*h*h/(v.rng*v.rng)))
	}
	return gamma
}

// krige solves the ordinary kriging system for q over the neighbours.
// Singular systems fall back to inverse distance weighting.
func krige(q gridPoint, near []gridPoint, data []float64, v variogram) float64 {
	n := len(near)
	if n == 1 {
		return data[near[0].index]
	}

	// Fill kriging matrix, +1 row and column for the Lagrange multiplier
	a := mat.NewDense(n+1, n+1, nil)
	b := mat.NewVecDense(n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, v.at(math.Sqrt(near[i].Distance(near[j]))))
		}
		a.Set(i, n, 1)
		a.Set(n, i, 1)
		b.SetVec(i, v.at(math.Sqrt(q.Distance(near[i]))))
	}
	b.SetVec(n, 1) // weights sum to one

	var w mat.VecDense
	if err := w.SolveVec(a, b); err != nil {
		return inverseDistance(q, near, data)
	}

	estimate := 0.0
	for i := 0; i < n; i++ {
		estimate += w.AtVec(i) * data[near[i].index]
	}
	if IsMissing(estimate) {
		return inverseDistance(q, near, data)
	}
	return estimate
}

func inverseDistance(q gridPoint, near []gridPoint, data []float64) float64 {
	weightedSum, totalWeight := 0.0, 0.0
	for _, p := range near {
		w := 1 / q.Distance(p)
		weightedSum += w * data[p.index]
		totalWeight += w
	}
	return weightedSum / totalWeight
}
